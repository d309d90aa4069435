/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alvera-ai/interoperability-template-generator/internal/output"
	"github.com/alvera-ai/interoperability-template-generator/internal/store"
)

var (
	resultsLimit      int
	resultsOutputFmt  string
	resultsOutputFile string
)

// resultsCmd represents the results command
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List stored call results",
	Long: `List the most recent stored call results, or export them as JSON or CSV.

Examples:
  # Show the last 10 results
  interop results

  # Export the last 100 results to a file
  interop results -n 100 -o csv --output-file results.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		db, err := store.Open(viper.GetString("db"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}

		results, err := db.RecentResults(resultsLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading results: %v\n", err)
			os.Exit(1)
		}

		if resultsOutputFmt != "" {
			format, err := output.ParseFormat(resultsOutputFmt)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if err := output.ExportResults(results, format, resultsOutputFile); err != nil {
				fmt.Fprintf(os.Stderr, "Error exporting results: %v\n", err)
				os.Exit(1)
			}
			if resultsOutputFile != "" {
				fmt.Printf("Results exported to: %s\n", resultsOutputFile)
			}
			return
		}

		if len(results) == 0 {
			fmt.Println("No stored results")
			return
		}

		fmt.Printf("%-5s %-20s %-8s %-40s %8s %10s\n",
			"ID", "WHEN", "STATUS", "ENDPOINT", "MS", "SCHEMA")
		for _, r := range results {
			status := green(r.StatusCode)
			if r.StatusCode >= 400 {
				status = red(r.StatusCode)
			}
			endpoint := r.Endpoint
			if len(endpoint) > 38 {
				endpoint = endpoint[:35] + "..."
			}
			fmt.Printf("%-5d %-20s %-8s %-40s %8d %10s\n",
				r.ID, r.CreatedAt.Format(time.DateTime), status, endpoint, r.DurationMS, r.SchemaUsed)
		}
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.Flags().IntVarP(&resultsLimit, "limit", "n", 10, "Number of results to show")
	resultsCmd.Flags().StringVarP(&resultsOutputFmt, "output", "o", "", "Output format: json, csv")
	resultsCmd.Flags().StringVar(&resultsOutputFile, "output-file", "", "Write output to file (default: stdout)")
}
