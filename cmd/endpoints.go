/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alvera-ai/interoperability-template-generator/internal/spec"
)

var (
	endpointsFilter  string
	endpointsVerbose bool
)

// endpointsCmd represents the endpoints command
var endpointsCmd = &cobra.Command{
	Use:   "endpoints [openapi-spec-file]",
	Short: "List the GET endpoints of a specification",
	Long:  `List the GET endpoints of an OpenAPI specification in document order, optionally with their parameters.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sp, err := loadSpecFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading specification: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("%s %s\n", white(sp.Title), sp.Version)
		if base := sp.BaseURL(); base != "" {
			fmt.Printf("Server: %s\n", base)
		}
		fmt.Println()

		shown := 0
		for _, op := range sp.Operations("GET") {
			if endpointsFilter != "" &&
				!strings.Contains(op.Path, endpointsFilter) &&
				!strings.Contains(op.OperationID, endpointsFilter) {
				continue
			}
			shown++

			fmt.Printf("%s %s", cyan(op.Method), op.Path)
			if op.Summary != "" {
				fmt.Printf("  %s", op.Summary)
			}
			fmt.Println()

			if endpointsVerbose {
				for _, p := range op.Parameters() {
					req := ""
					if p.Required {
						req = red(" required")
					}
					fmt.Printf("    %s (%s, %s)%s", p.Name, p.In, p.Type, req)
					if c := constraintHint(p); c != "" {
						fmt.Printf("  %s", yellow(c))
					}
					fmt.Println()
				}
			}
		}

		if shown == 0 {
			fmt.Println("No GET endpoints found matching the criteria")
		}
	},
}

// loadSpecFile reads, parses and resolves a specification document.
func loadSpecFile(path string) (*spec.Specification, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sp, err := spec.Load(raw, spec.FormatAuto)
	if err != nil {
		return nil, err
	}
	if err := sp.ResolveRefs(); err != nil {
		return nil, err
	}
	return sp, nil
}

func constraintHint(p spec.Parameter) string {
	var parts []string
	if p.Minimum != nil {
		parts = append(parts, fmt.Sprintf("min=%g", *p.Minimum))
	}
	if p.Maximum != nil {
		parts = append(parts, fmt.Sprintf("max=%g", *p.Maximum))
	}
	if p.MinLength != nil {
		parts = append(parts, fmt.Sprintf("minLength=%d", *p.MinLength))
	}
	if p.MaxLength != nil {
		parts = append(parts, fmt.Sprintf("maxLength=%d", *p.MaxLength))
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.AddCommand(endpointsCmd)

	endpointsCmd.Flags().StringVar(&endpointsFilter, "filter", "", "Filter endpoints by path pattern or operation ID")
	endpointsCmd.Flags().BoolVarP(&endpointsVerbose, "verbose", "v", false, "Show parameters per endpoint")
}
