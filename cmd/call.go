/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alvera-ai/interoperability-template-generator/internal/executor"
	"github.com/alvera-ai/interoperability-template-generator/internal/prompt"
	"github.com/alvera-ai/interoperability-template-generator/internal/spec"
	"github.com/alvera-ai/interoperability-template-generator/internal/store"
)

var (
	callServer  string
	callPrompt  string
	callParams  []string
	callHeaders []string
	callTimeout int
	callSave    bool
)

// callCmd represents the call command
var callCmd = &cobra.Command{
	Use:   "call [openapi-spec-file] [path]",
	Short: "Execute one GET endpoint",
	Long: `Execute a single GET endpoint of the specification. Parameter values
come from --param flags and, for anything still missing, from the free
text given with --prompt. Values are validated against the declared
parameter schemas before the request is sent.

Examples:
  # Explicit parameter values
  interop call api-spec.json /posts/{postId} --param postId=3

  # Fill values from free text
  interop call api-spec.json /posts --prompt "posts of userId 7, _limit 10"`,
	Args: cobra.ExactArgs(2),
	Run:  runCall,
}

func runCall(cmd *cobra.Command, args []string) {
	specFile, path := args[0], args[1]

	sp, err := loadSpecFile(specFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading specification: %v\n", err)
		os.Exit(1)
	}

	op, found := sp.Lookup(path, "GET")
	if !found {
		fmt.Fprintf(os.Stderr, "No GET operation at %q\n", path)
		os.Exit(1)
	}

	baseURL := callServer
	if baseURL == "" {
		baseURL = sp.BaseURL()
	}
	if baseURL == "" {
		fmt.Fprintln(os.Stderr, "The specification declares no servers; use --server")
		os.Exit(1)
	}

	values := prompt.Extract(callPrompt, op.Parameters())
	for _, kv := range callParams {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "Invalid --param %q: expected name=value\n", kv)
			os.Exit(1)
		}
		values[k] = v
	}
	headers := map[string]string{}
	for _, kv := range callHeaders {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "Invalid --header %q: expected name=value\n", kv)
			os.Exit(1)
		}
		headers[k] = v
	}

	var s *spinner.Spinner
	if isTTY {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = fmt.Sprintf(" %s %s", op.Method, op.Path)
		s.Start()
	}

	exec := executor.New(time.Duration(callTimeout) * time.Second)
	result, err := exec.Call(context.Background(), op, baseURL, values, headers)

	if s != nil {
		s.Stop()
	}
	if err != nil {
		var paramErr *spec.ParameterError
		if errors.As(err, &paramErr) {
			fmt.Fprintf(os.Stderr, "%s %s\n", red("Invalid parameter:"), paramErr.Error())
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error executing call: %v\n", err)
		os.Exit(1)
	}

	status := green(result.StatusCode)
	if result.StatusCode >= 400 {
		status = red(result.StatusCode)
	}
	fmt.Printf("%s %s\n", cyan("GET"), result.URL)
	fmt.Printf("Status: %s  (%v)\n\n", status, result.Duration.Round(time.Millisecond))

	if result.BodyJSON != nil {
		var pretty bytes.Buffer
		if json.Indent(&pretty, result.Body, "", "  ") == nil {
			fmt.Println(pretty.String())
		} else {
			fmt.Println(string(result.Body))
		}
	} else if len(result.Body) > 0 {
		fmt.Println(string(result.Body))
	}

	if callSave {
		db, err := store.Open(viper.GetString("db"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		id, err := db.SaveResult(&store.CallResult{
			UserPrompt:      callPrompt,
			Endpoint:        op.Path,
			Method:          op.Method,
			URL:             result.URL,
			RequestParams:   store.MarshalJSONField(values),
			StatusCode:      result.StatusCode,
			ResponseHeaders: store.MarshalJSONField(result.Headers),
			ResponseBody:    string(result.Body),
			DurationMS:      result.Duration.Milliseconds(),
			SchemaUsed:      sp.Title,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error storing result: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nStored as result %d\n", id)
	}
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVar(&callServer, "server", "", "Override server URL from the specification")
	callCmd.Flags().StringVarP(&callPrompt, "prompt", "p", "", "Free text to extract parameter values from")
	callCmd.Flags().StringArrayVar(&callParams, "param", []string{}, "Parameter value as name=value (can be repeated)")
	callCmd.Flags().StringArrayVar(&callHeaders, "header", []string{}, "Extra request header as name=value (can be repeated)")
	callCmd.Flags().IntVarP(&callTimeout, "timeout", "t", 30, "Request timeout in seconds")
	callCmd.Flags().BoolVar(&callSave, "save", false, "Store the result in the database")
}
