/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alvera-ai/interoperability-template-generator/internal/llm"
	"github.com/alvera-ai/interoperability-template-generator/internal/server"
	"github.com/alvera-ai/interoperability-template-generator/internal/store"
)

var (
	serveAddr    string
	serveTimeout int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for the browser UI",
	Long: `Run the HTTP API the browser UI talks to: load specifications,
browse GET endpoints, execute calls, inspect stored results and
generate conversion templates.

Template generation needs an Anthropic API key (ANTHROPIC_API_KEY);
without one the server still runs, with that feature disabled.`,
	Run: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

		db, err := store.Open(viper.GetString("db"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}

		var client *llm.Client
		client, err = llm.NewClient("")
		if err != nil {
			slog.Warn("template generation disabled", "reason", err)
			client = nil
		}

		srv := server.New(server.Options{
			Addr:           serveAddr,
			RequestTimeout: time.Duration(serveTimeout) * time.Second,
			Store:          db,
			LLM:            client,
		})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := srv.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting server: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Listening on %s\n", white(serveAddr))

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")
	serveCmd.Flags().IntVarP(&serveTimeout, "timeout", "t", 30, "Outgoing request timeout in seconds")
}
