// Package main is the img2xl command: a terminal client for asking
// questions about scanned documents and PDFs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "img2xl",
	Short: "Ask questions about scanned documents from the terminal",
	Long: "img2xl uploads PDFs and images to a document QA service, asks questions about them, " +
		"and keeps a local history of answers with their sources and OCR text.\n\n" +
		"Run without a subcommand to open the interactive interface.",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runTUI,
}

var debugLogging bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
