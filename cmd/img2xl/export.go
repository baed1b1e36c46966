package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgomes/img2xl/internal/thread"
)

var exportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Export a saved answer as JSON, CSV or Markdown",
	Long: "Export a saved answer. The file is written to the configured export directory " +
		"unless --out is given; use --out - to write to stdout.",
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var (
	exportFormat string
	exportOut    string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(thread.FormatJSON), "Output format: json, csv or md")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file, or - for stdout")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := thread.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	e, err := openCLIEnv(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := e.service.Thread(args[0])
	if err != nil {
		return err
	}

	if exportOut == "-" {
		return thread.Export(cmd.OutOrStdout(), *rec, format)
	}

	path := exportOut
	if path == "" {
		path = filepath.Join(e.cfg.ExportDirOrDefault(), thread.FileName(*rec, format))
	}

	if err := thread.WriteFile(path, *rec, format); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}
