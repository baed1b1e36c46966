package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mgomes/img2xl/internal/thread"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved questions and answers",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print a saved answer with its sources and OCR text",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a saved answer",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRm,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to list")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRmCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyLimit < 1 {
		return fmt.Errorf("--limit must be at least 1")
	}

	e, err := openCLIEnv(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	threads, err := e.service.Recent(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(threads) == 0 {
		fmt.Fprintln(out, "No saved threads yet.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "ASKED", "FILE", "QUESTION")
	for _, th := range threads {
		t.Row(shortID(th.UUID), th.CreatedAt.Format("2006-01-02 15:04"), th.FileName, oneLine(th.Query))
	}

	fmt.Fprintln(out, t.String())
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	e, err := openCLIEnv(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := e.service.Thread(args[0])
	if err != nil {
		return err
	}

	st := thread.Restore(*rec)
	printState(cmd.OutOrStdout(), &st, true)
	return nil
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	e, err := openCLIEnv(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	full, err := e.service.Delete(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", shortID(full))
	return nil
}
