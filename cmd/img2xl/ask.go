package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgomes/img2xl/internal/thread"
)

var askCmd = &cobra.Command{
	Use:   "ask QUESTION...",
	Short: "Ask a question about the most recently uploaded document",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var askShowOCR bool

var errAskFailed = errors.New(thread.ServerError)

func init() {
	askCmd.Flags().BoolVar(&askShowOCR, "ocr", false, "Print the OCR text returned with the answer")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	if strings.TrimSpace(question) == "" {
		return errors.New("question is empty")
	}

	e, err := openCLIEnv(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	st := thread.New(question)
	if !e.service.AskInto(cmd.Context(), &st, question) {
		return errAskFailed
	}

	printState(cmd.OutOrStdout(), &st, askShowOCR)
	return nil
}
