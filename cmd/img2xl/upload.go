package main

import (
	"github.com/spf13/cobra"

	"github.com/mgomes/img2xl/internal/thread"
)

var uploadCmd = &cobra.Command{
	Use:   "upload FILE",
	Short: "Upload a PDF or image and print its summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var uploadShowOCR bool

func init() {
	uploadCmd.Flags().BoolVar(&uploadShowOCR, "ocr", false, "Print the OCR text returned with the summary")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	e, err := openCLIEnv(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	st, err := e.service.UploadAndSummarize(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	printState(cmd.OutOrStdout(), &st, uploadShowOCR)
	if st.Answer == thread.ServerError {
		return errAskFailed
	}
	return nil
}
