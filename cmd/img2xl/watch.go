package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mgomes/img2xl/internal/inbox"
	"github.com/mgomes/img2xl/internal/thread"
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Watch a directory and summarize each document dropped into it",
	Long: "Watch DIR recursively. Each PDF or image that stops changing is uploaded, " +
		"summarized, and saved to history. Stop with Ctrl+C.",
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchConcurrency int

func init() {
	watchCmd.Flags().IntVarP(&watchConcurrency, "concurrency", "c", 2, "Maximum documents processed at once")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchConcurrency < 1 {
		return fmt.Errorf("--concurrency must be at least 1")
	}

	e, err := openCLIEnv(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	var outMu sync.Mutex

	handle := func(ctx context.Context, path string) error {
		st, err := e.service.UploadAndSummarize(ctx, path)
		if err != nil {
			return err
		}
		if st.Answer == thread.ServerError {
			return fmt.Errorf("summary of %s failed", filepath.Base(path))
		}

		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprintf(out, "%s %s\n%s\n\n", idStyle.Render(shortID(st.ID)), headingStyle.Render(filepath.Base(path)), st.Answer)
		return nil
	}

	w, err := inbox.NewWatcher(args[0], handle, watchConcurrency, e.logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for documents...\n", args[0])
	return w.Start(cmd.Context())
}
