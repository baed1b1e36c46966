package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgomes/img2xl/internal/thread"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
)

func printState(w io.Writer, st *thread.State, showOCR bool) {
	if st.Document != nil {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("File:"), st.Document.Name)
	}
	fmt.Fprintf(w, "%s %s\n\n", labelStyle.Render("Q:"), headingStyle.Render(st.Query))
	fmt.Fprintln(w, st.DisplayAnswer())

	for i, src := range st.Sources {
		if i == 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("Source #%d:", i+1)), oneLine(src))
	}

	if showOCR && st.OCRText != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", headingStyle.Render("OCR Raw Text"), st.OCRText)
	}

	if st.ID != "" {
		fmt.Fprintf(w, "\n%s %s\n", labelStyle.Render("Saved as"), idStyle.Render(shortID(st.ID)))
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
