package thread

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Record is a saved question/answer turn.
type Record struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Answer    string    `json:"answer"`
	Sources   []string  `json:"sources"`
	OCRText   string    `json:"ocr_text"`
	FileName  string    `json:"file_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
)

var Formats = []Format{FormatJSON, FormatCSV, FormatMarkdown}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown export format %q (want json, csv or md)", s)
}

// Next cycles through Formats.
func (f Format) Next() Format {
	for i, other := range Formats {
		if other == f {
			return Formats[(i+1)%len(Formats)]
		}
	}
	return Formats[0]
}

func (f Format) Ext() string {
	return "." + string(f)
}

func Export(w io.Writer, rec Record, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	case FormatCSV:
		return exportCSV(w, rec)
	case FormatMarkdown:
		return exportMarkdown(w, rec)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// exportCSV writes one row per source chunk. A turn without sources still
// produces a single row so the answer is not lost.
func exportCSV(w io.Writer, rec Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"query", "answer", "source_index", "chunk_text"}); err != nil {
		return err
	}

	if len(rec.Sources) == 0 {
		if err := cw.Write([]string{rec.Query, rec.Answer, "", ""}); err != nil {
			return err
		}
	}

	for i, src := range rec.Sources {
		if err := cw.Write([]string{rec.Query, rec.Answer, strconv.Itoa(i + 1), src}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func exportMarkdown(w io.Writer, rec Record) error {
	var b strings.Builder

	b.WriteString("# " + rec.Query + "\n\n")
	if rec.FileName != "" {
		b.WriteString("_Document: " + rec.FileName + "_\n\n")
	}

	b.WriteString("## Answer\n\n")
	b.WriteString(rec.Answer + "\n")

	if len(rec.Sources) > 0 {
		b.WriteString("\n## Sources\n\n")
		for i, src := range rec.Sources {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.ReplaceAll(src, "\n", " "))
		}
	}

	if rec.OCRText != "" {
		b.WriteString("\n## OCR Raw Text\n\n```\n")
		b.WriteString(strings.TrimRight(rec.OCRText, "\n") + "\n```\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// FileName is the default export file name for rec.
func FileName(rec Record, f Format) string {
	id := rec.ID
	if len(id) > 8 {
		id = id[:8]
	}
	if id == "" {
		id = "thread"
	}
	return "img2xl-" + id + f.Ext()
}

// WriteFile exports rec to path, creating its directory. Nothing is
// written when rec cannot be rendered in f.
func WriteFile(path string, rec Record, f Format) error {
	var buf bytes.Buffer
	if err := Export(&buf, rec, f); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
