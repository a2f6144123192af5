// Package report persists a processed scan as a spreadsheet, JSON or
// Markdown file, chosen by the output file's extension.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vulnreport/internal/model"
)

// Data is everything a report is built from.
type Data struct {
	Title           string                         `json:"title"`
	DetailsURL      string                         `json:"detailsUrl,omitempty"`
	GeneratedAt     time.Time                      `json:"generatedAt"`
	RunID           string                         `json:"runId,omitempty"`
	Scanner         string                         `json:"scanner,omitempty"`
	Summary         model.SeveritySummary          `json:"summary"`
	Vulnerabilities []model.VerdictedVulnerability `json:"vulnerabilities"`
}

// Writer encodes Data in one file format.
type Writer interface {
	Write(w io.Writer, d Data) error
}

var writers = map[string]Writer{
	".xlsx":     ExcelWriter{},
	".json":     JSONWriter{},
	".md":       MarkdownWriter{},
	".markdown": MarkdownWriter{},
}

// WriterFor picks the writer for path's extension.
func WriterFor(path string) (Writer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	w, ok := writers[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported report format %q (use .xlsx, .json or .md)", ext)
	}
	return w, nil
}

// Generate writes d to path in the format its extension names.
func Generate(path string, d Data) (err error) {
	w, err := WriterFor(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close report file: %w", cerr)
		}
	}()

	if err := w.Write(f, d); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func firstReference(v model.VerdictedVulnerability) string {
	if len(v.References) == 0 {
		return ""
	}
	return v.References[0]
}
