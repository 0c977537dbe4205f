// Package markdown writes the merged markdown document, the primary
// export format. Suspect formula lines collected during merge go to a
// review CSV next to it; the CSV disappears again once a re-run finds
// no issues.
package markdown

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
)

// Ensure Exporter implements the interface.
var _ driven.Exporter = (*Exporter)(nil)

// Exporter serialises the merged document to markdown.
type Exporter struct{}

// New creates a markdown exporter.
func New() *Exporter {
	return &Exporter{}
}

// Format identifies the output format.
func (e *Exporter) Format() domain.ExportFormat {
	return domain.FormatMarkdown
}

// Export writes the merged markdown and the math review CSV.
func (e *Exporter) Export(_ context.Context, doc *domain.Document, ws domain.Workspace) (string, error) {
	if err := os.MkdirAll(ws.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	content := doc.Merged
	if content != "" && content[len(content)-1] != '\n' {
		content += "\n"
	}

	dest := ws.ExportPath(domain.FormatMarkdown)
	if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing markdown: %w", err)
	}

	if err := writeMathReview(ws.MathReviewCSV(), doc.MathIssues); err != nil {
		return "", fmt.Errorf("writing math review: %w", err)
	}
	return dest, nil
}

// writeMathReview writes the review CSV, or removes a stale one when
// this run produced no issues.
func writeMathReview(path string, issues []domain.MathIssue) error {
	if len(issues) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"page", "line", "reason", "text"}); err != nil {
		return err
	}
	for _, issue := range issues {
		record := []string{
			strconv.Itoa(issue.Page),
			strconv.Itoa(issue.Line),
			issue.Kind,
			issue.Excerpt,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
