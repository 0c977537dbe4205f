// Package text renders the merged document as plain text, for
// downstream tools that cannot consume markdown.
package text

import (
	"context"
	"fmt"
	"os"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
)

// Ensure Exporter implements the interface.
var _ driven.Exporter = (*Exporter)(nil)

// Exporter serialises the merged document to plain text.
type Exporter struct{}

// New creates a plain-text exporter.
func New() *Exporter {
	return &Exporter{}
}

// Format identifies the output format.
func (e *Exporter) Format() domain.ExportFormat {
	return domain.FormatText
}

// Export converts the merged markdown to plain text and writes it.
func (e *Exporter) Export(_ context.Context, doc *domain.Document, ws domain.Workspace) (string, error) {
	if err := os.MkdirAll(ws.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	content := ToPlainText(doc.Merged)
	if content != "" {
		content += "\n"
	}

	dest := ws.ExportPath(domain.FormatText)
	if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing plain text: %w", err)
	}
	return dest, nil
}
