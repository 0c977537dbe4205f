// Package csv writes table data as CSV files. The layout follows the
// document shape: structure-split groups become one file per group
// under the workspace tables directory, plain page tables become a
// single file of blank-line separated blocks, and a document with no
// tables at all falls back to a one-column body CSV with one paragraph
// per row.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driven/export/text"
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
	"github.com/ricopen19/OCR-to-doc/internal/postprocessors/paragraphs"
)

// Ensure Exporter implements the interface.
var _ driven.Exporter = (*Exporter)(nil)

// bodyHeader is the column title of the paragraph fallback CSV.
const bodyHeader = "本文"

// Exporter serialises document tables, or failing that the body text,
// to CSV.
type Exporter struct{}

// New creates a CSV exporter.
func New() *Exporter {
	return &Exporter{}
}

// Format identifies the output format.
func (e *Exporter) Format() domain.ExportFormat {
	return domain.FormatCSV
}

// Export writes the CSV rendition and returns the path callers should
// report: the tables directory when groups were written, otherwise the
// single output file.
func (e *Exporter) Export(_ context.Context, doc *domain.Document, ws domain.Workspace) (string, error) {
	if len(doc.Groups) > 0 {
		return exportGroups(doc.Groups, ws)
	}
	if tables := contentTables(doc); len(tables) > 0 {
		return exportTables(tables, ws)
	}
	return exportBody(doc, ws)
}

// exportGroups writes one CSV per table group, named by ordinal and
// group name so the directory listing follows document order.
func exportGroups(groups []domain.TableGroup, ws domain.Workspace) (string, error) {
	dir := ws.TablesDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating tables directory: %w", err)
	}

	for i, group := range groups {
		name := fmt.Sprintf("%02d_%s.csv", i+1, fileName(group.Name))
		if err := writeGroup(filepath.Join(dir, name), group); err != nil {
			return "", fmt.Errorf("writing table %q: %w", group.Name, err)
		}
	}
	return dir, nil
}

func writeGroup(path string, group domain.TableGroup) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := stdcsv.NewWriter(f)
	if len(group.Header) > 0 {
		if err := w.Write(group.Header); err != nil {
			return err
		}
	}
	for _, row := range group.Rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// exportTables writes page tables into one file as blocks separated by
// a blank line, the shape spreadsheet importers read back as separate
// tables.
func exportTables(tables []*domain.Table, ws domain.Workspace) (string, error) {
	if err := os.MkdirAll(ws.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	dest := ws.ExportPath(domain.FormatCSV)
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("writing csv: %w", err)
	}
	defer f.Close()

	w := stdcsv.NewWriter(f)
	for i, table := range tables {
		if i > 0 {
			// The writer buffers, so flush before the separator line
			// goes to the file directly.
			w.Flush()
			if _, err := fmt.Fprintln(f); err != nil {
				return "", fmt.Errorf("writing csv: %w", err)
			}
		}
		for r := 0; r < table.Rows; r++ {
			if err := w.Write(table.RowTexts(r)); err != nil {
				return "", fmt.Errorf("writing csv: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("writing csv: %w", err)
	}
	return dest, nil
}

// exportBody writes the merged text as a one-column CSV, one paragraph
// per row, so a document without tables still produces a usable file.
func exportBody(doc *domain.Document, ws domain.Workspace) (string, error) {
	if err := os.MkdirAll(ws.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	dest := ws.ExportPath(domain.FormatCSV)
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("writing csv: %w", err)
	}
	defer f.Close()

	w := stdcsv.NewWriter(f)
	if err := w.Write([]string{bodyHeader}); err != nil {
		return "", fmt.Errorf("writing csv: %w", err)
	}
	for _, para := range paragraphs.Split(text.ToPlainText(doc.Merged)) {
		if err := w.Write([]string{para}); err != nil {
			return "", fmt.Errorf("writing csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("writing csv: %w", err)
	}
	return dest, nil
}

// contentTables returns the document's page tables with empty grids
// dropped.
func contentTables(doc *domain.Document) []*domain.Table {
	var tables []*domain.Table
	for _, t := range doc.Tables() {
		if t.Empty() {
			continue
		}
		tables = append(tables, t)
	}
	return tables
}

// fileName makes a group name safe to use as a file name component.
func fileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(`/\:*?"<>|`, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	cleaned := strings.Trim(b.String(), " .")
	if cleaned == "" {
		return "table"
	}
	return cleaned
}
