// Package html renders the merged markdown as a standalone HTML page.
// Goldmark converts the markdown and bluemonday sanitises the result,
// so raw HTML in engine output cannot inject script into the page. The
// preview server serves the same rendition.
package html

import (
	"bytes"
	"context"
	"fmt"
	stdhtml "html"
	"os"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
)

// Ensure Exporter implements the interface.
var _ driven.Exporter = (*Exporter)(nil)

// pageShell wraps the sanitised body. The stylesheet lives in the head,
// outside the sanitised fragment.
const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; line-height: 1.7; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #999; padding: 0.3rem 0.6rem; }
img { max-width: 100%%; }
</style>
</head>
<body>
%s</body>
</html>
`

// Exporter renders the merged document to a single HTML file.
type Exporter struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

// New creates an HTML exporter. Raw HTML passes through goldmark so
// engine-emitted tags like <br> survive, then the sanitiser decides
// what reaches the page.
func New() *Exporter {
	return &Exporter{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(htmlrenderer.WithUnsafe()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Format identifies the output format.
func (e *Exporter) Format() domain.ExportFormat {
	return domain.FormatHTML
}

// Export writes the rendered page next to the other outputs.
func (e *Exporter) Export(_ context.Context, doc *domain.Document, ws domain.Workspace) (string, error) {
	if err := os.MkdirAll(ws.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	page, err := e.Render(doc.Title, doc.Merged)
	if err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}

	dest := ws.ExportPath(domain.FormatHTML)
	if err := os.WriteFile(dest, page, 0644); err != nil {
		return "", fmt.Errorf("writing html: %w", err)
	}
	return dest, nil
}

// Render converts markdown into a complete sanitised HTML document.
func (e *Exporter) Render(title, markdown string) ([]byte, error) {
	var body bytes.Buffer
	if err := e.markdown.Convert([]byte(markdown), &body); err != nil {
		return nil, err
	}
	clean := e.policy.SanitizeBytes(body.Bytes())

	var page bytes.Buffer
	fmt.Fprintf(&page, pageShell, stdhtml.EscapeString(title), clean)
	return page.Bytes(), nil
}
