package driven

import (
	"context"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// Exporter serialises a processed document into one output format.
// Each format has its own implementation; a failing exporter never
// affects the other formats.
type Exporter interface {
	// Format identifies the output format this exporter produces.
	Format() domain.ExportFormat

	// Export writes the document into the workspace and returns the
	// output path. Failures surface as errors wrapping
	// domain.ErrExportFailed.
	Export(ctx context.Context, doc *domain.Document, ws domain.Workspace) (string, error)
}
