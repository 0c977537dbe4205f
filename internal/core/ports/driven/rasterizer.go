package driven

import (
	"context"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

// Rasterizer renders input documents into page images the OCR engines
// can consume.
type Rasterizer interface {
	// Open parses a document and prepares it for page rendering.
	// Returns domain.ErrInvalidInput for unreadable or corrupt files.
	Open(ctx context.Context, path string) (RenderSession, error)
}

// RenderSession holds an open document handle for rendering.
type RenderSession interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// RenderPage rasterises a 1-based page into dest and returns the
	// written path.
	RenderPage(ctx context.Context, page int, dest string, opts RenderOptions) (string, error)

	// Close releases the document handle.
	Close() error
}

// RenderOptions controls one page render.
type RenderOptions struct {
	// DPI is the raster resolution.
	DPI int

	// Crop restricts the rendered area to a normalised page region.
	// Nil renders the full page.
	Crop *domain.CropRect
}
