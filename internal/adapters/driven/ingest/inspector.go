// Package ingest validates and classifies input files before a job is
// created.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
)

// Ensure Inspector implements the interface.
var _ driven.InputInspector = (*Inspector)(nil)

// imageExts lists the raster formats the pipeline accepts directly.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".webp": true,
}

// convertFirst maps recognised but unprocessable extensions to the
// conversion hint reported to the user. These stay upstream: the
// pipeline never converts them itself.
var convertFirst = map[string]string{
	".heic": "convert to JPEG or PNG first",
	".heif": "convert to JPEG or PNG first",
	".svg":  "rasterise to PNG first",
}

// Inspector classifies input files by extension and counts PDF pages
// without rendering.
type Inspector struct{}

// NewInspector creates an input inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// Inspect validates the input file and classifies it as a PDF or a
// single-page image.
func (i *Inspector) Inspect(ctx context.Context, path string) (*driven.InputInfo, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		pages, err := pdfPageCount(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, path, err)
		}
		return &driven.InputInfo{Path: path, Kind: driven.InputPDF, Pages: pages}, nil

	case imageExts[ext]:
		return &driven.InputInfo{Path: path, Kind: driven.InputImage, Pages: 1}, nil

	case convertFirst[ext] != "":
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedInput, ext, convertFirst[ext])

	case ext == "":
		return nil, fmt.Errorf("%w: %s has no file extension", domain.ErrUnsupportedInput, filepath.Base(path))

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedInput, ext)
	}
}

// pdfPageCount reads the page count from the document catalogue.
func pdfPageCount(path string) (int, error) {
	pages, err := api.PageCountFile(path)
	if err != nil {
		return 0, err
	}
	if pages < 1 {
		return 0, fmt.Errorf("document has no pages")
	}
	return pages, nil
}
