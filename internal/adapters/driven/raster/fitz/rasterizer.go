// Package fitz renders input documents into page images. PDFs are
// rasterised through MuPDF; standalone raster images are decoded and
// re-encoded as single-page documents.
package fitz

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	gofitz "github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
)

// Ensure Rasterizer implements the interface.
var _ driven.Rasterizer = (*Rasterizer)(nil)

// Rasterizer opens PDFs and raster images for page rendering.
type Rasterizer struct{}

// NewRasterizer creates a page rasterizer.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{}
}

// Open prepares the document for rendering. PDFs get a MuPDF-backed
// session; anything else is treated as a single-page image and decoded
// lazily on render.
func (r *Rasterizer) Open(ctx context.Context, path string) (driven.RenderSession, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		doc, err := gofitz.New(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, path, err)
		}
		return &pdfSession{doc: doc}, nil
	}
	return &imageSession{path: path}, nil
}

// pdfSession renders pages from an open MuPDF document handle.
type pdfSession struct {
	doc *gofitz.Document
}

func (s *pdfSession) PageCount() int {
	return s.doc.NumPage()
}

func (s *pdfSession) RenderPage(ctx context.Context, page int, dest string, opts driven.RenderOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if page < 1 || page > s.doc.NumPage() {
		return "", fmt.Errorf("%w: page %d outside document with %d pages", domain.ErrInvalidInput, page, s.doc.NumPage())
	}

	dpi := opts.DPI
	if dpi <= 0 {
		dpi = domain.DefaultDPI
	}

	// MuPDF pages are zero-indexed.
	img, err := s.doc.ImageDPI(page-1, float64(dpi))
	if err != nil {
		return "", fmt.Errorf("render page %d: %w", page, err)
	}

	if err := writePNG(dest, cropImage(img, opts.Crop)); err != nil {
		return "", fmt.Errorf("write page %d image: %w", page, err)
	}
	return dest, nil
}

func (s *pdfSession) Close() error {
	return s.doc.Close()
}

// imageSession serves a standalone raster image as a one-page
// document. DPI does not apply: the source pixels pass through as-is.
type imageSession struct {
	path string
}

func (s *imageSession) PageCount() int {
	return 1
}

func (s *imageSession) RenderPage(ctx context.Context, page int, dest string, opts driven.RenderOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if page != 1 {
		return "", fmt.Errorf("%w: page %d outside single-page image", domain.ErrInvalidInput, page)
	}

	img, err := decodeImage(s.path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, s.path, err)
	}

	if err := writePNG(dest, cropImage(img, opts.Crop)); err != nil {
		return "", fmt.Errorf("write page image: %w", err)
	}
	return dest, nil
}

func (s *imageSession) Close() error {
	return nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// cropImage cuts the normalised region out of the rendered page. A nil
// or zero-area crop returns the image unchanged.
func cropImage(img image.Image, crop *domain.CropRect) image.Image {
	if crop == nil {
		return img
	}
	b := img.Bounds()
	x0, y0, x1, y1, ok := crop.PixelBounds(b.Dx(), b.Dy())
	if !ok {
		return img
	}

	rect := image.Rect(b.Min.X+x0, b.Min.Y+y0, b.Min.X+x1, b.Min.Y+y1)
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(rect)
	}

	// Decoder types without SubImage get copied.
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), img, rect.Min, draw.Src)
	return dst
}

func writePNG(dest string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
