//go:build !gosseract

package gosseract

import (
	"context"
	"fmt"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// Engine runs tesseract in process through the gosseract binding.
// This is a stub for builds without the gosseract tag; Available
// always fails, so the scheduler falls back to the CLI adapter.
type Engine struct{}

// New creates an in-process tesseract engine.
func New(_ string) *Engine {
	return &Engine{}
}

// Name identifies the engine in logs and page results.
func (e *Engine) Name() string {
	return "gosseract"
}

// Available reports that no native binding was compiled in.
func (e *Engine) Available(_ context.Context) error {
	return fmt.Errorf("%w: built without gosseract support", domain.ErrEngineUnavailable)
}

// Recognise always fails in stub builds.
func (e *Engine) Recognise(_ context.Context, _ driven.PageInput) (*domain.PageResult, error) {
	return nil, fmt.Errorf("%w: built without gosseract support", domain.ErrEngineUnavailable)
}
