package services

import (
	"context"
	"strings"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
	"github.com/ricopen19/OCR-to-doc/internal/logger"
)

// Ensure FallbackChain implements the engine interface.
var _ driven.OCREngine = (*FallbackChain)(nil)

// FallbackChain composes a primary engine with an optional secondary.
// The secondary runs only when the primary fails outright or returns
// output below the meaningful-content threshold, and its output is
// appended beneath the primary's rather than replacing it. Neither
// engine is ever retried.
type FallbackChain struct {
	primary  driven.OCREngine
	fallback driven.OCREngine
}

// NewFallbackChain creates the chain. fallback may be nil, in which
// case the chain is a pass-through for the primary.
func NewFallbackChain(primary, fallback driven.OCREngine) *FallbackChain {
	return &FallbackChain{primary: primary, fallback: fallback}
}

// Name identifies the chain in logs.
func (f *FallbackChain) Name() string {
	if f.fallback == nil {
		return f.primary.Name()
	}
	return f.primary.Name() + "+" + f.fallback.Name()
}

// Available checks the primary engine. The fallback's availability is
// the pipeline's concern; an unusable fallback is passed in as nil.
func (f *FallbackChain) Available(ctx context.Context) error {
	return f.primary.Available(ctx)
}

// Recognise runs the primary engine and, when its output is missing or
// too thin, augments it with the fallback's. The returned result is
// marked Recovered only when the fallback actually contributed
// content.
func (f *FallbackChain) Recognise(ctx context.Context, in driven.PageInput) (*domain.PageResult, error) {
	primary, perr := f.primary.Recognise(ctx, in)
	if perr == nil && primary != nil && !domain.TooThin(primary.Text) {
		return primary, nil
	}

	if perr != nil {
		logger.Warn("page %d: %s failed: %v", in.Page, f.primary.Name(), perr)
	} else {
		logger.Info("page %d: %s output below content threshold", in.Page, f.primary.Name())
	}

	if f.fallback == nil || !in.Options.FallbackEnabled {
		if perr != nil {
			return nil, perr
		}
		return primary, nil
	}

	secondary, serr := f.fallback.Recognise(ctx, in)
	if serr != nil || secondary == nil || domain.MeaningfulRunes(secondary.Text) == 0 {
		if serr != nil {
			logger.Warn("page %d: fallback %s failed: %v", in.Page, f.fallback.Name(), serr)
		}
		if perr != nil {
			return nil, perr
		}
		return primary, nil
	}

	if perr != nil || primary == nil {
		recovered := *secondary
		recovered.Text = strings.TrimSpace(secondary.Text)
		recovered.Engine = f.fallback.Name()
		recovered.Recovered = true
		logger.Info("page %d: recovered by %s", in.Page, f.fallback.Name())
		return &recovered, nil
	}

	merged := &domain.PageResult{
		Text:       combineTexts(primary.Text, secondary.Text, f.fallback.Name()),
		Tables:     append(append([]*domain.Table{}, primary.Tables...), secondary.Tables...),
		Figures:    append(append([]domain.Figure{}, primary.Figures...), secondary.Figures...),
		Confidence: primary.Confidence,
		Engine:     f.primary.Name() + "+" + f.fallback.Name(),
		Recovered:  true,
	}
	if merged.Confidence == 0 {
		merged.Confidence = secondary.Confidence
	}
	logger.Info("page %d: %s output appended beneath %s", in.Page, f.fallback.Name(), f.primary.Name())
	return merged, nil
}

// combineTexts appends the fallback output beneath the primary's with
// a marker naming the contributing engine.
func combineTexts(primary, secondary, engine string) string {
	p := strings.TrimSpace(primary)
	s := strings.TrimSpace(secondary)
	if p == "" {
		return s
	}
	if s == "" {
		return p
	}
	return p + "\n\n<!-- fallback: " + engine + " -->\n\n" + s
}
