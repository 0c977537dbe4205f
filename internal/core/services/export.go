package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
	"github.com/ricopen19/OCR-to-doc/internal/logger"
)

// ExportRunner fans the merged document out to the requested formats.
type ExportRunner struct {
	exporters map[domain.ExportFormat]driven.Exporter
}

// NewExportRunner registers the given serializers by format.
func NewExportRunner(exporters ...driven.Exporter) *ExportRunner {
	m := make(map[domain.ExportFormat]driven.Exporter, len(exporters))
	for _, e := range exporters {
		m[e.Format()] = e
	}
	return &ExportRunner{exporters: m}
}

// Run writes every requested format. A failing serializer loses only
// its own format: the remaining formats still run and the failures
// come back joined, each wrapping domain.ErrExportFailed.
func (r *ExportRunner) Run(ctx context.Context, doc *domain.Document, ws domain.Workspace, formats []domain.ExportFormat) (map[domain.ExportFormat]string, error) {
	outputs := make(map[domain.ExportFormat]string, len(formats))
	var errs []error

	for _, format := range formats {
		exporter, ok := r.exporters[format]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: no %s serializer registered", domain.ErrExportFailed, format))
			continue
		}
		path, err := exporter.Export(ctx, doc, ws)
		if err != nil {
			logger.Warn("Export %s failed: %v", format, err)
			errs = append(errs, fmt.Errorf("%w: %s: %w", domain.ErrExportFailed, format, err))
			continue
		}
		logger.Info("Exported %s: %s", format, path)
		outputs[format] = path
	}

	if len(errs) > 0 {
		return outputs, errors.Join(errs...)
	}
	return outputs, nil
}
