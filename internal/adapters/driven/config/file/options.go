package file

import (
	"time"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
)

// Configuration keys recognised in config.toml. Dot notation maps to
// TOML sections, so engine.mode lives under [engine] as mode.
const (
	KeyEngineMode      = "engine.mode"
	KeyEngineDevice    = "engine.device"
	KeyEngineFallback  = "engine.fallback"
	KeyEngineBinary    = "engine.binary"
	KeyTesseractBinary = "engine.tesseract_binary"
	KeyLanguages       = "engine.languages"

	KeyChunkSize   = "pages.chunk_size"
	KeyRestEnabled = "pages.rest"
	KeyRestSeconds = "pages.rest_seconds"

	KeyDPI = "raster.dpi"

	KeyFormats   = "export.formats"
	KeyTableMode = "export.table_mode"

	KeyFiguresEnabled = "figures.enabled"
	KeyIconPolicy     = "figures.icon_policy"

	KeyOutputDir = "output.dir"
)

// JobOptionsFromConfig overlays file configuration onto the default job
// options. Unset or unparseable keys keep their defaults; CLI flags are
// applied on top of the returned options.
func JobOptionsFromConfig(cfg driven.ConfigStore) domain.JobOptions {
	opts := domain.DefaultJobOptions()

	if mode, ok := domain.ParseOCRMode(cfg.GetString(KeyEngineMode)); ok {
		opts.Mode = mode
	}
	if device, ok := domain.ParseDevice(cfg.GetString(KeyEngineDevice)); ok {
		opts.Device = device
	}
	if tableMode, ok := domain.ParseTableMode(cfg.GetString(KeyTableMode)); ok {
		opts.TableMode = tableMode
	}
	if policy := domain.IconPolicy(cfg.GetString(KeyIconPolicy)); policy.IsValid() {
		opts.IconPolicy = policy
	}

	if formats := parseFormats(cfg.GetStringSlice(KeyFormats)); len(formats) > 0 {
		opts.Formats = formats
	}

	if n := cfg.GetInt(KeyChunkSize); n > 0 {
		opts.ChunkSize = n
	}
	if n := cfg.GetInt(KeyDPI); n > 0 {
		opts.DPI = n
	}
	if n := cfg.GetInt(KeyRestSeconds); n > 0 {
		opts.RestInterval = time.Duration(n) * time.Second
	}

	// Booleans go through Get so an absent key keeps its default.
	if v, ok := cfg.Get(KeyRestEnabled); ok {
		if b, ok := v.(bool); ok {
			opts.RestEnabled = b
		}
	}
	if v, ok := cfg.Get(KeyEngineFallback); ok {
		if b, ok := v.(bool); ok {
			opts.FallbackEnabled = b
		}
	}
	if v, ok := cfg.Get(KeyFiguresEnabled); ok {
		if b, ok := v.(bool); ok {
			opts.Figures = b
		}
	}

	if dir := cfg.GetString(KeyOutputDir); dir != "" {
		opts.OutputDir = dir
	}

	return opts.Normalize()
}

func parseFormats(names []string) []domain.ExportFormat {
	var formats []domain.ExportFormat
	for _, name := range names {
		if f, ok := domain.ParseExportFormat(name); ok {
			formats = append(formats, f)
		}
	}
	return formats
}
