package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/ricopen19/OCR-to-doc/cgo/gosseract"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driven/config/file"
	csvexport "github.com/ricopen19/OCR-to-doc/internal/adapters/driven/export/csv"
	htmlexport "github.com/ricopen19/OCR-to-doc/internal/adapters/driven/export/html"
	mdexport "github.com/ricopen19/OCR-to-doc/internal/adapters/driven/export/markdown"
	textexport "github.com/ricopen19/OCR-to-doc/internal/adapters/driven/export/text"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driven/engine/tesseract"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driven/engine/yomitoku"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driven/ingest"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driven/raster/fitz"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driven/storage/sqlite"
	"github.com/ricopen19/OCR-to-doc/internal/adapters/driving/cli"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
	"github.com/ricopen19/OCR-to-doc/internal/core/services"
	"github.com/ricopen19/OCR-to-doc/internal/logger"
	"github.com/ricopen19/OCR-to-doc/internal/normalisers/markdown"
)

// version is set at build time:
//
//	go build -ldflags "-X main.version=1.2.3"
var version = "dev"

// defaultOutputRoot is where workspaces land when neither the config
// file nor the job options name a directory.
const defaultOutputRoot = "output"

func main() {
	// A missing .env is fine; environment stays as-is.
	_ = godotenv.Load()

	os.Exit(run())
}

func run() int {
	home, err := appHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := os.MkdirAll(home, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: creating %s: %v\n", home, err)
		return 1
	}

	cfg, err := file.NewConfigStore(home)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading configuration: %v\n", err)
		return 1
	}

	store, err := sqlite.NewStore(home)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening job store: %v\n", err)
		return 1
	}
	defer store.Close()

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Jobs:     buildPipeline(cfg, store),
		Config:   cfg,
		Renderer: htmlexport.New(),
		Defaults: file.JobOptionsFromConfig(cfg),
	})

	// Cobra prints the error itself.
	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}

// buildPipeline assembles the job service from the driven adapters.
func buildPipeline(cfg driven.ConfigStore, store driven.JobStore) *services.Pipeline {
	tables := services.NewTableBuilder()

	primary := yomitoku.New(yomitoku.Config{
		Binary: cfg.GetString(file.KeyEngineBinary),
	}, tables)

	engine := services.NewFallbackChain(primary, fallbackEngine(cfg))

	outputRoot := cfg.GetString(file.KeyOutputDir)
	if outputRoot == "" {
		outputRoot = defaultOutputRoot
	}

	scheduler := services.NewScheduler(engine, fitz.NewRasterizer(), store)
	builder := services.NewDocumentBuilder(markdown.New())
	exports := services.NewExportRunner(
		mdexport.New(),
		csvexport.New(),
		textexport.New(),
		htmlexport.New(),
	)

	return services.NewPipeline(ingest.NewInspector(), store, scheduler, builder, exports, outputRoot)
}

// fallbackEngine probes the tesseract installations and returns nil
// when none is usable, which turns the chain into a pass-through.
// Builds tagged gosseract prefer the in-process binding; elsewhere
// its stub reports unavailable and the CLI adapter is probed instead.
func fallbackEngine(cfg driven.ConfigStore) driven.OCREngine {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	native := gosseract.New(cfg.GetString(file.KeyLanguages))
	if err := native.Available(ctx); err == nil {
		return native
	}

	engine := tesseract.New(tesseract.Config{
		Binary:    cfg.GetString(file.KeyTesseractBinary),
		Languages: cfg.GetString(file.KeyLanguages),
	})
	if err := engine.Available(ctx); err != nil {
		logger.Debug("fallback engine unavailable: %v", err)
		return nil
	}
	return engine
}

// appHome resolves the directory holding config.toml and the job
// database. OCR2DOC_HOME overrides the ~/.ocr2doc default.
func appHome() (string, error) {
	if dir := os.Getenv("OCR2DOC_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".ocr2doc"), nil
}
