// Package tesseract is the fallback OCR engine. It execs the
// tesseract CLI against a preprocessed copy of the page image; the
// preprocessing (grayscale, contrast boost, long-edge scaling) lifts
// recognition quality on scans the primary engine struggled with.
package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// Default configuration values. PSM 6 treats the page as one uniform
// text block, which suits rasterised document pages.
const (
	DefaultBinary    = "tesseract"
	DefaultLanguages = "jpn+eng"
	DefaultPSM       = 6
	DefaultTimeout   = 2 * time.Minute
)

// Config holds configuration for the tesseract engine.
type Config struct {
	// Binary is the executable to invoke (default: tesseract).
	Binary string

	// Languages is the tesseract language spec (default: jpn+eng).
	Languages string

	// PSM is the page segmentation mode (default: 6).
	PSM int

	// Timeout bounds a single invocation (default: 2m).
	Timeout time.Duration
}

// Engine invokes the tesseract CLI on preprocessed page images.
type Engine struct {
	binary    string
	languages string
	psm       int
	timeout   time.Duration
}

// New creates a tesseract engine.
func New(cfg Config) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.Languages == "" {
		cfg.Languages = DefaultLanguages
	}
	if cfg.PSM == 0 {
		cfg.PSM = DefaultPSM
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Engine{
		binary:    cfg.Binary,
		languages: cfg.Languages,
		psm:       cfg.PSM,
		timeout:   cfg.Timeout,
	}
}

// Name identifies the engine in logs and page results.
func (e *Engine) Name() string {
	return "tesseract"
}

// Available checks the binary can be resolved.
func (e *Engine) Available(ctx context.Context) error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	return nil
}

// Recognise preprocesses the page image and runs tesseract over it.
// The recognised text arrives on stdout; tesseract reports no tables
// or figures.
func (e *Engine) Recognise(ctx context.Context, in driven.PageInput) (*domain.PageResult, error) {
	prepPath, err := PreprocessToFile(in.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: preprocess page %d: %v", domain.ErrEngineFailed, in.Page, err)
	}
	defer os.Remove(prepPath)

	text, err := e.run(ctx, in.Workspace, in.Page, prepPath)
	if err != nil {
		return nil, err
	}

	return &domain.PageResult{
		Text:   strings.TrimSpace(text),
		Engine: e.Name(),
	}, nil
}

// run executes one invocation and appends it to the workspace
// invocation log.
func (e *Engine) run(ctx context.Context, ws domain.Workspace, page int, imagePath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := []string{imagePath, "stdout", "-l", e.languages, "--psm", strconv.Itoa(e.psm)}
	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	exit := 0
	if runErr != nil {
		exit = -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exit = exitErr.ExitCode()
		}
	}
	logInvocation(ws, page, e.binary, args, exit, stderr.String())

	if runErr != nil {
		detail := lastLine(stderr.String())
		if detail == "" {
			detail = runErr.Error()
		}
		return "", fmt.Errorf("%w: %s exited %d: %s", domain.ErrEngineFailed, e.binary, exit, detail)
	}
	return stdout.String(), nil
}

// logInvocation appends the command line, exit status and trimmed
// stderr to the invocation log. Stdout carries the recognised text
// and stays out of the log.
func logInvocation(ws domain.Workspace, page int, binary string, args []string, exit int, stderr string) {
	f, err := os.OpenFile(ws.InvocationLog(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "[page %03d] %s %s\nexit: %d\n", page, binary, strings.Join(args, " "), exit)
	if errOut := strings.TrimSpace(stderr); errOut != "" {
		fmt.Fprintf(f, "stderr:\n%s\n", errOut)
	}
	fmt.Fprintln(f)
}

// preprocessedPath places the temporary preprocessed image next to
// the source page image.
func preprocessedPath(imagePath string) string {
	ext := filepath.Ext(imagePath)
	return strings.TrimSuffix(imagePath, ext) + "_prep.png"
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
