// Package yomitoku drives the yomitoku OCR CLI. Each page invocation
// shells out once for markdown, optionally again for the JSON and CSV
// sidecar payloads, then normalises the raw artifacts: markdown parts
// are joined, figure assets get stable names with links rewritten, and
// decorative icons are filtered out.
package yomitoku

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// Default configuration values.
const (
	DefaultBinary  = "yomitoku"
	DefaultTimeout = 5 * time.Minute
)

// TableBuilder normalises raw engine cell records into canonical
// grids. Satisfied by the core table model builder.
type TableBuilder interface {
	Build(label string, page, declaredRows, declaredCols int, records []domain.CellRecord) *domain.Table
}

// Config holds configuration for the yomitoku engine.
type Config struct {
	// Binary is the executable to invoke (default: yomitoku).
	Binary string

	// Timeout bounds a single invocation (default: 5m).
	Timeout time.Duration
}

// Engine invokes the yomitoku CLI once per page image.
type Engine struct {
	binary  string
	timeout time.Duration
	tables  TableBuilder
	icons   *iconFilter
}

// New creates a yomitoku engine.
func New(cfg Config, tables TableBuilder) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Engine{
		binary:  cfg.Binary,
		timeout: cfg.Timeout,
		tables:  tables,
		icons:   newIconFilter(),
	}
}

// Name identifies the engine in logs and page results.
func (e *Engine) Name() string {
	return "yomitoku"
}

// Available checks the binary can be resolved.
func (e *Engine) Available(ctx context.Context) error {
	if _, err := exec.LookPath(e.binary); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEngineUnavailable, err)
	}
	return nil
}

// Recognise runs OCR on one page image and normalises the emitted
// artifacts into a structured result.
func (e *Engine) Recognise(ctx context.Context, in driven.PageInput) (*domain.PageResult, error) {
	ws := in.Workspace

	if err := e.run(ctx, ws, in.Page, e.markdownArgs(in)); err != nil {
		return nil, err
	}

	text, err := collectPageMarkdown(ws, in.Page)
	if err != nil {
		return nil, fmt.Errorf("%w: collect page %d output: %v", domain.ErrEngineFailed, in.Page, err)
	}

	mapping, err := renameFigures(ws, in.Page)
	if err != nil {
		return nil, fmt.Errorf("%w: rename page %d figures: %v", domain.ErrEngineFailed, in.Page, err)
	}
	text = rewriteFigureLinks(text, mapping)
	text = imgTagsToMarkdown(text)

	pageW, pageH := pageMetrics(in.ImagePath)
	figures, removed := e.icons.apply(ws, in.Page, in.Options.IconPolicy, pageW, pageH)
	text = stripFigureReferences(text, removed)

	var tables []*domain.Table
	if in.Options.TableMode == domain.TableModeTable {
		tables, err = e.extractTables(ctx, in)
		if err != nil {
			// Table extraction is additive: the page still carries
			// its markdown when the sidecar run fails.
			e.appendNote(ws, in.Page, "table payload: %v", err)
			tables = nil
		}
		if len(tables) == 0 {
			tables = e.tablesFromMarkdown(in.Page, text)
		}
	}
	if wantsFormat(in.Options.Formats, domain.FormatCSV) {
		e.emitCSVArtifact(ctx, in)
	}

	return &domain.PageResult{
		Text:    strings.TrimSpace(text),
		Tables:  tables,
		Figures: figures,
		Engine:  e.Name(),
	}, nil
}

// run executes one CLI invocation and appends it to the invocation
// log, whatever the outcome.
func (e *Engine) run(ctx context.Context, ws domain.Workspace, page int, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

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
	e.logInvocation(ws, page, args, exit, stdout.String(), stderr.String())

	if runErr != nil {
		detail := lastLine(stderr.String())
		if detail == "" {
			detail = runErr.Error()
		}
		return fmt.Errorf("%w: %s exited %d: %s", domain.ErrEngineFailed, e.binary, exit, detail)
	}
	return nil
}

// extractTables runs the JSON sidecar and builds canonical grids from
// its cell records.
func (e *Engine) extractTables(ctx context.Context, in driven.PageInput) ([]*domain.Table, error) {
	ws := in.Workspace
	if err := os.MkdirAll(ws.JSONDir(), 0755); err != nil {
		return nil, err
	}
	if err := e.run(ctx, ws, in.Page, e.jsonArgs(in)); err != nil {
		return nil, err
	}

	path, err := canonicalizeArtifact(ws.JSONDir(), in.Page, "json", ws.PageJSON(in.Page))
	if err != nil || path == "" {
		return nil, err
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.parseTables(in.Page, payload)
}

// tablesFromMarkdown recovers grids from <table> fragments embedded in
// the page markdown, used when the JSON sidecar reports no tables.
func (e *Engine) tablesFromMarkdown(page int, text string) []*domain.Table {
	var tables []*domain.Table
	for i, records := range parseHTMLTables(text) {
		label := fmt.Sprintf("page%03d_table%02d", page, i+1)
		tables = append(tables, e.tables.Build(label, page, 0, 0, records))
	}
	return tables
}

// emitCSVArtifact runs the CSV sidecar. Failures are already recorded
// in the invocation log; missing CSV never fails the page.
func (e *Engine) emitCSVArtifact(ctx context.Context, in driven.PageInput) {
	ws := in.Workspace
	if err := os.MkdirAll(ws.CSVDir(), 0755); err != nil {
		e.appendNote(ws, in.Page, "csv artifact: %v", err)
		return
	}
	if err := e.run(ctx, ws, in.Page, e.csvArgs(in)); err != nil {
		return
	}
	if _, err := canonicalizeArtifact(ws.CSVDir(), in.Page, "csv", ws.PageCSV(in.Page)); err != nil {
		e.appendNote(ws, in.Page, "csv artifact: %v", err)
	}
}

func (e *Engine) markdownArgs(in driven.PageInput) []string {
	args := []string{in.ImagePath, "-f", "md", "-o", in.Workspace.Dir}
	args = append(args, modeArgs(in.Options)...)
	if in.Options.Figures {
		args = append(args, "--figure")
	}
	return args
}

func (e *Engine) jsonArgs(in driven.PageInput) []string {
	args := []string{in.ImagePath, "-f", "json", "-o", in.Workspace.JSONDir()}
	return append(args, modeArgs(in.Options)...)
}

func (e *Engine) csvArgs(in driven.PageInput) []string {
	args := []string{in.ImagePath, "-f", "csv", "-o", in.Workspace.CSVDir()}
	return append(args, modeArgs(in.Options)...)
}

// modeArgs maps the job options onto the CLI contract: fast mode runs
// the lite models, and the device is always explicit.
func modeArgs(opts domain.JobOptions) []string {
	var args []string
	if opts.Mode == domain.OCRModeFast {
		args = append(args, "--lite")
	}
	return append(args, "-d", opts.Device.String())
}

// logInvocation appends the command line, exit status and trimmed
// output streams to the workspace invocation log.
func (e *Engine) logInvocation(ws domain.Workspace, page int, args []string, exit int, stdout, stderr string) {
	f, err := os.OpenFile(ws.InvocationLog(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "[page %03d] %s %s\nexit: %d\n", page, e.binary, strings.Join(args, " "), exit)
	if out := strings.TrimSpace(stdout); out != "" {
		fmt.Fprintf(f, "stdout:\n%s\n", out)
	}
	if errOut := strings.TrimSpace(stderr); errOut != "" {
		fmt.Fprintf(f, "stderr:\n%s\n", errOut)
	}
	fmt.Fprintln(f)
}

// appendNote adds a free-form line to the invocation log.
func (e *Engine) appendNote(ws domain.Workspace, page int, format string, args ...any) {
	f, err := os.OpenFile(ws.InvocationLog(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "[page %03d] "+format+"\n\n", append([]any{page}, args...)...)
}

// pageMetrics reads the rendered page dimensions for the icon filter's
// relative-size heuristics. Zero dimensions disable the ratio checks.
func pageMetrics(imagePath string) (width, height int) {
	f, err := os.Open(imagePath)
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

func wantsFormat(formats []domain.ExportFormat, want domain.ExportFormat) bool {
	for _, f := range formats {
		if f == want {
			return true
		}
	}
	return false
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
