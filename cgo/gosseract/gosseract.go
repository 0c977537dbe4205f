//go:build gosseract

package gosseract

import (
	"context"
	"fmt"
	"os"
	"strings"

	ocr "github.com/otiai10/gosseract/v2"

	"github.com/ricopen19/OCR-to-doc/internal/adapters/driven/engine/tesseract"
	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// DefaultLanguages matches the CLI adapter default.
const DefaultLanguages = "jpn+eng"

// Engine runs tesseract in process through the gosseract binding.
// Pages get the same preprocessing as the CLI adapter, so the two
// are interchangeable as the fallback engine.
type Engine struct {
	languages []string
}

// New creates an in-process tesseract engine. languages uses the
// tesseract "jpn+eng" spec.
func New(languages string) *Engine {
	if languages == "" {
		languages = DefaultLanguages
	}
	return &Engine{languages: strings.Split(languages, "+")}
}

// Name identifies the engine in logs and page results.
func (e *Engine) Name() string {
	return "gosseract"
}

// Available checks the linked tesseract library responds.
func (e *Engine) Available(_ context.Context) error {
	client := ocr.NewClient()
	defer client.Close()

	if client.Version() == "" {
		return fmt.Errorf("%w: native tesseract reports no version", domain.ErrEngineUnavailable)
	}
	return nil
}

// Recognise preprocesses the page image and recognises it in process.
func (e *Engine) Recognise(ctx context.Context, in driven.PageInput) (*domain.PageResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prepPath, err := tesseract.PreprocessToFile(in.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: preprocess page %d: %v", domain.ErrEngineFailed, in.Page, err)
	}
	defer os.Remove(prepPath)

	text, err := e.recognise(prepPath)
	logInvocation(in.Workspace, in.Page, prepPath, e.languages, err)
	if err != nil {
		return nil, fmt.Errorf("%w: gosseract page %d: %v", domain.ErrEngineFailed, in.Page, err)
	}

	return &domain.PageResult{
		Text:   strings.TrimSpace(text),
		Engine: e.Name(),
	}, nil
}

func (e *Engine) recognise(imagePath string) (string, error) {
	client := ocr.NewClient()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return "", err
	}
	if err := client.SetPageSegMode(ocr.PSM_SINGLE_BLOCK); err != nil {
		return "", err
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", err
	}
	return client.Text()
}

// logInvocation mirrors the CLI adapters' invocation log entries so
// ocr.log stays uniform across engines.
func logInvocation(ws domain.Workspace, page int, imagePath string, languages []string, runErr error) {
	f, err := os.OpenFile(ws.InvocationLog(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	exit := 0
	if runErr != nil {
		exit = 1
	}
	fmt.Fprintf(f, "[page %03d] gosseract %s -l %s (in-process)\nexit: %d\n", page, imagePath, strings.Join(languages, "+"), exit)
	if runErr != nil {
		fmt.Fprintf(f, "stderr:\n%s\n", runErr.Error())
	}
	fmt.Fprintln(f)
}
