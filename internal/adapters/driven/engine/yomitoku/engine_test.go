package yomitoku

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
	"github.com/ricopen19/OCR-to-doc/internal/core/ports/driven"
)

// writeFakeEngine installs a shell script standing in for the real
// CLI binary.
func writeFakeEngine(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yomitoku")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

func TestName(t *testing.T) {
	assert.Equal(t, "yomitoku", New(Config{}, nil).Name())
}

func TestAvailable(t *testing.T) {
	ctx := context.Background()

	missing := New(Config{Binary: "no-such-engine-binary"}, nil)
	assert.ErrorIs(t, missing.Available(ctx), domain.ErrEngineUnavailable)

	onPath := New(Config{Binary: "sh"}, nil)
	assert.NoError(t, onPath.Available(ctx))
}

func TestMarkdownArgs(t *testing.T) {
	engine := New(Config{}, nil)
	ws := domain.NewWorkspace("/out", "report.pdf", "")

	fast := domain.DefaultJobOptions()
	fast.Figures = true
	in := driven.PageInput{Page: 1, ImagePath: "/img/page_001.png", Workspace: ws, Options: fast}
	assert.Equal(t,
		[]string{"/img/page_001.png", "-f", "md", "-o", ws.Dir, "--lite", "-d", "cpu", "--figure"},
		engine.markdownArgs(in))

	accurate := domain.DefaultJobOptions()
	accurate.Mode = domain.OCRModeAccurate
	accurate.Device = domain.DeviceCUDA
	in.Options = accurate
	assert.Equal(t,
		[]string{"/img/page_001.png", "-f", "md", "-o", ws.Dir, "-d", "cuda"},
		engine.markdownArgs(in))
}

func TestSidecarArgs(t *testing.T) {
	engine := New(Config{}, nil)
	ws := domain.NewWorkspace("/out", "report.pdf", "")
	in := driven.PageInput{Page: 2, ImagePath: "/img/page_002.png", Workspace: ws, Options: domain.DefaultJobOptions()}

	assert.Equal(t,
		[]string{"/img/page_002.png", "-f", "json", "-o", ws.JSONDir(), "--lite", "-d", "cpu"},
		engine.jsonArgs(in))
	assert.Equal(t,
		[]string{"/img/page_002.png", "-f", "csv", "-o", ws.CSVDir(), "--lite", "-d", "cpu"},
		engine.csvArgs(in))
}

func TestRunRecordsInvocation(t *testing.T) {
	ws := testWorkspace(t)
	binary := writeFakeEngine(t, "echo recognised\n")
	engine := New(Config{Binary: binary}, nil)

	err := engine.run(context.Background(), ws, 1, []string{"input.png", "-f", "md"})
	require.NoError(t, err)

	log, err := os.ReadFile(ws.InvocationLog())
	require.NoError(t, err)
	assert.Contains(t, string(log), "[page 001] "+binary+" input.png -f md")
	assert.Contains(t, string(log), "exit: 0")
	assert.Contains(t, string(log), "recognised")
}

func TestRunFailureWrapsEngineError(t *testing.T) {
	ws := testWorkspace(t)
	binary := writeFakeEngine(t, "echo 'model not found' >&2\nexit 3\n")
	engine := New(Config{Binary: binary}, nil)

	err := engine.run(context.Background(), ws, 4, []string{"input.png"})
	require.ErrorIs(t, err, domain.ErrEngineFailed)
	assert.Contains(t, err.Error(), "model not found")

	log, readErr := os.ReadFile(ws.InvocationLog())
	require.NoError(t, readErr)
	assert.Contains(t, string(log), "exit: 3")
	assert.Contains(t, string(log), "stderr:")
}

// The fake engine writes a raw markdown artifact the way the real CLI
// does, into the directory named by -o.
const fakeMarkdownScript = `out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
mkdir -p "$out"
printf '# Heading\n\nBody text from the page.\n' > "$out/page_001_p1.md"
`

func TestRecogniseCollectsArtifacts(t *testing.T) {
	ws := testWorkspace(t)
	binary := writeFakeEngine(t, fakeMarkdownScript)
	engine := New(Config{Binary: binary}, nil)

	in := driven.PageInput{
		Page:      1,
		ImagePath: filepath.Join(ws.Dir, "missing.png"),
		Workspace: ws,
		Options:   domain.DefaultJobOptions(),
	}
	res, err := engine.Recognise(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "# Heading\n\nBody text from the page.", res.Text)
	assert.Equal(t, "yomitoku", res.Engine)
	assert.Empty(t, res.Tables)
	assert.Empty(t, res.Figures)

	// Raw artifact consumed, invocation logged.
	assert.NoFileExists(t, filepath.Join(ws.Dir, "page_001_p1.md"))
	log, err := os.ReadFile(ws.InvocationLog())
	require.NoError(t, err)
	assert.Contains(t, string(log), "-f md")
}

func TestRecogniseEngineCrash(t *testing.T) {
	ws := testWorkspace(t)
	binary := writeFakeEngine(t, "exit 9\n")
	engine := New(Config{Binary: binary}, nil)

	in := driven.PageInput{
		Page:      1,
		ImagePath: filepath.Join(ws.Dir, "missing.png"),
		Workspace: ws,
		Options:   domain.DefaultJobOptions(),
	}
	_, err := engine.Recognise(context.Background(), in)
	assert.ErrorIs(t, err, domain.ErrEngineFailed)
}

func TestRecogniseBlankPage(t *testing.T) {
	ws := testWorkspace(t)
	binary := writeFakeEngine(t, "exit 0\n")
	engine := New(Config{Binary: binary}, nil)

	in := driven.PageInput{
		Page:      2,
		ImagePath: filepath.Join(ws.Dir, "missing.png"),
		Workspace: ws,
		Options:   domain.DefaultJobOptions(),
	}
	res, err := engine.Recognise(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, res.Text)
}
