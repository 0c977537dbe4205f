package html

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricopen19/OCR-to-doc/internal/core/domain"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, domain.FormatHTML, New().Format())
}

func TestExportWritesStandaloneDocument(t *testing.T) {
	ws := domain.NewWorkspace(t.TempDir(), "report.pdf", "")
	doc := &domain.Document{
		Title:  "report",
		Merged: "# 概要\n\n本文です。",
	}

	path, err := New().Export(context.Background(), doc, ws)
	require.NoError(t, err)
	assert.Equal(t, ws.ExportPath(domain.FormatHTML), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(data)
	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, "<title>report</title>")
	assert.Contains(t, page, "<h1>概要</h1>")
	assert.Contains(t, page, "<p>本文です。</p>")
}

func TestRenderConvertsPipeTables(t *testing.T) {
	page, err := New().Render("t", "| 月 | 売上 |\n| --- | --- |\n| 4月 | 100 |")
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<th>月</th>")
	assert.Contains(t, html, "<td>100</td>")
}

func TestRenderStripsScript(t *testing.T) {
	page, err := New().Render("t", "安全な本文\n\n<script>alert(1)</script>")
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "安全な本文")
	assert.NotContains(t, html, "<script")
	assert.NotContains(t, html, "alert(1)")
}

func TestRenderKeepsLineBreaks(t *testing.T) {
	page, err := New().Render("t", "1行目<br>2行目")
	require.NoError(t, err)
	assert.Contains(t, string(page), "<br")
}

func TestRenderKeepsRelativeFigureLinks(t *testing.T) {
	page, err := New().Render("t", "![図1](report_figures/fig_001.png)")
	require.NoError(t, err)
	assert.Contains(t, string(page), `src="report_figures/fig_001.png"`)
}

func TestRenderEscapesTitle(t *testing.T) {
	page, err := New().Render("a<b", "本文")
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>a&lt;b</title>")
}

func TestExportEmptyDocument(t *testing.T) {
	ws := domain.NewWorkspace(t.TempDir(), "scan.png", "")

	path, err := New().Export(context.Background(), &domain.Document{Title: "scan"}, ws)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>scan</title>")
}
