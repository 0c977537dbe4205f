package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalise_CombinedDocument(t *testing.T) {
	input := "# $1-2$ 計算方法\n\n・処理は 16ビット/回 で進む\n第1章 はじめに……12"
	want := "## 1-2 計算方法\n\n- 処理は 16$\\text{ビット/回}$ で進む\n第1章 はじめに（p.12）"

	assert.Equal(t, want, New().Normalise(input))
}

func TestNormalise_UnitExpressions(t *testing.T) {
	got := New().Normalise("処理速度は 10 × 10^3 回/秒 × 16ビット/回 です。")

	assert.Contains(t, got, `\text{回/秒}`)
	assert.Contains(t, got, `\text{ビット/回}`)
}

func TestNormalise_DisplayBlockWithArtifactLine(t *testing.T) {
	got := New().Normalise("$$ $n+11-a$ $$\n2")

	assert.Equal(t, "$$ n+11-a $$", got)
}

func TestNormalise_LogBase(t *testing.T) {
	got := New().Normalise("計算量は $log^{2} n$ で抑えられる。")

	assert.Contains(t, got, `\log_2 n`)
}

func TestNormalise_KeepsRealMath(t *testing.T) {
	got := New().Normalise(`これは\(x+y\)の式です。`)

	assert.Equal(t, "これは$x+y$の式です。", got)
}

func TestNormalise_UnwrapsProseInMathDelimiters(t *testing.T) {
	got := New().Normalise("$これは数式ではなく日本語の文章$")

	assert.Equal(t, "これは数式ではなく日本語の文章", got)
}

func TestNormalise_ProtectsURLLines(t *testing.T) {
	got := New().Normalise(`画像は<br>[こちら](https://example.com/figs)を参照 figures\fig_01.png`)

	assert.Contains(t, got, "https://example.com/figs")
	assert.Contains(t, got, "figures/fig_01.png")
	assert.NotContains(t, got, "<br>")
	assert.NotContains(t, got, `\`)
}

func TestNormalise_ProtectedLineSkipsGenericRules(t *testing.T) {
	got := New().Normalise("・リンク付き行 [仕様](doc.md)")

	// A link target shields the whole line, bullet glyph included.
	assert.Equal(t, "・リンク付き行 [仕様](doc.md)", got)
}

func TestNormalise_BreaksParagraphBrTags(t *testing.T) {
	got := New().Normalise("段落の途中<br/>で改行が入る。")

	assert.Equal(t, "段落の途中\nで改行が入る。", got)
}

func TestNormalise_KeepsBrInsideTableRows(t *testing.T) {
	input := "| 列A | 列B |\n| --- | --- |\n| a<br>b | c |"

	assert.Equal(t, input, New().Normalise(input))
}

func TestNormalise_Idempotent(t *testing.T) {
	samples := []string{
		"# $1-2$ アルゴリズムの計算量",
		"処理速度は 10 × 10^3 回/秒 × 16ビット/回 です。",
		"・最初の項目\n・二番目の項目",
		"$$ $n+11-a$ $$\n2",
		"計算量は $log^{2} n$ で抑えられる。",
		"第1章 導入……3\n第2章 手法……15",
		"これは\\(x+y\\)の式です。",
		"| 列A | 列B |\n| --- | --- |\n| a<br>b | c |",
		"[仕様書](https://example.com/spec)を参照。",
		"段落の途中<br/>で改行が入る。",
		"# Page 1\n# 概要\n本文。\n\n# Page 2\n続き。",
		"$これは数式ではなく日本語の文章$",
		`料金は \$100 \- \$200 の範囲。`,
		"![図1] (figures/fig_page001_01.png)",
	}

	n := New()
	for i, s := range samples {
		once := n.Normalise(s)
		twice := n.Normalise(once)
		assert.Equal(t, once, twice, "sample %d did not stabilise", i)
	}
}
