package markdown

import (
	"regexp"
	"strings"
)

// Rule is one named, pure text→text transform with a declared
// execution-order index. Line rules receive a single line; document
// rules receive the whole text. Rules never share state.
type Rule struct {
	// Name identifies the rule in fixtures and logs.
	Name string

	// Order is the execution position. Rules run in ascending order.
	Order int

	// Apply performs the transform.
	Apply func(string) string
}

// Line rules in execution order. TeX delimiter conversion must run
// before symbol unescaping, which would otherwise consume the
// backslash that marks a delimiter.
var lineRules = []Rule{
	{Name: "tex-delimiters", Order: 10, Apply: texDelimiters},
	{Name: "unescape-symbols", Order: 20, Apply: unescapeSymbols},
	{Name: "dangling-dollars", Order: 30, Apply: danglingDollars},
	{Name: "cjk-math-unwrap", Order: 40, Apply: cjkMathUnwrap},
	{Name: "heading-range", Order: 50, Apply: headingRange},
	{Name: "bullet-markers", Order: 60, Apply: bulletMarkers},
	{Name: "page-number-tail", Order: 70, Apply: pageNumberTail},
	{Name: "unit-tokens", Order: 80, Apply: unitTokens},
	{Name: "nested-text-collapse", Order: 90, Apply: nestedTextCollapse},
	{Name: "log-subscript", Order: 100, Apply: logSubscript},
	{Name: "stray-backrefs", Order: 110, Apply: strayBackrefs},
	{Name: "image-brackets", Order: 120, Apply: imageBrackets},
	{Name: "bare-line-breaks", Order: 130, Apply: bareLineBreaks},
}

// Document rules in execution order, applied after the line rules.
var documentRules = []Rule{
	{Name: "display-math-blocks", Order: 10, Apply: displayMathBlocks},
	{Name: "demote-extra-titles", Order: 20, Apply: demoteExtraTitles},
	{Name: "finalize-line-breaks", Order: 30, Apply: finalizeLineBreaks},
}

// LineRules returns a copy of the line rule catalogue.
func LineRules() []Rule {
	out := make([]Rule, len(lineRules))
	copy(out, lineRules)
	return out
}

// DocumentRules returns a copy of the document rule catalogue.
func DocumentRules() []Rule {
	out := make([]Rule, len(documentRules))
	copy(out, documentRules)
	return out
}

var (
	escapedSymbol    = regexp.MustCompile(`\\([-+={}()\[\]<>$\\])`)
	digitDollar      = regexp.MustCompile(`([0-9])\$([0-9])`)
	lonelyOperator   = regexp.MustCompile(`\$([+\-=±×÷])\$`)
	leadingOpDollar  = regexp.MustCompile(`(^|[\s　])\$([+\-=])`)
	trailingOpDollar = regexp.MustCompile(`([+\-=])\$($|[\s　])`)
	inlineMathSpan   = regexp.MustCompile(`\$([^$\n]+)\$`)
	cjkChar          = regexp.MustCompile(`[\p{Hiragana}\p{Katakana}\p{Han}]`)
	rangeHeading     = regexp.MustCompile(`^#\s*\$(\d+(?:-\d+)*)\$\s*(.*)$`)
	bulletPrefix     = regexp.MustCompile(`^[・●○◆■◇□▶▷]\s*`)
	pageTail         = regexp.MustCompile(`[.。・…]{2,}\s*(\d{1,4})\s*$`)
	unitToken        = regexp.MustCompile(`([0-9０-９])(\s*)((?:ビット|バイト|回|個|件|台|人|円|年|歳|分|秒|時間)(?:/(?:ビット|バイト|回|個|件|台|人|円|年|歳|分|秒|時間))?)`)
	nestedText       = regexp.MustCompile(`\\text\{\\text\{([^{}]*)\}\}`)
	logPower         = regexp.MustCompile(`log\^\{?([0-9])\}?\s*([A-Za-z])`)
	strayBackref     = regexp.MustCompile(`\\g<[0-9]+>`)
	brokenImage      = regexp.MustCompile(`!\[([^\]]*)\]\s+\(`)
	brVariants       = regexp.MustCompile(`<br\s*/?>`)
	brUnclosed       = regexp.MustCompile(`<br\s*$`)
	pageHeading      = regexp.MustCompile(`^#\s+Page\s+\d+\s*$`)
	singleLineMath   = regexp.MustCompile(`^\$\$(.+)\$\$$`)
	bareDigitLine    = regexp.MustCompile(`^\d{1,2}$`)
	htmlTagSpacing   = regexp.MustCompile(`<\s*(/?)\s*(details|summary)\s*>`)
	backslashAsset   = regexp.MustCompile(`(figures|page_images)\\+`)
	multiSpace       = regexp.MustCompile(`  +`)
)

// texDelimiters converts TeX-style \( \) \[ \] delimiters into dollar
// delimiters.
func texDelimiters(line string) string {
	line = strings.ReplaceAll(line, `\(`, "$")
	line = strings.ReplaceAll(line, `\)`, "$")
	line = strings.ReplaceAll(line, `\[`, "$$")
	line = strings.ReplaceAll(line, `\]`, "$$")
	return line
}

// unescapeSymbols strips the spurious backslash escapes OCR engines
// emit in front of plain punctuation.
func unescapeSymbols(line string) string {
	return escapedSymbol.ReplaceAllString(line, "$1")
}

// danglingDollars repairs stray dollar signs glued to digits or lone
// operators, which OCR produces around simple arithmetic.
func danglingDollars(line string) string {
	line = digitDollar.ReplaceAllString(line, "${1}${2}")
	line = lonelyOperator.ReplaceAllString(line, "${1}")
	line = leadingOpDollar.ReplaceAllString(line, "${1}${2}")
	line = trailingOpDollar.ReplaceAllString(line, "${1}${2}")
	return line
}

// cjkMathUnwrap removes dollar delimiters around spans that are mostly
// CJK prose. Spans carrying TeX commands are left alone.
func cjkMathUnwrap(line string) string {
	return inlineMathSpan.ReplaceAllStringFunc(line, func(span string) string {
		inner := span[1 : len(span)-1]
		if strings.Contains(inner, `\`) {
			return span
		}
		cjk := len(cjkChar.FindAllString(inner, -1))
		if cjk < 2 {
			return span
		}
		mathish := strings.Count(inner, "=") + strings.Count(inner, "+") +
			strings.Count(inner, "^") + strings.Count(inner, "_")
		if mathish > 0 && cjk < 4 {
			return span
		}
		return strings.TrimSpace(inner)
	})
}

// headingRange rewrites headings whose section number was wrapped in
// math delimiters, deriving the heading level from the range depth:
// "# $1-2$ Title" becomes "## 1-2 Title".
func headingRange(line string) string {
	m := rangeHeading.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	level := strings.Count(m[1], "-") + 1
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + strings.TrimSpace(m[1]+" "+m[2])
}

// bulletMarkers normalizes the decorated bullet glyphs scanners read
// out of print layouts into plain list markers.
func bulletMarkers(line string) string {
	if bulletPrefix.MatchString(line) {
		return bulletPrefix.ReplaceAllString(line, "- ")
	}
	return line
}

// pageNumberTail rewrites table-of-contents dot leaders ending in a
// page number into a parenthesised reference.
func pageNumberTail(line string) string {
	return pageTail.ReplaceAllString(line, "（p.${1}）")
}

// unitTokens wraps counted unit words that follow a digit in TeX text
// commands so unit-bearing formulas render consistently.
func unitTokens(line string) string {
	return unitToken.ReplaceAllString(line, "${1}${2}$$\\text{${3}}$$")
}

// nestedTextCollapse flattens \text{\text{x}} nesting produced when a
// unit was wrapped twice upstream.
func nestedTextCollapse(line string) string {
	for i := 0; i < 3; i++ {
		next := nestedText.ReplaceAllString(line, `\text{${1}}`)
		if next == line {
			break
		}
		line = next
	}
	return line
}

// logSubscript repairs the common misread of a logarithm base as an
// exponent: "log^2 n" means "log_2 n".
func logSubscript(line string) string {
	return logPower.ReplaceAllString(line, `\log_${1} ${2}`)
}

// strayBackrefs deletes literal regex backreference tokens leaked by
// an upstream tool.
func strayBackrefs(line string) string {
	return strayBackref.ReplaceAllString(line, "")
}

// imageBrackets closes the gap OCR opens between an image's bracket
// and parenthesis.
func imageBrackets(line string) string {
	return brokenImage.ReplaceAllString(line, "![${1}](")
}

// bareLineBreaks normalizes XHTML and truncated br tags to the plain
// form the finalizer understands.
func bareLineBreaks(line string) string {
	line = brVariants.ReplaceAllString(line, "<br>")
	line = brUnclosed.ReplaceAllString(line, "<br>")
	return line
}

// displayMathBlocks strips stray inner dollar signs from $$ display
// blocks and swallows the bare digit artifact engines sometimes emit
// on the line after a block.
func displayMathBlocks(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	inBlock := false
	afterBlock := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if inBlock {
			if trimmed == "$$" {
				inBlock = false
				afterBlock = true
				out = append(out, line)
				continue
			}
			out = append(out, strings.ReplaceAll(line, "$", ""))
			continue
		}

		if afterBlock && bareDigitLine.MatchString(trimmed) {
			afterBlock = false
			continue
		}
		afterBlock = false

		if trimmed == "$$" {
			inBlock = true
			out = append(out, line)
			continue
		}

		if m := singleLineMath.FindStringSubmatch(trimmed); m != nil {
			inner := strings.ReplaceAll(m[1], "$", "")
			out = append(out, "$$"+inner+"$$")
			afterBlock = true
			continue
		}

		out = append(out, line)
	}

	return strings.Join(out, "\n")
}

// demoteExtraTitles pushes every H1 that is not a page heading down to
// H2 so the merged document keeps exactly one heading level per page.
func demoteExtraTitles(text string) string {
	if !strings.Contains(text, "# Page ") {
		return text
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") && !pageHeading.MatchString(line) {
			lines[i] = "#" + line
		}
	}
	return strings.Join(lines, "\n")
}

// finalizeLineBreaks fixes spaced details/summary tags and converts
// br tags into real newlines everywhere except table rows, where the
// tag is the only way to break a cell.
func finalizeLineBreaks(text string) string {
	text = htmlTagSpacing.ReplaceAllString(text, "<${1}${2}>")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "|") {
			out = append(out, line)
			continue
		}
		out = append(out, strings.ReplaceAll(line, "<br>", "\n"))
	}
	return strings.Join(out, "\n")
}

// protectedLine reports whether a line carries a URL or link target
// and must be shielded from the generic rewriting rules.
func protectedLine(line string) bool {
	return strings.Contains(line, "http://") ||
		strings.Contains(line, "https://") ||
		strings.Contains(line, "](") ||
		strings.Contains(line, "<img")
}

// protectedSubset is the safe repair set for URL-bearing lines: br
// removal and backslash asset path fixes only.
func protectedSubset(line string) string {
	line = brVariants.ReplaceAllString(line, " ")
	line = backslashAsset.ReplaceAllString(line, "${1}/")
	line = multiSpace.ReplaceAllString(line, " ")
	return strings.TrimRight(line, " ")
}
