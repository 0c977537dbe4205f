package text

import (
	"regexp"
	"strings"
)

var (
	imgMDPattern   = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)
	imgHTMLPattern = regexp.MustCompile(`(?i)<img[^>]*src="([^"]+)"[^>]*>`)
	linkMDPattern  = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)

	codeFencePattern = regexp.MustCompile("(?m)^```[^\n]*$")

	headingPattern    = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+`)
	blockquotePattern = regexp.MustCompile(`(?m)^\s{0,3}>\s?`)
	hrPattern         = regexp.MustCompile(`(?m)^\s{0,3}(-{3,}|\*{3,}|_{3,})\s*$`)

	inlineCodePattern    = regexp.MustCompile("`([^`]+)`")
	strongPattern        = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	strongUnderPattern   = regexp.MustCompile(`__([^_]+)__`)
	emphasisPattern      = regexp.MustCompile(`\*([^*]+)\*`)
	emphasisUnderPattern = regexp.MustCompile(`_([^_]+)_`)

	tableDividerPattern = regexp.MustCompile(`^\s*\|?(?:\s*:?-{2,}:?\s*\|)+\s*:?-{2,}:?\s*\|?\s*$`)
	tableRowPattern     = regexp.MustCompile(`^\s*\|.+\|\s*$`)

	texBlockPattern   = regexp.MustCompile(`\$\$([\s\S]+?)\$\$`)
	texInlinePattern  = regexp.MustCompile(`\$([^$]+)\$`)
	texParenPattern   = regexp.MustCompile(`\\\(([\s\S]+?)\\\)`)
	texBracketPattern = regexp.MustCompile(`\\\[([\s\S]+?)\\\]`)

	htmlTagPattern   = regexp.MustCompile(`</?[^>]+>`)
	blankRunsPattern = regexp.MustCompile(`\n{3,}`)
)

// ToPlainText renders markdown-ish OCR output as plain text: images
// become [画像: path] labels, table rows become TSV with the divider
// row dropped, math keeps its body with the delimiters removed, and
// remaining markup is stripped.
func ToPlainText(md string) string {
	text := md

	// Normalize <br> early so line-oriented passes see real lines.
	text = strings.ReplaceAll(text, "<br>", "\n")

	// Code fences: keep contents, drop the markers.
	text = codeFencePattern.ReplaceAllString(text, "")

	// Images become labels before links strip their bracket syntax.
	text = replaceGroup(imgHTMLPattern, text, func(url string) string { return "[画像: " + url + "]" })
	text = replaceGroup(imgMDPattern, text, func(url string) string { return "[画像: " + url + "]" })

	// Links keep their text only.
	text = replaceGroup(linkMDPattern, text, func(label string) string { return label })

	text = headingPattern.ReplaceAllString(text, "")
	text = blockquotePattern.ReplaceAllString(text, "")
	text = hrPattern.ReplaceAllString(text, "")

	text = convertTables(text)

	text = replaceGroup(inlineCodePattern, text, keepBody)
	text = replaceGroup(strongPattern, text, keepBody)
	text = replaceGroup(strongUnderPattern, text, keepBody)
	text = replaceGroup(emphasisPattern, text, keepBody)
	text = replaceGroup(emphasisUnderPattern, text, keepBody)

	// Math delimiters go last, after link and image handling.
	text = stripMathDelimiters(text)

	// Drop whatever HTML tags remain.
	text = htmlTagPattern.ReplaceAllString(text, "")

	text = blankRunsPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// convertTables rewrites markdown table rows as TSV lines and drops
// divider rows.
func convertTables(text string) string {
	lines := strings.Split(text, "\n")
	converted := make([]string, 0, len(lines))
	for _, line := range lines {
		if tableDividerPattern.MatchString(line) {
			continue
		}
		if tableRowPattern.MatchString(line) && strings.Count(line, "|") >= 2 {
			converted = append(converted, tableRowToTSV(line))
			continue
		}
		converted = append(converted, line)
	}
	return strings.Join(converted, "\n")
}

func tableRowToTSV(line string) string {
	stripped := strings.TrimSpace(line)
	stripped = strings.TrimPrefix(stripped, "|")
	stripped = strings.TrimSuffix(stripped, "|")

	cells := strings.Split(stripped, "|")
	for i, cell := range cells {
		cells[i] = strings.TrimSpace(cell)
	}
	return strings.TrimRight(strings.Join(cells, "\t"), " \t")
}

// stripMathDelimiters removes TeX delimiters while keeping their
// bodies, repeating until nothing changes so nested forms unwrap.
func stripMathDelimiters(text string) string {
	for {
		prev := text
		text = replaceGroup(texBlockPattern, text, strings.TrimSpace)
		text = replaceGroup(texParenPattern, text, strings.TrimSpace)
		text = replaceGroup(texBracketPattern, text, strings.TrimSpace)
		text = replaceGroup(texInlinePattern, text, strings.TrimSpace)
		if text == prev {
			return text
		}
	}
}

func keepBody(body string) string {
	return body
}

// replaceGroup substitutes every match with a function of its first
// capture group.
func replaceGroup(re *regexp.Regexp, text string, fn func(string) string) string {
	return re.ReplaceAllStringFunc(text, func(m string) string {
		sub := re.FindStringSubmatch(m)
		return fn(sub[1])
	})
}
