// Package paragraphs splits markdown or plain text into blank-line
// separated paragraph blocks for block-oriented exports.
package paragraphs

import "strings"

// Split breaks text into paragraphs on blank lines. Lines within a
// paragraph stay joined by single newlines; whitespace-only lines act
// as separators. Empty input returns nil.
func Split(text string) []string {
	var paragraphs []string
	var buffer []string

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			buffer = append(buffer, strings.TrimRight(line, " \t\r"))
			continue
		}
		if len(buffer) > 0 {
			paragraphs = append(paragraphs, strings.TrimSpace(strings.Join(buffer, "\n")))
			buffer = nil
		}
	}
	if len(buffer) > 0 {
		paragraphs = append(paragraphs, strings.TrimSpace(strings.Join(buffer, "\n")))
	}
	return paragraphs
}
