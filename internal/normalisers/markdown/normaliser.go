// Package markdown repairs the fixed catalogue of text artifacts OCR
// engines leave in their markdown output: malformed symbol escapes,
// stray math delimiters, decorated bullet glyphs, broken line-break
// tags, and page-number detritus glued to headings.
//
// Rules are named pure functions executed in a declared order (see
// rules.go). Lines carrying URLs or link targets are protected from
// the generic rules and receive only a safe repair subset. The full
// pipeline is idempotent: normalising its own output is a no-op.
package markdown

import "strings"

// maxPasses bounds the stabilisation loop. Two passes reach a fixed
// point for every known artifact; the margin covers rule interaction.
const maxPasses = 4

// Normaliser runs the repair pipeline. It holds no state and is safe
// for concurrent use.
type Normaliser struct{}

// New creates a markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise applies the full rule pipeline until the text stabilises.
// The returned text is a fixed point: Normalise(Normalise(x)) equals
// Normalise(x).
func (n *Normaliser) Normalise(text string) string {
	for i := 0; i < maxPasses; i++ {
		next := n.pass(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

// pass runs every line rule over every line, then the document rules
// over the whole text, once.
func (n *Normaliser) pass(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if protectedLine(line) {
			lines[i] = protectedSubset(line)
			continue
		}
		for _, rule := range lineRules {
			line = rule.Apply(line)
		}
		lines[i] = line
	}
	text = strings.Join(lines, "\n")

	for _, rule := range documentRules {
		text = rule.Apply(text)
	}
	return text
}
