package driven

// TextNormaliser repairs the known OCR text artifacts in markdown
// output. Implementations are pure: same input, same output, no
// shared state.
type TextNormaliser interface {
	// Normalise applies the repair rules until the text stabilises.
	// Normalising already-normalised text is a no-op.
	Normalise(text string) string
}
