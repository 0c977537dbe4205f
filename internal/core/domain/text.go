package domain

// MinMeaningfulRunes is the threshold below which an OCR result is
// considered too thin and eligible for fallback.
const MinMeaningfulRunes = 30

// MeaningfulRunes counts the runes that carry recognisable content:
// ASCII letters and digits, kana, and CJK ideographs. Whitespace,
// punctuation, and markup noise do not count.
func MeaningfulRunes(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			n++
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			n++
		case r >= 0x3040 && r <= 0x30FF: // hiragana and katakana
			n++
		case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
			n++
		}
	}
	return n
}

// TooThin reports whether text falls below the meaningful-content
// threshold that triggers the fallback engine.
func TooThin(s string) bool {
	return MeaningfulRunes(s) < MinMeaningfulRunes
}
