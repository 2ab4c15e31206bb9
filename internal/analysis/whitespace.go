package analysis

import (
	"unicode"
	"unicode/utf8"
)

// WhitespaceAnalyzer splits text on runs of whitespace without any
// normalization. Consecutive whitespace collapses to a single boundary.
type WhitespaceAnalyzer struct{}

// NewWhitespaceAnalyzer creates a new WhitespaceAnalyzer.
func NewWhitespaceAnalyzer() *WhitespaceAnalyzer {
	return &WhitespaceAnalyzer{}
}

// Analyze splits the input on whitespace, preserving case and punctuation.
func (a *WhitespaceAnalyzer) Analyze(text string) []Token {
	return splitRuns(text, func(r rune) bool { return !unicode.IsSpace(r) })
}

// splitRuns emits one token per maximal run of runes accepted by inToken.
func splitRuns(text string, inToken func(rune) bool) []Token {
	var tokens []Token
	pos := 0
	offset := 0
	i := 0

	for i < len(text) {
		// Skip separators.
		r, size := utf8.DecodeRuneInString(text[i:])
		if !inToken(r) {
			i += size
			offset++
			continue
		}

		// Collect token runes.
		start, startOffset := i, offset
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if !inToken(r) {
				break
			}
			i += size
			offset++
		}

		tokens = append(tokens, Token{
			Term:      text[start:i],
			Position:  pos,
			Offset:    startOffset,
			StartByte: start,
			EndByte:   i,
		})
		pos++
	}

	return tokens
}
