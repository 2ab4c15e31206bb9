package analysis

import "unicode"

// WordAnalyzer tokenizes on Unicode word boundaries: runs of letters,
// digits and underscores. Punctuation never starts a candidate.
type WordAnalyzer struct{}

// NewWordAnalyzer creates a new WordAnalyzer.
func NewWordAnalyzer() *WordAnalyzer {
	return &WordAnalyzer{}
}

// Analyze returns one token per word, with surface form preserved.
func (a *WordAnalyzer) Analyze(text string) []Token {
	return splitRuns(text, isWordRune)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
