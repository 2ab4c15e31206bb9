package analysis

// KeywordAnalyzer passes the entire input as a single token, so a scan only
// tries the start of the text.
type KeywordAnalyzer struct{}

// NewKeywordAnalyzer creates a new KeywordAnalyzer.
func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

// Analyze returns the entire input as a single token.
func (a *KeywordAnalyzer) Analyze(text string) []Token {
	if text == "" {
		return nil
	}
	return []Token{
		{
			Term:      text,
			Position:  0,
			Offset:    0,
			StartByte: 0,
			EndByte:   len(text),
		},
	}
}
