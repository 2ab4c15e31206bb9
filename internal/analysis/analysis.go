// Package analysis splits a document into candidate tokens. Only token
// start offsets drive the fuzzy scan; the terms are kept for diagnostics.
package analysis

// Token represents a single token produced by an analyzer.
// Offset counts runes from the start of the text; StartByte and EndByte
// address the same range in bytes.
type Token struct {
	Term      string
	Position  int
	Offset    int
	StartByte int
	EndByte   int
}

// Analyzer processes text into a stream of tokens.
// Implementations MUST be stateless so one instance can serve every scan.
type Analyzer interface {
	// Analyze tokenizes the input text and returns tokens in text order.
	Analyze(text string) []Token
}
