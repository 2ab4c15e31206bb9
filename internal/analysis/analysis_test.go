package analysis

import (
	"testing"
)

func TestWhitespaceAnalyzer(t *testing.T) {
	a := NewWhitespaceAnalyzer()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"basic", "The Quick Brown Fox", []string{"The", "Quick", "Brown", "Fox"}},
		{"empty", "", nil},
		{"only whitespace", " \t\n ", nil},
		{"preserves case", "Hello WORLD", []string{"Hello", "WORLD"}},
		{"preserves punctuation", "hello, world!", []string{"hello,", "world!"}},
		{"multiple spaces", "  hello   world  ", []string{"hello", "world"}},
		{"mixed whitespace", "a\tb\nc\r\nd", []string{"a", "b", "c", "d"}},
		{"unicode space", "foo\u00a0bar", []string{"foo", "bar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := a.Analyze(tt.input)
			got := tokenTerms(tokens)
			if !stringSliceEqual(got, tt.want) {
				t.Errorf("Analyze(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestWhitespaceAnalyzer_Positions(t *testing.T) {
	a := NewWhitespaceAnalyzer()
	tokens := a.Analyze("The Quick Brown")

	for i, tok := range tokens {
		if tok.Position != i {
			t.Errorf("token %q position = %d, want %d", tok.Term, tok.Position, i)
		}
	}
}

func TestWhitespaceAnalyzer_Offsets(t *testing.T) {
	a := NewWhitespaceAnalyzer()
	tokens := a.Analyze("dog  cat bird")

	want := []struct{ offset, start, end int }{
		{0, 0, 3},
		{5, 5, 8},
		{9, 9, 13},
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i, w := range want {
		tok := tokens[i]
		if tok.Offset != w.offset || tok.StartByte != w.start || tok.EndByte != w.end {
			t.Errorf("token %d offsets = (%d, %d, %d), want (%d, %d, %d)",
				i, tok.Offset, tok.StartByte, tok.EndByte, w.offset, w.start, w.end)
		}
	}
}

func TestWhitespaceAnalyzer_RuneOffsetsDifferFromBytes(t *testing.T) {
	a := NewWhitespaceAnalyzer()
	tokens := a.Analyze("café résumé")

	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[1].Offset != 5 {
		t.Errorf("rune offset = %d, want 5", tokens[1].Offset)
	}
	if tokens[1].StartByte != 6 {
		t.Errorf("byte offset = %d, want 6", tokens[1].StartByte)
	}
}

func TestWordAnalyzer(t *testing.T) {
	a := NewWordAnalyzer()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"basic", "The Quick Brown Fox", []string{"The", "Quick", "Brown", "Fox"}},
		{"empty", "", nil},
		{"punctuation", "hello, world! foo-bar", []string{"hello", "world", "foo", "bar"}},
		{"numbers", "test123 456abc", []string{"test123", "456abc"}},
		{"unicode", "café résumé", []string{"café", "résumé"}},
		{"underscore", "foo_bar baz", []string{"foo_bar", "baz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenTerms(a.Analyze(tt.input))
			if !stringSliceEqual(got, tt.want) {
				t.Errorf("Analyze(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestWordAnalyzer_Offsets(t *testing.T) {
	a := NewWordAnalyzer()
	tokens := a.Analyze("(hi) there")

	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].Offset != 1 || tokens[1].Offset != 5 {
		t.Errorf("offsets = (%d, %d), want (1, 5)", tokens[0].Offset, tokens[1].Offset)
	}
}

func TestKeywordAnalyzer(t *testing.T) {
	a := NewKeywordAnalyzer()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"basic", "The Quick Brown Fox", []string{"The Quick Brown Fox"}},
		{"empty", "", nil},
		{"single word", "hello", []string{"hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenTerms(a.Analyze(tt.input))
			if !stringSliceEqual(got, tt.want) {
				t.Errorf("Analyze(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestKeywordAnalyzer_SingleToken(t *testing.T) {
	a := NewKeywordAnalyzer()
	tokens := a.Analyze("hello world")

	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	if tokens[0].Offset != 0 {
		t.Errorf("offset = %d, want 0", tokens[0].Offset)
	}
	if tokens[0].StartByte != 0 || tokens[0].EndByte != 11 {
		t.Errorf("offsets = (%d, %d), want (0, 11)", tokens[0].StartByte, tokens[0].EndByte)
	}
}

func TestRegistry_BuiltinAnalyzers(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{Whitespace, Word, Keyword} {
		a, err := r.Get(name)
		if err != nil {
			t.Errorf("Get(%q) error: %v", name, err)
		}
		if a == nil {
			t.Errorf("Get(%q) returned nil", name)
		}
	}
}

func TestRegistry_UnknownAnalyzer(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nonexistent")
	if err == nil {
		t.Error("expected error for unknown analyzer")
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("custom", NewKeywordAnalyzer()); err != nil {
		t.Fatal(err)
	}

	a, err := r.Get("custom")
	if err != nil {
		t.Fatal(err)
	}
	if a == nil {
		t.Error("custom analyzer should not be nil")
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	err := r.Register(Whitespace, NewWhitespaceAnalyzer())
	if err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	want := []string{Keyword, Whitespace, Word}
	if !stringSliceEqual(names, want) {
		t.Errorf("Names() = %v, want %v", names, want)
	}
}

func tokenTerms(tokens []Token) []string {
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}

func stringSliceEqual(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
