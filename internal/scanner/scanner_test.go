package scanner

import (
	"errors"
	"math"
	"runtime"
	"strings"
	"testing"
	"time"

	"LevenSearch/internal/analysis"
	"LevenSearch/internal/automaton"
	"LevenSearch/internal/editdistance"
)

func newTestScanner(t *testing.T, opts Options) *Scanner {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestScan_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		text string
		q    Query
		want MatchList
	}{
		{
			name: "shortest prefix within one edit",
			text: "cats are great",
			q:    Query{Word: "cat", MaxDistance: 1},
			want: MatchList{{Offset: 0, StartByte: 0, EndByte: 2, Text: "ca", Distance: 1}},
		},
		{
			name: "exact match on second token",
			text: "dog cat bird",
			q:    Query{Word: "cat", MaxDistance: 0},
			want: MatchList{{Offset: 4, StartByte: 4, EndByte: 7, Text: "cat", Distance: 0}},
		},
		{
			name: "empty word",
			text: "anything at all",
			q:    Query{Word: "", MaxDistance: 3},
			want: nil,
		},
		{
			name: "three tokens within two edits",
			text: "bal bahl call",
			q:    Query{Word: "ball", MaxDistance: 2},
			want: MatchList{
				{Offset: 0, StartByte: 0, EndByte: 2, Text: "ba", Distance: 2},
				{Offset: 4, StartByte: 4, EndByte: 6, Text: "ba", Distance: 2},
				{Offset: 9, StartByte: 9, EndByte: 12, Text: "cal", Distance: 2},
			},
		},
		{
			name: "no match",
			text: "nothing here",
			q:    Query{Word: "zebra", MaxDistance: 1},
			want: nil,
		},
		{
			name: "collapsed whitespace keeps original offsets",
			text: "  one \t\n two",
			q:    Query{Word: "two", MaxDistance: 0},
			want: MatchList{{Offset: 9, StartByte: 9, EndByte: 12, Text: "two", Distance: 0}},
		},
		{
			name: "rune offsets",
			text: "über café",
			q:    Query{Word: "café", MaxDistance: 0},
			want: MatchList{{Offset: 5, StartByte: 6, EndByte: 11, Text: "café", Distance: 0}},
		},
	}

	for _, matcher := range []string{MatcherAutomaton, MatcherTable} {
		s := newTestScanner(t, Options{Matcher: matcher})
		for _, tt := range tests {
			t.Run(matcher+"/"+tt.name, func(t *testing.T) {
				res, err := s.Scan(tt.text, tt.q)
				if err != nil {
					t.Fatal(err)
				}
				if !matchListEqual(res.Matches, tt.want) {
					t.Errorf("Scan(%q, %+v) = %+v, want %+v", tt.text, tt.q, res.Matches, tt.want)
				}
			})
		}
	}
}

func TestScan_EmptyWordSkipsMatcher(t *testing.T) {
	s := newTestScanner(t, Options{})
	res, err := s.Scan("a b c", Query{Word: "", MaxDistance: -1})
	if err != nil {
		t.Fatalf("empty word should not be validated, got %v", err)
	}
	if len(res.Matches) != 0 || res.Candidates != 0 {
		t.Errorf("expected no candidates and no matches, got %d and %d", res.Candidates, len(res.Matches))
	}
}

func TestScan_NegativeDistance(t *testing.T) {
	for _, matcher := range []string{MatcherAutomaton, MatcherTable} {
		s := newTestScanner(t, Options{Matcher: matcher})
		_, err := s.Scan("cat", Query{Word: "cat", MaxDistance: -1})
		if !errors.Is(err, automaton.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", matcher, err)
		}
	}
}

func TestScan_HugeDistance(t *testing.T) {
	want := MatchList{
		{Offset: 0, StartByte: 0, EndByte: 1, Text: "c", Distance: 2},
		{Offset: 5, StartByte: 5, EndByte: 6, Text: "a", Distance: 2},
		{Offset: 9, StartByte: 9, EndByte: 10, Text: "g", Distance: 3},
	}
	for _, matcher := range []string{MatcherAutomaton, MatcherTable} {
		for _, k := range []int{5_000_000, math.MaxInt} {
			s := newTestScanner(t, Options{Matcher: matcher})
			res, err := s.Scan("cats are great", Query{Word: "cat", MaxDistance: k})
			if err != nil {
				t.Fatalf("%s k=%d: %v", matcher, k, err)
			}
			if !matchListEqual(res.Matches, want) {
				t.Errorf("%s k=%d: matches = %+v, want %+v", matcher, k, res.Matches, want)
			}
		}
	}
}

func TestScan_HugeDistanceAllocatesLittle(t *testing.T) {
	s := newTestScanner(t, Options{})

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	if _, err := s.Scan("cats are great", Query{Word: "cat", MaxDistance: 5_000_000}); err != nil {
		t.Fatal(err)
	}
	runtime.ReadMemStats(&after)

	if got := after.TotalAlloc - before.TotalAlloc; got > 1<<20 {
		t.Errorf("scan allocated %d bytes, want under 1 MiB", got)
	}
}

func TestScan_InvalidUTF8TextMatchesByteRange(t *testing.T) {
	text := "ca\xfft dog"
	for _, matcher := range []string{MatcherAutomaton, MatcherTable} {
		s := newTestScanner(t, Options{Matcher: matcher})
		res, err := s.Scan(text, Query{Word: "caxt", MaxDistance: 1})
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Matches) != 1 {
			t.Fatalf("%s: got %d matches, want 1", matcher, len(res.Matches))
		}
		m := res.Matches[0]
		if m.EndByte != 4 || m.Text != text[m.StartByte:m.EndByte] {
			t.Errorf("%s: match %+v, Text should equal bytes %q", matcher, m, text[m.StartByte:m.EndByte])
		}
		if m.Distance != 1 {
			t.Errorf("%s: distance = %d, want 1", matcher, m.Distance)
		}
	}
}

func TestNew_UnknownMatcher(t *testing.T) {
	if _, err := New(Options{Matcher: "regex"}); err == nil {
		t.Error("expected error for unknown matcher")
	}
}

func TestScan_MatchesWithinBound(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog while the quack of a duck echoes"
	q := Query{Word: "quick", MaxDistance: 2}

	s := newTestScanner(t, Options{})
	res, err := s.Scan(text, q)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) == 0 {
		t.Fatal("expected at least one match")
	}

	for _, m := range res.Matches {
		if d := editdistance.Distance(q.Word, m.Text); d > q.MaxDistance || d != m.Distance {
			t.Errorf("match %+v has distance %d", m, d)
		}
		if text[m.StartByte:m.EndByte] != m.Text {
			t.Errorf("byte range [%d:%d] = %q, want %q", m.StartByte, m.EndByte, text[m.StartByte:m.EndByte], m.Text)
		}
	}
	for i := 1; i < len(res.Matches); i++ {
		if res.Matches[i].Offset <= res.Matches[i-1].Offset {
			t.Errorf("matches out of scan order at %d", i)
		}
	}
}

func TestScan_AnalyzerChoosesCandidates(t *testing.T) {
	text := "(cat) cat"
	q := Query{Word: "cat", MaxDistance: 0}

	ws := newTestScanner(t, Options{Analyzer: analysis.NewWhitespaceAnalyzer()})
	res, err := ws.Scan(text, q)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 1 || res.Matches[0].Offset != 6 {
		t.Errorf("whitespace: got %+v, want a single match at 6", res.Matches)
	}

	word := newTestScanner(t, Options{Analyzer: analysis.NewWordAnalyzer()})
	res, err = word.Scan(text, q)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 2 || res.Matches[0].Offset != 1 {
		t.Errorf("word: got %+v, want matches at 1 and 6", res.Matches)
	}
}

func TestScan_MaxMatchesTruncates(t *testing.T) {
	s := newTestScanner(t, Options{MaxMatches: 2})
	res, err := s.Scan("cat cat cat cat", Query{Word: "cat", MaxDistance: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 2 {
		t.Errorf("expected 2 matches, got %d", len(res.Matches))
	}
	if !res.Truncated {
		t.Error("expected Truncated")
	}
}

func TestScan_Timeout(t *testing.T) {
	s := newTestScanner(t, Options{Timeout: time.Nanosecond})
	text := strings.Repeat("word ", 1000)

	res, err := s.Scan(text, Query{Word: "word", MaxDistance: 1})
	if !errors.Is(err, ErrScanTimeout) {
		t.Fatalf("expected ErrScanTimeout, got %v", err)
	}
	if res != nil {
		t.Error("timed out scan should not return a partial result")
	}
}

func matchListEqual(a, b MatchList) bool {
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
