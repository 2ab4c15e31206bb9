// Package scanner runs a fuzzy query over a document: every token start is a
// candidate, and the shortest accepted prefix at each candidate is a match.
package scanner

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"LevenSearch/internal/analysis"
	"LevenSearch/internal/automaton"
	"LevenSearch/internal/editdistance"
)

// Matching strategies.
const (
	MatcherAutomaton = "automaton"
	MatcherTable     = "table"
)

// Query is a word and the maximum edit distance allowed for it.
type Query struct {
	Word        string `json:"query"`
	MaxDistance int    `json:"maxDistance"`
}

// MatchSpan is an accepted prefix found at a candidate start.
// Offset is the rune index into the scanned text; StartByte and EndByte
// address the same span in bytes.
type MatchSpan struct {
	Offset    int    `json:"offset"`
	StartByte int    `json:"start_byte"`
	EndByte   int    `json:"end_byte"`
	Text      string `json:"text"`
	Distance  int    `json:"distance"`
}

// MatchList holds matches in scan order (left to right).
type MatchList []MatchSpan

// Matcher finds the shortest accepted prefix of a candidate.
type Matcher interface {
	PrefixLen(candidate []rune) (int, bool)
}

// Options configures a Scanner.
type Options struct {
	// Analyzer picks candidate start offsets. Defaults to whitespace splitting.
	Analyzer analysis.Analyzer

	// Matcher is MatcherAutomaton (default) or MatcherTable.
	Matcher string

	// Timeout bounds a single scan. Zero means no limit.
	Timeout time.Duration

	// MaxMatches stops the scan after this many matches. Zero means no limit.
	MaxMatches int

	Logger *slog.Logger
}

// Result is the outcome of one scan.
type Result struct {
	Matches    MatchList
	Candidates int
	Truncated  bool
	Took       time.Duration
}

// Scanner scans documents for fuzzy matches. It holds no per-scan state and
// is safe for concurrent use.
type Scanner struct {
	analyzer   analysis.Analyzer
	matcher    string
	timeout    time.Duration
	maxMatches int
	logger     *slog.Logger
}

// New creates a Scanner from opts.
func New(opts Options) (*Scanner, error) {
	if opts.Analyzer == nil {
		opts.Analyzer = analysis.NewWhitespaceAnalyzer()
	}
	switch opts.Matcher {
	case "":
		opts.Matcher = MatcherAutomaton
	case MatcherAutomaton, MatcherTable:
	default:
		return nil, fmt.Errorf("unknown matcher: %q", opts.Matcher)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Scanner{
		analyzer:   opts.Analyzer,
		matcher:    opts.Matcher,
		timeout:    opts.Timeout,
		maxMatches: opts.MaxMatches,
		logger:     opts.Logger,
	}, nil
}

// NewMatcher builds the matcher for q using the configured strategy.
// Invalid queries fail with automaton.ErrInvalidConfig.
func (s *Scanner) NewMatcher(q Query) (Matcher, error) {
	if s.matcher == MatcherTable {
		if q.Word == "" {
			return nil, fmt.Errorf("%w: empty query word", automaton.ErrInvalidConfig)
		}
		if q.MaxDistance < 0 {
			return nil, fmt.Errorf("%w: negative edit distance %d", automaton.ErrInvalidConfig, q.MaxDistance)
		}
		m, err := editdistance.NewTableMatcher(q.Word, q.MaxDistance)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	a, err := automaton.NewLevenshtein(q.Word, q.MaxDistance)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Scan finds the accepted prefix at every candidate start of text.
// An empty query word yields an empty result without building a matcher.
func (s *Scanner) Scan(text string, q Query) (*Result, error) {
	start := time.Now()
	res := &Result{}

	if q.Word == "" {
		res.Took = time.Since(start)
		return res, nil
	}

	m, err := s.NewMatcher(q)
	if err != nil {
		return nil, err
	}

	runes := []rune(text)
	tokens := s.analyzer.Analyze(text)
	b := newBudget(s.timeout, s.maxMatches)

	for _, tok := range tokens {
		if err := b.checkDeadline(); err != nil {
			s.logger.Warn("scan timed out",
				"query", q.Word,
				"max_distance", q.MaxDistance,
				"candidates", res.Candidates,
				"timeout", s.timeout,
			)
			return nil, fmt.Errorf("scan for %q after %d candidates: %w", q.Word, res.Candidates, err)
		}
		res.Candidates++

		n, ok := m.PrefixLen(runes[tok.Offset:])
		if !ok {
			continue
		}

		end := advanceRunes(text, tok.StartByte, n)
		res.Matches = append(res.Matches, MatchSpan{
			Offset:    tok.Offset,
			StartByte: tok.StartByte,
			EndByte:   end,
			Text:      text[tok.StartByte:end],
			Distance:  editdistance.Distance(q.Word, string(runes[tok.Offset:tok.Offset+n])),
		})
		if b.recordMatch() {
			break
		}
	}

	res.Truncated = b.truncated
	res.Took = time.Since(start)

	s.logger.Debug("scan complete",
		"query", q.Word,
		"max_distance", q.MaxDistance,
		"matcher", s.matcher,
		"candidates", res.Candidates,
		"matches", len(res.Matches),
		"truncated", res.Truncated,
		"took", res.Took,
	)
	return res, nil
}

// advanceRunes returns the byte index n runes after from.
func advanceRunes(text string, from, n int) int {
	i := from
	for ; n > 0 && i < len(text); n-- {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return i
}
