// Package testutil holds fixtures shared by integration tests and
// benchmarks.
package testutil

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"LevenSearch/internal/scanner"
	"LevenSearch/internal/session"
)

// ErrUnavailable is returned by a FlakySource that is switched off.
var ErrUnavailable = errors.New("source unavailable")

// SampleText is a short multi-line document with near misses of
// "search", "index" and "levenshtein".
const SampleText = `Full-text search is a technique for searching documents.
An inverted index maps terms to the documents containing them.
Fuzzy serch finds terms within an edit distance of the query term.
Levenshtein automata make fuzzy matching fast; levenstein is a common typo.
Indexes, indices and indexing all start with the same prefix.`

var vocabulary = strings.Fields(`search searching serch index indexes indices
inverted fuzzy query term terms document documents edit distance automaton
automata levenshtein levenstein match matching prefix token tokens cursor
session highlight the a of and within for to is`)

// Corpus returns a deterministic whitespace-separated document of n words.
func Corpus(n int, seed uint64) string {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			if i%12 == 0 {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(vocabulary[r.IntN(len(vocabulary))])
	}
	return b.String()
}

// WriteFile writes text to a file in a fresh temp dir and returns its path.
func WriteFile(t testing.TB, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// NewScanner builds a scanner or fails the test.
func NewScanner(t testing.TB, opts scanner.Options) *scanner.Scanner {
	t.Helper()
	sc, err := scanner.New(opts)
	if err != nil {
		t.Fatalf("scanner.New: %v", err)
	}
	return sc
}

// FlakySource serves text until it is switched off.
type FlakySource struct {
	mu   sync.Mutex
	text string
	down bool
}

// NewFlakySource creates a working source.
func NewFlakySource(text string) *FlakySource {
	return &FlakySource{text: text}
}

func (f *FlakySource) Text(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return "", ErrUnavailable
	}
	return f.text, nil
}

// SetDown switches the source off or back on.
func (f *FlakySource) SetDown(down bool) {
	f.mu.Lock()
	f.down = down
	f.mu.Unlock()
}

var _ session.DocumentSource = (*FlakySource)(nil)
