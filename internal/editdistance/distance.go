// Package editdistance computes Levenshtein distances with the classic
// dynamic-programming table. It is the reference the automaton is checked
// against and the fallback matcher for the scanner.
package editdistance

import (
	"errors"
	"fmt"
)

var ErrInvalidBound = errors.New("edit distance bound must be non-negative")

// Distance returns the minimum number of single-rune insertions, deletions
// and substitutions that turn a into b.
func Distance(a, b string) int {
	return distanceRunes([]rune(a), []rune(b))
}

func distanceRunes(a, b []rune) int {
	d := table(a, b)
	return d[len(a)][len(b)]
}

// table builds the full (len(a)+1) x (len(b)+1) distance matrix.
func table(a, b []rune) [][]int {
	d := make([][]int, len(a)+1)
	for i := range d {
		d[i] = make([]int, len(b)+1)
		d[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		d[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d[i][j] = min(
				d[i-1][j]+1,
				d[i][j-1]+1,
				d[i-1][j-1]+cost,
			)
		}
	}
	return d
}

// EarliestPrefix returns the length of the shortest non-empty prefix of
// candidate whose distance to query is at most k. Only prefixes up to
// len(query)+k runes are considered; longer ones cannot be within budget.
func EarliestPrefix(query, candidate []rune, k int) (int, bool) {
	if k < 0 {
		return 0, false
	}
	limit := len(candidate)
	if k < limit-len(query) {
		limit = len(query) + k
	}
	if limit == 0 {
		return 0, false
	}

	d := table(query, candidate[:limit])
	row := d[len(query)]
	for x := 1; x <= limit; x++ {
		if row[x] <= k {
			return x, true
		}
	}
	return 0, false
}

// TableMatcher answers accepted-prefix queries by recomputing the bounded
// distance table for every candidate. It is slower than the automaton but
// has no construction step.
type TableMatcher struct {
	word    []rune
	maxDist int
}

// NewTableMatcher creates a matcher for word within maxDist edits.
func NewTableMatcher(word string, maxDist int) (*TableMatcher, error) {
	if maxDist < 0 {
		return nil, fmt.Errorf("table matcher for %q: %w", word, ErrInvalidBound)
	}
	return &TableMatcher{word: []rune(word), maxDist: maxDist}, nil
}

// PrefixLen returns the rune length of the shortest accepted prefix.
func (m *TableMatcher) PrefixLen(candidate []rune) (int, bool) {
	return EarliestPrefix(m.word, candidate, m.maxDist)
}
