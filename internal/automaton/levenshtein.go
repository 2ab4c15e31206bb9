package automaton

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConfig = errors.New("invalid levenshtein automaton configuration")

// edges holds the outgoing transitions of one (consumed, errors) state.
// DeadState marks an absent transition.
type edges struct {
	exact   State // on word[consumed], no error charged
	insert  State // any rune, query position unchanged
	subst   State // any rune, query position advanced
	epsilon State // deletion of word[consumed], no input consumed
}

// Levenshtein accepts strings within edit distance ≤ maxDist of word.
// Uses parametric state representation: (consumed, errors).
//
// The transition table is dense, indexed by table[consumed][errors], and
// built once per query so it can be reused across every candidate of a scan.
//
// The table is built for min(maxDist, len(word)) errors. Any single rune is
// within len(word) edits of word, so a larger bound never changes the
// shortest accepted prefix and only costs memory.
type Levenshtein struct {
	word    []rune
	maxDist int
	bound   int
	table   [][]edges
	// State encoding: state = consumed*(bound+1) + errors + 1
	// DeadState (0) is reserved.
}

// NewLevenshtein builds the automaton for word with at most maxDist edits.
// An empty word or a negative bound is rejected with ErrInvalidConfig.
func NewLevenshtein(word string, maxDist int) (*Levenshtein, error) {
	if word == "" {
		return nil, fmt.Errorf("%w: empty query word", ErrInvalidConfig)
	}
	if maxDist < 0 {
		return nil, fmt.Errorf("%w: negative edit distance %d", ErrInvalidConfig, maxDist)
	}

	runes := []rune(word)
	bound := min(maxDist, len(runes))
	if (len(runes)+1)*(bound+1) >= math.MaxUint32 {
		return nil, fmt.Errorf("%w: query word of %d runes is too long", ErrInvalidConfig, len(runes))
	}

	a := &Levenshtein{
		word:    runes,
		maxDist: maxDist,
		bound:   bound,
	}
	a.build()
	return a, nil
}

func (a *Levenshtein) build() {
	n, k := len(a.word), a.bound
	a.table = make([][]edges, n+1)
	for i := 0; i <= n; i++ {
		row := make([]edges, k+1)
		for j := 0; j <= k; j++ {
			var e edges
			switch {
			case i < n && j < k:
				e.exact = a.encodeState(i+1, j)
				e.insert = a.encodeState(i, j+1)
				e.subst = a.encodeState(i+1, j+1)
				e.epsilon = a.encodeState(i+1, j+1)
			case i < n:
				// Error budget exhausted: only an exact match may advance.
				e.exact = a.encodeState(i+1, j)
			case j < k:
				// Query consumed: trailing insertions while budget remains.
				e.insert = a.encodeState(i, j+1)
			}
			row[j] = e
		}
		a.table[i] = row
	}
}

// Word returns the query word.
func (a *Levenshtein) Word() string { return string(a.word) }

// MaxDistance returns the edit-distance bound.
func (a *Levenshtein) MaxDistance() int { return a.maxDist }

func (a *Levenshtein) Start() State {
	return a.encodeState(0, 0)
}

func (a *Levenshtein) NumStates() int {
	return (len(a.word) + 1) * (a.bound + 1)
}

func (a *Levenshtein) Step(state State, r rune, dst []State) []State {
	if state == DeadState {
		return dst
	}
	consumed, errs := a.decodeState(state)
	e := &a.table[consumed][errs]
	if e.exact != DeadState && a.word[consumed] == r {
		dst = append(dst, e.exact)
	}
	if e.insert != DeadState {
		dst = append(dst, e.insert)
	}
	if e.subst != DeadState {
		dst = append(dst, e.subst)
	}
	return dst
}

func (a *Levenshtein) Epsilon(state State, dst []State) []State {
	if state == DeadState {
		return dst
	}
	consumed, errs := a.decodeState(state)
	if eps := a.table[consumed][errs].epsilon; eps != DeadState {
		dst = append(dst, eps)
	}
	return dst
}

func (a *Levenshtein) IsAccept(state State) bool {
	if state == DeadState {
		return false
	}
	consumed, _ := a.decodeState(state)
	return consumed == len(a.word)
}

// PrefixLen returns the rune length of the shortest non-empty prefix of
// candidate that the automaton accepts.
func (a *Levenshtein) PrefixLen(candidate []rune) (int, bool) {
	return ShortestPrefix(a, candidate)
}

// AcceptedPrefix returns the shortest non-empty prefix of candidate within
// the distance bound, or false if there is none.
func (a *Levenshtein) AcceptedPrefix(candidate string) (string, bool) {
	runes := []rune(candidate)
	n, ok := ShortestPrefix(a, runes)
	if !ok {
		return "", false
	}
	return string(runes[:n]), true
}

// Accepts reports whether the whole of s is within the distance bound.
func (a *Levenshtein) Accepts(s string) bool {
	input := []rune(s)
	if a.maxDist == a.bound {
		return Run(a, input)
	}
	// The table was clamped to len(word) errors. Distance never exceeds
	// the longer of the two lengths; below that, widen only as far as the
	// input can use.
	if a.maxDist >= len(input) {
		return true
	}
	wide := &Levenshtein{word: a.word, maxDist: a.maxDist, bound: a.maxDist}
	wide.build()
	return Run(wide, input)
}

func (a *Levenshtein) encodeState(consumed, errs int) State {
	return State(consumed*(a.bound+1) + errs + 1)
}

func (a *Levenshtein) decodeState(state State) (consumed, errs int) {
	v := int(state) - 1
	errs = v % (a.bound + 1)
	consumed = v / (a.bound + 1)
	return
}
