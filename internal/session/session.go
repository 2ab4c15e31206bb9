// Package session keeps the state of one interactive fuzzy search: the
// active query, its matches and which match is current. Repeating a query
// pages through the matches; a new query (or a changed document) rescans.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"LevenSearch/internal/scanner"
)

var (
	ErrHostUnavailable = errors.New("host unavailable")
	ErrStale           = errors.New("session changed since the result was prepared")
)

// DocumentSource supplies the text a session scans.
type DocumentSource interface {
	Text(ctx context.Context) (string, error)
}

// State is the lifecycle state of a Session.
type State int

const (
	Idle State = iota
	Scanned
	ScannedEmpty
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanned:
		return "scanned"
	case ScannedEmpty:
		return "scanned-empty"
	default:
		return "unknown"
	}
}

// Result describes the outcome of a submitted query.
// Matches is only set when Rescanned is true; on a cursor advance the
// caller already holds the list.
type Result struct {
	Query     scanner.Query      `json:"query"`
	Rescanned bool               `json:"rescanned"`
	Matches   scanner.MatchList  `json:"matches,omitempty"`
	Total     int                `json:"total"`
	Cursor    int                `json:"cursor"`
	Current   *scanner.MatchSpan `json:"current,omitempty"`
	Truncated bool               `json:"truncated,omitempty"`
	Took      time.Duration      `json:"took"`
}

// Session owns one query, its match list and the cursor into it.
// All methods are safe for concurrent use; operations are serialized.
type Session struct {
	id      string
	scanner *scanner.Scanner
	logger  *slog.Logger

	mu          sync.Mutex
	source      DocumentSource
	state       State
	query       scanner.Query
	matches     scanner.MatchList
	cursor      int
	truncated   bool
	fingerprint uint64
	// generation increments on every mutation so a Pending can detect that
	// it was prepared against an older state.
	generation uint64
}

// New creates an idle session scanning documents from source.
func New(id string, source DocumentSource, sc *scanner.Scanner, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:      id,
		scanner: sc,
		source:  source,
		logger:  logger.With("session", id),
		cursor:  -1,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// SetSource replaces the document source. The next submission notices the
// new text through its fingerprint and rescans.
func (s *Session) SetSource(source DocumentSource) {
	s.mu.Lock()
	s.source = source
	s.mu.Unlock()
}

// Pending is a prepared but not yet applied submission.
type Pending struct {
	session    *Session
	generation uint64
	result     *Result

	state       State
	matches     scanner.MatchList
	fingerprint uint64
	committed   bool
}

// Result returns the outcome the submission will have once committed.
func (p *Pending) Result() *Result { return p.result }

// Prepare computes the outcome of submitting (word, maxDistance) without
// changing the session. Fetching the document or scanning may fail; in
// that case the session is untouched.
func (s *Session) Prepare(ctx context.Context, word string, maxDistance int) (*Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := scanner.Query{Word: word, MaxDistance: maxDistance}

	if s.source == nil {
		return nil, fmt.Errorf("%w: no document source", ErrHostUnavailable)
	}
	text, err := s.source.Text(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch document: %w", ErrHostUnavailable, err)
	}
	fingerprint := xxhash.Sum64String(text)

	p := &Pending{
		session:     s,
		generation:  s.generation,
		fingerprint: fingerprint,
	}

	if s.canAdvance(q, fingerprint) {
		next := (s.cursor + 1) % len(s.matches)
		current := s.matches[next]
		p.state = Scanned
		p.matches = s.matches
		p.result = &Result{
			Query:     q,
			Total:     len(s.matches),
			Cursor:    next,
			Current:   &current,
			Truncated: s.truncated,
		}
		return p, nil
	}

	res, err := s.scanner.Scan(text, q)
	if err != nil {
		return nil, err
	}

	p.matches = res.Matches
	p.result = &Result{
		Query:     q,
		Rescanned: true,
		Matches:   res.Matches,
		Total:     len(res.Matches),
		Cursor:    -1,
		Truncated: res.Truncated,
		Took:      res.Took,
	}
	p.state = ScannedEmpty
	if len(res.Matches) > 0 {
		first := res.Matches[0]
		p.state = Scanned
		p.result.Cursor = 0
		p.result.Current = &first
	}
	return p, nil
}

// canAdvance reports whether q repeats the active query over an unchanged
// document with matches to page through.
func (s *Session) canAdvance(q scanner.Query, fingerprint uint64) bool {
	return s.state == Scanned &&
		s.query == q &&
		s.fingerprint == fingerprint &&
		len(s.matches) > 0
}

// Commit applies the prepared submission. It fails with ErrStale if the
// session was mutated after Prepare.
func (p *Pending) Commit() error {
	s := p.session
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.committed || s.generation != p.generation {
		return ErrStale
	}
	p.committed = true

	s.state = p.state
	s.query = p.result.Query
	s.matches = p.matches
	s.cursor = p.result.Cursor
	s.truncated = p.result.Truncated
	s.fingerprint = p.fingerprint
	s.generation++

	if p.result.Rescanned {
		s.logger.Info("query scanned",
			"query", s.query.Word,
			"max_distance", s.query.MaxDistance,
			"matches", len(s.matches),
			"took", p.result.Took,
		)
	} else {
		s.logger.Debug("cursor advanced", "cursor", s.cursor, "total", len(s.matches))
	}
	return nil
}

// Submit prepares and immediately commits a query.
func (s *Session) Submit(ctx context.Context, word string, maxDistance int) (*Result, error) {
	p, err := s.Prepare(ctx, word, maxDistance)
	if err != nil {
		return nil, err
	}
	if err := p.Commit(); err != nil {
		return nil, err
	}
	return p.Result(), nil
}

// Reset clears the query and matches and returns the session to Idle.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		s.logger.Debug("session reset", "query", s.query.Word)
	}
	s.state = Idle
	s.query = scanner.Query{}
	s.matches = nil
	s.cursor = -1
	s.truncated = false
	s.fingerprint = 0
	s.generation++
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Query returns the active query. It is the zero Query when Idle.
func (s *Session) Query() scanner.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Matches returns a copy of the current match list.
func (s *Session) Matches() scanner.MatchList {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.matches) == 0 {
		return nil
	}
	out := make(scanner.MatchList, len(s.matches))
	copy(out, s.matches)
	return out
}

// Cursor returns the index of the current match, or -1 if there is none.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Current returns the current match, if any.
func (s *Session) Current() (scanner.MatchSpan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor < 0 || s.cursor >= len(s.matches) {
		return scanner.MatchSpan{}, false
	}
	return s.matches[s.cursor], true
}
