// Package protocol implements the request/response channel between a
// control surface (search box, terminal prompt, websocket client) and a
// search session. Each request is a search or a reset; each response
// carries a status line for display.
package protocol

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"LevenSearch/internal/host"
	"LevenSearch/internal/scanner"
	"LevenSearch/internal/session"
)

const (
	CommandSearch = "search"
	CommandReset  = "reset"
)

const (
	StatusNoMatches = "No matches"
	StatusReset     = "Reset"
)

var ErrUnknownCommand = errors.New("unknown command")

// Request is one message from the control surface. A nil MaxDistance
// means the handler's default bound.
type Request struct {
	Command     string `json:"command"`
	Query       string `json:"query,omitempty"`
	MaxDistance *int   `json:"maxDistance,omitempty"`
}

// Response is the reply to a Request. Error is set instead of the other
// fields when the request failed.
type Response struct {
	Status    string             `json:"status,omitempty"`
	Error     string             `json:"error,omitempty"`
	Current   *scanner.MatchSpan `json:"current,omitempty"`
	Matches   scanner.MatchList  `json:"matches,omitempty"`
	Total     int                `json:"total"`
	Cursor    int                `json:"cursor"`
	Rescanned bool               `json:"rescanned,omitempty"`
	Truncated bool               `json:"truncated,omitempty"`
}

// Search builds a search request with an explicit bound.
func Search(word string, maxDistance int) Request {
	return Request{Command: CommandSearch, Query: word, MaxDistance: &maxDistance}
}

// Reset builds a reset request.
func Reset() Request {
	return Request{Command: CommandReset}
}

// Handler applies requests to one session and mirrors the outcome on a
// highlighter.
type Handler struct {
	session            *session.Session
	highlighter        host.Highlighter
	defaultMaxDistance int
	logger             *slog.Logger
}

// NewHandler creates a Handler. A nil highlighter discards highlights.
func NewHandler(s *session.Session, h host.Highlighter, defaultMaxDistance int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if h == nil {
		h = discard{}
	}
	return &Handler{
		session:            s,
		highlighter:        h,
		defaultMaxDistance: defaultMaxDistance,
		logger:             logger.With("session", s.ID()),
	}
}

// Session returns the session the handler drives.
func (h *Handler) Session() *session.Session { return h.session }

// Handle executes req.
func (h *Handler) Handle(ctx context.Context, req Request) (*Response, error) {
	switch req.Command {
	case CommandSearch:
		k := h.defaultMaxDistance
		if req.MaxDistance != nil {
			k = *req.MaxDistance
		}
		return h.search(ctx, req.Query, k)
	case CommandReset:
		return h.reset()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, req.Command)
	}
}

// search prepares the submission, updates the highlighter and only then
// commits, so a highlighter failure leaves the session as it was.
func (h *Handler) search(ctx context.Context, word string, k int) (*Response, error) {
	p, err := h.session.Prepare(ctx, word, k)
	if err != nil {
		return nil, err
	}
	res := p.Result()

	if err := h.highlighter.ClearHighlights(); err != nil {
		return nil, fmt.Errorf("%w: clear highlights: %w", session.ErrHostUnavailable, err)
	}
	if res.Current != nil {
		if err := h.highlighter.Highlight(*res.Current); err != nil {
			h.restoreHighlight()
			return nil, fmt.Errorf("%w: highlight: %w", session.ErrHostUnavailable, err)
		}
	}

	if err := p.Commit(); err != nil {
		return nil, err
	}

	return &Response{
		Status:    statusLine(res),
		Current:   res.Current,
		Matches:   res.Matches,
		Total:     res.Total,
		Cursor:    res.Cursor,
		Rescanned: res.Rescanned,
		Truncated: res.Truncated,
	}, nil
}

// restoreHighlight puts back the highlight of the still-committed match
// after a failed update cleared it.
func (h *Handler) restoreHighlight() {
	prev, ok := h.session.Current()
	if !ok {
		return
	}
	if err := h.highlighter.Highlight(prev); err != nil {
		h.logger.Warn("failed to restore highlight", "offset", prev.Offset, "error", err)
	}
}

// reset returns the session to idle even when clearing the highlights
// fails; the error is still reported.
func (h *Handler) reset() (*Response, error) {
	h.session.Reset()
	if err := h.highlighter.ClearHighlights(); err != nil {
		h.logger.Warn("failed to clear highlights on reset", "error", err)
		return nil, fmt.Errorf("%w: clear highlights: %w", session.ErrHostUnavailable, err)
	}
	return &Response{Status: StatusReset, Cursor: -1}, nil
}

func statusLine(res *session.Result) string {
	switch {
	case res.Total == 0:
		return StatusNoMatches
	case res.Rescanned:
		return fmt.Sprintf("Found %d matches in %d ms", res.Total, res.Took.Milliseconds())
	default:
		return fmt.Sprintf("Match %d of %d", res.Cursor+1, res.Total)
	}
}

// ErrorResponse converts err into a Response for channels that report
// failures in-band.
func ErrorResponse(err error) *Response {
	return &Response{Error: err.Error(), Cursor: -1}
}

type discard struct{}

func (discard) Highlight(scanner.MatchSpan) error { return nil }
func (discard) ClearHighlights() error            { return nil }
