package host

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"LevenSearch/internal/scanner"
)

// Highlighter presents matches on a host surface. Sessions never call it;
// the caller that received a MatchSpan decides what to show.
type Highlighter interface {
	Highlight(span scanner.MatchSpan) error
	ClearHighlights() error
}

// TextSource is the document text a highlighter draws context from.
type TextSource interface {
	Text(ctx context.Context) (string, error)
}

// TerminalHighlighter prints the line containing a match with the match
// emphasised. Without colour the match is wrapped in brackets.
type TerminalHighlighter struct {
	out    io.Writer
	source TextSource
	color  bool
	style  lipgloss.Style
}

// NewTerminalHighlighter creates a highlighter writing to out.
func NewTerminalHighlighter(out io.Writer, source TextSource, color bool) *TerminalHighlighter {
	r := lipgloss.NewRenderer(out)
	return &TerminalHighlighter{
		out:    out,
		source: source,
		color:  color,
		style:  r.NewStyle().Bold(true).Reverse(true),
	}
}

// Highlight prints "line:col: <line with match marked>".
func (h *TerminalHighlighter) Highlight(span scanner.MatchSpan) error {
	text, err := h.source.Text(context.Background())
	if err != nil {
		return fmt.Errorf("highlight: %w", err)
	}
	if span.StartByte < 0 || span.EndByte > len(text) || span.StartByte > span.EndByte {
		return fmt.Errorf("highlight: span [%d:%d] outside document of %d bytes", span.StartByte, span.EndByte, len(text))
	}

	lineStart := strings.LastIndexByte(text[:span.StartByte], '\n') + 1
	lineEnd := len(text)
	if i := strings.IndexByte(text[span.EndByte:], '\n'); i >= 0 {
		lineEnd = span.EndByte + i
	}
	line := 1 + strings.Count(text[:lineStart], "\n")
	col := 1 + len([]rune(text[lineStart:span.StartByte]))

	_, err = fmt.Fprintf(h.out, "%d:%d: %s%s%s\n",
		line, col,
		text[lineStart:span.StartByte],
		h.mark(text[span.StartByte:span.EndByte]),
		text[span.EndByte:lineEnd],
	)
	return err
}

// ClearHighlights is a no-op: printed lines cannot be taken back.
func (h *TerminalHighlighter) ClearHighlights() error { return nil }

func (h *TerminalHighlighter) mark(s string) string {
	if !h.color {
		return "[" + s + "]"
	}
	return h.style.Render(s)
}

// Recorder keeps the highlighted spans in memory, for hosts that render
// them elsewhere (e.g. a remote control surface polling over HTTP).
type Recorder struct {
	mu    sync.Mutex
	spans []scanner.MatchSpan
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Highlight(span scanner.MatchSpan) error {
	r.mu.Lock()
	r.spans = append(r.spans, span)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) ClearHighlights() error {
	r.mu.Lock()
	r.spans = nil
	r.mu.Unlock()
	return nil
}

// Spans returns a copy of the highlighted spans.
func (r *Recorder) Spans() []scanner.MatchSpan {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]scanner.MatchSpan, len(r.spans))
	copy(out, r.spans)
	return out
}
