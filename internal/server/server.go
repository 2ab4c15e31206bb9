// Package server exposes search sessions over HTTP. Each session is driven
// either by JSON requests or by a websocket carrying protocol messages.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"LevenSearch/internal/host"
	"LevenSearch/internal/protocol"
	"LevenSearch/internal/session"
)

var (
	ErrFileDocumentsDisabled = errors.New("file documents are disabled")
	errBadDocument           = errors.New("bad document")
)

// Options configures a Server.
type Options struct {
	// DefaultMaxDistance is used by requests that carry no bound.
	DefaultMaxDistance int

	// AllowFileDocuments permits binding sessions to server-side paths.
	AllowFileDocuments bool

	Version string
	Logger  *slog.Logger
}

// entry is the host side of one session: its document and the spans
// currently highlighted in it.
type entry struct {
	handler  *protocol.Handler
	recorder *host.Recorder

	mu   sync.Mutex
	file *host.FileDocument
}

// setDocument swaps the document, closing a previously opened file.
func (e *entry) setDocument(doc session.DocumentSource, file *host.FileDocument) {
	e.mu.Lock()
	old := e.file
	e.file = file
	e.mu.Unlock()

	e.handler.Session().SetSource(doc)
	if old != nil {
		old.Close()
	}
}

func (e *entry) close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file != nil {
		e.file.Close()
		e.file = nil
	}
}

// Server routes HTTP requests to sessions held by a session.Manager.
type Server struct {
	mgr      *session.Manager
	opts     Options
	logger   *slog.Logger
	router   *httprouter.Router
	upgrader websocket.Upgrader

	mu      sync.Mutex
	entries map[string]*entry
}

// New creates a Server and registers its routes.
func New(mgr *session.Manager, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Server{
		mgr:     mgr,
		opts:    opts,
		logger:  opts.Logger,
		router:  httprouter.New(),
		entries: make(map[string]*entry),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/health", s.handleHealth)

	// Session lifecycle.
	s.router.GET("/sessions", s.handleListSessions)
	s.router.POST("/sessions", s.handleCreateSession)
	s.router.GET("/sessions/:id", s.handleGetSession)
	s.router.DELETE("/sessions/:id", s.handleDeleteSession)

	// Document binding.
	s.router.PUT("/sessions/:id/document", s.handleSetDocument)

	// Protocol.
	s.router.POST("/sessions/:id/search", s.handleSearch)
	s.router.POST("/sessions/:id/reset", s.handleReset)
	s.router.GET("/sessions/:id/ws", s.handleWebSocket)

	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path)
	})
	s.router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases every session's document.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		e.close()
		delete(s.entries, id)
	}
}

// create registers a new session bound to doc.
func (s *Server) create(id string, doc session.DocumentSource, file *host.FileDocument) (*entry, error) {
	sess, err := s.mgr.Create(id, doc)
	if err != nil {
		return nil, err
	}
	rec := host.NewRecorder()
	e := &entry{
		handler:  protocol.NewHandler(sess, rec, s.opts.DefaultMaxDistance, s.logger),
		recorder: rec,
		file:     file,
	}

	s.mu.Lock()
	s.entries[sess.ID()] = e
	s.mu.Unlock()
	return e, nil
}

func (s *Server) lookup(id string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", session.ErrSessionNotFound, id)
	}
	return e, nil
}

func (s *Server) remove(id string) error {
	if err := s.mgr.Delete(id); err != nil {
		return err
	}
	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()
	if ok {
		e.close()
	}
	return nil
}

// openDocument resolves a request body into a document source.
func (s *Server) openDocument(body documentBody) (session.DocumentSource, *host.FileDocument, error) {
	if body.Path == "" {
		return host.NewStaticDocument(body.Text), nil, nil
	}
	if body.Text != "" {
		return nil, nil, fmt.Errorf("%w: text and path are mutually exclusive", errBadDocument)
	}
	if !s.opts.AllowFileDocuments {
		return nil, nil, ErrFileDocumentsDisabled
	}
	f, err := host.OpenFileDocument(body.Path, s.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errBadDocument, err)
	}
	return f, f, nil
}
