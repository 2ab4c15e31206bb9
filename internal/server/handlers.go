package server

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"LevenSearch/internal/automaton"
	"LevenSearch/internal/protocol"
	"LevenSearch/internal/scanner"
	"LevenSearch/internal/session"
)

// documentBody selects a document: inline text, or a server-side path.
type documentBody struct {
	Text string `json:"text"`
	Path string `json:"path"`
}

type sessionInfo struct {
	ID         string             `json:"id"`
	State      string             `json:"state"`
	Query      *scanner.Query     `json:"query,omitempty"`
	Total      int                `json:"total"`
	Cursor     int                `json:"cursor"`
	Current    *scanner.MatchSpan `json:"current,omitempty"`
	Highlights scanner.MatchList  `json:"highlights"`
}

func (e *entry) info() sessionInfo {
	sess := e.handler.Session()
	info := sessionInfo{
		ID:         sess.ID(),
		State:      sess.State().String(),
		Total:      len(sess.Matches()),
		Cursor:     sess.Cursor(),
		Highlights: scanner.MatchList(e.recorder.Spans()),
	}
	if sess.State() != session.Idle {
		q := sess.Query()
		info.Query = &q
	}
	if cur, ok := sess.Current(); ok {
		info.Current = &cur
	}
	return info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.opts.Version,
	})
}

// --- Session Lifecycle ---

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ids := s.mgr.List()
	infos := make([]sessionInfo, 0, len(ids))
	for _, id := range ids {
		e, err := s.lookup(id)
		if err != nil {
			continue
		}
		infos = append(infos, e.info())
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": infos})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		ID string `json:"id"`
		documentBody
	}
	if !decodeBody(w, r, &req) {
		return
	}

	doc, file, err := s.openDocument(req.documentBody)
	if err != nil {
		writeErr(w, err)
		return
	}
	e, err := s.create(req.ID, doc, file)
	if err != nil {
		if file != nil {
			file.Close()
		}
		writeErr(w, err)
		return
	}

	if file != nil {
		s.logger.Info("session bound to file", "session", e.handler.Session().ID(), "path", file.Path())
	}
	writeJSON(w, http.StatusCreated, e.info())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	e, err := s.lookup(ps.ByName("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e.info())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if err := s.remove(id); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"id":     id,
	})
}

// --- Document ---

func (s *Server) handleSetDocument(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	e, err := s.lookup(ps.ByName("id"))
	if err != nil {
		writeErr(w, err)
		return
	}

	var body documentBody
	if !decodeBody(w, r, &body) {
		return
	}
	doc, file, err := s.openDocument(body)
	if err != nil {
		writeErr(w, err)
		return
	}
	e.setDocument(doc, file)
	writeJSON(w, http.StatusOK, e.info())
}

// --- Protocol ---

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	e, err := s.lookup(ps.ByName("id"))
	if err != nil {
		writeErr(w, err)
		return
	}

	var req protocol.Request
	if !decodeBody(w, r, &req) {
		return
	}
	req.Command = protocol.CommandSearch

	resp, err := e.handler.Handle(r.Context(), req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	e, err := s.lookup(ps.ByName("id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	resp, err := e.handler.Handle(r.Context(), protocol.Reset())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionExists), errors.Is(err, session.ErrStale):
		return http.StatusConflict
	case errors.Is(err, ErrFileDocumentsDisabled):
		return http.StatusForbidden
	case errors.Is(err, session.ErrHostUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, scanner.ErrScanTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, automaton.ErrInvalidConfig),
		errors.Is(err, protocol.ErrUnknownCommand),
		errors.Is(err, errBadDocument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}
