package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"LevenSearch/internal/scanner"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
)

// Manager owns independent sessions within a single process. Sessions
// share the scanner but no search state.
type Manager struct {
	scanner *scanner.Scanner
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager whose sessions scan with sc.
func NewManager(sc *scanner.Scanner, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		scanner:  sc,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session. An empty id is replaced by a random one.
func (m *Manager) Create(id string, source DocumentSource) (*Session, error) {
	if id == "" {
		var err error
		if id, err = generateID(); err != nil {
			return nil, fmt.Errorf("generate session id: %w", err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[id]; exists {
		return nil, fmt.Errorf("%w: %q", ErrSessionExists, id)
	}

	s := New(id, source, m.scanner, m.logger)
	m.sessions[id] = s
	m.logger.Info("session created", "session", id)
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.sessions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete resets and removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.sessions[id]
	if !exists {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	s.Reset()
	delete(m.sessions, id)
	m.logger.Info("session deleted", "session", id)
	return nil
}

// List returns the sorted ids of all sessions.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func generateID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
