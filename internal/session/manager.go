package session

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
)

// ErrNotFound is returned when looking up an unknown session
var ErrNotFound = errors.New("session not found")

// ErrExists is returned when registering a duplicate session id
var ErrExists = errors.New("session already exists")

// Manager tracks running sessions by game id
type Manager struct {
	logger *log.Logger

	mu        sync.RWMutex
	sessions  map[string]*running
	defaultID string
}

type running struct {
	session *Session
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewManager constructs an empty manager
func NewManager(logger *log.Logger) *Manager {
	return &Manager{
		logger:   logger.WithPrefix("manager"),
		sessions: make(map[string]*running),
	}
}

// Start registers a session and launches its run loop. The first session
// started becomes the default.
func (m *Manager) Start(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID()]; ok {
		return ErrExists
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &running{session: s, cancel: cancel, done: make(chan struct{})}
	m.sessions[s.ID()] = r
	if m.defaultID == "" {
		m.defaultID = s.ID()
	}

	go func() {
		defer close(r.done)
		if err := s.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			m.logger.Error("session exited", "game", s.ID(), "err", err)
		}
	}()
	return nil
}

// Get retrieves a session by id
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	return r.session, true
}

// Default returns the default session, if any
func (m *Manager) Default() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.sessions[m.defaultID]
	if !ok {
		return nil, false
	}
	return r.session, true
}

// IDs lists the registered session ids
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Stop cancels one session and waits for its loop to exit
func (m *Manager) Stop(id string) error {
	m.mu.Lock()
	r, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
		if m.defaultID == id {
			m.defaultID = ""
			for remaining := range m.sessions {
				m.defaultID = remaining
				break
			}
		}
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	r.cancel()
	<-r.done
	return nil
}

// StopAll cancels every session and waits for them to exit
func (m *Manager) StopAll() {
	m.mu.Lock()
	stopped := make([]*running, 0, len(m.sessions))
	for id, r := range m.sessions {
		delete(m.sessions, id)
		stopped = append(stopped, r)
	}
	m.defaultID = ""
	m.mu.Unlock()

	for _, r := range stopped {
		r.cancel()
		<-r.done
	}
}
