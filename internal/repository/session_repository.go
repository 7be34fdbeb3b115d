package repository

import (
	"errors"
	"sync"
	"time"

	"github.com/fadilmartias/studypath/internal/view"
	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository keeps the live dashboard sessions in memory. Nothing survives a restart.
type SessionRepository struct {
	deps view.Deps

	mu       sync.RWMutex
	sessions map[string]*view.Controller
}

func NewSessionRepository(deps view.Deps) *SessionRepository {
	return &SessionRepository{deps: deps, sessions: make(map[string]*view.Controller)}
}

func (r *SessionRepository) CreateSession() *view.Controller {
	c := view.NewController(uuid.NewString(), r.deps)
	r.mu.Lock()
	r.sessions[c.ID()] = c
	r.mu.Unlock()
	return c
}

func (r *SessionRepository) FindSessionByID(id string) (*view.Controller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return c, nil
}

// DeleteSession removes the session and stops its background work.
func (r *SessionRepository) DeleteSession(id string) error {
	r.mu.Lock()
	c, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	c.Close()
	return nil
}

// ExpireIdle closes sessions that have been inactive for longer than idle and returns their ids.
func (r *SessionRepository) ExpireIdle(idle time.Duration, now time.Time) []string {
	var expired []*view.Controller
	r.mu.Lock()
	for id, c := range r.sessions {
		if now.Sub(c.LastActive()) > idle {
			expired = append(expired, c)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	ids := make([]string, 0, len(expired))
	for _, c := range expired {
		c.Close()
		ids = append(ids, c.ID())
	}
	return ids
}

func (r *SessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *SessionRepository) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*view.Controller)
	r.mu.Unlock()
	for _, c := range sessions {
		c.Close()
	}
}
