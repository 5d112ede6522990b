package memory

import (
	"sync"

	"github.com/dafibh/finbot/finbot-backend/internal/domain"
)

// SessionRepository implements domain.SessionRepository in process memory
type SessionRepository struct {
	sessions map[string]*domain.EntrySession
	mu       sync.RWMutex
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]*domain.EntrySession),
	}
}

// Get returns a copy of the user's session
func (r *SessionRepository) Get(userID string) (*domain.EntrySession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[userID]
	if !ok {
		return nil, false
	}
	c := *s
	return &c, true
}

// Put replaces the user's session
func (r *SessionRepository) Put(session *domain.EntrySession) {
	c := *session

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.UserID] = &c
}

// Delete removes the user's session if any
func (r *SessionRepository) Delete(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
}

// Len returns the number of active sessions
func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
