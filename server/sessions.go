package server

import (
	"errors"
	"sync"
	"time"

	"github.com/chazu/intcode/pkg/intcode"
	"github.com/google/uuid"
)

// ErrTooManySessions is returned when the session limit is reached.
var ErrTooManySessions = errors.New("too many sessions")

// Session is a VM kept alive between requests. Its VM is only touched on
// the worker goroutine.
type Session struct {
	ID      string
	Name    string
	Program string // program hash
	VM      *intcode.VM

	// Inputs and Output accumulate over every resume.
	Inputs []string
	Output []string

	created  time.Time
	lastUsed time.Time
}

// SessionStore manages VM sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
}

// NewSessionStore creates a new session store holding at most max sessions.
// A max of zero means no limit.
func NewSessionStore(max int) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		max:      max,
	}
}

// Create registers a new session around a fresh VM for p.
func (s *SessionStore) Create(name string, p intcode.Program, opts ...intcode.Option) (*Session, error) {
	id := uuid.NewString()
	now := time.Now()

	if name == "" {
		name = id[:8]
	}
	session := &Session{
		ID:       id,
		Name:     name,
		Program:  p.Hash(),
		VM:       intcode.New(p, withName(opts, name)...),
		created:  now,
		lastUsed: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.sessions) >= s.max {
		return nil, ErrTooManySessions
	}
	s.sessions[id] = session
	return session, nil
}

func withName(opts []intcode.Option, name string) []intcode.Option {
	out := make([]intcode.Option, 0, len(opts)+1)
	return append(append(out, opts...), intcode.WithName(name))
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if ok {
		session.lastUsed = time.Now()
	}
	return session, ok
}

// Destroy removes a session and reports whether it existed.
func (s *SessionStore) Destroy(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions that haven't been accessed within the TTL.
func (s *SessionStore) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	removed := 0
	for id, session := range s.sessions {
		if session.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Infof("swept %d idle sessions", removed)
	}
	return removed
}

// StartSweeper runs periodic TTL sweeps in the background.
// Returns a stop function.
func (s *SessionStore) StartSweeper(interval, ttl time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				s.Sweep(ttl)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}
