package session

import (
	"sync"
	"time"

	"github.com/wms-platform/dropzone-service/internal/domain"
)

// State is what the credential-discovery collaborator last reported
type State struct {
	Session   domain.SessionContext `json:"session"`
	HasCookie bool                  `json:"hasCookie"`
	Valid     bool                  `json:"valid"`
	UpdatedAt time.Time             `json:"updatedAt,omitempty"`
}

// Store holds the ambient session. Writers replace it whole; scans read a
// snapshot. It implements domain.SessionProvider and the search client's
// cookie source.
type Store struct {
	mu        sync.RWMutex
	session   domain.SessionContext
	cookie    string
	updatedAt time.Time
}

// NewStore creates a store seeded with initial values
func NewStore(initial domain.SessionContext, cookie string) *Store {
	s := &Store{session: initial, cookie: cookie}
	if initial != (domain.SessionContext{}) || cookie != "" {
		s.updatedAt = time.Now().UTC()
	}
	return s
}

// Update replaces the session. An empty cookie keeps the current one.
func (s *Store) Update(session domain.SessionContext, cookie string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = session
	if cookie != "" {
		s.cookie = cookie
	}
	s.updatedAt = time.Now().UTC()
}

// Snapshot returns a copy of the current session
func (s *Store) Snapshot() domain.SessionContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Cookie returns the ambient session cookie header
func (s *Store) Cookie() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cookie
}

// State describes the stored session without exposing the cookie
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return State{
		Session:   s.session,
		HasCookie: s.cookie != "",
		Valid:     s.session.IsValid(),
		UpdatedAt: s.updatedAt,
	}
}
