package session

import (
	"net/http"
	"sync/atomic"

	"https-examples/internal/auth"
)

// MemoryStore holds a single profile for the whole process.
//
// Every request sees the last profile that logged in, whoever sent it.
// Restarting the process logs everyone out and the state is not shared
// between instances. Concurrent logins race and the last write wins.
// The oauth example relies on exactly this behavior.
type MemoryStore struct {
	current atomic.Pointer[auth.Profile]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(r *http.Request) (*auth.Profile, error) {
	return s.current.Load(), nil
}

func (s *MemoryStore) Save(w http.ResponseWriter, r *http.Request, p *auth.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.current.Store(p)
	return nil
}

func (s *MemoryStore) Clear(w http.ResponseWriter, r *http.Request) error {
	s.current.Store(nil)
	return nil
}
