// Package session holds the authenticated identity for the lifetime of the
// user's login session.
package session

import "sync"

// Session is the client-held record of the currently authenticated identity.
// Empty fields mean absent.
type Session struct {
	UserID      string `yaml:"user_id,omitempty"`
	DisplayName string `yaml:"user_name,omitempty"`
}

// Authenticated reports whether a user is logged in.
func (s Session) Authenticated() bool {
	return s.UserID != ""
}

// Store is the only way components read or write the session.
// Set overwrites the whole record; there is no merge.
type Store interface {
	Get() (Session, error)
	Set(userID, displayName string) error
	Clear() error
}

// MemoryStore keeps the session in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	session Session
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the current session, or the zero Session if none is set.
func (m *MemoryStore) Get() (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, nil
}

// Set replaces the session.
func (m *MemoryStore) Set(userID, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{UserID: userID, DisplayName: displayName}
	return nil
}

// Clear resets the session to absent.
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = Session{}
	return nil
}
