package auth

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/mrlokans/chumash/internal/entities"
)

// LocalStore persists the session on this device.
type LocalStore interface {
	GetRaw(key string) (string, bool, error)
	SetRaw(key, value string) error
}

type sessionState struct {
	UserID string `json:"user_id"`
	Token  string `json:"token,omitempty"`
}

// Session holds the user signed in on this device. Subscribers are told the
// new user id on every change; an empty id means signed out.
type Session struct {
	store LocalStore

	mu        sync.RWMutex
	state     sessionState
	listeners map[int]func(userID string)
	nextID    int
}

// NewSession restores the last session from store, if any.
func NewSession(store LocalStore) *Session {
	s := &Session{store: store, listeners: make(map[int]func(string))}
	if store == nil {
		return s
	}
	raw, ok, err := store.GetRaw(entities.SettingKeySession)
	if err != nil || !ok {
		return s
	}
	if err := json.Unmarshal([]byte(raw), &s.state); err != nil {
		log.Printf("[Auth] Ignoring unreadable stored session: %v", err)
		s.state = sessionState{}
	}
	return s
}

// UserID returns the signed-in user, or "" when signed out.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.UserID
}

// Token returns the bearer token of the signed-in user.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// Login records userID and token as the current session.
func (s *Session) Login(userID, token string) {
	s.set(sessionState{UserID: userID, Token: token})
}

// Logout clears the session.
func (s *Session) Logout() {
	s.set(sessionState{})
}

// Subscribe registers fn for session changes and returns a function that
// removes it.
func (s *Session) Subscribe(fn func(userID string)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Session) set(next sessionState) {
	s.mu.Lock()
	changed := s.state.UserID != next.UserID
	s.state = next
	listeners := make([]func(string), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	if s.store != nil {
		data, _ := json.Marshal(next)
		if err := s.store.SetRaw(entities.SettingKeySession, string(data)); err != nil {
			log.Printf("[Auth] Failed to persist session: %v", err)
		}
	}

	if !changed {
		return
	}
	for _, fn := range listeners {
		fn(next.UserID)
	}
}
