// Package settingsstore is the device-local key/value store behind the
// synchronized settings containers. Writes are synchronous: a value is
// persisted before Set returns.
package settingsstore

import (
	"log"
	"sync"
)

// Backend is the persistent side of the store.
type Backend interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// SettingsStore reads and writes raw setting values. When the backend fails
// the store keeps working from memory, so a broken disk degrades to
// per-process settings instead of failing the reader.
type SettingsStore struct {
	backend Backend

	mu       sync.RWMutex
	fallback map[string]string
}

func New(backend Backend) *SettingsStore {
	return &SettingsStore{backend: backend, fallback: make(map[string]string)}
}

// NewMemory returns a store without a persistent backend.
func NewMemory() *SettingsStore {
	return New(nil)
}

// GetRaw returns the value stored under key.
func (s *SettingsStore) GetRaw(key string) (string, bool, error) {
	if s.backend != nil {
		value, ok, err := s.backend.Get(key)
		if err == nil {
			return value, ok, nil
		}
		log.Printf("[Settings] Read of %q failed, using memory: %v", key, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.fallback[key]
	return value, ok, nil
}

// SetRaw stores value under key.
func (s *SettingsStore) SetRaw(key, value string) error {
	s.mu.Lock()
	s.fallback[key] = value
	s.mu.Unlock()

	if s.backend == nil {
		return nil
	}
	if err := s.backend.Set(key, value); err != nil {
		log.Printf("[Settings] Write of %q failed, kept in memory: %v", key, err)
		return err
	}
	return nil
}

// Remove deletes key.
func (s *SettingsStore) Remove(key string) error {
	s.mu.Lock()
	delete(s.fallback, key)
	s.mu.Unlock()

	if s.backend == nil {
		return nil
	}
	return s.backend.Delete(key)
}

// Source reports where the value for key currently comes from: "database",
// "memory" or "default" when unset.
func (s *SettingsStore) Source(key string) string {
	if s.backend != nil {
		if _, ok, err := s.backend.Get(key); err == nil && ok {
			return "database"
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.fallback[key]; ok {
		return "memory"
	}
	return "default"
}
