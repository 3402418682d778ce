package oauthstate

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store used in tests and single-node development.
// A plain mutex around the map gives Consume its required atomicity: the
// lookup and delete happen under one critical section.
type Memory struct {
	mu    sync.Mutex
	items map[string]*State
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]*State)}
}

func stateKey(ownerID, provider, stateToken string) string {
	return strings.Join([]string{ownerID, provider, stateToken}, "\x00")
}

// Create inserts a fresh row.
func (m *Memory) Create(_ context.Context, s *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.items[stateKey(s.OwnerID, s.Provider, s.StateToken)] = &cp
	return nil
}

// Consume atomically removes and returns the matching row's verifier.
func (m *Memory) Consume(_ context.Context, ownerID, provider, stateToken string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := stateKey(ownerID, provider, stateToken)
	s, ok := m.items[key]
	if !ok {
		return "", ErrStateNotFound
	}

	// Single-use either way: the row is gone after this call.
	delete(m.items, key)

	if s.Expired(time.Now().UTC()) {
		return "", ErrStateExpired
	}
	return s.CodeVerifier, nil
}

// SweepExpired removes all rows past their deadline.
func (m *Memory) SweepExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	var n int64
	for key, s := range m.items {
		if s.Expired(now) {
			delete(m.items, key)
			n++
		}
	}
	return n, nil
}

var _ Store = (*Memory)(nil)
