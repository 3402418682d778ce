package credentials

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store for tests and single-node development.
type Memory struct {
	mu    sync.Mutex
	items map[string]*Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]*Record)}
}

func recordKey(ownerID, provider string) string {
	return ownerID + "\x00" + provider
}

// Get returns a copy of the stored record.
func (m *Memory) Get(_ context.Context, ownerID, provider string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.items[recordKey(ownerID, provider)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	if r.RefreshToken != nil {
		rt := *r.RefreshToken
		cp.RefreshToken = &rt
	}
	return &cp, nil
}

// SaveTokens upserts tokens and marks the record linked.
func (m *Memory) SaveTokens(_ context.Context, ownerID, provider, accessToken string, refreshToken *string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := recordKey(ownerID, provider)
	r, ok := m.items[key]
	if !ok {
		r = &Record{OwnerID: ownerID, Provider: provider}
		m.items[key] = r
	}

	r.Linked = true
	r.AccessToken = accessToken
	r.ExpiresAt = expiresAt
	r.UpdatedAt = time.Now().UTC()
	if refreshToken != nil && *refreshToken != "" {
		rt := *refreshToken
		r.RefreshToken = &rt
	}
	return nil
}

// UpdateAccessToken stores a refreshed token unless it would regress expiry.
func (m *Memory) UpdateAccessToken(_ context.Context, ownerID, provider, accessToken string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.items[recordKey(ownerID, provider)]
	if !ok {
		return ErrNotFound
	}
	if expiresAt.Before(r.ExpiresAt) {
		// A newer refresh already landed; drop the stale write.
		return nil
	}

	r.AccessToken = accessToken
	r.ExpiresAt = expiresAt
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// SetCalendar persists the chosen calendar id.
func (m *Memory) SetCalendar(_ context.Context, ownerID, provider, calendarID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.items[recordKey(ownerID, provider)]
	if !ok {
		return ErrNotFound
	}
	r.CalendarID = calendarID
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Clear nulls all credential fields and unlinks.
func (m *Memory) Clear(_ context.Context, ownerID, provider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.items[recordKey(ownerID, provider)]
	if !ok {
		return nil
	}
	*r = Record{
		OwnerID:   ownerID,
		Provider:  provider,
		UpdatedAt: time.Now().UTC(),
	}
	return nil
}

var _ Store = (*Memory)(nil)
