package credentials_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/briefly/pkg/credentials"
)

func strPtr(s string) *string { return &s }

func TestMemorySaveTokens(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("first link", func(t *testing.T) {
		t.Parallel()
		store := credentials.NewMemory()
		exp := time.Now().UTC().Add(time.Hour)

		require.NoError(t, store.SaveTokens(ctx, "u1", "google", "AT1", strPtr("RT1"), exp))

		r, err := store.Get(ctx, "u1", "google")
		require.NoError(t, err)
		require.True(t, r.Linked)
		require.Equal(t, "AT1", r.AccessToken)
		require.NotNil(t, r.RefreshToken)
		require.Equal(t, "RT1", *r.RefreshToken)
		require.WithinDuration(t, exp, r.ExpiresAt, time.Second)
	})

	t.Run("re-consent without refresh token keeps the stored one", func(t *testing.T) {
		t.Parallel()
		store := credentials.NewMemory()
		exp := time.Now().UTC().Add(time.Hour)

		require.NoError(t, store.SaveTokens(ctx, "u1", "google", "AT1", strPtr("RT1"), exp))
		require.NoError(t, store.SaveTokens(ctx, "u1", "google", "AT2", nil, exp))

		r, err := store.Get(ctx, "u1", "google")
		require.NoError(t, err)
		require.Equal(t, "AT2", r.AccessToken)
		require.NotNil(t, r.RefreshToken)
		require.Equal(t, "RT1", *r.RefreshToken, "nil refresh token must not overwrite the stored one")
	})

	t.Run("unknown owner", func(t *testing.T) {
		t.Parallel()
		store := credentials.NewMemory()
		_, err := store.Get(ctx, "nobody", "google")
		require.ErrorIs(t, err, credentials.ErrNotFound)
	})
}

func TestMemoryUpdateAccessToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("updates token and expiry only", func(t *testing.T) {
		t.Parallel()
		store := credentials.NewMemory()
		require.NoError(t, store.SaveTokens(ctx, "u1", "google", "AT1", strPtr("RT1"), time.Now().UTC()))

		newExp := time.Now().UTC().Add(time.Hour)
		require.NoError(t, store.UpdateAccessToken(ctx, "u1", "google", "AT2", newExp))

		r, err := store.Get(ctx, "u1", "google")
		require.NoError(t, err)
		require.Equal(t, "AT2", r.AccessToken)
		require.Equal(t, "RT1", *r.RefreshToken, "refresh must leave the refresh token untouched")
		require.WithinDuration(t, newExp, r.ExpiresAt, time.Second)
	})

	t.Run("stale refresh does not regress expiry", func(t *testing.T) {
		t.Parallel()
		store := credentials.NewMemory()
		require.NoError(t, store.SaveTokens(ctx, "u1", "google", "AT1", strPtr("RT1"), time.Now().UTC()))

		later := time.Now().UTC().Add(2 * time.Hour)
		earlier := time.Now().UTC().Add(time.Hour)
		require.NoError(t, store.UpdateAccessToken(ctx, "u1", "google", "AT-new", later))
		require.NoError(t, store.UpdateAccessToken(ctx, "u1", "google", "AT-stale", earlier))

		r, err := store.Get(ctx, "u1", "google")
		require.NoError(t, err)
		require.Equal(t, "AT-new", r.AccessToken)
		require.WithinDuration(t, later, r.ExpiresAt, time.Second)
	})

	t.Run("missing record", func(t *testing.T) {
		t.Parallel()
		store := credentials.NewMemory()
		err := store.UpdateAccessToken(ctx, "u1", "google", "AT", time.Now())
		require.ErrorIs(t, err, credentials.ErrNotFound)
	})
}

func TestMemoryClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := credentials.NewMemory()

	require.NoError(t, store.SaveTokens(ctx, "u1", "google", "AT1", strPtr("RT1"), time.Now().UTC().Add(time.Hour)))
	require.NoError(t, store.SetCalendar(ctx, "u1", "google", "primary"))
	require.NoError(t, store.Clear(ctx, "u1", "google"))

	r, err := store.Get(ctx, "u1", "google")
	require.NoError(t, err)
	require.False(t, r.Linked)
	require.Empty(t, r.AccessToken)
	require.Nil(t, r.RefreshToken)
	require.Empty(t, r.CalendarID)

	// Clearing an unknown record is a no-op, not an error.
	require.NoError(t, store.Clear(ctx, "ghost", "google"))
}

func TestRecordNeedsRefresh(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()

	r := &credentials.Record{ExpiresAt: now.Add(2 * time.Hour)}
	require.False(t, r.NeedsRefresh(now))

	r.ExpiresAt = now.Add(-time.Minute)
	require.True(t, r.NeedsRefresh(now))

	// Within the skew margin counts as expired.
	r.ExpiresAt = now.Add(30 * time.Second)
	require.True(t, r.NeedsRefresh(now))
}
