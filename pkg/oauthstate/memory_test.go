package oauthstate_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/briefly/pkg/oauthstate"
)

func TestMemoryConsume(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("single use", func(t *testing.T) {
		t.Parallel()
		store := oauthstate.NewMemory()

		s := oauthstate.New("u1", "google", "tok-1", "verifier-1", time.Minute)
		require.NoError(t, store.Create(ctx, s))

		verifier, err := store.Consume(ctx, "u1", "google", "tok-1")
		require.NoError(t, err)
		require.Equal(t, "verifier-1", verifier)

		_, err = store.Consume(ctx, "u1", "google", "tok-1")
		require.ErrorIs(t, err, oauthstate.ErrStateNotFound)
	})

	t.Run("unknown state", func(t *testing.T) {
		t.Parallel()
		store := oauthstate.NewMemory()
		_, err := store.Consume(ctx, "u1", "google", "nope")
		require.ErrorIs(t, err, oauthstate.ErrStateNotFound)
	})

	t.Run("all three keys must match", func(t *testing.T) {
		t.Parallel()
		store := oauthstate.NewMemory()
		require.NoError(t, store.Create(ctx, oauthstate.New("u1", "google", "tok-1", "v", time.Minute)))

		_, err := store.Consume(ctx, "u2", "google", "tok-1")
		require.ErrorIs(t, err, oauthstate.ErrStateNotFound)
		_, err = store.Consume(ctx, "u1", "github", "tok-1")
		require.ErrorIs(t, err, oauthstate.ErrStateNotFound)

		// The mismatched attempts must not have burned the row.
		verifier, err := store.Consume(ctx, "u1", "google", "tok-1")
		require.NoError(t, err)
		require.Equal(t, "v", verifier)
	})

	t.Run("expired state is deleted on touch", func(t *testing.T) {
		t.Parallel()
		store := oauthstate.NewMemory()

		s := oauthstate.New("u1", "google", "tok-1", "v", time.Minute)
		s.ExpiresAt = time.Now().UTC().Add(-time.Second)
		require.NoError(t, store.Create(ctx, s))

		_, err := store.Consume(ctx, "u1", "google", "tok-1")
		require.ErrorIs(t, err, oauthstate.ErrStateExpired)

		// Expired rows must not be resurrectable.
		_, err = store.Consume(ctx, "u1", "google", "tok-1")
		require.ErrorIs(t, err, oauthstate.ErrStateNotFound)
	})

	t.Run("concurrent consumption has one winner", func(t *testing.T) {
		t.Parallel()
		store := oauthstate.NewMemory()
		require.NoError(t, store.Create(ctx, oauthstate.New("u1", "google", "tok-1", "v", time.Minute)))

		const racers = 16
		var wg sync.WaitGroup
		results := make(chan error, racers)
		for range racers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Consume(ctx, "u1", "google", "tok-1")
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		var wins, losses int
		for err := range results {
			switch {
			case err == nil:
				wins++
			default:
				require.ErrorIs(t, err, oauthstate.ErrStateNotFound)
				losses++
			}
		}
		require.Equal(t, 1, wins)
		require.Equal(t, racers-1, losses)
	})
}

func TestMemorySweepExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := oauthstate.NewMemory()

	fresh := oauthstate.New("u1", "google", "fresh", "v1", time.Minute)
	require.NoError(t, store.Create(ctx, fresh))

	for _, tok := range []string{"old-1", "old-2"} {
		s := oauthstate.New("u1", "google", tok, "v", time.Minute)
		s.ExpiresAt = time.Now().UTC().Add(-time.Minute)
		require.NoError(t, store.Create(ctx, s))
	}

	n, err := store.SweepExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	// The fresh row survives the sweep.
	verifier, err := store.Consume(ctx, "u1", "google", "fresh")
	require.NoError(t, err)
	require.Equal(t, "v1", verifier)
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	s := oauthstate.New("u1", "google", "tok", "v", 0)
	require.WithinDuration(t, time.Now().UTC().Add(oauthstate.DefaultTTL), s.ExpiresAt, 2*time.Second)
	require.False(t, s.Expired(time.Now().UTC()))
	require.NotEqual(t, s.ID.String(), "00000000-0000-0000-0000-000000000000")
}
