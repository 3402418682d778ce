package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/briefly/pkg/googleauth"
	"github.com/dmitrymomot/briefly/pkg/logger"
	"github.com/dmitrymomot/briefly/pkg/mailer"
	"github.com/dmitrymomot/briefly/pkg/oauthstate"
)

type staticDirectory struct {
	email string
	err   error
}

func (d *staticDirectory) UserEmail(context.Context, string) (string, error) {
	return d.email, d.err
}

type captureSender struct {
	sent []*mailer.Email
}

func (s *captureSender) Send(_ context.Context, email *mailer.Email) error {
	s.sent = append(s.sent, email)
	return nil
}

func newTestMailer(sender mailer.Sender) *mailer.Mailer {
	return mailer.New(sender, mailer.NewRenderer(Templates()),
		mailer.Config{FallbackSubject: "Notification", DefaultLayout: "base.html"})
}

func TestConnectedEmailWorker(t *testing.T) {
	t.Parallel()

	t.Run("sends to the linked account address", func(t *testing.T) {
		t.Parallel()

		sender := &captureSender{}
		w := &ConnectedEmailWorker{
			mail:      newTestMailer(sender),
			directory: &staticDirectory{email: "user@example.com"},
			log:       logger.Discard(),
		}

		err := w.Work(context.Background(), &river.Job[ConnectedEmailArgs]{
			Args: ConnectedEmailArgs{OwnerID: "owner-1"},
		})
		require.NoError(t, err)
		require.Len(t, sender.sent, 1)
		require.Equal(t, []string{"user@example.com"}, sender.sent[0].To)
		require.Equal(t, "Your Google Calendar is connected", sender.sent[0].Subject)
		require.Contains(t, sender.sent[0].HTML, "user@example.com")
	})

	t.Run("completes without sending when owner unlinked", func(t *testing.T) {
		t.Parallel()

		sender := &captureSender{}
		w := &ConnectedEmailWorker{
			mail:      newTestMailer(sender),
			directory: &staticDirectory{err: googleauth.ErrNotLinked},
			log:       logger.Discard(),
		}

		err := w.Work(context.Background(), &river.Job[ConnectedEmailArgs]{
			Args: ConnectedEmailArgs{OwnerID: "owner-1"},
		})
		require.NoError(t, err)
		require.Empty(t, sender.sent)
	})

	t.Run("transient directory failure is retried", func(t *testing.T) {
		t.Parallel()

		lookupErr := errors.New("userinfo unavailable")
		w := &ConnectedEmailWorker{
			mail:      newTestMailer(&captureSender{}),
			directory: &staticDirectory{err: lookupErr},
			log:       logger.Discard(),
		}

		err := w.Work(context.Background(), &river.Job[ConnectedEmailArgs]{
			Args: ConnectedEmailArgs{OwnerID: "owner-1"},
		})
		require.ErrorIs(t, err, lookupErr)
	})
}

func TestSweepWorker(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	states := oauthstate.NewMemory()

	expired := oauthstate.New("owner-1", "google", "tok-expired", "verifier", time.Minute)
	expired.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, states.Create(ctx, expired))
	require.NoError(t, states.Create(ctx, oauthstate.New("owner-2", "google", "tok-live", "verifier", time.Minute)))

	w := &SweepWorker{states: states, log: logger.Discard()}
	require.NoError(t, w.Work(ctx, &river.Job[SweepStatesArgs]{Args: SweepStatesArgs{}}))

	_, err := states.Consume(ctx, "owner-1", "google", "tok-expired")
	require.ErrorIs(t, err, oauthstate.ErrStateNotFound)

	_, err = states.Consume(ctx, "owner-2", "google", "tok-live")
	require.NoError(t, err)
}
