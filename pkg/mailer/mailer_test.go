package mailer_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/briefly/pkg/mailer"
	"github.com/dmitrymomot/briefly/pkg/resilience"
)

var testFS = fstest.MapFS{
	"calendar_connected.md": &fstest.MapFile{Data: []byte(`---
subject: "Calendar connected, {{.Name}}"
---
# You're all set

Your Google Calendar **{{.Calendar}}** is now connected.
`)},
	"plain.md": &fstest.MapFile{Data: []byte("Just a body, no frontmatter.\n")},
	"layouts/base.html": &fstest.MapFile{Data: []byte(`<html><body>{{.Content}}</body></html>`)},
}

type captureSender struct {
	sent     []*mailer.Email
	failures int
}

func (s *captureSender) Send(_ context.Context, email *mailer.Email) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("provider hiccup")
	}
	s.sent = append(s.sent, email)
	return nil
}

func newMailer(sender mailer.Sender) *mailer.Mailer {
	return mailer.New(sender, mailer.NewRenderer(testFS),
		mailer.Config{FallbackSubject: "Notification", DefaultLayout: "base.html"},
		resilience.WithBackoff(time.Millisecond, 2*time.Millisecond),
		resilience.WithTimeout(time.Second),
	)
}

func TestParseTemplate(t *testing.T) {
	t.Parallel()

	t.Run("frontmatter and body", func(t *testing.T) {
		t.Parallel()

		tmpl, err := mailer.ParseTemplate([]byte("---\nsubject: Hi\n---\nBody text"))
		require.NoError(t, err)
		require.Equal(t, "Hi", tmpl.Metadata["subject"])
		require.Equal(t, "Body text", tmpl.Body)
	})

	t.Run("no frontmatter", func(t *testing.T) {
		t.Parallel()

		tmpl, err := mailer.ParseTemplate([]byte("Body only"))
		require.NoError(t, err)
		require.Empty(t, tmpl.Metadata)
		require.Equal(t, "Body only", tmpl.Body)
	})

	t.Run("unterminated frontmatter", func(t *testing.T) {
		t.Parallel()

		_, err := mailer.ParseTemplate([]byte("---\nsubject: Hi\nBody"))
		require.ErrorIs(t, err, mailer.ErrInvalidFrontmatter)
	})
}

func TestMailerSend(t *testing.T) {
	t.Parallel()

	t.Run("renders template with frontmatter subject", func(t *testing.T) {
		t.Parallel()

		sender := &captureSender{}
		m := newMailer(sender)

		err := m.Send(context.Background(), mailer.SendParams{
			To:       "user@example.com",
			Template: "calendar_connected.md",
			Data:     map[string]string{"Name": "Alex", "Calendar": "Work"},
			Tags:     map[string]string{"category": "credentials"},
		})
		require.NoError(t, err)
		require.Len(t, sender.sent, 1)

		email := sender.sent[0]
		require.Equal(t, []string{"user@example.com"}, email.To)
		require.Equal(t, "Calendar connected, Alex", email.Subject)
		require.Contains(t, email.HTML, "<strong>Work</strong>")
		require.Contains(t, email.HTML, "<html><body>")
		require.Contains(t, email.Text, "**Work**")
		require.Equal(t, "credentials", email.Tags["category"])
	})

	t.Run("falls back to configured subject", func(t *testing.T) {
		t.Parallel()

		sender := &captureSender{}
		m := newMailer(sender)

		err := m.Send(context.Background(), mailer.SendParams{
			To:       "user@example.com",
			Template: "plain.md",
		})
		require.NoError(t, err)
		require.Equal(t, "Notification", sender.sent[0].Subject)
	})

	t.Run("retries transient provider failures", func(t *testing.T) {
		t.Parallel()

		sender := &captureSender{failures: 1}
		m := newMailer(sender)

		err := m.Send(context.Background(), mailer.SendParams{
			To:       "user@example.com",
			Template: "plain.md",
		})
		require.NoError(t, err)
		require.Len(t, sender.sent, 1)
	})

	t.Run("requires a recipient", func(t *testing.T) {
		t.Parallel()

		err := newMailer(&captureSender{}).Send(context.Background(), mailer.SendParams{Template: "plain.md"})
		require.ErrorIs(t, err, mailer.ErrNoRecipient)
	})

	t.Run("unknown template", func(t *testing.T) {
		t.Parallel()

		err := newMailer(&captureSender{}).Send(context.Background(), mailer.SendParams{
			To:       "user@example.com",
			Template: "missing.md",
		})
		require.ErrorIs(t, err, mailer.ErrTemplateNotFound)
	})
}
