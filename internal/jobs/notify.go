package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/dmitrymomot/briefly/pkg/googleauth"
	"github.com/dmitrymomot/briefly/pkg/mailer"
)

// EmailDirectory resolves an owner's notification address from the
// linked Google account. *gcal.Client implements it.
type EmailDirectory interface {
	UserEmail(ctx context.Context, ownerID string) (string, error)
}

// ConnectedEmailWorker sends the "calendar connected" notification.
type ConnectedEmailWorker struct {
	river.WorkerDefaults[ConnectedEmailArgs]

	mail      *mailer.Mailer
	directory EmailDirectory
	log       *slog.Logger
}

func (w *ConnectedEmailWorker) Work(ctx context.Context, job *river.Job[ConnectedEmailArgs]) error {
	ownerID := job.Args.OwnerID

	email, err := w.directory.UserEmail(ctx, ownerID)
	if err != nil {
		// Unlinked between enqueue and work: nothing to send, done.
		if errors.Is(err, googleauth.ErrNotLinked) {
			w.log.InfoContext(ctx, "skipping connected email, owner no longer linked",
				slog.String("owner_id", ownerID))
			return nil
		}
		return err
	}

	return w.mail.Send(ctx, mailer.SendParams{
		To:       email,
		Template: "calendar_connected.md",
		Data:     map[string]string{"Email": email},
		Tags:     map[string]string{"category": "credentials"},
	})
}
