package jobs

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/dmitrymomot/briefly/pkg/oauthstate"
)

// SweepWorker deletes expired authorization states. Expired rows are
// already unusable (Consume rejects them); the sweep just keeps the
// table from accumulating abandoned flows.
type SweepWorker struct {
	river.WorkerDefaults[SweepStatesArgs]

	states oauthstate.Store
	log    *slog.Logger
}

func (w *SweepWorker) Work(ctx context.Context, _ *river.Job[SweepStatesArgs]) error {
	deleted, err := w.states.SweepExpired(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		w.log.InfoContext(ctx, "expired authorization states swept", slog.Int64("deleted", deleted))
	}
	return nil
}
