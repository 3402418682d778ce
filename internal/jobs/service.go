package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/briefly/pkg/mailer"
	"github.com/dmitrymomot/briefly/pkg/oauthstate"
)

// Config holds background-processing settings.
type Config struct {
	// SweepSchedule is a standard 5-field cron expression.
	SweepSchedule string
	MaxWorkers    int
}

// Service owns the River client: workers, the periodic sweep, and the
// enqueue side used by the HTTP layer.
type Service struct {
	client *river.Client[pgx.Tx]
	log    *slog.Logger
}

// New builds the job service. Jobs may be enqueued before Start.
func New(pool *pgxpool.Pool, cfg Config, states oauthstate.Store, mail *mailer.Mailer, directory EmailDirectory, log *slog.Logger) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 10
	}

	schedule, err := cron.ParseStandard(cfg.SweepSchedule)
	if err != nil {
		return nil, fmt.Errorf("jobs: invalid sweep schedule %q: %w", cfg.SweepSchedule, err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &SweepWorker{states: states, log: log})
	river.AddWorker(workers, &ConnectedEmailWorker{mail: mail, directory: directory, log: log})

	periodic := []*river.PeriodicJob{
		river.NewPeriodicJob(
			schedule,
			func() (river.JobArgs, *river.InsertOpts) {
				return SweepStatesArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.MaxWorkers},
		},
		Workers:      workers,
		PeriodicJobs: periodic,
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("jobs: create river client: %w", err)
	}

	return &Service{client: client, log: log}, nil
}

// Migrate brings the River queue schema up to date. Run before Start,
// alongside the application's own goose migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("jobs: create migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("jobs: migrate queue schema: %w", err)
	}
	return nil
}

// Start begins processing jobs.
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("jobs: start: %w", err)
	}
	s.log.Info("job service started")
	return nil
}

// Stop drains in-flight jobs and shuts the client down.
func (s *Service) Stop(ctx context.Context) error {
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("jobs: stop: %w", err)
	}
	s.log.Info("job service stopped")
	return nil
}

// CalendarConnected enqueues the connected notification. Implements the
// HTTP layer's Notifier.
func (s *Service) CalendarConnected(ctx context.Context, ownerID string) error {
	_, err := s.client.Insert(ctx, ConnectedEmailArgs{OwnerID: ownerID}, nil)
	return err
}
