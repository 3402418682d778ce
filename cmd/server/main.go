package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/briefly/internal/config"
	"github.com/dmitrymomot/briefly/internal/handlers"
	"github.com/dmitrymomot/briefly/internal/jobs"
	"github.com/dmitrymomot/briefly/internal/middleware"
	"github.com/dmitrymomot/briefly/migrations"
	"github.com/dmitrymomot/briefly/pkg/credentials"
	"github.com/dmitrymomot/briefly/pkg/db"
	"github.com/dmitrymomot/briefly/pkg/gcal"
	"github.com/dmitrymomot/briefly/pkg/googleauth"
	"github.com/dmitrymomot/briefly/pkg/logger"
	"github.com/dmitrymomot/briefly/pkg/mailer"
	"github.com/dmitrymomot/briefly/pkg/mailer/resend"
	"github.com/dmitrymomot/briefly/pkg/oauthstate"
	"github.com/dmitrymomot/briefly/pkg/ratelimit"
	"github.com/dmitrymomot/briefly/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log, middleware.RequestIDExtractor())
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, migrations.FS, cfg.DB.MigrationsTable, log); err != nil {
		return err
	}
	if err := jobs.Migrate(ctx, pool); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	states := oauthstate.NewPostgres(pool)
	creds := credentials.NewPostgres(pool)

	connector, err := googleauth.New(cfg.Google, states, creds, googleauth.WithLogger(log))
	if err != nil {
		return err
	}
	calendars := gcal.New(connector, gcal.WithLogger(log))

	mail := mailer.New(resend.New(cfg.Resend), mailer.NewRenderer(jobs.Templates()), cfg.Mailer)

	jobSvc, err := jobs.New(pool, jobs.Config{
		SweepSchedule: cfg.Jobs.SweepSchedule,
		MaxWorkers:    cfg.Jobs.MaxWorkers,
	}, states, mail, calendars, log)
	if err != nil {
		return err
	}

	oauth := handlers.NewOAuth(connector, calendars, creds, jobSvc, cfg.AppBaseURL, log)
	router := handlers.NewRouter(oauth, handlers.RouterConfig{
		JWTSecret:      cfg.Auth.JWTSecret,
		ConnectLimiter: ratelimit.NewRedis(redisClient, cfg.RateLimit.ConnectPerWindow, cfg.RateLimit.Window),
		RefreshLimiter: ratelimit.NewRedis(redisClient, cfg.RateLimit.RefreshPerWindow, cfg.RateLimit.Window),
		Log:            log,
		Probes: map[string]handlers.Probe{
			"postgres": db.Healthcheck(pool),
			"redis":    redis.Healthcheck(redisClient),
		},
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := jobSvc.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return jobSvc.Stop(stopCtx)
	})

	g.Go(func() error {
		log.Info("http server listening", slog.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
