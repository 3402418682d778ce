package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Config holds logging and error-reporting settings.
type Config struct {
	// Minimum level for stdout output: debug, info, warn, error.
	Level slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	// Sentry is optional; with an empty DSN logs stay on stdout only.
	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
}

// ContextExtractor pulls a request-scoped attribute out of a context.
// Extraction runs per log call so fresh values (request ids, owner ids)
// land on every record.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// New builds the service logger: JSON to stdout, plus Sentry when a DSN
// is configured. Sentry init failure degrades to stdout-only rather than
// blocking startup.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	stdout := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level})

	if cfg.SentryDSN == "" {
		return slog.New(withExtractors(stdout, extractors))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(stdout).Error("sentry init failed, falling back to stdout", slog.String("error", err.Error()))
		return slog.New(withExtractors(stdout, extractors))
	}

	sentryHandler := sentryslog.Option{
		// Errors become Sentry issues; warnings are kept as searchable logs.
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	return slog.New(withExtractors(fanout{stdout, sentryHandler}, extractors))
}
