package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/briefly/pkg/db"
	"github.com/dmitrymomot/briefly/pkg/googleauth"
	"github.com/dmitrymomot/briefly/pkg/logger"
	"github.com/dmitrymomot/briefly/pkg/mailer"
	"github.com/dmitrymomot/briefly/pkg/mailer/resend"
	"github.com/dmitrymomot/briefly/pkg/redis"
)

var ErrParseFailed = errors.New("config: failed to parse environment")

// HTTP holds server settings. Timeouts are deliberately conservative:
// every handler is a short JSON exchange or a redirect.
type HTTP struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// Auth holds bearer-token verification settings.
type Auth struct {
	// HMAC secret shared with the identity service that mints the JWTs.
	JWTSecret string `env:"AUTH_JWT_SECRET,required"`
}

// RateLimit bounds per-owner calls to the connect and refresh endpoints.
type RateLimit struct {
	ConnectPerWindow int           `env:"RATELIMIT_CONNECT_PER_WINDOW" envDefault:"10"`
	RefreshPerWindow int           `env:"RATELIMIT_REFRESH_PER_WINDOW" envDefault:"30"`
	Window           time.Duration `env:"RATELIMIT_WINDOW" envDefault:"1m"`
}

// Jobs configures background processing.
type Jobs struct {
	// Cron schedule for the expired-state sweep.
	SweepSchedule string `env:"JOBS_SWEEP_SCHEDULE" envDefault:"*/10 * * * *"`
	MaxWorkers    int    `env:"JOBS_MAX_WORKERS" envDefault:"10"`
}

// Config aggregates all service settings, parsed from the environment.
type Config struct {
	// AppBaseURL is where the callback redirects the browser after the
	// OAuth round trip.
	AppBaseURL string `env:"APP_BASE_URL,required"`

	HTTP      HTTP
	Auth      Auth
	RateLimit RateLimit
	Jobs      Jobs

	Log    logger.Config
	DB     db.Config
	Redis  redis.Config
	Google googleauth.Config
	Mailer mailer.Config
	Resend resend.Config
}

// Load reads .env when present (dev convenience; ignored if missing),
// then parses the environment into Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParseFailed, err)
	}
	return cfg, nil
}
