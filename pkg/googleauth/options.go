package googleauth

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/briefly/pkg/resilience"
)

// Option configures a Connector.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	retryOpts  []resilience.Option
}

// WithHTTPClient sets a custom HTTP client for all provider calls.
// Useful for testing with rewrite transports.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// WithRetryOptions overrides the resilience policy applied to outbound
// token-endpoint and revoke calls.
func WithRetryOptions(opts ...resilience.Option) Option {
	return func(o *options) {
		o.retryOpts = opts
	}
}
