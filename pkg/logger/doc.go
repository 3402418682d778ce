// Package logger builds the service's slog logger: JSON to stdout with
// request-scoped context attributes, optionally fanned out to Sentry.
package logger
