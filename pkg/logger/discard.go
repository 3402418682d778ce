package logger

import (
	"io"
	"log/slog"
)

// Discard returns a logger that drops everything. Default for tests and
// for components constructed without an explicit logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
