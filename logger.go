package gridding

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/gridding/internal/shepard"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip building attributes entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called while rasterization workers are logging.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for gridding and its internal packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Log levels used by gridding:
//   - [slog.LevelDebug]: per-run diagnostics (index size, Shepard cell grid)
//   - [slog.LevelInfo]: run lifecycle (rasterization done, cross validation summary)
//   - [slog.LevelWarn]: degraded results (Shepard nodes reduced to constants, failed folds)
//
// Example:
//
//	gridding.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	shepard.SetLogger(l)
}

// Logger returns the current logger used by gridding.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
