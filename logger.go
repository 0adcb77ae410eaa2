package cdivs

import (
	"log/slog"

	"github.com/gogpu/cdivs/internal/logx"
)

// SetLogger configures the logger for cdivs and all its sub-packages.
// By default, cdivs produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by cdivs:
//   - [slog.LevelDebug]: lifecycle and layout decisions (divider created,
//     surface resized, shapes rebuilt)
//   - [slog.LevelWarn]: configuration diagnostics (unknown shape, bad
//     colour, unknown option) and the fallback that was taken
//
// Example:
//
//	// Enable warnings on stderr:
//	cdivs.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	cdivs.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) { logx.Set(l) }

// Logger returns the current logger used by cdivs.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger { return logx.L() }
