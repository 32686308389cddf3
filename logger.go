package curves

import (
	"log/slog"
	"sync/atomic"
)

// logger holds the active logger. It is swapped atomically so SetLogger may
// race with evaluation running on worker goroutines.
var logger atomic.Pointer[slog.Logger]

// silent discards everything. Its handler reports every level as disabled,
// so log calls return before formatting their attributes.
var silent = slog.New(slog.DiscardHandler)

func init() {
	logger.Store(silent)
}

// SetLogger sets the logger used by curves and the packages built on it.
// Nothing is logged until SetLogger is called; nil restores that state.
//
// Records emitted:
//   - [slog.LevelDebug]: derived data recomputation (evaluated offsets,
//     positions, NURBS basis) and structural edit summaries
//   - [slog.LevelWarn]: NURBS curves that cannot be evaluated
//
// Example:
//
//	curves.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	logger.Store(l)
}

// Logger returns the logger set with SetLogger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return logger.Load()
}
