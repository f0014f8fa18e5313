package logging

import "log/slog"

// LevelTrace is below Debug and enables git command tracing.
const LevelTrace = slog.Level(-8)

// LevelFromVerbosity maps a -v count to a log level.
// Zero (or negative) means warnings only.
func LevelFromVerbosity(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	case verbosity == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}
