package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

// Format is the encoding of the primary log stream.
type Format string

const (
	// FormatText is the colored, human-oriented Handler.
	FormatText Format = "text"
	// FormatJSON is one JSON object per record.
	FormatJSON Format = "json"
)

// Config describes the logger built by New.
type Config struct {
	// Level is the minimum level written to every destination.
	Level slog.Level
	// Format selects the encoding of Output. Unknown values mean text.
	Format Format
	// Output receives the primary stream. Nil means os.Stderr.
	Output io.Writer
	// File, when set, receives a JSON copy of every record. The CLI points
	// it at --log-file so a run can be inspected after the terminal output
	// is gone.
	File io.Writer
}

// New builds a logger from cfg. Credentials are redacted in every format.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.Level, ReplaceAttr: redactAttr}

	var primary slog.Handler
	if cfg.Format == FormatJSON {
		primary = slog.NewJSONHandler(out, opts)
	} else {
		primary = NewHandler(out, opts)
	}
	if cfg.File == nil {
		return slog.New(primary)
	}
	return slog.New(NewMultiHandler(primary, slog.NewJSONHandler(cfg.File, opts)))
}

// Default is the logger installed before flags are parsed.
func Default() *slog.Logger {
	return New(Config{Level: slog.LevelWarn})
}

// NewDiscard returns a logger that drops everything.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// testWriter forwards each record to t.Log.
type testWriter struct {
	t *testing.T
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// ForTest returns a debug-level logger writing through t.Log, so store and
// locator diagnostics show up next to a failing test.
func ForTest(t *testing.T) *slog.Logger {
	t.Helper()
	return New(Config{Level: slog.LevelDebug, Output: &testWriter{t: t}})
}
