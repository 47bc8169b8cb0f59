package logging

import (
	"io"
	"log/slog"
	"os"
)

var (
	// Logger receives diagnostics from the analyzer, the clone step and the
	// LLM backends. It never writes to stdout, which carries reports.
	Logger *slog.Logger

	// Verbose is set when debug records are enabled.
	Verbose bool
)

func init() {
	Logger = newLogger(os.Stderr, slog.LevelInfo, false)
}

// Setup points the logger at w (stderr when nil). Verbose mode enables the
// per-file debug records of the walk; jsonOutput switches to one JSON object
// per line for log collectors.
func Setup(verbose bool, jsonOutput bool, w io.Writer) {
	Verbose = verbose

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if w == nil {
		w = os.Stderr
	}
	Logger = newLogger(w, level, jsonOutput)
}

func newLogger(w io.Writer, level slog.Level, jsonOutput bool) *slog.Logger {
	if jsonOutput {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	// Text records are read by people at a terminal; timestamps are noise.
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error records a failure with err under the "error" key.
func Error(msg string, err error, args ...any) {
	Logger.Error(msg, append([]any{"error", err}, args...)...)
}

// With returns a logger carrying args, e.g. the analyzed root.
func With(args ...any) *slog.Logger {
	return Logger.With(args...)
}
