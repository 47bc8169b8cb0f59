// Package logging provides logging utilities for repolens.
//
// This package provides two categories of output:
//   - Debug logging: Structured logs for debugging (via slog)
//   - User output: Formatted messages for end users
//
// # Debug Logging
//
// Debug logs are written using slog and controlled by verbosity settings:
//
//	logging.Debug("walk finished", "root", root, "entries", n)
//	logging.Warn("manifest parsed partially", "path", rel, "error", err)
//
// Records go to stderr so reports on stdout stay machine readable. Text
// records omit timestamps; --json emits one object per line with them.
// A failed command is logged once with its exit code:
//
//	logging.Error("command failed", err, "exit_code", 3)
//
// # User Output
//
// User-facing messages are formatted with status indicators:
//
//	logging.UserInfo("Cloning %s...", url)
//	logging.UserSuccess("README written to %s", path)
//	logging.UserWarning("%d paths skipped", n)
//	logging.UserError("Generation failed: %v", err)
//
// Output destinations:
//   - UserInfo, UserSuccess: stdout
//   - UserWarning, UserError: stderr
//
// # Status Indicators
//
// User functions prepend status indicators:
//   - ℹ (info)
//   - ✓ (success)
//   - ⚠ (warning)
//   - ✗ (error)
package logging
