// Package errors provides typed errors with exit codes for repolens.
//
// Error carries an exit code, a user-facing message and an optional cause:
//
//	type Error struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
//	ExitSuccess          = 0  // Success
//	ExitGeneralError     = 1  // General/unknown errors
//	ExitRootNotFound     = 2  // Analysis root missing or not a directory
//	ExitRootUnreadable   = 3  // Analysis root cannot be listed
//	ExitConfigError      = 4  // Configuration or catalog error
//	ExitCloneFailed      = 5  // git clone failed
//	ExitGenerationFailed = 6  // Language model call failed
//	ExitOutputFailed     = 7  // Output file could not be written
//
// Only the root conditions are fatal to an analysis. Everything below the
// root degrades into the report instead of returning an error.
//
// Use GetExitCode to extract the exit code from an error chain:
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
