// Package errors provides error handling conventions for the flins CLI.
//
// This package defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions. Wrapping helpers forward to
// github.com/cockroachdb/errors.
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid source, unknown agent, etc.)
//   - ExitSystem (2): System-related error (git, I/O, permissions, etc.)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion:
//
//	err := flinserrors.NewUserError(source.ErrInvalidSource, "Use owner/repo or a git URL")
//	var exitErr *flinserrors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
