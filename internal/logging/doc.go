// Package logging provides structured logging for flins using slog.
//
// The CLI builds one logger from the -v/-q/--log-format/--log-file flags
// and stores it in the command context with [NewContext]. Library packages
// (state, locator, git, install) retrieve it with [FromContext], which
// falls back to a discard logger, so they never write to stdout or stderr
// directly.
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(verbosity),
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	ctx = logging.NewContext(ctx, logger)
//
// The text [Handler] colors output on terminals and redacts credentials:
// attributes named like tokens or passwords are masked, and git URLs with
// embedded userinfo have the secret part replaced.
//
// For tests, use [ForTest] to route log output through testing.T.
package logging
