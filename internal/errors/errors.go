package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Process exit codes.
const (
	ExitSuccess = 0
	// ExitUser covers bad input: unknown agents, bad sources, names that are
	// not tracked, declined prompts with nothing done.
	ExitUser = 1
	// ExitSystem covers everything else: I/O, git and network failures.
	ExitSystem = 2
)

var (
	// ErrNotFound means a named skill or command is neither tracked nor
	// installed in the selected scope.
	ErrNotFound = crdb.New("not found")

	// ErrInvalidConfig marks errors returned through NewConfigError.
	ErrInvalidConfig = crdb.New("invalid configuration")

	// ErrNoAgents means --agent, default_agents and detection all came up
	// empty.
	ErrNoAgents = crdb.New("no agents available")
)

// ExitError carries the exit code for an error and an optional hint that
// main prints below the message.
type ExitError struct {
	Err        error
	Code       int
	Suggestion string
}

// NewUserError returns an ExitUser error.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggestion}
}

// NewSystemError returns an ExitSystem error.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggestion}
}

// NewConfigError returns an ExitUser error marked with ErrInvalidConfig.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        crdb.Mark(err, ErrInvalidConfig),
		Code:       ExitUser,
		Suggestion: "Check your flins config file (flins --help shows the search paths)",
	}
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// CodeOf returns the exit code carried by err, or ExitSystem for any
// other non-nil error.
func CodeOf(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if crdb.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitSystem
}

// SuggestionOf returns the hint of the outermost ExitError in err's chain.
func SuggestionOf(err error) string {
	var exitErr *ExitError
	if crdb.As(err, &exitErr) {
		return exitErr.Suggestion
	}
	return ""
}
