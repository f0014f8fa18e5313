// Package main is the entry point for the flins CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/thoreinstein/flins/cmd/flins/commands"
	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/logging"
)

func main() {
	// Replaced once flags are parsed.
	slog.SetDefault(logging.Default())

	err := commands.Execute()
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if hint := errors.SuggestionOf(err); hint != "" {
		fmt.Fprintf(os.Stderr, "  %s\n", hint)
	}
	os.Exit(errors.CodeOf(err))
}
