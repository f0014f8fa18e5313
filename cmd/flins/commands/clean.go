package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/state"
)

func init() {
	rootCmd.AddCommand(cleanCmd)
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop lock entries that are no longer installed anywhere",
	Long: `Remove every lock entry whose skill or command is not installed in any
agent directory of the selected scope, e.g. after deleting it by hand.

Entries that cannot be parsed are left in place and reported. A project
lock file that ends up empty is deleted.`,
	Example: `  flins clean
  flins clean --global`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func runClean(cmd *cobra.Command, _ []string) error {
	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	out := output(cmd)

	report, err := state.Clean(cmd.Context(), ws.store, ws.locator)
	if err != nil {
		return errors.NewSystemError(err, "Check that the lock file is writable")
	}

	for _, raw := range report.Removed {
		fmt.Fprintf(out, "  %s removed %s\n", okMark, raw)
	}
	for _, raw := range report.Skipped {
		fmt.Fprintf(out, "  %s skipped malformed entry %q\n", skipMark, raw)
	}
	if len(report.Removed) == 0 {
		fmt.Fprintf(out, "Nothing to clean (%s).\n", ws.scope)
	}
	return nil
}
