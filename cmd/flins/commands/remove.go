package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/locator"
	"github.com/thoreinstein/flins/internal/state"
)

var (
	removeCommand bool
	removeYes     bool
)

func init() {
	removeCmd.Flags().BoolVar(&removeCommand, "command", false, "remove commands instead of skills")
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:     "remove <name>...",
	Aliases: []string{"rm", "uninstall"},
	Short:   "Remove skills or commands from every agent",
	Long: `Remove skills (or, with --command, commands) from every agent directory
in the selected scope and drop them from the lock file.

Names match installed directories and lock entries ignoring case.
Items that were installed by hand, and so are not in the lock file,
are removed as well.`,
	Example: `  # Remove a project skill
  flins remove pdf

  # Remove a global command without prompting
  flins remove review --command --global --yes`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

// removal is one name resolved to its lock key and installations.
type removal struct {
	key     state.Key
	tracked bool
	insts   []locator.Installation
}

func runRemove(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := output(cmd)

	kind := state.KindSkill
	if removeCommand {
		kind = state.KindCommand
	}

	f, ok, err := ws.store.All()
	if err != nil {
		return errors.NewSystemError(err, "Check that the lock file is readable")
	}

	var plan []removal
	var missing []string
	for _, name := range args {
		r := removal{key: state.NewKey(kind, name)}
		if ok {
			r.key, r.tracked = lookupKey(f, kind, name)
			if !r.tracked {
				r.key = state.NewKey(kind, name)
			}
		}
		r.insts = ws.locator.Find(ctx, r.key.Name, kind, ws.scope)
		if !r.tracked && len(r.insts) == 0 {
			missing = append(missing, name)
			continue
		}
		plan = append(plan, r)
	}

	for _, name := range missing {
		fmt.Fprintf(out, "  %s %s %s\n", skipMark, name, warn("not found ("+ws.scope.String()+")"))
	}
	if len(plan) == 0 {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "nothing to remove"),
			"Run 'flins list' to see what is installed")
	}

	if !removeYes {
		fmt.Fprintln(out, bold("Removing:"))
		for _, r := range plan {
			fmt.Fprintf(out, "  %s\n", cyan(displayName(r.key)))
			for _, inst := range r.insts {
				fmt.Fprintf(out, "    %s\n", gray(displayPath(ws.home, inst.Path)))
			}
		}
		if !newSelector(cmd).Confirm("Proceed?") {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	var failed int
	for _, r := range plan {
		removed := 0
		for _, inst := range r.insts {
			if err := ws.installer.Uninstall(ctx, inst); err != nil {
				failed++
				fmt.Fprintf(out, "  %s %s (%s): %v\n", failMark, displayName(r.key), inst.Agent, err)
				continue
			}
			removed++
		}
		if removed < len(r.insts) {
			// Keep the lock entry so the remaining copies stay tracked.
			continue
		}
		if kind == state.KindSkill {
			if err := ws.installer.RemoveCanonical(ctx, r.key.Name, ws.scope); err != nil {
				ws.logger.Warn("removing canonical copy", "skill", r.key.Name, "error", err)
			}
		}
		if r.tracked {
			if err := ws.store.Remove(r.key); err != nil {
				return errors.NewSystemError(err, "Check that the lock file is writable")
			}
		}
		fmt.Fprintf(out, "  %s %s removed from %d %s\n", okMark, displayName(r.key), removed, plural(removed, "location"))
	}

	if failed > 0 {
		return errors.NewSystemError(
			errors.Newf("%d %s could not be removed", failed, plural(failed, "installation")),
			"Check file permissions and re-run")
	}
	return nil
}
