package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/locator"
	"github.com/thoreinstein/flins/internal/skill"
	"github.com/thoreinstein/flins/internal/state"
)

func init() {
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update [name...]",
	Short: "Update installed skills and commands from their sources",
	Long: `Compare each tracked item's recorded commit with the latest commit of
its branch and, when they differ, reinstall it into every agent
directory where it is currently installed.

Names select which tracked items to update; without names everything
in the lock file is checked. Items tracked but no longer installed
anywhere are reported; run 'flins clean' to drop them.`,
	Example: `  # Update everything in this project
  flins update

  # Update two global skills
  flins update pdf docx --global`,
	RunE: runUpdate,
}

// updateOutcome is the result of updating one lock entry.
type updateOutcome int

const (
	outcomeUpToDate updateOutcome = iota
	outcomeUpdated
	outcomeNotInstalled
	outcomeFailed
)

func runUpdate(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := output(cmd)

	f, ok, err := ws.store.All()
	if err != nil {
		return errors.NewSystemError(err, "Check that the lock file is readable")
	}
	if !ok || f.Len() == 0 {
		fmt.Fprintf(out, "Nothing tracked (%s).\n", ws.scope)
		return nil
	}

	keys, err := selectKeys(trackedKeys(ws.logger, f), args)
	if err != nil {
		return err
	}

	u := updater{ws: ws, clones: make(map[string]string)}
	defer u.cleanup()

	var failed int
	for _, k := range keys {
		e, _ := f.Get(k)
		outcome, detail := u.update(ctx, k, e)
		label := displayName(k)
		switch outcome {
		case outcomeUpToDate:
			fmt.Fprintf(out, "  %s %s %s\n", okMark, label, gray("up to date"))
		case outcomeUpdated:
			fmt.Fprintf(out, "  %s %s %s\n", okMark, label, green(detail))
		case outcomeNotInstalled:
			fmt.Fprintf(out, "  %s %s %s\n", skipMark, label, warn("not installed (run 'flins clean')"))
		case outcomeFailed:
			failed++
			fmt.Fprintf(out, "  %s %s %s\n", failMark, label, red(detail))
		}
	}

	if failed > 0 {
		return errors.NewSystemError(
			errors.Newf("%d %s could not be updated", failed, plural(failed, "item")),
			"Re-run with -v for details")
	}
	return nil
}

// selectKeys keeps the keys whose name matches one of names, ignoring
// case. "command:name" selects by kind as well. No names keeps every key.
func selectKeys(keys []state.Key, names []string) ([]state.Key, error) {
	if len(names) == 0 {
		return keys, nil
	}
	var selected []state.Key
	for _, n := range names {
		var want state.Key
		byKind := false
		if k, err := state.ParseKey(n); err == nil {
			want, byKind = k, true
		}
		found := false
		for _, k := range keys {
			if byKind {
				if k.Kind == want.Kind && strings.EqualFold(k.Name, want.Name) {
					selected = append(selected, k)
					found = true
				}
			} else if strings.EqualFold(k.Name, n) {
				selected = append(selected, k)
				found = true
			}
		}
		if !found {
			return nil, errors.NewUserError(
				errors.Wrapf(errors.ErrNotFound, "%q is not tracked", n),
				"Run 'flins list' to see tracked skills and commands")
		}
	}
	return selected, nil
}

// displayName renders a key as the user refers to it.
func displayName(k state.Key) string {
	if k.Kind == state.KindCommand {
		return "/" + k.Name
	}
	return k.Name
}

// isLocalURL reports whether a recorded URL is a directory on disk.
func isLocalURL(url string) bool {
	return filepath.IsAbs(url)
}

// latestCommit returns the newest commit for an entry's branch. Local
// directories report their checked-out commit.
func (ws *workspace) latestCommit(ctx context.Context, e state.Entry) (string, error) {
	if isLocalURL(e.URL) {
		if e.Branch == "" {
			return "", nil
		}
		return ws.git.HeadCommit(ctx, e.URL)
	}
	commit, err := ws.git.LatestCommit(ctx, e.URL, e.Branch)
	if err != nil {
		return "", err
	}
	if commit == "" {
		return "", errors.Newf("branch %q not found on %s", e.Branch, e.URL)
	}
	return commit, nil
}

// updater reinstalls outdated entries, cloning each source once.
type updater struct {
	ws *workspace
	// clones maps url@branch to a checkout.
	clones map[string]string
}

func (u *updater) update(ctx context.Context, k state.Key, e state.Entry) (updateOutcome, string) {
	ws := u.ws

	latest, err := ws.latestCommit(ctx, e)
	if err != nil {
		ws.logger.Debug("checking latest commit", "key", k.String(), "error", err)
		return outcomeFailed, err.Error()
	}
	if latest != "" && latest == e.Commit {
		return outcomeUpToDate, ""
	}

	insts := ws.locator.Find(ctx, k.Name, k.Kind, ws.scope)
	if len(insts) == 0 {
		return outcomeNotInstalled, ""
	}

	dir, err := u.checkout(ctx, e)
	if err != nil {
		return outcomeFailed, err.Error()
	}

	var sk *skill.Skill
	var c *skill.Command
	switch k.Kind {
	case locator.KindSkill:
		sk, err = findSkill(dir, e.Subpath, k.Name)
	case locator.KindCommand:
		c, err = findCommand(dir, e.Subpath, k.Name)
	}
	if err != nil {
		return outcomeFailed, err.Error()
	}

	for _, inst := range insts {
		if err := ws.installer.Reinstall(ctx, inst, sk, c); err != nil {
			return outcomeFailed, fmt.Sprintf("%s: %v", inst.Agent, err)
		}
	}

	if e.Branch != "" {
		if head, err := ws.git.HeadCommit(ctx, dir); err == nil {
			latest = head
		}
		if err := ws.store.UpdateCommit(k, latest); err != nil {
			return outcomeFailed, err.Error()
		}
	}

	detail := fmt.Sprintf("updated %d %s", len(insts), plural(len(insts), "installation"))
	if e.Commit != "" && latest != "" {
		detail = fmt.Sprintf("%s (%s → %s)", detail, short(e.Commit), short(latest))
	}
	return outcomeUpdated, detail
}

func (u *updater) checkout(ctx context.Context, e state.Entry) (string, error) {
	if isLocalURL(e.URL) {
		return e.URL, nil
	}
	id := e.URL + "@" + e.Branch
	if dir, ok := u.clones[id]; ok {
		return dir, nil
	}
	dir, err := u.ws.git.Clone(ctx, e.URL, e.Branch)
	if err != nil {
		return "", err
	}
	u.clones[id] = dir
	return dir, nil
}

func (u *updater) cleanup() {
	for _, dir := range u.clones {
		if err := os.RemoveAll(dir); err != nil {
			u.ws.logger.Debug("removing clone", "dir", dir, "error", err)
		}
	}
}

func findSkill(dir, subpath, name string) (*skill.Skill, error) {
	skills, err := skill.Discover(dir, subpath)
	if err != nil {
		return nil, err
	}
	for _, s := range skills {
		if strings.EqualFold(s.Name, name) {
			return &s, nil
		}
	}
	return nil, errors.Newf("skill %q no longer exists in the source", name)
}

func findCommand(dir, subpath, name string) (*skill.Command, error) {
	cmds, err := skill.DiscoverCommands(dir, subpath)
	if err != nil {
		return nil, err
	}
	for _, c := range cmds {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, errors.Newf("command %q no longer exists in the source", name)
}

// short abbreviates a commit hash.
func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
