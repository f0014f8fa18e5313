package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/flins/internal/agent"
	"github.com/thoreinstein/flins/internal/cli/prompt"
	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/git"
	"github.com/thoreinstein/flins/internal/install"
	"github.com/thoreinstein/flins/internal/skill"
	"github.com/thoreinstein/flins/internal/source"
	"github.com/thoreinstein/flins/internal/state"
)

var (
	addSkills   []string
	addCommands []string
	addAll      bool
	addSymlink  bool
	addYes      bool
	addBranch   string
)

// newSelector builds the prompt used for selection and confirmation.
// Tests replace it.
var newSelector = func(*cobra.Command) *prompt.Selector {
	return prompt.NewSelector()
}

func init() {
	addCmd.Flags().StringSliceVarP(&addSkills, "skill", "s", nil,
		"skill name or glob to install (repeatable)")
	addCmd.Flags().StringSliceVar(&addCommands, "command", nil,
		"command name or glob to install (repeatable)")
	addCmd.Flags().BoolVar(&addAll, "all", false,
		"install every skill and command found")
	addCmd.Flags().BoolVar(&addSymlink, "symlink", false,
		"link agent directories to one canonical copy instead of copying")
	addCmd.Flags().BoolVarP(&addYes, "yes", "y", false,
		"skip the confirmation prompt")
	addCmd.Flags().StringVarP(&addBranch, "branch", "b", "",
		"branch to install from (default: the repository's default branch)")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <source>",
	Short: "Install skills and commands from a repository",
	Long: `Install skills and commands from a git repository or local directory.

The source may be:
  owner/repo                                   GitHub shorthand
  owner/repo/path/to/skills                    GitHub shorthand with subpath
  https://github.com/owner/repo/tree/main/sub  GitHub tree URL
  https://gitlab.com/group/repo                GitLab URL
  git@host:owner/repo.git                      any git URL
  ./path/to/dir                                local directory

Every directory containing SKILL.md is a skill; every markdown file in a
"commands" directory is a command. Without --skill, --command, or --all
you are asked which ones to install.

Each installed item is recorded in the lock file with its source URL,
branch and commit so that 'flins update' can refresh it.`,
	Example: `  # Pick interactively
  flins add anthropics/skills

  # Install matching skills for Claude Code without prompting
  flins add anthropics/skills --skill 'pdf*' --agent claude-code --yes

  # Install everything globally as symlinks
  flins add https://github.com/acme/agent-kit --all --global --symlink`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := output(cmd)

	src, err := source.Parse(args[0])
	if err != nil {
		return errors.NewUserError(err, "Use owner/repo, a GitHub or GitLab URL, a git URL, or a local path")
	}
	branch := src.Branch
	if addBranch != "" {
		branch = addBranch
	}

	repoDir, cleanup, err := ws.fetch(ctx, src, branch)
	if err != nil {
		return err
	}
	defer cleanup()

	branch, commit := ws.revision(ctx, src, repoDir, branch)

	skills, err := skill.Discover(repoDir, src.Subpath)
	if err != nil {
		return errors.NewUserError(err, "Check the subpath in the source")
	}
	cmds, err := skill.DiscoverCommands(repoDir, src.Subpath)
	if err != nil {
		return errors.NewUserError(err, "Check the subpath in the source")
	}
	if len(skills) == 0 && len(cmds) == 0 {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "no skills or commands in %s", args[0]),
			"A skill is a directory containing SKILL.md; commands live in a commands/ directory")
	}
	ws.logger.Debug("discovered", "skills", len(skills), "commands", len(cmds), "branch", branch, "commit", commit)

	sel := newSelector(cmd)
	skills, cmds, err = selectItems(ws, sel, skills, cmds)
	if err != nil {
		return err
	}

	agents, err := ws.targetAgents()
	if err != nil {
		return err
	}

	if !addYes {
		printPlan(out, ws, skills, cmds, agents)
		if !sel.Confirm("Proceed?") {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	mode := install.ModeSymlink
	if !addSymlink {
		if mode, err = install.ParseMode(ws.cfg.InstallMode); err != nil {
			return errors.NewConfigError(err)
		}
	}

	rec := recorder{ws: ws, out: out, entry: state.Entry{URL: src.URL, Branch: branch, Commit: commit}}

	for _, sk := range skills {
		installed := 0
		for _, a := range agents {
			p, err := ws.installer.InstallSkill(ctx, sk, a.Name, ws.scope, mode)
			if err != nil {
				rec.failures++
				fmt.Fprintf(out, "  %s %s → %s: %v\n", failMark, sk.Name, a.Name, err)
				continue
			}
			installed++
			fmt.Fprintf(out, "  %s %s → %s\n", okMark, sk.Name, displayPath(ws.home, p))
		}
		if installed > 0 {
			if err := rec.track(state.SkillKey(sk.Name), subpathOf(src.Subpath, sk.RelPath)); err != nil {
				return err
			}
		}
	}

	for _, c := range cmds {
		installed := 0
		for _, a := range agents {
			p, err := ws.installer.InstallCommand(ctx, c, a.Name, ws.scope)
			if errors.Is(err, install.ErrCommandsUnsupported) {
				fmt.Fprintf(out, "  %s /%s → %s: no commands directory\n", skipMark, c.Name, a.Name)
				continue
			}
			if err != nil {
				rec.failures++
				fmt.Fprintf(out, "  %s /%s → %s: %v\n", failMark, c.Name, a.Name, err)
				continue
			}
			installed++
			fmt.Fprintf(out, "  %s /%s → %s\n", okMark, c.Name, displayPath(ws.home, p))
		}
		if installed > 0 {
			if err := rec.track(state.CommandKey(c.Name), subpathOf(src.Subpath, path.Dir(c.RelPath))); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(out, "\nInstalled %d %s (%s)\n", rec.tracked, plural(rec.tracked, "item"), ws.scope)
	if rec.failures > 0 {
		return errors.NewSystemError(
			errors.Newf("%d %s failed", rec.failures, plural(rec.failures, "installation")),
			"Re-run with -v for details")
	}
	return nil
}

// fetch returns a directory holding the source's files and a cleanup
// func. Remote sources are cloned into a temporary directory.
func (ws *workspace) fetch(ctx context.Context, src source.Source, branch string) (string, func(), error) {
	if src.IsLocal() {
		return src.URL, func() {}, nil
	}
	dir, err := ws.git.Clone(ctx, src.URL, branch)
	if err != nil {
		if errors.Is(err, git.ErrGitNotFound) {
			return "", nil, errors.NewSystemError(err, "Install git and make sure it is on your PATH")
		}
		return "", nil, errors.NewSystemError(err, "Check the repository URL, branch, and your credentials")
	}
	return dir, func() {
		if err := os.RemoveAll(dir); err != nil {
			ws.logger.Debug("removing clone", "dir", dir, "error", err)
		}
	}, nil
}

// revision reports the branch and commit to record. Directories that are
// not git checkouts record neither.
func (ws *workspace) revision(ctx context.Context, src source.Source, dir, branch string) (string, string) {
	if src.IsLocal() && git.ValidateRemote(dir) != nil {
		return "", ""
	}
	if branch == "" {
		b, err := ws.git.CurrentBranch(ctx, dir)
		switch {
		case err == nil && b != "HEAD":
			branch = b
		case !src.IsLocal():
			branch = git.DefaultBranch
		default:
			return "", ""
		}
	}
	commit, err := ws.git.HeadCommit(ctx, dir)
	if err != nil {
		ws.logger.Debug("reading head commit", "dir", dir, "error", err)
		if src.IsLocal() {
			return "", ""
		}
	}
	return branch, commit
}

// selectItems narrows the discovered items by flag or by prompting.
func selectItems(ws *workspace, sel *prompt.Selector, skills []skill.Skill, cmds []skill.Command) ([]skill.Skill, []skill.Command, error) {
	if addAll {
		return skills, cmds, nil
	}

	if len(addSkills) > 0 || len(addCommands) > 0 {
		var keptSkills []skill.Skill
		var keptCmds []skill.Command
		if len(addSkills) > 0 {
			kept, unmatched, err := skill.Filter(skills, addSkills, skill.SkillName)
			if err != nil {
				return nil, nil, errors.NewUserError(err, "Use a plain name or a glob such as 'pdf-*'")
			}
			for _, p := range unmatched {
				ws.logger.Warn("no skill matches", "pattern", p)
			}
			keptSkills = kept
		}
		if len(addCommands) > 0 {
			kept, unmatched, err := skill.Filter(cmds, addCommands, skill.CommandName)
			if err != nil {
				return nil, nil, errors.NewUserError(err, "Use a plain name or a glob such as 'review-*'")
			}
			for _, p := range unmatched {
				ws.logger.Warn("no command matches", "pattern", p)
			}
			keptCmds = kept
		}
		if len(keptSkills) == 0 && len(keptCmds) == 0 {
			return nil, nil, errors.NewUserError(
				errors.Wrap(errors.ErrNotFound, "nothing matched the given names"),
				"Run without --skill/--command to choose interactively")
		}
		return keptSkills, keptCmds, nil
	}

	items := make([]prompt.Item, 0, len(skills)+len(cmds))
	for _, s := range skills {
		items = append(items, prompt.Item{Label: s.Name, Description: s.Description})
	}
	for _, c := range cmds {
		items = append(items, prompt.Item{Label: "/" + c.Name, Description: c.Description})
	}

	picked, err := sel.SelectMany("Select skills and commands to install", items)
	if err != nil {
		return nil, nil, errors.NewUserError(err, "Use --skill, --command, or --all to select without prompting")
	}

	var keptSkills []skill.Skill
	var keptCmds []skill.Command
	for _, i := range picked {
		if i < len(skills) {
			keptSkills = append(keptSkills, skills[i])
		} else {
			keptCmds = append(keptCmds, cmds[i-len(skills)])
		}
	}
	return keptSkills, keptCmds, nil
}

func printPlan(w io.Writer, ws *workspace, skills []skill.Skill, cmds []skill.Command, agents []agent.Config) {
	fmt.Fprintf(w, "%s\n", bold("Installing ("+ws.scope.String()+"):"))
	for _, s := range skills {
		fmt.Fprintf(w, "  %s", green(s.Name))
		if s.Description != "" {
			fmt.Fprintf(w, " - %s", truncate(s.Description, 60))
		}
		fmt.Fprintln(w)
	}
	for _, c := range cmds {
		fmt.Fprintf(w, "  %s", green("/"+c.Name))
		if c.Description != "" {
			fmt.Fprintf(w, " - %s", truncate(c.Description, 60))
		}
		fmt.Fprintln(w)
	}
	names := make([]string, len(agents))
	for i, a := range agents {
		names[i] = a.Name
	}
	fmt.Fprintf(w, "%s %v\n", bold("Agents:"), names)
}

// recorder writes lock entries for installed items and reports branch
// switches.
type recorder struct {
	ws       *workspace
	out      io.Writer
	entry    state.Entry
	tracked  int
	failures int
}

func (r *recorder) track(key state.Key, subpath string) error {
	e := r.entry
	e.Subpath = subpath
	res, err := r.ws.store.Upsert(key, e)
	if err != nil {
		return errors.NewSystemError(err, "Check that the lock file location is writable")
	}
	r.tracked++
	if res.Updated {
		fmt.Fprintf(r.out, "    %s switched from %s to %s\n", key.Name, warn(res.PreviousBranch), warn(e.Branch))
	}
	return nil
}

// subpathOf joins the source subpath with a path relative to it. The
// repository root is recorded as "".
func subpathOf(base, rel string) string {
	p := path.Join(base, rel)
	if p == "." {
		return ""
	}
	return p
}
