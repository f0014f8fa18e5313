package install

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/flins/internal/agent"
	"github.com/thoreinstein/flins/internal/locator"
	"github.com/thoreinstein/flins/internal/logging"
	"github.com/thoreinstein/flins/internal/paths"
	"github.com/thoreinstein/flins/internal/skill"
	"github.com/thoreinstein/flins/pkg/fileutil"
)

// Mode selects how a skill lands in an agent directory.
type Mode string

const (
	// ModeCopy places an independent copy in every agent directory.
	ModeCopy Mode = "copy"
	// ModeSymlink keeps one canonical copy and links each agent to it.
	ModeSymlink Mode = "symlink"
)

// ErrCommandsUnsupported is returned when an agent has no commands
// directory in the requested scope.
var ErrCommandsUnsupported = errors.New("agent does not support commands")

// ParseMode converts a configuration value to a Mode. Empty means copy.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case "", ModeCopy:
		return ModeCopy, nil
	case ModeSymlink:
		return ModeSymlink, nil
	default:
		return "", errors.Newf("invalid install mode %q (want copy or symlink)", s)
	}
}

// CanonicalDirName is where symlinked skills are stored inside a project.
const CanonicalDirName = ".flins/skills"

// Installer writes skills and commands into agent directories.
type Installer struct {
	registry *agent.Registry
	home     string
	// globalStore holds canonical copies for global symlink installs.
	globalStore string
}

// New returns an Installer. Global canonical copies live under
// globalStore/skills.
func New(reg *agent.Registry, home, globalStore string) *Installer {
	return &Installer{registry: reg, home: home, globalStore: globalStore}
}

// InstallSkill installs sk for agentName and returns the installed path.
// An existing installation of the same name is replaced.
func (i *Installer) InstallSkill(ctx context.Context, sk skill.Skill, agentName string, scope locator.Scope, mode Mode) (string, error) {
	cfg, root, err := i.resolve(agentName, scope)
	if err != nil {
		return "", err
	}
	target := filepath.Join(cfg.SkillsPath(scope.Global, i.home, root), sk.Name)
	if err := i.placeSkill(ctx, sk, target, scope, root, mode); err != nil {
		return "", err
	}
	return target, nil
}

// InstallCommand copies cmd into the agent's commands directory and
// returns the installed path.
func (i *Installer) InstallCommand(ctx context.Context, cmd skill.Command, agentName string, scope locator.Scope) (string, error) {
	cfg, root, err := i.resolve(agentName, scope)
	if err != nil {
		return "", err
	}
	dir := cfg.CommandsPath(scope.Global, i.home, root)
	if dir == "" {
		return "", errors.Wrapf(ErrCommandsUnsupported, "%s (%s)", agentName, scope)
	}
	target := filepath.Join(dir, cmd.Name+".md")
	if err := i.placeCommand(ctx, cmd, target); err != nil {
		return "", err
	}
	return target, nil
}

// Reinstall refreshes an existing installation in place with new content,
// keeping its on-disk name and its copy/symlink mode.
func (i *Installer) Reinstall(ctx context.Context, inst locator.Installation, sk *skill.Skill, cmd *skill.Command) error {
	switch inst.Kind {
	case locator.KindSkill:
		if sk == nil {
			return errors.New("reinstall of a skill needs skill content")
		}
		root, err := projectRoot(inst.Scope)
		if err != nil {
			return err
		}
		mode := ModeCopy
		if info, err := os.Lstat(inst.Path); err == nil && info.Mode()&os.ModeSymlink != 0 {
			mode = ModeSymlink
		}
		return i.placeSkill(ctx, *sk, inst.Path, inst.Scope, root, mode)
	case locator.KindCommand:
		if cmd == nil {
			return errors.New("reinstall of a command needs command content")
		}
		return i.placeCommand(ctx, *cmd, inst.Path)
	default:
		return errors.Newf("unknown kind %q", inst.Kind)
	}
}

// Uninstall removes a located installation.
func (i *Installer) Uninstall(ctx context.Context, inst locator.Installation) error {
	logging.FromContext(ctx).Debug("uninstalling", "agent", inst.Agent, "path", inst.Path)
	return removePath(inst.Path)
}

// RemoveCanonical deletes the canonical copy of a symlinked skill, if any.
func (i *Installer) RemoveCanonical(ctx context.Context, name string, scope locator.Scope) error {
	root, err := projectRoot(scope)
	if err != nil {
		return err
	}
	dir := i.canonicalDir(scope, root)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name(), name) {
			logging.FromContext(ctx).Debug("removing canonical copy", "path", filepath.Join(dir, e.Name()))
			return removePath(filepath.Join(dir, e.Name()))
		}
	}
	return nil
}

func (i *Installer) placeSkill(ctx context.Context, sk skill.Skill, target string, scope locator.Scope, root string, mode Mode) error {
	logger := logging.FromContext(ctx)

	if err := removePath(target); err != nil {
		return err
	}
	if err := paths.EnsureDir(filepath.Dir(target), paths.DefaultDirPerm); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(target))
	}

	if mode != ModeSymlink {
		return copyDir(ctx, sk.Dir, target)
	}

	canonical := filepath.Join(i.canonicalDir(scope, root), sk.Name)
	if filepath.Clean(canonical) != filepath.Clean(sk.Dir) {
		if err := removePath(canonical); err != nil {
			return err
		}
		if err := copyDir(ctx, sk.Dir, canonical); err != nil {
			return err
		}
	}

	link := canonical
	if !scope.Global {
		// Relative links keep a project checkout portable.
		if rel, err := filepath.Rel(filepath.Dir(target), canonical); err == nil {
			link = rel
		}
	}
	if err := os.Symlink(link, target); err != nil {
		logger.Warn("symlink failed, copying instead", "target", target, "error", err)
		return copyDir(ctx, canonical, target)
	}
	logger.Debug("linked skill", "target", target, "canonical", canonical)
	return nil
}

func (i *Installer) placeCommand(ctx context.Context, cmd skill.Command, target string) error {
	data, err := fileutil.ReadFileWithLimit(cmd.Path)
	if err != nil {
		return errors.Wrapf(err, "reading command %s", cmd.Path)
	}
	if err := paths.EnsureDir(filepath.Dir(target), paths.DefaultDirPerm); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(target))
	}
	// A symlinked command would be written through; replace it instead.
	if info, err := os.Lstat(target); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return errors.Wrapf(err, "removing %s", target)
		}
	}
	logging.FromContext(ctx).Debug("writing command", "target", target)
	return fileutil.AtomicWriteFile(target, data, 0o644)
}

func (i *Installer) resolve(agentName string, scope locator.Scope) (agent.Config, string, error) {
	cfg, ok := i.registry.Get(agentName)
	if !ok {
		return agent.Config{}, "", errors.Wrapf(agent.ErrUnknownAgent, "%q", agentName)
	}
	root, err := projectRoot(scope)
	if err != nil {
		return agent.Config{}, "", err
	}
	return cfg, root, nil
}

func (i *Installer) canonicalDir(scope locator.Scope, root string) string {
	if scope.Global {
		return filepath.Join(i.globalStore, "skills")
	}
	return filepath.Join(root, filepath.FromSlash(CanonicalDirName))
}

func projectRoot(scope locator.Scope) (string, error) {
	if scope.Global {
		return "", nil
	}
	return paths.ResolveRoot(scope.Root)
}
