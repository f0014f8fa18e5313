package locator

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/flins/internal/agent"
	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/logging"
	"github.com/thoreinstein/flins/internal/paths"
)

// Kind distinguishes skills (directories) from commands (markdown files).
type Kind string

const (
	KindSkill   Kind = "skill"
	KindCommand Kind = "command"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindSkill || k == KindCommand
}

// Scope selects between the user-wide agent directories and those of a
// single project.
type Scope struct {
	Global bool
	// Root is the project root. Empty means the working directory.
	Root string
}

// GlobalScope returns the user-wide scope.
func GlobalScope() Scope {
	return Scope{Global: true}
}

// ProjectScope returns the scope of the project rooted at root.
func ProjectScope(root string) Scope {
	return Scope{Root: root}
}

func (s Scope) String() string {
	if s.Global {
		return "global"
	}
	return "project"
}

// Installation is one on-disk copy of a skill or command in an agent's
// directory.
type Installation struct {
	Agent string
	Kind  Kind
	Scope Scope
	// Path is the agent directory joined with the entry name as found on
	// disk, which may differ in case from the name searched for.
	Path string
}

// Locator finds installations across every agent in a registry.
type Locator struct {
	registry *agent.Registry
	home     string
}

// New returns a Locator over reg. Global directories are expanded against
// home.
func New(reg *agent.Registry, home string) *Locator {
	return &Locator{registry: reg, home: home}
}

// Find returns the installations of name for each agent, in registry
// order. Agents without a directory for kind, missing directories, and
// unreadable directories all contribute nothing.
func (l *Locator) Find(ctx context.Context, name string, kind Kind, scope Scope) []Installation {
	logger := logging.FromContext(ctx)

	root := ""
	if !scope.Global {
		r, err := paths.ResolveRoot(scope.Root)
		if err != nil {
			logger.Debug("resolving project root", "root", scope.Root, "error", err)
			return nil
		}
		root = r
	}

	var found []Installation
	for _, a := range l.registry.All() {
		dir := l.dirFor(a, kind, scope.Global, root)
		if dir == "" {
			continue
		}

		res := scanDir(dir, name, kind)
		switch res.status {
		case scanFound:
			found = append(found, Installation{
				Agent: a.Name,
				Kind:  kind,
				Scope: scope,
				Path:  res.path,
			})
		case scanError:
			logger.Debug("scanning agent directory",
				"agent", a.Name, "dir", dir, "error", res.err)
		}
	}
	return found
}

func (l *Locator) dirFor(a agent.Config, kind Kind, global bool, root string) string {
	switch kind {
	case KindSkill:
		return a.SkillsPath(global, l.home, root)
	case KindCommand:
		return a.CommandsPath(global, l.home, root)
	default:
		return ""
	}
}

type scanStatus int

const (
	scanFound scanStatus = iota
	scanNotFound
	scanError
)

type scanResult struct {
	status scanStatus
	path   string
	err    error
}

// scanDir looks for the first entry in dir matching name
// case-insensitively. Skills must be directories or symlinks; commands are
// "<name>.md" files.
func scanDir(dir, name string, kind Kind) scanResult {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return scanResult{status: scanNotFound}
		}
		return scanResult{status: scanError, err: err}
	}

	for _, e := range entries {
		switch kind {
		case KindSkill:
			if !strings.EqualFold(e.Name(), name) {
				continue
			}
			p := filepath.Join(dir, e.Name())
			info, err := os.Lstat(p)
			if err != nil {
				continue
			}
			if info.IsDir() || info.Mode()&os.ModeSymlink != 0 {
				return scanResult{status: scanFound, path: p}
			}
		case KindCommand:
			if e.IsDir() {
				continue
			}
			if strings.EqualFold(strings.TrimSuffix(e.Name(), ".md"), name) {
				return scanResult{status: scanFound, path: filepath.Join(dir, e.Name())}
			}
		}
	}
	return scanResult{status: scanNotFound}
}
