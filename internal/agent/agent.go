package agent

import (
	"path/filepath"
	"strings"

	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/paths"
)

// ErrUnknownAgent is returned when a name is not in the registry.
var ErrUnknownAgent = errors.New("unknown agent")

// Config describes where an agent keeps skills and commands.
type Config struct {
	Name              string `toml:"name"`
	DisplayName       string `toml:"display_name"`
	SkillsDir         string `toml:"skills_dir"`
	GlobalSkillsDir   string `toml:"global_skills_dir"`
	CommandsDir       string `toml:"commands_dir"`
	GlobalCommandsDir string `toml:"global_commands_dir"`
}

// SupportsCommands reports whether the agent has a commands directory in
// the given scope.
func (c Config) SupportsCommands(global bool) bool {
	if global {
		return c.GlobalCommandsDir != ""
	}
	return c.CommandsDir != ""
}

// SkillsPath resolves the skills directory. Global paths have "~" expanded
// against home; project paths are joined to root.
func (c Config) SkillsPath(global bool, home, root string) string {
	if global {
		return resolve(c.GlobalSkillsDir, home, root)
	}
	return resolve(c.SkillsDir, home, root)
}

// CommandsPath resolves the commands directory, or "" when the agent has
// none in that scope.
func (c Config) CommandsPath(global bool, home, root string) string {
	if global {
		return resolve(c.GlobalCommandsDir, home, root)
	}
	return resolve(c.CommandsDir, home, root)
}

func resolve(dir, home, root string) string {
	if dir == "" {
		return ""
	}
	if strings.HasPrefix(dir, "~") {
		return paths.ExpandHome(dir, home)
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}
