package config

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/flins/internal/agent"
	"github.com/thoreinstein/flins/internal/install"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates a config version this build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidDefaultAgent indicates an unknown name in default_agents.
	ErrInvalidDefaultAgent = errors.New("invalid default agent")

	// ErrInvalidAgentOverride indicates an override for an unknown agent.
	ErrInvalidAgentOverride = errors.New("invalid agent override key")

	// ErrInvalidInstallMode indicates install_mode is neither copy nor symlink.
	ErrInvalidInstallMode = errors.New("invalid install mode")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config against the agent registry.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config, reg *agent.Registry) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, errors.Mark(errors.Newf("unsupported config version: %d", cfg.Version), ErrUnsupportedVersion))
	}

	for _, name := range cfg.DefaultAgents {
		if !reg.Valid(name) {
			errs = append(errs, &AgentError{Agent: name, Err: ErrInvalidDefaultAgent})
		}
	}

	if _, err := install.ParseMode(cfg.InstallMode); err != nil {
		errs = append(errs, &AgentError{Agent: cfg.InstallMode, Err: ErrInvalidInstallMode})
	}

	if err := validatePath(cfg.StateDir); err != nil {
		errs = append(errs, &PathError{Field: "state_dir", Path: cfg.StateDir, Err: err})
	}

	names := make([]string, 0, len(cfg.Agents))
	for name := range cfg.Agents {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !reg.Valid(name) {
			errs = append(errs, &AgentError{Agent: name, Err: ErrInvalidAgentOverride})
			continue
		}
		o := cfg.Agents[name]
		for field, p := range map[string]string{
			"skills_dir":          o.SkillsDir,
			"global_skills_dir":   o.GlobalSkillsDir,
			"commands_dir":        o.CommandsDir,
			"global_commands_dir": o.GlobalCommandsDir,
		} {
			if err := validatePath(p); err != nil {
				errs = append(errs, &PathError{Field: "agents." + name + "." + field, Path: p, Err: err})
			}
		}
	}

	return errs
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Empty paths are valid (they mean "use default")
	if path == "" {
		return nil
	}

	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	// Clean the path and check it's not empty after cleaning
	cleaned := filepath.Clean(path)
	if cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}

	return nil
}

// AgentError represents an error for a specific agent name or value.
type AgentError struct {
	Agent string
	Err   error
}

func (e *AgentError) Error() string {
	return e.Err.Error() + ": " + e.Agent
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
