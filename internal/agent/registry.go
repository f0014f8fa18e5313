package agent

import (
	_ "embed"
	"slices"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/thoreinstein/flins/internal/errors"
)

//go:embed agents.toml
var defaultTable []byte

type table struct {
	Agents []Config `toml:"agent"`
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Registry is an ordered, read-only set of agent configurations.
// It is safe for concurrent use.
type Registry struct {
	agents []Config
	index  map[string]int
}

// Override replaces individual directories of an agent. Empty fields keep
// the default.
type Override struct {
	SkillsDir         string `mapstructure:"skills_dir"`
	GlobalSkillsDir   string `mapstructure:"global_skills_dir"`
	CommandsDir       string `mapstructure:"commands_dir"`
	GlobalCommandsDir string `mapstructure:"global_commands_dir"`
}

// Default returns the registry decoded from the embedded agent table.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Parse(defaultTable)
	})
	return defaultReg, defaultErr
}

// Parse decodes a TOML agent table.
func Parse(data []byte) (*Registry, error) {
	var t table
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(err, "decoding agent table")
	}
	for i, a := range t.Agents {
		if a.Name == "" {
			return nil, errors.Newf("agent table entry %d has no name", i)
		}
		if a.SkillsDir == "" || a.GlobalSkillsDir == "" {
			return nil, errors.Newf("agent %q has no skills directory", a.Name)
		}
	}
	return New(t.Agents...)
}

// New builds a registry from configs in the given order. Duplicate names
// are rejected.
func New(agents ...Config) (*Registry, error) {
	r := &Registry{
		agents: make([]Config, 0, len(agents)),
		index:  make(map[string]int, len(agents)),
	}
	for _, a := range agents {
		if _, dup := r.index[a.Name]; dup {
			return nil, errors.Newf("duplicate agent %q", a.Name)
		}
		r.index[a.Name] = len(r.agents)
		r.agents = append(r.agents, a)
	}
	return r, nil
}

// Names returns agent names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.agents))
	for i, a := range r.agents {
		names[i] = a.Name
	}
	return names
}

// Get returns the configuration for name.
func (r *Registry) Get(name string) (Config, bool) {
	i, ok := r.index[name]
	if !ok {
		return Config{}, false
	}
	return r.agents[i], true
}

// All returns every configuration in registry order.
func (r *Registry) All() []Config {
	return slices.Clone(r.agents)
}

// Valid reports whether name is a known agent.
func (r *Registry) Valid(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Len returns the number of agents.
func (r *Registry) Len() int {
	return len(r.agents)
}

// WithOverrides returns a copy of r with directory overrides applied.
// Overrides for unknown agents fail with ErrUnknownAgent.
func (r *Registry) WithOverrides(overrides map[string]Override) (*Registry, error) {
	agents := r.All()
	for name, o := range overrides {
		i, ok := r.index[name]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownAgent, "override for %q", name)
		}
		a := &agents[i]
		if o.SkillsDir != "" {
			a.SkillsDir = o.SkillsDir
		}
		if o.GlobalSkillsDir != "" {
			a.GlobalSkillsDir = o.GlobalSkillsDir
		}
		if o.CommandsDir != "" {
			a.CommandsDir = o.CommandsDir
		}
		if o.GlobalCommandsDir != "" {
			a.GlobalCommandsDir = o.GlobalCommandsDir
		}
	}
	return New(agents...)
}

// Subset returns a registry limited to names, keeping registry order.
// An empty list returns r unchanged.
func (r *Registry) Subset(names []string) (*Registry, error) {
	if len(names) == 0 {
		return r, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if !r.Valid(n) {
			return nil, errors.Wrapf(ErrUnknownAgent, "%q (known: %v)", n, r.Names())
		}
		want[n] = true
	}
	var agents []Config
	for _, a := range r.agents {
		if want[a.Name] {
			agents = append(agents, a)
		}
	}
	return New(agents...)
}
