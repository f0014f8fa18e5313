package commands

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/flins/cmd/flins/commands/flags"
	"github.com/thoreinstein/flins/internal/agent"
	"github.com/thoreinstein/flins/internal/config"
	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/git"
	"github.com/thoreinstein/flins/internal/install"
	"github.com/thoreinstein/flins/internal/locator"
	"github.com/thoreinstein/flins/internal/logging"
	"github.com/thoreinstein/flins/internal/paths"
	"github.com/thoreinstein/flins/internal/state"
)

// newGitClient builds the git client. Tests replace it.
var newGitClient = func() git.Client {
	return git.NewRunner()
}

// workspace bundles what a command needs to act on one scope.
type workspace struct {
	logger    *slog.Logger
	cfg       *config.Config
	registry  *agent.Registry
	home      string
	scope     locator.Scope
	store     *state.Store
	locator   *locator.Locator
	installer *install.Installer
	git       git.Client
}

// newWorkspace resolves the scope selected by --global and --dir.
func newWorkspace(cmd *cobra.Command) (*workspace, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.FromContext(ctx)

	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	home, err := paths.ResolveHome()
	if err != nil {
		return nil, errors.NewSystemError(err, "Set $HOME")
	}

	c := loadedConfig()
	stateDir := c.ResolvedStateDir()

	ws := &workspace{
		logger:    logger,
		cfg:       c,
		registry:  reg,
		home:      home,
		locator:   locator.New(reg, home),
		installer: install.New(reg, home, stateDir),
		git:       newGitClient(),
	}

	if flags.Global() {
		ws.scope = locator.GlobalScope()
		ws.store = state.NewGlobal(stateDir, state.WithLogger(logger))
	} else {
		root, err := paths.ResolveRoot(flags.Dir())
		if err != nil {
			return nil, errors.NewUserError(err, "Check the --dir value")
		}
		ws.scope = locator.ProjectScope(root)
		ws.store = state.NewLocal(root, state.WithLogger(logger))
	}

	return ws, nil
}

// targetAgents resolves the agents to install into: --agent, then the
// configured default_agents, then every detected agent.
func (ws *workspace) targetAgents() ([]agent.Config, error) {
	names := flags.Agents()
	if len(names) == 0 {
		names = ws.cfg.DefaultAgents
	}
	if len(names) > 0 {
		sub, err := ws.registry.Subset(names)
		if err != nil {
			return nil, errors.NewUserError(err, "Run 'flins agents' to see supported agents")
		}
		return sub.All(), nil
	}

	detected := ws.registry.DetectInstalled(ws.home)
	if len(detected) == 0 {
		return nil, errors.NewUserError(errors.ErrNoAgents,
			"No agents detected; pass --agent (e.g. --agent claude-code)")
	}
	return detected, nil
}

// lookupKey finds the stored key for name and kind, ignoring case.
func lookupKey(f *state.File, kind state.Kind, name string) (state.Key, bool) {
	want := state.NewKey(kind, name)
	if _, ok := f.Get(want); ok {
		return want, true
	}
	for _, raw := range f.Keys() {
		k, err := state.ParseKey(raw)
		if err != nil {
			continue
		}
		if k.Kind == kind && strings.EqualFold(k.Name, name) {
			return k, true
		}
	}
	return state.Key{}, false
}

// trackedKeys returns the parseable keys of f in sorted order, logging
// the ones that do not parse.
func trackedKeys(logger *slog.Logger, f *state.File) []state.Key {
	keys := make([]state.Key, 0, f.Len())
	for _, raw := range f.Keys() {
		k, err := state.ParseKey(raw)
		if err != nil {
			logger.Warn("ignoring malformed lock entry", "key", raw)
			continue
		}
		keys = append(keys, k)
	}
	return keys
}
