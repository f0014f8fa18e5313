// Package commands implements the CLI commands for flins.
package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/flins/cmd"
	"github.com/thoreinstein/flins/cmd/flins/commands/flags"
	"github.com/thoreinstein/flins/internal/agent"
	"github.com/thoreinstein/flins/internal/config"
	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/logging"
)

var (
	// agentFlag holds the value of the --agent flag.
	agentFlag []string

	// globalFlag selects the user-wide scope and the global lock file.
	globalFlag bool

	// dirFlag overrides the project root.
	dirFlag string

	// verbosity holds the count of -v flags.
	verbosity int

	// quiet holds the value of the -q/--quiet flag.
	quiet bool

	// logFormat holds the value of the --log-format flag.
	logFormat string

	// logFile holds the path to the log file.
	logFile string

	// configFile holds the value of the --config flag.
	configFile string
)

var (
	// cfg is the loaded configuration, nil until initConfig succeeds.
	cfg *config.Config

	// configLoadErr holds any error that occurred during config loading.
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringSliceVarP(&agentFlag, "agent", "a", nil,
		`target agent(s), e.g. claude-code,cursor (default: configured or detected)`)
	pf.BoolVarP(&globalFlag, "global", "g", false,
		"operate on user-wide agent directories and the global lock file")
	pf.StringVar(&dirFlag, "dir", "",
		"project root (default: current directory)")
	pf.CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	pf.BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	pf.StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	pf.StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	pf.StringVar(&configFile, "config", "",
		"config file (default: ./.flins.yaml or $XDG_CONFIG_HOME/flins/config.yaml)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("flins version {{.Version}}\n")

	// Silence errors and usage so main controls error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "flins",
	Short: "Install skills and commands for AI coding agents",
	Long: `flins installs skills (directories with a SKILL.md) and commands
(markdown files) from git repositories into the configuration
directories of AI coding agents such as Claude Code, Cursor, Codex,
and Gemini CLI.

Installed items are tracked in a lock file so they can be updated,
listed, and removed later. Project installs are recorded in
./skills.lock; with --global, installs go to the user-wide agent
directories and are recorded in $XDG_STATE_HOME/flins/skills.lock.`,
	Example: `  # Install skills from a GitHub repository
  flins add anthropics/skills

  # Install one skill for two agents, globally
  flins add anthropics/skills --skill pdf -a claude-code,cursor -g

  # Check for upstream changes and apply them
  flins status
  flins update

  # Drop lock entries whose installations were deleted by hand
  flins clean`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		flags.SetAgents(agentFlag)
		flags.SetGlobal(globalFlag)
		flags.SetDir(dirFlag)
		return validateAgentFlag(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the logger based on verbosity flags and stores
// it in the command context.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "Pick one of -q or -v")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("FLINS_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	cfg := logging.Config{
		Level:  level,
		Format: logging.Format(logFormat),
		Output: cmd.ErrOrStderr(),
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output is always JSON.
		cfg.File = f
	}

	logger := logging.New(cfg)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// validateAgentFlag checks the loaded config and that all agents named
// with --agent exist.
func validateAgentFlag(cmd *cobra.Command, _ []string) error {
	// Skip validation for help and version commands
	if cmd.Name() == "help" || cmd.Name() == "version" {
		return nil
	}

	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}

	if len(flags.Agents()) == 0 {
		return nil
	}

	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	var invalid []string
	for _, a := range flags.Agents() {
		if !reg.Valid(a) {
			invalid = append(invalid, a)
		}
	}

	if len(invalid) > 0 {
		err := errors.Wrapf(agent.ErrUnknownAgent, "%s (valid: %s)",
			strings.Join(invalid, ", "),
			strings.Join(reg.Names(), ", "))
		return errors.NewUserError(err, "Run 'flins agents' to see supported agents")
	}

	return nil
}

// loadedConfig returns the loaded configuration, or the defaults when no
// file was read.
func loadedConfig() *config.Config {
	if cfg != nil {
		return cfg
	}
	return &config.Config{Version: 1, InstallMode: "copy"}
}

// loadRegistry returns the built-in agent table with configured directory
// overrides applied.
func loadRegistry() (*agent.Registry, error) {
	base, err := agent.Default()
	if err != nil {
		return nil, errors.NewSystemError(err, "The built-in agent table is invalid; please report this")
	}
	reg, err := loadedConfig().Registry(base)
	if err != nil {
		return nil, errors.NewConfigError(err)
	}
	return reg, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
