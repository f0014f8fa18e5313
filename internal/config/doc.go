// Package config provides configuration management for the flins CLI.
//
// # Configuration File
//
// The default configuration file location is ~/.config/flins/config.yaml
// (or $FLINS_CONFIG_DIR/config.yaml). A .flins.yaml in the working
// directory takes precedence. The file uses YAML:
//
//	version: 1
//	state_dir: ~/.local/state/flins   # optional, global lock file location
//	install_mode: symlink             # copy (default) or symlink
//	default_agents:                   # used when --agent is not given
//	  - claude-code
//	  - cursor
//	agents:                           # per-agent directory overrides
//	  gemini:
//	    commands_dir: .gemini/md-commands
//
// Every key can also be set through the environment with the FLINS_
// prefix, e.g. FLINS_STATE_DIR or FLINS_INSTALL_MODE.
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//
// [Load] validates the result; [Validate] can be called directly and
// returns every problem found rather than the first.
package config
