// Package paths provides cross-platform path resolution for flins.
//
// The package wraps github.com/adrg/xdg for XDG Base Directory compliance.
// The global lock file lives under [StateDir] by default; configuration
// lives under [ConfigDir].
//
// Agent directory layouts use a "~/" home placeholder for global scope.
// [ExpandHome] resolves it against an explicit home directory so callers
// (and tests) can substitute an isolated root:
//
//	paths.ExpandHome("~/.claude/skills", "/home/me") // /home/me/.claude/skills
//
// [ResolveRoot] turns an optional project directory override into an
// absolute path, defaulting to the working directory.
package paths
