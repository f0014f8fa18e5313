// Package agent holds the table of supported AI coding agents and the
// directories each one reads skills and commands from.
//
// The default table is embedded as agents.toml. Directories in the table
// are either project-relative (".claude/skills") or home-relative
// ("~/.claude/skills"); [Config.SkillsPath] and [Config.CommandsPath]
// resolve them for a scope. Commands are optional: an agent without a
// commands directory cannot receive commands in that scope.
package agent
