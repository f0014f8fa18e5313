// Package skill finds installable skills and commands in a source tree.
//
// A skill is any directory containing SKILL.md; its name and description
// come from the YAML frontmatter, with the directory name as fallback.
// A command is a markdown file inside a "commands" directory. The tree is
// searched to a limited depth and common vendored or build directories
// (node_modules, .git, dist, build, __pycache__) are skipped.
package skill
