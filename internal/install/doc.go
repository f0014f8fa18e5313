// Package install places skills and commands into agent directories and
// removes them again.
//
// Skills are copied per agent by default. In symlink mode a single
// canonical copy is kept (<project>/.flins/skills for project installs,
// the flins state directory for global ones) and each agent directory
// links to it; when the link cannot be created the skill is copied.
// Commands are always copied as a single markdown file.
package install
