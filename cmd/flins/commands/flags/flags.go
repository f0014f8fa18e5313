// Package flags provides shared accessors for the persistent flags that
// select where commands operate: the scope (--global, --dir) and the
// target agents (--agent).
package flags

var (
	agentFlag  []string
	globalFlag bool
	dirFlag    string
)

// Agents returns the value of the --agent flag.
func Agents() []string {
	return agentFlag
}

// SetAgents sets the agent flag value.
// This is used by the root command after parsing and by tests.
func SetAgents(agents []string) {
	agentFlag = agents
}

// Global reports whether --global was given.
func Global() bool {
	return globalFlag
}

// SetGlobal sets the global flag value.
func SetGlobal(global bool) {
	globalFlag = global
}

// Dir returns the project root override from --dir. Empty means the
// working directory.
func Dir() string {
	return dirFlag
}

// SetDir sets the project root override.
func SetDir(dir string) {
	dirFlag = dir
}

// Reset clears every flag value.
func Reset() {
	agentFlag = nil
	globalFlag = false
	dirFlag = ""
}
