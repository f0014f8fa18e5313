package agent

import (
	"os"
	"path/filepath"
)

// Detect reports whether an agent appears to be installed for the user:
// the parent of its global skills directory exists. The skills directory
// itself is usually created on first install.
func Detect(cfg Config, home string) bool {
	dir := cfg.SkillsPath(true, home, "")
	if dir == "" {
		return false
	}
	return dirExists(filepath.Dir(dir))
}

// DetectInstalled returns the agents in r that Detect reports as
// installed, in registry order.
func (r *Registry) DetectInstalled(home string) []Config {
	var installed []Config
	for _, a := range r.agents {
		if Detect(a, home) {
			installed = append(installed, a)
		}
	}
	return installed
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
