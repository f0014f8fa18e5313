package state

import (
	"path/filepath"

	"github.com/thoreinstein/flins/internal/locator"
	"github.com/thoreinstein/flins/internal/paths"
)

// NewLocal returns the project store at <cwd>/skills.lock. An empty cwd
// means the working directory. The file only exists while it has entries.
func NewLocal(cwd string, opts ...Option) *Store {
	return NewStore(Policy{
		Path: func() (string, error) {
			root, err := paths.ResolveRoot(cwd)
			if err != nil {
				return "", err
			}
			return filepath.Join(root, FileName), nil
		},
		DeleteEmpty: true,
		Stamp: func(f *File) {
			f.Version = LocalVersion
			f.LastUpdate = ""
		},
		Valid: func(f *File) bool {
			return f.Version != ""
		},
	}, locator.ProjectScope(cwd), opts...)
}

// AddLocalSkill records a skill in the project store at cwd.
func AddLocalSkill(cwd, name string, entry Entry) (UpsertResult, error) {
	return NewLocal(cwd).Upsert(SkillKey(name), entry)
}

// GetLocalSkill returns a skill from the project store at cwd.
func GetLocalSkill(cwd, name string) (Entry, bool, error) {
	return NewLocal(cwd).Get(SkillKey(name))
}

// RemoveLocalSkill removes a skill from the project store at cwd.
func RemoveLocalSkill(cwd, name string) error {
	return NewLocal(cwd).Remove(SkillKey(name))
}
