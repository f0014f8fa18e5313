package state

import (
	"path/filepath"
	"time"

	"github.com/thoreinstein/flins/internal/locator"
	"github.com/thoreinstein/flins/internal/paths"
)

// timestampLayout matches JavaScript's Date.toISOString, which earlier
// tools wrote into the same file.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// NewGlobal returns the per-user store at <dir>/skills.lock. An empty dir
// means the flins state directory. The file is created on first use and
// kept, possibly empty, once it exists.
func NewGlobal(dir string, opts ...Option) *Store {
	if dir == "" {
		dir = paths.StateDir()
	}
	s := NewStore(Policy{
		Path: func() (string, error) {
			return filepath.Join(dir, FileName), nil
		},
		Synthesize: true,
		Valid: func(f *File) bool {
			return f.LastUpdate != ""
		},
	}, locator.GlobalScope(), opts...)

	s.policy.Stamp = func(f *File) {
		f.LastUpdate = s.now().UTC().Format(timestampLayout)
		f.Version = ""
	}
	return s
}

// ParseTimestamp decodes the LastUpdate field of a global file.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
