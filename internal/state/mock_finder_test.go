package state

import (
	"context"
	"os"

	"github.com/thoreinstein/flins/internal/locator"
)

// mockFinder reports an installation for every key in installed.
type mockFinder struct {
	installed map[Key]bool
	calls     []Key
}

func (m *mockFinder) Find(_ context.Context, name string, kind Kind, scope locator.Scope) []locator.Installation {
	key := NewKey(kind, name)
	m.calls = append(m.calls, key)
	if !m.installed[key] {
		return nil
	}
	return []locator.Installation{{Agent: "mock", Kind: kind, Scope: scope, Path: "/mock/" + name}}
}

// countWrites wraps the store writer and counts calls.
func countWrites(s *Store) *int {
	n := 0
	orig := s.write
	s.write = func(path string, v any, perm os.FileMode) error {
		n++
		return orig(path, v, perm)
	}
	return &n
}
