package skill

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
)

// ErrBadPattern is returned for a selection pattern that is not a valid
// glob.
var ErrBadPattern = errors.New("invalid selection pattern")

// Filter keeps the items whose name matches any pattern, ignoring case.
// Patterns are plain names or globs ("pdf-*", "{docx,xlsx}"). It also
// returns the patterns that matched nothing. No patterns keeps everything.
func Filter[T any](items []T, patterns []string, name func(T) string) ([]T, []string, error) {
	if len(patterns) == 0 {
		return items, nil, nil
	}

	lowered := make([]string, len(patterns))
	for i, p := range patterns {
		lowered[i] = strings.ToLower(p)
		if !doublestar.ValidatePattern(lowered[i]) {
			return nil, nil, errors.Wrapf(ErrBadPattern, "%q", p)
		}
	}

	used := make([]bool, len(patterns))
	var kept []T
	for _, item := range items {
		n := strings.ToLower(name(item))
		matched := false
		for i, p := range lowered {
			if ok, _ := doublestar.Match(p, n); ok {
				used[i] = true
				matched = true
			}
		}
		if matched {
			kept = append(kept, item)
		}
	}

	var unmatched []string
	for i, p := range patterns {
		if !used[i] {
			unmatched = append(unmatched, p)
		}
	}
	return kept, unmatched, nil
}

// SkillName returns s.Name, for use with Filter.
func SkillName(s Skill) string { return s.Name }

// CommandName returns c.Name, for use with Filter.
func CommandName(c Command) string { return c.Name }
