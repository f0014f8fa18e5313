package state

import (
	"strings"

	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/locator"
)

// Kind is the kind of tracked item.
type Kind = locator.Kind

const (
	KindSkill   = locator.KindSkill
	KindCommand = locator.KindCommand
)

// ErrMalformedKey is returned by ParseKey for text that is not
// "<kind>:<name>" with a known kind and a non-empty name.
var ErrMalformedKey = errors.New("malformed entry key")

// Key identifies a tracked item. The name keeps the casing it was added
// with.
type Key struct {
	Kind Kind
	Name string
}

// NewKey returns the key for name of the given kind.
func NewKey(kind Kind, name string) Key {
	return Key{Kind: kind, Name: name}
}

// SkillKey returns the key of a skill.
func SkillKey(name string) Key { return NewKey(KindSkill, name) }

// CommandKey returns the key of a command.
func CommandKey(name string) Key { return NewKey(KindCommand, name) }

// String returns the stored form, "<kind>:<name>".
func (k Key) String() string {
	return string(k.Kind) + ":" + k.Name
}

// Validate reports whether k survives a trip through its stored form.
// Names containing ":" do not.
func (k Key) Validate() error {
	_, err := ParseKey(k.String())
	return err
}

// ParseKey decodes the stored form of a key.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Key{}, errors.Wrapf(ErrMalformedKey, "%q", s)
	}
	kind, name := Kind(parts[0]), parts[1]
	if !kind.Valid() || name == "" {
		return Key{}, errors.Wrapf(ErrMalformedKey, "%q", s)
	}
	return Key{Kind: kind, Name: name}, nil
}
