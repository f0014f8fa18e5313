package state

import (
	"maps"
	"slices"
)

// LocalVersion is the format version written to project lock files.
const LocalVersion = "1.0.0"

// FileName is the name of both lock files.
const FileName = "skills.lock"

// Entry records where a tracked item came from.
// Commit is only ever written together with Branch.
type Entry struct {
	URL     string `json:"url"`
	Subpath string `json:"subpath,omitempty"`
	Branch  string `json:"branch"`
	Commit  string `json:"commit"`
}

// File is the decoded lock file. The global file carries LastUpdate and
// the local file carries Version; the other field is left empty and
// omitted on write.
type File struct {
	LastUpdate string           `json:"lastUpdate,omitempty"`
	Version    string           `json:"version,omitempty"`
	Skills     map[string]Entry `json:"skills"`
}

func newFile() *File {
	return &File{Skills: make(map[string]Entry)}
}

// Get returns the entry stored under key.
func (f *File) Get(key Key) (Entry, bool) {
	e, ok := f.Skills[key.String()]
	return e, ok
}

// Keys returns the raw stored keys in sorted order, including any that
// do not parse.
func (f *File) Keys() []string {
	return slices.Sorted(maps.Keys(f.Skills))
}

// Len returns the number of entries.
func (f *File) Len() int {
	return len(f.Skills)
}
