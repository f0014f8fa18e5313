package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/flins/pkg/fileutil"
	"github.com/thoreinstein/flins/pkg/frontmatter"
)

// MarkerFile marks a directory as a skill.
const MarkerFile = "SKILL.md"

// Skill is a directory containing SKILL.md.
type Skill struct {
	Name        string
	Description string
	// Dir is the absolute skill directory.
	Dir string
	// RelPath is Dir relative to the discovery root, slash-separated.
	RelPath string
}

// Command is a single markdown file installed into an agent's commands
// directory.
type Command struct {
	Name        string
	Description string
	// Path is the absolute path of the markdown file.
	Path    string
	RelPath string
}

// Meta is the frontmatter read from SKILL.md and command files.
type Meta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ParseError represents an error that occurred while reading a skill or
// command file.
type ParseError struct {
	Path string // Path to the file that failed to parse
	Err  error  // Underlying error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parsing skill: %v", e.Err)
	}
	return fmt.Sprintf("parsing skill %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseFile reads the frontmatter of a SKILL.md or command file.
func ParseFile(path string) (*Meta, error) {
	meta, _, err := frontmatter.ParseFile[Meta](path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	meta.Name = strings.TrimSpace(meta.Name)
	meta.Description = strings.TrimSpace(meta.Description)
	return meta, nil
}

// readMeta returns the metadata of path, falling back to fallbackName when
// the file has no usable frontmatter. Only I/O failures are errors.
func readMeta(path, fallbackName string) (Meta, error) {
	meta, err := ParseFile(path)
	switch {
	case err == nil:
		if !IsSafeName(meta.Name) {
			meta.Name = fallbackName
		}
		return *meta, nil
	case errors.Is(err, frontmatter.ErrNoFrontmatter),
		errors.Is(err, frontmatter.ErrInvalidYAML),
		errors.Is(err, fileutil.ErrFileTooLarge):
		return Meta{Name: fallbackName}, nil
	default:
		return Meta{}, err
	}
}

// IsSafeName reports whether name can be used as a single file or
// directory name inside an agent directory and as the name part of a lock
// file key, which reserves ":".
func IsSafeName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\:\x00")
}

// IsValidInstallation reports whether dir is a skill directory, i.e. it
// contains a SKILL.md file. Symlinks are followed.
func IsValidInstallation(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, MarkerFile))
	return err == nil && info.Mode().IsRegular()
}
