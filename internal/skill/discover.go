package skill

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// MaxDepth is how many directory levels below the discovery root are
// searched.
const MaxDepth = 5

// CommandsDirName is the directory name commands are discovered in.
const CommandsDirName = "commands"

// ErrSubpathEscapes is returned when a subpath points outside the root.
var ErrSubpathEscapes = errors.New("subpath escapes repository root")

var skipDirs = []string{"node_modules", ".git", "dist", "build", "__pycache__"}

// Discover returns every skill under root/subpath, sorted by path. The
// start directory itself counts when it contains SKILL.md. Unreadable
// subdirectories are skipped, as are skills whose directory name is not
// a safe name and whose frontmatter supplies none. When two skills share
// a name (ignoring case) the first by path wins.
func Discover(root, subpath string) ([]Skill, error) {
	base, err := resolveBase(root, subpath)
	if err != nil {
		return nil, err
	}

	var skills []Skill
	seen := make(map[string]bool)

	err = walk(base, func(dir string) error {
		if !IsValidInstallation(dir) {
			return nil
		}
		meta, err := readMeta(filepath.Join(dir, MarkerFile), filepath.Base(dir))
		if err != nil {
			return err
		}
		if !IsSafeName(meta.Name) || seen[strings.ToLower(meta.Name)] {
			return nil
		}
		seen[strings.ToLower(meta.Name)] = true
		skills = append(skills, Skill{
			Name:        meta.Name,
			Description: meta.Description,
			Dir:         dir,
			RelPath:     rel(base, dir),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return skills, nil
}

// DiscoverCommands returns the markdown files in every "commands"
// directory under root/subpath. When the start directory is itself named
// "commands" its files are used directly. README.md is not a command, and
// neither is a file whose name is not a safe name.
func DiscoverCommands(root, subpath string) ([]Command, error) {
	base, err := resolveBase(root, subpath)
	if err != nil {
		return nil, err
	}

	var cmds []Command
	seen := make(map[string]bool)

	err = walk(base, func(dir string) error {
		if filepath.Base(dir) != CommandsDirName {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".md") || strings.EqualFold(name, "README.md") {
				continue
			}
			if !IsSafeName(strings.TrimSuffix(name, ".md")) {
				continue
			}
			p := filepath.Join(dir, name)
			meta, err := readMeta(p, strings.TrimSuffix(name, ".md"))
			if err != nil {
				return err
			}
			// The file name is what agents invoke, so it wins over frontmatter.
			meta.Name = strings.TrimSuffix(name, ".md")
			if seen[strings.ToLower(meta.Name)] {
				continue
			}
			seen[strings.ToLower(meta.Name)] = true
			cmds = append(cmds, Command{
				Name:        meta.Name,
				Description: meta.Description,
				Path:        p,
				RelPath:     rel(base, p),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cmds, nil
}

func resolveBase(root, subpath string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", root)
	}
	base := filepath.Join(absRoot, filepath.FromSlash(subpath))
	if r, err := filepath.Rel(absRoot, base); err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrSubpathEscapes, "%q", subpath)
	}

	info, err := os.Stat(base)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", base)
	}
	if !info.IsDir() {
		return "", errors.Newf("%s is not a directory", base)
	}
	return base, nil
}

// walk calls fn for base and each directory below it up to MaxDepth,
// in lexical order, skipping vendored and build directories.
func walk(base string, fn func(dir string) error) error {
	return filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == base {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != base {
			if slices.Contains(skipDirs, d.Name()) {
				return fs.SkipDir
			}
			if depth(base, path) > MaxDepth {
				return fs.SkipDir
			}
		}
		return fn(path)
	})
}

func depth(base, path string) int {
	r := rel(base, path)
	if r == "." {
		return 0
	}
	return strings.Count(r, "/") + 1
}

func rel(base, path string) string {
	r, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}
