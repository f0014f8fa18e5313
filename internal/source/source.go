package source

import (
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/flins/internal/git"
	"github.com/thoreinstein/flins/internal/paths"
)

// ErrInvalidSource is returned for input that names no repository.
var ErrInvalidSource = errors.New("invalid source")

// Type is the kind of location a source points at.
type Type string

const (
	TypeGitHub Type = "github"
	TypeGitLab Type = "gitlab"
	TypeGit    Type = "git"
	TypeLocal  Type = "local"
)

// Source is a parsed install source.
type Source struct {
	Type Type
	// URL is the clone URL, or the absolute directory for local sources.
	URL string
	// Branch is set when the input names one (tree URLs).
	Branch string
	// Subpath limits discovery to a directory within the repository.
	Subpath string
}

// IsLocal reports whether the source is a directory on disk.
func (s Source) IsLocal() bool {
	return s.Type == TypeLocal
}

// shorthand matches "owner/repo" and "owner/repo/sub/path".
var shorthand = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)((?:/[^/\s]+)*)/?$`)

// Parse interprets user input as a repository location.
func Parse(input string) (Source, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Source{}, errors.Wrap(ErrInvalidSource, "empty source")
	}

	if isLocalPath(input) {
		abs, err := filepath.Abs(paths.ExpandHome(input, paths.Home()))
		if err != nil {
			return Source{}, errors.Wrapf(ErrInvalidSource, "%q: %v", input, err)
		}
		return Source{Type: TypeLocal, URL: abs}, nil
	}

	for _, host := range []string{"github.com/", "gitlab.com/"} {
		if strings.HasPrefix(strings.ToLower(input), host) {
			input = "https://" + input
		}
	}

	if u, err := url.Parse(input); err == nil && (u.Scheme == "https" || u.Scheme == "http") {
		switch strings.ToLower(u.Host) {
		case "github.com":
			return parseHosted(TypeGitHub, u, "/tree/")
		case "gitlab.com":
			return parseHosted(TypeGitLab, u, "/-/tree/")
		}
	}

	if m := shorthand.FindStringSubmatch(input); m != nil && m[1] != "." && m[1] != ".." {
		return Source{
			Type:    TypeGitHub,
			URL:     "https://github.com/" + m[1] + "/" + strings.TrimSuffix(m[2], ".git") + ".git",
			Subpath: strings.Trim(m[3], "/"),
		}, nil
	}

	if git.IsURL(input) {
		return Source{Type: TypeGit, URL: input}, nil
	}

	return Source{}, errors.Wrapf(ErrInvalidSource, "%q", input)
}

// parseHosted handles https URLs on GitHub and GitLab, including the web
// UI's tree URLs which carry a branch and a path.
func parseHosted(t Type, u *url.URL, treeMarker string) (Source, error) {
	repoPath, rest, _ := strings.Cut(strings.Trim(u.Path, "/")+"/", treeMarker)
	parts := strings.Split(strings.Trim(repoPath, "/"), "/")

	// GitLab allows nested groups; GitHub is always owner/repo.
	if len(parts) < 2 || (t == TypeGitHub && len(parts) != 2) || slices.Contains(parts, "") {
		return Source{}, errors.Wrapf(ErrInvalidSource, "%q", u.String())
	}
	parts[len(parts)-1] = strings.TrimSuffix(parts[len(parts)-1], ".git")

	src := Source{
		Type: t,
		URL:  u.Scheme + "://" + u.Host + "/" + strings.Join(parts, "/") + ".git",
	}
	if rest = strings.Trim(rest, "/"); rest != "" {
		branch, sub, _ := strings.Cut(rest, "/")
		src.Branch = branch
		if sub != "" {
			src.Subpath = path.Clean(sub)
		}
	}
	return src, nil
}

func isLocalPath(s string) bool {
	return strings.HasPrefix(s, "./") || strings.HasPrefix(s, "../") ||
		s == "." || s == ".." || filepath.IsAbs(s) || strings.HasPrefix(s, "~/")
}
