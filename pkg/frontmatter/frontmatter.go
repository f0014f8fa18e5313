package frontmatter

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/flins/pkg/fileutil"
)

var (
	// ErrNoFrontmatter is returned when content does not open with a "---"
	// line or the block is never closed.
	ErrNoFrontmatter = errors.New("no frontmatter found")

	// ErrInvalidYAML is returned when the frontmatter block is not valid YAML.
	ErrInvalidYAML = errors.New("invalid YAML")
)

const delimiter = "---"

// Parse reads r and splits it into YAML frontmatter, decoded into T, and
// the remaining body. CRLF line endings are normalized to LF.
func Parse[T any](r io.Reader) (*T, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", errors.Wrap(err, "reading content")
	}
	return decode[T](data)
}

// ParseFile is Parse applied to the file at path. Files larger than
// fileutil.MaxFileSize are rejected, since paths usually come from a
// freshly cloned repository.
func ParseFile[T any](path string) (*T, string, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, "", errors.Wrapf(err, "reading %s", path)
	}
	return decode[T](data)
}

func decode[T any](data []byte) (*T, string, error) {
	fm, body, ok := split(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if !ok {
		return nil, "", ErrNoFrontmatter
	}

	var meta T
	if err := yaml.Unmarshal([]byte(fm), &meta); err != nil {
		return nil, "", errors.Wrap(ErrInvalidYAML, err.Error())
	}
	return &meta, body, nil
}

// split separates normalized content into the frontmatter block and the
// body following the closing delimiter line.
func split(content string) (fm, body string, ok bool) {
	if !strings.HasPrefix(content, delimiter+"\n") {
		return "", "", false
	}
	rest := content[len(delimiter)+1:]

	offset := 0
	for {
		end := strings.IndexByte(rest[offset:], '\n')
		line, next := rest[offset:], len(rest)
		if end >= 0 {
			line, next = rest[offset:offset+end], offset+end+1
		}
		if strings.TrimRight(line, " \t") == delimiter {
			return rest[:offset], rest[next:], true
		}
		if end < 0 {
			return "", "", false
		}
		offset = next
	}
}
