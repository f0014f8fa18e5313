package skill

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/flins/pkg/fileutil"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func skillMD(name, desc string) string {
	return "---\nname: " + name + "\ndescription: " + desc + "\n---\n\n# " + name + "\n"
}

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return out
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "skills/pdf/SKILL.md", skillMD("pdf", "Work with PDFs"))
	writeFile(t, root, "skills/docx/SKILL.md", "# no frontmatter\n")
	writeFile(t, root, "skills/broken/SKILL.md", "---\nname: [oops\n---\n")
	writeFile(t, root, "node_modules/dep/SKILL.md", skillMD("dep", "vendored"))
	writeFile(t, root, ".git/hooks/SKILL.md", skillMD("hook", "git"))
	writeFile(t, root, "a/b/c/d/e/SKILL.md", skillMD("deep-ok", "depth 5"))
	writeFile(t, root, "a/b/c/d/e/f/SKILL.md", skillMD("too-deep", "depth 6"))
	writeFile(t, root, "zz-other/PDF/SKILL.md", skillMD("PDF", "duplicate"))

	got, err := Discover(root, "")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	want := []string{"deep-ok", "broken", "docx", "pdf"}
	if n := names(got, SkillName); !slices.Equal(n, want) {
		t.Errorf("Discover() names = %v, want %v", n, want)
	}

	for _, s := range got {
		if s.Name == "pdf" {
			if s.Description != "Work with PDFs" {
				t.Errorf("description = %q", s.Description)
			}
			if s.RelPath != "skills/pdf" {
				t.Errorf("RelPath = %q", s.RelPath)
			}
			if !filepath.IsAbs(s.Dir) {
				t.Errorf("Dir %q should be absolute", s.Dir)
			}
		}
	}
}

func TestDiscover_Subpath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "skills/pdf/SKILL.md", skillMD("pdf", "d"))
	writeFile(t, root, "skills/xlsx/SKILL.md", skillMD("xlsx", "d"))

	got, err := Discover(root, "skills/pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "pdf" || got[0].RelPath != "." {
		t.Errorf("Discover(subpath) = %+v", got)
	}

	if _, err := Discover(root, "../outside"); !errors.Is(err, ErrSubpathEscapes) {
		t.Errorf("Discover(../outside) error = %v, want ErrSubpathEscapes", err)
	}
	if _, err := Discover(root, "missing"); err == nil {
		t.Error("Discover(missing) should fail")
	}
}

func TestDiscoverCommands(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "commands/review.md", "---\ndescription: Review a PR\n---\nReview $ARGUMENTS\n")
	writeFile(t, root, "commands/README.md", "# Commands\n")
	writeFile(t, root, "commands/notes.txt", "not markdown")
	writeFile(t, root, "plugins/x/commands/deploy.md", "Deploy it.\n")

	got, err := DiscoverCommands(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if n := names(got, CommandName); !slices.Equal(n, []string{"review", "deploy"}) {
		t.Fatalf("DiscoverCommands() = %v", n)
	}
	if got[0].Description != "Review a PR" {
		t.Errorf("description = %q", got[0].Description)
	}

	got, err = DiscoverCommands(root, "commands")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "review" {
		t.Errorf("DiscoverCommands(commands) = %+v", got)
	}
}

func TestIsValidInstallation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ok/SKILL.md", skillMD("ok", "d"))
	if err := os.MkdirAll(filepath.Join(root, "dir-marker", "SKILL.md"), 0o755); err != nil {
		t.Fatal(err)
	}

	if !IsValidInstallation(filepath.Join(root, "ok")) {
		t.Error("directory with SKILL.md should be valid")
	}
	if IsValidInstallation(filepath.Join(root, "dir-marker")) {
		t.Error("SKILL.md must be a file")
	}
	if IsValidInstallation(filepath.Join(root, "missing")) {
		t.Error("missing directory should be invalid")
	}
}

func TestParseFile(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "SKILL.md", "---\nname: '  spaced  '\ndescription: >\n  folded\n  text\n---\n")

	meta, err := ParseFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Name != "spaced" || meta.Description != "folded text" {
		t.Errorf("ParseFile() = %+v", meta)
	}

	_, err = ParseFile(filepath.Join(root, "nope.md"))
	var perr *ParseError
	if !errors.As(err, &perr) || !strings.Contains(perr.Error(), "nope.md") {
		t.Errorf("ParseFile(missing) error = %v, want *ParseError with path", err)
	}
}

func TestIsSafeName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"pdf", true},
		{"My Skill", true},
		{"", false},
		{".", false},
		{"..", false},
		{"../../etc", false},
		{"a/b", false},
		{`a\b`, false},
		{"pdf:tools", false},
	}
	for _, tt := range tests {
		if got := IsSafeName(tt.name); got != tt.want {
			t.Errorf("IsSafeName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDiscover_UnsafeNameFallsBack(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "evil/SKILL.md", "---\nname: ../../outside\n---\n")

	skills, err := Discover(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(skills) != 1 || skills[0].Name != "evil" {
		t.Errorf("Discover() = %+v, want the directory name", skills)
	}
}

func TestDiscover_ColonNameFallsBack(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pdf-tools/SKILL.md", "---\nname: pdf:tools\n---\n")
	writeFile(t, root, "a:b/SKILL.md", "# no frontmatter\n")

	skills, err := Discover(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(skills) != 1 || skills[0].Name != "pdf-tools" {
		t.Errorf("Discover() = %+v, want only pdf-tools", skills)
	}
}

func TestDiscoverCommands_SkipsUnsafeFileNames(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "commands/deploy.md", "Deploy.\n")
	writeFile(t, root, "commands/git:push.md", "Push.\n")

	cmds, err := DiscoverCommands(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 1 || cmds[0].Name != "deploy" {
		t.Errorf("DiscoverCommands() = %+v, want only deploy", cmds)
	}
}

func TestDiscover_OversizedMarkerFallsBack(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "huge/SKILL.md", "---\nname: other\n---\n"+strings.Repeat("x", fileutil.MaxFileSize))

	skills, err := Discover(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(skills) != 1 || skills[0].Name != "huge" {
		t.Errorf("Discover() = %+v, want the directory name", skills)
	}
}
