package locator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/thoreinstein/flins/internal/agent"
)

func testRegistry(t *testing.T) *agent.Registry {
	t.Helper()
	reg, err := agent.New(
		agent.Config{
			Name:              "alpha",
			SkillsDir:         ".alpha/skills",
			GlobalSkillsDir:   "~/.alpha/skills",
			CommandsDir:       ".alpha/commands",
			GlobalCommandsDir: "~/.alpha/commands",
		},
		agent.Config{
			Name:            "beta",
			SkillsDir:       ".beta/skills",
			GlobalSkillsDir: "~/.config/beta/skills",
		},
	)
	if err != nil {
		t.Fatalf("agent.New() error = %v", err)
	}
	return reg
}

func mkdir(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatalf("MkdirAll(%s) error = %v", p, err)
	}
	return p
}

func touch(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestFind_SkillCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	want := mkdir(t, root, ".alpha", "skills", "My-Skill")
	mkdir(t, root, ".beta", "skills", "other")

	l := New(testRegistry(t), t.TempDir())
	got := l.Find(t.Context(), "my-skill", KindSkill, ProjectScope(root))

	if len(got) != 1 {
		t.Fatalf("Find() returned %d installations, want 1: %+v", len(got), got)
	}
	if got[0].Agent != "alpha" {
		t.Errorf("Agent = %q, want alpha", got[0].Agent)
	}
	if got[0].Path != want {
		t.Errorf("Path = %q, want on-disk casing %q", got[0].Path, want)
	}
	if got[0].Kind != KindSkill || got[0].Scope.Global {
		t.Errorf("unexpected installation metadata: %+v", got[0])
	}
}

func TestFind_SkillRejectsPlainFile(t *testing.T) {
	root := t.TempDir()
	touch(t, root, ".alpha", "skills", "demo")

	l := New(testRegistry(t), t.TempDir())
	if got := l.Find(t.Context(), "demo", KindSkill, ProjectScope(root)); len(got) != 0 {
		t.Errorf("Find() = %+v, want none for a plain file", got)
	}
}

func TestFind_SkillSymlink(t *testing.T) {
	root := t.TempDir()
	target := mkdir(t, t.TempDir(), "canonical", "demo")
	dir := mkdir(t, root, ".beta", "skills")
	if err := os.Symlink(target, filepath.Join(dir, "Demo")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	l := New(testRegistry(t), t.TempDir())
	got := l.Find(t.Context(), "demo", KindSkill, ProjectScope(root))
	if len(got) != 1 || got[0].Agent != "beta" {
		t.Fatalf("Find() = %+v, want one beta installation", got)
	}
	if got[0].Path != filepath.Join(dir, "Demo") {
		t.Errorf("Path = %q", got[0].Path)
	}
}

func TestFind_Commands(t *testing.T) {
	root := t.TempDir()
	want := touch(t, root, ".alpha", "commands", "Review.md")
	mkdir(t, root, ".alpha", "commands", "lint.md")
	// beta has no commands directory; a stray one must be ignored
	touch(t, root, ".beta", "commands", "review.md")

	l := New(testRegistry(t), t.TempDir())

	got := l.Find(t.Context(), "review", KindCommand, ProjectScope(root))
	if len(got) != 1 || got[0].Path != want {
		t.Fatalf("Find(review) = %+v, want %s", got, want)
	}

	if got := l.Find(t.Context(), "lint", KindCommand, ProjectScope(root)); len(got) != 0 {
		t.Errorf("Find(lint) = %+v, want none for a directory", got)
	}
}

func TestFind_GlobalScope(t *testing.T) {
	home := t.TempDir()
	mkdir(t, home, ".alpha", "skills", "demo")
	mkdir(t, home, ".config", "beta", "skills", "DEMO")

	l := New(testRegistry(t), home)
	got := l.Find(t.Context(), "demo", KindSkill, GlobalScope())
	if len(got) != 2 {
		t.Fatalf("Find() = %+v, want 2 installations", got)
	}
	if got[0].Agent != "alpha" || got[1].Agent != "beta" {
		t.Errorf("order = %s,%s; want alpha,beta", got[0].Agent, got[1].Agent)
	}
	if !got[0].Scope.Global {
		t.Error("expected global scope on installation")
	}
}

func TestFind_MissingDirectories(t *testing.T) {
	l := New(testRegistry(t), t.TempDir())
	if got := l.Find(t.Context(), "demo", KindSkill, ProjectScope(t.TempDir())); got != nil {
		t.Errorf("Find() = %+v, want nil", got)
	}
}

func TestScanDir_Unreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := mkdir(t, t.TempDir(), "skills")
	if err := os.Chmod(dir, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	res := scanDir(dir, "demo", KindSkill)
	if res.status != scanError || res.err == nil {
		t.Errorf("scanDir() = %+v, want scanError", res)
	}
}

func TestScanDir_NotFound(t *testing.T) {
	res := scanDir(filepath.Join(t.TempDir(), "missing"), "demo", KindSkill)
	if res.status != scanNotFound {
		t.Errorf("status = %v, want scanNotFound", res.status)
	}
}

func TestKind_Valid(t *testing.T) {
	if !KindSkill.Valid() || !KindCommand.Valid() {
		t.Error("known kinds must be valid")
	}
	if Kind("agent").Valid() {
		t.Error("unknown kind must be invalid")
	}
}
