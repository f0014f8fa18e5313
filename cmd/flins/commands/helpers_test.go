package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thoreinstein/flins/cmd/flins/commands/flags"
	"github.com/thoreinstein/flins/internal/cli/prompt"
)

// testEnv isolates a command run from the user's home, config and state.
type testEnv struct {
	home     string
	project  string
	stateDir string
	git      *fakeGit
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		home:     t.TempDir(),
		project:  t.TempDir(),
		stateDir: t.TempDir(),
		git:      newFakeGit(t),
	}
	t.Setenv("HOME", env.home)
	t.Setenv("FLINS_CONFIG_DIR", t.TempDir())
	t.Setenv("FLINS_STATE_DIR", env.stateDir)
	t.Setenv("FLINS_DEBUG", "")
	env.git.install()

	t.Cleanup(func() {
		resetFlags(rootCmd)
		flags.Reset()
	})
	return env
}

// resetFlags restores every flag of c and its subcommands to its default,
// since cobra keeps values between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(t.Context())
	return out.String(), err
}

// answer makes prompts read input instead of stdin.
func answer(t *testing.T, input string) {
	t.Helper()
	orig := newSelector
	r := strings.NewReader(input)
	newSelector = func(c *cobra.Command) *prompt.Selector {
		return prompt.NewSelectorWithIO(r, c.OutOrStdout())
	}
	t.Cleanup(func() { newSelector = orig })
}

// writeFile creates path (slash-separated, relative to dir) with content.
func writeFile(t *testing.T, dir, path, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// newKitRepo returns a repository with two skills and one command.
func newKitRepo(t *testing.T, version string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "skills/pdf/SKILL.md", "---\nname: pdf\ndescription: Work with PDFs\n---\n"+version+"\n")
	writeFile(t, dir, "skills/pdf/scripts/extract.py", "print('"+version+"')\n")
	writeFile(t, dir, "skills/docx/SKILL.md", "---\nname: docx\ndescription: Word documents\n---\n"+version+"\n")
	writeFile(t, dir, "commands/review.md", "---\ndescription: Review the diff\n---\n"+version+"\n")
	writeFile(t, dir, "README.md", "# kit\n")
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
