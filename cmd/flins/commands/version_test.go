package commands

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/thoreinstein/flins/cmd"
	"github.com/thoreinstein/flins/internal/agent"
)

func TestVersionCommand_OutputFormat(t *testing.T) {
	setupEnv(t)

	output, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version command should not return an error, got: %v", err)
	}

	tests := []struct {
		name     string
		contains string
	}{
		{"version header", "flins version " + cmd.Version},
		{"commit field", "commit:    " + cmd.Commit},
		{"built field", "built:     " + cmd.Date},
		{"go field", "go:        " + runtime.Version()},
		{"agents section", "agents:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(output, tt.contains) {
				t.Errorf("version output missing %q\nGot:\n%s", tt.contains, output)
			}
		})
	}
}

func TestWriteVersion_AgentStatus(t *testing.T) {
	setupEnv(t)

	var buf bytes.Buffer
	writeVersion(&buf)
	output := buf.String()

	reg, err := agent.Default()
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(output, "\n")
	for _, name := range reg.Names() {
		found := false
		for _, line := range lines {
			if strings.HasPrefix(line, "    "+name+":") {
				found = true
				if !strings.HasSuffix(line, "installed") {
					t.Errorf("agent line should end in a status: %q", line)
				}
			}
		}
		if !found {
			t.Errorf("agent %q not listed\n%s", name, output)
		}
	}
}

func TestVersionCommand_CommandMetadata(t *testing.T) {
	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}
	if versionCmd.Short == "" {
		t.Error("versionCmd.Short should not be empty")
	}
	if versionCmd.Long == "" {
		t.Error("versionCmd.Long should not be empty")
	}
}

func TestAgentsCommand(t *testing.T) {
	env := setupEnv(t)
	writeFile(t, env.home, ".claude/settings.json", "{}")

	out, err := execute(t, "agents")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "claude-code") || !strings.Contains(out, "[detected]") {
		t.Errorf("expected claude-code detected:\n%s", out)
	}
	if !strings.Contains(out, "[not detected]") {
		t.Errorf("expected undetected agents:\n%s", out)
	}
}
