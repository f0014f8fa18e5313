package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/flins/internal/agent"
	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/paths"
)

var agentsJSON bool

func init() {
	agentsCmd.Flags().BoolVar(&agentsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(agentsCmd)
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List supported agents and whether they are installed",
	Long: `List every agent flins knows about, whether it was detected on this
machine, and the directories skills and commands are installed into.

Directories can be overridden per agent in the config file under
agents.<name>.`,
	Args: cobra.NoArgs,
	RunE: runAgents,
}

type agentJSON struct {
	Name              string `json:"name"`
	DisplayName       string `json:"display_name"`
	Detected          bool   `json:"detected"`
	SkillsDir         string `json:"skills_dir"`
	GlobalSkillsDir   string `json:"global_skills_dir"`
	CommandsDir       string `json:"commands_dir,omitempty"`
	GlobalCommandsDir string `json:"global_commands_dir,omitempty"`
}

func runAgents(cmd *cobra.Command, _ []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	home, err := paths.ResolveHome()
	if err != nil {
		return errors.NewSystemError(err, "Set $HOME")
	}

	if agentsJSON {
		list := make([]agentJSON, 0, reg.Len())
		for _, a := range reg.All() {
			list = append(list, agentJSON{
				Name:              a.Name,
				DisplayName:       a.DisplayName,
				Detected:          agent.Detect(a, home),
				SkillsDir:         a.SkillsDir,
				GlobalSkillsDir:   a.GlobalSkillsDir,
				CommandsDir:       a.CommandsDir,
				GlobalCommandsDir: a.GlobalCommandsDir,
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	writeAgents(output(cmd), reg, home)
	return nil
}

func writeAgents(w io.Writer, reg *agent.Registry, home string) {
	for _, a := range reg.All() {
		status := gray("not detected")
		if agent.Detect(a, home) {
			status = green("detected")
		}
		fmt.Fprintf(w, "%s %s [%s]\n", cyan(fmt.Sprintf("%-12s", a.Name)), a.DisplayName, status)
		fmt.Fprintf(w, "    skills:   %s, %s\n", a.SkillsDir, a.GlobalSkillsDir)
		if a.CommandsDir != "" || a.GlobalCommandsDir != "" {
			fmt.Fprintf(w, "    commands: %s, %s\n", orDash(a.CommandsDir), orDash(a.GlobalCommandsDir))
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
