package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/flins/cmd"
	"github.com/thoreinstein/flins/internal/agent"
	"github.com/thoreinstein/flins/internal/paths"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version, commit, build date, Go version, and detected agents of flins.`,
	Run: func(c *cobra.Command, _ []string) {
		writeVersion(c.OutOrStdout())
	},
}

func writeVersion(w io.Writer) {
	fmt.Fprintf(w, "flins version %s\n", cmd.Version)
	fmt.Fprintf(w, "  commit:    %s\n", cmd.Commit)
	fmt.Fprintf(w, "  built:     %s\n", cmd.Date)
	fmt.Fprintf(w, "  go:        %s\n", runtime.Version())

	reg, err := agent.Default()
	if err != nil {
		return
	}
	home := paths.Home()
	fmt.Fprintln(w, "  agents:")
	for _, a := range reg.All() {
		status := "not installed"
		if home != "" && agent.Detect(a, home) {
			status = "installed"
		}
		fmt.Fprintf(w, "    %-12s %s\n", a.Name+":", status)
	}
}
