package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/logging"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tracked skills and commands with their installations",
	Long: `List every item in the lock file of the selected scope together with
the agent directories it is installed in.`,
	Example: `  flins list
  flins list --global --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

type listEntry struct {
	Name          string             `json:"name"`
	Kind          string             `json:"kind"`
	URL           string             `json:"url"`
	Subpath       string             `json:"subpath,omitempty"`
	Branch        string             `json:"branch,omitempty"`
	Commit        string             `json:"commit,omitempty"`
	Installations []installationJSON `json:"installations"`
}

type installationJSON struct {
	Agent string `json:"agent"`
	Path  string `json:"path"`
}

func runList(cmd *cobra.Command, _ []string) error {
	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	f, ok, err := ws.store.All()
	if err != nil {
		return errors.NewSystemError(err, "Check that the lock file is readable")
	}

	entries := []listEntry{}
	if ok {
		for _, k := range trackedKeys(ws.logger, f) {
			e, _ := f.Get(k)
			le := listEntry{
				Name:          k.Name,
				Kind:          string(k.Kind),
				URL:           e.URL,
				Subpath:       e.Subpath,
				Branch:        e.Branch,
				Commit:        e.Commit,
				Installations: []installationJSON{},
			}
			for _, inst := range ws.locator.Find(ctx, k.Name, k.Kind, ws.scope) {
				le.Installations = append(le.Installations, installationJSON{Agent: inst.Agent, Path: inst.Path})
			}
			entries = append(entries, le)
		}
	}

	if listJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	w := output(cmd)
	if len(entries) == 0 {
		fmt.Fprintf(w, "Nothing tracked (%s).\n", ws.scope)
		return nil
	}
	for _, le := range entries {
		name := le.Name
		if le.Kind == "command" {
			name = "/" + name
		}
		fmt.Fprintf(w, "%s %s\n", cyan(name), gray(logging.RedactURL(le.URL)))
		if len(le.Installations) == 0 {
			fmt.Fprintf(w, "  %s\n", warn("(not installed)"))
		}
		for _, inst := range le.Installations {
			fmt.Fprintf(w, "  %-12s %s\n", inst.Agent, displayPath(ws.home, inst.Path))
		}
	}
	return nil
}
