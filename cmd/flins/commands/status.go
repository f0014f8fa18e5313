package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/flins/cmd"
	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/state"
)

var (
	statusJSON    bool
	statusOffline bool
)

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	statusCmd.Flags().BoolVar(&statusOffline, "offline", false, "skip checking sources for new commits")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether tracked items are up to date",
	Long: `Show every item in the lock file with its source, the number of
agent directories it is installed in, and whether its source has moved
on since it was installed.

States:
  up-to-date   the recorded commit is the latest on its branch
  outdated     the branch has newer commits; run 'flins update'
  untracked    no commit was recorded (local directory without git)
  unknown      --offline was given
  error        the source could not be reached`,
	Example: `  # Project status
  flins status

  # Global status as JSON, without network access
  flins status --global --json --offline`,
	RunE: runStatus,
}

// entryStatus is the collected status of one lock entry.
type entryStatus struct {
	Key           state.Key `json:"-"`
	Name          string    `json:"name"`
	Kind          string    `json:"kind"`
	URL           string    `json:"url"`
	Subpath       string    `json:"subpath,omitempty"`
	Branch        string    `json:"branch,omitempty"`
	Commit        string    `json:"commit,omitempty"`
	Latest        string    `json:"latest,omitempty"`
	State         string    `json:"state"`
	Error         string    `json:"error,omitempty"`
	Installations int       `json:"installations"`
}

type statusJSONOutput struct {
	Version    string        `json:"version"`
	Scope      string        `json:"scope"`
	LockFile   string        `json:"lock_file"`
	LastUpdate string        `json:"last_update,omitempty"`
	Entries    []entryStatus `json:"entries"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ws, err := newWorkspace(cmd)
	if err != nil {
		return err
	}

	lockPath, err := ws.store.Path()
	if err != nil {
		return errors.NewSystemError(err, "Check the --dir value")
	}

	f, ok, err := ws.store.All()
	if err != nil {
		return errors.NewSystemError(err, "Check that the lock file is readable")
	}

	report := statusJSONOutput{
		Version:  buildVersion(),
		Scope:    ws.scope.String(),
		LockFile: lockPath,
		Entries:  []entryStatus{},
	}
	if ok {
		report.LastUpdate = f.LastUpdate
		for _, k := range trackedKeys(ws.logger, f) {
			e, _ := f.Get(k)
			report.Entries = append(report.Entries, ws.collectStatus(cmd, k, e))
		}
	}

	if statusJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return outputStatusText(output(cmd), ws, report)
}

func (ws *workspace) collectStatus(c *cobra.Command, k state.Key, e state.Entry) entryStatus {
	st := entryStatus{
		Key:     k,
		Name:    k.Name,
		Kind:    string(k.Kind),
		URL:     e.URL,
		Subpath: e.Subpath,
		Branch:  e.Branch,
		Commit:  e.Commit,
	}
	st.Installations = len(ws.locator.Find(c.Context(), k.Name, k.Kind, ws.scope))

	switch {
	case statusOffline:
		st.State = "unknown"
	case e.Commit == "":
		st.State = "untracked"
	default:
		latest, err := ws.latestCommit(c.Context(), e)
		switch {
		case err != nil:
			st.State = "error"
			st.Error = err.Error()
		case latest == e.Commit:
			st.State = "up-to-date"
			st.Latest = latest
		default:
			st.State = "outdated"
			st.Latest = latest
		}
	}
	return st
}

func outputStatusText(w io.Writer, ws *workspace, report statusJSONOutput) error {
	fmt.Fprintf(w, "%s %s\n", bold("Lock file:"), displayPath(ws.home, report.LockFile))
	if report.LastUpdate != "" {
		if t, err := state.ParseTimestamp(report.LastUpdate); err == nil {
			fmt.Fprintf(w, "%s %s\n", bold("Updated:"), t.Local().Format("2006-01-02 15:04"))
		}
	}

	if len(report.Entries) == 0 {
		fmt.Fprintf(w, "\nNothing tracked (%s).\n", report.Scope)
		return nil
	}

	fmt.Fprintln(w)
	for _, st := range report.Entries {
		fmt.Fprintf(w, "  %s %s\n", cyan(displayName(st.Key)), stateLabel(st))
		src := st.URL
		if st.Subpath != "" {
			src += " (" + st.Subpath + ")"
		}
		if st.Branch != "" {
			src += " @ " + st.Branch
		}
		fmt.Fprintf(w, "    %s\n", gray(src))
		if st.Installations == 0 {
			fmt.Fprintf(w, "    %s\n", warn("not installed in any agent directory"))
		} else {
			fmt.Fprintf(w, "    installed in %d %s\n", st.Installations, plural(st.Installations, "location"))
		}
	}
	return nil
}

func stateLabel(st entryStatus) string {
	switch st.State {
	case "up-to-date":
		return green("up-to-date")
	case "outdated":
		return warn(fmt.Sprintf("outdated (%s → %s)", short(st.Commit), short(st.Latest)))
	case "error":
		return red("error: " + st.Error)
	default:
		return gray(st.State)
	}
}

func buildVersion() string {
	return cmd.Version
}
