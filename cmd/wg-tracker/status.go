package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/wgtracker/internal/config"
	"github.com/steveyegge/wgtracker/internal/engine"
	"github.com/steveyegge/wgtracker/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status <config>",
	Short: "Show the saved tracker state",
	Long: `Display the watermarks, ledger sizes and queued tasks from the last saved
snapshot. The lock is not taken, so this is safe while a run is in progress.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := config.Load(args[0])
		if err != nil {
			return err
		}
		paths := storage.NewPaths(app.StateDirectory)

		holder, err := lockStatus(paths)
		if err != nil {
			return err
		}

		state, err := engine.Load(paths.Snapshot())
		if errors.Is(err, fs.ErrNotExist) {
			state = nil
		} else if err != nil {
			return err
		}

		writeStatus(cmd.OutOrStdout(), app, holder, state)
		return nil
	},
}

// lockStatus returns the running instance, or nil if the state directory is
// not locked.
func lockStatus(paths storage.Paths) (*storage.LockHolder, error) {
	locked, err := storage.IsLocked(paths.Lock())
	if err != nil || !locked {
		return nil, err
	}
	holder, err := storage.ReadLockHolder(paths.Lock())
	if err != nil {
		return nil, err
	}
	if holder == nil {
		holder = &storage.LockHolder{}
	}
	return holder, nil
}

func writeStatus(w io.Writer, app *config.Config, holder *storage.LockHolder, state *engine.State) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "\n%s\n\n", cyan("=== wg-tracker Status ==="))
	fmt.Fprintf(w, "  Working group: %s\n", app.WGRepo)
	fmt.Fprintf(w, "  Decisions:     %s\n", app.DecisionsRepo)
	fmt.Fprintf(w, "  State:         %s\n\n", app.StateDirectory)

	fmt.Fprintf(w, "%s\n", yellow("Instance:"))
	if holder != nil {
		fmt.Fprintf(w, "  %s running", green("●"))
		if holder.PID != 0 {
			fmt.Fprintf(w, " (PID %d on %s, started %s)", holder.PID, holder.Hostname, holder.StartedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "  %s\n", gray("○ idle"))
	}
	fmt.Fprintln(w)

	if state == nil {
		fmt.Fprintf(w, "  %s\n\n", gray("No saved state yet; the first run starts from "+app.StartDate))
		return
	}

	fmt.Fprintf(w, "%s\n", yellow("Watermarks:"))
	fmt.Fprintf(w, "  Working group issues: %s\n", state.WGWatermark().Format(time.RFC3339))
	fmt.Fprintf(w, "  Decision issues:      %s\n\n", state.DecisionsWatermark().Format(time.RFC3339))

	fmt.Fprintf(w, "%s\n", yellow("Handled:"))
	fmt.Fprintf(w, "  Resolution comments: %d\n", state.HandledComments())
	fmt.Fprintf(w, "  Decision issues:     %d\n\n", state.HandledDecisionIssues())

	writeTasks(w, "Staged", state.Staged())
	writeTasks(w, "Pending", state.Pending())
}

func writeTasks(w io.Writer, title string, tasks []engine.Task) {
	yellow := color.New(color.FgYellow).SprintFunc()
	magenta := color.New(color.FgMagenta).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "%s\n", yellow(fmt.Sprintf("%s tasks (%d):", title, len(tasks))))
	if len(tasks) == 0 {
		fmt.Fprintf(w, "  %s\n\n", gray("none"))
		return
	}
	for i, task := range tasks {
		fmt.Fprintf(w, "  %2d. %s %s\n", i+1, magenta(task.Kind()), engine.Describe(task))
	}
	fmt.Fprintln(w)
}
