// Command wg-tracker files decision issues for working group resolutions and
// turns decision issues labeled "bug" into Bugzilla bugs. Each invocation
// performs one run; schedule it periodically.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/wgtracker/internal/config"
	"github.com/steveyegge/wgtracker/internal/errs"
	"github.com/steveyegge/wgtracker/internal/tracker"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "wg-tracker <config>",
	Short: "Track working group resolutions and file decision issues and bugs",
	Long: `Poll the working group repository for "RESOLVED: " comments, file a
decision issue for each, and file a Bugzilla bug for every decision issue
labeled "bug". State is kept in the configured state directory so each run
resumes where the previous one stopped.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(newLogger(os.Stderr, verbose))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := config.Load(args[0])
		if err != nil {
			return err
		}

		tr, err := tracker.New(tracker.FromApp(app, slog.Default()))
		if err != nil {
			return err
		}

		summary, err := tr.Run(cmd.Context())
		if err != nil {
			return err
		}
		if verbose {
			printRunSummary(cmd.OutOrStdout(), summary)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// printFatal writes the single line reported when a run fails.
func printFatal(w io.Writer, now time.Time, err error) {
	red := color.New(color.FgRed).SprintFunc()
	if kind := errs.KindOf(err); kind != "" {
		fmt.Fprintf(w, "[%s] %s (%s): %v\n", now.Format(time.RFC3339), red("error"), kind, err)
		return
	}
	fmt.Fprintf(w, "[%s] %s: %v\n", now.Format(time.RFC3339), red("error"), err)
}

func printRunSummary(w io.Writer, summary *tracker.Summary) {
	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if summary.Skipped {
		fmt.Fprintf(w, "%s another instance is running: %s\n", gray("○"), summary.Holder)
		return
	}
	fmt.Fprintf(w, "%s run %s: %d tasks in %s\n",
		green("✓"), summary.RunID, summary.TasksRun, summary.Duration.Round(time.Millisecond))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		printFatal(os.Stderr, time.Now(), err)
		os.Exit(1)
	}
}
