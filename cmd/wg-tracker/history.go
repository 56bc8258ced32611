package main

import (
	"fmt"
	"os"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/wgtracker/internal/config"
	"github.com/steveyegge/wgtracker/internal/events"
	"github.com/steveyegge/wgtracker/internal/storage"
)

var (
	historyLimit int
	historyRun   string
)

var historyCmd = &cobra.Command{
	Use:   "history <config>",
	Short: "Show recorded run history",
	Long: `Display events from the run history database, oldest first. By default the
most recent events across all runs are shown; use --run to show one run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := config.Load(args[0])
		if err != nil {
			return err
		}

		path := storage.NewPaths(app.StateDirectory).History()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			gray := color.New(color.FgHiBlack).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", gray("No run history recorded yet"))
			return nil
		}

		store, err := storage.NewStorage(cmd.Context(), &storage.Config{Path: path})
		if err != nil {
			return fmt.Errorf("failed to open run history: %w", err)
		}
		defer func() { _ = store.Close() }()

		var evts []*events.Event
		if historyRun != "" {
			evts, err = store.GetEventsByRun(cmd.Context(), historyRun)
		} else {
			evts, err = store.GetRecentEvents(cmd.Context(), historyLimit)
			// Most recent first from the store; print in the order they happened.
			slices.Reverse(evts)
		}
		if err != nil {
			return fmt.Errorf("failed to read run history: %w", err)
		}

		if len(evts) == 0 {
			gray := color.New(color.FgHiBlack).SprintFunc()
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", gray("No matching events"))
			return nil
		}
		for _, event := range evts {
			displayEvent(cmd.OutOrStdout(), event)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Number of recent events to show")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Show all events of one run")
}
