package cli

import (
	"fmt"
	"os"

	"countdown/internal/service"

	"github.com/spf13/cobra"
)

// newRootCmd builds a fresh command tree so flag values never outlive one run.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "countdown",
		Short: "Countdown timers with progress alerts",
		Long: `countdown runs named, categorized countdown timers that fire alerts at
chosen percentages and log every completion to a history.

Run "countdown serve" for the long-lived engine with the Telegram bot and
HTTP API, or use the other commands for one-shot changes to the saved state.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newAddCmd(),
		newListCmd(),
		newTimerOpCmd("start", "Start or resume a timer", "started", (*service.Session).Start),
		newTimerOpCmd("pause", "Pause a running timer", "paused", (*service.Session).Pause),
		newTimerOpCmd("reset", "Reset a timer to its full duration", "reset", (*service.Session).Reset),
		newCategoryCmd(),
		newHistoryCmd(),
		newExportCmd(),
		newClearCmd(),
		newWatchCmd(),
	)
	return root
}

// Execute is the entry point called from main.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
