package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"countdown/internal/model"
	"countdown/internal/service"
)

type addOptions struct {
	name     string
	category string
	duration string
	alerts   string
}

func newAddCmd() *cobra.Command {
	var opts addOptions
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a paused timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "Timer name")
	cmd.Flags().StringVar(&opts.category, "category", "", "Timer category")
	cmd.Flags().StringVar(&opts.duration, "duration", "", "Duration: minutes, MM:SS, H:MM:SS or e.g. 90s")
	cmd.Flags().StringVar(&opts.alerts, "alerts", "", "Comma-separated alert percentages")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newListCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List timers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, category)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only show this category")
	return cmd
}

type timerOp func(*service.Session, context.Context, int64) bool

func newTimerOpCmd(use, short, verb string, op timerOp) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimerOp(cmd, args[0], verb, op)
		},
	}
}

func runAdd(cmd *cobra.Command, opts addOptions) error {
	seconds, err := service.ParseDuration(opts.duration)
	if err != nil {
		return err
	}
	alerts, err := service.ParseAlerts(opts.alerts)
	if err != nil {
		return err
	}
	input := service.TimerInput{Name: opts.name, Category: opts.category, Duration: seconds, Alerts: alerts}

	return withSession(cmd, func(ctx context.Context, s *service.Session) error {
		t, err := s.AddTimer(ctx, input)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created timer %d %q (%s)\n", t.ID, t.Name, service.FormatClock(t.Duration))
		return nil
	})
}

func runList(cmd *cobra.Command, category string) error {
	return withSession(cmd, func(_ context.Context, s *service.Session) error {
		timers := s.Timers()
		if category != "" {
			timers = s.TimersInCategory(category)
		}
		printTimers(cmd.OutOrStdout(), timers)
		return nil
	})
}

func runTimerOp(cmd *cobra.Command, rawID, verb string, op timerOp) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, s *service.Session) error {
		changed := op(s, ctx, id)
		t, err := s.Timer(id)
		if err != nil {
			return fmt.Errorf("timer %d: %w", id, err)
		}
		if !changed {
			fmt.Fprintf(cmd.OutOrStdout(), "Timer %d %q unchanged (%s)\n", t.ID, t.Name, t.Status)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Timer %d %q %s, %s left\n", t.ID, t.Name, verb, service.FormatClock(t.RemainingTime))
		return nil
	})
}

// printTimers groups timers by category and prints one line per timer.
func printTimers(w io.Writer, timers []model.Timer) {
	if len(timers) == 0 {
		fmt.Fprintln(w, "No timers found.")
		return
	}

	sorted := append([]model.Timer(nil), timers...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Category < sorted[j].Category })

	var current string
	for i, t := range sorted {
		if i == 0 || t.Category != current {
			fmt.Fprintln(w, t.Category)
			current = t.Category
		}
		fmt.Fprintf(w, "  %-14d %-24s %-9s %8s / %-8s %3.0f%%%s\n",
			t.ID,
			service.TruncateText(t.Name, 24),
			t.Status,
			service.FormatClock(t.RemainingTime),
			service.FormatClock(t.Duration),
			t.Progress(),
			alertList(t.Alerts),
		)
	}
}

func alertList(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(alerts))
	for _, a := range alerts {
		mark := ""
		if a.Triggered {
			mark = "✓"
		}
		parts = append(parts, strconv.Itoa(a.Percentage)+"%"+mark)
	}
	return "  [" + strings.Join(parts, " ") + "]"
}
