package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"countdown/internal/repository"
	"countdown/internal/service"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show completed timers, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries (0 for all)")
	return cmd
}

func newExportCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the history to timer_history.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the export into")
	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	return withSession(cmd, func(_ context.Context, s *service.Session) error {
		items := s.History()
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No completed timers yet.")
			return nil
		}
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}
		now := time.Now()
		for _, it := range items {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-24s %-16s %8s  %s\n",
				it.CompletedAt.Local().Format("2006-01-02 15:04"),
				service.TruncateText(it.Name, 24),
				service.TruncateText(it.Category, 16),
				service.FormatClock(it.Duration),
				humanize.RelTime(it.CompletedAt, now, "ago", "from now"),
			)
		}
		return nil
	})
}

func runExport(cmd *cobra.Command, dir string) error {
	return withSession(cmd, func(_ context.Context, s *service.Session) error {
		doc := s.Export()
		data, err := service.EncodeExport(doc)
		if err != nil {
			return err
		}
		path, err := repository.WriteExport(afero.NewOsFs(), dir, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d item(s) to %s (%s)\n",
			len(doc.Items), path, humanize.Bytes(uint64(len(data))))
		return nil
	})
}
