package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"countdown/internal/service"
)

func newClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every timer and the whole history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cmd, yes)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func runClear(cmd *cobra.Command, yes bool) error {
	if !yes {
		return fmt.Errorf("refusing to delete all timers and history without --yes")
	}
	return withSession(cmd, func(ctx context.Context, s *service.Session) error {
		if err := s.ClearAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All timers and history deleted.")
		return nil
	})
}
