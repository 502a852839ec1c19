package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"countdown/internal/service"
)

func newCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "category [start|pause|reset] [name]",
		Short: "List categories or apply an operation to every timer in one",
		Long: `Without arguments, prints every category with per-status counts.
With an operation and a name, starts, pauses or resets every eligible timer
in that category. Only completed timers take part in reset.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or an operation and a category name")
			}
			return nil
		},
		RunE: runCategory,
	}
}

func runCategory(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return withSession(cmd, func(_ context.Context, s *service.Session) error {
			cats := s.Categories()
			if len(cats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No categories found.")
				return nil
			}
			for _, c := range cats {
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %3d timers  %d running  %d paused  %d done\n",
					c.Name, c.Total, c.Running, c.Paused, c.Completed)
			}
			return nil
		})
	}

	op, err := service.ParseCategoryOp(args[0])
	if err != nil {
		return err
	}
	name := args[1]
	return withSession(cmd, func(ctx context.Context, s *service.Session) error {
		n := s.ApplyToCategory(ctx, name, op)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %q: %d timer(s) affected\n", op, name, n)
		return nil
	})
}
