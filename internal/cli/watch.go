package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"countdown/internal/model"
	"countdown/internal/service"
)

const watchRefresh = 250 * time.Millisecond

func newWatchCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the engine in the foreground and show running timers as progress bars",
		Long: `watch ticks the saved timers in this process and draws one bar per
running timer until every bar is finished or the command is interrupted.
Alerts and completions are logged to stderr. Do not run it next to serve.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, category)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only watch this category")
	return cmd
}

func runWatch(cmd *cobra.Command, category string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(cmd.ErrOrStderr(), nil)
	if err != nil {
		return err
	}
	a.session.LoadAll(ctx)
	a.scheduler.Start()
	defer func() {
		if err := a.close(context.Background()); err != nil {
			a.logger.Printf("[warn] save state: %v", err)
		}
	}()

	p := mpb.New(mpb.WithWidth(48), mpb.WithOutput(cmd.OutOrStdout()))
	bars := make(map[int64]*mpb.Bar)
	for _, t := range a.session.Timers() {
		if t.Status != model.StatusRunning {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		bars[t.ID] = newTimerBar(p, t)
	}
	if len(bars) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No running timers.")
		p.Wait()
		return nil
	}

	ticker := time.NewTicker(watchRefresh)
	defer ticker.Stop()
	for len(bars) > 0 {
		select {
		case <-ctx.Done():
			for _, bar := range bars {
				bar.Abort(false)
			}
			p.Wait()
			return nil
		case <-ticker.C:
		}
		for id, bar := range bars {
			if done := updateTimerBar(a.session, id, bar); done {
				delete(bars, id)
			}
		}
	}
	p.Wait()
	return nil
}

func newTimerBar(p *mpb.Progress, t model.Timer) *mpb.Bar {
	name := service.TruncateText(t.Name, 24)
	bar := p.New(int64(t.Duration),
		mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟"),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.Name(t.Category, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.OnComplete(
				decor.Any(func(s decor.Statistics) string {
					return service.FormatClock(int(s.Total - s.Current))
				}, decor.WC{W: 8}),
				"done",
			),
			decor.Percentage(decor.WC{W: 5}),
		),
	)
	bar.SetCurrent(int64(t.Elapsed()))
	return bar
}

// updateTimerBar copies the timer's progress onto bar and reports whether
// the bar is finished.
func updateTimerBar(s *service.Session, id int64, bar *mpb.Bar) bool {
	t, err := s.Timer(id)
	if err != nil {
		bar.Abort(false)
		return true
	}
	switch t.Status {
	case model.StatusCompleted:
		bar.SetCurrent(int64(t.Duration))
		return true
	case model.StatusPaused:
		bar.Abort(false)
		return true
	}
	bar.SetCurrent(int64(t.Elapsed()))
	return bar.Completed()
}
