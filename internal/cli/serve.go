package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"countdown/internal/bot"
	"countdown/internal/handler"
	"countdown/internal/model"
	"countdown/internal/repository"
	"countdown/internal/router"
	"countdown/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the timer engine with the Telegram bot and HTTP API",
		Long: `serve restores the saved timers, catches running ones up with the time
spent offline and keeps them ticking until interrupted. The Telegram bot
starts when TELEGRAM_TOKEN is set and the HTTP API when HTTP_ADDR is set.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The bot needs the session and the session needs the bot as a
	// notifier, so events go through telegram once it is assigned.
	var telegram *bot.Bot
	notifier := service.NotifierFunc(func(ctx context.Context, ev model.Event) error {
		if telegram == nil {
			return nil
		}
		return telegram.Notify(ctx, ev)
	})

	a, err := openApp(os.Stderr, notifier)
	if err != nil {
		return err
	}
	logger := a.logger
	cfg := a.cfg

	if cfg.TelegramToken != "" {
		deps := bot.Deps{
			Session:      a.session,
			AllowedChats: cfg.TelegramChatIDs,
			Logger:       logger,
		}
		if a.db != nil {
			deps.Subscribers = repository.NewSubscriberRepository(a.db)
		}
		telegram, err = bot.New(cfg.TelegramToken, deps)
		if err != nil {
			_ = a.close(context.Background())
			return err
		}
	}

	a.session.LoadAll(ctx)
	a.scheduler.Start()
	if _, err := a.scheduler.ScheduleInterval(cfg.CheckpointInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.session.Checkpoint(jobCtx); err != nil {
			logger.Printf("[error] checkpoint: %v", err)
		}
	}); err != nil {
		_ = a.close(context.Background())
		return err
	}

	var wg sync.WaitGroup
	var srv *http.Server
	if cfg.HTTPAddr != "" {
		gin.SetMode(gin.ReleaseMode)
		srv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           router.New(handler.NewTimerHandler(a.session), cfg.APIToken, cfg.CORSOrigins),
			ReadHeaderTimeout: 5 * time.Second,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Printf("[info] http api listening on %s", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("[error] http server: %v", err)
				stop()
			}
		}()
	}
	if telegram != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := telegram.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("[error] bot stopped: %v", err)
			}
		}()
	}

	logger.Printf("[info] countdown engine started, %d timer(s) loaded", len(a.session.Timers()))
	<-ctx.Done()
	logger.Println("[info] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("[warn] http shutdown: %v", err)
		}
	}
	wg.Wait()

	err = a.close(shutdownCtx)
	logger.Println("[info] shutdown complete")
	return err
}
