package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"countdown/internal/config"
	"countdown/internal/repository"
	"countdown/internal/service"
)

// app holds everything a command needs to drive a session.
type app struct {
	cfg       config.Config
	logger    *log.Logger
	db        *gorm.DB
	scheduler *service.SchedulerService
	session   *service.Session
}

// openApp loads the configuration, opens the configured store and builds a
// session on it. Events are logged and also passed to notifier when it is
// set. The scheduler is not started.
func openApp(logOut io.Writer, notifier service.Notifier) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := log.New(logOut, "", log.LstdFlags)

	a := &app{cfg: cfg, logger: logger}
	var store service.Store
	switch cfg.StorageBackend {
	case config.BackendFile:
		store = repository.NewFileStore(afero.NewOsFs(), cfg.DataDir, logger)
	default:
		db, err := repository.NewDB(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		a.db = db
		store = repository.NewStateRepository(db, logger)
	}

	var events service.Notifier = service.LogNotifier{Logger: logger}
	if notifier != nil {
		events = service.MultiNotifier{events, notifier}
	}
	a.scheduler = service.NewSchedulerService(time.Local, cfg.TickInterval, logger)
	a.session = service.NewSession(service.Options{
		Store:     store,
		Scheduler: a.scheduler,
		Notifier:  events,
		Logger:    logger,
	})
	return a, nil
}

// close flushes the session, then stops the scheduler and the database.
func (a *app) close(ctx context.Context) error {
	err := a.session.Close(ctx)
	a.scheduler.Stop()
	if a.db != nil {
		if sqlDB, dbErr := a.db.DB(); dbErr == nil {
			err = errors.Join(err, sqlDB.Close())
		}
	}
	return err
}

// withSession runs fn against the saved state: load, apply, save.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *service.Session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(cmd.ErrOrStderr(), nil)
	if err != nil {
		return err
	}
	a.session.LoadAll(ctx)

	runErr := fn(ctx, a.session)
	if err := a.close(ctx); err != nil {
		a.logger.Printf("[warn] save state: %v", err)
	}
	return runErr
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timer id %q", raw)
	}
	return id, nil
}
