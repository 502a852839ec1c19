package service

import (
	"context"
	"log"

	"countdown/internal/model"
)

// Store is the persistence gateway. Loads never fail: missing or corrupt
// data comes back as an empty collection.
type Store interface {
	SaveTimers(ctx context.Context, timers []model.Timer) error
	LoadTimers(ctx context.Context) []model.Timer
	SaveHistory(ctx context.Context, items []model.TimerHistoryItem) error
	LoadHistory(ctx context.Context) []model.TimerHistoryItem
	ClearAll(ctx context.Context) error
}

// Notifier receives alert and completion events.
type Notifier interface {
	Notify(ctx context.Context, ev model.Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, ev model.Event) error

func (f NotifierFunc) Notify(ctx context.Context, ev model.Event) error {
	return f(ctx, ev)
}

// MultiNotifier fans an event out to every notifier and returns the first
// error after trying all of them.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, ev model.Event) error {
	var first error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// LogNotifier writes events to a logger.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Notify(_ context.Context, ev model.Event) error {
	logger := n.Logger
	if logger == nil {
		logger = log.Default()
	}
	switch ev.Kind {
	case model.EventAlertFired:
		logger.Printf("[info] alert timer=%d name=%q reached %d%%", ev.TimerID, ev.TimerName, ev.Percentage)
	case model.EventTimerCompleted:
		logger.Printf("[info] completed timer=%d name=%q", ev.TimerID, ev.TimerName)
	}
	return nil
}
