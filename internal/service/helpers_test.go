package service

import (
	"context"
	"errors"
	"io"
	"log"
	"strconv"
	"sync"
	"testing"
	"time"

	"countdown/internal/clock"
	"countdown/internal/model"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type memStore struct {
	mu        sync.Mutex
	timers    []model.Timer
	history   []model.TimerHistoryItem
	saves     int
	failSaves bool
}

func (m *memStore) SaveTimers(_ context.Context, timers []model.Timer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return errors.New("disk full")
	}
	m.saves++
	m.timers = nil
	for _, t := range timers {
		m.timers = append(m.timers, t.Clone())
	}
	return nil
}

func (m *memStore) LoadTimers(_ context.Context) []model.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Timer, 0, len(m.timers))
	for _, t := range m.timers {
		out = append(out, t.Clone())
	}
	return out
}

func (m *memStore) SaveHistory(_ context.Context, items []model.TimerHistoryItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return errors.New("disk full")
	}
	m.history = append([]model.TimerHistoryItem(nil), items...)
	return nil
}

func (m *memStore) LoadHistory(_ context.Context) []model.TimerHistoryItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.TimerHistoryItem{}, m.history...)
}

func (m *memStore) ClearAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timers = nil
	m.history = nil
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recorder) Notify(_ context.Context, ev model.Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		s := string(ev.Kind)
		if ev.Kind == model.EventAlertFired {
			s += ":" + strconv.Itoa(ev.Percentage)
		}
		out = append(out, s)
	}
	return out
}

type fixture struct {
	session *Session
	clock   *clock.Fake
	store   *memStore
	events  *recorder
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		clock:  clock.NewFake(t0),
		store:  &memStore{},
		events: &recorder{},
	}
	fx.session = NewSession(Options{
		Store:     fx.store,
		Notifier:  fx.events,
		Scheduler: NewSchedulerService(time.UTC, time.Second, quietLogger()),
		Clock:     fx.clock,
		Logger:    quietLogger(),
	})
	return fx
}

func (fx *fixture) add(t *testing.T, name, category string, duration int, alerts ...int) model.Timer {
	t.Helper()
	tm, err := fx.session.AddTimer(context.Background(), TimerInput{
		Name:     name,
		Category: category,
		Duration: duration,
		Alerts:   alerts,
	})
	if err != nil {
		t.Fatalf("AddTimer(%q): %v", name, err)
	}
	return tm
}

// run advances the clock one second at a time, ticking id after each step.
func (fx *fixture) run(id int64, seconds int) {
	for i := 0; i < seconds; i++ {
		fx.clock.Advance(time.Second)
		fx.session.Tick(context.Background(), id)
	}
}

func (fx *fixture) timer(t *testing.T, id int64) model.Timer {
	t.Helper()
	tm, err := fx.session.Timer(id)
	if err != nil {
		t.Fatalf("Timer(%d): %v", id, err)
	}
	return tm
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
