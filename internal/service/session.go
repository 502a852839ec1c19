package service

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"countdown/internal/clock"
	"countdown/internal/model"
)

// ErrNotFound is returned by lookups for an unknown timer id.
var ErrNotFound = errors.New("timer not found")

const defaultSaveTimeout = 10 * time.Second

// Options configure a Session. Store and Scheduler are required.
type Options struct {
	Store       Store
	Scheduler   *SchedulerService
	Notifier    Notifier
	Clock       clock.Clock
	Logger      *log.Logger
	SaveTimeout time.Duration
}

// Session owns the timer collection and the history log. Every mutation
// goes through its lifecycle operations and is serialized by mu, including
// the per-timer tick jobs the scheduler runs in their own goroutines.
type Session struct {
	mu      sync.Mutex
	timers  []model.Timer
	index   map[int64]int
	history *HistoryLog
	lastID  int64
	events  []model.Event

	drift       *DriftCompensator
	scheduler   *SchedulerService
	store       Store
	notifier    Notifier
	clock       clock.Clock
	logger      *log.Logger
	saveTimeout time.Duration
}

func NewSession(opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{Logger: opts.Logger}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = NewSchedulerService(time.Local, DefaultTickInterval, log.New(io.Discard, "", 0))
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = defaultSaveTimeout
	}
	return &Session{
		index:       make(map[int64]int),
		history:     NewHistoryLog(nil),
		drift:       NewDriftCompensator(opts.Clock),
		scheduler:   opts.Scheduler,
		store:       opts.Store,
		notifier:    opts.Notifier,
		clock:       opts.Clock,
		logger:      opts.Logger,
		saveTimeout: opts.SaveTimeout,
	}
}

// AddTimer validates the input and appends a paused timer.
func (s *Session) AddTimer(ctx context.Context, in TimerInput) (model.Timer, error) {
	clean, err := in.Validate()
	if err != nil {
		return model.Timer{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id

	t := model.Timer{
		ID:            id,
		Name:          clean.Name,
		Category:      clean.Category,
		Duration:      clean.Duration,
		RemainingTime: clean.Duration,
		Status:        model.StatusPaused,
		Alerts:        alertsFromPercentages(clean.Alerts),
		LastUpdated:   now.UnixMilli(),
	}
	s.index[id] = len(s.timers)
	s.timers = append(s.timers, t)
	s.logger.Printf("[info] timer added id=%d name=%q category=%q duration=%ds alerts=%v", id, t.Name, t.Category, t.Duration, clean.Alerts)

	s.persist(ctx, true, false)
	return t.Clone(), nil
}

// Start begins counting down id. Unknown, running and completed timers are
// left untouched and Start reports false.
func (s *Session) Start(ctx context.Context, id int64) bool {
	var changed bool
	events := s.locked(func() {
		t := s.find(id)
		changed = t != nil && s.startLocked(t)
		if changed {
			s.persist(ctx, true, false)
		}
	})
	s.dispatch(ctx, events)
	return changed
}

// Pause stops counting down id. Whole seconds that elapsed since the last
// tick are counted first.
func (s *Session) Pause(ctx context.Context, id int64) bool {
	var paused bool
	events := s.locked(func() {
		t := s.find(id)
		if t == nil || t.Status == model.StatusCompleted {
			return
		}
		completed := s.pauseLocked(t)
		s.persist(ctx, true, completed)
		paused = true
	})
	s.dispatch(ctx, events)
	return paused
}

// Reset restores id to its full duration, paused, with every alert re-armed.
func (s *Session) Reset(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(id)
	if t == nil {
		return false
	}
	s.resetLocked(t)
	s.persist(ctx, true, false)
	return true
}

// Tick applies one scheduler tick to id right away. It reports whether the
// timer changed.
func (s *Session) Tick(ctx context.Context, id int64) bool {
	var changed bool
	events := s.locked(func() {
		var completed bool
		changed, completed = s.advanceLocked(id)
		if changed {
			s.persist(ctx, true, completed)
		}
	})
	s.dispatch(ctx, events)
	return changed
}

// Sync ticks every running timer once so reads reflect the current time.
func (s *Session) Sync(ctx context.Context) {
	events := s.locked(func() {
		var changed, completed bool
		for _, id := range s.runningIDs() {
			c, done := s.advanceLocked(id)
			changed = changed || c
			completed = completed || done
		}
		if changed {
			s.persist(ctx, true, completed)
		}
	})
	s.dispatch(ctx, events)
}

// onTick is the body of a timer's scheduler job. A panic is logged and
// ends only this tick; the next one runs as usual.
func (s *Session) onTick(id int64, gen uint64) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("[error] tick timer=%d: %v", id, r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	events := s.locked(func() {
		if !s.scheduler.Current(id, gen) {
			return
		}
		changed, completed := s.advanceLocked(id)
		if changed {
			s.persist(ctx, true, completed)
		}
	})
	s.dispatch(ctx, events)
}

// LoadAll replaces the in-memory state with what the store holds, applies
// one catch-up tick to each running timer for the time the process was
// away, and resumes ticking.
func (s *Session) LoadAll(ctx context.Context) {
	timers := s.store.LoadTimers(ctx)
	items := s.store.LoadHistory(ctx)

	events := s.locked(func() { s.loadLocked(ctx, timers, items) })
	s.dispatch(ctx, events)
}

func (s *Session) loadLocked(ctx context.Context, timers []model.Timer, items []model.TimerHistoryItem) {
	s.scheduler.StopAll()
	s.drift.Clear()
	s.events = nil
	s.timers = nil
	s.index = make(map[int64]int)
	s.history = NewHistoryLog(items)
	s.lastID = 0
	dirty := false
	for _, t := range timers {
		if s.admitLoaded(&t) {
			dirty = true
		}
	}

	now := s.clock.Now()
	completed := false
	for _, id := range s.runningIDs() {
		t := s.find(id)
		last := now
		if t.LastUpdated > 0 {
			last = time.UnixMilli(t.LastUpdated)
		}
		elapsed, at := WholeSeconds(last, now)
		s.drift.Mark(id, at)
		res := ApplyTick(t, elapsed, at)
		if res.Changed {
			dirty = true
		}
		if res.Completed {
			s.completeLocked(t, now)
			completed = true
			continue
		}
		if s.fireAlertLocked(t, now) {
			dirty = true
		}
		s.scheduler.BeginTicking(id, func(gen uint64) { s.onTick(id, gen) })
	}
	s.logger.Printf("[info] loaded %d timers (%d running) and %d history items", len(s.timers), s.scheduler.Len(), s.history.Len())

	if dirty || completed {
		s.persist(ctx, true, completed)
	}
}

// ClearAll wipes every timer and the history log, in memory and in the
// store. Memory is cleared even when the store fails.
func (s *Session) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduler.StopAll()
	s.drift.Clear()
	s.timers = nil
	s.index = make(map[int64]int)
	s.history.Clear()
	s.events = nil

	if err := s.store.ClearAll(ctx); err != nil {
		s.logger.Printf("[error] clear store: %v", err)
		return err
	}
	s.logger.Printf("[info] cleared all timers and history")
	return nil
}

// Checkpoint flushes the whole state to the store.
func (s *Session) Checkpoint(ctx context.Context) error {
	var timers []model.Timer
	var items []model.TimerHistoryItem
	s.locked(func() {
		timers = s.snapshotLocked()
		items = s.history.Items()
	})

	errTimers := s.store.SaveTimers(ctx, timers)
	if errTimers != nil {
		s.logger.Printf("[error] checkpoint timers: %v", errTimers)
	}
	errHistory := s.store.SaveHistory(ctx, items)
	if errHistory != nil {
		s.logger.Printf("[error] checkpoint history: %v", errHistory)
	}
	return errors.Join(errTimers, errHistory)
}

// Close cancels every tick handle and writes a final checkpoint. The
// scheduler itself is stopped by its owner.
func (s *Session) Close(ctx context.Context) error {
	s.locked(s.scheduler.StopAll)
	return s.Checkpoint(ctx)
}

// Timers returns a copy of every timer in creation order.
func (s *Session) Timers() []model.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Timer returns a copy of the timer with the given id.
func (s *Session) Timer(id int64) (model.Timer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(id)
	if t == nil {
		return model.Timer{}, ErrNotFound
	}
	return t.Clone(), nil
}

// History returns completions newest first.
func (s *Session) History() []model.TimerHistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Recent()
}

// Export snapshots the history log for sharing.
func (s *Session) Export() model.HistoryExport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Export(s.clock.Now())
}

// Ticking reports whether id has a live scheduler handle.
func (s *Session) Ticking(id int64) bool {
	return s.scheduler.Active(id)
}

func (s *Session) startLocked(t *model.Timer) bool {
	now := s.clock.Now()
	if !StartTimer(t, now) {
		return false
	}
	id := t.ID
	s.drift.Mark(id, now)
	s.scheduler.BeginTicking(id, func(gen uint64) { s.onTick(id, gen) })
	s.logger.Printf("[info] timer started id=%d remaining=%ds", id, t.RemainingTime)
	return true
}

// pauseLocked cancels ticking before touching state so a late job cannot
// count the paused interval. It reports whether settling completed the timer.
func (s *Session) pauseLocked(t *model.Timer) bool {
	s.scheduler.StopTicking(t.ID)
	completed := false
	if t.Status == model.StatusRunning {
		if elapsed, at := s.drift.Tick(t.ID); elapsed > 0 {
			if ApplyTick(t, elapsed, at).Completed {
				s.completeLocked(t, s.clock.Now())
				completed = true
			}
		}
	}
	s.drift.Forget(t.ID)
	if !completed {
		PauseTimer(t, s.clock.Now())
		s.logger.Printf("[info] timer paused id=%d remaining=%ds", t.ID, t.RemainingTime)
	}
	return completed
}

func (s *Session) resetLocked(t *model.Timer) {
	s.scheduler.StopTicking(t.ID)
	s.drift.Forget(t.ID)
	ResetTimer(t, s.clock.Now())
	s.logger.Printf("[info] timer reset id=%d", t.ID)
}

// advanceLocked runs one tick for id: drift, lifecycle, then alerts.
func (s *Session) advanceLocked(id int64) (changed, completed bool) {
	t := s.find(id)
	if t == nil || t.Status != model.StatusRunning {
		s.scheduler.StopTicking(id)
		s.drift.Forget(id)
		return false, false
	}

	elapsed, at := s.drift.Tick(id)
	res := ApplyTick(t, elapsed, at)
	if clampRemaining(t) {
		s.logger.Printf("[warn] timer %d remaining time out of range, clamped to %d", id, t.RemainingTime)
	}
	if res.Completed {
		s.completeLocked(t, s.clock.Now())
		return true, true
	}

	fired := false
	if len(t.Alerts) > 0 && t.Status == model.StatusRunning {
		fired = s.fireAlertLocked(t, s.clock.Now())
	}
	return res.Changed || fired, false
}

func (s *Session) completeLocked(t *model.Timer, now time.Time) {
	s.scheduler.StopTicking(t.ID)
	s.drift.Forget(t.ID)
	s.history.Record(historyItemFor(t, now))
	s.events = append(s.events, s.newEvent(model.EventTimerCompleted, t, 0, now))
	s.logger.Printf("[info] timer completed id=%d name=%q", t.ID, t.Name)
}

func (s *Session) fireAlertLocked(t *model.Timer, now time.Time) bool {
	alert, ok := FireNextAlert(t)
	if !ok {
		return false
	}
	s.events = append(s.events, s.newEvent(model.EventAlertFired, t, alert.Percentage, now))
	s.logger.Printf("[info] alert fired id=%d percentage=%d", t.ID, alert.Percentage)
	return true
}

func (s *Session) newEvent(kind model.EventKind, t *model.Timer, pct int, now time.Time) model.Event {
	return model.Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		TimerID:    t.ID,
		TimerName:  t.Name,
		Category:   t.Category,
		Percentage: pct,
		At:         now.UTC(),
	}
}

// admitLoaded repairs a stored timer and adds it. It reports whether the
// stored copy needed changes; broken entries are dropped.
func (s *Session) admitLoaded(t *model.Timer) bool {
	if t.Duration <= 0 || t.Duration > model.MaxDurationSeconds {
		s.logger.Printf("[warn] dropping stored timer %d with duration %d", t.ID, t.Duration)
		return true
	}
	if _, dup := s.index[t.ID]; dup {
		s.logger.Printf("[warn] dropping duplicate stored timer %d", t.ID)
		return true
	}
	repaired := clampRemaining(t)
	switch t.Status {
	case model.StatusRunning, model.StatusPaused, model.StatusCompleted:
	default:
		t.Status = model.StatusPaused
		repaired = true
	}
	if t.RemainingTime == 0 && t.Status == model.StatusPaused {
		t.Status = model.StatusCompleted
		repaired = true
	}
	if t.Status == model.StatusCompleted && t.RemainingTime != 0 {
		t.RemainingTime = 0
		repaired = true
	}
	sort.SliceStable(t.Alerts, func(i, j int) bool { return t.Alerts[i].Percentage < t.Alerts[j].Percentage })

	s.index[t.ID] = len(s.timers)
	s.timers = append(s.timers, t.Clone())
	if t.ID > s.lastID {
		s.lastID = t.ID
	}
	return repaired
}

func (s *Session) find(id int64) *model.Timer {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return &s.timers[i]
}

func (s *Session) runningIDs() []int64 {
	var ids []int64
	for _, t := range s.timers {
		if t.Status == model.StatusRunning {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func (s *Session) snapshotLocked() []model.Timer {
	out := make([]model.Timer, 0, len(s.timers))
	for _, t := range s.timers {
		out = append(out, t.Clone())
	}
	return out
}

// locked runs fn under the session lock and returns the events it queued.
// The lock is released even when fn panics.
func (s *Session) locked(fn func()) []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	return s.takeEvents()
}

func (s *Session) takeEvents() []model.Event {
	events := s.events
	s.events = nil
	return events
}

// persist saves the requested collections. Failures are logged and the
// in-memory state stays authoritative.
func (s *Session) persist(ctx context.Context, timers, history bool) {
	if timers {
		if err := s.store.SaveTimers(ctx, s.snapshotLocked()); err != nil {
			s.logger.Printf("[error] save timers: %v", err)
		}
	}
	if history {
		if err := s.store.SaveHistory(ctx, s.history.Items()); err != nil {
			s.logger.Printf("[error] save history: %v", err)
		}
	}
}

// dispatch delivers events outside the session lock.
func (s *Session) dispatch(ctx context.Context, events []model.Event) {
	for _, ev := range events {
		if err := s.notifier.Notify(ctx, ev); err != nil {
			s.logger.Printf("[error] notify %s timer=%d: %v", ev.Kind, ev.TimerID, err)
		}
	}
}
