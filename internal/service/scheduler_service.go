package service

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultTickInterval is the period of each timer's tick job.
const DefaultTickInterval = time.Second

type tickHandle struct {
	entry cron.EntryID
	gen   uint64
}

// SchedulerService wraps cron-based jobs. Each running timer owns exactly one
// periodic entry; handles live only in process memory.
type SchedulerService struct {
	cron     *cron.Cron
	interval time.Duration

	mu      sync.Mutex
	handles map[int64]tickHandle
	nextGen uint64
}

func NewSchedulerService(loc *time.Location, interval time.Duration, logger *log.Logger) *SchedulerService {
	if loc == nil {
		loc = time.Local
	}
	if interval < time.Second {
		interval = DefaultTickInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	cl := cron.PrintfLogger(logger)
	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		interval: interval,
		handles:  make(map[int64]tickHandle),
	}
}

// BeginTicking registers a periodic job for id. The job receives the handle
// generation so it can detect that it was cancelled after being dispatched.
// It is a no-op when id already has a handle.
func (s *SchedulerService) BeginTicking(id int64, job func(gen uint64)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handles[id]; ok {
		return false
	}
	s.nextGen++
	gen := s.nextGen
	entry := s.cron.Schedule(cron.Every(s.interval), cron.FuncJob(func() { job(gen) }))
	s.handles[id] = tickHandle{entry: entry, gen: gen}
	return true
}

// StopTicking cancels the handle for id if present.
func (s *SchedulerService) StopTicking(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[id]
	if !ok {
		return false
	}
	s.cron.Remove(h.entry)
	delete(s.handles, id)
	return true
}

// StopAll cancels every timer handle. Interval jobs are kept.
func (s *SchedulerService) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, h := range s.handles {
		s.cron.Remove(h.entry)
		delete(s.handles, id)
	}
}

// Current reports whether gen is still the live handle for id.
func (s *SchedulerService) Current(id int64, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[id]
	return ok && h.gen == gen
}

// Active reports whether id has a handle.
func (s *SchedulerService) Active(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.handles[id]
	return ok
}

// Len returns the number of live timer handles.
func (s *SchedulerService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for running jobs to return.
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ScheduleInterval registers a periodic job every given duration.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	// Convert to cron spec: every N seconds.
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	spec := fmt.Sprintf("@every %ds", seconds)
	return s.cron.AddFunc(spec, job)
}
