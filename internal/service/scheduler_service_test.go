package service

import (
	"testing"
	"time"
)

func TestSchedulerBeginTickingOncePerID(t *testing.T) {
	s := NewSchedulerService(time.UTC, time.Second, quietLogger())
	noop := func(uint64) {}

	if !s.BeginTicking(1, noop) {
		t.Fatal("first BeginTicking returned false")
	}
	if s.BeginTicking(1, noop) {
		t.Error("second BeginTicking returned true")
	}
	s.BeginTicking(2, noop)
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if len(s.cron.Entries()) != 2 {
		t.Fatalf("cron entries = %d, want 2", len(s.cron.Entries()))
	}

	gen := s.handles[1].gen
	if !s.Current(1, gen) {
		t.Error("live generation not current")
	}
	if !s.StopTicking(1) || s.StopTicking(1) {
		t.Error("StopTicking should succeed once")
	}
	if s.Current(1, gen) {
		t.Error("stopped generation still current")
	}

	if _, err := s.ScheduleInterval(30*time.Second, func() {}); err != nil {
		t.Fatalf("ScheduleInterval: %v", err)
	}
	s.StopAll()
	if s.Len() != 0 {
		t.Errorf("Len after StopAll = %d", s.Len())
	}
	if len(s.cron.Entries()) != 1 {
		t.Errorf("StopAll removed the interval job: %d entries", len(s.cron.Entries()))
	}
}

func TestSchedulerRunsTickJobs(t *testing.T) {
	s := NewSchedulerService(time.UTC, time.Second, quietLogger())
	ticks := make(chan uint64, 4)
	s.BeginTicking(1, func(gen uint64) {
		select {
		case ticks <- gen:
		default:
		}
	})
	s.Start()
	defer s.Stop()

	select {
	case gen := <-ticks:
		if !s.Current(1, gen) {
			t.Errorf("job received stale generation %d", gen)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tick job never ran")
	}
}
