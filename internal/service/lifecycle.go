package service

import (
	"time"

	"countdown/internal/model"
)

// StartTimer moves a paused timer to running. Completed and already running
// timers are left alone.
func StartTimer(t *model.Timer, now time.Time) bool {
	if t.Status == model.StatusCompleted || t.Status == model.StatusRunning {
		return false
	}
	t.Status = model.StatusRunning
	t.LastUpdated = now.UnixMilli()
	return true
}

// PauseTimer moves a non-completed timer to paused. It reports whether the
// timer was running.
func PauseTimer(t *model.Timer, now time.Time) bool {
	if t.Status == model.StatusCompleted {
		return false
	}
	wasRunning := t.Status == model.StatusRunning
	t.Status = model.StatusPaused
	t.LastUpdated = now.UnixMilli()
	return wasRunning
}

// ResetTimer restores the full duration and re-arms every alert. It is the
// only way out of completed.
func ResetTimer(t *model.Timer, now time.Time) {
	t.Status = model.StatusPaused
	t.RemainingTime = t.Duration
	for i := range t.Alerts {
		t.Alerts[i].Triggered = false
	}
	t.LastUpdated = now.UnixMilli()
}

// TickResult describes what ApplyTick did.
type TickResult struct {
	Changed   bool
	Completed bool
}

// ApplyTick counts elapsed seconds off a running timer. at is the tick
// timestamp recorded as lastUpdated. The completion check runs against the
// pre-mutation status so a timer completes at most once.
func ApplyTick(t *model.Timer, elapsed int, at time.Time) TickResult {
	if t.Status != model.StatusRunning || elapsed <= 0 {
		return TickResult{}
	}
	prev := t.Status
	remaining := t.RemainingTime - elapsed
	if remaining < 0 {
		remaining = 0
	}
	t.RemainingTime = remaining
	t.LastUpdated = at.UnixMilli()

	res := TickResult{Changed: true}
	if remaining == 0 && prev != model.StatusCompleted {
		t.Status = model.StatusCompleted
		res.Completed = true
	}
	return res
}

// clampRemaining forces remainingTime into [0, duration] and reports
// whether it had to.
func clampRemaining(t *model.Timer) bool {
	switch {
	case t.RemainingTime < 0:
		t.RemainingTime = 0
		return true
	case t.RemainingTime > t.Duration:
		t.RemainingTime = t.Duration
		return true
	}
	return false
}
