package clock_test

import (
	"testing"
	"time"

	"countdown/internal/clock"
)

func TestFakeAdvance(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := clock.NewFake(start)
	c.Advance(1500 * time.Millisecond)
	if got := c.Now().Sub(start); got != 1500*time.Millisecond {
		t.Errorf("Advance: elapsed = %v, want 1.5s", got)
	}
	later := start.Add(time.Hour)
	c.Set(later)
	if !c.Now().Equal(later) {
		t.Errorf("Set: now = %v, want %v", c.Now(), later)
	}
}
