package service

import (
	"testing"
	"time"

	"countdown/internal/clock"
)

func TestWholeSeconds(t *testing.T) {
	tests := []struct {
		gap      time.Duration
		elapsed  int
		advanced time.Duration
	}{
		{0, 0, 0},
		{999 * time.Millisecond, 0, 0},
		{time.Second, 1, time.Second},
		{3500 * time.Millisecond, 3, 3 * time.Second},
		{-2 * time.Second, 0, 0},
	}
	for _, tt := range tests {
		elapsed, next := WholeSeconds(t0, t0.Add(tt.gap))
		if elapsed != tt.elapsed || !next.Equal(t0.Add(tt.advanced)) {
			t.Errorf("WholeSeconds(gap %v) = %d, %v; want %d, +%v", tt.gap, elapsed, next.Sub(t0), tt.elapsed, tt.advanced)
		}
	}
}

func TestDriftCompensatorKeepsRemainder(t *testing.T) {
	c := clock.NewFake(t0)
	d := NewDriftCompensator(c)

	if n, _ := d.Tick(1); n != 0 {
		t.Fatalf("first tick of unmarked id = %d, want 0", n)
	}

	c.Advance(3500 * time.Millisecond)
	if n, _ := d.Tick(1); n != 3 {
		t.Fatalf("tick after 3.5s = %d, want 3", n)
	}
	if last, _ := d.LastTick(1); !last.Equal(t0.Add(3 * time.Second)) {
		t.Fatalf("last tick = %v, want t0+3s", last.Sub(t0))
	}

	c.Advance(400 * time.Millisecond)
	if n, _ := d.Tick(1); n != 0 {
		t.Fatalf("tick at 3.9s = %d, want 0", n)
	}
	c.Advance(100 * time.Millisecond)
	if n, _ := d.Tick(1); n != 1 {
		t.Fatalf("tick at 4.0s = %d, want 1", n)
	}

	d.Forget(1)
	if _, ok := d.LastTick(1); ok {
		t.Error("Forget left a last tick behind")
	}
}
