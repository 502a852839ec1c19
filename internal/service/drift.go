package service

import (
	"time"

	"countdown/internal/clock"
)

// WholeSeconds converts the wall-clock gap between last and now into whole
// elapsed seconds. The returned timestamp is last advanced by exactly those
// seconds, so the sub-second remainder carries into the next measurement.
// Gaps under one second yield zero and leave last unchanged.
func WholeSeconds(last, now time.Time) (int, time.Time) {
	drift := now.Sub(last)
	if drift < time.Second {
		return 0, last
	}
	elapsed := int(drift / time.Second)
	return elapsed, last.Add(time.Duration(elapsed) * time.Second)
}

// DriftCompensator keeps the last counted tick per timer. It is not safe for
// concurrent use; the Session serializes access.
type DriftCompensator struct {
	clock    clock.Clock
	lastTick map[int64]time.Time
}

func NewDriftCompensator(c clock.Clock) *DriftCompensator {
	return &DriftCompensator{clock: c, lastTick: make(map[int64]time.Time)}
}

// Mark records at as the last counted tick for id.
func (d *DriftCompensator) Mark(id int64, at time.Time) {
	d.lastTick[id] = at
}

// Tick returns the whole seconds elapsed for id since its last counted tick
// and the new last-tick timestamp. An unmarked id is marked at now and
// reports zero.
func (d *DriftCompensator) Tick(id int64) (int, time.Time) {
	now := d.clock.Now()
	last, ok := d.lastTick[id]
	if !ok {
		d.lastTick[id] = now
		return 0, now
	}
	elapsed, next := WholeSeconds(last, now)
	if elapsed > 0 {
		d.lastTick[id] = next
	}
	return elapsed, next
}

// LastTick returns the last counted tick for id.
func (d *DriftCompensator) LastTick(id int64) (time.Time, bool) {
	t, ok := d.lastTick[id]
	return t, ok
}

func (d *DriftCompensator) Forget(id int64) {
	delete(d.lastTick, id)
}

func (d *DriftCompensator) Clear() {
	d.lastTick = make(map[int64]time.Time)
}
