package service

import "countdown/internal/model"

// NextAlert returns the index of the lowest untriggered alert whose threshold
// the timer has reached, or -1. The comparison is done in integers:
// pct >= p  <=>  (duration-remaining)*100 >= p*duration.
func NextAlert(t *model.Timer) int {
	if t.Duration <= 0 {
		return -1
	}
	done := t.Duration - t.RemainingTime
	best := -1
	for i, a := range t.Alerts {
		if a.Triggered || a.Percentage*t.Duration > done*100 {
			continue
		}
		if best == -1 || a.Percentage < t.Alerts[best].Percentage {
			best = i
		}
	}
	return best
}

// FireNextAlert marks the next due alert as triggered and returns it.
func FireNextAlert(t *model.Timer) (model.Alert, bool) {
	i := NextAlert(t)
	if i < 0 {
		return model.Alert{}, false
	}
	t.Alerts[i].Triggered = true
	return t.Alerts[i], true
}

// PendingAlerts counts alerts that have not fired yet.
func PendingAlerts(t *model.Timer) int {
	n := 0
	for _, a := range t.Alerts {
		if !a.Triggered {
			n++
		}
	}
	return n
}
