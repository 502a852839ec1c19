package model

// Status is the lifecycle state of a Timer.
type Status string

const (
	StatusPaused    Status = "paused"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
)

const (
	MaxDurationSeconds = 24 * 60 * 60
	MaxAlerts          = 5
	MaxCategoryLength  = 30
)

// PresetAlerts are the thresholds offered when creating a timer interactively.
var PresetAlerts = []int{25, 50, 75, 80}

// Alert is a one-shot percentage-of-completion threshold.
type Alert struct {
	Percentage int  `json:"percentage"`
	Triggered  bool `json:"triggered"`
}

// Timer is a single countdown.
type Timer struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Duration      int     `json:"duration"`
	RemainingTime int     `json:"remainingTime"`
	Status        Status  `json:"status"`
	Alerts        []Alert `json:"alerts"`
	LastUpdated   int64   `json:"lastUpdated,omitempty"` // unix millis
}

// Clone returns a copy that does not share the alerts slice.
func (t Timer) Clone() Timer {
	out := t
	if t.Alerts != nil {
		out.Alerts = make([]Alert, len(t.Alerts))
		copy(out.Alerts, t.Alerts)
	}
	return out
}

// Elapsed returns the seconds already counted down.
func (t Timer) Elapsed() int {
	return t.Duration - t.RemainingTime
}

// Progress returns completion in percent, clamped to [0, 100].
func (t Timer) Progress() float64 {
	if t.Duration <= 0 {
		return 0
	}
	pct := float64(t.Duration-t.RemainingTime) / float64(t.Duration) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
