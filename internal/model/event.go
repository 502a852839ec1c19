package model

import "time"

// EventKind distinguishes notification events.
type EventKind string

const (
	EventAlertFired     EventKind = "alert_fired"
	EventTimerCompleted EventKind = "timer_completed"
)

// Event is emitted to the notification sink. Delivery is at-least-once;
// ID lets consumers drop duplicates.
type Event struct {
	ID         string    `json:"eventId"`
	Kind       EventKind `json:"kind"`
	TimerID    int64     `json:"timerId"`
	TimerName  string    `json:"timerName"`
	Category   string    `json:"category,omitempty"`
	Percentage int       `json:"percentage,omitempty"`
	At         time.Time `json:"at"`
}
