package model

import "time"

// Storage keys for the persisted collections.
const (
	KeyTimers  = "timers"
	KeyHistory = "timer_history"
)

// StateEntry is one key/value row holding a JSON document.
type StateEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
