package model

import "time"

// TimerHistoryItem records one completion. It is never modified after creation.
type TimerHistoryItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Duration    int       `json:"duration"`
	CompletedAt time.Time `json:"completedAt"`
}

// HistoryExport is the shareable snapshot of the history log.
type HistoryExport struct {
	ExportDate time.Time          `json:"exportDate"`
	Items      []TimerHistoryItem `json:"items"`
}
