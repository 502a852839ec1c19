package model

// CategorySummary groups timers sharing a category tag.
type CategorySummary struct {
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Running   int    `json:"running"`
	Paused    int    `json:"paused"`
	Completed int    `json:"completed"`
}
