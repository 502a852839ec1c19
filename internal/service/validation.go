package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"countdown/internal/model"
)

// ErrValidation matches every *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError rejects caller input before any state changes.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TimerInput represents data required to create a timer.
type TimerInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Duration int    `json:"duration"`
	Alerts   []int  `json:"alerts"`
}

// Validate checks the input and returns a normalized copy with trimmed text
// and ascending alert percentages.
func (in TimerInput) Validate() (TimerInput, error) {
	out := TimerInput{
		Name:     strings.TrimSpace(in.Name),
		Category: strings.TrimSpace(in.Category),
		Duration: in.Duration,
	}

	if out.Name == "" {
		return out, &ValidationError{Field: "name", Message: "name is required"}
	}
	if out.Category == "" {
		return out, &ValidationError{Field: "category", Message: "category is required"}
	}
	if utf8.RuneCountInString(out.Category) > model.MaxCategoryLength {
		return out, &ValidationError{Field: "category", Message: fmt.Sprintf("category cannot exceed %d characters", model.MaxCategoryLength)}
	}
	if out.Duration <= 0 {
		return out, &ValidationError{Field: "duration", Message: "duration must be a positive number of seconds"}
	}
	if out.Duration > model.MaxDurationSeconds {
		return out, &ValidationError{Field: "duration", Message: "duration cannot exceed 24 hours"}
	}
	if len(in.Alerts) > model.MaxAlerts {
		return out, &ValidationError{Field: "alerts", Message: fmt.Sprintf("at most %d alerts are allowed", model.MaxAlerts)}
	}

	seen := make(map[int]struct{}, len(in.Alerts))
	for _, p := range in.Alerts {
		if p < 1 || p > 99 {
			return out, &ValidationError{Field: "alerts", Message: fmt.Sprintf("alert percentage %d must be between 1 and 99", p)}
		}
		if _, dup := seen[p]; dup {
			return out, &ValidationError{Field: "alerts", Message: fmt.Sprintf("duplicate alert percentage %d", p)}
		}
		seen[p] = struct{}{}
		out.Alerts = append(out.Alerts, p)
	}
	sort.Ints(out.Alerts)
	return out, nil
}

func alertsFromPercentages(pcts []int) []model.Alert {
	alerts := make([]model.Alert, 0, len(pcts))
	for _, p := range pcts {
		alerts = append(alerts, model.Alert{Percentage: p})
	}
	return alerts
}
