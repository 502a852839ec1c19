package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"countdown/internal/model"
)

// CategoryOp is a lifecycle operation applied to every timer of a category.
type CategoryOp string

const (
	CategoryStart CategoryOp = "start"
	CategoryPause CategoryOp = "pause"
	CategoryReset CategoryOp = "reset"
)

func ParseCategoryOp(s string) (CategoryOp, error) {
	switch op := CategoryOp(strings.ToLower(strings.TrimSpace(s))); op {
	case CategoryStart, CategoryPause, CategoryReset:
		return op, nil
	}
	return "", &ValidationError{Field: "op", Message: fmt.Sprintf("unknown category operation %q", s)}
}

// Eligible reports whether op applies to a timer in the given status.
// Completed timers only take part in reset.
func (op CategoryOp) Eligible(status model.Status) bool {
	if status == model.StatusCompleted {
		return op == CategoryReset
	}
	return true
}

// ApplyToCategory runs op on every eligible timer whose category equals
// category and saves once. It returns how many timers were affected.
func (s *Session) ApplyToCategory(ctx context.Context, category string, op CategoryOp) int {
	category = strings.TrimSpace(category)

	affected := 0
	events := s.locked(func() {
		completed := false
		for i := range s.timers {
			t := &s.timers[i]
			if t.Category != category || !op.Eligible(t.Status) {
				continue
			}
			switch op {
			case CategoryStart:
				if s.startLocked(t) {
					affected++
				}
			case CategoryPause:
				if s.pauseLocked(t) {
					completed = true
				}
				affected++
			case CategoryReset:
				s.resetLocked(t)
				affected++
			}
		}
		if affected > 0 {
			s.logger.Printf("[info] category %q %s: %d timers", category, op, affected)
			s.persist(ctx, true, completed)
		}
	})
	s.dispatch(ctx, events)
	return affected
}

func (s *Session) StartCategory(ctx context.Context, category string) int {
	return s.ApplyToCategory(ctx, category, CategoryStart)
}

func (s *Session) PauseCategory(ctx context.Context, category string) int {
	return s.ApplyToCategory(ctx, category, CategoryPause)
}

func (s *Session) ResetCategory(ctx context.Context, category string) int {
	return s.ApplyToCategory(ctx, category, CategoryReset)
}

// Categories lists every category in use with per-status counts, by name.
func (s *Session) Categories() []model.CategorySummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName := make(map[string]*model.CategorySummary)
	for _, t := range s.timers {
		sum, ok := byName[t.Category]
		if !ok {
			sum = &model.CategorySummary{Name: t.Category}
			byName[t.Category] = sum
		}
		sum.Total++
		switch t.Status {
		case model.StatusRunning:
			sum.Running++
		case model.StatusPaused:
			sum.Paused++
		case model.StatusCompleted:
			sum.Completed++
		}
	}

	out := make([]model.CategorySummary, 0, len(byName))
	for _, sum := range byName {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// TimersInCategory returns the timers tagged with category in creation order.
func (s *Session) TimersInCategory(category string) []model.Timer {
	category = strings.TrimSpace(category)
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Timer
	for _, t := range s.timers {
		if t.Category == category {
			out = append(out, t.Clone())
		}
	}
	return out
}
