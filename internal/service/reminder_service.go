package service

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"countdown/internal/model"
)

// ReminderService builds human-readable messages for chat notifications.
type ReminderService struct {
	session *Session
}

func NewReminderService(session *Session) *ReminderService {
	return &ReminderService{session: session}
}

// StatusSummary renders every timer grouped by category.
func (s *ReminderService) StatusSummary(now time.Time) string {
	return StatusSummary(s.session.Timers(), now)
}

// HistorySummary renders the most recent completions, newest first.
func (s *ReminderService) HistorySummary(limit int, now time.Time) string {
	return HistorySummary(s.session.History(), limit, now)
}

func StatusSummary(timers []model.Timer, now time.Time) string {
	var builder strings.Builder
	builder.WriteString("⏱ <b>Timers</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n", now.Format("2006-01-02 15:04")))

	if len(timers) == 0 {
		builder.WriteString("\nNo timers yet. Use /add to create one.\n")
		return strings.TrimSpace(builder.String())
	}

	groups := make(map[string][]model.Timer)
	var names []string
	for _, t := range timers {
		if _, ok := groups[t.Category]; !ok {
			names = append(names, t.Category)
		}
		groups[t.Category] = append(groups[t.Category], t)
	}
	sort.Strings(names)

	for _, name := range names {
		builder.WriteString(fmt.Sprintf("\n📂 <b>%s</b>\n", html.EscapeString(name)))
		for _, t := range groups[name] {
			builder.WriteString(formatTimer(t))
		}
	}
	return strings.TrimSpace(builder.String())
}

func formatTimer(t model.Timer) string {
	var sb strings.Builder

	icon := "⏸"
	switch t.Status {
	case model.StatusRunning:
		icon = "▶️"
	case model.StatusCompleted:
		icon = "✅"
	}

	sb.WriteString(fmt.Sprintf("%s %s · %s / %s (%.0f%%)",
		icon,
		html.EscapeString(t.Name),
		FormatClock(t.RemainingTime),
		FormatClock(t.Duration),
		t.Progress(),
	))

	if len(t.Alerts) > 0 {
		marks := make([]string, 0, len(t.Alerts))
		for _, a := range t.Alerts {
			mark := fmt.Sprintf("%d%%", a.Percentage)
			if a.Triggered {
				mark = "<s>" + mark + "</s>"
			}
			marks = append(marks, mark)
		}
		sb.WriteString("\n   🔔 " + strings.Join(marks, " "))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func HistorySummary(items []model.TimerHistoryItem, limit int, now time.Time) string {
	var builder strings.Builder
	builder.WriteString("📜 <b>History</b>\n")
	if len(items) == 0 {
		builder.WriteString("Nothing completed yet.\n")
		return strings.TrimSpace(builder.String())
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	for _, item := range items {
		builder.WriteString(fmt.Sprintf("✅ %s <i>(%s)</i> · %s · %s\n",
			html.EscapeString(item.Name),
			html.EscapeString(item.Category),
			FormatClock(item.Duration),
			humanize.RelTime(item.CompletedAt, now, "ago", "from now"),
		))
	}
	return strings.TrimSpace(builder.String())
}

// EventMessage renders a notification event for a chat.
func EventMessage(ev model.Event) string {
	name := html.EscapeString(ev.TimerName)
	switch ev.Kind {
	case model.EventAlertFired:
		return fmt.Sprintf("🔔 <b>%s</b> reached %d%%", name, ev.Percentage)
	case model.EventTimerCompleted:
		return fmt.Sprintf("🎉 <b>%s</b> is done!", name)
	}
	return name
}

// FormatClock renders seconds as MM:SS, or H:MM:SS from one hour up.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := seconds % 3600 / 60
	sec := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}

// TruncateText shortens text to max runes, adding an ellipsis when cut.
func TruncateText(text string, max int) string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
