package service

import (
	"strings"
	"testing"
	"time"

	"countdown/internal/model"
)

func TestFormatClock(t *testing.T) {
	tests := map[int]string{
		0:     "00:00",
		59:    "00:59",
		125:   "02:05",
		3600:  "1:00:00",
		86400: "24:00:00",
		-5:    "00:00",
	}
	for in, want := range tests {
		if got := FormatClock(in); got != want {
			t.Errorf("FormatClock(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestStatusSummaryGroupsByCategory(t *testing.T) {
	timers := []model.Timer{
		{Name: "Run", Category: "Sport", Duration: 60, RemainingTime: 30, Status: model.StatusRunning},
		{Name: "<Read>", Category: "Study", Duration: 120, RemainingTime: 120, Status: model.StatusPaused,
			Alerts: []model.Alert{{Percentage: 50}}},
	}
	out := StatusSummary(timers, t0)

	sport := strings.Index(out, "<b>Sport</b>")
	study := strings.Index(out, "<b>Study</b>")
	if sport < 0 || study < 0 || sport > study {
		t.Fatalf("categories missing or unsorted:\n%s", out)
	}
	if !strings.Contains(out, "&lt;Read&gt;") {
		t.Error("timer name not escaped")
	}
	if !strings.Contains(out, "00:30 / 01:00 (50%)") {
		t.Errorf("progress line missing:\n%s", out)
	}
}

func TestHistorySummaryUsesRelativeTimes(t *testing.T) {
	items := []model.TimerHistoryItem{
		{Name: "Focus", Category: "Study", Duration: 120, CompletedAt: t0.Add(-2 * time.Hour)},
	}
	out := HistorySummary(items, 10, t0)
	if !strings.Contains(out, "2 hours ago") {
		t.Errorf("relative time missing:\n%s", out)
	}
}

func TestEmptySummariesUsePlainWording(t *testing.T) {
	status := StatusSummary(nil, t0)
	if !strings.HasSuffix(status, "No timers yet. Use /add to create one.") {
		t.Errorf("empty status = %q", status)
	}
	history := HistorySummary(nil, 10, t0)
	if !strings.HasSuffix(history, "Nothing completed yet.") {
		t.Errorf("empty history = %q", history)
	}
	for _, out := range []string{status, history} {
		if strings.Contains(out, "\u2014") {
			t.Errorf("summary contains an em dash: %q", out)
		}
	}
}

func TestEventMessage(t *testing.T) {
	alert := EventMessage(model.Event{Kind: model.EventAlertFired, TimerName: "Focus", Percentage: 50})
	if alert != "🔔 <b>Focus</b> reached 50%" {
		t.Errorf("alert message = %q", alert)
	}
	done := EventMessage(model.Event{Kind: model.EventTimerCompleted, TimerName: "Focus"})
	if !strings.Contains(done, "Focus") {
		t.Errorf("completion message = %q", done)
	}
}
