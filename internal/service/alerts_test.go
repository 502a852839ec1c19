package service

import (
	"testing"

	"countdown/internal/model"
)

func TestNextAlert(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		alerts    []model.Alert
		want      int
	}{
		{"none due", 80, []model.Alert{{Percentage: 25}}, -1},
		{"exact threshold", 75, []model.Alert{{Percentage: 25}}, 0},
		{"lowest first", 10, []model.Alert{{Percentage: 50}, {Percentage: 25}}, 1},
		{"skips triggered", 10, []model.Alert{{Percentage: 25, Triggered: true}, {Percentage: 50}}, 1},
		{"all triggered", 0, []model.Alert{{Percentage: 25, Triggered: true}}, -1},
		{"no alerts", 0, nil, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := &model.Timer{Duration: 100, RemainingTime: tt.remaining, Alerts: tt.alerts}
			if got := NextAlert(tm); got != tt.want {
				t.Errorf("NextAlert = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNextAlertAvoidsFloatRounding(t *testing.T) {
	// 1/3 of 3 seconds is 33.33..%; a 33% alert is due, 34% is not.
	tm := &model.Timer{Duration: 3, RemainingTime: 2, Alerts: []model.Alert{{Percentage: 33}, {Percentage: 34}}}
	if got := NextAlert(tm); got != 0 {
		t.Fatalf("NextAlert = %d, want 0", got)
	}
	FireNextAlert(tm)
	if got := NextAlert(tm); got != -1 {
		t.Fatalf("34%% alert fired early")
	}
	if n := PendingAlerts(tm); n != 1 {
		t.Errorf("PendingAlerts = %d, want 1", n)
	}
}

func TestFireNextAlertNeverRefires(t *testing.T) {
	tm := &model.Timer{Duration: 10, RemainingTime: 0, Alerts: []model.Alert{{Percentage: 10}, {Percentage: 90}}}
	var fired []int
	for {
		a, ok := FireNextAlert(tm)
		if !ok {
			break
		}
		fired = append(fired, a.Percentage)
	}
	if len(fired) != 2 || fired[0] != 10 || fired[1] != 90 {
		t.Fatalf("fired = %v", fired)
	}
}
