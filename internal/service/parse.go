package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"countdown/internal/model"
)

// ParseDuration reads a timer length typed by a person. It accepts Go
// durations ("25m", "1h30m"), clock notation ("MM:SS", "H:MM:SS") and bare
// integers, which count minutes. The result is in whole seconds.
func ParseDuration(raw string) (int, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return 0, &ValidationError{Field: "duration", Message: "duration is required"}
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, badDuration(raw)
		}
		if n > model.MaxDurationSeconds/60 {
			return 0, tooLong()
		}
		return n * 60, nil
	}

	if strings.Contains(s, ":") {
		parts := strings.Split(s, ":")
		if len(parts) > 3 {
			return 0, badDuration(raw)
		}
		total := 0
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return 0, badDuration(raw)
			}
			if total > model.MaxDurationSeconds/60 || n > model.MaxDurationSeconds {
				return 0, tooLong()
			}
			total = total*60 + n
		}
		return total, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, badDuration(raw)
	}
	if d%time.Second != 0 {
		return 0, &ValidationError{Field: "duration", Message: "duration must be a whole number of seconds"}
	}
	return int(d / time.Second), nil
}

func tooLong() error {
	return &ValidationError{Field: "duration", Message: "duration cannot exceed 24 hours"}
}

func badDuration(raw string) error {
	return &ValidationError{Field: "duration", Message: fmt.Sprintf("cannot read duration %q, try 25m or 1:30:00", raw)}
}

// ParseAlerts reads a list of percentages such as "25, 50 75%". Empty input
// and "none" mean no alerts.
func ParseAlerts(raw string) ([]int, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" || s == "none" || s == "-" {
		return nil, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == ';' || r == '·'
	})
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(strings.TrimSuffix(f, "%"))
		if err != nil {
			return nil, &ValidationError{Field: "alerts", Message: fmt.Sprintf("%q is not a percentage", f)}
		}
		out = append(out, n)
	}
	return out, nil
}
