package model

import (
	"fmt"
)

// Times of day travel as zero-padded 24-hour "HH:MM:SS" strings. The fixed
// width makes lexicographic comparison equivalent to numeric comparison, so
// rules and windows can be ordered without parsing.

// ParseTimeOfDay converts "HH:MM" or "HH:MM:SS" into seconds since midnight.
func ParseTimeOfDay(s string) (int, error) {
	var h, m, sec int

	switch len(s) {
	case 5:
		if _, err := fmt.Sscanf(s, "%2d:%2d", &h, &m); err != nil {
			return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
		}
	case 8:
		if _, err := fmt.Sscanf(s, "%2d:%2d:%2d", &h, &m, &sec); err != nil {
			return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
		}
	default:
		return 0, fmt.Errorf("invalid time of day %q: want HH:MM or HH:MM:SS", s)
	}

	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}

	return h*3600 + m*60 + sec, nil
}

// FormatTimeOfDay renders seconds since midnight as "HH:MM:SS".
func FormatTimeOfDay(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds/60)%60, seconds%60)
}

// NormalizeTimeOfDay pads "HH:MM" inputs to the canonical "HH:MM:SS" form.
func NormalizeTimeOfDay(s string) (string, error) {
	seconds, err := ParseTimeOfDay(s)
	if err != nil {
		return "", err
	}
	return FormatTimeOfDay(seconds), nil
}
