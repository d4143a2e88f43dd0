package domain

import (
	"fmt"
	"regexp"
	"time"
)

var (
	dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRegex = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)
)

// ValidateDate checks a YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	if !dateRegex.MatchString(s) {
		return fmt.Errorf("invalid date format: %s", s)
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("invalid date: %s", s)
	}
	return nil
}

// ValidateClock checks an HH:MM or HH:MM:SS wall-clock time.
func ValidateClock(s string) error {
	if !timeRegex.MatchString(s) {
		return fmt.Errorf("invalid time format: %s", s)
	}
	layout := "15:04"
	if len(s) == len("15:04:05") {
		layout = time.TimeOnly
	}
	if _, err := time.Parse(layout, s); err != nil {
		return fmt.Errorf("invalid time: %s", s)
	}
	return nil
}

// ValidatePositiveID checks that a row identifier is positive.
func ValidatePositiveID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("id must be positive, got %d", id)
	}
	return nil
}

// ValidateDelta rejects a no-op counter change.
func ValidateDelta(delta int) error {
	if delta == 0 {
		return fmt.Errorf("delta must be non-zero")
	}
	return nil
}
