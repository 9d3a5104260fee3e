package services

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

// Schedule describes when an automation fires: every day, or once a week on
// a fixed weekday, at a fixed local time.
type Schedule struct {
	Frequency string `json:"frequency"`
	Time      string `json:"time"`                // HH:MM
	DayOfWeek *int   `json:"dayOfWeek,omitempty"` // 0 (Sunday) - 6, weekly only
}

func (s Schedule) Validate() error {
	if s.Frequency != FrequencyDaily && s.Frequency != FrequencyWeekly {
		return errors.New("frequency must be daily or weekly")
	}
	if _, _, err := parseClock(s.Time); err != nil {
		return err
	}
	if s.Frequency == FrequencyWeekly {
		if s.DayOfWeek == nil {
			return errors.New("dayOfWeek is required for weekly schedules")
		}
		if *s.DayOfWeek < 0 || *s.DayOfWeek > 6 {
			return errors.New("dayOfWeek must be between 0 and 6")
		}
	}
	return nil
}

// NextRun returns the first instant strictly after from that matches the
// schedule. A weekly result always lands on the configured weekday: today's
// slot that has already passed rolls a full week forward, not to tomorrow.
func NextRun(s Schedule, from time.Time) time.Time {
	hour, minute, err := parseClock(s.Time)
	if err != nil {
		hour, minute = 9, 0
	}

	next := time.Date(from.Year(), from.Month(), from.Day(), hour, minute, 0, 0, from.Location())

	if s.Frequency == FrequencyWeekly && s.DayOfWeek != nil {
		daysAhead := (*s.DayOfWeek - int(from.Weekday()) + 7) % 7
		next = next.AddDate(0, 0, daysAhead)
		if !next.After(from) {
			next = next.AddDate(0, 0, 7)
		}
		return next
	}

	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// parseClock parses an HH:MM string into hour and minute.
func parseClock(timeStr string) (int, int, error) {
	if timeStr == "" {
		return 0, 0, errors.New("empty time string")
	}

	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return 0, 0, errors.New("invalid time format")
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, errors.New("invalid hour")
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, errors.New("invalid minute")
	}

	return hour, minute, nil
}
