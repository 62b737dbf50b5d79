package core

import (
	"fmt"
	"time"
)

// ShiftPolicy defines one named work period. A policy applies to events
// whose hour is at or past FromHour; the last applicable policy of the
// day wins, so schedules must list policies in FromHour order starting
// at zero.
type ShiftPolicy struct {
	Name         string  `yaml:"name"`
	Start        string  `yaml:"start"`
	FromHour     int     `yaml:"fromHour"`
	GraceMinutes int     `yaml:"graceMinutes"`
	MinimumHours float64 `yaml:"minimumHours"`
}

// ShiftSchedule maps business weekdays (0 = first business day) to their
// shift policies. Exactly one policy resolves for any (weekday, hour).
type ShiftSchedule map[int][]ShiftPolicy

// DefaultSchedule mirrors the site's standing roster: shifts A (08:00)
// and B (14:00) on the first four business days, a short A-only day on
// the fifth, and a reduced A-only schedule on the remaining days.
func DefaultSchedule() ShiftSchedule {
	s := ShiftSchedule{}
	for d := 0; d <= 3; d++ {
		s[d] = []ShiftPolicy{
			{Name: "A", Start: "08:00", FromHour: 0, GraceMinutes: 15, MinimumHours: 7},
			{Name: "B", Start: "14:00", FromHour: 14, GraceMinutes: 15, MinimumHours: 7},
		}
	}
	s[4] = []ShiftPolicy{
		{Name: "A", Start: "08:00", FromHour: 0, GraceMinutes: 15, MinimumHours: 4},
	}
	for d := 5; d <= 6; d++ {
		s[d] = []ShiftPolicy{
			{Name: "A", Start: "08:00", FromHour: 0, GraceMinutes: 15, MinimumHours: 5},
		}
	}
	return s
}

// BusinessWeekday numbers days with the first business day as 0 and the
// last weekend day as 6.
func BusinessWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Resolve picks the shift policy governing an event at t.
func (s ShiftSchedule) Resolve(t time.Time) (ShiftPolicy, error) {
	policies, ok := s[BusinessWeekday(t)]
	if !ok || len(policies) == 0 {
		return ShiftPolicy{}, fmt.Errorf("no shift policy for weekday %d", BusinessWeekday(t))
	}
	picked := policies[0]
	for _, p := range policies[1:] {
		if t.Hour() >= p.FromHour {
			picked = p
		}
	}
	return picked, nil
}

// ShiftAndPunctuality computes the shift name and whether an event at t
// is inside the grace period of its shift start.
func (s ShiftSchedule) ShiftAndPunctuality(t time.Time) (string, string, error) {
	p, err := s.Resolve(t)
	if err != nil {
		return "", "", err
	}
	start, err := parseTimeOnDate(t, p.Start)
	if err != nil {
		return "", "", fmt.Errorf("invalid shift start %q: %w", p.Start, err)
	}
	grace := start.Add(time.Duration(p.GraceMinutes) * time.Minute)
	punctuality := Punctual
	if t.After(grace) {
		punctuality = Late
	}
	return p.Name, punctuality, nil
}

// MinimumHours returns the worked-hours requirement for the day of t.
func (s ShiftSchedule) MinimumHours(t time.Time) float64 {
	p, err := s.Resolve(t)
	if err != nil {
		return 0
	}
	return p.MinimumHours
}

// parseTimeOnDate combines the date of base with a clock string such as
// "08:00" or "08:00:00".
func parseTimeOnDate(base time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		t, err = time.Parse(TimeLayout, clock)
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(base.Year(), base.Month(), base.Day(), t.Hour(), t.Minute(), t.Second(), 0, base.Location()), nil
}
