// Package schedule derives today-relevance and next occurrence for
// maraude actions. Pure functions of the action's fields and a
// caller-supplied now; all comparisons use server-local wall clock.
package schedule

import (
	"time"

	"solidarite-maraude/internal/adapters/persistence/models"
)

// dayNames maps ISO weekday 1..7 to display names
var dayNames = [8]string{"", "Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"}

// OneTimeLabel is the day name sentinel for non-recurring actions
const OneTimeLabel = "Ponctuel"

// ISOWeekday returns the ISO weekday of t (Monday=1 .. Sunday=7).
// time.Weekday has Sunday=0; this is the single place that conversion lives.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// DayName returns the display name for an action's scheduled day
func DayName(action *models.MaraudeAction) string {
	if action.DayOfWeek == nil || *action.DayOfWeek < 1 || *action.DayOfWeek > 7 {
		return OneTimeLabel
	}
	return dayNames[*action.DayOfWeek]
}

// IsHappeningToday reports whether the action's next occurrence falls on
// now's calendar date. A recurring slot whose start time has already
// elapsed today is no longer happening today: its occurrence has rolled
// to next week.
func IsHappeningToday(action *models.MaraudeAction, now time.Time) bool {
	next := NextOccurrence(action, now)
	return next != nil && sameDate(*next, now)
}

// NextOccurrence returns the next date the action takes place.
// For one-time actions it returns ScheduledDate verbatim, even in the
// past; filtering is the caller's responsibility. For recurring actions
// a slot on the current day whose start time has already elapsed rolls
// forward a full week.
func NextOccurrence(action *models.MaraudeAction, now time.Time) *time.Time {
	if !action.IsRecurring || !action.IsActive {
		return action.ScheduledDate
	}
	if action.DayOfWeek == nil {
		return nil
	}

	daysUntil := (*action.DayOfWeek - ISOWeekday(now) + 7) % 7
	if daysUntil == 0 && afterStartTime(action.StartTime, now) {
		daysUntil = 7
	}

	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, daysUntil)
	return &next
}

// afterStartTime reports whether now's time of day is past the "HH:MM"
// start time. An absent or malformed start time never rolls over.
func afterStartTime(startTime string, now time.Time) bool {
	parsed, err := time.Parse("15:04", startTime)
	if err != nil {
		return false
	}
	nowMinutes := now.Hour()*60 + now.Minute()
	startMinutes := parsed.Hour()*60 + parsed.Minute()
	return nowMinutes > startMinutes
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
