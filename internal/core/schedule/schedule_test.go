package schedule

import (
	"testing"
	"time"

	"solidarite-maraude/internal/adapters/persistence/models"
)

func intPtr(i int) *int { return &i }

func datePtr(t time.Time) *time.Time { return &t }

// 2026-08-31 is a Monday
var monday = time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local)

func recurringAction(dayOfWeek int, startTime string) *models.MaraudeAction {
	return &models.MaraudeAction{
		IsRecurring: true,
		IsActive:    true,
		DayOfWeek:   intPtr(dayOfWeek),
		StartTime:   startTime,
	}
}

func TestISOWeekday(t *testing.T) {
	tests := []struct {
		date time.Time
		want int
	}{
		{time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local), 1}, // Monday
		{time.Date(2026, 9, 2, 0, 0, 0, 0, time.Local), 3},  // Wednesday
		{time.Date(2026, 9, 5, 0, 0, 0, 0, time.Local), 6},  // Saturday
		{time.Date(2026, 9, 6, 0, 0, 0, 0, time.Local), 7},  // Sunday
	}
	for _, tt := range tests {
		if got := ISOWeekday(tt.date); got != tt.want {
			t.Errorf("ISOWeekday(%s) = %d, want %d", tt.date.Weekday(), got, tt.want)
		}
	}
}

func TestDayName(t *testing.T) {
	if got := DayName(recurringAction(1, "")); got != "Lundi" {
		t.Errorf("DayName(monday action) = %q, want Lundi", got)
	}
	if got := DayName(recurringAction(7, "")); got != "Dimanche" {
		t.Errorf("DayName(sunday action) = %q, want Dimanche", got)
	}
	oneTime := &models.MaraudeAction{ScheduledDate: datePtr(monday)}
	if got := DayName(oneTime); got != OneTimeLabel {
		t.Errorf("DayName(one-time action) = %q, want %q", got, OneTimeLabel)
	}
}

func TestIsHappeningToday_Recurring(t *testing.T) {
	if !IsHappeningToday(recurringAction(1, "20:00"), monday) {
		t.Error("monday action should happen on a monday")
	}
	if IsHappeningToday(recurringAction(2, "20:00"), monday) {
		t.Error("tuesday action should not happen on a monday")
	}
}

func TestIsHappeningToday_ElapsedStart(t *testing.T) {
	// recurring Wednesday 18:00 action: listed before its start, gone
	// once the slot has elapsed the same day
	action := recurringAction(3, "18:00")
	wednesday := time.Date(2026, 9, 2, 17, 0, 0, 0, time.Local)
	if !IsHappeningToday(action, wednesday) {
		t.Error("action should happen today before its start time")
	}
	after := time.Date(2026, 9, 2, 19, 0, 0, 0, time.Local)
	if IsHappeningToday(action, after) {
		t.Error("action should no longer happen today once its start time has elapsed")
	}
	next := NextOccurrence(action, after)
	if next == nil || next.Format("2006-01-02") != "2026-09-09" {
		t.Errorf("next occurrence after elapse = %v, want 2026-09-09", next)
	}
}

func TestIsHappeningToday_OneTime(t *testing.T) {
	action := &models.MaraudeAction{
		IsActive:      true,
		ScheduledDate: datePtr(time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)),
	}
	if !IsHappeningToday(action, monday) {
		t.Error("one-time action scheduled today should happen today")
	}
	if IsHappeningToday(action, monday.AddDate(0, 0, 1)) {
		t.Error("one-time action should not happen the day after")
	}
}

func TestIsHappeningToday_InactiveRecurring(t *testing.T) {
	action := recurringAction(1, "20:00")
	action.IsActive = false
	if IsHappeningToday(action, monday) {
		t.Error("inactive recurring action should not happen today")
	}
}

func TestNextOccurrence_SameDayBeforeStart(t *testing.T) {
	// now is Monday 10:00, start 11:00: occurrence stays today
	next := NextOccurrence(recurringAction(1, "11:00"), monday)
	if next == nil {
		t.Fatal("expected a next occurrence")
	}
	if next.Format("2006-01-02") != "2026-08-31" {
		t.Errorf("next = %s, want 2026-08-31", next.Format("2006-01-02"))
	}
}

func TestNextOccurrence_SameDayAfterStart(t *testing.T) {
	// now is Monday 10:00, start 09:00: rolls a full week
	next := NextOccurrence(recurringAction(1, "09:00"), monday)
	if next == nil {
		t.Fatal("expected a next occurrence")
	}
	if next.Format("2006-01-02") != "2026-09-07" {
		t.Errorf("next = %s, want 2026-09-07", next.Format("2006-01-02"))
	}
}

func TestNextOccurrence_ExactlyAtStart(t *testing.T) {
	// now equals start to the minute: still today
	next := NextOccurrence(recurringAction(1, "10:00"), monday)
	if next == nil {
		t.Fatal("expected a next occurrence")
	}
	if next.Format("2006-01-02") != "2026-08-31" {
		t.Errorf("next = %s, want 2026-08-31", next.Format("2006-01-02"))
	}
}

func TestNextOccurrence_WithinSevenDays(t *testing.T) {
	// every target weekday lands within [0, 7] days of now
	for day := 1; day <= 7; day++ {
		next := NextOccurrence(recurringAction(day, "20:00"), monday)
		if next == nil {
			t.Fatalf("day %d: expected a next occurrence", day)
		}
		diff := int(next.Sub(time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)).Hours() / 24)
		if diff < 0 || diff > 7 {
			t.Errorf("day %d: occurrence %d days away, want within a week", day, diff)
		}
		if ISOWeekday(*next) != day {
			t.Errorf("day %d: occurrence falls on weekday %d", day, ISOWeekday(*next))
		}
	}
}

func TestNextOccurrence_OneTimePassthrough(t *testing.T) {
	past := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	action := &models.MaraudeAction{IsActive: true, ScheduledDate: datePtr(past)}
	next := NextOccurrence(action, monday)
	if next == nil || !next.Equal(past) {
		t.Errorf("one-time action should return its scheduled date verbatim, got %v", next)
	}
}

func TestNextOccurrence_MalformedStartTime(t *testing.T) {
	// a malformed start time never rolls the occurrence over
	next := NextOccurrence(recurringAction(1, "bad"), monday)
	if next == nil {
		t.Fatal("expected a next occurrence")
	}
	if next.Format("2006-01-02") != "2026-08-31" {
		t.Errorf("next = %s, want 2026-08-31", next.Format("2006-01-02"))
	}
}
