package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"solidarite-maraude/internal/adapters/persistence/models"
	"solidarite-maraude/internal/adapters/persistence/repositories"
	"solidarite-maraude/internal/core/authz"
	"solidarite-maraude/internal/core/domain"

	"gorm.io/gorm"
)

func newMaraudeService(db *gorm.DB) *MaraudeService {
	return NewMaraudeService(repositories.NewMaraudeRepository(db))
}

func intPointer(v int) *int { return &v }

func TestCreateMaraude_RecurrenceValidation(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newMaraudeService(db)
	actor := actorFor(f.volunteer)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   CreateMaraudeInput
		wantErr bool
	}{
		{
			name:    "recurring without day_of_week",
			input:   CreateMaraudeInput{Title: "Maraude", IsRecurring: true},
			wantErr: true,
		},
		{
			name:    "recurring with day_of_week out of range",
			input:   CreateMaraudeInput{Title: "Maraude", IsRecurring: true, DayOfWeek: intPointer(8)},
			wantErr: true,
		},
		{
			name:    "recurring with scheduled_date",
			input:   CreateMaraudeInput{Title: "Maraude", IsRecurring: true, DayOfWeek: intPointer(3), ScheduledDate: "2026-09-02"},
			wantErr: true,
		},
		{
			name:    "one-time without scheduled_date",
			input:   CreateMaraudeInput{Title: "Maraude", IsRecurring: false},
			wantErr: true,
		},
		{
			name:    "one-time with day_of_week",
			input:   CreateMaraudeInput{Title: "Maraude", IsRecurring: false, DayOfWeek: intPointer(2), ScheduledDate: "2026-09-02"},
			wantErr: true,
		},
		{
			name:    "one-time with malformed date",
			input:   CreateMaraudeInput{Title: "Maraude", IsRecurring: false, ScheduledDate: "02/09/2026"},
			wantErr: true,
		},
		{
			name:  "valid recurring",
			input: CreateMaraudeInput{Title: "Maraude", IsRecurring: true, DayOfWeek: intPointer(3)},
		},
		{
			name:  "valid one-time",
			input: CreateMaraudeInput{Title: "Maraude", IsRecurring: false, ScheduledDate: "2026-09-02"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tt.input, actor)
			if tt.wantErr {
				var validation *domain.ValidationError
				if !errors.As(err, &validation) {
					t.Fatalf("expected validation error, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected success, got: %v", err)
			}
		})
	}
}

func TestCreateMaraude_AssociationScoping(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newMaraudeService(db)
	ctx := context.Background()

	other := models.Association{Name: "Autre Asso", Email: "contact@autre.fr", IsActive: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("failed to seed association: %v", err)
	}

	// Non-admins always create inside their own association
	input := &CreateMaraudeInput{Title: "Maraude", IsRecurring: true, DayOfWeek: intPointer(5), AssociationID: other.ID}
	action, err := svc.Create(ctx, input, actorFor(f.volunteer))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if action.AssociationID != f.association.ID {
		t.Errorf("association = %d, want actor's %d", action.AssociationID, f.association.ID)
	}

	// Admins may target any association
	admin := authz.Actor{ID: 100, AssociationID: f.association.ID, Role: models.RoleAdmin}
	action, err = svc.Create(ctx, input, admin)
	if err != nil {
		t.Fatalf("admin create failed: %v", err)
	}
	if action.AssociationID != other.ID {
		t.Errorf("association = %d, want %d", action.AssociationID, other.ID)
	}
}

func TestUpdateMaraude_ModeSwitchClearsOtherSide(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newMaraudeService(db)
	ctx := context.Background()
	actor := actorFor(f.volunteer)

	// Recurring -> one-time: day_of_week is cleared
	oneTime := false
	date := "2026-09-05"
	updated, err := svc.Update(ctx, f.action.ID, &UpdateMaraudeInput{IsRecurring: &oneTime, ScheduledDate: &date}, actor)
	if err != nil {
		t.Fatalf("switch to one-time failed: %v", err)
	}
	if updated.IsRecurring || updated.DayOfWeek != nil {
		t.Errorf("expected one-time without day_of_week, got recurring=%v day=%v", updated.IsRecurring, updated.DayOfWeek)
	}
	if updated.ScheduledDate == nil || updated.ScheduledDate.Format("2006-01-02") != date {
		t.Errorf("scheduled date = %v, want %s", updated.ScheduledDate, date)
	}

	// One-time -> recurring: scheduled_date is cleared
	recurring := true
	day := 4
	updated, err = svc.Update(ctx, f.action.ID, &UpdateMaraudeInput{IsRecurring: &recurring, DayOfWeek: &day}, actor)
	if err != nil {
		t.Fatalf("switch to recurring failed: %v", err)
	}
	if !updated.IsRecurring || updated.ScheduledDate != nil {
		t.Errorf("expected recurring without date, got recurring=%v date=%v", updated.IsRecurring, updated.ScheduledDate)
	}
	if updated.DayOfWeek == nil || *updated.DayOfWeek != day {
		t.Errorf("day_of_week = %v, want %d", updated.DayOfWeek, day)
	}
}

func TestUpdateMaraude_EditRights(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newMaraudeService(db)
	ctx := context.Background()

	title := "Nouveau titre"
	input := &UpdateMaraudeInput{Title: &title}

	// Another volunteer in the same association cannot edit
	otherVolunteer := authz.Actor{ID: 77, AssociationID: f.association.ID, Role: models.RoleVolunteer}
	if _, err := svc.Update(ctx, f.action.ID, input, otherVolunteer); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got: %v", err)
	}

	// A coordinator of the association can
	if _, err := svc.Update(ctx, f.action.ID, input, actorFor(f.coordinator)); err != nil {
		t.Fatalf("coordinator update failed: %v", err)
	}

	// A coordinator of another association cannot
	outsideCoordinator := authz.Actor{ID: 78, AssociationID: f.association.ID + 1, Role: models.RoleCoordinator}
	if _, err := svc.Update(ctx, f.action.ID, input, outsideCoordinator); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outside coordinator, got: %v", err)
	}
}

func TestUpdateMaraude_ReplaceWaypoints(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newMaraudeService(db)
	ctx := context.Background()
	actor := actorFor(f.volunteer)

	waypoints := []WaypointInput{
		{Lat: 48.8566, Lng: 2.3522, Name: "Châtelet", Order: 1},
		{Lat: 48.8606, Lng: 2.3376, Name: "Louvre", Order: 2},
	}
	updated, err := svc.Update(ctx, f.action.ID, &UpdateMaraudeInput{Waypoints: &waypoints}, actor)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated.Waypoints) != 2 {
		t.Fatalf("expected 2 waypoints, got %d", len(updated.Waypoints))
	}

	empty := []WaypointInput{}
	updated, err = svc.Update(ctx, f.action.ID, &UpdateMaraudeInput{Waypoints: &empty}, actor)
	if err != nil {
		t.Fatalf("clearing update failed: %v", err)
	}
	if len(updated.Waypoints) != 0 {
		t.Errorf("expected waypoints cleared, got %d", len(updated.Waypoints))
	}
}

func TestUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newMaraudeService(db)
	ctx := context.Background()
	actor := actorFor(f.volunteer)

	if _, err := svc.UpdateStatus(ctx, f.action.ID, "paused", actor); !errors.Is(err, ErrInvalidActionStatus) {
		t.Fatalf("expected ErrInvalidActionStatus, got: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, f.action.ID, models.ActionStatusCompleted, actor)
	if err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if updated.Status != models.ActionStatusCompleted {
		t.Errorf("status = %q, want completed", updated.Status)
	}
}

func TestTodayActiveAndWeeklySchedule(t *testing.T) {
	db := setupTestDB(t)
	seedFixtures(t, db)
	svc := newMaraudeService(db)
	ctx := context.Background()

	// 2026-08-31 is a Monday; the seeded action recurs on Mondays
	monday := time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local)
	tuesday := monday.AddDate(0, 0, 1)

	today, err := svc.TodayActive(ctx, monday)
	if err != nil {
		t.Fatalf("today active failed: %v", err)
	}
	if len(today) != 1 {
		t.Fatalf("expected 1 action on Monday, got %d", len(today))
	}
	if !today[0].IsToday || today[0].DayName != "Lundi" {
		t.Errorf("unexpected response fields: isToday=%v dayName=%q", today[0].IsToday, today[0].DayName)
	}
	if today[0].NextOccurrence == nil || *today[0].NextOccurrence != "2026-08-31" {
		t.Errorf("next occurrence = %v, want 2026-08-31", today[0].NextOccurrence)
	}

	today, err = svc.TodayActive(ctx, tuesday)
	if err != nil {
		t.Fatalf("today active failed: %v", err)
	}
	if len(today) != 0 {
		t.Errorf("expected no actions on Tuesday, got %d", len(today))
	}

	// After the 19:00 start has elapsed the action drops off today's list
	// and its next occurrence points at the following Monday
	evening := time.Date(2026, 8, 31, 20, 0, 0, 0, time.Local)
	today, err = svc.TodayActive(ctx, evening)
	if err != nil {
		t.Fatalf("today active failed: %v", err)
	}
	if len(today) != 0 {
		t.Errorf("expected no actions after the start time has elapsed, got %d", len(today))
	}

	week, err := svc.WeeklySchedule(ctx, monday)
	if err != nil {
		t.Fatalf("weekly schedule failed: %v", err)
	}
	if len(week) != 7 {
		t.Errorf("expected 7 weekday buckets, got %d", len(week))
	}
	if len(week[1]) != 1 {
		t.Errorf("expected the action under Monday, got %d entries", len(week[1]))
	}
	for day := 2; day <= 7; day++ {
		if len(week[day]) != 0 {
			t.Errorf("day %d should be empty, got %d entries", day, len(week[day]))
		}
	}
}
