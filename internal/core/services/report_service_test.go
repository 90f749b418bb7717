package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"solidarite-maraude/internal/adapters/persistence/models"
	"solidarite-maraude/internal/adapters/persistence/repositories"
	"solidarite-maraude/internal/config"
	"solidarite-maraude/internal/core/authz"
	"solidarite-maraude/internal/core/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite and migrates every model
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}
	return db
}

// fixtures creates an association with one volunteer, one coordinator,
// a recurring action and a distribution type
type fixtures struct {
	association models.Association
	volunteer   models.User
	coordinator models.User
	action      models.MaraudeAction
	distType    models.DistributionType
}

func seedFixtures(t *testing.T, db *gorm.DB) *fixtures {
	t.Helper()
	f := &fixtures{}

	f.association = models.Association{Name: "Les Restos de Rue", Email: "contact@restosderue.fr", IsActive: true}
	if err := db.Create(&f.association).Error; err != nil {
		t.Fatalf("failed to seed association: %v", err)
	}

	f.volunteer = models.User{
		FirstName: "Marie", LastName: "Dupont", Email: "marie@restosderue.fr",
		Password: "x", Role: models.RoleVolunteer, IsActive: true,
		AssociationID: f.association.ID,
	}
	f.coordinator = models.User{
		FirstName: "Jean", LastName: "Martin", Email: "jean@restosderue.fr",
		Password: "x", Role: models.RoleCoordinator, IsActive: true,
		AssociationID: f.association.ID,
	}
	if err := db.Create(&f.volunteer).Error; err != nil {
		t.Fatalf("failed to seed volunteer: %v", err)
	}
	if err := db.Create(&f.coordinator).Error; err != nil {
		t.Fatalf("failed to seed coordinator: %v", err)
	}

	day := 1
	f.action = models.MaraudeAction{
		Title: "Maraude du lundi", IsRecurring: true, DayOfWeek: &day,
		StartTime: "19:00", EndTime: "22:00", Status: models.ActionStatusPlanned,
		IsActive: true, CreatedBy: f.volunteer.ID, AssociationID: f.association.ID,
	}
	if err := db.Create(&f.action).Error; err != nil {
		t.Fatalf("failed to seed action: %v", err)
	}

	f.distType = models.DistributionType{Name: "Repas chauds", Category: models.DistributionCategoryMeal, IsActive: true}
	if err := db.Create(&f.distType).Error; err != nil {
		t.Fatalf("failed to seed distribution type: %v", err)
	}

	return f
}

func newReportService(db *gorm.DB, cfg *config.Config) *ReportService {
	return NewReportService(
		repositories.NewReportRepository(db),
		repositories.NewMaraudeRepository(db),
		repositories.NewDistributionTypeRepository(db),
		repositories.NewUserRepository(db),
		&NotificationService{},
		cfg,
	)
}

func actorFor(u models.User) authz.Actor {
	return authz.Actor{ID: u.ID, AssociationID: u.AssociationID, Role: u.Role}
}

func TestCreateReport(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReportService(db, nil)

	input := &CreateReportInput{
		MaraudeActionID:    f.action.ID,
		ReportDate:         "2026-08-31",
		StartTime:          "19:00",
		EndTime:            "22:15",
		BeneficiariesCount: 42,
		VolunteersCount:    5,
		Distributions: []DistributionInput{
			{DistributionTypeID: f.distType.ID, Quantity: 40},
		},
	}

	report, err := svc.Create(context.Background(), input, actorFor(f.volunteer))
	if err != nil {
		t.Fatalf("expected create to succeed, got: %v", err)
	}
	if report.Status != models.ReportStatusDraft {
		t.Errorf("status = %q, want draft", report.Status)
	}
	if report.HasUrgentSituations {
		t.Error("report without alerts should not be flagged urgent")
	}
	if len(report.Distributions) != 1 || report.Distributions[0].Quantity != 40 {
		t.Errorf("expected one distribution of 40, got %+v", report.Distributions)
	}
}

func TestCreateReport_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReportService(db, nil)
	actor := actorFor(f.volunteer)

	input := &CreateReportInput{MaraudeActionID: f.action.ID, ReportDate: "2026-08-31"}
	first, err := svc.Create(context.Background(), input, actor)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err = svc.Create(context.Background(), input, actor)
	var duplicate *DuplicateReportError
	if !errors.As(err, &duplicate) {
		t.Fatalf("expected DuplicateReportError, got: %v", err)
	}
	if duplicate.ExistingID != first.ID {
		t.Errorf("duplicate points at report %d, want %d", duplicate.ExistingID, first.ID)
	}
	if duplicate.CreatedBy != f.volunteer.ID {
		t.Errorf("duplicate creator = %d, want %d", duplicate.CreatedBy, f.volunteer.ID)
	}
}

func TestCreateReport_DeleteFreesSlot(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReportService(db, nil)
	actor := actorFor(f.volunteer)

	input := &CreateReportInput{MaraudeActionID: f.action.ID, ReportDate: "2026-08-31"}
	report, err := svc.Create(context.Background(), input, actor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(context.Background(), report.ID, actor); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), input, actor); err != nil {
		t.Fatalf("recreate after delete should succeed, got: %v", err)
	}
}

func TestCreateReport_OtherAssociationForbidden(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReportService(db, nil)

	outsider := authz.Actor{ID: 99, AssociationID: f.association.ID + 1, Role: models.RoleVolunteer}
	input := &CreateReportInput{MaraudeActionID: f.action.ID, ReportDate: "2026-08-31"}
	if _, err := svc.Create(context.Background(), input, outsider); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got: %v", err)
	}
}

func TestCreateReport_UrgentDerivedFromAlerts(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReportService(db, nil)

	input := &CreateReportInput{
		MaraudeActionID: f.action.ID,
		ReportDate:      "2026-08-31",
		Alerts: []AlertInput{
			{AlertType: models.AlertTypeMedical, Severity: models.AlertSeverityHigh, SituationDescription: "Personne en détresse"},
		},
	}
	report, err := svc.Create(context.Background(), input, actorFor(f.volunteer))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !report.HasUrgentSituations {
		t.Error("report with an alert should be flagged urgent")
	}
}

func TestCreateReport_AutoSubmitToggle(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	cfg := &config.Config{Report: config.ReportConfig{AutoSubmit: true}}
	svc := newReportService(db, cfg)

	input := &CreateReportInput{MaraudeActionID: f.action.ID, ReportDate: "2026-08-31"}
	report, err := svc.Create(context.Background(), input, actorFor(f.volunteer))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if report.Status != models.ReportStatusSubmitted {
		t.Errorf("status = %q, want submitted with auto-submit on", report.Status)
	}
}

func TestUpdateReport_ReplaceWholesale(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReportService(db, nil)
	actor := actorFor(f.volunteer)
	ctx := context.Background()

	report, err := svc.Create(ctx, &CreateReportInput{
		MaraudeActionID: f.action.ID,
		ReportDate:      "2026-08-31",
		Distributions:   []DistributionInput{{DistributionTypeID: f.distType.ID, Quantity: 10}},
	}, actor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Replace with a different quantity
	updated, err := svc.Update(ctx, report.ID, &UpdateReportInput{
		Distributions: &[]DistributionInput{{DistributionTypeID: f.distType.ID, Quantity: 25}},
	}, actor)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if len(updated.Distributions) != 1 || updated.Distributions[0].Quantity != 25 {
		t.Errorf("expected one distribution of 25, got %+v", updated.Distributions)
	}

	// Empty slice clears the collection; nil would have left it alone
	cleared, err := svc.Update(ctx, report.ID, &UpdateReportInput{
		Distributions: &[]DistributionInput{},
	}, actor)
	if err != nil {
		t.Fatalf("clearing update failed: %v", err)
	}
	if len(cleared.Distributions) != 0 {
		t.Errorf("expected distributions cleared, got %d rows", len(cleared.Distributions))
	}

	// Nil leaves the (now empty) collection untouched
	notes := "RAS"
	untouched, err := svc.Update(ctx, report.ID, &UpdateReportInput{GeneralNotes: &notes}, actor)
	if err != nil {
		t.Fatalf("scalar update failed: %v", err)
	}
	if untouched.GeneralNotes != "RAS" {
		t.Errorf("notes = %q, want RAS", untouched.GeneralNotes)
	}
	if len(untouched.Distributions) != 0 {
		t.Errorf("nil slice should not touch distributions, got %d rows", len(untouched.Distributions))
	}
}

func TestReportLifecycle(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReportService(db, nil)
	ctx := context.Background()
	creator := actorFor(f.volunteer)
	coordinator := actorFor(f.coordinator)

	report, err := svc.Create(ctx, &CreateReportInput{MaraudeActionID: f.action.ID, ReportDate: "2026-08-31"}, creator)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Validation requires submitted status
	if _, err := svc.Validate(ctx, report.ID, coordinator); !errors.Is(err, ErrReportNotSubmitted) {
		t.Fatalf("validating a draft: expected ErrReportNotSubmitted, got %v", err)
	}

	// Volunteers cannot validate even when submitted
	submitted, err := svc.Submit(ctx, report.ID, creator)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submitted.Status != models.ReportStatusSubmitted {
		t.Fatalf("status = %q, want submitted", submitted.Status)
	}
	if _, err := svc.Validate(ctx, report.ID, creator); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("volunteer validating: expected ErrForbidden, got %v", err)
	}

	// Second submit is rejected
	if _, err := svc.Submit(ctx, report.ID, creator); !errors.Is(err, ErrReportNotDraft) {
		t.Fatalf("resubmitting: expected ErrReportNotDraft, got %v", err)
	}

	validated, err := svc.Validate(ctx, report.ID, coordinator)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if validated.Status != models.ReportStatusValidated {
		t.Errorf("status = %q, want validated", validated.Status)
	}
	if validated.ValidatedBy == nil || *validated.ValidatedBy != f.coordinator.ID {
		t.Errorf("validatedBy = %v, want %d", validated.ValidatedBy, f.coordinator.ID)
	}
	if validated.ValidationDate == nil {
		t.Error("validation date should be recorded")
	}
}

func TestUpdateReport_ValidatedImmutableExceptAdmin(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReportService(db, nil)
	ctx := context.Background()
	creator := actorFor(f.volunteer)
	coordinator := actorFor(f.coordinator)

	report, err := svc.Create(ctx, &CreateReportInput{MaraudeActionID: f.action.ID, ReportDate: "2026-08-31"}, creator)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Submit(ctx, report.ID, creator); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := svc.Validate(ctx, report.ID, coordinator); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	notes := "après validation"
	if _, err := svc.Update(ctx, report.ID, &UpdateReportInput{GeneralNotes: &notes}, creator); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("creator editing validated report: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, report.ID, &UpdateReportInput{GeneralNotes: &notes}, coordinator); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("coordinator editing validated report: expected ErrForbidden, got %v", err)
	}

	admin := authz.Actor{ID: 100, AssociationID: f.association.ID, Role: models.RoleAdmin}
	updated, err := svc.Update(ctx, report.ID, &UpdateReportInput{GeneralNotes: &notes}, admin)
	if err != nil {
		t.Fatalf("admin editing validated report should succeed, got %v", err)
	}
	if updated.GeneralNotes != notes {
		t.Errorf("notes = %q, want %q", updated.GeneralNotes, notes)
	}

	// Deletion of a validated report is admin-only too
	if err := svc.Delete(ctx, report.ID, coordinator); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("coordinator deleting validated report: expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, report.ID, admin); err != nil {
		t.Fatalf("admin delete failed: %v", err)
	}
}

func TestSendEmail_DisabledGateway(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReportService(db, nil)
	ctx := context.Background()
	actor := actorFor(f.volunteer)

	report, err := svc.Create(ctx, &CreateReportInput{MaraudeActionID: f.action.ID, ReportDate: "2026-08-31"}, actor)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Unconfigured gateway: the call fails and the report is never
	// stamped as sent
	var validation *domain.ValidationError
	if _, err := svc.SendEmail(ctx, report.ID, &SendEmailInput{Recipients: []string{"jean@restosderue.fr"}}, actor); !errors.As(err, &validation) {
		t.Fatalf("expected validation error with email disabled, got: %v", err)
	}

	stored, err := svc.GetByID(ctx, report.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored.EmailSent || stored.EmailSentAt != nil {
		t.Errorf("report stamped as sent without a configured gateway: sent=%v at=%v", stored.EmailSent, stored.EmailSentAt)
	}
}

func TestCreateReport_UnknownDistributionType(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReportService(db, nil)

	input := &CreateReportInput{
		MaraudeActionID: f.action.ID,
		ReportDate:      "2026-08-31",
		Distributions:   []DistributionInput{{DistributionTypeID: 999, Quantity: 5}},
	}
	_, err := svc.Create(context.Background(), input, actorFor(f.volunteer))
	var validation *domain.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got: %v", err)
	}
}

func TestGetStatistics(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixtures(t, db)
	svc := newReportService(db, nil)
	ctx := context.Background()
	creator := actorFor(f.volunteer)

	report, err := svc.Create(ctx, &CreateReportInput{
		MaraudeActionID:    f.action.ID,
		ReportDate:         "2026-08-31",
		BeneficiariesCount: 30,
		VolunteersCount:    4,
		Distributions:      []DistributionInput{{DistributionTypeID: f.distType.ID, Quantity: 28}},
		Alerts: []AlertInput{
			{AlertType: models.AlertTypeSocial, Severity: models.AlertSeverityMedium, SituationDescription: "Suivi nécessaire"},
		},
	}, creator)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Draft reports are excluded from the aggregates
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 9, 30, 0, 0, 0, 0, time.Local)
	stats, err := svc.GetStatistics(ctx, f.association.ID, from, to, creator)
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if stats.TotalReports != 0 {
		t.Errorf("draft report counted, total = %d", stats.TotalReports)
	}

	if _, err := svc.Submit(ctx, report.ID, creator); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	stats, err = svc.GetStatistics(ctx, f.association.ID, from, to, creator)
	if err != nil {
		t.Fatalf("statistics failed: %v", err)
	}
	if stats.TotalReports != 1 || stats.TotalBeneficiaries != 30 || stats.TotalVolunteers != 4 {
		t.Errorf("unexpected totals: %+v", stats)
	}
	if len(stats.Distributions) != 1 || stats.Distributions[0].TotalQuantity != 28 {
		t.Errorf("unexpected distribution totals: %+v", stats.Distributions)
	}
	if len(stats.Alerts) != 1 || stats.Alerts[0].Count != 1 {
		t.Errorf("unexpected alert counts: %+v", stats.Alerts)
	}

	// Other associations' members cannot read these aggregates
	outsider := authz.Actor{ID: 50, AssociationID: f.association.ID + 1, Role: models.RoleCoordinator}
	if _, err := svc.GetStatistics(ctx, f.association.ID, from, to, outsider); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for outsider, got: %v", err)
	}
}
