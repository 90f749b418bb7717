package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"solidarite-maraude/internal/adapters/persistence/models"
	"solidarite-maraude/internal/adapters/persistence/repositories"
	"solidarite-maraude/internal/config"
	"solidarite-maraude/internal/core/authz"
	"solidarite-maraude/internal/core/domain"

	"gorm.io/gorm"
)

// Report service errors
var (
	ErrReportNotFound     = errors.New("report not found")
	ErrReportNotDraft     = errors.New("report is not in draft status")
	ErrReportNotSubmitted = errors.New("report is not in submitted status")
	ErrEmailNotSent       = errors.New("report email could not be sent")
)

// DuplicateReportError signals that a report already exists for the
// (action, date) pair. It carries enough about the existing report for
// the client to point the user at it.
type DuplicateReportError struct {
	ExistingID  uint      `json:"existing_report_id"`
	CreatedBy   uint      `json:"created_by"`
	CreatorName string    `json:"creator_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *DuplicateReportError) Error() string {
	return fmt.Sprintf("a report already exists for this maraude and date (report #%d)", e.ExistingID)
}

// ReportService enforces the report lifecycle:
// draft -> submitted -> validated, validated being terminal except for
// admin edits.
type ReportService struct {
	reportRepo    *repositories.ReportRepository
	maraudeRepo   *repositories.MaraudeRepository
	distTypeRepo  *repositories.DistributionTypeRepository
	userRepo      repositories.UserRepository
	notifyService *NotificationService
	cfg           *config.Config
}

// NewReportService creates a new report service
func NewReportService(
	reportRepo *repositories.ReportRepository,
	maraudeRepo *repositories.MaraudeRepository,
	distTypeRepo *repositories.DistributionTypeRepository,
	userRepo repositories.UserRepository,
	notifyService *NotificationService,
	cfg *config.Config,
) *ReportService {
	return &ReportService{
		reportRepo:    reportRepo,
		maraudeRepo:   maraudeRepo,
		distTypeRepo:  distTypeRepo,
		userRepo:      userRepo,
		notifyService: notifyService,
		cfg:           cfg,
	}
}

// DistributionInput is one distribution line item
type DistributionInput struct {
	DistributionTypeID uint   `json:"distribution_type_id"`
	Quantity           int    `json:"quantity"`
	Notes              string `json:"notes,omitempty"`
}

// AlertInput is one urgent situation entry
type AlertInput struct {
	AlertType            string   `json:"alert_type"`
	Severity             string   `json:"severity"`
	Lat                  *float64 `json:"lat,omitempty"`
	Lng                  *float64 `json:"lng,omitempty"`
	Address              string   `json:"address,omitempty"`
	PersonDescription    string   `json:"person_description,omitempty"`
	SituationDescription string   `json:"situation_description"`
	ActionTaken          string   `json:"action_taken,omitempty"`
	FollowUpRequired     bool     `json:"follow_up_required"`
	FollowUpNotes        string   `json:"follow_up_notes,omitempty"`
}

// CreateReportInput represents create report input
type CreateReportInput struct {
	MaraudeActionID         uint                `json:"maraude_action_id"`
	ReportDate              string              `json:"report_date"`
	StartTime               string              `json:"start_time,omitempty"`
	EndTime                 string              `json:"end_time,omitempty"`
	BeneficiariesCount      int                 `json:"beneficiaries_count"`
	VolunteersCount         int                 `json:"volunteers_count"`
	GeneralNotes            string              `json:"general_notes,omitempty"`
	DifficultiesEncountered string              `json:"difficulties_encountered,omitempty"`
	PositivePoints          string              `json:"positive_points,omitempty"`
	UrgentSituationsDetails string              `json:"urgent_situations_details,omitempty"`
	Distributions           []DistributionInput `json:"distributions,omitempty"`
	Alerts                  []AlertInput        `json:"alerts,omitempty"`
}

func (s *ReportService) validateChildren(ctx context.Context, distributions []DistributionInput, alerts []AlertInput) error {
	for _, d := range distributions {
		if d.Quantity < 0 {
			return domain.NewValidationError("distributions", "quantity must be >= 0")
		}
		if _, err := s.distTypeRepo.GetByID(ctx, d.DistributionTypeID); err != nil {
			return domain.NewValidationError("distributions", fmt.Sprintf("unknown distribution type %d", d.DistributionTypeID))
		}
	}
	for _, a := range alerts {
		if !models.IsValidAlertType(a.AlertType) {
			return domain.NewValidationError("alerts", "invalid alert type")
		}
		if !models.IsValidAlertSeverity(a.Severity) {
			return domain.NewValidationError("alerts", "invalid alert severity")
		}
		if strings.TrimSpace(a.SituationDescription) == "" {
			return domain.NewValidationError("alerts", "situation description is required")
		}
	}
	return nil
}

func buildDistributions(inputs []DistributionInput) []models.ReportDistribution {
	items := make([]models.ReportDistribution, 0, len(inputs))
	for _, d := range inputs {
		items = append(items, models.ReportDistribution{
			DistributionTypeID: d.DistributionTypeID,
			Quantity:           d.Quantity,
			Notes:              d.Notes,
		})
	}
	return items
}

func buildAlerts(inputs []AlertInput) []models.ReportAlert {
	items := make([]models.ReportAlert, 0, len(inputs))
	for _, a := range inputs {
		items = append(items, models.ReportAlert{
			AlertType:            a.AlertType,
			Severity:             a.Severity,
			Lat:                  a.Lat,
			Lng:                  a.Lng,
			Address:              a.Address,
			PersonDescription:    a.PersonDescription,
			SituationDescription: a.SituationDescription,
			ActionTaken:          a.ActionTaken,
			FollowUpRequired:     a.FollowUpRequired,
			FollowUpNotes:        a.FollowUpNotes,
		})
	}
	return items
}

// hasUrgent derives the urgent flag from alert presence or free-text details
func hasUrgent(alertCount int, details string) bool {
	return alertCount > 0 || strings.TrimSpace(details) != ""
}

// Create creates a report with its children in one transaction
func (s *ReportService) Create(ctx context.Context, input *CreateReportInput, actor authz.Actor) (*models.MaraudeReport, error) {
	// 1. Resolve the referenced action
	action, err := s.maraudeRepo.GetByID(ctx, input.MaraudeActionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaraudeNotFound
		}
		return nil, err
	}

	// 2. Actor must be admin or belong to the action's association
	if !authz.IsAdmin(actor) && !authz.SameAssociation(actor, action.AssociationID) {
		return nil, domain.ErrForbidden
	}

	reportDate, err := time.ParseInLocation("2006-01-02", input.ReportDate, time.Local)
	if err != nil {
		return nil, domain.NewValidationError("report_date", "invalid date format, use YYYY-MM-DD")
	}

	if err := s.validateChildren(ctx, input.Distributions, input.Alerts); err != nil {
		return nil, err
	}

	// 3. Fast-path duplicate check with remediation detail; the unique
	// index below is what actually closes the race.
	if existing, err := s.reportRepo.GetByActionAndDate(ctx, action.ID, reportDate); err == nil {
		return nil, duplicateErrorFor(existing)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	status := models.ReportStatusDraft
	if s.cfg != nil && s.cfg.Report.AutoSubmit {
		status = models.ReportStatusSubmitted
	}

	report := &models.MaraudeReport{
		MaraudeActionID:         action.ID,
		ReportDate:              reportDate,
		StartTime:               input.StartTime,
		EndTime:                 input.EndTime,
		BeneficiariesCount:      input.BeneficiariesCount,
		VolunteersCount:         input.VolunteersCount,
		GeneralNotes:            input.GeneralNotes,
		DifficultiesEncountered: input.DifficultiesEncountered,
		PositivePoints:          input.PositivePoints,
		HasUrgentSituations:     hasUrgent(len(input.Alerts), input.UrgentSituationsDetails),
		UrgentSituationsDetails: input.UrgentSituationsDetails,
		Status:                  status,
		CreatedBy:               actor.ID,
		Distributions:           buildDistributions(input.Distributions),
		Alerts:                  buildAlerts(input.Alerts),
	}

	// 4. Header and children land in one transaction; a concurrent
	// create that slipped past the pre-check hits the unique index.
	if err := s.reportRepo.Create(ctx, report); err != nil {
		if isUniqueViolation(err) {
			if existing, lookupErr := s.reportRepo.GetByActionAndDate(ctx, action.ID, reportDate); lookupErr == nil {
				return nil, duplicateErrorFor(existing)
			}
			return nil, domain.ErrDuplicateEntry
		}
		return nil, err
	}

	return s.reportRepo.GetByID(ctx, report.ID)
}

func duplicateErrorFor(existing *models.MaraudeReport) *DuplicateReportError {
	dup := &DuplicateReportError{
		ExistingID: existing.ID,
		CreatedBy:  existing.CreatedBy,
		CreatedAt:  existing.CreatedAt,
	}
	if existing.Creator != nil {
		dup.CreatorName = existing.Creator.FullName()
	}
	return dup
}

// isUniqueViolation matches the duplicate-key errors of the supported drivers
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// GetByID gets a report by ID
func (s *ReportService) GetByID(ctx context.Context, id uint) (*models.MaraudeReport, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return report, nil
}

// UpdateReportInput represents update report input. Nil child slices
// leave the collections untouched; non-nil slices replace them
// wholesale, an empty slice clearing all rows.
type UpdateReportInput struct {
	StartTime               *string              `json:"start_time,omitempty"`
	EndTime                 *string              `json:"end_time,omitempty"`
	BeneficiariesCount      *int                 `json:"beneficiaries_count,omitempty"`
	VolunteersCount         *int                 `json:"volunteers_count,omitempty"`
	GeneralNotes            *string              `json:"general_notes,omitempty"`
	DifficultiesEncountered *string              `json:"difficulties_encountered,omitempty"`
	PositivePoints          *string              `json:"positive_points,omitempty"`
	UrgentSituationsDetails *string              `json:"urgent_situations_details,omitempty"`
	Distributions           *[]DistributionInput `json:"distributions,omitempty"`
	Alerts                  *[]AlertInput        `json:"alerts,omitempty"`
}

// Update applies a scalar patch and replaces child collections when present
func (s *ReportService) Update(ctx context.Context, id uint, input *UpdateReportInput, actor authz.Actor) (*models.MaraudeReport, error) {
	report, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	action, err := s.maraudeRepo.GetByID(ctx, report.MaraudeActionID)
	if err != nil {
		return nil, err
	}

	if !authz.CanEdit(actor, report.CreatedBy, action.AssociationID) {
		return nil, domain.ErrForbidden
	}

	// Validated reports are immutable for everyone but admins
	if report.Status == models.ReportStatusValidated && !authz.IsAdmin(actor) {
		return nil, domain.ErrForbidden
	}

	var distributions []DistributionInput
	var alerts []AlertInput
	if input.Distributions != nil {
		distributions = *input.Distributions
	}
	if input.Alerts != nil {
		alerts = *input.Alerts
	}
	if err := s.validateChildren(ctx, distributions, alerts); err != nil {
		return nil, err
	}

	if input.StartTime != nil {
		report.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		report.EndTime = *input.EndTime
	}
	if input.BeneficiariesCount != nil {
		report.BeneficiariesCount = *input.BeneficiariesCount
	}
	if input.VolunteersCount != nil {
		report.VolunteersCount = *input.VolunteersCount
	}
	if input.GeneralNotes != nil {
		report.GeneralNotes = *input.GeneralNotes
	}
	if input.DifficultiesEncountered != nil {
		report.DifficultiesEncountered = *input.DifficultiesEncountered
	}
	if input.PositivePoints != nil {
		report.PositivePoints = *input.PositivePoints
	}
	if input.UrgentSituationsDetails != nil {
		report.UrgentSituationsDetails = *input.UrgentSituationsDetails
	}

	if input.Distributions != nil {
		if err := s.reportRepo.ReplaceDistributions(ctx, report.ID, buildDistributions(distributions)); err != nil {
			return nil, err
		}
	}
	if input.Alerts != nil {
		if err := s.reportRepo.ReplaceAlerts(ctx, report.ID, buildAlerts(alerts)); err != nil {
			return nil, err
		}
	}

	// Re-derive the urgent flag from the final alert set
	alertCount := len(report.Alerts)
	if input.Alerts != nil {
		alertCount = len(alerts)
	}
	report.HasUrgentSituations = hasUrgent(alertCount, report.UrgentSituationsDetails)

	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}

	return s.reportRepo.GetByID(ctx, report.ID)
}

// Submit transitions a draft report to submitted
func (s *ReportService) Submit(ctx context.Context, id uint, actor authz.Actor) (*models.MaraudeReport, error) {
	report, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !authz.IsSelf(actor, report.CreatedBy) && !authz.IsAdmin(actor) {
		return nil, domain.ErrForbidden
	}
	if report.Status != models.ReportStatusDraft {
		return nil, ErrReportNotDraft
	}

	report.Status = models.ReportStatusSubmitted
	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Validate transitions a submitted report to validated and records who
// validated it and when
func (s *ReportService) Validate(ctx context.Context, id uint, actor authz.Actor) (*models.MaraudeReport, error) {
	report, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	action, err := s.maraudeRepo.GetByID(ctx, report.MaraudeActionID)
	if err != nil {
		return nil, err
	}

	if !authz.IsAdmin(actor) && !authz.IsCoordinatorOf(actor, action.AssociationID) {
		return nil, domain.ErrForbidden
	}
	if report.Status != models.ReportStatusSubmitted {
		return nil, ErrReportNotSubmitted
	}

	now := time.Now()
	report.Status = models.ReportStatusValidated
	report.ValidatedBy = &actor.ID
	report.ValidationDate = &now

	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Delete removes a report. Creators and same-association coordinators
// may delete non-validated reports; admins may delete any.
func (s *ReportService) Delete(ctx context.Context, id uint, actor authz.Actor) error {
	report, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	action, err := s.maraudeRepo.GetByID(ctx, report.MaraudeActionID)
	if err != nil {
		return err
	}

	if !authz.IsAdmin(actor) {
		allowed := authz.IsSelf(actor, report.CreatedBy) || authz.IsCoordinatorOf(actor, action.AssociationID)
		if !allowed || report.Status == models.ReportStatusValidated {
			return domain.ErrForbidden
		}
	}

	return s.reportRepo.Delete(ctx, id)
}

// List lists reports, non-admin actors scoped to their own association
func (s *ReportService) List(ctx context.Context, filter *repositories.ReportFilter, actor authz.Actor, offset, limit int) ([]*models.MaraudeReport, int64, error) {
	if filter == nil {
		filter = &repositories.ReportFilter{}
	}
	if !authz.IsAdmin(actor) {
		filter.AssociationID = &actor.AssociationID
	}
	return s.reportRepo.List(ctx, filter, offset, limit)
}

// GetStatistics aggregates report totals for an association and period
func (s *ReportService) GetStatistics(ctx context.Context, associationID uint, from, to time.Time, actor authz.Actor) (*repositories.Statistics, error) {
	if !authz.IsAdmin(actor) && !authz.SameAssociation(actor, associationID) {
		return nil, domain.ErrForbidden
	}
	return s.reportRepo.GetStatistics(ctx, associationID, from, to)
}

// SendEmailInput represents send report email input
type SendEmailInput struct {
	Recipients []string `json:"recipients,omitempty"`
	Subject    string   `json:"subject,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// SendEmail formats the report and sends it through the notification
// gateway. A gateway failure is reported to the caller but never
// touches the report's lifecycle state.
func (s *ReportService) SendEmail(ctx context.Context, id uint, input *SendEmailInput, actor authz.Actor) (*models.MaraudeReport, error) {
	report, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	action, err := s.maraudeRepo.GetByID(ctx, report.MaraudeActionID)
	if err != nil {
		return nil, err
	}

	if !authz.IsAdmin(actor) && !authz.SameAssociation(actor, action.AssociationID) {
		return nil, domain.ErrForbidden
	}

	if !s.notifyService.IsEnabled() {
		return nil, domain.NewValidationError("email", "email sending is not configured")
	}

	recipients := input.Recipients
	if len(recipients) == 0 {
		coordinators, err := s.userRepo.ListCoordinators(ctx, action.AssociationID)
		if err != nil {
			return nil, err
		}
		for _, u := range coordinators {
			recipients = append(recipients, u.Email)
		}
	}
	if len(recipients) == 0 {
		return nil, domain.NewValidationError("recipients", "no recipients available")
	}

	if err := s.notifyService.SendReportEmail(ctx, report, action, recipients, input.Subject, input.Message); err != nil {
		return nil, ErrEmailNotSent
	}

	now := time.Now()
	report.EmailSent = true
	report.EmailSentAt = &now
	report.EmailRecipients = recipients
	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}
