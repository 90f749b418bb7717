package models

import (
	"time"

	"gorm.io/gorm"
)

// Report statuses
const (
	ReportStatusDraft     = "draft"
	ReportStatusSubmitted = "submitted"
	ReportStatusValidated = "validated"
)

// Alert types
const (
	AlertTypeMedical  = "medical"
	AlertTypeSocial   = "social"
	AlertTypeSecurity = "security"
	AlertTypeHousing  = "housing"
	AlertTypeOther    = "other"
)

// Alert severities
const (
	AlertSeverityLow      = "low"
	AlertSeverityMedium   = "medium"
	AlertSeverityHigh     = "high"
	AlertSeverityCritical = "critical"
)

// AlertTypes lists the accepted alert type values
var AlertTypes = []string{AlertTypeMedical, AlertTypeSocial, AlertTypeSecurity, AlertTypeHousing, AlertTypeOther}

// AlertSeverities lists the accepted severity values
var AlertSeverities = []string{AlertSeverityLow, AlertSeverityMedium, AlertSeverityHigh, AlertSeverityCritical}

// Distribution type categories
const (
	DistributionCategoryMeal     = "meal"
	DistributionCategoryHygiene  = "hygiene"
	DistributionCategoryClothing = "clothing"
	DistributionCategoryMedical  = "medical"
	DistributionCategoryOther    = "other"
)

// DistributionCategories lists the accepted category values
var DistributionCategories = []string{
	DistributionCategoryMeal,
	DistributionCategoryHygiene,
	DistributionCategoryClothing,
	DistributionCategoryMedical,
	DistributionCategoryOther,
}

// DistributionType represents distribution_types table (reference data)
type DistributionType struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Category  string         `gorm:"size:30;not null" json:"category"`
	Icon      string         `gorm:"size:50" json:"icon"`
	Color     string         `gorm:"size:20" json:"color"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (DistributionType) TableName() string {
	return "distribution_types"
}

// MaraudeReport represents maraude_reports table.
// The composite unique index on (maraude_action_id, report_date) is the
// real enforcement of the one-report-per-occurrence invariant; the
// application-level pre-check only produces the detailed 409 body.
// No soft delete: deleted rows must free the unique slot.
type MaraudeReport struct {
	ID                      uint       `gorm:"primaryKey" json:"id"`
	MaraudeActionID         uint       `gorm:"not null;uniqueIndex:idx_reports_action_date" json:"maraude_action_id"`
	ReportDate              time.Time  `gorm:"type:date;not null;uniqueIndex:idx_reports_action_date" json:"report_date"`
	StartTime               string     `gorm:"size:5" json:"start_time"`
	EndTime                 string     `gorm:"size:5" json:"end_time"`
	BeneficiariesCount      int        `gorm:"default:0" json:"beneficiaries_count"`
	VolunteersCount         int        `gorm:"default:0" json:"volunteers_count"`
	GeneralNotes            string     `gorm:"type:text" json:"general_notes"`
	DifficultiesEncountered string     `gorm:"type:text" json:"difficulties_encountered"`
	PositivePoints          string     `gorm:"type:text" json:"positive_points"`
	HasUrgentSituations     bool       `gorm:"default:false" json:"has_urgent_situations"`
	UrgentSituationsDetails string     `gorm:"type:text" json:"urgent_situations_details"`
	Status                  string     `gorm:"size:20;not null;default:'draft'" json:"status"`
	EmailSent               bool       `gorm:"default:false" json:"email_sent"`
	EmailSentAt             *time.Time `json:"email_sent_at"`
	EmailRecipients         StringList `gorm:"type:text" json:"email_recipients"`
	CreatedBy               uint       `gorm:"not null" json:"created_by"`
	ValidatedBy             *uint      `json:"validated_by"`
	ValidationDate          *time.Time `json:"validation_date"`
	CreatedAt               time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt               time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Action        *MaraudeAction       `gorm:"foreignKey:MaraudeActionID" json:"action,omitempty"`
	Creator       *User                `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Validator     *User                `gorm:"foreignKey:ValidatedBy" json:"validator,omitempty"`
	Distributions []ReportDistribution `gorm:"foreignKey:ReportID" json:"distributions"`
	Alerts        []ReportAlert        `gorm:"foreignKey:ReportID" json:"alerts"`
}

func (MaraudeReport) TableName() string {
	return "maraude_reports"
}

// ReportDistribution is a quantified line item of a report.
// The full set is replaced on report update, never merged.
type ReportDistribution struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	ReportID           uint   `gorm:"not null;index" json:"report_id"`
	DistributionTypeID uint   `gorm:"not null" json:"distribution_type_id"`
	Quantity           int    `gorm:"not null;default:0" json:"quantity"`
	Notes              string `gorm:"type:text" json:"notes"`

	DistributionType *DistributionType `gorm:"foreignKey:DistributionTypeID" json:"distribution_type,omitempty"`
}

func (ReportDistribution) TableName() string {
	return "report_distributions"
}

// ReportAlert is an urgent situation flagged during an outreach action.
// Same replace-wholesale semantics as ReportDistribution.
type ReportAlert struct {
	ID                   uint     `gorm:"primaryKey" json:"id"`
	ReportID             uint     `gorm:"not null;index" json:"report_id"`
	AlertType            string   `gorm:"size:20;not null" json:"alert_type"`
	Severity             string   `gorm:"size:20;not null" json:"severity"`
	Lat                  *float64 `json:"lat"`
	Lng                  *float64 `json:"lng"`
	Address              string   `gorm:"size:255" json:"address,omitempty"`
	PersonDescription    string   `gorm:"type:text" json:"person_description"`
	SituationDescription string   `gorm:"type:text;not null" json:"situation_description"`
	ActionTaken          string   `gorm:"type:text" json:"action_taken"`
	FollowUpRequired     bool     `gorm:"default:false" json:"follow_up_required"`
	FollowUpNotes        string   `gorm:"type:text" json:"follow_up_notes"`
}

func (ReportAlert) TableName() string {
	return "report_alerts"
}

// MaraudeReportResponse DTO
type MaraudeReportResponse struct {
	ID                      uint                 `json:"id"`
	MaraudeActionID         uint                 `json:"maraude_action_id"`
	ActionTitle             string               `json:"action_title,omitempty"`
	ReportDate              string               `json:"report_date"`
	StartTime               string               `json:"start_time,omitempty"`
	EndTime                 string               `json:"end_time,omitempty"`
	BeneficiariesCount      int                  `json:"beneficiaries_count"`
	VolunteersCount         int                  `json:"volunteers_count"`
	GeneralNotes            string               `json:"general_notes,omitempty"`
	DifficultiesEncountered string               `json:"difficulties_encountered,omitempty"`
	PositivePoints          string               `json:"positive_points,omitempty"`
	HasUrgentSituations     bool                 `json:"has_urgent_situations"`
	UrgentSituationsDetails string               `json:"urgent_situations_details,omitempty"`
	Status                  string               `json:"status"`
	EmailSent               bool                 `json:"email_sent"`
	EmailSentAt             *time.Time           `json:"email_sent_at"`
	EmailRecipients         StringList           `json:"email_recipients,omitempty"`
	CreatedBy               uint                 `json:"created_by"`
	CreatorName             string               `json:"creator_name,omitempty"`
	ValidatedBy             *uint                `json:"validated_by"`
	ValidatorName           string               `json:"validator_name,omitempty"`
	ValidationDate          *time.Time           `json:"validation_date"`
	Distributions           []ReportDistribution `json:"distributions"`
	Alerts                  []ReportAlert        `json:"alerts"`
	CreatedAt               time.Time            `json:"created_at"`
	UpdatedAt               time.Time            `json:"updated_at"`
}

func (r *MaraudeReport) ToResponse() *MaraudeReportResponse {
	resp := &MaraudeReportResponse{
		ID:                      r.ID,
		MaraudeActionID:         r.MaraudeActionID,
		ReportDate:              r.ReportDate.Format("2006-01-02"),
		StartTime:               r.StartTime,
		EndTime:                 r.EndTime,
		BeneficiariesCount:      r.BeneficiariesCount,
		VolunteersCount:         r.VolunteersCount,
		GeneralNotes:            r.GeneralNotes,
		DifficultiesEncountered: r.DifficultiesEncountered,
		PositivePoints:          r.PositivePoints,
		HasUrgentSituations:     r.HasUrgentSituations,
		UrgentSituationsDetails: r.UrgentSituationsDetails,
		Status:                  r.Status,
		EmailSent:               r.EmailSent,
		EmailSentAt:             r.EmailSentAt,
		EmailRecipients:         r.EmailRecipients,
		CreatedBy:               r.CreatedBy,
		ValidatedBy:             r.ValidatedBy,
		ValidationDate:          r.ValidationDate,
		Distributions:           r.Distributions,
		Alerts:                  r.Alerts,
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}
	if resp.Distributions == nil {
		resp.Distributions = []ReportDistribution{}
	}
	if resp.Alerts == nil {
		resp.Alerts = []ReportAlert{}
	}
	if r.Action != nil {
		resp.ActionTitle = r.Action.Title
	}
	if r.Creator != nil {
		resp.CreatorName = r.Creator.FullName()
	}
	if r.Validator != nil {
		resp.ValidatorName = r.Validator.FullName()
	}
	return resp
}

// IsValidAlertType checks an alert type value against the accepted set
func IsValidAlertType(alertType string) bool {
	for _, t := range AlertTypes {
		if t == alertType {
			return true
		}
	}
	return false
}

// IsValidAlertSeverity checks a severity value against the accepted set
func IsValidAlertSeverity(severity string) bool {
	for _, s := range AlertSeverities {
		if s == severity {
			return true
		}
	}
	return false
}

// IsValidDistributionCategory checks a category value against the accepted set
func IsValidDistributionCategory(category string) bool {
	for _, c := range DistributionCategories {
		if c == category {
			return true
		}
	}
	return false
}
