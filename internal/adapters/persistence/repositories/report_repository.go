package repositories

import (
	"context"
	"time"

	"solidarite-maraude/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ReportRepository handles maraude report persistence
type ReportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts the report header and every child distribution and
// alert row in one transaction; any failed insert rolls back the lot.
func (r *ReportRepository) Create(ctx context.Context, report *models.MaraudeReport) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(report).Error
	})
}

// GetByID gets a report with children and relations preloaded
func (r *ReportRepository) GetByID(ctx context.Context, id uint) (*models.MaraudeReport, error) {
	var report models.MaraudeReport
	err := r.db.WithContext(ctx).
		Preload("Distributions.DistributionType").
		Preload("Alerts").
		Preload("Action").
		Preload("Creator").
		Preload("Validator").
		Where("id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetByActionAndDate finds the report for one occurrence of an action.
// Fast-path duplicate detection; the composite unique index is the
// actual enforcement.
func (r *ReportRepository) GetByActionAndDate(ctx context.Context, actionID uint, date time.Time) (*models.MaraudeReport, error) {
	var report models.MaraudeReport
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Where("maraude_action_id = ? AND report_date = ?", actionID, date).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Update updates a report's scalar fields only
func (r *ReportRepository) Update(ctx context.Context, report *models.MaraudeReport) error {
	return r.db.WithContext(ctx).
		Omit("Distributions", "Alerts", "Action", "Creator", "Validator").
		Save(report).Error
}

// ReplaceDistributions deletes the report's distribution rows and
// inserts the replacement set; an empty set clears all
func (r *ReportRepository) ReplaceDistributions(ctx context.Context, reportID uint, items []models.ReportDistribution) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", reportID).Delete(&models.ReportDistribution{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].ReportID = reportID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// ReplaceAlerts deletes the report's alert rows and inserts the
// replacement set; an empty set clears all
func (r *ReportRepository) ReplaceAlerts(ctx context.Context, reportID uint, items []models.ReportAlert) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", reportID).Delete(&models.ReportAlert{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].ID = 0
			items[i].ReportID = reportID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// Delete removes a report and its children, children first.
// Explicit ordering instead of relying on database cascade.
func (r *ReportRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", id).Delete(&models.ReportAlert{}).Error; err != nil {
			return err
		}
		if err := tx.Where("report_id = ?", id).Delete(&models.ReportDistribution{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MaraudeReport{}, id).Error
	})
}

// ReportFilter narrows report listings
type ReportFilter struct {
	AssociationID *uint
	ActionID      *uint
	Status        string
	From          *time.Time
	To            *time.Time
}

// List lists reports with pagination and filters. Association scoping
// goes through the owning action.
func (r *ReportRepository) List(ctx context.Context, filter *ReportFilter, offset, limit int) ([]*models.MaraudeReport, int64, error) {
	var reports []*models.MaraudeReport
	var total int64

	apply := func(q *gorm.DB) *gorm.DB {
		if filter != nil {
			if filter.AssociationID != nil {
				q = q.Joins("JOIN maraude_actions ON maraude_actions.id = maraude_reports.maraude_action_id").
					Where("maraude_actions.association_id = ?", *filter.AssociationID)
			}
			if filter.ActionID != nil {
				q = q.Where("maraude_reports.maraude_action_id = ?", *filter.ActionID)
			}
			if filter.Status != "" {
				q = q.Where("maraude_reports.status = ?", filter.Status)
			}
			if filter.From != nil {
				q = q.Where("maraude_reports.report_date >= ?", *filter.From)
			}
			if filter.To != nil {
				q = q.Where("maraude_reports.report_date <= ?", *filter.To)
			}
		}
		return q
	}

	if err := apply(r.db.WithContext(ctx).Model(&models.MaraudeReport{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := apply(r.db.WithContext(ctx).Model(&models.MaraudeReport{})).
		Preload("Distributions.DistributionType").
		Preload("Alerts").
		Preload("Action").
		Preload("Creator").
		Order("maraude_reports.report_date DESC").
		Offset(offset).Limit(limit).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

// DistributionTotal is one aggregated distribution line
type DistributionTotal struct {
	DistributionTypeID uint   `json:"distribution_type_id"`
	Name               string `json:"name"`
	Category           string `json:"category"`
	TotalQuantity      int64  `json:"total_quantity"`
}

// AlertCount is one aggregated alert severity bucket
type AlertCount struct {
	Severity string `json:"severity"`
	Count    int64  `json:"count"`
}

// Statistics aggregates report totals for an association and date range
type Statistics struct {
	TotalReports       int64               `json:"total_reports"`
	TotalBeneficiaries int64               `json:"total_beneficiaries"`
	TotalVolunteers    int64               `json:"total_volunteers"`
	Distributions      []DistributionTotal `json:"distributions"`
	Alerts             []AlertCount        `json:"alerts"`
}

// GetStatistics computes aggregates over validated and submitted reports
func (r *ReportRepository) GetStatistics(ctx context.Context, associationID uint, from, to time.Time) (*Statistics, error) {
	stats := &Statistics{
		Distributions: []DistributionTotal{},
		Alerts:        []AlertCount{},
	}

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.MaraudeReport{}).
			Joins("JOIN maraude_actions ON maraude_actions.id = maraude_reports.maraude_action_id").
			Where("maraude_actions.association_id = ?", associationID).
			Where("maraude_reports.report_date BETWEEN ? AND ?", from, to).
			Where("maraude_reports.status IN ?", []string{models.ReportStatusSubmitted, models.ReportStatusValidated})
	}

	if err := base().Count(&stats.TotalReports).Error; err != nil {
		return nil, err
	}

	type sums struct {
		Beneficiaries int64
		Volunteers    int64
	}
	var s sums
	if err := base().Select("COALESCE(SUM(beneficiaries_count),0) AS beneficiaries, COALESCE(SUM(volunteers_count),0) AS volunteers").
		Scan(&s).Error; err != nil {
		return nil, err
	}
	stats.TotalBeneficiaries = s.Beneficiaries
	stats.TotalVolunteers = s.Volunteers

	if err := r.db.WithContext(ctx).Model(&models.ReportDistribution{}).
		Select("report_distributions.distribution_type_id, distribution_types.name, distribution_types.category, SUM(report_distributions.quantity) AS total_quantity").
		Joins("JOIN distribution_types ON distribution_types.id = report_distributions.distribution_type_id").
		Joins("JOIN maraude_reports ON maraude_reports.id = report_distributions.report_id").
		Joins("JOIN maraude_actions ON maraude_actions.id = maraude_reports.maraude_action_id").
		Where("maraude_actions.association_id = ?", associationID).
		Where("maraude_reports.report_date BETWEEN ? AND ?", from, to).
		Where("maraude_reports.status IN ?", []string{models.ReportStatusSubmitted, models.ReportStatusValidated}).
		Group("report_distributions.distribution_type_id, distribution_types.name, distribution_types.category").
		Scan(&stats.Distributions).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&models.ReportAlert{}).
		Select("report_alerts.severity, COUNT(*) AS count").
		Joins("JOIN maraude_reports ON maraude_reports.id = report_alerts.report_id").
		Joins("JOIN maraude_actions ON maraude_actions.id = maraude_reports.maraude_action_id").
		Where("maraude_actions.association_id = ?", associationID).
		Where("maraude_reports.report_date BETWEEN ? AND ?", from, to).
		Where("maraude_reports.status IN ?", []string{models.ReportStatusSubmitted, models.ReportStatusValidated}).
		Group("report_alerts.severity").
		Scan(&stats.Alerts).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
