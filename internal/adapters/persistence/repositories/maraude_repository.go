package repositories

import (
	"context"

	"solidarite-maraude/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// MaraudeRepository handles maraude action persistence
type MaraudeRepository struct {
	db *gorm.DB
}

// NewMaraudeRepository creates a new maraude repository
func NewMaraudeRepository(db *gorm.DB) *MaraudeRepository {
	return &MaraudeRepository{db: db}
}

// Create creates an action with its waypoints in one transaction
func (r *MaraudeRepository) Create(ctx context.Context, action *models.MaraudeAction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(action).Error
	})
}

// GetByID gets an action by ID with waypoints and relations preloaded
func (r *MaraudeRepository) GetByID(ctx context.Context, id uint) (*models.MaraudeAction, error) {
	var action models.MaraudeAction
	err := r.db.WithContext(ctx).
		Preload("Waypoints", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Creator").
		Preload("Association").
		Where("id = ?", id).
		First(&action).Error
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// Update updates an action's scalar fields
func (r *MaraudeRepository) Update(ctx context.Context, action *models.MaraudeAction) error {
	return r.db.WithContext(ctx).
		Omit("Waypoints", "Creator", "Association").
		Save(action).Error
}

// ReplaceWaypoints deletes the existing waypoint set and inserts the
// replacement, all-or-nothing
func (r *MaraudeRepository) ReplaceWaypoints(ctx context.Context, actionID uint, waypoints []models.Waypoint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("maraude_action_id = ?", actionID).Delete(&models.Waypoint{}).Error; err != nil {
			return err
		}
		for i := range waypoints {
			waypoints[i].ID = 0
			waypoints[i].MaraudeActionID = actionID
		}
		if len(waypoints) == 0 {
			return nil
		}
		return tx.Create(&waypoints).Error
	})
}

// Delete removes an action and its waypoints
func (r *MaraudeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("maraude_action_id = ?", id).Delete(&models.Waypoint{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MaraudeAction{}, id).Error
	})
}

// List lists actions with pagination, optionally scoped to an association
func (r *MaraudeRepository) List(ctx context.Context, associationID *uint, offset, limit int) ([]*models.MaraudeAction, int64, error) {
	var actions []*models.MaraudeAction
	var total int64

	query := r.db.WithContext(ctx).Model(&models.MaraudeAction{})
	if associationID != nil {
		query = query.Where("association_id = ?", *associationID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := r.db.WithContext(ctx).
		Preload("Waypoints", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Association")
	if associationID != nil {
		listQuery = listQuery.Where("association_id = ?", *associationID)
	}
	if err := listQuery.Order("id DESC").Offset(offset).Limit(limit).Find(&actions).Error; err != nil {
		return nil, 0, err
	}

	return actions, total, nil
}

// ListActive lists every active action with waypoints, for the
// today-filter computed in the service layer
func (r *MaraudeRepository) ListActive(ctx context.Context) ([]*models.MaraudeAction, error) {
	var actions []*models.MaraudeAction
	err := r.db.WithContext(ctx).
		Preload("Waypoints", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Association").
		Where("is_active = ?", true).
		Find(&actions).Error
	return actions, err
}

// ListRecurringActive lists active recurring actions for the weekly schedule
func (r *MaraudeRepository) ListRecurringActive(ctx context.Context) ([]*models.MaraudeAction, error) {
	var actions []*models.MaraudeAction
	err := r.db.WithContext(ctx).
		Preload("Waypoints", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Association").
		Where("is_active = ? AND is_recurring = ?", true, true).
		Order("day_of_week, start_time").
		Find(&actions).Error
	return actions, err
}

// ListByAssociationActive lists active actions of one association
// (daily digest email)
func (r *MaraudeRepository) ListByAssociationActive(ctx context.Context, associationID uint) ([]*models.MaraudeAction, error) {
	var actions []*models.MaraudeAction
	err := r.db.WithContext(ctx).
		Where("association_id = ? AND is_active = ?", associationID, true).
		Find(&actions).Error
	return actions, err
}
