package repositories

import (
	"context"

	"solidarite-maraude/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// associationRepository implements AssociationRepository interface
type associationRepository struct {
	db *gorm.DB
}

// NewAssociationRepository creates a new association repository
func NewAssociationRepository(db *gorm.DB) AssociationRepository {
	return &associationRepository{db: db}
}

// Create creates a new association
func (r *associationRepository) Create(ctx context.Context, association *models.Association) error {
	return r.db.WithContext(ctx).Create(association).Error
}

// GetByID gets an association by ID
func (r *associationRepository) GetByID(ctx context.Context, id uint) (*models.Association, error) {
	var association models.Association
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&association).Error
	if err != nil {
		return nil, err
	}
	return &association, nil
}

// Update updates an association
func (r *associationRepository) Update(ctx context.Context, association *models.Association) error {
	return r.db.WithContext(ctx).Omit("Users", "Actions").Save(association).Error
}

// Delete soft deletes an association
func (r *associationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Association{}, id).Error
}

// List lists associations with pagination
func (r *associationRepository) List(ctx context.Context, offset, limit int) ([]*models.Association, int64, error) {
	var associations []*models.Association
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Association{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).Offset(offset).Limit(limit).Find(&associations).Error; err != nil {
		return nil, 0, err
	}

	return associations, total, nil
}

// ListActive lists active associations (public registration picker)
func (r *associationRepository) ListActive(ctx context.Context) ([]*models.Association, error) {
	var associations []*models.Association
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&associations).Error
	return associations, err
}

// ExistsByEmail checks if an association email exists
func (r *associationRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Association{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
