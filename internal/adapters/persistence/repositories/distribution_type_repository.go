package repositories

import (
	"context"

	"solidarite-maraude/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// DistributionTypeRepository handles distribution type reference data
type DistributionTypeRepository struct {
	db *gorm.DB
}

// NewDistributionTypeRepository creates a new distribution type repository
func NewDistributionTypeRepository(db *gorm.DB) *DistributionTypeRepository {
	return &DistributionTypeRepository{db: db}
}

// Create creates a new distribution type
func (r *DistributionTypeRepository) Create(ctx context.Context, dt *models.DistributionType) error {
	return r.db.WithContext(ctx).Create(dt).Error
}

// GetByID gets a distribution type by ID
func (r *DistributionTypeRepository) GetByID(ctx context.Context, id uint) (*models.DistributionType, error) {
	var dt models.DistributionType
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dt).Error
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

// Update updates a distribution type
func (r *DistributionTypeRepository) Update(ctx context.Context, dt *models.DistributionType) error {
	return r.db.WithContext(ctx).Save(dt).Error
}

// Delete soft deletes a distribution type
func (r *DistributionTypeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.DistributionType{}, id).Error
}

// List lists distribution types, optionally active only
func (r *DistributionTypeRepository) List(ctx context.Context, activeOnly bool) ([]*models.DistributionType, error) {
	var types []*models.DistributionType
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("category, name").Find(&types).Error
	return types, err
}

// ExistsByName checks if a distribution type name exists
func (r *DistributionTypeRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DistributionType{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}
