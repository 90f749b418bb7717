package repositories

import (
	"context"

	"solidarite-maraude/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// MerchantRepository handles merchant persistence
type MerchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository creates a new merchant repository
func NewMerchantRepository(db *gorm.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

// Create creates a new merchant
func (r *MerchantRepository) Create(ctx context.Context, merchant *models.Merchant) error {
	return r.db.WithContext(ctx).Create(merchant).Error
}

// GetByID gets a merchant by ID
func (r *MerchantRepository) GetByID(ctx context.Context, id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&merchant).Error
	if err != nil {
		return nil, err
	}
	return &merchant, nil
}

// Update updates a merchant
func (r *MerchantRepository) Update(ctx context.Context, merchant *models.Merchant) error {
	return r.db.WithContext(ctx).Omit("Contributor").Save(merchant).Error
}

// Delete soft deletes a merchant
func (r *MerchantRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Merchant{}, id).Error
}

// MerchantFilter narrows merchant listings
type MerchantFilter struct {
	Category     string
	VerifiedOnly bool
	ActiveOnly   bool
}

// List lists merchants with pagination and filters
func (r *MerchantRepository) List(ctx context.Context, filter *MerchantFilter, offset, limit int) ([]*models.Merchant, int64, error) {
	var merchants []*models.Merchant
	var total int64

	apply := func(q *gorm.DB) *gorm.DB {
		if filter != nil {
			if filter.Category != "" {
				q = q.Where("category = ?", filter.Category)
			}
			if filter.VerifiedOnly {
				q = q.Where("is_verified = ?", true)
			}
			if filter.ActiveOnly {
				q = q.Where("is_active = ?", true)
			}
		}
		return q
	}

	if err := apply(r.db.WithContext(ctx).Model(&models.Merchant{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := apply(r.db.WithContext(ctx)).Order("name").Offset(offset).Limit(limit).Find(&merchants).Error; err != nil {
		return nil, 0, err
	}

	return merchants, total, nil
}
