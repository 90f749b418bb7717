package services

import (
	"context"
	"errors"
	"strings"

	"solidarite-maraude/internal/adapters/persistence/models"
	"solidarite-maraude/internal/adapters/persistence/repositories"
	"solidarite-maraude/internal/core/authz"
	"solidarite-maraude/internal/core/domain"

	"gorm.io/gorm"
)

// Distribution type service errors
var (
	ErrDistributionTypeNotFound = errors.New("distribution type not found")
	ErrDistributionTypeExists   = errors.New("distribution type name already exists")
)

// DistributionTypeService manages the distribution reference data
type DistributionTypeService struct {
	distTypeRepo *repositories.DistributionTypeRepository
}

// NewDistributionTypeService creates a new distribution type service
func NewDistributionTypeService(distTypeRepo *repositories.DistributionTypeRepository) *DistributionTypeService {
	return &DistributionTypeService{distTypeRepo: distTypeRepo}
}

// DistributionTypeInput represents create/update distribution type input
type DistributionTypeInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// Create creates a distribution type (admin only)
func (s *DistributionTypeService) Create(ctx context.Context, input *DistributionTypeInput, actor authz.Actor) (*models.DistributionType, error) {
	if !authz.IsAdmin(actor) {
		return nil, domain.ErrForbidden
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}
	if !models.IsValidDistributionCategory(input.Category) {
		return nil, domain.NewValidationError("category", "invalid distribution category")
	}

	exists, err := s.distTypeRepo.ExistsByName(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDistributionTypeExists
	}

	dt := &models.DistributionType{
		Name:     input.Name,
		Category: input.Category,
		Icon:     input.Icon,
		Color:    input.Color,
		IsActive: true,
	}
	if input.IsActive != nil {
		dt.IsActive = *input.IsActive
	}

	if err := s.distTypeRepo.Create(ctx, dt); err != nil {
		return nil, err
	}
	return dt, nil
}

// GetByID gets a distribution type by ID
func (s *DistributionTypeService) GetByID(ctx context.Context, id uint) (*models.DistributionType, error) {
	dt, err := s.distTypeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDistributionTypeNotFound
		}
		return nil, err
	}
	return dt, nil
}

// Update updates a distribution type (admin only)
func (s *DistributionTypeService) Update(ctx context.Context, id uint, input *DistributionTypeInput, actor authz.Actor) (*models.DistributionType, error) {
	if !authz.IsAdmin(actor) {
		return nil, domain.ErrForbidden
	}

	dt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" && input.Name != dt.Name {
		exists, err := s.distTypeRepo.ExistsByName(ctx, input.Name)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrDistributionTypeExists
		}
		dt.Name = input.Name
	}
	if input.Category != "" {
		if !models.IsValidDistributionCategory(input.Category) {
			return nil, domain.NewValidationError("category", "invalid distribution category")
		}
		dt.Category = input.Category
	}
	if input.Icon != "" {
		dt.Icon = input.Icon
	}
	if input.Color != "" {
		dt.Color = input.Color
	}
	if input.IsActive != nil {
		dt.IsActive = *input.IsActive
	}

	if err := s.distTypeRepo.Update(ctx, dt); err != nil {
		return nil, err
	}
	return dt, nil
}

// Delete soft deletes a distribution type (admin only).
// Existing report lines keep their type reference.
func (s *DistributionTypeService) Delete(ctx context.Context, id uint, actor authz.Actor) error {
	if !authz.IsAdmin(actor) {
		return domain.ErrForbidden
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.distTypeRepo.Delete(ctx, id)
}

// List lists distribution types
func (s *DistributionTypeService) List(ctx context.Context, activeOnly bool) ([]*models.DistributionType, error) {
	return s.distTypeRepo.List(ctx, activeOnly)
}
