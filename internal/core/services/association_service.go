package services

import (
	"context"
	"errors"

	"solidarite-maraude/internal/adapters/persistence/models"
	"solidarite-maraude/internal/adapters/persistence/repositories"
	"solidarite-maraude/internal/core/authz"
	"solidarite-maraude/internal/core/domain"

	"gorm.io/gorm"
)

// AssociationService handles association management
type AssociationService struct {
	associationRepo repositories.AssociationRepository
}

// NewAssociationService creates a new association service
func NewAssociationService(associationRepo repositories.AssociationRepository) *AssociationService {
	return &AssociationService{associationRepo: associationRepo}
}

// GetByID gets an association. Members see their own association,
// admins see any.
func (s *AssociationService) GetByID(ctx context.Context, id uint, actor authz.Actor) (*models.Association, error) {
	if !authz.IsAdmin(actor) && !authz.SameAssociation(actor, id) {
		return nil, domain.ErrForbidden
	}

	association, err := s.associationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssociationNotFound
		}
		return nil, err
	}
	return association, nil
}

// UpdateAssociationInput represents update association input
type UpdateAssociationInput struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	Website *string `json:"website,omitempty"`
}

// Update updates an association's profile. Coordinators may update
// their own association, admins any.
func (s *AssociationService) Update(ctx context.Context, id uint, input *UpdateAssociationInput, actor authz.Actor) (*models.Association, error) {
	if !authz.IsAdmin(actor) && !authz.IsCoordinatorOf(actor, id) {
		return nil, domain.ErrForbidden
	}

	association, err := s.associationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssociationNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, domain.NewValidationError("name", "name cannot be empty")
		}
		association.Name = *input.Name
	}
	if input.Phone != nil {
		association.Phone = *input.Phone
	}
	if input.Address != nil {
		association.Address = *input.Address
	}
	if input.Website != nil {
		association.Website = *input.Website
	}

	if err := s.associationRepo.Update(ctx, association); err != nil {
		return nil, err
	}
	return association, nil
}

// SetActive activates or deactivates an association (admin only).
// Activation is what unblocks user registration for it.
func (s *AssociationService) SetActive(ctx context.Context, id uint, active bool, actor authz.Actor) (*models.Association, error) {
	if !authz.IsAdmin(actor) {
		return nil, domain.ErrForbidden
	}

	association, err := s.associationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssociationNotFound
		}
		return nil, err
	}

	association.IsActive = active
	if err := s.associationRepo.Update(ctx, association); err != nil {
		return nil, err
	}
	return association, nil
}

// List lists associations with pagination (admin only)
func (s *AssociationService) List(ctx context.Context, actor authz.Actor, offset, limit int) ([]*models.Association, int64, error) {
	if !authz.IsAdmin(actor) {
		return nil, 0, domain.ErrForbidden
	}
	return s.associationRepo.List(ctx, offset, limit)
}

// Delete soft deletes an association (admin only)
func (s *AssociationService) Delete(ctx context.Context, id uint, actor authz.Actor) error {
	if !authz.IsAdmin(actor) {
		return domain.ErrForbidden
	}
	if _, err := s.associationRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssociationNotFound
		}
		return err
	}
	return s.associationRepo.Delete(ctx, id)
}
