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

// Merchant service errors
var ErrMerchantNotFound = errors.New("merchant not found")

// MerchantService handles partner merchant business logic
type MerchantService struct {
	merchantRepo *repositories.MerchantRepository
}

// NewMerchantService creates a new merchant service
func NewMerchantService(merchantRepo *repositories.MerchantRepository) *MerchantService {
	return &MerchantService{merchantRepo: merchantRepo}
}

// CreateMerchantInput represents create merchant input
type CreateMerchantInput struct {
	Name                string         `json:"name"`
	Description         string         `json:"description,omitempty"`
	Category            string         `json:"category"`
	Services            []string       `json:"services,omitempty"`
	Lat                 float64        `json:"lat"`
	Lng                 float64        `json:"lng"`
	Address             string         `json:"address,omitempty"`
	Phone               string         `json:"phone,omitempty"`
	Email               string         `json:"email,omitempty"`
	Website             string         `json:"website,omitempty"`
	OpeningHours        map[string]any `json:"opening_hours,omitempty"`
	SpecialInstructions string         `json:"special_instructions,omitempty"`
	ContactPerson       string         `json:"contact_person,omitempty"`
}

// Create creates a merchant; any authenticated user may contribute one,
// it stays unverified until an admin confirms it
func (s *MerchantService) Create(ctx context.Context, input *CreateMerchantInput, actor authz.Actor) (*models.Merchant, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.NewValidationError("name", "name is required")
	}
	if !models.IsValidMerchantCategory(input.Category) {
		return nil, domain.NewValidationError("category", "invalid merchant category")
	}

	actorID := actor.ID
	merchant := &models.Merchant{
		Name:                input.Name,
		Description:         input.Description,
		Category:            input.Category,
		Services:            input.Services,
		Lat:                 input.Lat,
		Lng:                 input.Lng,
		Address:             input.Address,
		Phone:               input.Phone,
		Email:               input.Email,
		Website:             input.Website,
		OpeningHours:        input.OpeningHours,
		SpecialInstructions: input.SpecialInstructions,
		ContactPerson:       input.ContactPerson,
		IsVerified:          false,
		IsActive:            true,
		AddedBy:             &actorID,
	}

	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

// GetByID gets a merchant by ID
func (s *MerchantService) GetByID(ctx context.Context, id uint) (*models.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	return merchant, nil
}

// UpdateMerchantInput represents update merchant input
type UpdateMerchantInput struct {
	Name                *string         `json:"name,omitempty"`
	Description         *string         `json:"description,omitempty"`
	Category            *string         `json:"category,omitempty"`
	Services            *[]string       `json:"services,omitempty"`
	Lat                 *float64        `json:"lat,omitempty"`
	Lng                 *float64        `json:"lng,omitempty"`
	Address             *string         `json:"address,omitempty"`
	Phone               *string         `json:"phone,omitempty"`
	Email               *string         `json:"email,omitempty"`
	Website             *string         `json:"website,omitempty"`
	OpeningHours        *map[string]any `json:"opening_hours,omitempty"`
	SpecialInstructions *string         `json:"special_instructions,omitempty"`
	ContactPerson       *string         `json:"contact_person,omitempty"`
	IsActive            *bool           `json:"is_active,omitempty"`
}

// Update updates a merchant. Contributors may edit their own entries,
// coordinators and admins may edit any.
func (s *MerchantService) Update(ctx context.Context, id uint, input *UpdateMerchantInput, actor authz.Actor) (*models.Merchant, error) {
	merchant, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	isContributor := merchant.AddedBy != nil && authz.IsSelf(actor, *merchant.AddedBy)
	if !authz.IsAdmin(actor) && !authz.IsCoordinator(actor) && !isContributor {
		return nil, domain.ErrForbidden
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, domain.NewValidationError("name", "name cannot be empty")
		}
		merchant.Name = *input.Name
	}
	if input.Category != nil {
		if !models.IsValidMerchantCategory(*input.Category) {
			return nil, domain.NewValidationError("category", "invalid merchant category")
		}
		merchant.Category = *input.Category
	}
	if input.Description != nil {
		merchant.Description = *input.Description
	}
	if input.Services != nil {
		merchant.Services = *input.Services
	}
	if input.Lat != nil {
		merchant.Lat = *input.Lat
	}
	if input.Lng != nil {
		merchant.Lng = *input.Lng
	}
	if input.Address != nil {
		merchant.Address = *input.Address
	}
	if input.Phone != nil {
		merchant.Phone = *input.Phone
	}
	if input.Email != nil {
		merchant.Email = *input.Email
	}
	if input.Website != nil {
		merchant.Website = *input.Website
	}
	if input.OpeningHours != nil {
		merchant.OpeningHours = *input.OpeningHours
	}
	if input.SpecialInstructions != nil {
		merchant.SpecialInstructions = *input.SpecialInstructions
	}
	if input.ContactPerson != nil {
		merchant.ContactPerson = *input.ContactPerson
	}
	if input.IsActive != nil {
		merchant.IsActive = *input.IsActive
	}

	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

// Verify marks a merchant as verified (admin only)
func (s *MerchantService) Verify(ctx context.Context, id uint, verified bool, actor authz.Actor) (*models.Merchant, error) {
	if !authz.IsAdmin(actor) {
		return nil, domain.ErrForbidden
	}

	merchant, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	merchant.IsVerified = verified
	if err := s.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, err
	}
	return merchant, nil
}

// Delete removes a merchant (admin only)
func (s *MerchantService) Delete(ctx context.Context, id uint, actor authz.Actor) error {
	if !authz.IsAdmin(actor) {
		return domain.ErrForbidden
	}
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.merchantRepo.Delete(ctx, id)
}

// List lists merchants with filters and pagination
func (s *MerchantService) List(ctx context.Context, filter *repositories.MerchantFilter, offset, limit int) ([]*models.Merchant, int64, error) {
	if filter != nil && filter.Category != "" && !models.IsValidMerchantCategory(filter.Category) {
		return nil, 0, domain.NewValidationError("category", "invalid merchant category")
	}
	return s.merchantRepo.List(ctx, filter, offset, limit)
}
