package services

import (
	"context"
	"errors"
	"strings"

	"solidarite-maraude/internal/adapters/persistence/models"
	"solidarite-maraude/internal/adapters/persistence/repositories"
	"solidarite-maraude/internal/core/authz"
	"solidarite-maraude/internal/core/domain"
	"solidarite-maraude/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrInvalidRole      = errors.New("invalid role")
	ErrWrongOldPassword = errors.New("old password is incorrect")
)

// UserService handles user management
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID gets a user. Self, same-association coordinators, and admins.
func (s *UserService) GetByID(ctx context.Context, id uint, actor authz.Actor) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !authz.IsSelf(actor, user.ID) && !authz.IsAdmin(actor) && !authz.IsCoordinatorOf(actor, user.AssociationID) {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

// UpdateProfileInput represents profile update input
type UpdateProfileInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// UpdateProfile updates the actor's own profile fields
func (s *UserService) UpdateProfile(ctx context.Context, actorID uint, input *UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.FirstName != nil {
		if strings.TrimSpace(*input.FirstName) == "" {
			return nil, domain.NewValidationError("first_name", "first name cannot be empty")
		}
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		if strings.TrimSpace(*input.LastName) == "" {
			return nil, domain.NewValidationError("last_name", "last name cannot be empty")
		}
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the old password before setting the new one
func (s *UserService) ChangePassword(ctx context.Context, actorID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !password.Verify(oldPassword, user.Password) {
		return ErrWrongOldPassword
	}
	if !password.ValidatePassword(newPassword) {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	return s.userRepo.Update(ctx, user)
}

// UpdateUserInput represents admin/coordinator user update input
type UpdateUserInput struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Role      *string `json:"role,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// Update updates a user. Coordinators manage name and phone for users
// of their own association; role and activation changes are admin-only.
func (s *UserService) Update(ctx context.Context, id uint, input *UpdateUserInput, actor authz.Actor) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !authz.CanManage(actor, user.AssociationID) {
		return nil, domain.ErrForbidden
	}

	if input.Role != nil {
		if !authz.IsAdmin(actor) {
			return nil, domain.ErrForbidden
		}
		role := *input.Role
		if role != models.RoleAdmin && role != models.RoleCoordinator && role != models.RoleVolunteer {
			return nil, ErrInvalidRole
		}
		user.Role = role
	}
	if input.IsActive != nil {
		if !authz.IsAdmin(actor) {
			return nil, domain.ErrForbidden
		}
		user.IsActive = *input.IsActive
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete soft deletes a user (admin or same-association coordinator)
func (s *UserService) Delete(ctx context.Context, id uint, actor authz.Actor) error {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !authz.CanManage(actor, user.AssociationID) {
		return domain.ErrForbidden
	}
	if authz.IsSelf(actor, user.ID) {
		return domain.NewValidationError("id", "cannot delete your own account")
	}

	return s.userRepo.Delete(ctx, id)
}

// List lists users. Admins see all, coordinators their association.
func (s *UserService) List(ctx context.Context, actor authz.Actor, offset, limit int) ([]*models.User, int64, error) {
	if authz.IsAdmin(actor) {
		return s.userRepo.List(ctx, offset, limit)
	}
	if authz.IsCoordinator(actor) {
		return s.userRepo.ListByAssociation(ctx, actor.AssociationID, offset, limit)
	}
	return nil, 0, domain.ErrForbidden
}
