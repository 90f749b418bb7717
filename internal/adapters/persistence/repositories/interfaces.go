package repositories

import (
	"context"

	"solidarite-maraude/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ListByAssociation(ctx context.Context, associationID uint, offset, limit int) ([]*models.User, int64, error)
	ListCoordinators(ctx context.Context, associationID uint) ([]*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// AssociationRepository defines association repository interface
type AssociationRepository interface {
	Create(ctx context.Context, association *models.Association) error
	GetByID(ctx context.Context, id uint) (*models.Association, error)
	Update(ctx context.Context, association *models.Association) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Association, int64, error)
	ListActive(ctx context.Context) ([]*models.Association, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
