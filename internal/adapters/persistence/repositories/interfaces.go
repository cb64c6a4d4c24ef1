package repositories

import (
	"context"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
)

// DonorRepository defines donor repository interface
type DonorRepository interface {
	Create(ctx context.Context, donor *models.Donor) error
	GetByID(ctx context.Context, id uint) (*models.Donor, error)
	GetByEmail(ctx context.Context, email string) (*models.Donor, error)
	Update(ctx context.Context, donor *models.Donor) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Donor, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByDonorID(ctx context.Context, donorID uint) error
	DeleteExpired(ctx context.Context) error
}
