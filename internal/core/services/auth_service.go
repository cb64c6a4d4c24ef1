package services

import (
	"context"
	"errors"
	"log"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/repositories"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/config"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/pkg/jwt"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyUsed   = errors.New("email already registered")
	ErrInvalidDonorType   = errors.New("invalid donor type")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrDonorInactive      = errors.New("donor account is inactive")
)

// AuthService handles donor authentication business logic
type AuthService struct {
	donorRepo        repositories.DonorRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(
	donorRepo repositories.DonorRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		donorRepo:        donorRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name      string           `json:"name" validate:"required,min=2,max=100"`
	Email     string           `json:"email" validate:"required,email"`
	Password  string           `json:"password" validate:"required,min=8"`
	Phone     string           `json:"phone,omitempty"`
	Address   string           `json:"address,omitempty"`
	DonorType domain.DonorType `json:"donor_type,omitempty"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Donor        *models.DonorResponse `json:"donor"`
	AccessToken  string                `json:"access_token"`
	RefreshToken string                `json:"refresh_token"`
}

// Register registers a new donor
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	donorType := input.DonorType
	if donorType == "" {
		donorType = domain.DonorPrivate
	}
	if !donorType.IsValid() {
		return nil, ErrInvalidDonorType
	}

	exists, err := s.donorRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyUsed
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	donor := &models.Donor{
		Name:      input.Name,
		Email:     input.Email,
		Password:  hashedPassword,
		Phone:     input.Phone,
		Address:   input.Address,
		Role:      "DONOR",
		DonorType: donorType,
		IsActive:  true,
	}

	if err := s.donorRepo.Create(ctx, donor); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(donor)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, donor.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Donor registered: %s", donor.Email)

	return &AuthResponse{
		Donor:        donor.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Login authenticates a donor
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	donor, err := s.donorRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !donor.IsActive {
		return nil, ErrDonorInactive
	}

	if !password.Verify(input.Password, donor.Password) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.generateTokens(donor)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, donor.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Donor logged in: %s", donor.Email)

	return &AuthResponse{
		Donor:        donor.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// RefreshToken rotates the refresh token and issues a new token pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	tokenHash := password.HashToken(refreshToken)

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	donor, err := s.donorRepo.GetByID(ctx, claims.DonorID)
	if err != nil {
		return nil, ErrDonorNotFound
	}
	if !donor.IsActive {
		return nil, ErrDonorInactive
	}

	// Token rotation: the presented token is single-use
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(donor)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, donor.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ Token refreshed for donor: %s", donor.Email)

	return &AuthResponse{
		Donor:        donor.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)

	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}

	log.Printf("✅ Donor logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a donor
func (s *AuthService) LogoutAll(ctx context.Context, donorID uint) error {
	if err := s.refreshTokenRepo.RevokeAllByDonorID(ctx, donorID); err != nil {
		return err
	}

	log.Printf("✅ All sessions revoked for donor ID: %d", donorID)
	return nil
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetDonorByID gets a donor by ID
func (s *AuthService) GetDonorByID(ctx context.Context, donorID uint) (*models.Donor, error) {
	donor, err := s.donorRepo.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonorNotFound
		}
		return nil, err
	}
	return donor, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(donor *models.Donor) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		donor.ID,
		donor.Email,
		donor.Name,
		donor.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		donor.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, donorID uint, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	expiresAt := jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays)

	token := &models.RefreshToken{
		DonorID:   donorID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
