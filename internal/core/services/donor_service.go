package services

import (
	"context"
	"errors"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/repositories"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"

	"gorm.io/gorm"
)

// DonorService handles the donor directory
type DonorService struct {
	donorRepo repositories.DonorRepository
}

// NewDonorService creates a new donor service
func NewDonorService(donorRepo repositories.DonorRepository) *DonorService {
	return &DonorService{donorRepo: donorRepo}
}

// GetByID gets a donor by ID
func (s *DonorService) GetByID(ctx context.Context, id uint) (*models.DonorResponse, error) {
	donor, err := s.donorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonorNotFound
		}
		return nil, err
	}
	return donor.ToResponse(), nil
}

// ListDonorsOutput represents donor listing output
type ListDonorsOutput struct {
	Donors     []*models.DonorResponse `json:"donors"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	TotalPages int                     `json:"total_pages"`
}

// List lists donors with pagination
func (s *DonorService) List(ctx context.Context, page, limit int) (*ListDonorsOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	offset := (page - 1) * limit
	donors, total, err := s.donorRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.DonorResponse, len(donors))
	for i, d := range donors {
		responses[i] = d.ToResponse()
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListDonorsOutput{
		Donors:     responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateProfileInput represents donor profile update input
type UpdateProfileInput struct {
	Name      string           `json:"name,omitempty"`
	Phone     string           `json:"phone,omitempty"`
	Address   string           `json:"address,omitempty"`
	DonorType domain.DonorType `json:"donor_type,omitempty"`
}

// UpdateProfile updates a donor's own profile fields
func (s *DonorService) UpdateProfile(ctx context.Context, id uint, input *UpdateProfileInput) (*models.DonorResponse, error) {
	donor, err := s.donorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonorNotFound
		}
		return nil, err
	}

	if input.Name != "" {
		donor.Name = input.Name
	}
	if input.Phone != "" {
		donor.Phone = input.Phone
	}
	if input.Address != "" {
		donor.Address = input.Address
	}
	if input.DonorType != "" {
		if !input.DonorType.IsValid() {
			return nil, ErrInvalidDonorType
		}
		donor.DonorType = input.DonorType
	}

	if err := s.donorRepo.Update(ctx, donor); err != nil {
		return nil, err
	}

	return donor.ToResponse(), nil
}

// Deactivate soft-deletes a donor account
func (s *DonorService) Deactivate(ctx context.Context, id uint) error {
	if _, err := s.donorRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDonorNotFound
		}
		return err
	}
	return s.donorRepo.Delete(ctx, id)
}
