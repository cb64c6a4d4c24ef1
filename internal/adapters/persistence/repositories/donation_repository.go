package repositories

import (
	"context"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DonationRepository handles donation data access
type DonationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *gorm.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// GetByID gets a donation by ID with its donor
func (r *DonationRepository) GetByID(ctx context.Context, id uint) (*models.Donation, error) {
	var donation models.Donation
	err := r.db.WithContext(ctx).
		Preload("Donor").
		First(&donation, id).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// GetByTransactionID gets a donation by its external payment transaction id
// inside tx. Used for the idempotent replay check under the case lock.
func (r *DonationRepository) GetByTransactionID(tx *gorm.DB, transactionID string) (*models.Donation, error) {
	var donation models.Donation
	err := tx.
		Where("transaction_id = ?", transactionID).
		First(&donation).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// ListByCase lists donations for a case, newest first, with donors
func (r *DonationRepository) ListByCase(ctx context.Context, caseID uint) ([]*models.Donation, error) {
	var donations []*models.Donation
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("treatment_case_id = ?", caseID).
		Order("donation_date DESC").
		Find(&donations).Error
	return donations, err
}

// ListByDonor lists a donor's donations, newest first
func (r *DonationRepository) ListByDonor(ctx context.Context, donorID uint) ([]*models.Donation, error) {
	var donations []*models.Donation
	err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("donation_date DESC").
		Find(&donations).Error
	return donations, err
}

// SumCompletedByCase sums completed donation amounts for a case.
// Used by the reconciliation audit.
func (r *DonationRepository) SumCompletedByCase(ctx context.Context, caseID uint) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("treatment_case_id = ? AND status = ?", caseID, domain.DonationCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}
