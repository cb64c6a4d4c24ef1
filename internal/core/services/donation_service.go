package services

import (
	"context"
	"errors"
	"log"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/repositories"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Donation service errors
var (
	ErrCaseNotFound     = errors.New("treatment case not found")
	ErrDonorNotFound    = errors.New("donor not found")
	ErrInvalidAmount    = errors.New("donation amount must be greater than 0")
	ErrCaseClosed       = errors.New("case is already fully funded or cancelled")
	ErrDonationNotFound = errors.New("donation not found")
)

// DonationService is the only writer of case funding totals. Every donation
// is recorded together with the case-total update in one transaction; no
// other component mutates amount_raised.
type DonationService struct {
	db           *gorm.DB
	caseRepo     *repositories.CaseRepository
	donationRepo *repositories.DonationRepository
	donorRepo    repositories.DonorRepository
}

// NewDonationService creates a new donation service
func NewDonationService(
	db *gorm.DB,
	caseRepo *repositories.CaseRepository,
	donationRepo *repositories.DonationRepository,
	donorRepo repositories.DonorRepository,
) *DonationService {
	return &DonationService{
		db:           db,
		caseRepo:     caseRepo,
		donationRepo: donationRepo,
		donorRepo:    donorRepo,
	}
}

// RecordDonationInput represents record donation input
type RecordDonationInput struct {
	DonorID         uint            `json:"donor_id" validate:"required"`
	TreatmentCaseID uint            `json:"treatment_case_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	IsAnonymous     bool            `json:"is_anonymous,omitempty"`
	Message         string          `json:"message,omitempty"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	// TransactionID is the external payment provider id. When set, recording
	// is idempotent: replaying the same id credits the case only once.
	TransactionID string `json:"transaction_id,omitempty"`
}

// RecordDonationOutput represents record donation output
type RecordDonationOutput struct {
	Donation        *models.Donation  `json:"donation"`
	CaseStatus      domain.CaseStatus `json:"case_status"`
	RemainingNeeded decimal.Decimal   `json:"remaining_needed"`
	// Replayed is true when the transaction id had already been credited
	Replayed bool `json:"-"`
}

// Record creates a completed donation and credits its amount to the target
// case, atomically. The case row is read with for-update semantics so two
// concurrent donations against the same case serialize; each sees the
// other's committed totals. Any failure rolls back both writes.
func (s *DonationService) Record(ctx context.Context, input *RecordDonationInput) (*RecordDonationOutput, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	if _, err := s.donorRepo.GetByID(ctx, input.DonorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonorNotFound
		}
		return nil, err
	}

	out := &RecordDonationOutput{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tc, err := s.caseRepo.GetForUpdate(tx, input.TreatmentCaseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCaseNotFound
			}
			return err
		}

		// Idempotent replay, checked under the case lock: of two concurrent
		// requests carrying the same external transaction id, the loser
		// blocks on the lock and then finds the winner's donation here
		// instead of tripping the unique index.
		if input.TransactionID != "" {
			existing, err := s.donationRepo.GetByTransactionID(tx, input.TransactionID)
			if err == nil {
				if existing.TreatmentCaseID != tc.ID {
					if err := tx.First(tc, existing.TreatmentCaseID).Error; err != nil {
						return err
					}
				}
				out.Donation = existing
				out.CaseStatus = tc.Status
				out.RemainingNeeded = tc.AmountNeeded
				out.Replayed = true
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		if !tc.Status.AcceptsDonations() {
			return ErrCaseClosed
		}

		donation := &models.Donation{
			DonorID:         input.DonorID,
			TreatmentCaseID: tc.ID,
			Amount:          input.Amount,
			Status:          domain.DonationCompleted,
			IsAnonymous:     input.IsAnonymous,
			Message:         input.Message,
			PaymentMethod:   input.PaymentMethod,
		}
		if input.TransactionID != "" {
			donation.TransactionID = &input.TransactionID
		}

		if err := tx.Create(donation).Error; err != nil {
			return err
		}

		newRaised := tc.AmountRaised.Add(input.Amount)
		tc.AmountRaised = newRaised
		tc.AmountNeeded = domain.RemainingNeeded(tc.TotalCost, newRaised)
		tc.Status = domain.ResolveStatus(tc.Status, newRaised, tc.TotalCost)

		if err := tx.Save(tc).Error; err != nil {
			return err
		}

		out.Donation = donation
		out.CaseStatus = tc.Status
		out.RemainingNeeded = tc.AmountNeeded
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Replayed {
		log.Printf("Donation replay ignored: tx=%s donation=%d", input.TransactionID, out.Donation.ID)
	} else {
		log.Printf("Donation recorded: donation=%d case=%d amount=%s status=%s",
			out.Donation.ID, input.TreatmentCaseID, input.Amount.StringFixed(2), out.CaseStatus)
	}

	return out, nil
}

// GetByID gets a donation by ID
func (s *DonationService) GetByID(ctx context.Context, id uint) (*models.Donation, error) {
	donation, err := s.donationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return donation, nil
}

// ListByCase lists a case's donations with donor names masked per-donation.
// The anonymity flag is fixed at donation creation and never retroactively
// changed. A signed-in viewer still sees their own anonymous donations under
// their name; viewerID is 0 for anonymous visitors.
func (s *DonationService) ListByCase(ctx context.Context, caseID, viewerID uint) ([]*models.DonationResponse, error) {
	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}

	donations, err := s.donationRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.DonationResponse, len(donations))
	for i, d := range donations {
		resp := d.ToResponse()
		if d.IsAnonymous && viewerID != 0 && d.DonorID == viewerID && d.Donor != nil {
			resp.DonorName = d.Donor.Name
		}
		responses[i] = resp
	}
	return responses, nil
}

// ListByDonor lists a donor's own donations
func (s *DonationService) ListByDonor(ctx context.Context, donorID uint) ([]*models.Donation, error) {
	return s.donationRepo.ListByDonor(ctx, donorID)
}
