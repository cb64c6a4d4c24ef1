package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/repositories"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transparency service errors
var (
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrEmptyUpdate   = errors.New("update text is required")
)

// TransparencyService builds the public read model joining a case with its
// patient, donations and invoices. Dashboard reads are lock-free; the
// recovery-update and feedback writes serialize on the case row like the
// donation ledger does.
type TransparencyService struct {
	db       *gorm.DB
	caseRepo *repositories.CaseRepository
}

// NewTransparencyService creates a new transparency service
func NewTransparencyService(db *gorm.DB, caseRepo *repositories.CaseRepository) *TransparencyService {
	return &TransparencyService{db: db, caseRepo: caseRepo}
}

// CaseInfo is the dashboard's case section
type CaseInfo struct {
	ID            uint                 `json:"id"`
	Title         string               `json:"title"`
	TreatmentType domain.TreatmentType `json:"treatment_type"`
	TotalCost     decimal.Decimal      `json:"total_cost"`
	AmountRaised  decimal.Decimal      `json:"amount_raised"`
	AmountNeeded  decimal.Decimal      `json:"amount_needed"`
	// ProgressPercent is amountRaised/totalCost*100 rounded to one decimal
	ProgressPercent decimal.Decimal   `json:"progress_percent"`
	Status          domain.CaseStatus `json:"status"`
	Story           string            `json:"story,omitempty"`
}

// PatientInfo is the dashboard's patient section
type PatientInfo struct {
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Gender         string `json:"gender,omitempty"`
	MedicalHistory string `json:"medical_history,omitempty"`
}

// FinancialSummary is the dashboard's money section
type FinancialSummary struct {
	TotalDonations int64           `json:"total_donations"`
	TotalDonated   decimal.Decimal `json:"total_donated"`
	TotalInvoices  int64           `json:"total_invoices"`
	TotalInvoiced  decimal.Decimal `json:"total_invoiced"`
	// Balance is amountRaised - totalInvoiced; may be negative because
	// invoicing is not capped by the raised amount
	Balance decimal.Decimal `json:"balance"`
	// FundsUtilizedPercent is totalInvoiced/amountRaised*100, one decimal
	FundsUtilizedPercent decimal.Decimal `json:"funds_utilized_percent"`
}

// InvoiceEntry is one invoice row on the dashboard
type InvoiceEntry struct {
	ID          uint                 `json:"id"`
	Number      string               `json:"number"`
	Amount      decimal.Decimal      `json:"amount"`
	Description string               `json:"description"`
	Type        domain.InvoiceType   `json:"type"`
	Status      domain.InvoiceStatus `json:"status"`
	Date        time.Time            `json:"date"`
	ReceiptURL  string               `json:"receipt_url,omitempty"`
}

// CaseDashboard is the full transparency payload for one case
type CaseDashboard struct {
	CaseInfo          CaseInfo                   `json:"case_info"`
	PatientInfo       PatientInfo                `json:"patient_info"`
	Financial         FinancialSummary           `json:"financial_transparency"`
	Donations         []*models.DonationResponse `json:"donations"`
	Invoices          []InvoiceEntry             `json:"invoices"`
	RecoveryUpdates   []models.RecoveryUpdate    `json:"recovery_updates"`
	TreatmentProgress string                     `json:"treatment_progress"`
}

var oneHundred = decimal.NewFromInt(100)

// CaseDashboard composes the transparency view for a case
func (s *TransparencyService) CaseDashboard(ctx context.Context, caseID uint) (*CaseDashboard, error) {
	tc, err := s.caseRepo.GetWithLedger(ctx, caseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}

	dashboard := &CaseDashboard{
		CaseInfo: CaseInfo{
			ID:              tc.ID,
			Title:           tc.Title,
			TreatmentType:   tc.TreatmentType,
			TotalCost:       tc.TotalCost,
			AmountRaised:    tc.AmountRaised,
			AmountNeeded:    tc.AmountNeeded,
			ProgressPercent: percentOf(tc.AmountRaised, tc.TotalCost),
			Status:          tc.Status,
			Story:           tc.Story,
		},
	}

	if tc.Patient != nil {
		dashboard.PatientInfo = PatientInfo{
			Name:           tc.Patient.Name,
			Age:            tc.Patient.Age,
			Gender:         tc.Patient.Gender,
			MedicalHistory: tc.Patient.MedicalHistory,
		}
	}

	totalDonated := decimal.Zero
	dashboard.Donations = make([]*models.DonationResponse, len(tc.Donations))
	for i := range tc.Donations {
		d := &tc.Donations[i]
		totalDonated = totalDonated.Add(d.Amount)
		dashboard.Donations[i] = d.ToResponse()
	}

	totalInvoiced := decimal.Zero
	dashboard.Invoices = make([]InvoiceEntry, len(tc.Invoices))
	for i := range tc.Invoices {
		inv := &tc.Invoices[i]
		totalInvoiced = totalInvoiced.Add(inv.Amount)
		dashboard.Invoices[i] = InvoiceEntry{
			ID:          inv.ID,
			Number:      inv.InvoiceNumber,
			Amount:      inv.Amount,
			Description: inv.Description,
			Type:        inv.InvoiceType,
			Status:      inv.Status,
			Date:        inv.DateIssued,
			ReceiptURL:  inv.ReceiptURL,
		}
	}

	dashboard.Financial = FinancialSummary{
		TotalDonations:       int64(len(tc.Donations)),
		TotalDonated:         totalDonated,
		TotalInvoices:        int64(len(tc.Invoices)),
		TotalInvoiced:        totalInvoiced,
		Balance:              tc.AmountRaised.Sub(totalInvoiced),
		FundsUtilizedPercent: percentOf(totalInvoiced, tc.AmountRaised),
	}

	updates, err := decodeRecoveryUpdates(tc)
	if err != nil {
		return nil, err
	}
	dashboard.RecoveryUpdates = updates

	switch {
	case len(updates) > 2:
		dashboard.TreatmentProgress = "Advanced"
	case len(updates) > 0:
		dashboard.TreatmentProgress = "In Progress"
	default:
		dashboard.TreatmentProgress = "Not Started"
	}

	return dashboard, nil
}

// AddRecoveryUpdateInput represents recovery update input
type AddRecoveryUpdateInput struct {
	Update string   `json:"update" validate:"required"`
	Photos []string `json:"photos,omitempty"`
}

// AddRecoveryUpdate prepends a recovery update to the case (newest first).
// Runs under the same case-row lock as the donation ledger and writes only
// the recovery_updates column, so a donation committing in between keeps
// its credit.
func (s *TransparencyService) AddRecoveryUpdate(ctx context.Context, caseID uint, input *AddRecoveryUpdateInput) (*models.RecoveryUpdate, error) {
	if input.Update == "" {
		return nil, ErrEmptyUpdate
	}

	photos := input.Photos
	if photos == nil {
		photos = []string{}
	}
	entry := models.RecoveryUpdate{
		ID:     time.Now().UnixMilli(),
		Date:   time.Now().UTC().Format(time.RFC3339),
		Update: input.Update,
		Photos: photos,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tc, err := s.caseRepo.GetForUpdate(tx, caseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCaseNotFound
			}
			return err
		}

		updates, err := decodeRecoveryUpdates(tc)
		if err != nil {
			return err
		}
		updates = append([]models.RecoveryUpdate{entry}, updates...)

		raw, err := json.Marshal(updates)
		if err != nil {
			return err
		}
		return s.caseRepo.SetRecoveryUpdates(tx, caseID, raw)
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// AddFeedbackInput represents patient feedback input
type AddFeedbackInput struct {
	Rating  int    `json:"rating" validate:"required"`
	Comment string `json:"comment,omitempty"`
}

// AddFeedback prepends patient feedback to the case (newest first).
// Same locking and column discipline as AddRecoveryUpdate.
func (s *TransparencyService) AddFeedback(ctx context.Context, caseID uint, input *AddFeedbackInput) (*models.FeedbackEntry, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	entry := models.FeedbackEntry{Rating: input.Rating, Comment: input.Comment}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tc, err := s.caseRepo.GetForUpdate(tx, caseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCaseNotFound
			}
			return err
		}

		var feedback []models.FeedbackEntry
		if len(tc.PatientFeedback) > 0 {
			if err := json.Unmarshal(tc.PatientFeedback, &feedback); err != nil {
				return err
			}
		}
		feedback = append([]models.FeedbackEntry{entry}, feedback...)

		raw, err := json.Marshal(feedback)
		if err != nil {
			return err
		}
		return s.caseRepo.SetPatientFeedback(tx, caseID, raw)
	})
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

func decodeRecoveryUpdates(tc *models.TreatmentCase) ([]models.RecoveryUpdate, error) {
	updates := []models.RecoveryUpdate{}
	if len(tc.RecoveryUpdates) > 0 {
		if err := json.Unmarshal(tc.RecoveryUpdates, &updates); err != nil {
			return nil, err
		}
	}
	return updates, nil
}

// percentOf computes part/whole*100 rounded to one decimal; 0 when whole is 0
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(oneHundred).DivRound(whole, 1)
}
