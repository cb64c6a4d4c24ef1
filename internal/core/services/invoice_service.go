package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/repositories"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice service errors
var (
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvalidInvoiceType   = errors.New("invalid invoice type")
	ErrInvoiceAmount        = errors.New("invoice amount must be greater than 0")
	ErrDonationCaseMismatch = errors.New("donation does not belong to this case")
)

// InvoiceService records proof-of-spend line items against a case.
// Invoices are append-only audit entries; they never touch case totals, and
// invoiced totals may exceed the raised amount.
type InvoiceService struct {
	caseRepo     *repositories.CaseRepository
	invoiceRepo  *repositories.InvoiceRepository
	donationRepo *repositories.DonationRepository
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	caseRepo *repositories.CaseRepository,
	invoiceRepo *repositories.InvoiceRepository,
	donationRepo *repositories.DonationRepository,
) *InvoiceService {
	return &InvoiceService{
		caseRepo:     caseRepo,
		invoiceRepo:  invoiceRepo,
		donationRepo: donationRepo,
	}
}

// AddInvoiceInput represents add invoice input
type AddInvoiceInput struct {
	Amount      decimal.Decimal    `json:"amount" validate:"required"`
	Description string             `json:"description" validate:"required"`
	InvoiceType domain.InvoiceType `json:"invoice_type,omitempty"`
	DonationID  *uint              `json:"donation_id,omitempty"`
	ReceiptURL  string             `json:"receipt_url,omitempty"`
}

// Add appends an invoice to a case
func (s *InvoiceService) Add(ctx context.Context, caseID uint, input *AddInvoiceInput) (*models.Invoice, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvoiceAmount
	}

	invoiceType := input.InvoiceType
	if invoiceType == "" {
		invoiceType = domain.InvoiceOther
	}
	if !invoiceType.IsValid() {
		return nil, ErrInvalidInvoiceType
	}

	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}

	if input.DonationID != nil {
		donation, err := s.donationRepo.GetByID(ctx, *input.DonationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDonationNotFound
			}
			return nil, err
		}
		if donation.TreatmentCaseID != caseID {
			return nil, ErrDonationCaseMismatch
		}
	}

	invoice := &models.Invoice{
		TreatmentCaseID: caseID,
		DonationID:      input.DonationID,
		InvoiceNumber:   newInvoiceNumber(),
		Amount:          input.Amount,
		Description:     input.Description,
		InvoiceType:     invoiceType,
		ReceiptURL:      input.ReceiptURL,
		Status:          domain.InvoicePending,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	return invoice, nil
}

// ListByCase lists a case's invoices ordered by issue date ascending
func (s *InvoiceService) ListByCase(ctx context.Context, caseID uint) ([]*models.Invoice, error) {
	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return s.invoiceRepo.ListByCase(ctx, caseID)
}

// newInvoiceNumber generates a unique human-readable invoice number
func newInvoiceNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("INV-%d-%s", time.Now().Unix(), suffix)
}
