package repositories

import (
	"context"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// InvoiceRepository handles invoice data access
type InvoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create creates a new invoice
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// GetByID gets an invoice by ID
func (r *InvoiceRepository) GetByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListByCase lists invoices for a case ordered by issue date ascending
func (r *InvoiceRepository) ListByCase(ctx context.Context, caseID uint) ([]*models.Invoice, error) {
	var invoices []*models.Invoice
	err := r.db.WithContext(ctx).
		Where("treatment_case_id = ?", caseID).
		Order("date_issued ASC").
		Find(&invoices).Error
	return invoices, err
}
