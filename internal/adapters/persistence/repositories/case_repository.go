package repositories

import (
	"context"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CaseRepository handles treatment case data access
type CaseRepository struct {
	db *gorm.DB
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *gorm.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// Create creates a new treatment case
func (r *CaseRepository) Create(ctx context.Context, tc *models.TreatmentCase) error {
	return r.db.WithContext(ctx).Create(tc).Error
}

// GetByID gets a treatment case by ID with its patient
func (r *CaseRepository) GetByID(ctx context.Context, id uint) (*models.TreatmentCase, error) {
	var tc models.TreatmentCase
	err := r.db.WithContext(ctx).
		Preload("Patient").
		First(&tc, id).Error
	if err != nil {
		return nil, err
	}
	return &tc, nil
}

// GetForUpdate reads a case row with FOR UPDATE semantics inside tx.
// Concurrent donations and admin status changes on the same case serialize
// on this lock. SQLite has no row locks; its single-writer transactions
// already serialize, so the clause is skipped there.
func (r *CaseRepository) GetForUpdate(tx *gorm.DB, id uint) (*models.TreatmentCase, error) {
	var tc models.TreatmentCase
	if tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := tx.First(&tc, id).Error
	if err != nil {
		return nil, err
	}
	return &tc, nil
}

// ActiveFilter narrows the active case listing
type ActiveFilter struct {
	TreatmentType domain.TreatmentType
	Urgency       domain.UrgencyLevel
}

// ListActive lists verified active cases with optional filters
func (r *CaseRepository) ListActive(ctx context.Context, filter *ActiveFilter, offset, limit int) ([]*models.TreatmentCase, int64, error) {
	var cases []*models.TreatmentCase
	var total int64

	q := r.db.WithContext(ctx).Model(&models.TreatmentCase{}).
		Where("status = ? AND is_verified = ?", domain.CaseStatusActive, true)
	if filter != nil {
		if filter.TreatmentType != "" {
			q = q.Where("treatment_type = ?", filter.TreatmentType)
		}
		if filter.Urgency != "" {
			q = q.Where("urgency_level = ?", filter.Urgency)
		}
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.
		Preload("Patient").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&cases).Error

	return cases, total, err
}

// ListPending lists unverified pending cases awaiting admin review
func (r *CaseRepository) ListPending(ctx context.Context) ([]*models.TreatmentCase, error) {
	var cases []*models.TreatmentCase
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Where("status = ? AND is_verified = ?", domain.CaseStatusPending, false).
		Order("created_at ASC").
		Find(&cases).Error
	return cases, err
}

// SetRecoveryUpdates writes only the recovery_updates column inside tx.
// The funding columns belong to the donation ledger and are never written
// back from here.
func (r *CaseRepository) SetRecoveryUpdates(tx *gorm.DB, id uint, raw []byte) error {
	return tx.Model(&models.TreatmentCase{}).
		Where("id = ?", id).
		Update("recovery_updates", datatypes.JSON(raw)).Error
}

// SetPatientFeedback writes only the patient_feedback column inside tx
func (r *CaseRepository) SetPatientFeedback(tx *gorm.DB, id uint, raw []byte) error {
	return tx.Model(&models.TreatmentCase{}).
		Where("id = ?", id).
		Update("patient_feedback", datatypes.JSON(raw)).Error
}

// GetWithLedger gets a case with donations (and donors) and invoices
// preloaded for the transparency dashboard
func (r *CaseRepository) GetWithLedger(ctx context.Context, id uint) (*models.TreatmentCase, error) {
	var tc models.TreatmentCase
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Donations", func(db *gorm.DB) *gorm.DB {
			return db.Order("donations.donation_date DESC")
		}).
		Preload("Donations.Donor").
		Preload("Invoices", func(db *gorm.DB) *gorm.DB {
			return db.Order("invoices.date_issued ASC")
		}).
		First(&tc, id).Error
	if err != nil {
		return nil, err
	}
	return &tc, nil
}
