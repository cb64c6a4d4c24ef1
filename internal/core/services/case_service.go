package services

import (
	"context"
	"errors"
	"time"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/repositories"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Case service errors
var (
	ErrPatientNotFound   = errors.New("patient not found")
	ErrInvalidTotalCost  = errors.New("total cost must be greater than 0")
	ErrInvalidTreatment  = errors.New("invalid treatment type")
	ErrInvalidUrgency    = errors.New("invalid urgency level")
	ErrCaseNotPending    = errors.New("cannot verify a case that is not pending")
	ErrCaseAlreadyClosed = errors.New("case is already completed or cancelled")
)

// CaseService handles treatment case intake and lifecycle transitions.
// Admin status changes take the same per-case row lock as donations so they
// never race an in-flight credit.
type CaseService struct {
	db          *gorm.DB
	caseRepo    *repositories.CaseRepository
	patientRepo *repositories.PatientRepository
}

// NewCaseService creates a new case service
func NewCaseService(db *gorm.DB, caseRepo *repositories.CaseRepository, patientRepo *repositories.PatientRepository) *CaseService {
	return &CaseService{
		db:          db,
		caseRepo:    caseRepo,
		patientRepo: patientRepo,
	}
}

// CreateCaseInput represents case intake input
type CreateCaseInput struct {
	PatientID     uint                 `json:"patient_id" validate:"required"`
	Title         string               `json:"title" validate:"required"`
	Description   string               `json:"description" validate:"required"`
	TreatmentType domain.TreatmentType `json:"treatment_type" validate:"required"`
	TotalCost     decimal.Decimal      `json:"total_cost" validate:"required"`
	UrgencyLevel  domain.UrgencyLevel  `json:"urgency_level,omitempty"`
	Story         string               `json:"story,omitempty"`
}

// Create creates a new treatment case. New cases start pending and
// unverified; donations are accepted but the case is not publicly listed
// until an admin verifies it.
func (s *CaseService) Create(ctx context.Context, input *CreateCaseInput) (*models.TreatmentCase, error) {
	if !input.TotalCost.IsPositive() {
		return nil, ErrInvalidTotalCost
	}
	if !input.TreatmentType.IsValid() {
		return nil, ErrInvalidTreatment
	}

	urgency := input.UrgencyLevel
	if urgency == "" {
		urgency = domain.UrgencyMedium
	}
	if !urgency.IsValid() {
		return nil, ErrInvalidUrgency
	}

	exists, err := s.patientRepo.Exists(ctx, input.PatientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrPatientNotFound
	}

	tc := &models.TreatmentCase{
		PatientID:     input.PatientID,
		Title:         input.Title,
		Description:   input.Description,
		TreatmentType: input.TreatmentType,
		TotalCost:     input.TotalCost,
		AmountRaised:  decimal.Zero,
		AmountNeeded:  input.TotalCost,
		Status:        domain.CaseStatusPending,
		UrgencyLevel:  urgency,
		Story:         input.Story,
	}

	if err := s.caseRepo.Create(ctx, tc); err != nil {
		return nil, err
	}

	return tc, nil
}

// GetByID gets a case by ID
func (s *CaseService) GetByID(ctx context.Context, id uint) (*models.TreatmentCase, error) {
	tc, err := s.caseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, err
	}
	return tc, nil
}

// ListActiveInput represents active case listing input
type ListActiveInput struct {
	Page          int
	Limit         int
	TreatmentType domain.TreatmentType
	Urgency       domain.UrgencyLevel
}

// ListActiveOutput represents active case listing output
type ListActiveOutput struct {
	Cases      []*models.CaseResponse `json:"cases"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// ListActive lists verified active cases with optional filters
func (s *CaseService) ListActive(ctx context.Context, input *ListActiveInput) (*ListActiveOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 10
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	if input.TreatmentType != "" && !input.TreatmentType.IsValid() {
		return nil, ErrInvalidTreatment
	}
	if input.Urgency != "" && !input.Urgency.IsValid() {
		return nil, ErrInvalidUrgency
	}

	offset := (input.Page - 1) * input.Limit
	filter := &repositories.ActiveFilter{
		TreatmentType: input.TreatmentType,
		Urgency:       input.Urgency,
	}

	cases, total, err := s.caseRepo.ListActive(ctx, filter, offset, input.Limit)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.CaseResponse, len(cases))
	for i, tc := range cases {
		responses[i] = tc.ToResponse()
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListActiveOutput{
		Cases:      responses,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// ListPending lists unverified pending cases for admin review
func (s *CaseService) ListPending(ctx context.Context) ([]*models.CaseResponse, error) {
	cases, err := s.caseRepo.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.CaseResponse, len(cases))
	for i, tc := range cases {
		responses[i] = tc.ToResponse()
	}
	return responses, nil
}

// Verify activates a pending case. Only pending cases can be verified;
// verification is the only path from pending to active.
func (s *CaseService) Verify(ctx context.Context, id uint) (*models.TreatmentCase, error) {
	var verified *models.TreatmentCase

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tc, err := s.caseRepo.GetForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCaseNotFound
			}
			return err
		}

		if tc.Status != domain.CaseStatusPending {
			return ErrCaseNotPending
		}

		now := time.Now()
		tc.Status = domain.CaseStatusActive
		tc.IsVerified = true
		tc.VerifiedAt = &now

		if err := tx.Save(tc).Error; err != nil {
			return err
		}
		verified = tc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return verified, nil
}

// Cancel moves a case to cancelled. Terminal states absorb.
func (s *CaseService) Cancel(ctx context.Context, id uint) (*models.TreatmentCase, error) {
	return s.close(ctx, id, domain.CaseStatusCancelled)
}

// Complete moves a case to completed. Terminal states absorb.
func (s *CaseService) Complete(ctx context.Context, id uint) (*models.TreatmentCase, error) {
	return s.close(ctx, id, domain.CaseStatusCompleted)
}

func (s *CaseService) close(ctx context.Context, id uint, status domain.CaseStatus) (*models.TreatmentCase, error) {
	var closed *models.TreatmentCase

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tc, err := s.caseRepo.GetForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCaseNotFound
			}
			return err
		}

		if tc.Status.IsTerminal() {
			return ErrCaseAlreadyClosed
		}

		tc.Status = status
		if err := tx.Save(tc).Error; err != nil {
			return err
		}
		closed = tc
		return nil
	})
	if err != nil {
		return nil, err
	}

	return closed, nil
}
