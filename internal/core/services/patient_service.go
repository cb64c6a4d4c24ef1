package services

import (
	"context"
	"errors"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Patient service errors
var (
	ErrInvalidPatientAge = errors.New("patient age must be between 0 and 150")
)

// PatientService handles the patient directory
type PatientService struct {
	patientRepo *repositories.PatientRepository
}

// NewPatientService creates a new patient service
func NewPatientService(patientRepo *repositories.PatientRepository) *PatientService {
	return &PatientService{patientRepo: patientRepo}
}

// RegisterPatientInput represents patient registration input
type RegisterPatientInput struct {
	Name           string `json:"name" validate:"required"`
	Age            int    `json:"age" validate:"required"`
	Gender         string `json:"gender,omitempty"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone,omitempty"`
	MedicalHistory string `json:"medical_history,omitempty"`
	Language       string `json:"language,omitempty"`
}

// Register registers a new patient
func (s *PatientService) Register(ctx context.Context, input *RegisterPatientInput) (*models.Patient, error) {
	if input.Age < 0 || input.Age > 150 {
		return nil, ErrInvalidPatientAge
	}

	language := input.Language
	if language == "" {
		language = "Arabic"
	}

	patient := &models.Patient{
		Name:           input.Name,
		Age:            input.Age,
		Gender:         input.Gender,
		Email:          input.Email,
		Phone:          input.Phone,
		MedicalHistory: input.MedicalHistory,
		Language:       language,
	}

	if err := s.patientRepo.Create(ctx, patient); err != nil {
		return nil, err
	}

	return patient, nil
}

// GetByID gets a patient by ID
func (s *PatientService) GetByID(ctx context.Context, id uint) (*models.Patient, error) {
	patient, err := s.patientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return patient, nil
}

// ListPatientsOutput represents patient listing output
type ListPatientsOutput struct {
	Patients   []*models.Patient `json:"patients"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// List lists patients with pagination
func (s *PatientService) List(ctx context.Context, page, limit int) (*ListPatientsOutput, error) {
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
	patients, total, err := s.patientRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit > 0 {
		totalPages++
	}

	return &ListPatientsOutput{
		Patients:   patients,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}
