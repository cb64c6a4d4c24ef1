package handlers

import (
	"errors"
	"strconv"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/services"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/pkg/pagination"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PatientHandler handles patient directory endpoints
type PatientHandler struct {
	patientService *services.PatientService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(patientService *services.PatientService) *PatientHandler {
	return &PatientHandler{patientService: patientService}
}

// RegisterPatientRequest represents patient registration request body
type RegisterPatientRequest struct {
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Gender         string `json:"gender"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	MedicalHistory string `json:"medical_history"`
	Language       string `json:"language"`
}

// Register handles patient registration (admin)
// @Summary Register patient
// @Description Register a new patient
// @Tags Patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RegisterPatientRequest true "Patient data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /patients [post]
func (h *PatientHandler) Register(c *fiber.Ctx) error {
	var req RegisterPatientRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	input := &services.RegisterPatientInput{
		Name:           req.Name,
		Age:            req.Age,
		Gender:         req.Gender,
		Email:          req.Email,
		Phone:          req.Phone,
		MedicalHistory: req.MedicalHistory,
		Language:       req.Language,
	}

	patient, err := h.patientService.Register(c.Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPatientAge) {
			return response.BadRequest(c, "Patient age must be between 0 and 150")
		}
		return response.InternalServerError(c, "Failed to register patient")
	}

	return response.Created(c, "Patient registered successfully", fiber.Map{
		"patient": patient,
	})
}

// GetByID handles getting a patient (admin)
// @Summary Get patient
// @Description Get a patient by ID
// @Tags Patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Patient ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /patients/{id} [get]
func (h *PatientHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid patient ID")
	}

	patient, err := h.patientService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrPatientNotFound) {
			return response.NotFound(c, "Patient not found")
		}
		return response.InternalServerError(c, "Failed to get patient")
	}

	return response.Success(c, "Patient retrieved successfully", fiber.Map{
		"patient": patient,
	})
}

// List handles listing patients (admin)
// @Summary List patients
// @Description List registered patients with pagination
// @Tags Patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /patients [get]
func (h *PatientHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.patientService.List(c.Context(), params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list patients")
	}

	return response.Success(c, "Patients retrieved successfully",
		pagination.NewResponse(result.Patients, params, result.Total))
}
