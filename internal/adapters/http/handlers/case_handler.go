package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/adapters/persistence/models"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/services"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/pkg/pagination"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CaseHandler handles treatment case endpoints
type CaseHandler struct {
	caseService *services.CaseService
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(caseService *services.CaseService) *CaseHandler {
	return &CaseHandler{caseService: caseService}
}

// CreateCaseRequest represents case creation request body
type CreateCaseRequest struct {
	PatientID     uint            `json:"patient_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TreatmentType string          `json:"treatment_type"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	UrgencyLevel  string          `json:"urgency_level"`
	Story         string          `json:"story"`
}

// Create handles case creation
// @Summary Create treatment case
// @Description Create a new treatment case (starts pending, awaiting verification)
// @Tags Cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateCaseRequest true "Case data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cases [post]
func (h *CaseHandler) Create(c *fiber.Ctx) error {
	var req CreateCaseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.PatientID == 0 {
		return response.BadRequest(c, "Patient ID is required")
	}
	if req.Title == "" {
		return response.BadRequest(c, "Title is required")
	}
	if req.Description == "" {
		return response.BadRequest(c, "Description is required")
	}

	input := &services.CreateCaseInput{
		PatientID:     req.PatientID,
		Title:         req.Title,
		Description:   req.Description,
		TreatmentType: domain.TreatmentType(req.TreatmentType),
		TotalCost:     req.TotalCost,
		UrgencyLevel:  domain.UrgencyLevel(req.UrgencyLevel),
		Story:         req.Story,
	}

	tc, err := h.caseService.Create(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTotalCost):
			return response.BadRequest(c, "Total cost must be greater than 0")
		case errors.Is(err, services.ErrInvalidTreatment):
			return response.BadRequest(c, "Invalid treatment type")
		case errors.Is(err, services.ErrInvalidUrgency):
			return response.BadRequest(c, "Invalid urgency level")
		case errors.Is(err, services.ErrPatientNotFound):
			return response.NotFound(c, "Patient not found")
		default:
			return response.InternalServerError(c, "Failed to create case")
		}
	}

	return response.Created(c, "Treatment case created successfully", fiber.Map{
		"case": tc.ToResponse(),
	})
}

// GetByID handles getting a case by ID
// @Summary Get treatment case
// @Description Get a treatment case by ID
// @Tags Cases
// @Accept json
// @Produce json
// @Param id path int true "Case ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cases/{id} [get]
func (h *CaseHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid case ID")
	}

	tc, err := h.caseService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrCaseNotFound) {
			return response.NotFound(c, "Treatment case not found")
		}
		return response.InternalServerError(c, "Failed to get case")
	}

	return response.Success(c, "Case retrieved successfully", fiber.Map{
		"case": tc.ToResponse(),
	})
}

// ListActive handles listing active cases
// @Summary List active cases
// @Description List verified active cases with optional treatment type and urgency filters
// @Tags Cases
// @Accept json
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param treatment_type query string false "Filter by treatment type"
// @Param urgency query string false "Filter by urgency level"
// @Success 200 {object} response.Response
// @Router /cases [get]
func (h *CaseHandler) ListActive(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	input := &services.ListActiveInput{
		Page:          params.Page,
		Limit:         params.Limit,
		TreatmentType: domain.TreatmentType(c.Query("treatment_type")),
		Urgency:       domain.UrgencyLevel(c.Query("urgency")),
	}

	result, err := h.caseService.ListActive(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTreatment):
			return response.BadRequest(c, "Invalid treatment type filter")
		case errors.Is(err, services.ErrInvalidUrgency):
			return response.BadRequest(c, "Invalid urgency level filter")
		default:
			return response.InternalServerError(c, "Failed to list cases")
		}
	}

	return response.Success(c, "Cases retrieved successfully",
		pagination.NewResponse(result.Cases, params, result.Total))
}

// ListPending handles listing pending cases (admin)
// @Summary List pending cases
// @Description List unverified pending cases awaiting review
// @Tags Cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /cases/pending [get]
func (h *CaseHandler) ListPending(c *fiber.Ctx) error {
	cases, err := h.caseService.ListPending(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list pending cases")
	}

	return response.Success(c, "Pending cases retrieved successfully", fiber.Map{
		"cases": cases,
		"count": len(cases),
	})
}

// Verify handles case verification (admin)
// @Summary Verify treatment case
// @Description Verify a pending case, moving it to active
// @Tags Cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Case ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cases/{id}/verify [put]
func (h *CaseHandler) Verify(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid case ID")
	}

	tc, err := h.caseService.Verify(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCaseNotFound):
			return response.NotFound(c, "Treatment case not found")
		case errors.Is(err, services.ErrCaseNotPending):
			return response.BadRequest(c, "Only pending cases can be verified")
		default:
			return response.InternalServerError(c, "Failed to verify case")
		}
	}

	return response.Success(c, "Case verified successfully", fiber.Map{
		"case": tc.ToResponse(),
	})
}

// Cancel handles case cancellation (admin)
// @Summary Cancel treatment case
// @Description Cancel a case; no further donations will be accepted
// @Tags Cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Case ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cases/{id}/cancel [put]
func (h *CaseHandler) Cancel(c *fiber.Ctx) error {
	return h.closeCase(c, h.caseService.Cancel, "Case cancelled successfully")
}

// Complete handles case completion (admin)
// @Summary Complete treatment case
// @Description Mark a case's treatment as completed
// @Tags Cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Case ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /cases/{id}/complete [put]
func (h *CaseHandler) Complete(c *fiber.Ctx) error {
	return h.closeCase(c, h.caseService.Complete, "Case completed successfully")
}

func (h *CaseHandler) closeCase(c *fiber.Ctx, closeFn func(context.Context, uint) (*models.TreatmentCase, error), message string) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid case ID")
	}

	tc, err := closeFn(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCaseNotFound):
			return response.NotFound(c, "Treatment case not found")
		case errors.Is(err, services.ErrCaseAlreadyClosed):
			return response.BadRequest(c, "Case is already completed or cancelled")
		default:
			return response.InternalServerError(c, "Failed to update case")
		}
	}

	return response.Success(c, message, fiber.Map{
		"case": tc.ToResponse(),
	})
}
