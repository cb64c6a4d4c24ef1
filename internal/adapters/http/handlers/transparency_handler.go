package handlers

import (
	"errors"
	"strconv"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/services"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TransparencyHandler handles transparency and expense-tracking endpoints
type TransparencyHandler struct {
	transparencyService *services.TransparencyService
	invoiceService      *services.InvoiceService
}

// NewTransparencyHandler creates a new transparency handler
func NewTransparencyHandler(
	transparencyService *services.TransparencyService,
	invoiceService *services.InvoiceService,
) *TransparencyHandler {
	return &TransparencyHandler{
		transparencyService: transparencyService,
		invoiceService:      invoiceService,
	}
}

// Dashboard handles the case transparency dashboard
// @Summary Case transparency dashboard
// @Description Full funding picture of a case: totals, donations, invoices, recovery updates
// @Tags Transparency
// @Accept json
// @Produce json
// @Param caseId path int true "Treatment case ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transparency/case/{caseId} [get]
func (h *TransparencyHandler) Dashboard(c *fiber.Ctx) error {
	caseID, err := strconv.ParseUint(c.Params("caseId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid case ID")
	}

	dashboard, err := h.transparencyService.CaseDashboard(c.Context(), uint(caseID))
	if err != nil {
		if errors.Is(err, services.ErrCaseNotFound) {
			return response.NotFound(c, "Treatment case not found")
		}
		return response.InternalServerError(c, "Failed to build transparency dashboard")
	}

	return response.Success(c, "Transparency dashboard retrieved successfully", dashboard)
}

// AddInvoiceRequest represents add invoice request body
type AddInvoiceRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	InvoiceType string          `json:"invoice_type"`
	DonationID  *uint           `json:"donation_id"`
	ReceiptURL  string          `json:"receipt_url"`
}

// AddInvoice handles invoice creation
// @Summary Add expense invoice
// @Description Record a proof-of-spend invoice against a case
// @Tags Transparency
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param caseId path int true "Treatment case ID"
// @Param body body AddInvoiceRequest true "Invoice data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transparency/case/{caseId}/invoices [post]
func (h *TransparencyHandler) AddInvoice(c *fiber.Ctx) error {
	caseID, err := strconv.ParseUint(c.Params("caseId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid case ID")
	}

	var req AddInvoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Description == "" {
		return response.BadRequest(c, "Description is required")
	}

	input := &services.AddInvoiceInput{
		Amount:      req.Amount,
		Description: req.Description,
		InvoiceType: domain.InvoiceType(req.InvoiceType),
		DonationID:  req.DonationID,
		ReceiptURL:  req.ReceiptURL,
	}

	invoice, err := h.invoiceService.Add(c.Context(), uint(caseID), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvoiceAmount):
			return response.BadRequest(c, "Invoice amount must be greater than 0")
		case errors.Is(err, services.ErrInvalidInvoiceType):
			return response.BadRequest(c, "Invalid invoice type")
		case errors.Is(err, services.ErrCaseNotFound):
			return response.NotFound(c, "Treatment case not found")
		case errors.Is(err, services.ErrDonationNotFound):
			return response.NotFound(c, "Donation not found")
		case errors.Is(err, services.ErrDonationCaseMismatch):
			return response.BadRequest(c, "Donation does not belong to this case")
		default:
			return response.InternalServerError(c, "Failed to add invoice")
		}
	}

	return response.Created(c, "Invoice added successfully", fiber.Map{
		"invoice": invoice,
	})
}

// ListInvoices handles listing a case's invoices
// @Summary List case invoices
// @Description List a case's expense invoices, oldest first
// @Tags Transparency
// @Accept json
// @Produce json
// @Param caseId path int true "Treatment case ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transparency/case/{caseId}/invoices [get]
func (h *TransparencyHandler) ListInvoices(c *fiber.Ctx) error {
	caseID, err := strconv.ParseUint(c.Params("caseId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid case ID")
	}

	invoices, err := h.invoiceService.ListByCase(c.Context(), uint(caseID))
	if err != nil {
		if errors.Is(err, services.ErrCaseNotFound) {
			return response.NotFound(c, "Treatment case not found")
		}
		return response.InternalServerError(c, "Failed to list invoices")
	}

	return response.Success(c, "Invoices retrieved successfully", fiber.Map{
		"invoices": invoices,
		"count":    len(invoices),
	})
}

// AddRecoveryUpdateRequest represents recovery update request body
type AddRecoveryUpdateRequest struct {
	Update string   `json:"update"`
	Photos []string `json:"photos"`
}

// AddRecoveryUpdate handles adding a recovery update (admin)
// @Summary Add recovery update
// @Description Add a treatment progress update to a case
// @Tags Transparency
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param caseId path int true "Treatment case ID"
// @Param body body AddRecoveryUpdateRequest true "Update data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transparency/case/{caseId}/updates [post]
func (h *TransparencyHandler) AddRecoveryUpdate(c *fiber.Ctx) error {
	caseID, err := strconv.ParseUint(c.Params("caseId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid case ID")
	}

	var req AddRecoveryUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.AddRecoveryUpdateInput{
		Update: req.Update,
		Photos: req.Photos,
	}

	entry, err := h.transparencyService.AddRecoveryUpdate(c.Context(), uint(caseID), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyUpdate):
			return response.BadRequest(c, "Update text is required")
		case errors.Is(err, services.ErrCaseNotFound):
			return response.NotFound(c, "Treatment case not found")
		default:
			return response.InternalServerError(c, "Failed to add recovery update")
		}
	}

	return response.Created(c, "Recovery update added successfully", fiber.Map{
		"update": entry,
	})
}

// AddFeedbackRequest represents patient feedback request body
type AddFeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// AddFeedback handles adding patient feedback
// @Summary Add patient feedback
// @Description Add a patient satisfaction entry to a case
// @Tags Transparency
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param caseId path int true "Treatment case ID"
// @Param body body AddFeedbackRequest true "Feedback data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /transparency/case/{caseId}/feedback [post]
func (h *TransparencyHandler) AddFeedback(c *fiber.Ctx) error {
	caseID, err := strconv.ParseUint(c.Params("caseId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid case ID")
	}

	var req AddFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.AddFeedbackInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	}

	entry, err := h.transparencyService.AddFeedback(c.Context(), uint(caseID), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRating):
			return response.BadRequest(c, "Rating must be between 1 and 5")
		case errors.Is(err, services.ErrCaseNotFound):
			return response.NotFound(c, "Treatment case not found")
		default:
			return response.InternalServerError(c, "Failed to add feedback")
		}
	}

	return response.Created(c, "Feedback added successfully", fiber.Map{
		"feedback": entry,
	})
}
