package handlers

import (
	"errors"
	"strconv"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/services"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// DonationHandler handles donation endpoints
type DonationHandler struct {
	donationService *services.DonationService
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donationService *services.DonationService) *DonationHandler {
	return &DonationHandler{donationService: donationService}
}

// RecordDonationRequest represents record donation request body
type RecordDonationRequest struct {
	TreatmentCaseID uint            `json:"treatment_case_id"`
	Amount          decimal.Decimal `json:"amount"`
	IsAnonymous     bool            `json:"is_anonymous"`
	Message         string          `json:"message"`
	PaymentMethod   string          `json:"payment_method"`
	TransactionID   string          `json:"transaction_id"`
}

// Record handles donation recording
// @Summary Record a donation
// @Description Record a completed donation and credit it to the target case
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RecordDonationRequest true "Donation data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donations [post]
func (h *DonationHandler) Record(c *fiber.Ctx) error {
	donorID, ok := c.Locals("donorID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req RecordDonationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.TreatmentCaseID == 0 {
		return response.BadRequest(c, "Treatment case ID is required")
	}

	input := &services.RecordDonationInput{
		DonorID:         donorID,
		TreatmentCaseID: req.TreatmentCaseID,
		Amount:          req.Amount,
		IsAnonymous:     req.IsAnonymous,
		Message:         req.Message,
		PaymentMethod:   req.PaymentMethod,
		TransactionID:   req.TransactionID,
	}

	result, err := h.donationService.Record(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			return response.BadRequest(c, "Donation amount must be greater than 0")
		case errors.Is(err, services.ErrCaseNotFound):
			return response.NotFound(c, "Treatment case not found")
		case errors.Is(err, services.ErrDonorNotFound):
			return response.NotFound(c, "Donor not found")
		case errors.Is(err, services.ErrCaseClosed):
			return response.BadRequest(c, "Case is already fully funded or closed")
		default:
			return response.InternalServerError(c, "Failed to record donation")
		}
	}

	data := fiber.Map{
		"donation_id":      result.Donation.ID,
		"amount_donated":   result.Donation.Amount,
		"case_status":      result.CaseStatus,
		"remaining_needed": result.RemainingNeeded,
	}

	if result.Replayed {
		return response.Success(c, "Donation already recorded", data)
	}
	return response.Created(c, "Donation recorded successfully", data)
}

// ListByCase handles listing a case's donations
// @Summary List donations for a case
// @Description List a case's donations, newest first, with anonymous donors masked. Signed-in donors see their own anonymous donations unmasked.
// @Tags Donations
// @Accept json
// @Produce json
// @Param caseId path int true "Treatment case ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donations/case/{caseId} [get]
func (h *DonationHandler) ListByCase(c *fiber.Ctx) error {
	caseID, err := strconv.ParseUint(c.Params("caseId"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid case ID")
	}

	// set by OptionalAuth when a valid token is presented
	viewerID, _ := c.Locals("donorID").(uint)

	donations, err := h.donationService.ListByCase(c.Context(), uint(caseID), viewerID)
	if err != nil {
		if errors.Is(err, services.ErrCaseNotFound) {
			return response.NotFound(c, "Treatment case not found")
		}
		return response.InternalServerError(c, "Failed to list donations")
	}

	return response.Success(c, "Donations retrieved successfully", fiber.Map{
		"donations": donations,
		"count":     len(donations),
	})
}

// MyDonations handles listing the current donor's donations
// @Summary List my donations
// @Description List the authenticated donor's donations, newest first
// @Tags Donations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /donations/me [get]
func (h *DonationHandler) MyDonations(c *fiber.Ctx) error {
	donorID, ok := c.Locals("donorID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	donations, err := h.donationService.ListByDonor(c.Context(), donorID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list donations")
	}

	return response.Success(c, "Donations retrieved successfully", fiber.Map{
		"donations": donations,
		"count":     len(donations),
	})
}
