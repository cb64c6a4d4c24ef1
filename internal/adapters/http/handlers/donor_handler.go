package handlers

import (
	"errors"
	"strconv"

	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/domain"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/services"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/pkg/pagination"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DonorHandler handles donor directory endpoints
type DonorHandler struct {
	donorService *services.DonorService
}

// NewDonorHandler creates a new donor handler
func NewDonorHandler(donorService *services.DonorService) *DonorHandler {
	return &DonorHandler{donorService: donorService}
}

// List handles listing donors (admin)
// @Summary List donors
// @Description List registered donors with pagination
// @Tags Donors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /donors [get]
func (h *DonorHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	result, err := h.donorService.List(c.Context(), params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list donors")
	}

	return response.Success(c, "Donors retrieved successfully",
		pagination.NewResponse(result.Donors, params, result.Total))
}

// GetByID handles getting a donor (admin)
// @Summary Get donor
// @Description Get a donor by ID
// @Tags Donors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donors/{id} [get]
func (h *DonorHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid donor ID")
	}

	donor, err := h.donorService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrDonorNotFound) {
			return response.NotFound(c, "Donor not found")
		}
		return response.InternalServerError(c, "Failed to get donor")
	}

	return response.Success(c, "Donor retrieved successfully", fiber.Map{
		"donor": donor,
	})
}

// UpdateProfileRequest represents profile update request body
type UpdateProfileRequest struct {
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	DonorType string `json:"donor_type"`
}

// UpdateProfile handles updating the authenticated donor's profile
// @Summary Update my profile
// @Description Update the authenticated donor's profile fields
// @Tags Donors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body UpdateProfileRequest true "Profile data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /donors/me [put]
func (h *DonorHandler) UpdateProfile(c *fiber.Ctx) error {
	donorID, ok := c.Locals("donorID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.UpdateProfileInput{
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		DonorType: domain.DonorType(req.DonorType),
	}

	donor, err := h.donorService.UpdateProfile(c.Context(), donorID, input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDonorNotFound):
			return response.NotFound(c, "Donor not found")
		case errors.Is(err, services.ErrInvalidDonorType):
			return response.BadRequest(c, "Invalid donor type")
		default:
			return response.InternalServerError(c, "Failed to update profile")
		}
	}

	return response.Success(c, "Profile updated successfully", fiber.Map{
		"donor": donor,
	})
}

// Deactivate handles deactivating a donor account (admin)
// @Summary Deactivate donor
// @Description Soft-delete a donor account
// @Tags Donors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Donor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /donors/{id} [delete]
func (h *DonorHandler) Deactivate(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid donor ID")
	}

	if err := h.donorService.Deactivate(c.Context(), uint(id)); err != nil {
		if errors.Is(err, services.ErrDonorNotFound) {
			return response.NotFound(c, "Donor not found")
		}
		return response.InternalServerError(c, "Failed to deactivate donor")
	}

	return response.Success(c, "Donor deactivated successfully", nil)
}
