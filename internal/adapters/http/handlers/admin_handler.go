package handlers

import (
	"github.com/haneenhabash/healthpal-platform-HRL/internal/core/services"
	"github.com/haneenhabash/healthpal-platform-HRL/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles admin statistics and reconciliation endpoints
type AdminHandler struct {
	statsService     *services.StatsService
	reconcileService *services.ReconcileService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(statsService *services.StatsService, reconcileService *services.ReconcileService) *AdminHandler {
	return &AdminHandler{
		statsService:     statsService,
		reconcileService: reconcileService,
	}
}

// Statistics handles platform statistics (admin)
// @Summary Platform statistics
// @Description Case counts by status, donation totals, recent donations, top cases
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/statistics [get]
func (h *AdminHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.statsService.Statistics(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", stats)
}

// Reconcile handles an on-demand ledger reconciliation run (admin)
// @Summary Run ledger reconciliation
// @Description Audit every case's stored totals against its completed donations
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/reconcile [post]
func (h *AdminHandler) Reconcile(c *fiber.Ctx) error {
	report, err := h.reconcileService.Run(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to run reconciliation")
	}

	return response.Success(c, "Reconciliation completed", report)
}
