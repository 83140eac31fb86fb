package handlers

import (
	"sacco-hub/internal/adapters/http/middleware"
	"sacco-hub/internal/core/services"
	"sacco-hub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler serves the aggregated dashboard views
type DashboardHandler struct {
	dashService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashService: dashService}
}

// GetAdminDashboard returns cooperative-wide statistics
// @Summary Admin dashboard
// @Description Membership, application, contribution and document statistics for administrators
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard/admin [get]
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	data, err := h.dashService.GetAdminDashboard(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}

// GetMemberDashboard returns the calling member's overview
// @Summary Member dashboard
// @Description Balances, pending items and recent notifications for the calling member
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard/me [get]
func (h *DashboardHandler) GetMemberDashboard(c *fiber.Ctx) error {
	actor, _ := middleware.GetActor(c)

	data, err := h.dashService.GetMemberDashboard(c.Context(), actor.UserID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
