package handlers

import (
	"mfs-service/internal/core/services"
	"mfs-service/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	userService *services.UserService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(userService *services.UserService) *DashboardHandler {
	return &DashboardHandler{
		userService: userService,
	}
}

// GetAdminDashboard returns account counts
// @Summary Admin Dashboard
// @Description Account counts by status and role (Admin only)
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetAdminDashboard(c *fiber.Ctx) error {
	stats, err := h.userService.Dashboard(c.UserContext())
	if err != nil {
		return err
	}

	return response.Success(c, "Admin dashboard retrieved successfully", stats)
}
