package handler

import (
	"net/http"

	"dtalks/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService service.AdminUserService
}

func NewAdminHandler(adminService service.AdminUserService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// RegisterRoutes registers /admin routes; the parent group must require the admin role
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin/users")
	admin.GET("", h.ListUsers)
	admin.PUT("/:id/suspend", h.Suspend)
	admin.PUT("/:id/unsuspend", h.Unsuspend)
}

// ListUsers
// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, pageSize, ok := bindPage(c)
	if !ok {
		return
	}

	resp, err := h.adminService.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Suspend
// PUT /api/admin/users/:id/suspend
func (h *AdminHandler) Suspend(c *gin.Context) {
	adminID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.adminService.Suspend(c.Request.Context(), adminID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unsuspend
// PUT /api/admin/users/:id/unsuspend
func (h *AdminHandler) Unsuspend(c *gin.Context) {
	adminID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.adminService.Unsuspend(c.Request.Context(), adminID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
