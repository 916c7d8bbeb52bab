package handler

import (
	"net/http"

	"github.com/astraid/intervox-backend/internal/response"
	"github.com/astraid/intervox-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles operator maintenance endpoints.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// WipeData godoc
// DELETE /api/v1/admin/data
// Deletes all interviews and candidates and purges pending evaluations.
func (h *AdminHandler) WipeData(c *gin.Context) {
	if err := h.adminService.WipeAll(c.Request.Context()); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "wiped"})
}
