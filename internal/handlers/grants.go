package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"clinical-case-server/internal/middleware"
	"clinical-case-server/internal/models"
	"clinical-case-server/internal/services"
	"clinical-case-server/internal/utils"
)

// GrantHandler handles access grant requests. Granting and revoking are
// patient actions; admins can inspect any patient's active grants.
type GrantHandler struct {
	Grants *services.GrantService
}

// NewGrantHandler creates a new GrantHandler.
func NewGrantHandler(grants *services.GrantService) *GrantHandler {
	return &GrantHandler{Grants: grants}
}

// CreateGrantRequest represents the request body for creating an access grant.
type CreateGrantRequest struct {
	GrantedUserID string    `json:"grantedUserId" binding:"required,uuid"`
	StartsAt      time.Time `json:"startsAt" binding:"required"`
	EndsAt        time.Time `json:"endsAt" binding:"required"`
}

// CreateGrant handles a patient granting time-boxed access to another user.
func (h *GrantHandler) CreateGrant(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateGrantRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	grant, err := h.Grants.CreateGrant(c.Request.Context(), principal.UserID, req.GrantedUserID, req.StartsAt, req.EndsAt)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Access grant created successfully", grant)
}

// RevokeGrant handles a patient revoking one of their own grants.
func (h *GrantHandler) RevokeGrant(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Grants.RevokeGrant(c.Request.Context(), c.Param("id"), principal.UserID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Access grant revoked", nil)
}

// ListActiveGrants handles listing the caller's currently active grants.
// Admins may list another patient's grants via the patientId query parameter.
func (h *GrantHandler) ListActiveGrants(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	patientID := c.Query("patientId")
	if patientID == "" {
		patientID = principal.UserID
	}
	if patientID != principal.UserID && principal.Role != models.RoleAdmin {
		utils.Forbidden(c, accessDeniedMessage)
		return
	}

	grants, err := h.Grants.ListActiveGrants(c.Request.Context(), patientID, time.Time{})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Active grants fetched successfully", grants)
}
