package handlers

import (
	"github.com/gin-gonic/gin"

	"clinical-case-server/internal/middleware"
	"clinical-case-server/internal/models"
	"clinical-case-server/internal/services"
	"clinical-case-server/internal/utils"
)

// ProfileHandler handles profile reads and updates. Authorization happens
// here, against the access policy; the profile service itself does not check.
type ProfileHandler struct {
	Profiles *services.ProfileService
	Access   *services.AccessPolicy
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *services.ProfileService, access *services.AccessPolicy) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles, Access: access}
}

// GetProfile handles fetching a profile: the caller's own by default, or
// another user's via the userId query parameter when the access policy allows.
// Passing details=true hydrates the role-specific collections.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	targetID := c.Query("userId")
	if targetID == "" {
		targetID = principal.UserID
	}

	if targetID != principal.UserID && !h.Access.CanAccess(c.Request.Context(), principal, targetID) {
		utils.Forbidden(c, accessDeniedMessage)
		return
	}

	detailed := c.Query("details") == "true"
	profile, err := h.Profiles.GetProfile(c.Request.Context(), targetID, detailed)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Profile fetched successfully", profile)
}

// UpdateProfile handles a partial profile update. Users update themselves;
// admins may update anyone via the userId query parameter.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	targetID := c.Query("userId")
	if targetID == "" {
		targetID = principal.UserID
	}
	if targetID != principal.UserID && principal.Role != models.RoleAdmin {
		utils.Forbidden(c, "You may only update your own profile.")
		return
	}

	var update services.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	profile, err := h.Profiles.UpdateProfile(c.Request.Context(), targetID, update)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Profile updated successfully", profile)
}
