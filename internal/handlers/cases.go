package handlers

import (
	"github.com/gin-gonic/gin"

	"clinical-case-server/internal/middleware"
	"clinical-case-server/internal/models"
	"clinical-case-server/internal/repository"
	"clinical-case-server/internal/services"
	"clinical-case-server/internal/utils"
)

// CaseHandler handles case lifecycle, case message and triage requests.
type CaseHandler struct {
	Cases  *services.CaseService
	Users  repository.UserRepository
	Access *services.AccessPolicy
}

// NewCaseHandler creates a new CaseHandler.
func NewCaseHandler(cases *services.CaseService, users repository.UserRepository, access *services.AccessPolicy) *CaseHandler {
	return &CaseHandler{Cases: cases, Users: users, Access: access}
}

// OpenCaseRequest represents the request body for opening a case.
type OpenCaseRequest struct {
	// PatientID is optional; patients open cases for themselves.
	PatientID string `json:"patientId"`
}

// OpenCase handles opening a new case.
func (h *CaseHandler) OpenCase(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req OpenCaseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, "Invalid request payload: "+err.Error())
			return
		}
	}

	patientID := req.PatientID
	if patientID == "" {
		patientID = principal.UserID
	}
	// Patients may only open cases for themselves.
	if principal.Role == models.RolePatient && patientID != principal.UserID {
		utils.Forbidden(c, "Patients can only open cases for themselves.")
		return
	}

	opened, err := h.Cases.OpenCase(c.Request.Context(), patientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Case opened successfully", opened)
}

// ListCases handles fetching the caller's cases, open by default or closed
// with status=past.
func (h *CaseHandler) ListCases(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.Users.FindByID(c.Request.Context(), principal.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var cases []models.Case
	if c.Query("status") == "past" {
		cases, err = h.Cases.GetPastCases(c.Request.Context(), user)
	} else {
		cases, err = h.Cases.GetOpenCases(c.Request.Context(), user)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Cases fetched successfully", cases)
}

// GetCase handles fetching a single case.
func (h *CaseHandler) GetCase(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	found, err := h.Cases.GetCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !h.Access.CanAccess(c.Request.Context(), principal, found.PatientUserID) {
		utils.Forbidden(c, accessDeniedMessage)
		return
	}

	utils.Success(c, "Case fetched successfully", found)
}

// AssignDoctorRequest represents the request body for assigning a doctor.
type AssignDoctorRequest struct {
	DoctorID string `json:"doctorId" binding:"required,uuid"`
}

// AssignDoctor handles assigning a doctor to an open case. The caller must
// already hold access to the patient's record; assignment is what creates
// doctor access, so it cannot itself be the way in.
func (h *CaseHandler) AssignDoctor(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req AssignDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	found, err := h.Cases.GetCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !h.Access.CanAccess(c.Request.Context(), principal, found.PatientUserID) {
		utils.Forbidden(c, accessDeniedMessage)
		return
	}

	updated, err := h.Cases.AssignDoctor(c.Request.Context(), found.ID, req.DoctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Doctor assigned successfully", updated)
}

// CloseCase handles closing an open case.
func (h *CaseHandler) CloseCase(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	found, err := h.Cases.GetCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !h.Access.CanAccess(c.Request.Context(), principal, found.PatientUserID) {
		utils.Forbidden(c, accessDeniedMessage)
		return
	}

	closed, err := h.Cases.CloseCase(c.Request.Context(), found.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Case closed successfully", closed)
}

// PostMessageRequest represents the request body for posting a case message.
type PostMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// PostMessage handles posting a message on a case.
func (h *CaseHandler) PostMessage(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req PostMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	found, err := h.Cases.GetCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !h.Access.CanAccess(c.Request.Context(), principal, found.PatientUserID) {
		utils.Forbidden(c, accessDeniedMessage)
		return
	}

	msg, err := h.Cases.PostMessage(c.Request.Context(), found.ID, principal.UserID, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Message posted successfully", msg)
}

// ListMessages handles fetching a case's messages.
func (h *CaseHandler) ListMessages(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	found, err := h.Cases.GetCase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !h.Access.CanAccess(c.Request.Context(), principal, found.PatientUserID) {
		utils.Forbidden(c, accessDeniedMessage)
		return
	}

	messages, err := h.Cases.ListMessages(c.Request.Context(), found.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Messages fetched successfully", messages)
}

// TriageRequestBody represents the request body for requesting triage.
type TriageRequestBody struct {
	CaseID string `json:"caseId" binding:"required,uuid"`
}

// RequestTriage handles a nurse requesting triage on a case.
func (h *CaseHandler) RequestTriage(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req TriageRequestBody
	if !utils.BindAndValidate(c, &req) {
		return
	}

	created, err := h.Cases.RequestTriage(c.Request.Context(), principal.UserID, req.CaseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Triage requested successfully", created)
}

// AcceptTriage handles accepting a triage request.
func (h *CaseHandler) AcceptTriage(c *gin.Context) {
	accepted, err := h.Cases.AcceptTriage(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Triage request accepted", accepted)
}
