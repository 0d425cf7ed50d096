package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"clinical-case-server/internal/middleware"
	"clinical-case-server/internal/models"
	"clinical-case-server/internal/services"
	"clinical-case-server/internal/utils"
)

// AppointmentHandler handles appointment and visit requests.
type AppointmentHandler struct {
	Appointments *services.AppointmentService
	Cases        *services.CaseService
	Access       *services.AccessPolicy
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(appointments *services.AppointmentService, cases *services.CaseService, access *services.AccessPolicy) *AppointmentHandler {
	return &AppointmentHandler{Appointments: appointments, Cases: cases, Access: access}
}

// caseAccessAllowed loads the appointment's parent case and checks the access
// policy against the case's patient.
func (h *AppointmentHandler) caseAccessAllowed(c *gin.Context, principal services.Principal, caseID string) bool {
	parent, err := h.Cases.GetCase(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return false
	}
	if !h.Access.CanAccess(c.Request.Context(), principal, parent.PatientUserID) {
		utils.Forbidden(c, accessDeniedMessage)
		return false
	}
	return true
}

// CreateAppointmentRequest represents the request body for requesting an appointment.
type CreateAppointmentRequest struct {
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	Description string    `json:"description"`
}

// CreateAppointment handles requesting a new appointment against a case.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	caseID := c.Param("id")
	if !h.caseAccessAllowed(c, principal, caseID) {
		return
	}

	appt, err := h.Appointments.CreateAppointment(c.Request.Context(), caseID, principal.UserID, services.AppointmentDetails{
		ScheduledAt: req.ScheduledAt,
		Description: req.Description,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Appointment created successfully", appt)
}

// ListAppointmentsForCase handles fetching a case's appointments.
func (h *AppointmentHandler) ListAppointmentsForCase(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	caseID := c.Param("id")
	if !h.caseAccessAllowed(c, principal, caseID) {
		return
	}

	appts, err := h.Appointments.ListForCase(c.Request.Context(), caseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", appts)
}

// GetAppointment handles fetching a single appointment with its visit.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Appointments.GetAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !h.caseAccessAllowed(c, principal, appt.CaseID) {
		return
	}

	utils.Success(c, "Appointment fetched successfully", appt)
}

// SetApprovalRequest represents the request body for an approval decision.
type SetApprovalRequest struct {
	Status models.ApprovalStatus `json:"status" binding:"required,oneof=waiting approved denied"`
}

// SetApproval handles a doctor's or admin's approval decision.
func (h *AppointmentHandler) SetApproval(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req SetApprovalRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Appointments.SetApprovalStatus(c.Request.Context(), c.Param("id"), req.Status, principal)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment approval updated", appt)
}

// CancelAppointment handles cancelling an appointment. Cancelling twice is
// not an error.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Appointments.GetAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !h.caseAccessAllowed(c, principal, appt.CaseID) {
		return
	}

	cancelled, err := h.Appointments.CancelAppointment(c.Request.Context(), appt.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled", cancelled)
}

// CreateVisit handles recording that an approved appointment took place.
func (h *AppointmentHandler) CreateVisit(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Appointments.GetAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !h.caseAccessAllowed(c, principal, appt.CaseID) {
		return
	}

	visit, err := h.Appointments.CreateVisit(c.Request.Context(), appt.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Visit created successfully", visit)
}

// UpdateVisitRequest represents the request body for a partial visit update.
// Omitted fields keep their current values.
type UpdateVisitRequest struct {
	Notes         *string  `json:"notes"`
	Outcome       *string  `json:"outcome"`
	BPM           *int     `json:"bpm"`
	BloodPressure *string  `json:"bloodPressure"`
	BodyTemp      *float64 `json:"bodyTemp"`
	Attended      *bool    `json:"attended"`
}

// UpdateVisit handles a partial update of a visit record.
func (h *AppointmentHandler) UpdateVisit(c *gin.Context) {
	principal, ok := middleware.GetPrincipalFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	appt, err := h.Appointments.GetAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !h.caseAccessAllowed(c, principal, appt.CaseID) {
		return
	}

	visit, err := h.Appointments.UpdateVisit(c.Request.Context(), appt.ID, services.VisitDetails{
		Notes:         req.Notes,
		Outcome:       req.Outcome,
		BPM:           req.BPM,
		BloodPressure: req.BloodPressure,
		BodyTemp:      req.BodyTemp,
		Attended:      req.Attended,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Visit updated successfully", visit)
}
