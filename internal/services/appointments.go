package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clinical-case-server/internal/models"
	"clinical-case-server/internal/repository"
)

// AppointmentDetails carries the caller-supplied fields of a new appointment.
type AppointmentDetails struct {
	ScheduledAt time.Time
	Description string
}

// VisitDetails carries a partial update to a visit record. Nil fields keep
// their current values.
type VisitDetails struct {
	Notes         *string
	Outcome       *string
	BPM           *int
	BloodPressure *string
	BodyTemp      *float64
	Attended      *bool
}

// AppointmentService owns the appointment approval state machine and the 1:1
// link to the visit record. ApprovalStatus and Cancelled jointly define the
// observable state; Cancelled is terminal.
type AppointmentService struct {
	appts  repository.AppointmentRepository
	cases  repository.CaseRepository
	clock  Clock
	logger *zap.Logger
}

// NewAppointmentService creates an AppointmentService.
func NewAppointmentService(appts repository.AppointmentRepository, cases repository.CaseRepository, clock Clock, logger *zap.Logger) *AppointmentService {
	return &AppointmentService{appts: appts, cases: cases, clock: clock, logger: logger}
}

// CreateAppointment requests a new appointment against an open case. The
// appointment starts waiting and not cancelled.
func (s *AppointmentService) CreateAppointment(ctx context.Context, caseID, requestingUserID string, details AppointmentDetails) (*models.Appointment, error) {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.State != models.CaseStateOpen {
		return nil, fmt.Errorf("case %s: %w", caseID, ErrCaseNotOpen)
	}

	now := s.clock.Now()
	if details.ScheduledAt.Before(now) {
		return nil, fmt.Errorf("requested time %s is before %s: %w",
			details.ScheduledAt.Format(time.RFC3339), now.Format(time.RFC3339), ErrInvalidSchedule)
	}

	appt := &models.Appointment{
		CaseID:           caseID,
		RequestingUserID: requestingUserID,
		ScheduledAt:      details.ScheduledAt,
		Description:      details.Description,
		ApprovalStatus:   models.ApprovalWaiting,
		Version:          1,
	}
	appt.CreatedAt = now
	if err := s.appts.Create(ctx, appt); err != nil {
		return nil, err
	}

	s.logger.Info("appointment created",
		zap.String("appointment_id", appt.ID),
		zap.String("case_id", caseID),
		zap.Time("scheduled_at", details.ScheduledAt))
	return appt, nil
}

// GetAppointment returns an appointment with its visit, if any.
func (s *AppointmentService) GetAppointment(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	return s.appts.FindByID(ctx, appointmentID)
}

// ListForCase returns a case's appointments ordered by scheduled time.
func (s *AppointmentService) ListForCase(ctx context.Context, caseID string) ([]models.Appointment, error) {
	if _, err := s.cases.FindByID(ctx, caseID); err != nil {
		return nil, err
	}
	return s.appts.ListByCase(ctx, caseID)
}

// SetApprovalStatus moves the approval state machine. Only doctors and admins
// may approve or deny. waiting->approved, waiting->denied and
// approved<->denied are allowed (re-evaluation); going back to waiting is not.
// Once a visit exists the status is pinned to approved.
func (s *AppointmentService) SetApprovalStatus(ctx context.Context, appointmentID string, newStatus models.ApprovalStatus, actor Principal) (*models.Appointment, error) {
	if actor.Role != models.RoleDoctor && actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("role %s may not set approval: %w", actor.Role, ErrForbidden)
	}

	appt, err := s.appts.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Cancelled {
		return nil, fmt.Errorf("appointment %s: %w", appointmentID, ErrAppointmentCancelled)
	}

	switch newStatus {
	case models.ApprovalApproved, models.ApprovalDenied:
	case models.ApprovalWaiting:
		if appt.ApprovalStatus != models.ApprovalWaiting {
			return nil, fmt.Errorf("%s -> waiting: %w", appt.ApprovalStatus, ErrInvalidTransition)
		}
	default:
		return nil, fmt.Errorf("status %q: %w", newStatus, ErrInvalidTransition)
	}

	// A visit pins approval: reversing to denied would orphan the record of
	// an attended appointment.
	if appt.Visit != nil && newStatus != models.ApprovalApproved {
		return nil, fmt.Errorf("appointment %s already has a visit: %w", appointmentID, ErrInvalidTransition)
	}

	appt.ApprovalStatus = newStatus
	if err := s.appts.UpdateVersioned(ctx, appt); err != nil {
		return nil, err
	}

	s.logger.Info("appointment approval updated",
		zap.String("appointment_id", appointmentID),
		zap.String("status", string(newStatus)),
		zap.String("actor_id", actor.UserID))
	return appt, nil
}

// CancelAppointment cancels an appointment. Cancelling an already-cancelled
// appointment succeeds without further mutation.
func (s *AppointmentService) CancelAppointment(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	appt, err := s.appts.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Cancelled {
		return appt, nil
	}

	appt.Cancelled = true
	if err := s.appts.UpdateVersioned(ctx, appt); err != nil {
		return nil, err
	}
	s.logger.Info("appointment cancelled", zap.String("appointment_id", appointmentID))
	return appt, nil
}

// CreateVisit creates the visit record for an approved appointment. At most
// one visit exists per appointment.
func (s *AppointmentService) CreateVisit(ctx context.Context, appointmentID string) (*models.AppointmentVisit, error) {
	appt, err := s.appts.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Cancelled {
		return nil, fmt.Errorf("appointment %s: %w", appointmentID, ErrAppointmentCancelled)
	}
	if appt.ApprovalStatus != models.ApprovalApproved {
		return nil, fmt.Errorf("appointment %s is %s: %w", appointmentID, appt.ApprovalStatus, ErrNotApproved)
	}
	if _, err := s.appts.FindVisit(ctx, appointmentID); err == nil {
		return nil, fmt.Errorf("appointment %s: %w", appointmentID, ErrVisitAlreadyExists)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	visit := &models.AppointmentVisit{AppointmentID: appointmentID}
	visit.CreatedAt = s.clock.Now()
	if err := s.appts.CreateVisit(ctx, visit); err != nil {
		return nil, err
	}
	s.logger.Info("visit created", zap.String("appointment_id", appointmentID), zap.String("visit_id", visit.ID))
	return visit, nil
}

// UpdateVisit applies a partial update to an existing visit and, when the
// details say so, marks the parent appointment attended. Attended only moves
// false -> true; a false value in the details is ignored. The visit fields and
// the attended flag commit atomically.
func (s *AppointmentService) UpdateVisit(ctx context.Context, appointmentID string, details VisitDetails) (*models.AppointmentVisit, error) {
	appt, err := s.appts.FindByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Cancelled {
		return nil, fmt.Errorf("appointment %s: %w", appointmentID, ErrAppointmentCancelled)
	}

	visit, err := s.appts.FindVisit(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("appointment %s: %w", appointmentID, ErrNoVisit)
		}
		return nil, err
	}

	if details.Notes != nil {
		visit.Notes = *details.Notes
	}
	if details.Outcome != nil {
		visit.Outcome = *details.Outcome
	}
	if details.BPM != nil {
		visit.BPM = details.BPM
	}
	if details.BloodPressure != nil {
		visit.BloodPressure = *details.BloodPressure
	}
	if details.BodyTemp != nil {
		visit.BodyTemp = details.BodyTemp
	}
	if details.Attended != nil && *details.Attended {
		appt.Attended = true
	}

	if err := s.appts.SaveVisitAndAppointment(ctx, visit, appt); err != nil {
		return nil, err
	}
	return visit, nil
}
