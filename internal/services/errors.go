package services

import (
	"errors"

	"clinical-case-server/internal/repository"
)

// Error taxonomy for the workflow core. Handlers dispatch on these with
// errors.Is; the core never swallows them.
var (
	// ErrNotFound is returned when a referenced entity is absent.
	ErrNotFound = repository.ErrNotFound
	// ErrConflict is returned when a concurrent write was detected by the
	// store. The core performs no retries; the caller decides.
	ErrConflict = repository.ErrConflict

	// ErrForbidden is returned when policy denies an otherwise well-formed
	// request.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState is returned when a lifecycle precondition is violated.
	ErrInvalidState = errors.New("invalid state for operation")
	// ErrInvalidTransition is returned when an approval-status transition is
	// not permitted from the current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalidRange is returned when a grant window has start after end.
	ErrInvalidRange = errors.New("invalid time range")
	// ErrInvalidSchedule is returned when an appointment is requested for a
	// time already in the past.
	ErrInvalidSchedule = errors.New("scheduled time is in the past")
	// ErrUnknownUser is returned when a caller-supplied user id does not
	// resolve to a user.
	ErrUnknownUser = errors.New("unknown user")
	// ErrUnsupportedUserType is returned by role-dispatched operations for a
	// role outside the supported set.
	ErrUnsupportedUserType = errors.New("unsupported user type")

	ErrPatientBlacklisted   = errors.New("patient is blacklisted")
	ErrCaseNotOpen          = errors.New("case is not open")
	ErrAppointmentCancelled = errors.New("appointment is cancelled")
	ErrNotApproved          = errors.New("appointment is not approved")
	ErrVisitAlreadyExists   = errors.New("visit already exists")
	ErrNoVisit              = errors.New("appointment has no visit")
)
