package repository

import (
	"context"
	"errors"
	"time"

	"clinical-case-server/internal/models"
)

// Sentinel errors surfaced by the store layer.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a version-checked update loses a race
	// against a concurrent writer. The caller decides whether to retry.
	ErrConflict = errors.New("concurrent update conflict")
)

// UserRepository provides access to users and their role-specific profiles.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error

	PatientProfile(ctx context.Context, userID string) (*models.PatientProfile, error)
	// PatientProfileDetailed loads the profile with its vaccinations, test
	// results, cases and outgoing access grants.
	PatientProfileDetailed(ctx context.Context, userID string) (*models.PatientProfile, error)
	DoctorProfile(ctx context.Context, userID string) (*models.DoctorProfile, error)
	NurseProfile(ctx context.Context, userID string) (*models.NurseProfile, error)
	// NurseProfileDetailed loads the profile with its triage requests.
	NurseProfileDetailed(ctx context.Context, userID string) (*models.NurseProfile, error)

	CreatePatientProfile(ctx context.Context, profile *models.PatientProfile) error
	CreateDoctorProfile(ctx context.Context, profile *models.DoctorProfile) error
	CreateNurseProfile(ctx context.Context, profile *models.NurseProfile) error
	SavePatientProfile(ctx context.Context, profile *models.PatientProfile) error
	SaveDoctorProfile(ctx context.Context, profile *models.DoctorProfile) error
}

// CaseRepository provides access to cases, case messages and triage requests.
type CaseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Case, error)
	Create(ctx context.Context, c *models.Case) error
	// UpdateVersioned persists state/assignment changes with an optimistic
	// version check and returns ErrConflict on a lost race.
	UpdateVersioned(ctx context.Context, c *models.Case) error
	ListByPatient(ctx context.Context, patientUserID string, state *models.CaseState) ([]models.Case, error)
	ListByDoctor(ctx context.Context, doctorUserID string, state *models.CaseState) ([]models.Case, error)
	// DoctorAssignedToPatient reports whether the doctor is the assigned
	// doctor on any case, open or closed, belonging to the patient.
	DoctorAssignedToPatient(ctx context.Context, doctorUserID, patientUserID string) (bool, error)

	CreateMessage(ctx context.Context, msg *models.CaseMessage) error
	ListMessages(ctx context.Context, caseID string) ([]models.CaseMessage, error)

	CreateTriageRequest(ctx context.Context, req *models.TriageRequest) error
	FindTriageRequest(ctx context.Context, id string) (*models.TriageRequest, error)
	SaveTriageRequest(ctx context.Context, req *models.TriageRequest) error
}

// AppointmentRepository provides access to appointments and their visits.
type AppointmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, appt *models.Appointment) error
	// UpdateVersioned persists appointment state changes with an optimistic
	// version check and returns ErrConflict on a lost race.
	UpdateVersioned(ctx context.Context, appt *models.Appointment) error
	ListByCase(ctx context.Context, caseID string) ([]models.Appointment, error)

	CreateVisit(ctx context.Context, visit *models.AppointmentVisit) error
	FindVisit(ctx context.Context, appointmentID string) (*models.AppointmentVisit, error)
	// SaveVisitAndAppointment commits visit changes and the parent
	// appointment's attended flag in a single transaction.
	SaveVisitAndAppointment(ctx context.Context, visit *models.AppointmentVisit, appt *models.Appointment) error
}

// GrantRepository provides access to time-boxed access grants.
type GrantRepository interface {
	Create(ctx context.Context, grant *models.AccessGrant) error
	FindByID(ctx context.Context, id string) (*models.AccessGrant, error)
	Delete(ctx context.Context, id string) error
	// ListActive returns the patient's grants whose window covers asOf,
	// ordered by StartsAt ascending.
	ListActive(ctx context.Context, patientUserID string, asOf time.Time) ([]models.AccessGrant, error)
	// HasActive reports whether the grantee holds any grant from the patient
	// covering asOf.
	HasActive(ctx context.Context, patientUserID, grantedUserID string, asOf time.Time) (bool, error)
}
