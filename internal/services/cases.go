package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"clinical-case-server/internal/models"
	"clinical-case-server/internal/repository"
)

// CaseService owns the case lifecycle (open -> closed, never back), doctor
// assignment, case messages and triage requests.
type CaseService struct {
	cases  repository.CaseRepository
	users  repository.UserRepository
	logger *zap.Logger
}

// NewCaseService creates a CaseService.
func NewCaseService(cases repository.CaseRepository, users repository.UserRepository, logger *zap.Logger) *CaseService {
	return &CaseService{cases: cases, users: users, logger: logger}
}

// OpenCase opens a new case for the patient with no assigned doctor.
func (s *CaseService) OpenCase(ctx context.Context, patientUserID string) (*models.Case, error) {
	profile, err := s.users.PatientProfile(ctx, patientUserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("patient %s: %w", patientUserID, ErrUnknownUser)
		}
		return nil, err
	}
	if profile.Blacklisted {
		return nil, fmt.Errorf("patient %s: %w", patientUserID, ErrPatientBlacklisted)
	}

	c := &models.Case{
		PatientUserID: patientUserID,
		State:         models.CaseStateOpen,
		Version:       1,
	}
	if err := s.cases.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("case opened", zap.String("case_id", c.ID), zap.String("patient_id", patientUserID))
	return c, nil
}

// AssignDoctor assigns a doctor to an open case.
func (s *CaseService) AssignDoctor(ctx context.Context, caseID, doctorUserID string) (*models.Case, error) {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.State != models.CaseStateOpen {
		return nil, fmt.Errorf("case %s is %s: %w", caseID, c.State, ErrInvalidState)
	}

	doctor, err := s.users.FindByID(ctx, doctorUserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("doctor %s: %w", doctorUserID, ErrUnknownUser)
		}
		return nil, err
	}
	if doctor.Role != models.RoleDoctor {
		return nil, fmt.Errorf("user %s is not a doctor: %w", doctorUserID, ErrUnknownUser)
	}

	c.DoctorUserID = &doctor.ID
	if err := s.cases.UpdateVersioned(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("doctor assigned to case", zap.String("case_id", caseID), zap.String("doctor_id", doctorUserID))
	return c, nil
}

// CloseCase moves an open case to closed. Closing does not cascade onto
// pending appointments; they stay queryable, but new appointments against the
// case are rejected.
func (s *CaseService) CloseCase(ctx context.Context, caseID string) (*models.Case, error) {
	c, err := s.cases.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.State != models.CaseStateOpen {
		return nil, fmt.Errorf("case %s is already %s: %w", caseID, c.State, ErrInvalidState)
	}

	c.State = models.CaseStateClosed
	if err := s.cases.UpdateVersioned(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("case closed", zap.String("case_id", caseID))
	return c, nil
}

// GetOpenCases returns the open cases the user is involved in: a patient's own
// open cases, or the open cases a doctor is assigned to.
func (s *CaseService) GetOpenCases(ctx context.Context, user *models.User) ([]models.Case, error) {
	open := models.CaseStateOpen
	switch user.Role {
	case models.RolePatient:
		return s.cases.ListByPatient(ctx, user.ID, &open)
	case models.RoleDoctor:
		return s.cases.ListByDoctor(ctx, user.ID, &open)
	case models.RoleNurse, models.RoleAdmin:
		return nil, fmt.Errorf("role %s has no case list: %w", user.Role, ErrUnsupportedUserType)
	default:
		return nil, fmt.Errorf("role %s: %w", user.Role, ErrUnsupportedUserType)
	}
}

// GetPastCases returns the closed cases the user was involved in.
func (s *CaseService) GetPastCases(ctx context.Context, user *models.User) ([]models.Case, error) {
	closed := models.CaseStateClosed
	switch user.Role {
	case models.RolePatient:
		return s.cases.ListByPatient(ctx, user.ID, &closed)
	case models.RoleDoctor:
		return s.cases.ListByDoctor(ctx, user.ID, &closed)
	case models.RoleNurse, models.RoleAdmin:
		return nil, fmt.Errorf("role %s has no case list: %w", user.Role, ErrUnsupportedUserType)
	default:
		return nil, fmt.Errorf("role %s: %w", user.Role, ErrUnsupportedUserType)
	}
}

// GetCase returns a case by id.
func (s *CaseService) GetCase(ctx context.Context, caseID string) (*models.Case, error) {
	return s.cases.FindByID(ctx, caseID)
}

// PostMessage adds a message to a case. Messages stay allowed on closed cases;
// only new appointments are rejected there.
func (s *CaseService) PostMessage(ctx context.Context, caseID, senderUserID, content string) (*models.CaseMessage, error) {
	if _, err := s.cases.FindByID(ctx, caseID); err != nil {
		return nil, err
	}
	msg := &models.CaseMessage{
		CaseID:       caseID,
		SenderUserID: senderUserID,
		Content:      content,
	}
	if err := s.cases.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns a case's messages in posting order.
func (s *CaseService) ListMessages(ctx context.Context, caseID string) ([]models.CaseMessage, error) {
	if _, err := s.cases.FindByID(ctx, caseID); err != nil {
		return nil, err
	}
	return s.cases.ListMessages(ctx, caseID)
}

// RequestTriage records a nurse's triage request against a case.
func (s *CaseService) RequestTriage(ctx context.Context, nurseUserID, caseID string) (*models.TriageRequest, error) {
	nurse, err := s.users.FindByID(ctx, nurseUserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("nurse %s: %w", nurseUserID, ErrUnknownUser)
		}
		return nil, err
	}
	if nurse.Role != models.RoleNurse {
		return nil, fmt.Errorf("user %s is not a nurse: %w", nurseUserID, ErrForbidden)
	}
	if _, err := s.cases.FindByID(ctx, caseID); err != nil {
		return nil, err
	}

	req := &models.TriageRequest{
		NurseUserID: nurseUserID,
		CaseID:      caseID,
		State:       models.TriageRequested,
	}
	if err := s.cases.CreateTriageRequest(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info("triage requested", zap.String("case_id", caseID), zap.String("nurse_id", nurseUserID))
	return req, nil
}

// AcceptTriage marks a triage request accepted. Accepting twice is a no-op.
func (s *CaseService) AcceptTriage(ctx context.Context, requestID string) (*models.TriageRequest, error) {
	req, err := s.cases.FindTriageRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.State == models.TriageAccepted {
		return req, nil
	}
	req.State = models.TriageAccepted
	if err := s.cases.SaveTriageRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}
