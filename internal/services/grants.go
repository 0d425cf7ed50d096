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

// GrantService manages time-boxed access grants a patient hands out.
type GrantService struct {
	grants repository.GrantRepository
	users  repository.UserRepository
	clock  Clock
	logger *zap.Logger
}

// NewGrantService creates a GrantService.
func NewGrantService(grants repository.GrantRepository, users repository.UserRepository, clock Clock, logger *zap.Logger) *GrantService {
	return &GrantService{grants: grants, users: users, clock: clock, logger: logger}
}

// CreateGrant creates a grant from the patient to the grantee valid over
// [start, end]. Overlapping grants for the same pair are allowed and evaluated
// independently; there is no merging.
func (s *GrantService) CreateGrant(ctx context.Context, patientUserID, granteeUserID string, start, end time.Time) (*models.AccessGrant, error) {
	if start.After(end) {
		return nil, fmt.Errorf("grant window start after end: %w", ErrInvalidRange)
	}

	if _, err := s.users.FindByID(ctx, granteeUserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("grantee %s: %w", granteeUserID, ErrUnknownUser)
		}
		return nil, err
	}

	grant := &models.AccessGrant{
		PatientUserID: patientUserID,
		GrantedUserID: granteeUserID,
		StartsAt:      start,
		EndsAt:        end,
	}
	if err := s.grants.Create(ctx, grant); err != nil {
		return nil, err
	}

	s.logger.Info("access grant created",
		zap.String("grant_id", grant.ID),
		zap.String("patient_id", patientUserID),
		zap.String("grantee_id", granteeUserID),
		zap.Time("starts_at", start),
		zap.Time("ends_at", end))
	return grant, nil
}

// RevokeGrant hard-deletes a grant. Only the granting patient may revoke.
func (s *GrantService) RevokeGrant(ctx context.Context, grantID, requestingPatientID string) error {
	grant, err := s.grants.FindByID(ctx, grantID)
	if err != nil {
		return err
	}
	if grant.PatientUserID != requestingPatientID {
		return fmt.Errorf("grant %s is not owned by requester: %w", grantID, ErrForbidden)
	}

	if err := s.grants.Delete(ctx, grantID); err != nil {
		return err
	}
	s.logger.Info("access grant revoked",
		zap.String("grant_id", grantID),
		zap.String("patient_id", requestingPatientID))
	return nil
}

// ListActiveGrants returns the patient's grants active at asOf, ordered by
// start time ascending. A zero asOf means the current time. Expiry is
// evaluated here, lazily; there is no background sweep.
func (s *GrantService) ListActiveGrants(ctx context.Context, patientUserID string, asOf time.Time) ([]models.AccessGrant, error) {
	if asOf.IsZero() {
		asOf = s.clock.Now()
	}
	return s.grants.ListActive(ctx, patientUserID, asOf)
}
