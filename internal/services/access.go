package services

import (
	"context"

	"go.uber.org/zap"

	"clinical-case-server/internal/models"
	"clinical-case-server/internal/repository"
)

// Principal is the authenticated caller of an operation, as resolved by the
// auth middleware from the access token.
type Principal struct {
	UserID string
	Role   models.Role
}

// AccessPolicy decides whether a principal may read or mutate a patient's
// record. It consults direct ownership, the assigned-doctor relation and
// active time-boxed grants.
type AccessPolicy struct {
	cases  repository.CaseRepository
	grants repository.GrantRepository
	clock  Clock
	logger *zap.Logger
}

// NewAccessPolicy creates an AccessPolicy.
func NewAccessPolicy(cases repository.CaseRepository, grants repository.GrantRepository, clock Clock, logger *zap.Logger) *AccessPolicy {
	return &AccessPolicy{cases: cases, grants: grants, clock: clock, logger: logger}
}

// CanAccess reports whether the principal may access the record of the given
// patient. Rules are evaluated in order, first match wins:
//
//  1. admins may access everything
//  2. a patient may access their own record
//  3. a doctor assigned to any of the patient's cases, open or closed, keeps
//     access (historical access is retained)
//  4. a holder of a grant active at the current time may access
//
// Anything else is denied. The check is a pure read and must be re-evaluated
// per request: grants expire by wall-clock time. Unknown principals or
// patients deny rather than error.
func (p *AccessPolicy) CanAccess(ctx context.Context, principal Principal, targetPatientID string) bool {
	if principal.Role == models.RoleAdmin {
		return true
	}
	if principal.UserID == targetPatientID {
		return true
	}

	if principal.Role == models.RoleDoctor {
		assigned, err := p.cases.DoctorAssignedToPatient(ctx, principal.UserID, targetPatientID)
		if err != nil {
			p.logger.Error("access check failed on assigned-doctor lookup",
				zap.String("doctor_id", principal.UserID),
				zap.String("patient_id", targetPatientID),
				zap.Error(err))
			return false
		}
		if assigned {
			return true
		}
	}

	active, err := p.grants.HasActive(ctx, targetPatientID, principal.UserID, p.clock.Now())
	if err != nil {
		p.logger.Error("access check failed on grant lookup",
			zap.String("grantee_id", principal.UserID),
			zap.String("patient_id", targetPatientID),
			zap.Error(err))
		return false
	}
	return active
}
