package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"clinical-case-server/internal/models"
	"clinical-case-server/internal/repository"
)

// UserProfile is the role-shaped view of a user. Exactly one of the
// role-specific profile pointers is set for patient, doctor and nurse users;
// admins carry only the shared fields.
type UserProfile struct {
	User    models.UserSanitized   `json:"user"`
	Patient *models.PatientProfile `json:"patient,omitempty"`
	Doctor  *models.DoctorProfile  `json:"doctor,omitempty"`
	Nurse   *models.NurseProfile   `json:"nurse,omitempty"`
}

// ProfileUpdate is a partial profile change. Nil fields keep their current
// values. Fields outside the user's role are ignored.
type ProfileUpdate struct {
	FirstName   *string           `json:"firstName"`
	LastName    *string           `json:"lastName"`
	Gender      *models.Gender    `json:"gender"`
	DateOfBirth *time.Time        `json:"dateOfBirth"`
	BodyWeight  *float64          `json:"bodyWeight"`
	BodyHeight  *float64          `json:"bodyHeight"`
	BloodType   *models.BloodType `json:"bloodType"`

	Specialization *string        `json:"specialization"`
	Campus         *models.Campus `json:"campus"`
}

// ProfileService reads and updates role-specific profile fields. It is not an
// authorization boundary: callers must have passed the access policy already.
type ProfileService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(users repository.UserRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{users: users, logger: logger}
}

// EnsureProfile creates the role-specific profile row for a freshly
// registered user. Admins have no profile row.
func (s *ProfileService) EnsureProfile(ctx context.Context, user *models.User) error {
	switch user.Role {
	case models.RolePatient:
		return s.users.CreatePatientProfile(ctx, &models.PatientProfile{UserID: user.ID})
	case models.RoleDoctor:
		return s.users.CreateDoctorProfile(ctx, &models.DoctorProfile{UserID: user.ID})
	case models.RoleNurse:
		return s.users.CreateNurseProfile(ctx, &models.NurseProfile{UserID: user.ID})
	case models.RoleAdmin:
		return nil
	default:
		return fmt.Errorf("role %s: %w", user.Role, ErrUnsupportedUserType)
	}
}

// GetProfile returns the user's profile. With detailed set, patient profiles
// are hydrated with vaccinations, test results, cases and grants, and nurse
// profiles with triage requests; this is the explicit load-details call, the
// entities stay plain otherwise.
func (s *ProfileService) GetProfile(ctx context.Context, userID string, detailed bool) (*UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &UserProfile{User: user.Sanitize()}
	switch user.Role {
	case models.RolePatient:
		var p *models.PatientProfile
		if detailed {
			p, err = s.users.PatientProfileDetailed(ctx, userID)
		} else {
			p, err = s.users.PatientProfile(ctx, userID)
		}
		if err != nil {
			return nil, err
		}
		profile.Patient = p
	case models.RoleDoctor:
		d, err := s.users.DoctorProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		profile.Doctor = d
	case models.RoleNurse:
		var n *models.NurseProfile
		if detailed {
			n, err = s.users.NurseProfileDetailed(ctx, userID)
		} else {
			n, err = s.users.NurseProfile(ctx, userID)
		}
		if err != nil {
			return nil, err
		}
		profile.Nurse = n
	case models.RoleAdmin:
		// shared fields only
	default:
		return nil, fmt.Errorf("role %s: %w", user.Role, ErrUnsupportedUserType)
	}
	return profile, nil
}

// UpdateProfile applies a partial update to the user's shared and
// role-specific fields and returns the resulting profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Gender != nil {
		user.Gender = *update.Gender
	}
	if update.DateOfBirth != nil {
		user.DateOfBirth = update.DateOfBirth
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	switch user.Role {
	case models.RolePatient:
		p, err := s.users.PatientProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		if update.BodyWeight != nil {
			p.BodyWeight = update.BodyWeight
		}
		if update.BodyHeight != nil {
			p.BodyHeight = update.BodyHeight
		}
		if update.BloodType != nil {
			p.BloodType = *update.BloodType
		}
		if err := s.users.SavePatientProfile(ctx, p); err != nil {
			return nil, err
		}
	case models.RoleDoctor:
		d, err := s.users.DoctorProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		if update.Specialization != nil {
			d.Specialization = *update.Specialization
		}
		if update.Campus != nil {
			d.Campus = *update.Campus
		}
		if err := s.users.SaveDoctorProfile(ctx, d); err != nil {
			return nil, err
		}
	case models.RoleNurse, models.RoleAdmin:
		// no role-specific updatable fields
	default:
		return nil, fmt.Errorf("role %s: %w", user.Role, ErrUnsupportedUserType)
	}

	s.logger.Info("profile updated", zap.String("user_id", userID), zap.String("role", string(user.Role)))
	return s.GetProfile(ctx, userID, false)
}
