package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"clinical-case-server/internal/models"
)

// gormUserRepository is the gorm-backed UserRepository.
type gormUserRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserRepository creates a gorm-backed UserRepository.
func NewUserRepository(db *gorm.DB, logger *zap.Logger) UserRepository {
	return &gormUserRepository{db: db, logger: logger}
}

func (r *gormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user by email: %w", ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *gormUserRepository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *gormUserRepository) PatientProfile(ctx context.Context, userID string) (*models.PatientProfile, error) {
	var profile models.PatientProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("patient profile %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &profile, nil
}

func (r *gormUserRepository) PatientProfileDetailed(ctx context.Context, userID string) (*models.PatientProfile, error) {
	var profile models.PatientProfile
	err := r.db.WithContext(ctx).
		Preload("Vaccinations").
		Preload("TestResults").
		Preload("Cases").
		Preload("Cases.Appointments").
		Preload("AccessGrants").
		First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("patient profile %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &profile, nil
}

func (r *gormUserRepository) DoctorProfile(ctx context.Context, userID string) (*models.DoctorProfile, error) {
	var profile models.DoctorProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("doctor profile %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &profile, nil
}

func (r *gormUserRepository) NurseProfile(ctx context.Context, userID string) (*models.NurseProfile, error) {
	var profile models.NurseProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("nurse profile %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &profile, nil
}

func (r *gormUserRepository) NurseProfileDetailed(ctx context.Context, userID string) (*models.NurseProfile, error) {
	var profile models.NurseProfile
	err := r.db.WithContext(ctx).
		Preload("TriageRequests").
		First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("nurse profile %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &profile, nil
}

func (r *gormUserRepository) CreatePatientProfile(ctx context.Context, profile *models.PatientProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *gormUserRepository) CreateDoctorProfile(ctx context.Context, profile *models.DoctorProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *gormUserRepository) CreateNurseProfile(ctx context.Context, profile *models.NurseProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *gormUserRepository) SavePatientProfile(ctx context.Context, profile *models.PatientProfile) error {
	return r.db.WithContext(ctx).Omit("Vaccinations", "TestResults", "Cases", "AccessGrants").Save(profile).Error
}

func (r *gormUserRepository) SaveDoctorProfile(ctx context.Context, profile *models.DoctorProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
