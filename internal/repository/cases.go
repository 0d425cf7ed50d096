package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"clinical-case-server/internal/models"
)

// gormCaseRepository is the gorm-backed CaseRepository.
type gormCaseRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCaseRepository creates a gorm-backed CaseRepository.
func NewCaseRepository(db *gorm.DB, logger *zap.Logger) CaseRepository {
	return &gormCaseRepository{db: db, logger: logger}
}

func (r *gormCaseRepository) FindByID(ctx context.Context, id string) (*models.Case, error) {
	var c models.Case
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("case %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

func (r *gormCaseRepository) Create(ctx context.Context, c *models.Case) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *gormCaseRepository) UpdateVersioned(ctx context.Context, c *models.Case) error {
	current := c.Version
	c.Version = current + 1
	res := r.db.WithContext(ctx).Model(&models.Case{}).
		Where("id = ? AND version = ?", c.ID, current).
		Updates(map[string]interface{}{
			"doctor_user_id": c.DoctorUserID,
			"state":          c.State,
			"version":        c.Version,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		r.logger.Warn("case update lost optimistic-lock race",
			zap.String("case_id", c.ID),
			zap.Int("expected_version", current))
		return fmt.Errorf("case %s: %w", c.ID, ErrConflict)
	}
	return nil
}

func (r *gormCaseRepository) ListByPatient(ctx context.Context, patientUserID string, state *models.CaseState) ([]models.Case, error) {
	var cases []models.Case
	query := r.db.WithContext(ctx).Where("patient_user_id = ?", patientUserID).Order("created_at asc")
	if state != nil {
		query = query.Where("state = ?", *state)
	}
	if err := query.Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *gormCaseRepository) ListByDoctor(ctx context.Context, doctorUserID string, state *models.CaseState) ([]models.Case, error) {
	var cases []models.Case
	query := r.db.WithContext(ctx).Where("doctor_user_id = ?", doctorUserID).Order("created_at asc")
	if state != nil {
		query = query.Where("state = ?", *state)
	}
	if err := query.Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *gormCaseRepository) DoctorAssignedToPatient(ctx context.Context, doctorUserID, patientUserID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Case{}).
		Where("doctor_user_id = ? AND patient_user_id = ?", doctorUserID, patientUserID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormCaseRepository) CreateMessage(ctx context.Context, msg *models.CaseMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *gormCaseRepository) ListMessages(ctx context.Context, caseID string) ([]models.CaseMessage, error) {
	var messages []models.CaseMessage
	err := r.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("created_at asc").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *gormCaseRepository) CreateTriageRequest(ctx context.Context, req *models.TriageRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *gormCaseRepository) FindTriageRequest(ctx context.Context, id string) (*models.TriageRequest, error) {
	var req models.TriageRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("triage request %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &req, nil
}

func (r *gormCaseRepository) SaveTriageRequest(ctx context.Context, req *models.TriageRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}
