package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"clinical-case-server/internal/models"
)

// gormGrantRepository is the gorm-backed GrantRepository.
type gormGrantRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGrantRepository creates a gorm-backed GrantRepository.
func NewGrantRepository(db *gorm.DB, logger *zap.Logger) GrantRepository {
	return &gormGrantRepository{db: db, logger: logger}
}

func (r *gormGrantRepository) Create(ctx context.Context, grant *models.AccessGrant) error {
	return r.db.WithContext(ctx).Create(grant).Error
}

func (r *gormGrantRepository) FindByID(ctx context.Context, id string) (*models.AccessGrant, error) {
	var grant models.AccessGrant
	if err := r.db.WithContext(ctx).First(&grant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("access grant %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &grant, nil
}

func (r *gormGrantRepository) Delete(ctx context.Context, id string) error {
	// Hard delete: grants are not an audit log.
	res := r.db.WithContext(ctx).Delete(&models.AccessGrant{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("access grant %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *gormGrantRepository) ListActive(ctx context.Context, patientUserID string, asOf time.Time) ([]models.AccessGrant, error) {
	var grants []models.AccessGrant
	err := r.db.WithContext(ctx).
		Where("patient_user_id = ? AND starts_at <= ? AND ends_at >= ?", patientUserID, asOf, asOf).
		Order("starts_at asc").
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *gormGrantRepository) HasActive(ctx context.Context, patientUserID, grantedUserID string, asOf time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AccessGrant{}).
		Where("patient_user_id = ? AND granted_user_id = ? AND starts_at <= ? AND ends_at >= ?",
			patientUserID, grantedUserID, asOf, asOf).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
