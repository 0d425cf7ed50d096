package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"clinical-case-server/internal/models"
)

// gormAppointmentRepository is the gorm-backed AppointmentRepository.
type gormAppointmentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewAppointmentRepository creates a gorm-backed AppointmentRepository.
func NewAppointmentRepository(db *gorm.DB, logger *zap.Logger) AppointmentRepository {
	return &gormAppointmentRepository{db: db, logger: logger}
}

func (r *gormAppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := r.db.WithContext(ctx).Preload("Visit").First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("appointment %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &appt, nil
}

func (r *gormAppointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Create(appt).Error
}

func (r *gormAppointmentRepository) UpdateVersioned(ctx context.Context, appt *models.Appointment) error {
	return updateAppointmentVersioned(r.db.WithContext(ctx), r.logger, appt)
}

// updateAppointmentVersioned runs the version-checked update on the given
// handle so it can participate in a surrounding transaction.
func updateAppointmentVersioned(tx *gorm.DB, logger *zap.Logger, appt *models.Appointment) error {
	current := appt.Version
	appt.Version = current + 1
	res := tx.Model(&models.Appointment{}).
		Where("id = ? AND version = ?", appt.ID, current).
		Updates(map[string]interface{}{
			"approval_status": appt.ApprovalStatus,
			"attended":        appt.Attended,
			"cancelled":       appt.Cancelled,
			"scheduled_at":    appt.ScheduledAt,
			"description":     appt.Description,
			"version":         appt.Version,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		logger.Warn("appointment update lost optimistic-lock race",
			zap.String("appointment_id", appt.ID),
			zap.Int("expected_version", current))
		return fmt.Errorf("appointment %s: %w", appt.ID, ErrConflict)
	}
	return nil
}

func (r *gormAppointmentRepository) ListByCase(ctx context.Context, caseID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Visit").
		Where("case_id = ?", caseID).
		Order("scheduled_at asc").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *gormAppointmentRepository) CreateVisit(ctx context.Context, visit *models.AppointmentVisit) error {
	return r.db.WithContext(ctx).Create(visit).Error
}

func (r *gormAppointmentRepository) FindVisit(ctx context.Context, appointmentID string) (*models.AppointmentVisit, error) {
	var visit models.AppointmentVisit
	if err := r.db.WithContext(ctx).First(&visit, "appointment_id = ?", appointmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("visit for appointment %s: %w", appointmentID, ErrNotFound)
		}
		return nil, err
	}
	return &visit, nil
}

func (r *gormAppointmentRepository) SaveVisitAndAppointment(ctx context.Context, visit *models.AppointmentVisit, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(visit).Error; err != nil {
			return err
		}
		return updateAppointmentVersioned(tx, r.logger, appt)
	})
}
