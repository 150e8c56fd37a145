package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinicsync/clinicsync/internal/domain"
	"github.com/clinicsync/clinicsync/internal/domain/schedule"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) GetActiveForDay(ctx context.Context, doctorID uuid.UUID, day time.Weekday) (*schedule.DoctorSchedule, error) {
	var s schedule.DoctorSchedule
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND day_of_week = ? AND is_active", doctorID, day).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, schedule.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*schedule.DoctorSchedule, error) {
	var out []*schedule.DoctorSchedule
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND is_active", doctorID).
		Order("day_of_week ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert deactivates the current active row for the weekday and inserts the
// new one in a single transaction, preserving the one-active-row invariant.
func (r *ScheduleRepository) Upsert(ctx context.Context, s *schedule.DoctorSchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&schedule.DoctorSchedule{}).
			Where("doctor_id = ? AND day_of_week = ? AND is_active", s.DoctorID, s.DayOfWeek).
			Update("is_active", false).Error
		if err != nil {
			return err
		}
		return tx.Create(s).Error
	})
}

func (r *ScheduleRepository) ExceptionsForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*schedule.Exception, error) {
	var out []*schedule.Exception
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND exception_date = ?", doctorID, domain.DateOnly(date)).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ScheduleRepository) AddException(ctx context.Context, e *schedule.Exception) error {
	return r.db.WithContext(ctx).Create(e).Error
}
