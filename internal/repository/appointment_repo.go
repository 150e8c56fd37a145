package repository

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clinicsync/clinicsync/internal/domain"
	"github.com/clinicsync/clinicsync/internal/domain/appointment"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// Create re-checks the slot and inserts inside one transaction. The
// transactional check catches most races; the partial unique index on
// (doctor_id, appointment_date, start_time) for non-cancelled rows is the
// final arbiter, so a 23505 from a concurrent winner also maps to
// ErrSlotTaken.
func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conflicts int64
		err := tx.Model(&appointment.Appointment{}).
			Where("doctor_id = ? AND appointment_date = ? AND status <> ?",
				a.DoctorID, domain.DateOnly(a.AppointmentDate), appointment.StatusCancelled).
			Where("start_time < ? AND ? < end_time", a.EndTime, a.StartTime).
			Count(&conflicts).Error
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return appointment.ErrSlotTaken
		}

		if err := tx.Omit(clause.Associations).Create(a).Error; err != nil {
			if isUniqueViolation(err) {
				return appointment.ErrSlotTaken
			}
			return err
		}
		return nil
	})
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.withJoins(ctx).First(&a, "clinical.appointments.id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appointment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) GetByReference(ctx context.Context, referenceNumber string) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.withJoins(ctx).First(&a, "reference_number = ?", referenceNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appointment.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*appointment.Appointment, error) {
	var out []*appointment.Appointment
	err := r.withJoins(ctx).
		Where("doctor_id = ? AND appointment_date = ? AND status <> ?",
			doctorID, domain.DateOnly(date), appointment.StatusCancelled).
		Order("start_time ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, q *appointment.ListQuery) (*appointment.Paged, error) {
	return r.list(ctx, "patient_id = ?", patientID, q)
}

func (r *AppointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID, q *appointment.ListQuery) (*appointment.Paged, error) {
	return r.list(ctx, "doctor_id = ?", doctorID, q)
}

func (r *AppointmentRepository) list(ctx context.Context, cond string, id uuid.UUID, q *appointment.ListQuery) (*appointment.Paged, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).Where(cond, id).Count(&total).Error; err != nil {
		return nil, err
	}

	var items []*appointment.Appointment
	err := r.withJoins(ctx).
		Where(cond, id).
		Order("appointment_date DESC, start_time ASC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &appointment.Paged{
		Appointments: items,
		TotalCount:   total,
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalPages:   int(math.Ceil(float64(total) / float64(q.PageSize))),
	}, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(a).Error
}

func (r *AppointmentRepository) CountForDoctorDay(ctx context.Context, doctorID uuid.UUID, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&appointment.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND status <> ?",
			doctorID, domain.DateOnly(date), appointment.StatusCancelled).
		Count(&count).Error
	return count, err
}

func (r *AppointmentRepository) withJoins(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Patient.User").
		Preload("Doctor.User").
		Preload("Doctor.Specialty")
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
