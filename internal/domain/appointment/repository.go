package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new appointment. Implementations must run the
	// half-open overlap re-check and the insert inside one storage
	// transaction and return ErrSlotTaken when another non-cancelled
	// appointment occupies the slot, including when a concurrent writer
	// wins the race and the uniqueness backstop rejects the insert.
	Create(ctx context.Context, a *Appointment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	GetByReference(ctx context.Context, referenceNumber string) (*Appointment, error)

	// ListForDoctorDay returns the non-cancelled appointments for a doctor
	// on a calendar day, ordered by start time.
	ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Appointment, error)

	ListByPatient(ctx context.Context, patientID uuid.UUID, q *ListQuery) (*Paged, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, q *ListQuery) (*Paged, error)

	// Update persists status, notes and cancellation fields of an existing row.
	Update(ctx context.Context, a *Appointment) error

	CountForDoctorDay(ctx context.Context, doctorID uuid.UUID, date time.Time) (int64, error)
}
