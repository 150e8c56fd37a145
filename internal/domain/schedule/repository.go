package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// GetActiveForDay returns the single active schedule row for the
	// doctor on the given weekday, or ErrScheduleNotFound.
	GetActiveForDay(ctx context.Context, doctorID uuid.UUID, day time.Weekday) (*DoctorSchedule, error)

	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*DoctorSchedule, error)

	// Upsert saves a schedule row, deactivating any previously active row
	// for the same (doctor, weekday) within one transaction so the
	// one-active-row invariant holds.
	Upsert(ctx context.Context, s *DoctorSchedule) error

	// ExceptionsForDate returns every exception touching the doctor's date.
	ExceptionsForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Exception, error)

	AddException(ctx context.Context, e *Exception) error
}
