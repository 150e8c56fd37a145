package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicsync/clinicsync/internal/domain"
	"github.com/clinicsync/clinicsync/internal/domain/doctor"
	"github.com/clinicsync/clinicsync/internal/domain/patient"
)

// State transitions:
//
//	confirmed → completed
//	confirmed → cancelled
//	confirmed → no_show
//
// Appointments are created directly in confirmed; completed, cancelled and
// no_show are terminal.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Appointment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt *time.Time `gorm:"column:updated_at"`

	PatientID uuid.UUID `gorm:"column:patient_id;type:uuid;not null;index"`
	DoctorID  uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;index"`

	AppointmentDate time.Time        `gorm:"column:appointment_date;type:date;not null;index"`
	StartTime       domain.TimeOfDay `gorm:"column:start_time;type:time;not null"`
	EndTime         domain.TimeOfDay `gorm:"column:end_time;type:time;not null"`

	Status          Status `gorm:"column:status;type:varchar(30);not null;default:'confirmed';index"`
	ReferenceNumber string `gorm:"column:reference_number;type:varchar(20);uniqueIndex;not null"`

	ReasonForVisit string `gorm:"column:reason_for_visit;type:varchar(500)"`
	Notes          string `gorm:"column:notes;type:text"`

	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	CancellationReason string     `gorm:"column:cancellation_reason;type:varchar(500)"`
	CancelledBy        *uuid.UUID `gorm:"column:cancelled_by;type:uuid"`

	Patient *patient.Patient `gorm:"foreignKey:PatientID"`
	Doctor  *doctor.Doctor   `gorm:"foreignKey:DoctorID"`
}

func (Appointment) TableName() string {
	return "clinical.appointments"
}

// StartsAt returns the wall-clock instant the appointment begins.
func (a *Appointment) StartsAt() time.Time {
	return a.StartTime.At(a.AppointmentDate)
}

func (a *Appointment) CanTransitionTo(next Status) bool {
	allowed := map[Status][]Status{
		StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
		StatusCompleted: {},
		StatusCancelled: {},
		StatusNoShow:    {},
	}
	for _, s := range allowed[a.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// MeetsCancellationNotice reports whether a cancellation performed at "now"
// still satisfies the advance-notice window. CanCancel and the cancellation
// path itself share this single predicate.
func (a *Appointment) MeetsCancellationNotice(now time.Time, notice time.Duration) bool {
	return !now.Add(notice).After(a.StartsAt())
}

func (a *Appointment) Cancel(reason string, cancelledBy uuid.UUID, now time.Time) error {
	if !a.CanTransitionTo(StatusCancelled) {
		return ErrInvalidStatusTransition
	}
	a.Status = StatusCancelled
	a.CancelledAt = &now
	a.CancellationReason = reason
	a.CancelledBy = &cancelledBy
	a.UpdatedAt = &now
	return nil
}

// NewReferenceNumber generates the human-shareable booking code in the form
// APT-YYYYMMDD-XXXXXXXX where the suffix is 8 uppercase hex characters.
func NewReferenceNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("APT-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(suffix))
}

type BookCommand struct {
	PatientID      uuid.UUID
	DoctorID       uuid.UUID
	Date           time.Time
	StartTime      domain.TimeOfDay
	ReasonForVisit string
}

type CancelCommand struct {
	Reason      string
	CancelledBy uuid.UUID
}

type UpdateStatusCommand struct {
	Status Status
	Notes  *string
}

type ListQuery struct {
	Page     int
	PageSize int
}

type Paged struct {
	Appointments []*Appointment
	TotalCount   int64
	Page         int
	PageSize     int
	TotalPages   int
}
