package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAppointmentConfirmed EventType = "appointment.confirmed"
	EventAppointmentCancelled EventType = "appointment.cancelled"
)

// Event is the after-commit notification emitted when an appointment changes.
// Consumers (email sender, reminder scheduler) live outside this service; a
// publish failure is logged and never affects the committed booking.
type Event struct {
	Type            EventType `json:"type"`
	AppointmentID   uuid.UUID `json:"appointment_id"`
	ReferenceNumber string    `json:"reference_number"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	Date            string    `json:"date"`
	StartTime       string    `json:"start_time"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type Notifier interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards events; used in development and tests.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
