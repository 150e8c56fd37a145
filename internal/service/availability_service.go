package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicsync/clinicsync/internal/domain"
	"github.com/clinicsync/clinicsync/internal/domain/appointment"
	"github.com/clinicsync/clinicsync/internal/domain/schedule"
)

// TimeSlot is a bookable interval derived on every query; it is never cached
// and never carries patient information.
type TimeSlot struct {
	StartTime   domain.TimeOfDay `json:"startTime"`
	EndTime     domain.TimeOfDay `json:"endTime"`
	IsAvailable bool             `json:"isAvailable"`
}

type AvailabilityResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Slots   []TimeSlot `json:"timeSlots"`
}

type AvailabilityService struct {
	scheduleRepo schedule.Repository
	apptRepo     appointment.Repository
	slotDuration time.Duration
	log          *zap.Logger
	now          func() time.Time
}

func NewAvailabilityService(
	scheduleRepo schedule.Repository,
	apptRepo appointment.Repository,
	slotDuration time.Duration,
	log *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		scheduleRepo: scheduleRepo,
		apptRepo:     apptRepo,
		slotDuration: slotDuration,
		log:          log,
		now:          time.Now,
	}
}

// GetDoctorAvailability computes the slate of fixed-duration slots for the
// doctor on the given calendar day. It is a pure read: weekly schedule minus
// exceptions minus booked appointments. Unbookable days come back as
// Success=false with an explanation rather than an error; errors are reserved
// for storage failures.
func (s *AvailabilityService) GetDoctorAvailability(ctx context.Context, doctorID uuid.UUID, date time.Time) (*AvailabilityResponse, error) {
	if domain.DateOnly(date).Before(domain.DateOnly(s.now())) {
		return &AvailabilityResponse{Success: false, Message: "Cannot check availability for past dates"}, nil
	}

	sched, err := s.scheduleRepo.GetActiveForDay(ctx, doctorID, date.Weekday())
	if err != nil {
		if err == schedule.ErrScheduleNotFound {
			return &AvailabilityResponse{Success: false, Message: "Doctor is not available on this day"}, nil
		}
		s.log.Error("loading doctor schedule", zap.Error(err), zap.String("doctor_id", doctorID.String()))
		return nil, err
	}

	exceptions, err := s.scheduleRepo.ExceptionsForDate(ctx, doctorID, date)
	if err != nil {
		s.log.Error("loading schedule exceptions", zap.Error(err), zap.String("doctor_id", doctorID.String()))
		return nil, err
	}
	for _, e := range exceptions {
		if e.BlocksWholeDay() {
			return &AvailabilityResponse{Success: false, Message: "Doctor is on leave on this day"}, nil
		}
	}

	booked, err := s.apptRepo.ListForDoctorDay(ctx, doctorID, date)
	if err != nil {
		s.log.Error("loading appointments", zap.Error(err), zap.String("doctor_id", doctorID.String()))
		return nil, err
	}

	slots := make([]TimeSlot, 0)
	for _, w := range generateSlots(sched.StartTime, sched.EndTime, s.slotDuration) {
		slots = append(slots, TimeSlot{
			StartTime:   w[0],
			EndTime:     w[1],
			IsAvailable: !slotBooked(w[0], w[1], booked) && !slotExcepted(w[0], w[1], exceptions),
		})
	}

	return &AvailabilityResponse{
		Success: true,
		Message: "Availability retrieved successfully",
		Slots:   slots,
	}, nil
}

// generateSlots steps through [start,end) in fixed increments. A trailing
// window shorter than one slot is dropped, never padded.
func generateSlots(start, end domain.TimeOfDay, d time.Duration) [][2]domain.TimeOfDay {
	var out [][2]domain.TimeOfDay
	for cur := start; !end.Before(cur.Add(d)); cur = cur.Add(d) {
		out = append(out, [2]domain.TimeOfDay{cur, cur.Add(d)})
	}
	return out
}

func slotBooked(start, end domain.TimeOfDay, booked []*appointment.Appointment) bool {
	for _, a := range booked {
		if domain.Overlaps(start, end, a.StartTime, a.EndTime) {
			return true
		}
	}
	return false
}

func slotExcepted(start, end domain.TimeOfDay, exceptions []*schedule.Exception) bool {
	for _, e := range exceptions {
		if e.BlocksSlot(start, end) {
			return true
		}
	}
	return false
}
