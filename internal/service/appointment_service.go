package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicsync/clinicsync/internal/domain"
	"github.com/clinicsync/clinicsync/internal/domain/appointment"
	"github.com/clinicsync/clinicsync/internal/domain/doctor"
	"github.com/clinicsync/clinicsync/internal/domain/patient"
	"github.com/clinicsync/clinicsync/internal/domain/schedule"
	"github.com/clinicsync/clinicsync/internal/notify"
	"github.com/clinicsync/clinicsync/pkg/metrics"
)

type AppointmentService struct {
	repo         appointment.Repository
	scheduleRepo schedule.Repository
	doctorRepo   doctor.Repository
	patientRepo  patient.Repository
	auditSvc     *AuditService
	notifier     notify.Notifier
	collector    *metrics.Collector
	slotDuration time.Duration
	cancelNotice time.Duration
	log          *zap.Logger
	now          func() time.Time
}

func NewAppointmentService(
	repo appointment.Repository,
	scheduleRepo schedule.Repository,
	doctorRepo doctor.Repository,
	patientRepo patient.Repository,
	auditSvc *AuditService,
	notifier notify.Notifier,
	collector *metrics.Collector,
	slotDuration time.Duration,
	cancelNotice time.Duration,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{
		repo:         repo,
		scheduleRepo: scheduleRepo,
		doctorRepo:   doctorRepo,
		patientRepo:  patientRepo,
		auditSvc:     auditSvc,
		notifier:     notifier,
		collector:    collector,
		slotDuration: slotDuration,
		cancelNotice: cancelNotice,
		log:          log,
		now:          time.Now,
	}
}

// BookAppointment validates the requested slot against the doctor's schedule
// and commits it. The end time is always derived server-side from the
// configured slot duration; nothing client-supplied decides it. The storage
// layer performs the race-deciding overlap re-check and unique-constraint
// backstop, so concurrent requests for the same slot produce exactly one
// confirmed appointment and conflict errors for everyone else.
func (s *AppointmentService) BookAppointment(ctx context.Context, cmd *appointment.BookCommand, actor domain.Claims, ip string) (*appointment.Appointment, error) {
	var fields []string
	if cmd.DoctorID == uuid.Nil {
		fields = append(fields, "doctorId is required")
	}
	if cmd.Date.IsZero() {
		fields = append(fields, "appointmentDate is required")
	}
	if !cmd.StartTime.Valid() {
		fields = append(fields, "startTime is out of range")
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if domain.DateOnly(cmd.Date).Before(domain.DateOnly(s.now())) {
		return nil, appointment.ErrDateInPast
	}

	if _, err := s.doctorRepo.GetByID(ctx, cmd.DoctorID); err != nil {
		return nil, err
	}
	if _, err := s.patientRepo.GetByID(ctx, cmd.PatientID); err != nil {
		return nil, err
	}

	sched, err := s.scheduleRepo.GetActiveForDay(ctx, cmd.DoctorID, cmd.Date.Weekday())
	if err != nil {
		if err == schedule.ErrScheduleNotFound {
			return nil, appointment.ErrSlotOutsideSchedule
		}
		return nil, fmt.Errorf("loading schedule: %w", err)
	}

	endTime := cmd.StartTime.Add(s.slotDuration)
	if !s.onSlotGrid(sched, cmd.StartTime, endTime) {
		return nil, appointment.ErrSlotOutsideSchedule
	}

	exceptions, err := s.scheduleRepo.ExceptionsForDate(ctx, cmd.DoctorID, cmd.Date)
	if err != nil {
		return nil, fmt.Errorf("loading exceptions: %w", err)
	}
	for _, e := range exceptions {
		if e.BlocksWholeDay() || e.BlocksSlot(cmd.StartTime, endTime) {
			s.collector.BookingConflicts.Inc()
			return nil, appointment.ErrSlotTaken
		}
	}

	now := s.now()
	a := &appointment.Appointment{
		PatientID:       cmd.PatientID,
		DoctorID:        cmd.DoctorID,
		AppointmentDate: domain.DateOnly(cmd.Date),
		StartTime:       cmd.StartTime,
		EndTime:         endTime,
		Status:          appointment.StatusConfirmed,
		ReferenceNumber: appointment.NewReferenceNumber(now),
		ReasonForVisit:  cmd.ReasonForVisit,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if err == appointment.ErrSlotTaken {
			s.collector.BookingConflicts.Inc()
			return nil, err
		}
		s.log.Error("failed to create appointment", zap.Error(err))
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.collector.AppointmentsBooked.Inc()
	s.log.Info("appointment booked",
		zap.String("reference", a.ReferenceNumber),
		zap.String("doctor_id", a.DoctorID.String()),
	)

	created, err := s.repo.GetByID(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading created appointment: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionCreate,
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
	})
	s.publish(ctx, notify.EventAppointmentConfirmed, created)

	return created, nil
}

// CancelAppointment enforces ownership and the advance-notice policy, then
// transitions the appointment to cancelled. Patients are bound by the notice
// window; doctors and admins are not.
func (s *AppointmentService) CancelAppointment(ctx context.Context, id uuid.UUID, cmd *appointment.CancelCommand, actor domain.Claims, ip string) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeParticipant(a, actor); err != nil {
		return nil, err
	}

	now := s.now()
	if actor.Role == domain.RolePatient && !a.MeetsCancellationNotice(now, s.cancelNotice) {
		return nil, fmt.Errorf("%w: appointments can only be cancelled at least %d hours in advance",
			appointment.ErrCancellationNotice, int(s.cancelNotice.Hours()))
	}

	if err := a.Cancel(cmd.Reason, cmd.CancelledBy, now); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment: %w", err)
	}

	s.collector.AppointmentsChanged.WithLabelValues(string(appointment.StatusCancelled)).Inc()
	s.log.Info("appointment cancelled", zap.String("reference", a.ReferenceNumber))

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionCancel,
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"status":"cancelled","reason":%q}`, cmd.Reason),
	})
	s.publish(ctx, notify.EventAppointmentCancelled, a)

	return a, nil
}

// CanCancel is the read-only twin of the cancellation check: it must agree
// with CancelAppointment for a patient-initiated cancellation at this moment.
func (s *AppointmentService) CanCancel(ctx context.Context, id uuid.UUID) (bool, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return a.Status == appointment.StatusConfirmed && a.MeetsCancellationNotice(s.now(), s.cancelNotice), nil
}

// UpdateStatus lets the assigned doctor close out a confirmed appointment as
// completed or no_show. Cancellation goes through CancelAppointment so the
// policy check and reason are never bypassed.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateStatusCommand, actor domain.Claims, ip string) (*appointment.Appointment, error) {
	if cmd.Status != appointment.StatusCompleted && cmd.Status != appointment.StatusNoShow {
		return nil, &ValidationError{Fields: []string{"status must be completed or no_show"}}
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role != domain.RoleDoctor || actor.DoctorID == nil || *actor.DoctorID != a.DoctorID {
		return nil, ErrForbidden
	}

	if !a.CanTransitionTo(cmd.Status) {
		return nil, appointment.ErrInvalidStatusTransition
	}

	now := s.now()
	a.Status = cmd.Status
	if cmd.Notes != nil {
		a.Notes = *cmd.Notes
	}
	a.UpdatedAt = &now

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.collector.AppointmentsChanged.WithLabelValues(string(cmd.Status)).Inc()

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionUpdate,
		ResourceType: "appointment",
		ResourceID:   a.ID.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"status":%q}`, cmd.Status),
	})

	return a, nil
}

func (s *AppointmentService) GetAppointment(ctx context.Context, id uuid.UUID, actor domain.Claims) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParticipant(a, actor); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AppointmentService) GetByReference(ctx context.Context, referenceNumber string, actor domain.Claims) (*appointment.Appointment, error) {
	a, err := s.repo.GetByReference(ctx, referenceNumber)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeParticipant(a, actor); err != nil {
		return nil, err
	}
	return a, nil
}

// ListMine returns the caller's appointments: the patient's own bookings or
// the doctor's calendar, newest first.
func (s *AppointmentService) ListMine(ctx context.Context, actor domain.Claims, q *appointment.ListQuery) (*appointment.Paged, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 10
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	switch actor.Role {
	case domain.RolePatient:
		if actor.PatientID == nil {
			return nil, ErrForbidden
		}
		return s.repo.ListByPatient(ctx, *actor.PatientID, q)
	case domain.RoleDoctor:
		if actor.DoctorID == nil {
			return nil, ErrForbidden
		}
		return s.repo.ListByDoctor(ctx, *actor.DoctorID, q)
	default:
		return nil, ErrForbidden
	}
}

func (s *AppointmentService) TodayForDoctor(ctx context.Context, actor domain.Claims) ([]*appointment.Appointment, error) {
	if actor.Role != domain.RoleDoctor || actor.DoctorID == nil {
		return nil, ErrForbidden
	}
	return s.repo.ListForDoctorDay(ctx, *actor.DoctorID, s.now())
}

// authorizeParticipant allows the owning patient, the assigned doctor, and
// admins. Everyone else is rejected regardless of resource state.
func (s *AppointmentService) authorizeParticipant(a *appointment.Appointment, actor domain.Claims) error {
	switch actor.Role {
	case domain.RolePatient:
		if actor.PatientID == nil || *actor.PatientID != a.PatientID {
			return ErrForbidden
		}
	case domain.RoleDoctor:
		if actor.DoctorID == nil || *actor.DoctorID != a.DoctorID {
			return ErrForbidden
		}
	case domain.RoleAdmin:
	default:
		return ErrForbidden
	}
	return nil
}

func (s *AppointmentService) onSlotGrid(sched *schedule.DoctorSchedule, start, end domain.TimeOfDay) bool {
	if start.Before(sched.StartTime) || sched.EndTime.Before(end) {
		return false
	}
	step := domain.TimeOfDay(s.slotDuration / time.Minute)
	return (start-sched.StartTime)%step == 0
}

func (s *AppointmentService) publish(ctx context.Context, t notify.EventType, a *appointment.Appointment) {
	ev := notify.Event{
		Type:            t,
		AppointmentID:   a.ID,
		ReferenceNumber: a.ReferenceNumber,
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		Date:            a.AppointmentDate.Format("2006-01-02"),
		StartTime:       a.StartTime.String(),
		OccurredAt:      s.now(),
	}
	// Best effort: the booking is already committed, a notifier outage must
	// not surface to the caller.
	if err := s.notifier.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn("appointment event not published", zap.String("reference", a.ReferenceNumber), zap.Error(err))
	}
}
