package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicsync/clinicsync/internal/domain"
	"github.com/clinicsync/clinicsync/internal/domain/appointment"
	"github.com/clinicsync/clinicsync/internal/domain/doctor"
	"github.com/clinicsync/clinicsync/internal/domain/patient"
	"github.com/clinicsync/clinicsync/internal/domain/schedule"
	"github.com/clinicsync/clinicsync/pkg/metrics"
)

// One collector for the whole test binary; promauto registers globally.
var testCollector = metrics.NewCollector("servicetest")

type fakeAppointmentRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*appointment.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{items: make(map[uuid.UUID]*appointment.Appointment)}
}

func cloneAppointment(a *appointment.Appointment) *appointment.Appointment {
	c := *a
	return &c
}

func (r *fakeAppointmentRepo) Create(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.DoctorID != a.DoctorID ||
			!existing.AppointmentDate.Equal(a.AppointmentDate) ||
			existing.Status == appointment.StatusCancelled {
			continue
		}
		if domain.Overlaps(a.StartTime, a.EndTime, existing.StartTime, existing.EndTime) {
			return appointment.ErrSlotTaken
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	r.items[a.ID] = cloneAppointment(a)
	return nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, appointment.ErrNotFound
	}
	return cloneAppointment(a), nil
}

func (r *fakeAppointmentRepo) GetByReference(_ context.Context, ref string) (*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.ReferenceNumber == ref {
			return cloneAppointment(a), nil
		}
	}
	return nil, appointment.ErrNotFound
}

func (r *fakeAppointmentRepo) ListForDoctorDay(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*appointment.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := domain.DateOnly(date)
	var out []*appointment.Appointment
	for _, a := range r.items {
		if a.DoctorID == doctorID && a.AppointmentDate.Equal(day) && a.Status != appointment.StatusCancelled {
			out = append(out, cloneAppointment(a))
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListByPatient(_ context.Context, patientID uuid.UUID, q *appointment.ListQuery) (*appointment.Paged, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.items {
		if a.PatientID == patientID {
			out = append(out, cloneAppointment(a))
		}
	}
	return &appointment.Paged{Appointments: out, TotalCount: int64(len(out)), Page: q.Page, PageSize: q.PageSize}, nil
}

func (r *fakeAppointmentRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, q *appointment.ListQuery) (*appointment.Paged, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*appointment.Appointment
	for _, a := range r.items {
		if a.DoctorID == doctorID {
			out = append(out, cloneAppointment(a))
		}
	}
	return &appointment.Paged{Appointments: out, TotalCount: int64(len(out)), Page: q.Page, PageSize: q.PageSize}, nil
}

func (r *fakeAppointmentRepo) Update(_ context.Context, a *appointment.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[a.ID]; !ok {
		return appointment.ErrNotFound
	}
	r.items[a.ID] = cloneAppointment(a)
	return nil
}

func (r *fakeAppointmentRepo) CountForDoctorDay(ctx context.Context, doctorID uuid.UUID, date time.Time) (int64, error) {
	items, err := r.ListForDoctorDay(ctx, doctorID, date)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

type scheduleKey struct {
	doctorID uuid.UUID
	day      time.Weekday
}

type fakeScheduleRepo struct {
	mu         sync.Mutex
	schedules  map[scheduleKey]*schedule.DoctorSchedule
	exceptions []*schedule.Exception
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{schedules: make(map[scheduleKey]*schedule.DoctorSchedule)}
}

func (r *fakeScheduleRepo) setWeek(doctorID uuid.UUID, days []time.Weekday, start, end domain.TimeOfDay) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range days {
		r.schedules[scheduleKey{doctorID, d}] = &schedule.DoctorSchedule{
			ID:        uuid.New(),
			DoctorID:  doctorID,
			DayOfWeek: d,
			StartTime: start,
			EndTime:   end,
			IsActive:  true,
		}
	}
}

func (r *fakeScheduleRepo) GetActiveForDay(_ context.Context, doctorID uuid.UUID, day time.Weekday) (*schedule.DoctorSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[scheduleKey{doctorID, day}]
	if !ok || !s.IsActive {
		return nil, schedule.ErrScheduleNotFound
	}
	c := *s
	return &c, nil
}

func (r *fakeScheduleRepo) ListForDoctor(_ context.Context, doctorID uuid.UUID) ([]*schedule.DoctorSchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*schedule.DoctorSchedule
	for _, s := range r.schedules {
		if s.DoctorID == doctorID {
			c := *s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) Upsert(_ context.Context, s *schedule.DoctorSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	c := *s
	r.schedules[scheduleKey{s.DoctorID, s.DayOfWeek}] = &c
	return nil
}

func (r *fakeScheduleRepo) ExceptionsForDate(_ context.Context, doctorID uuid.UUID, date time.Time) ([]*schedule.Exception, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := domain.DateOnly(date)
	var out []*schedule.Exception
	for _, e := range r.exceptions {
		if e.DoctorID == doctorID && domain.DateOnly(e.ExceptionDate).Equal(day) {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) AddException(_ context.Context, e *schedule.Exception) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	c := *e
	r.exceptions = append(r.exceptions, &c)
	return nil
}

type fakeDoctorRepo struct {
	mu      sync.Mutex
	doctors map[uuid.UUID]*doctor.Doctor
}

func newFakeDoctorRepo() *fakeDoctorRepo {
	return &fakeDoctorRepo{doctors: make(map[uuid.UUID]*doctor.Doctor)}
}

func (r *fakeDoctorRepo) add(d *doctor.Doctor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.doctors[d.ID] = d
}

func (r *fakeDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, doctor.ErrNotFound
	}
	return d, nil
}

func (r *fakeDoctorRepo) Search(_ context.Context, q *doctor.SearchQuery) (*doctor.Paged, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*doctor.Doctor
	for _, d := range r.doctors {
		out = append(out, d)
	}
	return &doctor.Paged{Doctors: out, TotalCount: int64(len(out)), Page: q.Page, PageSize: q.PageSize}, nil
}

func (r *fakeDoctorRepo) ListSpecialties(context.Context) ([]*doctor.Specialty, error) {
	return nil, nil
}

type fakePatientRepo struct {
	mu       sync.Mutex
	patients map[uuid.UUID]*patient.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*patient.Patient)}
}

func (r *fakePatientRepo) add(p *patient.Patient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.patients[p.ID] = p
}

func (r *fakePatientRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}
