package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicsync/clinicsync/internal/domain"
	"github.com/clinicsync/clinicsync/internal/domain/appointment"
	"github.com/clinicsync/clinicsync/internal/domain/doctor"
	"github.com/clinicsync/clinicsync/internal/domain/patient"
	"github.com/clinicsync/clinicsync/internal/domain/schedule"
	"github.com/clinicsync/clinicsync/internal/notify"
)

// mondayMorning is a fixed Monday 08:00 used as "now" so weekday math and
// notice windows are deterministic.
var mondayMorning = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

type testEnv struct {
	svc       *AppointmentService
	apptRepo  *fakeAppointmentRepo
	schedRepo *fakeScheduleRepo

	doctorID  uuid.UUID
	patientID uuid.UUID

	patientClaims domain.Claims
	doctorClaims  domain.Claims
	adminClaims   domain.Claims
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	apptRepo := newFakeAppointmentRepo()
	schedRepo := newFakeScheduleRepo()
	doctorRepo := newFakeDoctorRepo()
	patientRepo := newFakePatientRepo()

	d := &doctor.Doctor{ID: uuid.New(), IsApproved: true}
	doctorRepo.add(d)
	p := &patient.Patient{ID: uuid.New()}
	patientRepo.add(p)

	schedRepo.setWeek(d.ID, weekdays, domain.NewTimeOfDay(9, 0), domain.NewTimeOfDay(17, 0))

	auditSvc := NewAuditService(&fakeAuditRepo{}, testCollector, zap.NewNop())
	t.Cleanup(auditSvc.Shutdown)

	svc := NewAppointmentService(
		apptRepo, schedRepo, doctorRepo, patientRepo,
		auditSvc, notify.Nop{}, testCollector,
		30*time.Minute, 24*time.Hour,
		zap.NewNop(),
	)
	svc.now = func() time.Time { return mondayMorning }

	env := &testEnv{
		svc:       svc,
		apptRepo:  apptRepo,
		schedRepo: schedRepo,
		doctorID:  d.ID,
		patientID: p.ID,
	}
	env.patientClaims = domain.Claims{UserID: uuid.New(), Role: domain.RolePatient, PatientID: &env.patientID}
	env.doctorClaims = domain.Claims{UserID: uuid.New(), Role: domain.RoleDoctor, DoctorID: &env.doctorID}
	env.adminClaims = domain.Claims{UserID: uuid.New(), Role: domain.RoleAdmin}
	return env
}

func (e *testEnv) book(t *testing.T, date time.Time, start domain.TimeOfDay) *appointment.Appointment {
	t.Helper()
	a, err := e.svc.BookAppointment(context.Background(), &appointment.BookCommand{
		PatientID: e.patientID,
		DoctorID:  e.doctorID,
		Date:      date,
		StartTime: start,
	}, e.patientClaims, "127.0.0.1")
	if err != nil {
		t.Fatalf("BookAppointment: %v", err)
	}
	return a
}

func TestBookAppointment(t *testing.T) {
	env := newTestEnv(t)

	a := env.book(t, mondayMorning, domain.NewTimeOfDay(10, 0))

	if a.Status != appointment.StatusConfirmed {
		t.Errorf("status = %q, want confirmed", a.Status)
	}
	if got := a.EndTime; got != domain.NewTimeOfDay(10, 30) {
		t.Errorf("end time = %s, want 10:30", got)
	}
	refPattern := regexp.MustCompile(`^APT-\d{8}-[0-9A-F]{8}$`)
	if !refPattern.MatchString(a.ReferenceNumber) {
		t.Errorf("reference number %q does not match APT-YYYYMMDD-XXXXXXXX", a.ReferenceNumber)
	}
	if !a.AppointmentDate.Equal(domain.DateOnly(mondayMorning)) {
		t.Errorf("appointment date = %v, want %v", a.AppointmentDate, domain.DateOnly(mondayMorning))
	}
}

func TestBookAppointmentValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.BookAppointment(context.Background(), &appointment.BookCommand{
		PatientID: env.patientID,
	}, env.patientClaims, "")
	var validErr *ValidationError
	if !errors.As(err, &validErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if len(validErr.Fields) != 2 {
		t.Errorf("fields = %v, want doctorId and appointmentDate complaints", validErr.Fields)
	}
}

func TestBookAppointmentPastDate(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.BookAppointment(context.Background(), &appointment.BookCommand{
		PatientID: env.patientID,
		DoctorID:  env.doctorID,
		Date:      mondayMorning.AddDate(0, 0, -3),
		StartTime: domain.NewTimeOfDay(10, 0),
	}, env.patientClaims, "")
	if !errors.Is(err, appointment.ErrDateInPast) {
		t.Errorf("err = %v, want ErrDateInPast", err)
	}
}

func TestBookAppointmentOutsideSchedule(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name  string
		date  time.Time
		start domain.TimeOfDay
	}{
		{"before opening", mondayMorning, domain.NewTimeOfDay(8, 0)},
		{"past closing", mondayMorning, domain.NewTimeOfDay(16, 45)},
		{"off the slot grid", mondayMorning, domain.NewTimeOfDay(10, 15)},
		{"no schedule that weekday", mondayMorning.AddDate(0, 0, 6), domain.NewTimeOfDay(10, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.BookAppointment(context.Background(), &appointment.BookCommand{
				PatientID: env.patientID,
				DoctorID:  env.doctorID,
				Date:      tc.date,
				StartTime: tc.start,
			}, env.patientClaims, "")
			if !errors.Is(err, appointment.ErrSlotOutsideSchedule) {
				t.Errorf("err = %v, want ErrSlotOutsideSchedule", err)
			}
		})
	}
}

func TestBookAppointmentUnknownDoctor(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.BookAppointment(context.Background(), &appointment.BookCommand{
		PatientID: env.patientID,
		DoctorID:  uuid.New(),
		Date:      mondayMorning,
		StartTime: domain.NewTimeOfDay(10, 0),
	}, env.patientClaims, "")
	if !errors.Is(err, doctor.ErrNotFound) {
		t.Errorf("err = %v, want doctor.ErrNotFound", err)
	}
}

func TestBookAppointmentSlotTaken(t *testing.T) {
	env := newTestEnv(t)
	env.book(t, mondayMorning, domain.NewTimeOfDay(10, 0))

	_, err := env.svc.BookAppointment(context.Background(), &appointment.BookCommand{
		PatientID: env.patientID,
		DoctorID:  env.doctorID,
		Date:      mondayMorning,
		StartTime: domain.NewTimeOfDay(10, 0),
	}, env.patientClaims, "")
	if !errors.Is(err, appointment.ErrSlotTaken) {
		t.Errorf("err = %v, want ErrSlotTaken", err)
	}
}

func TestBookAppointmentExceptionBlocks(t *testing.T) {
	env := newTestEnv(t)

	from := domain.NewTimeOfDay(10, 0)
	to := domain.NewTimeOfDay(12, 0)
	env.schedRepo.AddException(context.Background(), &schedule.Exception{
		DoctorID:      env.doctorID,
		ExceptionDate: domain.DateOnly(mondayMorning),
		StartTime:     &from,
		EndTime:       &to,
		Type:          schedule.ExceptionBusy,
		Reason:        "surgery",
	})

	_, err := env.svc.BookAppointment(context.Background(), &appointment.BookCommand{
		PatientID: env.patientID,
		DoctorID:  env.doctorID,
		Date:      mondayMorning,
		StartTime: domain.NewTimeOfDay(10, 30),
	}, env.patientClaims, "")
	if !errors.Is(err, appointment.ErrSlotTaken) {
		t.Errorf("err = %v, want ErrSlotTaken for excepted window", err)
	}

	// Outside the exception window the day is still bookable.
	env.book(t, mondayMorning, domain.NewTimeOfDay(9, 0))
}

// TestBookAppointmentConcurrent drives many simultaneous requests at one slot
// and requires exactly one winner; every loser must see the conflict error,
// never a second confirmation.
func TestBookAppointmentConcurrent(t *testing.T) {
	env := newTestEnv(t)
	const attempts = 25

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.BookAppointment(context.Background(), &appointment.BookCommand{
				PatientID: env.patientID,
				DoctorID:  env.doctorID,
				Date:      mondayMorning,
				StartTime: domain.NewTimeOfDay(11, 0),
			}, env.patientClaims, "")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, appointment.ErrSlotTaken):
			lost++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Errorf("winners = %d, want exactly 1", won)
	}
	if lost != attempts-1 {
		t.Errorf("conflicts = %d, want %d", lost, attempts-1)
	}
}

func TestCancelAppointmentNoticeWindow(t *testing.T) {
	env := newTestEnv(t)
	tuesday := mondayMorning.AddDate(0, 0, 1)
	a := env.book(t, tuesday, domain.NewTimeOfDay(10, 0))

	// 22 hours before the start the patient is inside the notice window.
	env.svc.now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }
	_, err := env.svc.CancelAppointment(context.Background(), a.ID,
		&appointment.CancelCommand{Reason: "conflict", CancelledBy: env.patientClaims.UserID},
		env.patientClaims, "")
	if !errors.Is(err, appointment.ErrCancellationNotice) {
		t.Fatalf("err = %v, want ErrCancellationNotice", err)
	}

	// 26 hours before the start it goes through.
	env.svc.now = func() time.Time { return mondayMorning }
	cancelled, err := env.svc.CancelAppointment(context.Background(), a.ID,
		&appointment.CancelCommand{Reason: "conflict", CancelledBy: env.patientClaims.UserID},
		env.patientClaims, "")
	if err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}
	if cancelled.Status != appointment.StatusCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}
	if cancelled.CancelledAt == nil || cancelled.CancellationReason != "conflict" {
		t.Errorf("cancellation fields not recorded: %+v", cancelled)
	}
}

func TestCancelAppointmentDoctorExemptFromNotice(t *testing.T) {
	env := newTestEnv(t)
	a := env.book(t, mondayMorning, domain.NewTimeOfDay(10, 0))

	// Two hours before start; a patient would be refused here.
	_, err := env.svc.CancelAppointment(context.Background(), a.ID,
		&appointment.CancelCommand{Reason: "emergency surgery", CancelledBy: env.doctorClaims.UserID},
		env.doctorClaims, "")
	if err != nil {
		t.Fatalf("doctor cancel inside notice window: %v", err)
	}
}

func TestCancelAppointmentAdminOverride(t *testing.T) {
	env := newTestEnv(t)
	a := env.book(t, mondayMorning, domain.NewTimeOfDay(10, 0))

	_, err := env.svc.CancelAppointment(context.Background(), a.ID,
		&appointment.CancelCommand{Reason: "clinic closure", CancelledBy: env.adminClaims.UserID},
		env.adminClaims, "")
	if err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}

func TestCancelAppointmentForbidden(t *testing.T) {
	env := newTestEnv(t)
	a := env.book(t, mondayMorning.AddDate(0, 0, 2), domain.NewTimeOfDay(10, 0))

	otherPatient := uuid.New()
	claims := domain.Claims{UserID: uuid.New(), Role: domain.RolePatient, PatientID: &otherPatient}
	_, err := env.svc.CancelAppointment(context.Background(), a.ID,
		&appointment.CancelCommand{Reason: "not mine", CancelledBy: claims.UserID}, claims, "")
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestCancelAppointmentAlreadyCancelled(t *testing.T) {
	env := newTestEnv(t)
	a := env.book(t, mondayMorning.AddDate(0, 0, 2), domain.NewTimeOfDay(10, 0))

	cmd := &appointment.CancelCommand{Reason: "first", CancelledBy: env.patientClaims.UserID}
	if _, err := env.svc.CancelAppointment(context.Background(), a.ID, cmd, env.patientClaims, ""); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	_, err := env.svc.CancelAppointment(context.Background(), a.ID, cmd, env.patientClaims, "")
	if !errors.Is(err, appointment.ErrInvalidStatusTransition) {
		t.Errorf("err = %v, want ErrInvalidStatusTransition", err)
	}
}

// TestCanCancelMatchesCancellation checks the read-only probe agrees with the
// patient cancellation path on both sides of the window.
func TestCanCancelMatchesCancellation(t *testing.T) {
	env := newTestEnv(t)
	tuesday := mondayMorning.AddDate(0, 0, 1)
	a := env.book(t, tuesday, domain.NewTimeOfDay(10, 0))

	ok, err := env.svc.CanCancel(context.Background(), a.ID)
	if err != nil || !ok {
		t.Fatalf("CanCancel 26h ahead = %v, %v; want true", ok, err)
	}

	env.svc.now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }
	ok, err = env.svc.CanCancel(context.Background(), a.ID)
	if err != nil || ok {
		t.Fatalf("CanCancel 22h ahead = %v, %v; want false", ok, err)
	}

	env.svc.now = func() time.Time { return mondayMorning }
	if _, err := env.svc.CancelAppointment(context.Background(), a.ID,
		&appointment.CancelCommand{Reason: "done", CancelledBy: env.patientClaims.UserID},
		env.patientClaims, ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	ok, err = env.svc.CanCancel(context.Background(), a.ID)
	if err != nil || ok {
		t.Fatalf("CanCancel on cancelled = %v, %v; want false", ok, err)
	}
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	a := env.book(t, mondayMorning, domain.NewTimeOfDay(10, 0))

	notes := "routine checkup, all clear"
	updated, err := env.svc.UpdateStatus(context.Background(), a.ID,
		&appointment.UpdateStatusCommand{Status: appointment.StatusCompleted, Notes: &notes},
		env.doctorClaims, "")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != appointment.StatusCompleted || updated.Notes != notes {
		t.Errorf("got status=%q notes=%q", updated.Status, updated.Notes)
	}
}

func TestUpdateStatusRejectsCancellation(t *testing.T) {
	env := newTestEnv(t)
	a := env.book(t, mondayMorning, domain.NewTimeOfDay(10, 0))

	_, err := env.svc.UpdateStatus(context.Background(), a.ID,
		&appointment.UpdateStatusCommand{Status: appointment.StatusCancelled},
		env.doctorClaims, "")
	var validErr *ValidationError
	if !errors.As(err, &validErr) {
		t.Errorf("err = %v, want ValidationError; cancellation must go through the cancel path", err)
	}
}

func TestUpdateStatusWrongDoctor(t *testing.T) {
	env := newTestEnv(t)
	a := env.book(t, mondayMorning, domain.NewTimeOfDay(10, 0))

	otherDoctor := uuid.New()
	claims := domain.Claims{UserID: uuid.New(), Role: domain.RoleDoctor, DoctorID: &otherDoctor}
	_, err := env.svc.UpdateStatus(context.Background(), a.ID,
		&appointment.UpdateStatusCommand{Status: appointment.StatusCompleted}, claims, "")
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestUpdateStatusTerminal(t *testing.T) {
	env := newTestEnv(t)
	a := env.book(t, mondayMorning, domain.NewTimeOfDay(10, 0))

	if _, err := env.svc.UpdateStatus(context.Background(), a.ID,
		&appointment.UpdateStatusCommand{Status: appointment.StatusNoShow}, env.doctorClaims, ""); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	_, err := env.svc.UpdateStatus(context.Background(), a.ID,
		&appointment.UpdateStatusCommand{Status: appointment.StatusCompleted}, env.doctorClaims, "")
	if !errors.Is(err, appointment.ErrInvalidStatusTransition) {
		t.Errorf("err = %v, want ErrInvalidStatusTransition", err)
	}
}

func TestGetByReference(t *testing.T) {
	env := newTestEnv(t)
	a := env.book(t, mondayMorning, domain.NewTimeOfDay(10, 0))

	got, err := env.svc.GetByReference(context.Background(), a.ReferenceNumber, env.patientClaims)
	if err != nil {
		t.Fatalf("GetByReference: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("got %v, want %v", got.ID, a.ID)
	}

	if _, err := env.svc.GetByReference(context.Background(), "APT-20260302-DEADBEEF", env.patientClaims); !errors.Is(err, appointment.ErrNotFound) {
		t.Errorf("unknown reference err = %v, want ErrNotFound", err)
	}
}

func TestListMine(t *testing.T) {
	env := newTestEnv(t)
	env.book(t, mondayMorning, domain.NewTimeOfDay(10, 0))
	env.book(t, mondayMorning, domain.NewTimeOfDay(14, 0))

	paged, err := env.svc.ListMine(context.Background(), env.patientClaims, &appointment.ListQuery{})
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if paged.TotalCount != 2 {
		t.Errorf("total = %d, want 2", paged.TotalCount)
	}
	if paged.Page != 1 || paged.PageSize != 10 {
		t.Errorf("pagination not defaulted: page=%d size=%d", paged.Page, paged.PageSize)
	}

	if _, err := env.svc.ListMine(context.Background(), env.adminClaims, &appointment.ListQuery{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("admin ListMine err = %v, want ErrForbidden", err)
	}
}

func TestTodayForDoctor(t *testing.T) {
	env := newTestEnv(t)
	env.book(t, mondayMorning, domain.NewTimeOfDay(10, 0))
	env.book(t, mondayMorning.AddDate(0, 0, 1), domain.NewTimeOfDay(10, 0))

	items, err := env.svc.TodayForDoctor(context.Background(), env.doctorClaims)
	if err != nil {
		t.Fatalf("TodayForDoctor: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("appointments today = %d, want 1", len(items))
	}

	if _, err := env.svc.TodayForDoctor(context.Background(), env.patientClaims); !errors.Is(err, ErrForbidden) {
		t.Errorf("patient TodayForDoctor err = %v, want ErrForbidden", err)
	}
}
