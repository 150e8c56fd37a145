package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicsync/clinicsync/internal/domain"
	"github.com/clinicsync/clinicsync/internal/domain/doctor"
	"github.com/clinicsync/clinicsync/internal/domain/schedule"
)

type DoctorService struct {
	repo         doctor.Repository
	scheduleRepo schedule.Repository
	auditSvc     *AuditService
	log          *zap.Logger
}

func NewDoctorService(repo doctor.Repository, scheduleRepo schedule.Repository, auditSvc *AuditService, log *zap.Logger) *DoctorService {
	return &DoctorService{repo: repo, scheduleRepo: scheduleRepo, auditSvc: auditSvc, log: log}
}

func (s *DoctorService) Search(ctx context.Context, q *doctor.SearchQuery) (*doctor.Paged, error) {
	if q.PageSize <= 0 || q.PageSize > 100 {
		q.PageSize = 10
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	return s.repo.Search(ctx, q)
}

func (s *DoctorService) GetByID(ctx context.Context, id uuid.UUID) (*doctor.Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DoctorService) ListSpecialties(ctx context.Context) ([]*doctor.Specialty, error) {
	return s.repo.ListSpecialties(ctx)
}

func (s *DoctorService) ListSchedules(ctx context.Context, doctorID uuid.UUID) ([]*schedule.DoctorSchedule, error) {
	if _, err := s.repo.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.scheduleRepo.ListForDoctor(ctx, doctorID)
}

// UpsertSchedule replaces the doctor's availability window for one weekday.
// Doctors manage their own calendar; admins may manage any.
func (s *DoctorService) UpsertSchedule(ctx context.Context, cmd *schedule.UpsertScheduleCommand, actor domain.Claims, ip string) (*schedule.DoctorSchedule, error) {
	if err := s.authorizeManage(cmd.DoctorID, actor); err != nil {
		return nil, err
	}
	if !cmd.StartTime.Valid() || !cmd.EndTime.Valid() || !cmd.StartTime.Before(cmd.EndTime) {
		return nil, schedule.ErrInvalidTimeWindow
	}
	if cmd.DayOfWeek < 0 || cmd.DayOfWeek > 6 {
		return nil, &ValidationError{Fields: []string{"dayOfWeek must be between 0 (Sunday) and 6 (Saturday)"}}
	}

	row := &schedule.DoctorSchedule{
		DoctorID:  cmd.DoctorID,
		DayOfWeek: cmd.DayOfWeek,
		StartTime: cmd.StartTime,
		EndTime:   cmd.EndTime,
		IsActive:  cmd.IsActive,
	}
	if err := s.scheduleRepo.Upsert(ctx, row); err != nil {
		s.log.Error("saving doctor schedule", zap.Error(err))
		return nil, fmt.Errorf("saving schedule: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionUpdate,
		ResourceType: "doctor_schedule",
		ResourceID:   row.ID.String(),
		IPAddress:    ip,
		Changes:      fmt.Sprintf(`{"day":%d,"window":"%s-%s"}`, cmd.DayOfWeek, cmd.StartTime, cmd.EndTime),
	})

	return row, nil
}

func (s *DoctorService) AddException(ctx context.Context, cmd *schedule.AddExceptionCommand, actor domain.Claims, ip string) (*schedule.Exception, error) {
	if err := s.authorizeManage(cmd.DoctorID, actor); err != nil {
		return nil, err
	}
	if !cmd.Type.IsValid() {
		return nil, &ValidationError{Fields: []string{"type must be day_off, busy, or emergency"}}
	}
	if (cmd.StartTime == nil) != (cmd.EndTime == nil) {
		return nil, schedule.ErrInvalidException
	}
	if cmd.StartTime != nil && !cmd.StartTime.Before(*cmd.EndTime) {
		return nil, schedule.ErrInvalidTimeWindow
	}
	if cmd.ExceptionDate.IsZero() {
		return nil, &ValidationError{Fields: []string{"exceptionDate is required"}}
	}

	e := &schedule.Exception{
		DoctorID:      cmd.DoctorID,
		ExceptionDate: domain.DateOnly(cmd.ExceptionDate),
		StartTime:     cmd.StartTime,
		EndTime:       cmd.EndTime,
		Type:          cmd.Type,
		Reason:        cmd.Reason,
	}
	if err := s.scheduleRepo.AddException(ctx, e); err != nil {
		s.log.Error("saving schedule exception", zap.Error(err))
		return nil, fmt.Errorf("saving exception: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID:       actor.UserID,
		UserRole:     actor.Role,
		Action:       domain.ActionCreate,
		ResourceType: "schedule_exception",
		ResourceID:   e.ID.String(),
		IPAddress:    ip,
	})

	return e, nil
}

func (s *DoctorService) authorizeManage(doctorID uuid.UUID, actor domain.Claims) error {
	switch actor.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleDoctor:
		if actor.DoctorID != nil && *actor.DoctorID == doctorID {
			return nil
		}
	}
	return ErrForbidden
}
