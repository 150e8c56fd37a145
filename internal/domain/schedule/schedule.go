package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicsync/clinicsync/internal/domain"
)

// DoctorSchedule is one recurring weekly availability window. At most one
// active row may exist per (doctor, weekday); the management flow deactivates
// the previous row when a new one is saved.
type DoctorSchedule struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	DoctorID  uuid.UUID        `gorm:"column:doctor_id;type:uuid;not null;index:idx_schedules_doctor_day"`
	DayOfWeek time.Weekday     `gorm:"column:day_of_week;type:smallint;not null;index:idx_schedules_doctor_day"`
	StartTime domain.TimeOfDay `gorm:"column:start_time;type:time;not null"`
	EndTime   domain.TimeOfDay `gorm:"column:end_time;type:time;not null"`
	IsActive  bool             `gorm:"column:is_active;not null;default:true"`
}

func (DoctorSchedule) TableName() string {
	return "clinical.doctor_schedules"
}

type ExceptionType string

const (
	ExceptionDayOff    ExceptionType = "day_off"
	ExceptionBusy      ExceptionType = "busy"
	ExceptionEmergency ExceptionType = "emergency"
)

func (t ExceptionType) IsValid() bool {
	switch t {
	case ExceptionDayOff, ExceptionBusy, ExceptionEmergency:
		return true
	}
	return false
}

// Exception is a one-off override layered on the weekly schedule: a full day
// off, or a partial block for the given time range.
type Exception struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	DoctorID      uuid.UUID         `gorm:"column:doctor_id;type:uuid;not null;index:idx_exceptions_doctor_date"`
	ExceptionDate time.Time         `gorm:"column:exception_date;type:date;not null;index:idx_exceptions_doctor_date"`
	StartTime     *domain.TimeOfDay `gorm:"column:start_time;type:time"`
	EndTime       *domain.TimeOfDay `gorm:"column:end_time;type:time"`
	Type          ExceptionType     `gorm:"column:type;type:varchar(20);not null"`
	Reason        string            `gorm:"column:reason;type:varchar(200);not null"`
}

func (Exception) TableName() string {
	return "clinical.schedule_exceptions"
}

// BlocksWholeDay reports whether the exception removes the entire date from
// availability. Day-off exceptions always do; busy/emergency exceptions
// without time bounds degenerate to the same thing.
func (e *Exception) BlocksWholeDay() bool {
	if e.Type == ExceptionDayOff {
		return true
	}
	return e.StartTime == nil || e.EndTime == nil
}

// BlocksSlot reports whether the exception's time range intersects the
// half-open slot [start,end). Whole-day exceptions are expected to be handled
// before slot generation and return false here.
func (e *Exception) BlocksSlot(start, end domain.TimeOfDay) bool {
	if e.BlocksWholeDay() {
		return false
	}
	return domain.Overlaps(start, end, *e.StartTime, *e.EndTime)
}

type UpsertScheduleCommand struct {
	DoctorID  uuid.UUID
	DayOfWeek time.Weekday
	StartTime domain.TimeOfDay
	EndTime   domain.TimeOfDay
	IsActive  bool
}

type AddExceptionCommand struct {
	DoctorID      uuid.UUID
	ExceptionDate time.Time
	StartTime     *domain.TimeOfDay
	EndTime       *domain.TimeOfDay
	Type          ExceptionType
	Reason        string
}
