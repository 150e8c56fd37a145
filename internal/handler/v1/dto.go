package v1

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicsync/clinicsync/internal/domain"
	"github.com/clinicsync/clinicsync/internal/domain/appointment"
	"github.com/clinicsync/clinicsync/internal/domain/doctor"
	"github.com/clinicsync/clinicsync/internal/domain/schedule"
)

type DoctorInfo struct {
	ID            uuid.UUID `json:"id"`
	FullName      string    `json:"fullName"`
	Specialty     string    `json:"specialty,omitempty"`
	LicenseNumber string    `json:"licenseNumber,omitempty"`
}

type PatientInfo struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
}

type AppointmentResponse struct {
	ID                 uuid.UUID        `json:"id"`
	ReferenceNumber    string           `json:"referenceNumber"`
	AppointmentDate    string           `json:"appointmentDate"`
	StartTime          domain.TimeOfDay `json:"startTime"`
	EndTime            domain.TimeOfDay `json:"endTime"`
	Status             string           `json:"status"`
	ReasonForVisit     string           `json:"reasonForVisit,omitempty"`
	Notes              string           `json:"notes,omitempty"`
	Doctor             *DoctorInfo      `json:"doctor,omitempty"`
	Patient            *PatientInfo     `json:"patient,omitempty"`
	CancelledAt        *time.Time       `json:"cancelledAt,omitempty"`
	CancellationReason string           `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
}

func toAppointmentResponse(a *appointment.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:                 a.ID,
		ReferenceNumber:    a.ReferenceNumber,
		AppointmentDate:    a.AppointmentDate.Format("2006-01-02"),
		StartTime:          a.StartTime,
		EndTime:            a.EndTime,
		Status:             string(a.Status),
		ReasonForVisit:     a.ReasonForVisit,
		Notes:              a.Notes,
		CancelledAt:        a.CancelledAt,
		CancellationReason: a.CancellationReason,
		CreatedAt:          a.CreatedAt,
	}
	if a.Doctor != nil {
		resp.Doctor = &DoctorInfo{ID: a.Doctor.ID, LicenseNumber: a.Doctor.LicenseNumber}
		if a.Doctor.User != nil {
			resp.Doctor.FullName = a.Doctor.User.FullName
		}
		if a.Doctor.Specialty != nil {
			resp.Doctor.Specialty = a.Doctor.Specialty.Name
		}
	}
	if a.Patient != nil {
		resp.Patient = &PatientInfo{ID: a.Patient.ID}
		if a.Patient.User != nil {
			resp.Patient.FullName = a.Patient.User.FullName
		}
	}
	return resp
}

func toAppointmentResponses(items []*appointment.Appointment) []*AppointmentResponse {
	out := make([]*AppointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

type PagedAppointmentsResponse struct {
	Appointments []*AppointmentResponse `json:"appointments"`
	TotalCount   int64                  `json:"totalCount"`
	Page         int                    `json:"page"`
	PageSize     int                    `json:"pageSize"`
	TotalPages   int                    `json:"totalPages"`
}

type DoctorResponse struct {
	ID                uuid.UUID `json:"id"`
	FullName          string    `json:"fullName"`
	Specialty         string    `json:"specialty,omitempty"`
	LicenseNumber     string    `json:"licenseNumber"`
	YearsOfExperience int       `json:"yearsOfExperience"`
	ConsultationFee   float64   `json:"consultationFee"`
	Bio               string    `json:"bio,omitempty"`
}

func toDoctorResponse(d *doctor.Doctor) *DoctorResponse {
	resp := &DoctorResponse{
		ID:                d.ID,
		LicenseNumber:     d.LicenseNumber,
		YearsOfExperience: d.YearsOfExperience,
		ConsultationFee:   d.ConsultationFee,
		Bio:               d.Bio,
	}
	if d.User != nil {
		resp.FullName = d.User.FullName
	}
	if d.Specialty != nil {
		resp.Specialty = d.Specialty.Name
	}
	return resp
}

type PagedDoctorsResponse struct {
	Doctors    []*DoctorResponse `json:"doctors"`
	TotalCount int64             `json:"totalCount"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

type SpecialtyResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

type ScheduleResponse struct {
	ID        uuid.UUID        `json:"id"`
	DayOfWeek int              `json:"dayOfWeek"`
	DayName   string           `json:"dayName"`
	StartTime domain.TimeOfDay `json:"startTime"`
	EndTime   domain.TimeOfDay `json:"endTime"`
	IsActive  bool             `json:"isActive"`
}

func toScheduleResponse(s *schedule.DoctorSchedule) *ScheduleResponse {
	return &ScheduleResponse{
		ID:        s.ID,
		DayOfWeek: int(s.DayOfWeek),
		DayName:   s.DayOfWeek.String(),
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		IsActive:  s.IsActive,
	}
}

type ExceptionResponse struct {
	ID            uuid.UUID         `json:"id"`
	ExceptionDate string            `json:"exceptionDate"`
	StartTime     *domain.TimeOfDay `json:"startTime,omitempty"`
	EndTime       *domain.TimeOfDay `json:"endTime,omitempty"`
	Type          string            `json:"type"`
	Reason        string            `json:"reason"`
}

func toExceptionResponse(e *schedule.Exception) *ExceptionResponse {
	return &ExceptionResponse{
		ID:            e.ID,
		ExceptionDate: e.ExceptionDate.Format("2006-01-02"),
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		Type:          string(e.Type),
		Reason:        e.Reason,
	}
}
