package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicsync/clinicsync/internal/domain"
	"github.com/clinicsync/clinicsync/internal/domain/doctor"
	"github.com/clinicsync/clinicsync/internal/domain/schedule"
	"github.com/clinicsync/clinicsync/internal/service"
)

type DoctorHandler struct {
	svc *service.DoctorService
	log *zap.Logger
}

func NewDoctorHandler(svc *service.DoctorService, log *zap.Logger) *DoctorHandler {
	return &DoctorHandler{svc: svc, log: log}
}

// Search handles GET /doctors.
func (h *DoctorHandler) Search(c *gin.Context) {
	q := &doctor.SearchQuery{
		Name:     c.Query("name"),
		SortBy:   c.DefaultQuery("sortBy", "name"),
		SortDesc: c.Query("sortDesc") == "true",
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "pageSize", 10),
	}
	if raw := c.Query("specialtyId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid specialtyId: must be a valid UUID")
			return
		}
		q.SpecialtyID = &id
	}

	paged, err := h.svc.Search(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	doctors := make([]*DoctorResponse, 0, len(paged.Doctors))
	for _, d := range paged.Doctors {
		doctors = append(doctors, toDoctorResponse(d))
	}
	respondOK(c, PagedDoctorsResponse{
		Doctors:    doctors,
		TotalCount: paged.TotalCount,
		Page:       paged.Page,
		PageSize:   paged.PageSize,
		TotalPages: paged.TotalPages,
	})
}

// Get handles GET /doctors/:id.
func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	d, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toDoctorResponse(d))
}

// ListSpecialties handles GET /specialties.
func (h *DoctorHandler) ListSpecialties(c *gin.Context) {
	items, err := h.svc.ListSpecialties(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]*SpecialtyResponse, 0, len(items))
	for _, s := range items {
		out = append(out, &SpecialtyResponse{ID: s.ID, Name: s.Name, Description: s.Description})
	}
	respondOK(c, out)
}

// ListSchedules handles GET /doctors/:id/schedule.
func (h *DoctorHandler) ListSchedules(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.ListSchedules(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	out := make([]*ScheduleResponse, 0, len(items))
	for _, s := range items {
		out = append(out, toScheduleResponse(s))
	}
	respondOK(c, out)
}

type upsertScheduleRequest struct {
	DayOfWeek *int             `json:"dayOfWeek" binding:"required"`
	StartTime domain.TimeOfDay `json:"startTime"`
	EndTime   domain.TimeOfDay `json:"endTime"`
	IsActive  *bool            `json:"isActive"`
}

// UpsertSchedule handles POST /doctors/:id/schedule. Doctors manage their
// own weekly hours; admins can manage anyone's.
func (h *DoctorHandler) UpsertSchedule(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req upsertScheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	cmd := &schedule.UpsertScheduleCommand{
		DoctorID:  doctorID,
		DayOfWeek: time.Weekday(*req.DayOfWeek),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		IsActive:  active,
	}
	s, err := h.svc.UpsertSchedule(c.Request.Context(), cmd, claims, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toScheduleResponse(s))
}

type addExceptionRequest struct {
	ExceptionDate string            `json:"exceptionDate" binding:"required"`
	StartTime     *domain.TimeOfDay `json:"startTime"`
	EndTime       *domain.TimeOfDay `json:"endTime"`
	Type          string            `json:"type" binding:"required"`
	Reason        string            `json:"reason" binding:"required,max=200"`
}

// AddException handles POST /doctors/:id/schedule/exceptions.
func (h *DoctorHandler) AddException(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req addExceptionRequest
	if !bindJSON(c, &req) {
		return
	}
	date, ok := parseDate(c, req.ExceptionDate)
	if !ok {
		return
	}

	cmd := &schedule.AddExceptionCommand{
		DoctorID:      doctorID,
		ExceptionDate: date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Type:          schedule.ExceptionType(req.Type),
		Reason:        req.Reason,
	}
	e, err := h.svc.AddException(c.Request.Context(), cmd, claims, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toExceptionResponse(e))
}
