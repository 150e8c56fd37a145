package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicsync/clinicsync/internal/domain"
	"github.com/clinicsync/clinicsync/internal/domain/appointment"
	"github.com/clinicsync/clinicsync/internal/service"
)

type AppointmentHandler struct {
	svc *service.AppointmentService
	log *zap.Logger
}

func NewAppointmentHandler(svc *service.AppointmentService, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, log: log}
}

type bookAppointmentRequest struct {
	DoctorID        uuid.UUID        `json:"doctorId" binding:"required"`
	AppointmentDate string           `json:"appointmentDate" binding:"required"`
	StartTime       domain.TimeOfDay `json:"startTime"`
	ReasonForVisit  string           `json:"reasonForVisit" binding:"max=500"`
}

// Book handles POST /appointments. Patients book for themselves; the
// patient identity always comes from the token, never the payload.
func (h *AppointmentHandler) Book(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	if claims.PatientID == nil {
		respondError(c, http.StatusForbidden, "no patient profile linked to this account")
		return
	}

	var req bookAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}
	date, ok := parseDate(c, req.AppointmentDate)
	if !ok {
		return
	}

	cmd := &appointment.BookCommand{
		PatientID:      *claims.PatientID,
		DoctorID:       req.DoctorID,
		Date:           date,
		StartTime:      req.StartTime,
		ReasonForVisit: req.ReasonForVisit,
	}
	a, err := h.svc.BookAppointment(c.Request.Context(), cmd, claims, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toAppointmentResponse(a))
}

// List handles GET /appointments, scoped to the caller.
func (h *AppointmentHandler) List(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}

	q := &appointment.ListQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "pageSize", 10),
	}
	paged, err := h.svc.ListMine(c.Request.Context(), claims, q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, PagedAppointmentsResponse{
		Appointments: toAppointmentResponses(paged.Appointments),
		TotalCount:   paged.TotalCount,
		Page:         paged.Page,
		PageSize:     paged.PageSize,
		TotalPages:   paged.TotalPages,
	})
}

// Today handles GET /appointments/today for the signed-in doctor.
func (h *AppointmentHandler) Today(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	items, err := h.svc.TodayForDoctor(c.Request.Context(), claims)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponses(items))
}

// Get handles GET /appointments/:id.
func (h *AppointmentHandler) Get(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.GetAppointment(c.Request.Context(), id, claims)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

// GetByReference handles GET /appointments/reference/:ref.
func (h *AppointmentHandler) GetByReference(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	ref := c.Param("ref")
	a, err := h.svc.GetByReference(c.Request.Context(), ref, claims)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

type cancelAppointmentRequest struct {
	CancellationReason string `json:"cancellationReason" binding:"required,max=500"`
}

// Cancel handles POST /appointments/:id/cancel.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req cancelAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &appointment.CancelCommand{
		Reason:      req.CancellationReason,
		CancelledBy: claims.UserID,
	}
	a, err := h.svc.CancelAppointment(c.Request.Context(), id, cmd, claims, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

// CanCancel handles GET /appointments/:id/can-cancel. Booking forms use
// it to show or hide the cancel button without attempting the cancel.
func (h *AppointmentHandler) CanCancel(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if _, err := h.svc.GetAppointment(c.Request.Context(), id, claims); err != nil {
		respondServiceError(c, err)
		return
	}
	allowed, err := h.svc.CanCancel(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"canCancel": allowed})
}

type updateStatusRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

// UpdateStatus handles PUT /appointments/:id/status. Doctors mark visits
// completed or no-show; cancellation goes through the cancel endpoint.
func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	claims, ok := claimsOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &appointment.UpdateStatusCommand{
		Status: appointment.Status(req.Status),
		Notes:  req.Notes,
	}
	a, err := h.svc.UpdateStatus(c.Request.Context(), id, cmd, claims, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}
