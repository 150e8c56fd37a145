package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinicsync/clinicsync/internal/service"
	"github.com/clinicsync/clinicsync/pkg/metrics"
)

type AvailabilityHandler struct {
	svc       *service.AvailabilityService
	collector *metrics.Collector
	log       *zap.Logger
}

func NewAvailabilityHandler(svc *service.AvailabilityService, collector *metrics.Collector, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc, collector: collector, log: log}
}

// GetAvailability handles GET /doctors/:id/availability?date=YYYY-MM-DD.
// The endpoint is public so patients can browse slots before signing in;
// the response never carries patient identities.
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	doctorID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	raw := c.Query("date")
	if raw == "" {
		respondError(c, http.StatusBadRequest, "date query parameter is required")
		return
	}
	date, ok := parseDate(c, raw)
	if !ok {
		return
	}

	h.collector.AvailabilityQueries.Inc()

	resp, err := h.svc.GetDoctorAvailability(c.Request.Context(), doctorID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, resp)
}
