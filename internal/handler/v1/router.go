package v1

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clinicsync/clinicsync/internal/config"
	"github.com/clinicsync/clinicsync/internal/domain"
	"github.com/clinicsync/clinicsync/internal/middleware"
	"github.com/clinicsync/clinicsync/pkg/auth"
	"github.com/clinicsync/clinicsync/pkg/metrics"
)

type RouterDeps struct {
	Config       *config.Config
	Logger       *zap.Logger
	Collector    *metrics.Collector
	JWTManager   *auth.JWTManager
	Availability *AvailabilityHandler
	Appointments *AppointmentHandler
	Doctors      *DoctorHandler
}

// NewRouter builds the gin engine with the full middleware chain and the
// versioned API surface.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Metrics(deps.Collector))
	r.Use(middleware.RateLimit(deps.Config.RateLimit))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     deps.Config.CORS.AllowedMethods,
		AllowHeaders:     deps.Config.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           deps.Config.CORS.MaxAge,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Config.App.Name,
			"version": deps.Config.App.Version,
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")

	// Public directory and availability endpoints.
	api.GET("/specialties", deps.Doctors.ListSpecialties)
	api.GET("/doctors", deps.Doctors.Search)
	api.GET("/doctors/:id", deps.Doctors.Get)
	api.GET("/doctors/:id/schedule", deps.Doctors.ListSchedules)
	api.GET("/doctors/:id/availability", deps.Availability.GetAvailability)

	authed := api.Group("")
	authed.Use(middleware.Authenticate(deps.JWTManager))
	{
		authed.POST("/appointments", middleware.RequireRole(domain.RolePatient), deps.Appointments.Book)
		authed.GET("/appointments", deps.Appointments.List)
		authed.GET("/appointments/today", middleware.RequireRole(domain.RoleDoctor), deps.Appointments.Today)
		authed.GET("/appointments/reference/:ref", deps.Appointments.GetByReference)
		authed.GET("/appointments/:id", deps.Appointments.Get)
		authed.GET("/appointments/:id/can-cancel", deps.Appointments.CanCancel)
		authed.POST("/appointments/:id/cancel", deps.Appointments.Cancel)
		authed.PUT("/appointments/:id/status", middleware.RequireRole(domain.RoleDoctor), deps.Appointments.UpdateStatus)

		authed.POST("/doctors/:id/schedule", middleware.RequireRole(domain.RoleDoctor, domain.RoleAdmin), deps.Doctors.UpsertSchedule)
		authed.POST("/doctors/:id/schedule/exceptions", middleware.RequireRole(domain.RoleDoctor, domain.RoleAdmin), deps.Doctors.AddException)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "route not found"})
	})

	return r
}
