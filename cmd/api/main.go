package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/clinicsync/clinicsync/internal/config"
	v1 "github.com/clinicsync/clinicsync/internal/handler/v1"
	"github.com/clinicsync/clinicsync/internal/notify"
	"github.com/clinicsync/clinicsync/internal/repository"
	"github.com/clinicsync/clinicsync/internal/service"
	"github.com/clinicsync/clinicsync/pkg/auth"
	"github.com/clinicsync/clinicsync/pkg/database"
	"github.com/clinicsync/clinicsync/pkg/logger"
	"github.com/clinicsync/clinicsync/pkg/metrics"
	"github.com/clinicsync/clinicsync/pkg/tracer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting service",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		log.Fatal("failed to initialize tracer", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}
	if cfg.App.Environment == "development" {
		if err := database.Seed(db, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	}

	collector := metrics.NewCollector("clinicsync")

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	go database.MonitorConnections(monitorCtx, db, collector.DBConnections)

	jwtManager := auth.NewJWTManager(cfg.JWT)

	apptRepo := repository.NewAppointmentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	auditSvc := service.NewAuditService(auditRepo, collector, log)

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Events.Enabled {
		notifier = notify.NewKafka(cfg.Events, log)
	}

	availabilitySvc := service.NewAvailabilityService(scheduleRepo, apptRepo, cfg.Scheduling.SlotDuration, log)
	apptSvc := service.NewAppointmentService(
		apptRepo, scheduleRepo, doctorRepo, patientRepo,
		auditSvc, notifier, collector,
		cfg.Scheduling.SlotDuration, cfg.Scheduling.CancelNotice,
		log,
	)
	doctorSvc := service.NewDoctorService(doctorRepo, scheduleRepo, auditSvc, log)

	router := v1.NewRouter(v1.RouterDeps{
		Config:       cfg,
		Logger:       log,
		Collector:    collector,
		JWTManager:   jwtManager,
		Availability: v1.NewAvailabilityHandler(availabilitySvc, collector, log),
		Appointments: v1.NewAppointmentHandler(apptSvc, log),
		Doctors:      v1.NewDoctorHandler(doctorSvc, log),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}

	auditSvc.Shutdown()
	if err := notifier.Close(); err != nil {
		log.Warn("notifier close failed", zap.Error(err))
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Warn("tracer shutdown failed", zap.Error(err))
	}

	log.Info("shutdown complete")
}
