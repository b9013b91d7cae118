package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmedaminrashad/horizon-sub000/internal/config"
	clinichandler "github.com/ahmedaminrashad/horizon-sub000/internal/handler/clinic"
	doctorhandler "github.com/ahmedaminrashad/horizon-sub000/internal/handler/doctor"
	healthhandler "github.com/ahmedaminrashad/horizon-sub000/internal/handler/health"
	reservationhandler "github.com/ahmedaminrashad/horizon-sub000/internal/handler/reservation"
	schedulehandler "github.com/ahmedaminrashad/horizon-sub000/internal/handler/schedule"
	"github.com/ahmedaminrashad/horizon-sub000/internal/middleware"
	"github.com/ahmedaminrashad/horizon-sub000/internal/repository/postgres"
	"github.com/ahmedaminrashad/horizon-sub000/internal/router"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/clinic"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/directory"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/doctor"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/reservation"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/schedule"
	"github.com/ahmedaminrashad/horizon-sub000/internal/tenant"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/auth"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/logger"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/messaging"
	redisbroker "github.com/ahmedaminrashad/horizon-sub000/pkg/messaging/redis"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/metrics"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	central, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to the central database")
	}
	defer central.Close()

	if err := postgres.MigrateCentral(context.Background(), central); err != nil {
		log.Fatal(err, "failed to migrate the central database")
	}

	m := metrics.NewMetrics("horizon", "api")

	registry := tenant.NewRegistry(cfg.Database, log, m, tenant.WithMigrator(postgres.MigrateTenant))
	defer registry.Close()

	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisbroker.NewRedisBroker(redisbroker.Config{URL: cfg.Redis.URL}, log.Zerolog())
		if err != nil {
			log.Fatal(err, "failed to connect to redis")
		}
		defer broker.Close()
	}

	base := postgres.NewBaseRepository(central, registry, m)
	clinicRepo := postgres.NewClinicRepository(base)
	userRepo := postgres.NewUserRepository(base)
	mirrorRepo := postgres.NewDoctorMirrorRepository(base)
	doctorRepo := postgres.NewDoctorRepository(base)
	branchRepo := postgres.NewBranchRepository(base)
	workingHourRepo := postgres.NewWorkingHourRepository(base)
	breakHourRepo := postgres.NewBreakHourRepository(base)
	doctorHourRepo := postgres.NewDoctorWorkingHourRepository(base)
	reservationRepo := postgres.NewReservationRepository(base)

	tokens := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	clinicSvc := clinic.NewService(clinicRepo, userRepo, registry, tokens, cfg.Tenant, log, m)
	directorySvc := directory.NewService(doctorRepo, mirrorRepo, broker, log, m)
	doctorSvc := doctor.NewService(doctorRepo, branchRepo, directorySvc)
	scheduleSvc := schedule.NewService(workingHourRepo, breakHourRepo, doctorHourRepo, doctorRepo, reservationRepo, log)
	reservationSvc := reservation.NewService(reservationRepo, doctorHourRepo, directorySvc, log, m)

	handlers := &router.Handlers{
		Health:      healthhandler.NewHandler(central, registry),
		Clinic:      clinichandler.NewHandler(clinicSvc, directorySvc),
		Doctor:      doctorhandler.NewHandler(doctorSvc),
		Schedule:    schedulehandler.NewHandler(scheduleSvc),
		Reservation: reservationhandler.NewHandler(reservationSvc),
	}

	mw := &router.Middleware{
		Tenant: middleware.NewTenantMiddleware(clinicSvc,
			time.Duration(cfg.Tenant.DirectoryCacheSeconds)*time.Second, log),
		Auth: middleware.NewAuthMiddleware(tokens),
	}

	engine := router.New(handlers, mw, log)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
}
