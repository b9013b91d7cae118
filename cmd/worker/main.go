package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmedaminrashad/horizon-sub000/internal/config"
	"github.com/ahmedaminrashad/horizon-sub000/internal/repository/postgres"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/directory"
	"github.com/ahmedaminrashad/horizon-sub000/internal/tenant"
	"github.com/ahmedaminrashad/horizon-sub000/internal/worker"
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

	m := metrics.NewMetrics("horizon", "worker")

	registry := tenant.NewRegistry(cfg.Database, log, m)
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
	doctorRepo := postgres.NewDoctorRepository(base)
	mirrorRepo := postgres.NewDoctorMirrorRepository(base)

	directorySvc := directory.NewService(doctorRepo, mirrorRepo, broker, log, m)

	reconciler := worker.NewReconciler(clinicRepo, doctorRepo, directorySvc, broker,
		worker.ReconcilerConfig{SweepInterval: 15 * time.Minute}, log, m)

	ctx, cancel := context.WithCancel(context.Background())
	go reconciler.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	log.Info("worker stopped")
}
