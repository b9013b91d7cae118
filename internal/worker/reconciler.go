package worker

import (
	"context"
	"time"

	"github.com/ahmedaminrashad/horizon-sub000/internal/repository"
	"github.com/ahmedaminrashad/horizon-sub000/internal/service/directory"
	"github.com/ahmedaminrashad/horizon-sub000/internal/tenant"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/logger"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/messaging"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/metrics"
)

type ReconcilerConfig struct {
	SweepInterval time.Duration
}

// Reconciler repairs drift between tenant doctor data and the central
// directory mirror. The mirror is written best-effort on the request
// path, so a periodic sweep walks every provisioned clinic and
// re-upserts its doctors. It also listens for reservation.created
// events to log admissions as they flow through the broker.
type Reconciler struct {
	clinics   repository.ClinicRepository
	doctors   repository.DoctorRepository
	directory directory.Servicer
	broker    messaging.Broker
	config    ReconcilerConfig
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewReconciler(
	clinics repository.ClinicRepository,
	doctors repository.DoctorRepository,
	dir directory.Servicer,
	broker messaging.Broker,
	config ReconcilerConfig,
	log *logger.Logger,
	m *metrics.Metrics,
) *Reconciler {
	if config.SweepInterval <= 0 {
		config.SweepInterval = 15 * time.Minute
	}
	return &Reconciler{
		clinics:   clinics,
		doctors:   doctors,
		directory: dir,
		broker:    broker,
		config:    config,
		logger:    log,
		metrics:   m,
	}
}

func (r *Reconciler) Start(ctx context.Context) {
	r.logger.Info("starting mirror reconciler", "interval", r.config.SweepInterval.String())

	if r.broker != nil {
		go r.consumeAdmissions(ctx)
	}

	ticker := time.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("shutting down mirror reconciler")
			return
		case <-ticker.C:
			if err := r.sweep(ctx); err != nil {
				r.logger.Error(err, "mirror sweep failed")
			}
		}
	}
}

// sweep walks every provisioned clinic and re-mirrors its doctors.
func (r *Reconciler) sweep(ctx context.Context) error {
	clinics, err := r.clinics.List(ctx)
	if err != nil {
		return err
	}

	for _, clinic := range clinics {
		if clinic.DatabaseName == nil || !clinic.IsActive {
			continue
		}

		tenantCtx := tenant.WithClinicID(ctx, clinic.ID)
		err := tenant.WithTenantContext(tenantCtx, *clinic.DatabaseName, func(ctx context.Context) error {
			doctors, err := r.doctors.List(ctx)
			if err != nil {
				return err
			}
			for _, doctor := range doctors {
				r.directory.MirrorDoctor(ctx, doctor)
			}
			return nil
		})
		if err != nil {
			if r.metrics != nil {
				r.metrics.DirectorySyncFailed.Inc()
			}
			r.logger.Error(err, "clinic sweep failed", "clinic_id", clinic.ID.String())
		}
	}
	return nil
}

func (r *Reconciler) consumeAdmissions(ctx context.Context) {
	messages, err := r.broker.Subscribe(ctx, "reservation.created")
	if err != nil {
		r.logger.Error(err, "failed to subscribe to admissions")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			r.logger.Debug("admission event received", "payload", string(msg))
		}
	}
}
