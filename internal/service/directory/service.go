package directory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/repository"
	"github.com/ahmedaminrashad/horizon-sub000/internal/tenant"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/logger"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/messaging"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/metrics"
)

const (
	reservationCreatedChannel = "reservation.created"
	doctorSyncedChannel       = "doctor.synced"
)

// syncTimeout bounds one background sync attempt.
const syncTimeout = 10 * time.Second

type Servicer interface {
	SyncAdmission(ctx context.Context, doctorID uuid.UUID)
	MirrorDoctor(ctx context.Context, doctor *model.Doctor)
	SearchDoctors(ctx context.Context, query string) ([]*model.DoctorMirror, error)
}

// Service keeps the central directory's doctor mirror loosely in step
// with tenant data. Every write here is best-effort: failures are
// logged and counted, never returned to the operation that triggered
// the sync.
type Service struct {
	doctors repository.DoctorRepository
	mirrors repository.DoctorMirrorRepository
	broker  messaging.Broker
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(
	doctors repository.DoctorRepository,
	mirrors repository.DoctorMirrorRepository,
	broker messaging.Broker,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		doctors: doctors,
		mirrors: mirrors,
		broker:  broker,
		logger:  log,
		metrics: m,
	}
}

// SyncAdmission bumps the doctor's patient counter in the tenant
// database, refreshes the directory mirror, and publishes a
// reservation.created event. The caller's admission has already
// committed; nothing here can roll it back.
func (s *Service) SyncAdmission(ctx context.Context, doctorID uuid.UUID) {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	if err := s.doctors.IncrementPatients(ctx, doctorID, 1); err != nil {
		s.fail(err, "incrementing tenant patient counter", doctorID)
	}

	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		s.fail(err, "loading doctor for mirror refresh", doctorID)
	} else {
		s.MirrorDoctor(ctx, doctor)
	}

	if s.broker != nil {
		event := map[string]interface{}{
			"doctor_id": doctorID,
			"clinic_id": tenant.ClinicIDFromContext(ctx),
		}
		if err := s.broker.Publish(ctx, reservationCreatedChannel, event); err != nil {
			s.fail(err, "publishing reservation.created", doctorID)
		}
	}
}

// MirrorDoctor upserts the doctor's directory mirror row. The mirror
// lives in the central database, so the write runs with the tenant
// cleared from the context.
func (s *Service) MirrorDoctor(ctx context.Context, doctor *model.Doctor) {
	clinicID := tenant.ClinicIDFromContext(ctx)
	if clinicID == uuid.Nil {
		s.fail(nil, "no clinic id on context, mirror row skipped", doctor.ID)
		return
	}

	mirror := &model.DoctorMirror{
		DoctorID:      doctor.ID,
		ClinicID:      clinicID,
		Name:          doctor.Name,
		Specialty:     doctor.Specialty,
		PatientsCount: doctor.PatientsCount,
		SyncedAt:      time.Now(),
	}
	if err := s.mirrors.Upsert(tenant.ClearDatabase(ctx), mirror); err != nil {
		s.fail(err, "upserting doctor mirror", doctor.ID)
		return
	}

	if s.broker != nil {
		event := map[string]interface{}{
			"doctor_id": doctor.ID,
			"clinic_id": clinicID,
		}
		if err := s.broker.Publish(ctx, doctorSyncedChannel, event); err != nil {
			s.fail(err, "publishing doctor.synced", doctor.ID)
		}
	}
}

// SearchDoctors queries the central mirror across all clinics.
func (s *Service) SearchDoctors(ctx context.Context, query string) ([]*model.DoctorMirror, error) {
	return s.mirrors.Search(tenant.ClearDatabase(ctx), query)
}

func (s *Service) fail(err error, msg string, doctorID uuid.UUID) {
	if s.metrics != nil {
		s.metrics.DirectorySyncFailed.Inc()
	}
	if s.logger != nil {
		s.logger.Error(err, "directory sync: "+msg, "doctor_id", doctorID.String())
	}
}
