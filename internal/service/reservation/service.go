package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/repository"
	"github.com/ahmedaminrashad/horizon-sub000/internal/tenant"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/logger"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/metrics"
)

// AdmissionSyncer mirrors an admission into the directory,
// best-effort. Implementations log their own failures.
type AdmissionSyncer interface {
	SyncAdmission(ctx context.Context, doctorID uuid.UUID)
}

type Servicer interface {
	CreateReservation(ctx context.Context, input *CreateInput) (*model.Reservation, error)
	UpdateReservation(ctx context.Context, id uuid.UUID, input *UpdateInput) (*model.Reservation, error)
	GetReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error)
	ListReservations(ctx context.Context, filters *model.ReservationFilters) ([]*model.Reservation, error)
	CancelReservation(ctx context.Context, id uuid.UUID) error
}

type CreateInput struct {
	DoctorID      uuid.UUID
	WorkingHourID uuid.UUID
	Date          string
	PatientName   string
	PatientPhone  string
	MedicalStatus *string
}

type UpdateInput struct {
	WorkingHourID *uuid.UUID
	Date          *string
	Status        *model.ReservationStatus
	Paid          *bool
	MedicalStatus *string
}

type Service struct {
	reservations repository.ReservationRepository
	doctorHours  repository.DoctorWorkingHourRepository
	syncer       AdmissionSyncer
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewService(
	reservations repository.ReservationRepository,
	doctorHours repository.DoctorWorkingHourRepository,
	syncer AdmissionSyncer,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		reservations: reservations,
		doctorHours:  doctorHours,
		syncer:       syncer,
		logger:       log,
		metrics:      m,
	}
}

// CreateReservation admits a booking against a doctor working-hour
// slot. On admission the reservation is pending with the working
// hour's fees and unpaid; the doctor's patient counter and the
// directory mirror are synced fire-and-forget afterwards.
func (s *Service) CreateReservation(ctx context.Context, input *CreateInput) (*model.Reservation, error) {
	hour, reservedAt, err := s.admit(ctx, input.DoctorID, input.WorkingHourID, input.Date, uuid.Nil)
	if err != nil {
		return nil, err
	}

	reservation := &model.Reservation{
		DoctorID:            input.DoctorID,
		DoctorWorkingHourID: hour.ID,
		PatientName:         input.PatientName,
		PatientPhone:        input.PatientPhone,
		Date:                input.Date,
		ReservedAt:          reservedAt,
		Status:              model.ReservationStatusPending,
		Fees:                hour.Fees,
		Paid:                false,
		MedicalStatus:       input.MedicalStatus,
		Exclusive:           hour.Waterfall,
	}

	if err := s.reservations.Create(ctx, reservation); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) && s.metrics != nil {
			s.metrics.ReservationConflicts.Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ReservationsAdmitted.Inc()
	}

	// The sync is fire-and-forget: not bounded by this request's
	// lifetime and never rolls the admission back.
	if s.syncer != nil {
		bgCtx := tenant.WithDatabase(context.Background(), tenant.DatabaseFromContext(ctx))
		bgCtx = tenant.WithClinicID(bgCtx, tenant.ClinicIDFromContext(ctx))
		go s.syncer.SyncAdmission(bgCtx, input.DoctorID)
	}

	return reservation, nil
}

// UpdateReservation re-runs the admission checks against the possibly
// changed working hour and date, excluding the reservation itself
// from the conflict scan.
func (s *Service) UpdateReservation(ctx context.Context, id uuid.UUID, input *UpdateInput) (*model.Reservation, error) {
	reservation, err := s.reservations.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	workingHourID := reservation.DoctorWorkingHourID
	if input.WorkingHourID != nil {
		workingHourID = *input.WorkingHourID
	}
	date := reservation.Date
	if input.Date != nil {
		date = *input.Date
	}

	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", *input.Status), nil)
		}
		reservation.Status = *input.Status
	}

	hour, reservedAt, err := s.admit(ctx, reservation.DoctorID, workingHourID, date, reservation.ID)
	if err != nil {
		return nil, err
	}

	reservation.DoctorWorkingHourID = hour.ID
	reservation.Date = date
	reservation.ReservedAt = reservedAt
	reservation.Exclusive = hour.Waterfall
	if input.Paid != nil {
		reservation.Paid = *input.Paid
	}
	if input.MedicalStatus != nil {
		reservation.MedicalStatus = input.MedicalStatus
	}

	if err := s.reservations.Update(ctx, reservation); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) && s.metrics != nil {
			s.metrics.ReservationConflicts.Inc()
		}
		return nil, err
	}
	return reservation, nil
}

func (s *Service) GetReservation(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return s.reservations.Get(ctx, id)
}

func (s *Service) ListReservations(ctx context.Context, filters *model.ReservationFilters) ([]*model.Reservation, error) {
	return s.reservations.List(ctx, filters)
}

func (s *Service) CancelReservation(ctx context.Context, id uuid.UUID) error {
	reservation, err := s.reservations.Get(ctx, id)
	if err != nil {
		return err
	}
	if reservation.Status == model.ReservationStatusCancelled {
		return apperrors.Conflict("reservation is already cancelled", nil)
	}
	return s.reservations.UpdateStatus(ctx, id, model.ReservationStatusCancelled)
}

// admit runs the admission checks and returns the validated working
// hour plus the derived reservation timestamp. excludeID removes one
// reservation from the waterfall conflict scan (uuid.Nil for none).
func (s *Service) admit(ctx context.Context, doctorID, workingHourID uuid.UUID, date string, excludeID uuid.UUID) (*model.DoctorWorkingHour, time.Time, error) {
	hour, err := s.doctorHours.Get(ctx, workingHourID)
	if err != nil {
		return nil, time.Time{}, err
	}
	if !hour.IsActive || hour.DoctorID != doctorID {
		return nil, time.Time{}, apperrors.NotFound("working hour", nil)
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date), err)
	}

	reservedAt, err := combine(day, hour.StartTime)
	if err != nil {
		return nil, time.Time{}, err
	}

	// Date-only comparison: booking for today is allowed.
	now := time.Now()
	if day.Before(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, day.Location())) {
		return nil, time.Time{}, apperrors.InvalidInput("reservation date is in the past", nil)
	}

	if model.WeekdayOf(day) != hour.Day {
		return nil, time.Time{}, apperrors.InvalidInput(
			fmt.Sprintf("date %s falls on %s, working hour is on %s", date, model.WeekdayOf(day), hour.Day), nil)
	}

	if hour.Waterfall {
		live, err := s.reservations.CountLive(ctx, hour.ID, excludeID)
		if err != nil {
			return nil, time.Time{}, err
		}
		if live > 0 {
			if s.metrics != nil {
				s.metrics.ReservationConflicts.Inc()
			}
			return nil, time.Time{}, apperrors.Conflict("slot already has a live reservation", nil)
		}
	}

	return hour, reservedAt, nil
}

// combine builds the reservation timestamp from the requested date
// and the working hour's HH:MM:SS start time.
func combine(day time.Time, startTime string) (time.Time, error) {
	t, err := time.Parse("15:04:05", startTime)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid start time %q", startTime), err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), t.Second(), 0, day.Location()), nil
}
