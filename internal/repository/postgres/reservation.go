package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/repository"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
)

type reservationRepository struct {
	BaseRepository
}

func NewReservationRepository(base BaseRepository) repository.ReservationRepository {
	return &reservationRepository{base}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *model.Reservation) (err error) {
	defer r.observe("reservation_create", time.Now(), &err)

	db, err := r.db(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO reservations (
			id, doctor_id, doctor_working_hour_id, patient_name, patient_phone,
			date, reserved_at, status, fees, paid, medical_status, exclusive,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	reservation.ID = uuid.New()
	reservation.CreatedAt = time.Now()
	reservation.UpdatedAt = time.Now()

	_, err = db.ExecContext(ctx, query,
		reservation.ID,
		reservation.DoctorID,
		reservation.DoctorWorkingHourID,
		reservation.PatientName,
		reservation.PatientPhone,
		reservation.Date,
		reservation.ReservedAt,
		reservation.Status,
		reservation.Fees,
		reservation.Paid,
		reservation.MedicalStatus,
		reservation.Exclusive,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)
	if err != nil {
		return mapUniqueViolation(err, "failed to create reservation")
	}
	return nil
}

func (r *reservationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, doctor_id, doctor_working_hour_id, patient_name, patient_phone,
			to_char(date, 'YYYY-MM-DD') AS date, reserved_at, status, fees, paid,
			medical_status, exclusive, created_at, updated_at, deleted_at
		FROM reservations
		WHERE id = $1 AND deleted_at IS NULL
	`
	var reservation model.Reservation
	if err := db.GetContext(ctx, &reservation, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("reservation", err)
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &reservation, nil
}

func (r *reservationRepository) Update(ctx context.Context, reservation *model.Reservation) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE reservations
		SET doctor_working_hour_id = $1, date = $2, reserved_at = $3, status = $4,
			fees = $5, paid = $6, medical_status = $7, exclusive = $8, updated_at = $9
		WHERE id = $10 AND deleted_at IS NULL
	`
	reservation.UpdatedAt = time.Now()

	result, err := db.ExecContext(ctx, query,
		reservation.DoctorWorkingHourID,
		reservation.Date,
		reservation.ReservedAt,
		reservation.Status,
		reservation.Fees,
		reservation.Paid,
		reservation.MedicalStatus,
		reservation.Exclusive,
		reservation.UpdatedAt,
		reservation.ID,
	)
	if err != nil {
		return mapUniqueViolation(err, "failed to update reservation")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("reservation", nil)
	}
	return nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReservationStatus) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE reservations
		SET status = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return mapUniqueViolation(err, "failed to update reservation status")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("reservation", nil)
	}
	return nil
}

func (r *reservationRepository) List(ctx context.Context, filters *model.ReservationFilters) ([]*model.Reservation, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, doctor_id, doctor_working_hour_id, patient_name, patient_phone,
			to_char(date, 'YYYY-MM-DD') AS date, reserved_at, status, fees, paid,
			medical_status, exclusive, created_at, updated_at, deleted_at
		FROM reservations
		WHERE deleted_at IS NULL
			AND ($1 = '00000000-0000-0000-0000-000000000000'::uuid OR doctor_id = $1)
			AND ($2 = '00000000-0000-0000-0000-000000000000'::uuid OR doctor_working_hour_id = $2)
			AND ($3 = '' OR status = $3)
			AND ($4 = '' OR date = $4::date)
		ORDER BY reserved_at
	`
	var reservations []*model.Reservation
	if err := db.SelectContext(ctx, &reservations, query,
		filters.DoctorID, filters.DoctorWorkingHourID,
		string(filters.Status), filters.Date,
	); err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

func (r *reservationRepository) CountLive(ctx context.Context, workingHourID, excludeID uuid.UUID) (count int, err error) {
	defer r.observe("reservation_count_live", time.Now(), &err)

	db, err := r.db(ctx)
	if err != nil {
		return 0, err
	}

	query := `
		SELECT COUNT(*)
		FROM reservations
		WHERE doctor_working_hour_id = $1
			AND status IN ('scheduled', 'taken')
			AND id <> $2
			AND deleted_at IS NULL
	`
	if err := db.GetContext(ctx, &count, query, workingHourID, excludeID); err != nil {
		return 0, fmt.Errorf("failed to count live reservations: %w", err)
	}
	return count, nil
}

// mapUniqueViolation turns the partial unique index violation into a
// Conflict so the race-loser gets the same answer the fast-path check
// would have given.
func mapUniqueViolation(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return apperrors.Conflict("slot already has a live reservation", err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
