package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/repository"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
)

type doctorWorkingHourRepository struct {
	BaseRepository
}

func NewDoctorWorkingHourRepository(base BaseRepository) repository.DoctorWorkingHourRepository {
	return &doctorWorkingHourRepository{base}
}

func (r *doctorWorkingHourRepository) Get(ctx context.Context, id uuid.UUID) (*model.DoctorWorkingHour, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, doctor_id, day, start_time, end_time, branch_id, waterfall,
			session_duration, patients_limit, is_busy, fees, is_active,
			created_at, updated_at, deleted_at
		FROM doctor_working_hours
		WHERE id = $1 AND deleted_at IS NULL
	`
	var hour model.DoctorWorkingHour
	if err := db.GetContext(ctx, &hour, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("working hour", err)
		}
		return nil, fmt.Errorf("failed to get doctor working hour: %w", err)
	}

	if err := r.loadServiceIDs(ctx, db, &hour); err != nil {
		return nil, err
	}
	return &hour, nil
}

// Update rewrites times and flags in place. The row's day and doctor
// never change here; the service layer rejects day reassignment.
func (r *doctorWorkingHourRepository) Update(ctx context.Context, hour *model.DoctorWorkingHour) (err error) {
	defer r.observe("doctor_working_hour_update", time.Now(), &err)
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE doctor_working_hours
			SET start_time = $1, end_time = $2, waterfall = $3, session_duration = $4,
				patients_limit = $5, is_busy = $6, fees = $7, is_active = $8, updated_at = $9
			WHERE id = $10 AND deleted_at IS NULL
		`
		hour.UpdatedAt = time.Now()

		result, err := tx.ExecContext(ctx, query,
			hour.StartTime,
			hour.EndTime,
			hour.Waterfall,
			hour.SessionDuration,
			hour.PatientsLimit,
			hour.IsBusy,
			hour.Fees,
			hour.IsActive,
			hour.UpdatedAt,
			hour.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update doctor working hour: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("working hour", nil)
		}

		return replaceServiceLinks(ctx, tx, hour)
	})
}

func (r *doctorWorkingHourRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID, day model.Weekday) ([]*model.DoctorWorkingHour, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, doctor_id, day, start_time, end_time, branch_id, waterfall,
			session_duration, patients_limit, is_busy, fees, is_active,
			created_at, updated_at, deleted_at
		FROM doctor_working_hours
		WHERE doctor_id = $1 AND ($2 = '' OR day = $2) AND deleted_at IS NULL
		ORDER BY day, start_time
	`
	var hours []*model.DoctorWorkingHour
	if err := db.SelectContext(ctx, &hours, query, doctorID, string(day)); err != nil {
		return nil, fmt.Errorf("failed to list doctor working hours: %w", err)
	}
	return hours, nil
}

func (r *doctorWorkingHourRepository) ReplaceForScope(ctx context.Context, doctorID uuid.UUID, day model.Weekday, branchID *uuid.UUID, hours []*model.DoctorWorkingHour) (err error) {
	defer r.observe("doctor_working_hour_replace", time.Now(), &err)
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		deleteQuery := `
			DELETE FROM doctor_working_hours
			WHERE doctor_id = $1 AND day = $2 AND branch_id IS NOT DISTINCT FROM $3
		`
		if _, err := tx.ExecContext(ctx, deleteQuery, doctorID, day, branchID); err != nil {
			return mapReservedViolation(err, "failed to delete doctor working hours")
		}

		insertQuery := `
			INSERT INTO doctor_working_hours (
				id, doctor_id, day, start_time, end_time, branch_id, waterfall,
				session_duration, patients_limit, is_busy, fees, is_active,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`
		for _, h := range hours {
			h.ID = uuid.New()
			h.CreatedAt = time.Now()
			h.UpdatedAt = time.Now()
			if _, err := tx.ExecContext(ctx, insertQuery,
				h.ID, h.DoctorID, h.Day, h.StartTime, h.EndTime, h.BranchID,
				h.Waterfall, h.SessionDuration, h.PatientsLimit, h.IsBusy,
				h.Fees, h.IsActive, h.CreatedAt, h.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert doctor working hour: %w", err)
			}
			if err := replaceServiceLinks(ctx, tx, h); err != nil {
				return err
			}
		}
		return nil
	})
}

// mapReservedViolation turns the foreign key violation from
// reservations rows into a Conflict: a batch that still has bookings
// cannot be dropped and rebuilt.
func mapReservedViolation(err error, msg string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return apperrors.Conflict("working hour has reservations", err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (r *doctorWorkingHourRepository) SetBusy(ctx context.Context, id uuid.UUID, busy bool) (err error) {
	defer r.observe("doctor_working_hour_set_busy", time.Now(), &err)

	db, err := r.db(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE doctor_working_hours
		SET is_busy = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := db.ExecContext(ctx, query, busy, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set busy flag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("working hour", nil)
	}
	return nil
}

func (r *doctorWorkingHourRepository) loadServiceIDs(ctx context.Context, db *sqlx.DB, hour *model.DoctorWorkingHour) error {
	query := `
		SELECT service_id FROM doctor_working_hour_services
		WHERE doctor_working_hour_id = $1
	`
	if err := db.SelectContext(ctx, &hour.ServiceIDs, query, hour.ID); err != nil {
		return fmt.Errorf("failed to load service links: %w", err)
	}
	return nil
}

func replaceServiceLinks(ctx context.Context, tx *sqlx.Tx, hour *model.DoctorWorkingHour) error {
	deleteQuery := `DELETE FROM doctor_working_hour_services WHERE doctor_working_hour_id = $1`
	if _, err := tx.ExecContext(ctx, deleteQuery, hour.ID); err != nil {
		return fmt.Errorf("failed to clear service links: %w", err)
	}

	insertQuery := `
		INSERT INTO doctor_working_hour_services (doctor_working_hour_id, service_id)
		VALUES ($1, $2)
	`
	for _, serviceID := range hour.ServiceIDs {
		if _, err := tx.ExecContext(ctx, insertQuery, hour.ID, serviceID); err != nil {
			return fmt.Errorf("failed to link service: %w", err)
		}
	}
	return nil
}
