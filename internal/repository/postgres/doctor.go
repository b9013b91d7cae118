package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/repository"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
)

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO doctors (
			id, name, specialty, phone, fees, patients_count, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`
	doctor.ID = uuid.New()
	doctor.CreatedAt = time.Now()
	doctor.UpdatedAt = time.Now()

	_, err = db.ExecContext(ctx, query,
		doctor.ID,
		doctor.Name,
		doctor.Specialty,
		doctor.Phone,
		doctor.Fees,
		doctor.PatientsCount,
		doctor.IsActive,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, specialty, phone, fees, patients_count, is_active,
			created_at, updated_at, deleted_at
		FROM doctors
		WHERE id = $1 AND deleted_at IS NULL
	`
	var doctor model.Doctor
	if err := db.GetContext(ctx, &doctor, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE doctors
		SET name = $1, specialty = $2, phone = $3, fees = $4, is_active = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`
	doctor.UpdatedAt = time.Now()

	result, err := db.ExecContext(ctx, query,
		doctor.Name,
		doctor.Specialty,
		doctor.Phone,
		doctor.Fees,
		doctor.IsActive,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor", nil)
	}
	return nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, specialty, phone, fees, patients_count, is_active,
			created_at, updated_at, deleted_at
		FROM doctors
		WHERE deleted_at IS NULL
		ORDER BY name
	`
	var doctors []*model.Doctor
	if err := db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) IncrementPatients(ctx context.Context, id uuid.UUID, delta int) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}

	query := `
		UPDATE doctors
		SET patients_count = patients_count + $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := db.ExecContext(ctx, query, delta, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to increment patients count: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("doctor", nil)
	}
	return nil
}
