package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/repository"
)

type doctorMirrorRepository struct {
	BaseRepository
}

func NewDoctorMirrorRepository(base BaseRepository) repository.DoctorMirrorRepository {
	return &doctorMirrorRepository{base}
}

func (r *doctorMirrorRepository) Upsert(ctx context.Context, mirror *model.DoctorMirror) error {
	query := `
		INSERT INTO doctor_mirrors (
			doctor_id, clinic_id, name, specialty, patients_count, synced_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		ON CONFLICT (doctor_id) DO UPDATE SET
			name = EXCLUDED.name,
			specialty = EXCLUDED.specialty,
			patients_count = EXCLUDED.patients_count,
			synced_at = EXCLUDED.synced_at
	`
	mirror.SyncedAt = time.Now()
	_, err := r.central.ExecContext(ctx, query,
		mirror.DoctorID,
		mirror.ClinicID,
		mirror.Name,
		mirror.Specialty,
		mirror.PatientsCount,
		mirror.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert doctor mirror: %w", err)
	}
	return nil
}

func (r *doctorMirrorRepository) IncrementPatients(ctx context.Context, doctorID uuid.UUID, delta int) error {
	query := `
		UPDATE doctor_mirrors
		SET patients_count = patients_count + $1, synced_at = $2
		WHERE doctor_id = $3
	`
	_, err := r.central.ExecContext(ctx, query, delta, time.Now(), doctorID)
	if err != nil {
		return fmt.Errorf("failed to increment mirror patients count: %w", err)
	}
	return nil
}

func (r *doctorMirrorRepository) Search(ctx context.Context, search string) ([]*model.DoctorMirror, error) {
	query := `
		SELECT doctor_id, clinic_id, name, specialty, patients_count, synced_at
		FROM doctor_mirrors
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR specialty ILIKE '%' || $1 || '%'
		ORDER BY name
	`
	var mirrors []*model.DoctorMirror
	if err := r.central.SelectContext(ctx, &mirrors, query, search); err != nil {
		return nil, fmt.Errorf("failed to search doctor mirrors: %w", err)
	}
	return mirrors, nil
}
