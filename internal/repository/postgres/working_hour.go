package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ahmedaminrashad/horizon-sub000/internal/model"
	"github.com/ahmedaminrashad/horizon-sub000/internal/repository"
)

type workingHourRepository struct {
	BaseRepository
}

func NewWorkingHourRepository(base BaseRepository) repository.WorkingHourRepository {
	return &workingHourRepository{base}
}

func (r *workingHourRepository) ListForScope(ctx context.Context, day model.Weekday, branchID *uuid.UUID) ([]*model.WorkingHour, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, day, start_time, end_time, range_order, branch_id, is_active,
			created_at, updated_at, deleted_at
		FROM working_hours
		WHERE day = $1 AND branch_id IS NOT DISTINCT FROM $2 AND deleted_at IS NULL
		ORDER BY range_order, start_time
	`
	var hours []*model.WorkingHour
	if err := db.SelectContext(ctx, &hours, query, day, branchID); err != nil {
		return nil, fmt.Errorf("failed to list working hours: %w", err)
	}
	return hours, nil
}

func (r *workingHourRepository) InsertBatch(ctx context.Context, hours []*model.WorkingHour) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return insertWorkingHours(ctx, tx, hours)
	})
}

// ReplaceForScope wholesale-replaces the (day, branch) batch:
// existing rows are deleted and the new set inserted in one
// transaction.
func (r *workingHourRepository) ReplaceForScope(ctx context.Context, day model.Weekday, branchID *uuid.UUID, hours []*model.WorkingHour) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		deleteQuery := `
			DELETE FROM working_hours
			WHERE day = $1 AND branch_id IS NOT DISTINCT FROM $2
		`
		if _, err := tx.ExecContext(ctx, deleteQuery, day, branchID); err != nil {
			return fmt.Errorf("failed to delete working hours: %w", err)
		}
		return insertWorkingHours(ctx, tx, hours)
	})
}

func insertWorkingHours(ctx context.Context, tx *sqlx.Tx, hours []*model.WorkingHour) error {
	query := `
		INSERT INTO working_hours (
			id, day, start_time, end_time, range_order, branch_id, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, h := range hours {
		h.ID = uuid.New()
		h.CreatedAt = time.Now()
		h.UpdatedAt = time.Now()
		if _, err := tx.ExecContext(ctx, query,
			h.ID, h.Day, h.StartTime, h.EndTime, h.RangeOrder, h.BranchID,
			h.IsActive, h.CreatedAt, h.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert working hour: %w", err)
		}
	}
	return nil
}
