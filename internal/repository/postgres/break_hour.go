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

type breakHourRepository struct {
	BaseRepository
}

func NewBreakHourRepository(base BaseRepository) repository.BreakHourRepository {
	return &breakHourRepository{base}
}

func (r *breakHourRepository) ListForScope(ctx context.Context, day model.Weekday, branchID *uuid.UUID) ([]*model.BreakHour, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, day, start_time, end_time, range_order, branch_id, is_active,
			created_at, updated_at, deleted_at
		FROM break_hours
		WHERE day = $1 AND branch_id IS NOT DISTINCT FROM $2 AND deleted_at IS NULL
		ORDER BY range_order, start_time
	`
	var breaks []*model.BreakHour
	if err := db.SelectContext(ctx, &breaks, query, day, branchID); err != nil {
		return nil, fmt.Errorf("failed to list break hours: %w", err)
	}
	return breaks, nil
}

func (r *breakHourRepository) InsertBatch(ctx context.Context, breaks []*model.BreakHour) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return insertBreakHours(ctx, tx, breaks)
	})
}

func (r *breakHourRepository) ReplaceForScope(ctx context.Context, day model.Weekday, branchID *uuid.UUID, breaks []*model.BreakHour) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		deleteQuery := `
			DELETE FROM break_hours
			WHERE day = $1 AND branch_id IS NOT DISTINCT FROM $2
		`
		if _, err := tx.ExecContext(ctx, deleteQuery, day, branchID); err != nil {
			return fmt.Errorf("failed to delete break hours: %w", err)
		}
		return insertBreakHours(ctx, tx, breaks)
	})
}

func insertBreakHours(ctx context.Context, tx *sqlx.Tx, breaks []*model.BreakHour) error {
	query := `
		INSERT INTO break_hours (
			id, day, start_time, end_time, range_order, branch_id, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, b := range breaks {
		b.ID = uuid.New()
		b.CreatedAt = time.Now()
		b.UpdatedAt = time.Now()
		if _, err := tx.ExecContext(ctx, query,
			b.ID, b.Day, b.StartTime, b.EndTime, b.RangeOrder, b.BranchID,
			b.IsActive, b.CreatedAt, b.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert break hour: %w", err)
		}
	}
	return nil
}
