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

type branchRepository struct {
	BaseRepository
}

func NewBranchRepository(base BaseRepository) repository.BranchRepository {
	return &branchRepository{base}
}

func (r *branchRepository) Create(ctx context.Context, branch *model.Branch) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO branches (id, name, address, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	branch.ID = uuid.New()
	branch.CreatedAt = time.Now()
	branch.UpdatedAt = time.Now()

	_, err = db.ExecContext(ctx, query,
		branch.ID,
		branch.Name,
		branch.Address,
		branch.IsActive,
		branch.CreatedAt,
		branch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create branch: %w", err)
	}
	return nil
}

func (r *branchRepository) Get(ctx context.Context, id uuid.UUID) (*model.Branch, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, address, is_active, created_at, updated_at, deleted_at
		FROM branches
		WHERE id = $1 AND deleted_at IS NULL
	`
	var branch model.Branch
	if err := db.GetContext(ctx, &branch, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("branch", err)
		}
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return &branch, nil
}

func (r *branchRepository) List(ctx context.Context) ([]*model.Branch, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, address, is_active, created_at, updated_at, deleted_at
		FROM branches
		WHERE deleted_at IS NULL
		ORDER BY name
	`
	var branches []*model.Branch
	if err := db.SelectContext(ctx, &branches, query); err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return branches, nil
}
