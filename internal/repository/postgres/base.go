package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ahmedaminrashad/horizon-sub000/internal/tenant"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/metrics"
)

// BaseRepository provides common functionality for all repositories.
// Queries run against the tenant connection when the request context
// carries a tenant database name, and against the central directory
// connection otherwise.
type BaseRepository struct {
	central  *sqlx.DB
	registry *tenant.Registry
	metrics  *metrics.Metrics
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(central *sqlx.DB, registry *tenant.Registry, m *metrics.Metrics) BaseRepository {
	return BaseRepository{central: central, registry: registry, metrics: m}
}

// db resolves the connection for the active tenant, falling back to
// the central database when no tenant is set.
func (r *BaseRepository) db(ctx context.Context) (*sqlx.DB, error) {
	name := tenant.DatabaseFromContext(ctx)
	if name == "" || r.registry == nil {
		return r.central, nil
	}
	db, err := r.registry.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return r.central, nil
	}
	return db, nil
}

// Central returns the directory database connection regardless of
// the active tenant.
func (r *BaseRepository) Central() *sqlx.DB {
	return r.central
}

// observe records one database operation. Call it in a defer with a
// pointer to the named error return so the final status is seen.
func (r *BaseRepository) observe(operation string, start time.Time, err *error) {
	if r.metrics == nil {
		return
	}
	status := "ok"
	if err != nil && *err != nil {
		status = "error"
	}
	r.metrics.DatabaseOperations.WithLabelValues(operation, status).Inc()
	r.metrics.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// WithTx executes a function within a transaction on the resolved
// connection.
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	db, err := r.db(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
