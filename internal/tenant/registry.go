package tenant

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ahmedaminrashad/horizon-sub000/internal/config"
	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/logger"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/metrics"
)

// Connector opens a connection to one tenant database.
type Connector func(ctx context.Context, dbname string) (*sqlx.DB, error)

// Migrator applies the tenant schema to a freshly created database.
type Migrator func(ctx context.Context, db *sqlx.DB) error

// Registry caches one live connection per tenant database. First
// resolution of a name converges on a single connection even under
// concurrent callers; later resolutions return the cached instance.
// The cache carries no TTL or capacity bound: it grows with the
// number of distinct tenants ever touched.
type Registry struct {
	cfg     config.DatabaseConfig
	logger  *logger.Logger
	metrics *metrics.Metrics

	connect Connector
	migrate Migrator

	mu    sync.Mutex
	conns map[string]*conn
}

// conn is one cache entry. ready is closed once the dial attempt
// finished; callers that lost the single-flight race wait on it.
type conn struct {
	ready chan struct{}
	db    *sqlx.DB
	err   error
}

type Option func(*Registry)

// WithConnector overrides how tenant databases are dialed.
func WithConnector(c Connector) Option {
	return func(r *Registry) { r.connect = c }
}

// WithMigrator sets the schema migration run during Provision.
func WithMigrator(m Migrator) Option {
	return func(r *Registry) { r.migrate = m }
}

func NewRegistry(cfg config.DatabaseConfig, log *logger.Logger, m *metrics.Metrics, opts ...Option) *Registry {
	r := &Registry{
		cfg:     cfg,
		logger:  log,
		metrics: m,
		conns:   make(map[string]*conn),
	}
	r.connect = r.dial
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the live connection for a tenant database name.
// An empty name resolves to nil: the caller falls back to the
// central database. A dead cached connection is closed, evicted and
// recreated before returning. An unreachable tenant database yields
// a TenantUnavailable error without retrying.
func (r *Registry) Resolve(ctx context.Context, name string) (*sqlx.DB, error) {
	if name == "" {
		return nil, nil
	}

	for {
		r.mu.Lock()
		c, ok := r.conns[name]
		if !ok {
			c = &conn{ready: make(chan struct{})}
			r.conns[name] = c
			r.mu.Unlock()

			c.db, c.err = r.connect(ctx, name)
			if c.err != nil {
				// Failed entries are evicted so the next resolve
				// dials again instead of caching the failure.
				r.mu.Lock()
				delete(r.conns, name)
				r.mu.Unlock()
			}
			close(c.ready)
			r.observeResolution(c.err == nil, false)
		} else {
			r.mu.Unlock()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.ready:
		}

		if c.err != nil {
			return nil, apperrors.TenantUnavailable(
				fmt.Sprintf("tenant database %q unreachable", name), c.err)
		}

		if pingErr := c.db.PingContext(ctx); pingErr != nil {
			r.evict(name, c)
			if r.logger != nil {
				r.logger.Warn("evicted dead tenant connection",
					"database", name, "error", pingErr.Error())
			}
			continue
		}

		// The creation path already observed a miss after the dial;
		// only waiters and cache hits are counted here.
		if ok {
			r.observeResolution(true, true)
		}
		return c.db, nil
	}
}

// Provision creates the tenant database and applies its schema. It
// is called exactly once, at clinic registration; Resolve never
// provisions implicitly.
func (r *Registry) Provision(ctx context.Context, name string) error {
	if name == "" {
		return apperrors.InvalidInput("tenant database name is required", nil)
	}

	start := time.Now()

	admin, err := r.connect(ctx, r.cfg.Name)
	if err != nil {
		return apperrors.TenantUnavailable("database server unreachable", err)
	}
	defer admin.Close()

	if _, err := admin.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(name))); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "42P04" {
			return apperrors.Conflict(fmt.Sprintf("tenant database %q already exists", name), err)
		}
		return fmt.Errorf("failed to create tenant database: %w", err)
	}

	db, err := r.Resolve(ctx, name)
	if err != nil {
		return err
	}

	if r.migrate != nil {
		if err := r.migrate(ctx, db); err != nil {
			return fmt.Errorf("failed to migrate tenant database %q: %w", name, err)
		}
	}

	if r.metrics != nil {
		r.metrics.TenantProvisionLatency.Observe(time.Since(start).Seconds())
	}
	if r.logger != nil {
		r.logger.Info("provisioned tenant database", "database", name)
	}
	return nil
}

// Close shuts down every cached connection.
func (r *Registry) Close() {
	r.mu.Lock()
	for name, c := range r.conns {
		select {
		case <-c.ready:
			if c.db != nil {
				c.db.Close()
			}
		default:
		}
		delete(r.conns, name)
	}
	r.mu.Unlock()
	if r.metrics != nil {
		r.metrics.TenantConnectionsOpen.Set(0)
	}
}

// Size returns the number of cached entries.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

func (r *Registry) evict(name string, c *conn) {
	r.mu.Lock()
	if cur, ok := r.conns[name]; ok && cur == c {
		delete(r.conns, name)
	}
	r.mu.Unlock()
	c.db.Close()
	r.updateGauge()
}

func (r *Registry) dial(ctx context.Context, dbname string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		r.cfg.Host,
		r.cfg.Port,
		r.cfg.User,
		r.cfg.Password,
		dbname,
		r.cfg.SSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %q: %w", dbname, err)
	}
	return db, nil
}

func (r *Registry) observeResolution(ok, hit bool) {
	if r.metrics == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	if !ok {
		outcome = "error"
	}
	r.metrics.TenantResolutions.WithLabelValues(outcome).Inc()
	r.updateGauge()
}

func (r *Registry) updateGauge() {
	if r.metrics == nil {
		return
	}
	r.mu.Lock()
	n := len(r.conns)
	r.mu.Unlock()
	r.metrics.TenantConnectionsOpen.Set(float64(n))
}
