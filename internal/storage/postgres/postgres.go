// Package postgres provides PostgreSQL persistence using pgx v5 for the
// villager presence registry and pet ownership records.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/petcare/internal/config"
)

// Pool wraps a pgx connection pool with health-check and lifecycle methods.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool creates a new PostgreSQL connection pool from the given configuration.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error. The pool is ready
// for queries upon successful return.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}

	return &Pool{pool: pool}, nil
}

// ErrSchemaMissing is returned by Health when a table the repositories use
// does not exist.
var ErrSchemaMissing = errors.New("schema missing")

// schemaTables are the tables read and written by the repositories in this
// package.
var schemaTables = []string{"villagers", "pet_ownerships"}

// Health checks that the database is reachable and migrated within the given
// timeout.
//
// Precondition: The pool must not be closed.
// Postcondition: Returns nil if the database responds within the timeout and
// every repository table exists; wraps ErrSchemaMissing naming the absent
// tables otherwise.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	var missing []string
	for _, table := range schemaTables {
		var exists bool
		if err := p.pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists); err != nil {
			return fmt.Errorf("checking table %s: %w", table, err)
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrSchemaMissing, strings.Join(missing, ", "))
	}
	return nil
}

// Census is a snapshot of the persisted village population.
type Census struct {
	LivingVillagers int
	DeadVillagers   int
	Pets            int
	AdoptedPets     int
}

// TakeCensus counts villagers by liveness and pets by how they were acquired.
func TakeCensus(ctx context.Context, db *pgxpool.Pool) (Census, error) {
	var c Census
	err := db.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM villagers WHERE alive),
			(SELECT count(*) FROM villagers WHERE NOT alive),
			(SELECT count(*) FROM pet_ownerships),
			(SELECT count(*) FROM pet_ownerships WHERE adopted)`,
	).Scan(&c.LivingVillagers, &c.DeadVillagers, &c.Pets, &c.AdoptedPets)
	if err != nil {
		return Census{}, fmt.Errorf("taking census: %w", err)
	}
	return c, nil
}

// LogStats writes the pool's connection counters and the population census
// at Info. A failed census is logged at Warn.
func (p *Pool) LogStats(ctx context.Context, logger *zap.Logger) {
	s := p.pool.Stat()
	fields := []zap.Field{
		zap.Int32("total_conns", s.TotalConns()),
		zap.Int32("idle_conns", s.IdleConns()),
		zap.Int32("acquired_conns", s.AcquiredConns()),
	}
	c, err := TakeCensus(ctx, p.pool)
	if err != nil {
		logger.Warn("database census failed", zap.Error(err))
	} else {
		fields = append(fields,
			zap.Int("living_villagers", c.LivingVillagers),
			zap.Int("dead_villagers", c.DeadVillagers),
			zap.Int("pets", c.Pets),
			zap.Int("adopted_pets", c.AdoptedPets),
		)
	}
	logger.Info("database stats", fields...)
}

// Close releases all pool resources.
//
// Postcondition: The pool is no longer usable after calling Close.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool for use by repositories.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
