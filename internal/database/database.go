package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string, maxConns int32, minConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connected", "max_conns", maxConns, "min_conns", minConns)
	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Health pings the pool with a short deadline for the readiness probe.
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// RegisterMetrics exposes pool occupancy as gauges on reg.
func (db *DB) RegisterMetrics(reg prometheus.Registerer) error {
	gauges := []struct {
		name string
		help string
		read func(*pgxpool.Stat) float64
	}{
		{"db_pool_acquired_conns", "Connections currently checked out of the pool.", func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }},
		{"db_pool_idle_conns", "Idle connections held by the pool.", func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }},
		{"db_pool_total_conns", "All connections currently open.", func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }},
	}

	for _, g := range gauges {
		read := g.read
		collector := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: g.name, Help: g.help}, func() float64 {
			return read(db.Pool.Stat())
		})
		if err := reg.Register(collector); err != nil {
			return fmt.Errorf("register %s: %w", g.name, err)
		}
	}
	return nil
}
