package db

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"factorypulse/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const pingInterval = 30 * time.Second

// DBManager owns the equipment database pool and watches its health so
// the readiness probe and the logs agree on when the database went away.
type DBManager struct {
	pool    *pgxpool.Pool
	schema  string
	logger  *zap.SugaredLogger
	healthy atomic.Bool

	stop     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewDBManager(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*DBManager, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	// Simple protocol avoids "prepared statement already exists" behind poolers
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	tlsCfg, err := cfg.PostgresTLSConfig()
	if err != nil {
		return nil, fmt.Errorf("postgres tls: %w", err)
	}
	if tlsCfg != nil {
		poolConfig.ConnConfig.TLSConfig = tlsCfg
	}
	if cfg.DBMaxConns > 0 {
		poolConfig.MaxConns = cfg.DBMaxConns
	}
	poolConfig.MinConns = min(2, poolConfig.MaxConns)
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	m := &DBManager{
		pool:   pool,
		schema: cfg.DBSchema,
		logger: logger,
		stop:   make(chan struct{}),
	}
	m.healthy.Store(true)
	m.wg.Add(1)
	go m.watch(ctx)
	return m, nil
}

func (d *DBManager) Pool() *pgxpool.Pool { return d.pool }

// watch pings on an interval and logs only when health flips; the pool
// redials on its own.
func (d *DBManager) watch(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := d.pool.Ping(pingCtx)
			cancel()
			d.record(err)
		}
	}
}

func (d *DBManager) record(err error) {
	was := d.healthy.Swap(err == nil)
	switch {
	case err != nil && was:
		d.logger.Errorw("database unreachable", "error", err)
	case err == nil && !was:
		d.logger.Info("database reachable again")
	}
}

// Healthy reports the result of the last background ping.
func (d *DBManager) Healthy() bool { return d.healthy.Load() }

// Shutdown stops the watcher and closes the pool. Safe to call twice.
func (d *DBManager) Shutdown() {
	d.stopOnce.Do(func() {
		close(d.stop)
		d.wg.Wait()
		d.pool.Close()
		d.logger.Info("database pool closed")
	})
}

func (d *DBManager) Ping(ctx context.Context) error {
	err := d.pool.Ping(ctx)
	d.record(err)
	return err
}
