package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/bizops-backend/internal/config"
	"github.com/joao-fontenele/bizops-backend/internal/telemetry"
)

var ErrUnavailable = errors.New("database unavailable")

type pinger interface {
	PingContext(ctx context.Context) error
}

// Manager owns the connection pool. It verifies connectivity at startup and
// supervises it afterwards, re-establishing the pool's connections with
// backoff when the transport drops.
type Manager struct {
	db     *sql.DB
	stats  metric.Registration
	pinger pinger
	cfg    config.DBConfig
	logger zerolog.Logger

	healthy atomic.Bool

	mu      sync.Mutex
	lastErr error

	pingTimeout time.Duration
}

// Open creates the pool described by cfg. No network I/O happens here.
func Open(cfg config.DBConfig, logger zerolog.Logger) (*Manager, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	db, stats, err := telemetry.OpenDB("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	m := newManager(db, db, cfg, logger)
	m.stats = stats
	return m, nil
}

func newManager(db *sql.DB, p pinger, cfg config.DBConfig, logger zerolog.Logger) *Manager {
	pingTimeout := cfg.ConnectTimeout
	if pingTimeout <= 0 {
		pingTimeout = 30 * time.Second
	}
	m := &Manager{
		db:          db,
		pinger:      p,
		cfg:         cfg,
		logger:      logger.With().Str("component", "database").Logger(),
		pingTimeout: pingTimeout,
	}
	m.lastErr = ErrUnavailable
	return m
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

func (m *Manager) Healthy() bool {
	return m.healthy.Load()
}

// Check returns nil when the last probe succeeded, else the last error.
func (m *Manager) Check(context.Context) error {
	if m.Healthy() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastErr == nil {
		return ErrUnavailable
	}
	return m.lastErr
}

// Connect pings the database with exponential backoff until it answers, the
// attempts are exhausted or ctx is done. It never panics on failure.
func (m *Manager) Connect(ctx context.Context) error {
	attempt := 0
	op := func() error {
		attempt++
		return m.ping(ctx)
	}
	notify := func(err error, next time.Duration) {
		m.logger.Warn().Err(err).
			Int("attempt", attempt).
			Dur("retry_in", next).
			Msg("database connection failed")
	}

	if err := backoff.RetryNotify(op, m.newBackOff(ctx), notify); err != nil {
		m.markDown(err)
		m.logger.Error().Err(err).Int("attempts", attempt).Msg("database unreachable, giving up for now")
		return fmt.Errorf("connect database: %w", err)
	}

	if !m.healthy.Swap(true) {
		m.logger.Info().Int("attempts", attempt).Msg("connected to database")
	}
	m.setErr(nil)
	return nil
}

// Run supervises the connection until ctx is done. Each health interval it
// probes the database; a lost connection triggers Connect, any other failure
// only flips the health signal.
func (m *Manager) Run(ctx context.Context) {
	interval := m.cfg.HealthInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	if !m.Healthy() {
		_ = m.Connect(ctx)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Manager) probe(ctx context.Context) {
	err := m.ping(ctx)
	if err == nil {
		if !m.healthy.Swap(true) {
			m.logger.Info().Msg("database connection recovered")
		}
		m.setErr(nil)
		return
	}
	if ctx.Err() != nil {
		return
	}

	m.markDown(err)
	if IsConnectionLost(err) {
		m.logger.Warn().Err(err).Msg("database connection lost, reconnecting")
		_ = m.Connect(ctx)
		return
	}
	m.logger.Error().Err(err).Msg("database health check failed")
}

func (m *Manager) Close() error {
	m.healthy.Store(false)
	if m.stats != nil {
		if err := m.stats.Unregister(); err != nil {
			m.logger.Warn().Err(err).Msg("unregistering db stats metrics")
		}
	}
	return m.db.Close()
}

func (m *Manager) ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, m.pingTimeout)
	defer cancel()
	return m.pinger.PingContext(pingCtx)
}

func (m *Manager) newBackOff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if m.cfg.RetryInitialInterval > 0 {
		eb.InitialInterval = m.cfg.RetryInitialInterval
	}
	if m.cfg.RetryMaxInterval > 0 {
		eb.MaxInterval = m.cfg.RetryMaxInterval
	}
	eb.MaxElapsedTime = 0

	var b backoff.BackOff = eb
	if m.cfg.RetryMaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(m.cfg.RetryMaxAttempts-1))
	}
	return backoff.WithContext(b, ctx)
}

func (m *Manager) markDown(err error) {
	m.healthy.Store(false)
	m.setErr(err)
}

func (m *Manager) setErr(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}
