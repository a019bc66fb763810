package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DefaultMaxConns is the per-backend connection ceiling when none is configured.
const DefaultMaxConns = 10

// Querier is the read surface of *pgxpool.Pool used by query code.
// Tests substitute it to run queries without a live backend.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Client wraps a PostgreSQL connection pool and provides helper methods
type Client struct {
	Logger *zap.Logger
	Pool   *pgxpool.Pool
	Name   string // Logical backend name, used in logs
}

// PoolConfig defines connection pool settings for one backend.
type PoolConfig struct {
	MinConns        int32
	MaxConns        int32
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// DefaultPoolConfig returns the settings used when a backend does not override them.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MinConns:        0,
		MaxConns:        DefaultMaxConns,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
		ConnectTimeout:  30 * time.Second,
	}
}

// New parses url, opens a pool with poolConf applied and pings it once.
// There is no retry: a backend that cannot be reached here is reported to the caller.
func New(ctx context.Context, logger *zap.Logger, name, url string, poolConf PoolConfig) (client Client, err error) {
	if poolConf.ConnectTimeout <= 0 {
		poolConf.ConnectTimeout = DefaultPoolConfig().ConnectTimeout
	}
	if poolConf.MaxConns <= 0 {
		poolConf.MaxConns = DefaultMaxConns
	}

	connCtx, cancel := context.WithTimeout(ctx, poolConf.ConnectTimeout)
	defer cancel()

	client.Logger = logger
	client.Name = name

	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return Client{}, fmt.Errorf("failed to parse connection string for %s: %w", name, err)
	}

	config.MinConns = poolConf.MinConns
	config.MaxConns = poolConf.MaxConns
	config.MaxConnLifetime = poolConf.ConnMaxLifetime
	config.MaxConnIdleTime = poolConf.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(connCtx, config)
	if err != nil {
		return Client{}, fmt.Errorf("failed to create postgres connection pool for %s: %w", name, err)
	}

	logger.Debug("Pinging PostgreSQL connection", zap.String("backend", name))

	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		return Client{}, fmt.Errorf("failed to ping postgres for %s: %w", name, err)
	}

	client.Pool = pool

	logger.Info("PostgreSQL connection pool configured",
		zap.String("backend", name),
		zap.String("database", config.ConnConfig.Database),
		zap.Int32("min_conns", poolConf.MinConns),
		zap.Int32("max_conns", poolConf.MaxConns),
		zap.Duration("conn_max_lifetime", poolConf.ConnMaxLifetime),
		zap.Duration("conn_max_idle_time", poolConf.ConnMaxIdleTime),
	)

	return client, nil
}

// Query executes a query that returns rows
// IMPORTANT: Caller MUST call rows.Close() when done to release the connection
func (c *Client) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return c.Pool.Query(ctx, query, args...)
}

// Ping verifies the pool can still reach its backend.
func (c *Client) Ping(ctx context.Context) error {
	return c.Pool.Ping(ctx)
}

// Close closes the connection pool
func (c *Client) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
