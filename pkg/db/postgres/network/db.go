package network

import (
	"context"

	"github.com/canopy-network/accountsx/pkg/db/postgres"
	"go.uber.org/zap"
)

// DB is the read-only view of one network's indexer database.
type DB struct {
	Logger  *zap.Logger
	Network string

	client  *postgres.Client
	querier postgres.Querier
}

// New connects to the network's backend. The returned DB owns its pool.
func New(ctx context.Context, logger *zap.Logger, network, url string, poolConfig postgres.PoolConfig) (*DB, error) {
	logger = logger.With(zap.String("network", network))

	client, err := postgres.New(ctx, logger, network, url, poolConfig)
	if err != nil {
		return nil, err
	}

	db := NewWithQuerier(logger, network, client.Pool)
	db.client = &client
	return db, nil
}

// NewWithQuerier builds a DB over an existing querier. Close is a no-op for it.
func NewWithQuerier(logger *zap.Logger, network string, q postgres.Querier) *DB {
	return &DB{
		Logger:  logger,
		Network: network,
		querier: q,
	}
}

// NetworkName returns the network this database serves.
func (db *DB) NetworkName() string {
	return db.Network
}

// Close terminates the underlying PostgreSQL pool, if this DB opened one.
func (db *DB) Close() error {
	if db.client != nil {
		db.client.Close()
	}
	return nil
}
