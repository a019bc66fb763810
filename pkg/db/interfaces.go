package db

import (
	"context"

	"github.com/canopy-network/accountsx/pkg/db/models/indexer"
)

// NetworkStore describes the per-network database operations served over HTTP.
type NetworkStore interface {
	NetworkName() string
	QueryAccounts(ctx context.Context, topLevelAccount string) ([]indexer.AccountRecord, error)
	Close() error
}
