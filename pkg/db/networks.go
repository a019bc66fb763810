package db

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/canopy-network/accountsx/pkg/db/postgres"
	"github.com/canopy-network/accountsx/pkg/db/postgres/network"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

// maxConnectWorkers bounds how many backends are dialed at once during startup.
const maxConnectWorkers = 4

// NetworkConfig describes one named backend.
type NetworkConfig struct {
	Name string
	URL  string
	Pool postgres.PoolConfig
}

// UnknownNetworkError is returned for a network name that has no backend.
type UnknownNetworkError struct {
	Network string
	Valid   []string
}

func (e *UnknownNetworkError) Error() string {
	return fmt.Sprintf("unknown network %q, valid options: %v", e.Network, e.Valid)
}

// NetworksDB maps network names to their stores. It is built once and never
// mutated afterwards, so lookups need no locking.
type NetworksDB struct {
	Logger *zap.Logger

	stores map[string]NetworkStore
	names  []string
}

type connectFunc func(ctx context.Context, logger *zap.Logger, cfg NetworkConfig) (NetworkStore, error)

func connectPostgres(ctx context.Context, logger *zap.Logger, cfg NetworkConfig) (NetworkStore, error) {
	store, err := network.New(ctx, logger, cfg.Name, cfg.URL, cfg.Pool)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewNetworksDB connects to every configured backend concurrently. If any
// backend cannot be reached the pools that did open are closed and the first
// failure is returned; there is no partial registry.
func NewNetworksDB(ctx context.Context, logger *zap.Logger, cfgs []NetworkConfig) (*NetworksDB, error) {
	return newNetworksDB(ctx, logger, cfgs, connectPostgres)
}

func newNetworksDB(ctx context.Context, logger *zap.Logger, cfgs []NetworkConfig, connect connectFunc) (*NetworksDB, error) {
	if len(cfgs) == 0 {
		return nil, errors.New("no networks configured")
	}
	seen := make(map[string]bool, len(cfgs))
	for _, cfg := range cfgs {
		if cfg.Name == "" {
			return nil, errors.New("network name cannot be empty")
		}
		if seen[cfg.Name] {
			return nil, fmt.Errorf("network %q configured more than once", cfg.Name)
		}
		seen[cfg.Name] = true
	}

	start := time.Now()
	connected := xsync.NewMap[string, NetworkStore]()
	failures := xsync.NewMap[string, error]()

	pool := pond.NewPool(min(maxConnectWorkers, len(cfgs)))
	defer pool.StopAndWait()

	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()

	for _, cfg := range cfgs {
		cfg := cfg
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				failures.Store(cfg.Name, err)
				return
			}
			store, err := connect(groupCtx, logger, cfg)
			if err != nil {
				failures.Store(cfg.Name, fmt.Errorf("connect network %s: %w", cfg.Name, err))
				return
			}
			connected.Store(cfg.Name, store)
		})
	}

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		logger.Warn("network connection tasks failed", zap.Error(err))
	}

	stores := make([]NetworkStore, 0, len(cfgs))
	var firstErr error
	// report in configuration order so the error is deterministic
	for _, cfg := range cfgs {
		if err, ok := failures.Load(cfg.Name); ok {
			firstErr = err
			break
		}
		store, ok := connected.Load(cfg.Name)
		if !ok {
			firstErr = fmt.Errorf("connect network %s: %w", cfg.Name, errors.Join(errors.New("not attempted"), ctx.Err()))
			break
		}
		stores = append(stores, store)
	}
	if firstErr != nil {
		connected.Range(func(name string, store NetworkStore) bool {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close network database", zap.String("network", name), zap.Error(err))
			}
			return true
		})
		return nil, firstErr
	}

	ndb, err := NewNetworksDBFromStores(logger, stores...)
	if err != nil {
		return nil, err
	}

	logger.Info("Network databases connected",
		zap.Strings("networks", ndb.names),
		zap.Duration("duration", time.Since(start)))

	return ndb, nil
}

// NewNetworksDBFromStores builds the registry over already-open stores.
func NewNetworksDBFromStores(logger *zap.Logger, stores ...NetworkStore) (*NetworksDB, error) {
	ndb := &NetworksDB{
		Logger: logger,
		stores: make(map[string]NetworkStore, len(stores)),
		names:  make([]string, 0, len(stores)),
	}
	for _, store := range stores {
		if store == nil {
			return nil, errors.New("nil network store")
		}
		name := store.NetworkName()
		if _, dup := ndb.stores[name]; dup {
			return nil, fmt.Errorf("network %q registered more than once", name)
		}
		ndb.stores[name] = store
		ndb.names = append(ndb.names, name)
	}
	sort.Strings(ndb.names)
	return ndb, nil
}

// Lookup returns the store for name.
func (n *NetworksDB) Lookup(name string) (NetworkStore, bool) {
	store, ok := n.stores[name]
	return store, ok
}

// Networks returns the configured network names, sorted.
func (n *NetworksDB) Networks() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// Validate resolves name to its store or returns *UnknownNetworkError.
func (n *NetworksDB) Validate(name string) (NetworkStore, error) {
	store, ok := n.Lookup(name)
	if !ok {
		return nil, &UnknownNetworkError{Network: name, Valid: n.Networks()}
	}
	return store, nil
}

// Close closes every store, returning the first error.
func (n *NetworksDB) Close() error {
	var first error
	for _, name := range n.names {
		if err := n.stores[name].Close(); err != nil {
			n.Logger.Error("Failed to close network database", zap.String("network", name), zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}
