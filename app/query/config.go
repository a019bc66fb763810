package query

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/canopy-network/accountsx/pkg/db"
	"github.com/canopy-network/accountsx/pkg/db/postgres"
	"github.com/canopy-network/accountsx/pkg/utils"
)

// Config is everything the query service reads from the environment.
type Config struct {
	Addr            string
	Networks        []db.NetworkConfig
	ShutdownTimeout time.Duration
}

// DefaultNetworks is used when NETWORKS is unset.
var DefaultNetworks = []string{"testnet", "mainnet"}

// LoadConfig reads the service configuration. Each network in NETWORKS needs a
// DATABASE_URL_<NAME> connection string; pool settings are shared by all of them.
func LoadConfig() (Config, error) {
	maxConns := utils.EnvInt("DB_MAX_CONNECTIONS", postgres.DefaultMaxConns)
	minConns := utils.EnvInt("DB_MIN_CONNECTIONS", 0)
	if maxConns < 1 || maxConns > math.MaxInt32 {
		return Config{}, fmt.Errorf("DB_MAX_CONNECTIONS must be between 1 and %d, got %d", math.MaxInt32, maxConns)
	}
	if minConns > maxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNECTIONS (%d) cannot exceed DB_MAX_CONNECTIONS (%d)", minConns, maxConns)
	}

	pool := postgres.DefaultPoolConfig()
	pool.MaxConns = int32(maxConns)
	pool.MinConns = int32(minConns)
	pool.ConnectTimeout = utils.EnvDuration("DB_CONNECT_TIMEOUT", pool.ConnectTimeout)

	names := utils.EnvList("NETWORKS", DefaultNetworks)
	if len(names) == 0 {
		return Config{}, errors.New("NETWORKS must name at least one network")
	}

	networks := make([]db.NetworkConfig, 0, len(names))
	for _, name := range names {
		key := utils.EnvKey("DATABASE_URL", name)
		url := utils.Env(key, "")
		if url == "" {
			return Config{}, fmt.Errorf("%s is required for network %q", key, name)
		}
		networks = append(networks, db.NetworkConfig{Name: name, URL: url, Pool: pool})
	}

	return Config{
		Addr:            utils.Env("ADDR", "0.0.0.0:8080"),
		Networks:        networks,
		ShutdownTimeout: utils.EnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}, nil
}
