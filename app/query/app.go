package query

import (
	"context"

	"github.com/canopy-network/accountsx/app/query/types"
	"github.com/canopy-network/accountsx/pkg/db"
	"github.com/canopy-network/accountsx/pkg/logging"
	"go.uber.org/zap"
)

// Initialize initializes the application.
// Every configured network must be reachable; otherwise the process exits.
func Initialize(ctx context.Context) *types.App {
	logger, err := logging.New()
	if err != nil {
		// nothing else to do here, we'll just log to stderr'
		panic(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	networksDb, err := db.NewNetworksDB(ctx, logger, cfg.Networks)
	if err != nil {
		logger.Fatal("Unable to initialize network databases", zap.Error(err))
	}

	return &types.App{
		Networks:        networksDb,
		Logger:          logger,
		Addr:            cfg.Addr,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
}
