package types

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/canopy-network/accountsx/pkg/db"
	"go.uber.org/zap"
)

type App struct {
	// Networks is built once at startup and shared read-only by every request.
	Networks *db.NetworksDB
	// Zap Logger
	Logger *zap.Logger
	// Addr is the listen address, <ip>:<port> or :<port>.
	Addr string
	// Server represents the HTTP server instance used to handle incoming client requests and manage HTTP routes.
	Server *http.Server
	// ShutdownTimeout bounds how long in-flight requests get to finish on shutdown.
	ShutdownTimeout time.Duration
}

// Start serves HTTP until ctx is cancelled, then drains the server and closes every pool.
func (a *App) Start(ctx context.Context) {
	serveErr := make(chan error, 1)
	go func() { serveErr <- a.Server.ListenAndServe() }()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}

	timeout := a.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}

	if err := a.Networks.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	a.Logger.Info("さようなら!")
	_ = a.Logger.Sync()
}
