package query

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/canopy-network/accountsx/app/query/controller"
	"github.com/canopy-network/accountsx/app/query/types"
)

// NewServer builds the router and attaches an http.Server bound to app.Addr.
func NewServer(app *types.App) error {
	ctler := controller.NewController(app)
	router, err := ctler.NewRouter()
	if err != nil {
		return err
	}

	app.Server = &http.Server{Addr: app.Addr, Handler: controller.WithCORS(ctler.WithRequestLog(router))}
	app.Logger.Info("Starting server", zap.String("addr", app.Addr), zap.Strings("networks", app.Networks.Networks()))

	return nil
}
