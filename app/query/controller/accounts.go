package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/canopy-network/accountsx/pkg/db"
	"github.com/canopy-network/accountsx/pkg/metrics"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// HandleQuery returns every account whose id ends in ".<top_level_account>.<network>".
// Path parameters:
//   - network: one of the configured networks, anything else is a 400
//   - top_level_account: forwarded as-is to the backend
//
// Backend failures are also reported as 400 with the backend diagnostic in the body.
func (c *Controller) HandleQuery(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	network := vars["network"]
	topLevelAccount := vars["top_level_account"]

	store, err := c.App.Networks.Validate(network)
	if err != nil {
		var unknown *db.UnknownNetworkError
		if errors.As(err, &unknown) {
			c.App.Logger.Debug("Rejected unknown network", zap.String("network", network))
		}
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	rows, err := store.QueryAccounts(r.Context(), topLevelAccount)
	metrics.RecordAccountQuery(network, len(rows), err, time.Since(start))
	if err != nil {
		c.App.Logger.Warn("Account query failed",
			zap.String("network", network),
			zap.String("top_level_account", topLevelAccount),
			zap.Error(err))
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rows)
}
