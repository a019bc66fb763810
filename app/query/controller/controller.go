package controller

import (
	"net/http"

	"github.com/canopy-network/accountsx/app/query/types"
	"github.com/canopy-network/accountsx/pkg/metrics"
	"github.com/gorilla/mux"
)

type Controller struct {
	App *types.App
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	return &Controller{
		App: app,
	}
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	r.HandleFunc("/", c.HandleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", c.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/query/{network}/{top_level_account}", c.HandleQuery).Methods(http.MethodGet)
	r.Handle(metrics.Path, metrics.Handler()).Methods(http.MethodGet)

	return r, nil
}

// WithCORS is a middleware that adds CORS headers to the response.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
