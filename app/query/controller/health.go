package controller

import (
	"net/http"
)

// HandleRoot answers with a fixed greeting.
func (c *Controller) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Hello world!")
}

// HandleHealth is a liveness probe. It does not touch any backend.
func (c *Controller) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"healthy": true})
}
