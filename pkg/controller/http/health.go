package http

import (
	"net/http"

	"github.com/m-mizutani/assayer/pkg/domain/model"
	"github.com/m-mizutani/assayer/pkg/domain/types"
)

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	status := &model.HealthStatus{
		Status:  "healthy",
		Service: "assayer",
		Version: types.Version,
	}

	writeJSON(r.Context(), w, http.StatusOK, status)
}
