package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/mcboard/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz reports ready once the first poll cycle has completed.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := d.MemoryIndex.Ready()

		w.Header().Set("Content-Type", "application/json")
		if ready {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(readyzResponse{
			Ready: ready,
		})
	}
}
