package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mcboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mcboard/internal/index"
)

type componentStatus struct {
	OK        bool                `json:"ok"`
	Backend   string              `json:"backend,omitempty"`
	Servers   *int                `json:"servers,omitempty"`
	Reachable *int                `json:"reachable,omitempty"`
	LastCycle *index.CycleSummary `json:"last_cycle,omitempty"`
	Error     string              `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		components := map[string]componentStatus{
			"store":   checkStore(r.Context(), d),
			"poller":  checkPoller(d),
			"servers": checkServers(d),
		}

		response := infraResponse{
			Mode:       determineMode(components),
			Components: components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// determineMode: a broken store or a cycle that hit store errors is
// critical, unreachable servers only degrade.
func determineMode(components map[string]componentStatus) string {
	if s, ok := components["store"]; ok && !s.OK {
		return "critical"
	}
	if p, ok := components["poller"]; ok && !p.OK {
		if p.LastCycle != nil && len(p.LastCycle.StoreErrors) > 0 {
			return "critical"
		}
		return "starting"
	}
	if s, ok := components["servers"]; ok && !s.OK {
		return "degraded"
	}
	return "ok"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{OK: false, Error: "store not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{OK: false, Backend: d.Store.Backend(), Error: err.Error()}
	}
	return componentStatus{OK: true, Backend: d.Store.Backend()}
}

func checkPoller(d deps.Deps) componentStatus {
	last, ok := d.MemoryIndex.LastCycle()
	if !ok {
		return componentStatus{OK: false, Error: "no cycle completed yet"}
	}
	return componentStatus{
		OK:        len(last.StoreErrors) == 0,
		LastCycle: &last,
	}
}

func checkServers(d deps.Deps) componentStatus {
	configured := len(d.Servers)
	reachable := 0
	for _, srv := range d.Servers {
		if st, ok := d.MemoryIndex.GetStatus(srv.Name); ok && st.Reachable {
			reachable++
		}
	}
	return componentStatus{
		OK:        reachable == configured,
		Servers:   &configured,
		Reachable: &reachable,
	}
}
