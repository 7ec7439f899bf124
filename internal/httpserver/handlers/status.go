package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
	"github.com/MrSnakeDoc/mcboard/internal/httpserver/deps"
)

type serverStatus struct {
	Server        string   `json:"server"`
	Address       string   `json:"address"`
	Observed      bool     `json:"observed"`
	Reachable     bool     `json:"reachable"`
	PlayersOnline *int     `json:"players_online"`
	PlayersMax    *int     `json:"players_max"`
	LatencyMS     *float64 `json:"latency_ms"`
	Version       string   `json:"version,omitempty"`
	Players       []string `json:"players"` // null when unknown
	// baseline the next join/leave diff runs against, null until tracked
	TrackedRoster []string               `json:"tracked_roster"`
	Error         string                 `json:"error,omitempty"`
	QueryError    string                 `json:"query_error,omitempty"`
	CheckedAt     *time.Time             `json:"checked_at,omitempty"`
	RecentEvents  []domain.PresenceEvent `json:"recent_events"`
}

// Status lists every configured server with its latest observation.
func Status(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]serverStatus, 0, len(d.Servers))
		for _, srv := range d.Servers {
			out = append(out, toServerStatus(d, srv))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(out)
	}
}

func toServerStatus(d deps.Deps, srv domain.Server) serverStatus {
	s := serverStatus{
		Server:       srv.Name,
		Address:      srv.Address,
		RecentEvents: d.MemoryIndex.RecentEvents(srv.Name),
	}
	if r, ok := d.MemoryIndex.GetRoster(srv.Name); ok {
		s.TrackedRoster = r.Names()
	}

	st, ok := d.MemoryIndex.GetStatus(srv.Name)
	if !ok {
		return s
	}
	s.Observed = true
	s.Reachable = st.Reachable
	checked := st.CheckedAt
	s.CheckedAt = &checked

	if st.Err != nil {
		s.Error = st.Err.Error()
	}
	if !st.Reachable {
		return s
	}

	online, max, latency := st.PlayersOnline, st.PlayersMax, st.LatencyMillis()
	s.PlayersOnline = &online
	s.PlayersMax = &max
	s.LatencyMS = &latency
	s.Version = st.Version

	if st.Players.Known() {
		s.Players = st.Players.Names()
	}
	if st.QueryErr != nil {
		s.QueryError = st.QueryErr.Error()
	}
	return s
}
