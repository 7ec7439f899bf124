package index

import (
	"sort"
	"sync"
	"time"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
)

// DefaultEventHistory is the number of presence events kept per server.
const DefaultEventHistory = 50

// CycleSummary describes one completed poll cycle.
type CycleSummary struct {
	ID            string        `json:"id"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	Servers       int           `json:"servers"`
	Reachable     int           `json:"reachable"`
	Events        int           `json:"events"`
	Published     int           `json:"published"`
	PublishErrors int           `json:"publish_errors"`
	StoreErrors   []string      `json:"store_errors,omitempty"`
}

// MemoryIndex holds the runtime view of every monitored server: latest
// status, last known roster and recent presence events.
type MemoryIndex struct {
	mu           sync.RWMutex
	statuses     map[string]domain.Status          // server -> latest status
	rosters      map[string]*domain.Roster         // server -> last tracked roster
	events       map[string][]domain.PresenceEvent // server -> events, newest first
	historyLimit int
	lastCycle    CycleSummary
	ready        bool // at least one cycle completed
}

// NewMemoryIndex creates a new memory index keeping historyLimit events per
// server (DefaultEventHistory when non-positive).
func NewMemoryIndex(historyLimit int) *MemoryIndex {
	if historyLimit <= 0 {
		historyLimit = DefaultEventHistory
	}
	return &MemoryIndex{
		statuses:     make(map[string]domain.Status),
		rosters:      make(map[string]*domain.Roster),
		events:       make(map[string][]domain.PresenceEvent),
		historyLimit: historyLimit,
	}
}

// SetStatus stores the latest status of a server
func (idx *MemoryIndex) SetStatus(st domain.Status) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.statuses[st.Server] = st
}

// GetStatus retrieves the latest status of a server
func (idx *MemoryIndex) GetStatus(server string) (domain.Status, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	st, ok := idx.statuses[server]
	return st, ok
}

// SetRoster stores the last tracked roster of a server
func (idx *MemoryIndex) SetRoster(server string, roster *domain.Roster) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.rosters[server] = roster.OrEmpty()
}

// GetRoster returns the last tracked roster of a server
func (idx *MemoryIndex) GetRoster(server string) (*domain.Roster, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	r, ok := idx.rosters[server]
	return r, ok
}

// ─────────────────────────────────────────────────────────────────
// Presence history
// ─────────────────────────────────────────────────────────────────

// RecordEvents prepends a batch of events to the server history, keeping
// the batch order, and drops the oldest beyond the history limit.
func (idx *MemoryIndex) RecordEvents(server string, events []domain.PresenceEvent) {
	if len(events) == 0 {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	prev := idx.events[server]
	merged := make([]domain.PresenceEvent, 0, len(events)+len(prev))
	merged = append(merged, events...)
	merged = append(merged, prev...)
	if len(merged) > idx.historyLimit {
		merged = merged[:idx.historyLimit]
	}
	idx.events[server] = merged
}

// RecentEvents returns a copy of the server history, newest first
func (idx *MemoryIndex) RecentEvents(server string) []domain.PresenceEvent {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	events := idx.events[server]
	out := make([]domain.PresenceEvent, len(events))
	copy(out, events)
	return out
}

// Retain drops everything known about servers not listed
func (idx *MemoryIndex) Retain(servers []string) []string {
	keep := make(map[string]struct{}, len(servers))
	for _, s := range servers {
		keep[s] = struct{}{}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	dropped := map[string]struct{}{}
	for s := range idx.statuses {
		if _, ok := keep[s]; !ok {
			delete(idx.statuses, s)
			dropped[s] = struct{}{}
		}
	}
	for s := range idx.rosters {
		if _, ok := keep[s]; !ok {
			delete(idx.rosters, s)
			dropped[s] = struct{}{}
		}
	}
	for s := range idx.events {
		if _, ok := keep[s]; !ok {
			delete(idx.events, s)
			dropped[s] = struct{}{}
		}
	}

	out := make([]string, 0, len(dropped))
	for s := range dropped {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ─────────────────────────────────────────────────────────────────
// Cycle bookkeeping
// ─────────────────────────────────────────────────────────────────

// SetLastCycle records a completed cycle and marks the index ready
func (idx *MemoryIndex) SetLastCycle(c CycleSummary) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.lastCycle = c
	idx.ready = true
}

// LastCycle returns the last completed cycle, if any
func (idx *MemoryIndex) LastCycle() (CycleSummary, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastCycle, idx.ready
}

// Ready reports whether at least one cycle completed
func (idx *MemoryIndex) Ready() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.ready
}
