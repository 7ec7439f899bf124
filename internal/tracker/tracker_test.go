package tracker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
	"github.com/MrSnakeDoc/mcboard/internal/logger"
	"github.com/MrSnakeDoc/mcboard/internal/store"
	"github.com/MrSnakeDoc/mcboard/internal/store/file"
)

func newTestTracker(t *testing.T) (*Tracker, *file.Store) {
	t.Helper()
	s := file.New(filepath.Join(t.TempDir(), "rosters.json"))
	tr := New(s, logger.New("error", false))
	tr.now = func() time.Time { return time.Date(2024, 5, 1, 20, 15, 0, 0, time.Local) }
	return tr, s
}

func split(events []domain.PresenceEvent) (joined, left []string) {
	joined, left = []string{}, []string{}
	for _, e := range events {
		if e.IsJoin() {
			joined = append(joined, e.Player)
		} else {
			left = append(left, e.Player)
		}
	}
	return joined, left
}

func TestTrackComputesBothDifferences(t *testing.T) {
	tests := []struct {
		name       string
		previous   *domain.Roster
		current    *domain.Roster
		wantJoined []string
		wantLeft   []string
	}{
		{
			name:       "mixed",
			previous:   domain.NewRoster("alice", "bob"),
			current:    domain.NewRoster("bob", "carol", "dave"),
			wantJoined: []string{"carol", "dave"},
			wantLeft:   []string{"alice"},
		},
		{
			name:       "nobody changed",
			previous:   domain.NewRoster("alice"),
			current:    domain.NewRoster("alice"),
			wantJoined: []string{},
			wantLeft:   []string{},
		},
		{
			name:       "everyone left to empty server",
			previous:   domain.NewRoster("alice", "bob"),
			current:    domain.EmptyRoster(),
			wantJoined: []string{},
			wantLeft:   []string{"alice", "bob"},
		},
		{
			name:       "case sensitive names",
			previous:   domain.NewRoster("Steve"),
			current:    domain.NewRoster("steve"),
			wantJoined: []string{"steve"},
			wantLeft:   []string{"Steve"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			tr, s := newTestTracker(t)
			if err := s.Save(ctx, "survival", tt.previous); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			events, err := tr.Track(ctx, "survival", tt.current)
			if err != nil {
				t.Fatalf("Track() error = %v", err)
			}

			joined, left := split(events)
			if !reflect.DeepEqual(joined, tt.wantJoined) {
				t.Errorf("joined = %v, want %v", joined, tt.wantJoined)
			}
			if !reflect.DeepEqual(left, tt.wantLeft) {
				t.Errorf("left = %v, want %v", left, tt.wantLeft)
			}

			seen := map[string]bool{}
			for _, e := range events {
				if seen[e.Player] {
					t.Errorf("player %q appears in both joined and left", e.Player)
				}
				seen[e.Player] = true
			}
		})
	}
}

func TestTrackEventsShareTimestampAndServer(t *testing.T) {
	ctx := context.Background()
	tr, s := newTestTracker(t)
	if err := s.Save(ctx, "survival", domain.NewRoster("old")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	events, err := tr.Track(ctx, "survival", domain.NewRoster("new1", "new2"))
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	want := tr.now()
	for _, e := range events {
		if !e.Time.Equal(want) {
			t.Errorf("event time = %v, want %v", e.Time, want)
		}
		if e.Server != "survival" {
			t.Errorf("event server = %q", e.Server)
		}
	}
	if events[0].Action != domain.ActionJoin || events[2].Action != domain.ActionLeave {
		t.Errorf("events not ordered joins first: %+v", events)
	}
}

func TestTrackIsIdempotentForSameRoster(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)
	roster := domain.NewRoster("alice", "bob")

	first, err := tr.Track(ctx, "survival", roster)
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("first Track() returned %d events, want 2", len(first))
	}

	second, err := tr.Track(ctx, "survival", roster)
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	if len(second) != 0 {
		t.Errorf("second Track() returned %v, want no events", second)
	}
}

func TestTrackUnknownRosterCountsAsEmpty(t *testing.T) {
	ctx := context.Background()
	tr, s := newTestTracker(t)
	if err := s.Save(ctx, "survival", domain.NewRoster("alice", "bob")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	events, err := tr.Track(ctx, "survival", nil)
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	joined, left := split(events)
	if len(joined) != 0 {
		t.Errorf("joined = %v, want none", joined)
	}
	if !reflect.DeepEqual(left, []string{"alice", "bob"}) {
		t.Errorf("left = %v, want [alice bob]", left)
	}

	persisted, err := s.Load(ctx, "survival")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !persisted.Known() || persisted.Len() != 0 {
		t.Errorf("persisted roster = %v, want empty", persisted.Names())
	}
}

func TestTrackFirstCallForServer(t *testing.T) {
	ctx := context.Background()
	tr, s := newTestTracker(t)

	events, err := tr.Track(ctx, "brand-new", domain.NewRoster("carol"))
	if err != nil {
		t.Fatalf("Track() error = %v", err)
	}
	joined, left := split(events)
	if !reflect.DeepEqual(joined, []string{"carol"}) || len(left) != 0 {
		t.Errorf("joined = %v, left = %v", joined, left)
	}

	servers, err := s.Servers(ctx)
	if err != nil {
		t.Fatalf("Servers() error = %v", err)
	}
	if !reflect.DeepEqual(servers, []string{"brand-new"}) {
		t.Errorf("Servers() = %v, entry should be created on first call", servers)
	}
}

func TestTrackPropagatesCorruption(t *testing.T) {
	ctx := context.Background()
	tr, s := newTestTracker(t)
	if err := os.WriteFile(s.Path(), []byte("[[["), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := tr.Track(ctx, "survival", domain.NewRoster("alice"))
	if !errors.Is(err, store.ErrCorrupt) {
		t.Errorf("Track() error = %v, want ErrCorrupt", err)
	}
}

func TestConcurrentTrackingOfDistinctServers(t *testing.T) {
	ctx := context.Background()
	tr, s := newTestTracker(t)

	rosters := map[string]*domain.Roster{
		"survival": domain.NewRoster("alice", "bob"),
		"creative": domain.NewRoster("carol"),
	}

	var wg sync.WaitGroup
	for round := 0; round < 10; round++ {
		for name, roster := range rosters {
			wg.Add(1)
			go func(name string, roster *domain.Roster) {
				defer wg.Done()
				if _, err := tr.Track(ctx, name, roster); err != nil {
					t.Errorf("Track(%s) error = %v", name, err)
				}
			}(name, roster)
		}
	}
	wg.Wait()

	for name, want := range rosters {
		got, err := s.Load(ctx, name)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", name, err)
		}
		if !got.Equal(want) {
			t.Errorf("%s persisted = %v, want %v", name, got.Names(), want.Names())
		}
	}
}

func TestConcurrentTrackingOfSameServerIsSerialized(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)
	roster := domain.NewRoster("alice")

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		joins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			events, err := tr.Track(ctx, "survival", roster)
			if err != nil {
				t.Errorf("Track() error = %v", err)
				return
			}
			mu.Lock()
			joins += len(events)
			mu.Unlock()
		}()
	}
	wg.Wait()

	if joins != 1 {
		t.Errorf("alice joined %d times, want exactly once", joins)
	}
}
