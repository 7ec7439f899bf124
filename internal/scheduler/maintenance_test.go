package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
	"github.com/MrSnakeDoc/mcboard/internal/index"
	"github.com/MrSnakeDoc/mcboard/internal/logger"
	filestore "github.com/MrSnakeDoc/mcboard/internal/store/file"
)

func TestWarmup_Run(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)
	st := filestore.New(filepath.Join(t.TempDir(), "player_temp.json"))

	if err := st.Save(ctx, "survival", domain.NewRoster("Alice", "Bob")); err != nil {
		t.Fatal(err)
	}

	idx := index.NewMemoryIndex(10)
	servers := []domain.Server{{Name: "survival"}, {Name: "creative"}}

	n, err := NewWarmup(st, idx, servers, log).Run(ctx)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != 2 {
		t.Errorf("loaded %d rosters, want 2", n)
	}

	r, ok := idx.GetRoster("survival")
	if !ok || !r.Equal(domain.NewRoster("Alice", "Bob")) {
		t.Errorf("survival roster = %v", r.Names())
	}
	if r, ok := idx.GetRoster("creative"); !ok || r.Len() != 0 {
		t.Errorf("creative roster should be known and empty")
	}
}

func TestWarmup_CorruptIsSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player_temp.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	idx := index.NewMemoryIndex(10)
	n, err := NewWarmup(filestore.New(path), idx, []domain.Server{{Name: "a"}}, logger.New("error", false)).Run(context.Background())
	if err != nil {
		t.Fatalf("corruption must not abort warmup: %v", err)
	}
	if n != 0 {
		t.Errorf("loaded %d, want 0", n)
	}
	if _, ok := idx.GetRoster("a"); ok {
		t.Error("corrupt roster should not reach the index")
	}
}

func TestPruner_Prune(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)
	st := filestore.New(filepath.Join(t.TempDir(), "player_temp.json"))

	for _, name := range []string{"keep", "old1", "old2"} {
		if err := st.Save(ctx, name, domain.NewRoster("x")); err != nil {
			t.Fatal(err)
		}
	}

	idx := index.NewMemoryIndex(10)
	idx.SetStatus(domain.Status{Server: "old1"})

	pr := NewPruner(st, idx, []domain.Server{{Name: "keep"}}, log, 0)
	deleted, err := pr.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if len(deleted) != 2 {
		t.Errorf("deleted = %v, want 2 entries", deleted)
	}

	remaining, _ := st.Servers(ctx)
	if len(remaining) != 1 || remaining[0] != "keep" {
		t.Errorf("remaining = %v, want [keep]", remaining)
	}
	if _, ok := idx.GetStatus("old1"); ok {
		t.Error("index still knows a pruned server")
	}

	// second run is a no-op
	deleted, err = pr.Prune(ctx)
	if err != nil || len(deleted) != 0 {
		t.Errorf("second prune = %v, %v", deleted, err)
	}
}
