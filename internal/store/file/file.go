// Package file persists rosters as one JSON document mapping server name
// to an array of player names.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
	"github.com/MrSnakeDoc/mcboard/internal/store"
)

// DefaultPath matches the file name used by earlier deployments.
const DefaultPath = "player_temp.json"

// Store is a file-backed store.RosterStore.
//
// Every operation reads the whole mapping and every mutation rewrites it,
// so the mutex serializes the read-modify-write cycle. Writes go to a temp
// file in the same directory and are renamed over the target.
type Store struct {
	path string
	mu   sync.Mutex
}

var _ store.RosterStore = (*Store)(nil)

// New creates a store backed by path. The file is created on first Save.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Backend implements store.RosterStore.
func (s *Store) Backend() string {
	return "file"
}

// Load returns the persisted roster for server, or an empty roster.
func (s *Store) Load(ctx context.Context, server string) (*domain.Roster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.read()
	if err != nil {
		return nil, err
	}
	return mapping[server].OrEmpty(), nil
}

// Save overwrites the entry for server and commits the whole mapping.
func (s *Store) Save(ctx context.Context, server string, roster *domain.Roster) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.read()
	if err != nil {
		return err
	}
	mapping[server] = roster.OrEmpty()
	return s.write(mapping)
}

// Delete removes the entry for server. Missing entries are not an error.
func (s *Store) Delete(ctx context.Context, server string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := mapping[server]; !ok {
		return nil
	}
	delete(mapping, server)
	return s.write(mapping)
}

// Servers lists the persisted server names, sorted.
func (s *Store) Servers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mapping, err := s.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Ping checks that the mapping is readable and decodes cleanly.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.Servers(ctx)
	return err
}

// read loads the mapping. A missing file is an empty mapping.
func (s *Store) read() (map[string]*domain.Roster, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[string]*domain.Roster), nil
		}
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}

	var mapping map[string]*domain.Roster
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", store.ErrCorrupt, s.path, err)
	}
	if mapping == nil {
		return nil, fmt.Errorf("%w: %s: not a JSON object", store.ErrCorrupt, s.path)
	}
	for server, roster := range mapping {
		if roster == nil {
			return nil, fmt.Errorf("%w: %s: roster of %q is null", store.ErrCorrupt, s.path, server)
		}
	}
	return mapping, nil
}

// write commits the mapping with write-temp-then-rename.
func (s *Store) write(mapping map[string]*domain.Roster) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(mapping); err != nil {
		return fmt.Errorf("failed to encode rosters: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create roster directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp roster file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp roster file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp roster file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp roster file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod temp roster file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace roster file: %w", err)
	}
	committed = true
	return nil
}
