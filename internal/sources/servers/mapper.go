package servers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
	"github.com/MrSnakeDoc/mcboard/internal/minecraft"
)

// Mapper converts and validates the servers file into domain values
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map returns servers and boards in file order. Every problem found is
// reported, joined into one error.
func (m *Mapper) Map(file File) ([]domain.Server, []domain.Board, error) {
	var errs []error

	if len(file.Servers) == 0 {
		errs = append(errs, errors.New("no servers configured"))
	}
	if len(file.Boards) == 0 {
		errs = append(errs, errors.New("no boards configured"))
	}

	servers := make([]domain.Server, 0, len(file.Servers))
	names := make([]string, 0, len(file.Servers))
	known := make(map[string]bool, len(file.Servers))

	for i, e := range file.Servers {
		name := strings.TrimSpace(e.Name)
		switch {
		case name == "":
			errs = append(errs, fmt.Errorf("servers[%d]: name is required", i))
			continue
		case known[name]:
			errs = append(errs, fmt.Errorf("servers[%d]: duplicate name %q", i, name))
			continue
		}

		if _, _, err := minecraft.ParseAddress(e.Address); err != nil {
			errs = append(errs, fmt.Errorf("servers[%d] (%s): %w", i, name, err))
			continue
		}
		if e.QueryPort < 0 || e.QueryPort > 65535 {
			errs = append(errs, fmt.Errorf("servers[%d] (%s): invalid query_port %d", i, name, e.QueryPort))
			continue
		}

		known[name] = true
		names = append(names, name)
		servers = append(servers, domain.Server{
			Name:         name,
			Address:      strings.TrimSpace(e.Address),
			QueryEnabled: e.Query == nil || *e.Query,
			QueryHost:    strings.TrimSpace(e.QueryHost),
			QueryPort:    e.QueryPort,
		})
	}

	boards := make([]domain.Board, 0, len(file.Boards))
	for i, e := range file.Boards {
		b := domain.Board{
			ChatID:             strings.TrimSpace(e.ChatID),
			ChatType:           strings.ToLower(strings.TrimSpace(e.ChatType)),
			Servers:            e.Servers,
			TrackPlayerChanges: e.TrackPlayerChanges,
			MaxPlayerRecords:   e.MaxPlayerRecords,
		}

		if b.ChatID == "" {
			errs = append(errs, fmt.Errorf("boards[%d]: chat_id is required", i))
		}
		if b.ChatType != domain.ChatTypeGroup && b.ChatType != domain.ChatTypeUser {
			errs = append(errs, fmt.Errorf("boards[%d]: chat_type must be %q or %q, got %q",
				i, domain.ChatTypeGroup, domain.ChatTypeUser, e.ChatType))
		}
		if b.MaxPlayerRecords < 0 {
			errs = append(errs, fmt.Errorf("boards[%d]: max_player_records must not be negative", i))
		}
		if b.MaxPlayerRecords == 0 {
			b.MaxPlayerRecords = domain.DefaultMaxPlayerRecords
		}

		if len(b.Servers) == 0 {
			b.Servers = append([]string(nil), names...)
		}
		for _, s := range b.Servers {
			if !known[s] {
				errs = append(errs, fmt.Errorf("boards[%d]: unknown server %q", i, s))
			}
		}

		boards = append(boards, b)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, nil, fmt.Errorf("invalid servers file: %w", err)
	}
	return servers, boards, nil
}

// LoadFile loads and maps path in one step.
func LoadFile(path string) ([]domain.Server, []domain.Board, error) {
	file, err := NewLoader(path).Load()
	if err != nil {
		return nil, nil, err
	}
	return NewMapper().Map(file)
}
