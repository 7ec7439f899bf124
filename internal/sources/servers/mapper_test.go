package servers

import (
	"strings"
	"testing"

	"github.com/MrSnakeDoc/mcboard/internal/domain"
)

func boolPtr(b bool) *bool { return &b }

func TestMapperMap(t *testing.T) {
	file := File{
		Servers: []ServerEntry{
			{Name: "survival", Address: "mc.example.com"},
			{Name: " creative ", Address: "mc.example.com:25570", QueryHost: "10.0.0.2", QueryPort: 25571, Query: boolPtr(false)},
		},
		Boards: []BoardEntry{
			{ChatID: "1", ChatType: "Group", TrackPlayerChanges: true},
			{ChatID: "2", ChatType: "user", Servers: []string{"creative"}, MaxPlayerRecords: 3},
		},
	}

	servers, boards, err := NewMapper().Map(file)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	if len(servers) != 2 {
		t.Fatalf("Map() servers = %d, want 2", len(servers))
	}
	if !servers[0].QueryEnabled {
		t.Error("query should default to enabled")
	}
	want := domain.Server{Name: "creative", Address: "mc.example.com:25570", QueryHost: "10.0.0.2", QueryPort: 25571}
	if servers[1] != want {
		t.Errorf("servers[1] = %+v, want %+v", servers[1], want)
	}

	if boards[0].ChatType != domain.ChatTypeGroup {
		t.Errorf("chat type not normalized: %q", boards[0].ChatType)
	}
	if len(boards[0].Servers) != 2 || boards[0].Servers[0] != "survival" || boards[0].Servers[1] != "creative" {
		t.Errorf("board without servers should show all, got %v", boards[0].Servers)
	}
	if boards[0].MaxPlayerRecords != domain.DefaultMaxPlayerRecords {
		t.Errorf("MaxPlayerRecords = %d, want default", boards[0].MaxPlayerRecords)
	}
	if boards[1].MaxPlayerRecords != 3 || !boards[1].Shows("creative") || boards[1].Shows("survival") {
		t.Errorf("boards[1] = %+v", boards[1])
	}
}

func TestMapperMapValidation(t *testing.T) {
	okServer := ServerEntry{Name: "s", Address: "mc.example.com"}
	okBoard := BoardEntry{ChatID: "1", ChatType: "group"}

	tests := []struct {
		name    string
		file    File
		wantErr string
	}{
		{name: "no servers", file: File{Boards: []BoardEntry{okBoard}}, wantErr: "no servers configured"},
		{name: "no boards", file: File{Servers: []ServerEntry{okServer}}, wantErr: "no boards configured"},
		{
			name:    "missing name",
			file:    File{Servers: []ServerEntry{{Address: "a"}}, Boards: []BoardEntry{okBoard}},
			wantErr: "name is required",
		},
		{
			name:    "duplicate name",
			file:    File{Servers: []ServerEntry{okServer, okServer}, Boards: []BoardEntry{okBoard}},
			wantErr: `duplicate name "s"`,
		},
		{
			name:    "bad address",
			file:    File{Servers: []ServerEntry{{Name: "s", Address: "host:99999"}}, Boards: []BoardEntry{okBoard}},
			wantErr: "invalid port",
		},
		{
			name:    "bad query port",
			file:    File{Servers: []ServerEntry{{Name: "s", Address: "h", QueryPort: 70000}}, Boards: []BoardEntry{okBoard}},
			wantErr: "invalid query_port",
		},
		{
			name:    "missing chat id",
			file:    File{Servers: []ServerEntry{okServer}, Boards: []BoardEntry{{ChatType: "group"}}},
			wantErr: "chat_id is required",
		},
		{
			name:    "bad chat type",
			file:    File{Servers: []ServerEntry{okServer}, Boards: []BoardEntry{{ChatID: "1", ChatType: "bot"}}},
			wantErr: "chat_type must be",
		},
		{
			name:    "negative records",
			file:    File{Servers: []ServerEntry{okServer}, Boards: []BoardEntry{{ChatID: "1", ChatType: "group", MaxPlayerRecords: -1}}},
			wantErr: "max_player_records",
		},
		{
			name:    "unknown server",
			file:    File{Servers: []ServerEntry{okServer}, Boards: []BoardEntry{{ChatID: "1", ChatType: "group", Servers: []string{"nope"}}}},
			wantErr: `unknown server "nope"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := NewMapper().Map(tt.file)
			if err == nil {
				t.Fatal("Map() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Map() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `servers:
  - name: survival
    address: mc.example.com
boards:
  - chat_id: "1"
    chat_type: user
`)
	servers, boards, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(servers) != 1 || len(boards) != 1 || !boards[0].Shows("survival") {
		t.Errorf("LoadFile() = %+v, %+v", servers, boards)
	}
}
