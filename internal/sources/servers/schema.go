package servers

// File is the top-level structure of servers.yaml
type File struct {
	Servers []ServerEntry `yaml:"servers"`
	Boards  []BoardEntry  `yaml:"boards"`
}

// ServerEntry describes one monitored server
type ServerEntry struct {
	Name      string `yaml:"name"`
	Address   string `yaml:"address"`
	QueryHost string `yaml:"query_host,omitempty"`
	QueryPort int    `yaml:"query_port,omitempty"`
	// Query defaults to true when omitted
	Query *bool `yaml:"query,omitempty"`
}

// BoardEntry describes one chat board
type BoardEntry struct {
	ChatID             string   `yaml:"chat_id"`
	ChatType           string   `yaml:"chat_type"`
	Servers            []string `yaml:"servers,omitempty"`
	TrackPlayerChanges bool     `yaml:"track_player_changes"`
	MaxPlayerRecords   int      `yaml:"max_player_records,omitempty"`
}
