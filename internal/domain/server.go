package domain

// DefaultMaxPlayerRecords caps the join/leave section of a board.
const DefaultMaxPlayerRecords = 10

// Server is a monitored Minecraft server.
//
// Name is the ServerIdentity: it keys the persisted roster and must stay
// stable across restarts.
type Server struct {
	Name    string
	Address string

	// QueryEnabled toggles the UDP query used to list players.
	QueryEnabled bool
	QueryHost    string
	QueryPort    int
}

// Chat types accepted by the board API.
const (
	ChatTypeGroup = "group"
	ChatTypeUser  = "user"
)

// Board is one pinned board destination and what it shows.
type Board struct {
	ChatID   string
	ChatType string

	// Servers lists the server names rendered on this board, in order.
	Servers []string

	TrackPlayerChanges bool
	MaxPlayerRecords   int
}

// Shows reports whether the board renders the named server.
func (b Board) Shows(server string) bool {
	for _, name := range b.Servers {
		if name == server {
			return true
		}
	}
	return false
}
