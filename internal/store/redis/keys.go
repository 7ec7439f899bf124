package redis

const (
	// KeyPrefixRoster is the prefix for per-server roster keys
	KeyPrefixRoster = "mcboard:roster:"
	// KeyAllRosters is the key for the set of all persisted server names
	KeyAllRosters = "mcboard:rosters:all"
)

// RosterKey returns the Redis key holding a server's roster
func RosterKey(server string) string {
	return KeyPrefixRoster + server
}

// AllRostersKey returns the key for the set of persisted server names
func AllRostersKey() string {
	return KeyAllRosters
}
