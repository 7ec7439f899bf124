package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

type Config struct {
	ListenAddr      string        // ex: ":8080", empty = status server disabled
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)
	LogDir    string // directory for per-run log files, empty = console only

	ServersFile    string        // path to servers.yaml
	PollInterval   time.Duration // fixed interval between poll cycles (default: 15s)
	StatusTimeout  time.Duration // bound on each status ping and query (default: 5s)
	MaxConcurrency int           // servers polled in parallel (default: 4)
	EventHistory   int           // presence events kept in memory per server (default: 50)

	YunhuToken   string        // bot token
	YunhuBaseURL string        // open API base URL
	BoardTTL     time.Duration // board expiry = now + TTL (default: 60s)
	PublishRate  float64       // board API calls per second (default: 2)

	Store         string        // "file" | "redis"
	RosterFile    string        // file backend path
	PruneInterval time.Duration // 0 = never prune stale rosters

	// Redis, only read when Store == "redis"
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedCIDRS []string // optional, restrict access to specific IP (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenAddr:      getenv("MCBOARD_LISTEN_ADDR", ":8080"),
		ShutdownTimeout: mustDuration("MCBOARD_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("MCBOARD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("MCBOARD_PRETTY_LOG", true),
		LogDir:    getenvAllowEmpty("MCBOARD_LOG_DIR", "log"),

		// Polling
		ServersFile:    getenv("MCBOARD_SERVERS_FILE", "servers.yaml"),
		PollInterval:   mustDuration("MCBOARD_POLL_INTERVAL", 15*time.Second),
		StatusTimeout:  mustDuration("MCBOARD_STATUS_TIMEOUT", 5*time.Second),
		MaxConcurrency: getenvInt("MCBOARD_MAX_CONCURRENCY", 4),
		EventHistory:   getenvInt("MCBOARD_EVENT_HISTORY", 50),

		// Board API
		YunhuToken:   requireEnv("MCBOARD_YUNHU_TOKEN"),
		YunhuBaseURL: getenv("MCBOARD_YUNHU_BASE_URL", "https://chat-go.jwzhd.com/open-apis/v1"),
		BoardTTL:     mustDuration("MCBOARD_BOARD_TTL", 60*time.Second),
		PublishRate:  getenvFloat("MCBOARD_PUBLISH_RATE", 2),

		// Roster persistence
		Store:         strings.ToLower(getenv("MCBOARD_STORE", StoreFile)),
		RosterFile:    getenv("MCBOARD_ROSTER_FILE", "player_temp.json"),
		PruneInterval: mustDuration("MCBOARD_PRUNE_INTERVAL", 0),

		// Access restrictions
		AllowedCIDRS: parseAllowedIPs(getenv("MCBOARD_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("MCBOARD_TRUST_PROXY", false),
	}

	switch cfg.Store {
	case StoreFile:
	case StoreRedis:
		loadRedis(cfg)
	default:
		panic(fmt.Sprintf("❌ FATAL: MCBOARD_STORE must be %q or %q, got %q", StoreFile, StoreRedis, cfg.Store))
	}

	if cfg.PollInterval <= 0 {
		panic("❌ FATAL: MCBOARD_POLL_INTERVAL must be positive")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

func loadRedis(cfg *Config) {
	cfg.RedisAddr = requireEnv("MCBOARD_REDIS_ADDR")
	cfg.RedisUser = getenv("MCBOARD_REDIS_USERNAME", "default")
	cfg.RedisPasswordRequired = mustBool("MCBOARD_REDIS_PASSWORD_REQUIRED", true)
	cfg.RedisPassword = getenv("MCBOARD_REDIS_PASSWORD", "")
	cfg.RedisDB = getenvInt("MCBOARD_REDIS_DB", 0)
	cfg.RedisDT = mustDuration("MCBOARD_REDIS_DIAL_TIMEOUT", 5*time.Second)
	cfg.RedisRT = mustDuration("MCBOARD_REDIS_READ_TIMEOUT", 3*time.Second)
	cfg.RedisWT = mustDuration("MCBOARD_REDIS_WRITE_TIMEOUT", 3*time.Second)
	cfg.RedisMaxWait = mustDuration("MCBOARD_REDIS_MAX_WAIT", 10*time.Second)
	cfg.RedisPingTimeout = mustDuration("MCBOARD_REDIS_PING_TIMEOUT", 5*time.Second)
	cfg.RedisPoolSize = getenvInt("MCBOARD_REDIS_POOL_SIZE", 10)
	cfg.RedisConnectTimeout = mustDuration("MCBOARD_REDIS_CONNECT_TIMEOUT", 30*time.Second)
	cfg.RedisRetryInterval = mustDuration("MCBOARD_REDIS_RETRY_INTERVAL", 2*time.Second)
	cfg.RedisWarnThreshold = getenvInt("MCBOARD_REDIS_WARN_THRESHOLD", 3)

	// Validate Redis password configuration
	if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: MCBOARD_REDIS_PASSWORD is required when MCBOARD_REDIS_PASSWORD_REQUIRED=true")
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.YunhuToken != "" {
		cp.YunhuToken = "***REDACTED***"
	}
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvAllowEmpty distinguishes unset (default) from explicitly empty.
func getenvAllowEmpty(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
