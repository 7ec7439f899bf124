package config

import (
	"os"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "MCBOARD_TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "MCBOARD_TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetenvFloat(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		def      float64
		expected float64
	}{
		{name: "valid float", value: "0.5", def: 2, expected: 0.5},
		{name: "integer", value: "3", def: 2, expected: 3},
		{name: "invalid uses default", value: "fast", def: 2, expected: 2},
		{name: "missing uses default", value: "", def: 2, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MCBOARD_TEST_FLOAT", tt.value)
			if result := getenvFloat("MCBOARD_TEST_FLOAT", tt.def); result != tt.expected {
				t.Errorf("getenvFloat() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestGetenvAllowEmpty(t *testing.T) {
	if got := getenvAllowEmpty("MCBOARD_TEST_UNSET_DIR", "log"); got != "log" {
		t.Errorf("unset: got %q, want default", got)
	}
	t.Setenv("MCBOARD_TEST_EMPTY_DIR", "")
	if got := getenvAllowEmpty("MCBOARD_TEST_EMPTY_DIR", "log"); got != "" {
		t.Errorf("explicitly empty: got %q, want empty", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MCBOARD_YUNHU_TOKEN", "token")
	t.Setenv("MCBOARD_STORE", "")

	cfg := Load()

	if cfg.ServersFile != "servers.yaml" {
		t.Errorf("ServersFile = %q", cfg.ServersFile)
	}
	if cfg.PollInterval != 15*time.Second || cfg.StatusTimeout != 5*time.Second {
		t.Errorf("intervals = %v / %v", cfg.PollInterval, cfg.StatusTimeout)
	}
	if cfg.BoardTTL != 60*time.Second || cfg.PublishRate != 2 {
		t.Errorf("board settings = %v / %v", cfg.BoardTTL, cfg.PublishRate)
	}
	if cfg.Store != StoreFile || cfg.RosterFile != "player_temp.json" {
		t.Errorf("store = %q %q", cfg.Store, cfg.RosterFile)
	}
	if cfg.PruneInterval != 0 {
		t.Errorf("PruneInterval = %v, want disabled", cfg.PruneInterval)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("redis settings must not be read for the file store")
	}
}

func TestLoadPanics(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing token",
			env:  map[string]string{"MCBOARD_YUNHU_TOKEN": ""},
		},
		{
			name: "unknown store",
			env:  map[string]string{"MCBOARD_YUNHU_TOKEN": "t", "MCBOARD_STORE": "sqlite"},
		},
		{
			name: "redis without address",
			env:  map[string]string{"MCBOARD_YUNHU_TOKEN": "t", "MCBOARD_STORE": "redis", "MCBOARD_REDIS_ADDR": ""},
		},
		{
			name: "redis without required password",
			env: map[string]string{
				"MCBOARD_YUNHU_TOKEN":    "t",
				"MCBOARD_STORE":          "redis",
				"MCBOARD_REDIS_ADDR":     "localhost:6379",
				"MCBOARD_REDIS_PASSWORD": "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Load() should have panicked")
				}
			}()
			Load()
		})
	}
}

func TestLoadRedis(t *testing.T) {
	t.Setenv("MCBOARD_YUNHU_TOKEN", "t")
	t.Setenv("MCBOARD_STORE", "Redis")
	t.Setenv("MCBOARD_REDIS_ADDR", "localhost:6379")
	t.Setenv("MCBOARD_REDIS_PASSWORD_REQUIRED", "false")
	t.Setenv("MCBOARD_REDIS_DB", "2")

	cfg := Load()
	if cfg.Store != StoreRedis || cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Errorf("redis config = %q %q %d", cfg.Store, cfg.RedisAddr, cfg.RedisDB)
	}
}

func TestRedacted(t *testing.T) {
	cfg := &Config{YunhuToken: "secret", RedisPassword: "pw"}
	r := cfg.Redacted()
	if r.YunhuToken == "secret" || r.RedisPassword == "pw" {
		t.Errorf("Redacted() leaked secrets: %+v", r)
	}
	if cfg.YunhuToken != "secret" {
		t.Error("Redacted() modified the original")
	}
}
