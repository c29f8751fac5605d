package config

import (
	"encoding/base64"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func clearTestEnv(t *testing.T) {
	t.Helper()

	for _, key := range []string{
		"SERVER_ADDRESS",
		"DATA_FILE",
		"BRIDGE_URL",
		"POLL_INTERVAL_MS",
		"DELIVER_TIMEOUT_MS",
		"WORKER_AUTOSTART",
		"HEADLESS",
		"SESSION_AUTH_STATE",
		"LOG_LEVEL",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"REDIS_TTL_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadAll_Defaults(t *testing.T) {
	clearTestEnv(t)
	t.Setenv("BRIDGE_URL", "http://localhost:9222")

	cfg, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}

	if cfg.Server.Address != ":8080" {
		t.Fatalf("unexpected Server.Address default: %q", cfg.Server.Address)
	}
	if cfg.Store.Path != "data/queue.json" {
		t.Fatalf("unexpected Store.Path default: %q", cfg.Store.Path)
	}
	if cfg.Bridge.URL != "http://localhost:9222" {
		t.Fatalf("unexpected Bridge.URL: %q", cfg.Bridge.URL)
	}
	if !cfg.Bridge.Headless {
		t.Fatalf("expected Headless default true")
	}
	if cfg.Bridge.AuthState != nil {
		t.Fatalf("expected no auth state by default, got %q", cfg.Bridge.AuthState)
	}
	if cfg.Bridge.DeliverTimeout != 45*time.Second {
		t.Fatalf("unexpected DeliverTimeout default: %v", cfg.Bridge.DeliverTimeout)
	}
	if cfg.Worker.Interval != 15*time.Second {
		t.Fatalf("unexpected Worker.Interval default: %v", cfg.Worker.Interval)
	}
	if !cfg.Worker.AutoStart {
		t.Fatalf("expected AutoStart default true")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected LogLevel default: %v", cfg.LogLevel)
	}
	if cfg.Redis.Enabled {
		t.Fatalf("expected Redis disabled when REDIS_ADDR not set")
	}
}

func TestLoadAll_Overrides(t *testing.T) {
	clearTestEnv(t)

	authState := []byte(`{"session":"blob"}`)

	t.Setenv("BRIDGE_URL", "http://bridge:4000")
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("DATA_FILE", "/var/lib/webdispatch/queue.json")
	t.Setenv("POLL_INTERVAL_MS", "2500")
	t.Setenv("DELIVER_TIMEOUT_MS", "10000")
	t.Setenv("WORKER_AUTOSTART", "false")
	t.Setenv("HEADLESS", "false")
	t.Setenv("SESSION_AUTH_STATE", base64.StdEncoding.EncodeToString(authState))
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Fatalf("unexpected Server.Address: %q", cfg.Server.Address)
	}
	if cfg.Store.Path != "/var/lib/webdispatch/queue.json" {
		t.Fatalf("unexpected Store.Path: %q", cfg.Store.Path)
	}
	if cfg.Worker.Interval != 2500*time.Millisecond {
		t.Fatalf("unexpected Worker.Interval: %v", cfg.Worker.Interval)
	}
	if cfg.Bridge.DeliverTimeout != 10*time.Second {
		t.Fatalf("unexpected DeliverTimeout: %v", cfg.Bridge.DeliverTimeout)
	}
	if cfg.Worker.AutoStart {
		t.Fatalf("expected AutoStart false")
	}
	if cfg.Bridge.Headless {
		t.Fatalf("expected Headless false")
	}
	if string(cfg.Bridge.AuthState) != string(authState) {
		t.Fatalf("unexpected AuthState: %q", cfg.Bridge.AuthState)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("unexpected LogLevel: %v", cfg.LogLevel)
	}
}

func TestLoadAll_WithRedis(t *testing.T) {
	clearTestEnv(t)

	t.Setenv("BRIDGE_URL", "http://localhost:9222")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_TTL_SECONDS", "42")

	cfg, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}

	if !cfg.Redis.Enabled {
		t.Fatalf("expected Redis enabled")
	}
	if cfg.Redis.Address != "localhost:6379" {
		t.Fatalf("unexpected Redis.Address: %q", cfg.Redis.Address)
	}
	if cfg.Redis.Password != "secret" {
		t.Fatalf("unexpected Redis.Password: %q", cfg.Redis.Password)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("unexpected Redis.DB: %d", cfg.Redis.DB)
	}
	if cfg.Redis.TTL != 42*time.Second {
		t.Fatalf("unexpected Redis.TTL: %v", cfg.Redis.TTL)
	}
}

func TestLoadAll_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantMsg string
	}{
		{
			name:    "missing BRIDGE_URL",
			env:     map[string]string{},
			wantMsg: "BRIDGE_URL",
		},
		{
			name: "non-numeric interval",
			env: map[string]string{
				"BRIDGE_URL":       "http://localhost:9222",
				"POLL_INTERVAL_MS": "soon",
			},
			wantMsg: "POLL_INTERVAL_MS",
		},
		{
			name: "zero interval",
			env: map[string]string{
				"BRIDGE_URL":       "http://localhost:9222",
				"POLL_INTERVAL_MS": "0",
			},
			wantMsg: "POLL_INTERVAL_MS",
		},
		{
			name: "bad bool",
			env: map[string]string{
				"BRIDGE_URL":       "http://localhost:9222",
				"WORKER_AUTOSTART": "sometimes",
			},
			wantMsg: "WORKER_AUTOSTART",
		},
		{
			name: "bad auth state base64",
			env: map[string]string{
				"BRIDGE_URL":         "http://localhost:9222",
				"SESSION_AUTH_STATE": "%%%not-base64%%%",
			},
			wantMsg: "SESSION_AUTH_STATE",
		},
		{
			name: "bad log level",
			env: map[string]string{
				"BRIDGE_URL": "http://localhost:9222",
				"LOG_LEVEL":  "loud",
			},
			wantMsg: "LOG_LEVEL",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearTestEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, err := LoadAll()
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("expected error mentioning %s, got: %v", tc.wantMsg, err)
			}
		})
	}
}
