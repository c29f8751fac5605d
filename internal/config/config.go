package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Bridge   BridgeConfig
	Worker   WorkerConfig
	Redis    RedisConfig
	LogLevel slog.Level
}

type ServerConfig struct {
	Address string
}

type StoreConfig struct {
	Path string
}

type BridgeConfig struct {
	URL            string
	Headless       bool
	AuthState      []byte
	DeliverTimeout time.Duration
}

type WorkerConfig struct {
	Interval  time.Duration
	AutoStart bool
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

func LoadAll() (*Config, error) {
	bridgeURL := os.Getenv("BRIDGE_URL")
	if bridgeURL == "" {
		return nil, fmt.Errorf("missing required env var: BRIDGE_URL")
	}

	pollMs, err := getEnvInt("POLL_INTERVAL_MS", 15000)
	if err != nil {
		return nil, err
	}
	deliverMs, err := getEnvInt("DELIVER_TIMEOUT_MS", 45000)
	if err != nil {
		return nil, err
	}
	autoStart, err := getEnvBool("WORKER_AUTOSTART", true)
	if err != nil {
		return nil, err
	}
	headless, err := getEnvBool("HEADLESS", true)
	if err != nil {
		return nil, err
	}
	authState, err := getEnvBase64("SESSION_AUTH_STATE")
	if err != nil {
		return nil, err
	}
	level, err := getLogLevel("LOG_LEVEL", slog.LevelInfo)
	if err != nil {
		return nil, err
	}
	redisCfg, err := loadRedisConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDRESS", ":8080"),
		},
		Store: StoreConfig{
			Path: getEnv("DATA_FILE", "data/queue.json"),
		},
		Bridge: BridgeConfig{
			URL:            bridgeURL,
			Headless:       headless,
			AuthState:      authState,
			DeliverTimeout: time.Duration(deliverMs) * time.Millisecond,
		},
		Worker: WorkerConfig{
			Interval:  time.Duration(pollMs) * time.Millisecond,
			AutoStart: autoStart,
		},
		Redis:    redisCfg,
		LogLevel: level,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRedisConfig() (RedisConfig, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}, nil
	}

	db, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return RedisConfig{}, err
	}
	ttlSeconds, err := getEnvInt("REDIS_TTL_SECONDS", 86400)
	if err != nil {
		return RedisConfig{}, err
	}

	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		TTL:      time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func validate(cfg *Config) error {
	if cfg.Worker.Interval <= 0 {
		return fmt.Errorf("POLL_INTERVAL_MS must be > 0")
	}
	if cfg.Bridge.DeliverTimeout <= 0 {
		return fmt.Errorf("DELIVER_TIMEOUT_MS must be > 0")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for env %s: %s", key, v)
	}
	return i, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for env %s: %s", key, v)
	}
	return b, nil
}

func getEnvBase64(key string) ([]byte, error) {
	v := os.Getenv(key)
	if v == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 for env %s: %v", key, err)
	}
	return b, nil
}

func getLogLevel(key string, def slog.Level) (slog.Level, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return 0, fmt.Errorf("invalid log level for env %s: %s", key, v)
	}
	return level, nil
}
