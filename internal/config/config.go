package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Server struct {
	Port              string `json:"port" env:"PORT"`
	RequestTimeoutSec int    `json:"request_timeout_sec" env:"REQUEST_TIMEOUT_SEC"`
	MaxBodyBytes      int64  `json:"max_body_bytes" env:"MAX_BODY_BYTES"`
}

// Feed points at the upstream websocket API.
type Feed struct {
	Endpoint       string `json:"endpoint" env:"ENDPOINT"`
	AppID          int    `json:"app_id" env:"APP_ID"`
	Language       string `json:"language" env:"LANGUAGE"`
	Origin         string `json:"origin" env:"ORIGIN"`
	DialTimeoutSec int    `json:"dial_timeout_sec" env:"DIAL_TIMEOUT_SEC"`
}

// Limits gates history calls to the feed. MaxRequestsPerMinute caps calls
// across all symbols; MinRequestIntervalSec spaces calls for the same symbol.
type Limits struct {
	MaxRequestsPerMinute  int `json:"max_requests_per_minute" env:"MAX_RPM"`
	Burst                 int `json:"burst" env:"BURST"`
	MinRequestIntervalSec int `json:"min_request_interval_sec" env:"MIN_INTERVAL_SEC"`
}

type Cache struct {
	TTLSeconds int `json:"ttl_sec" env:"TTL_SEC"`
	MaxItems   int `json:"max_items" env:"MAX_ITEMS"`
}

type Redis struct {
	Addr          string `json:"addr" env:"ADDR"`
	Password      string `json:"password" env:"PASSWORD"`
	DB            int    `json:"db" env:"DB"`
	ChannelPrefix string `json:"channel_prefix" env:"CHANNEL_PREFIX"`
}

// Stream lists what the streamer subscribes to.
type Stream struct {
	Symbols     []string `json:"symbols" env:"SYMBOLS" envSeparator:","`
	Style       string   `json:"style" env:"STYLE"`
	Granularity int      `json:"granularity" env:"GRANULARITY"`
	Count       int      `json:"count" env:"COUNT"`
}

type Log struct {
	Level string `json:"level" env:"LEVEL"`
}

type Config struct {
	Server Server `json:"server" envPrefix:"SERVER_"`
	Feed   Feed   `json:"feed" envPrefix:"FEED_"`
	Limits Limits `json:"limits" envPrefix:"FEED_"`
	Cache  Cache  `json:"cache" envPrefix:"CACHE_"`
	Redis  Redis  `json:"redis" envPrefix:"REDIS_"`
	Stream Stream `json:"stream" envPrefix:"STREAM_"`
	Log    Log    `json:"log" envPrefix:"LOG_"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10, MaxBodyBytes: 1 << 20},
		Feed: Feed{
			Endpoint:       "wss://ws.derivws.com/websockets/v3",
			AppID:          1089,
			Language:       "EN",
			DialTimeoutSec: 5,
		},
		Limits: Limits{MaxRequestsPerMinute: 60, Burst: 5},
		Cache:  Cache{TTLSeconds: 2, MaxItems: 1000},
		Redis:  Redis{Addr: "localhost:6379", ChannelPrefix: "quotes:"},
		Stream: Stream{Style: "ticks", Count: 1000, Granularity: 60},
		Log:    Log{Level: "info"},
	}
}

// Load layers configuration: defaults, then the JSON file at path (or
// ./config.json when path is empty), then a .env file, then the environment.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// SplitList splits a comma-separated flag value, dropping blanks and
// surrounding spaces.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
