package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

type Config struct {
	ListenAddr string

	// Counter store
	RedisURL string

	// Report endpoint auth
	AnalyticsToken string

	// Catalog serving
	PlaylistFile string
	MusicDir     string

	// Geo analytics
	GeoIPDBPath string
	EnableGeoIP bool

	// Ingest limits
	MaxBodyBytes     int64
	IngestRatePerMin int

	ShutdownTimeout time.Duration

	LogLevel   string
	LogConsole bool
}

func Load() *Config {
	get := func(key, dfault string) string {
		v := os.Getenv(key)
		if v == "" {
			return dfault
		}
		return v
	}

	cfg := &Config{
		ListenAddr:       get("LISTEN_ADDR", ":8000"),
		RedisURL:         get("REDIS_URL", ""),
		AnalyticsToken:   get("ANALYTICS_TOKEN", ""),
		PlaylistFile:     get("PLAYLIST_FILE", ""),
		MusicDir:         get("MUSIC_DIR", ""),
		GeoIPDBPath:      get("GEOIP_DB_PATH", "./GeoLite2-City.mmdb"),
		EnableGeoIP:      get("ENABLE_GEOIP", "1") == "1",
		MaxBodyBytes:     int64Env("MAX_BODY_BYTES", 10000),
		IngestRatePerMin: intEnv("INGEST_RATE_PER_MIN", 120),
		ShutdownTimeout:  durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:         get("LOG_LEVEL", "info"),
		LogConsole:       get("LOG_CONSOLE", "0") == "1",
	}

	return cfg
}

// Validate rejects a deployment missing its required settings. Both the
// store URL and the report secret are startup-fatal when absent; an
// unconfigured secret must never fall back to an open report endpoint.
func (c *Config) Validate() error {
	var errs []error
	if c.RedisURL == "" {
		errs = append(errs, errors.New("REDIS_URL is required"))
	}
	if c.AnalyticsToken == "" {
		errs = append(errs, errors.New("ANALYTICS_TOKEN is required"))
	}
	return errors.Join(errs...)
}

func durationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func intEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}

func int64Env(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return def
}
