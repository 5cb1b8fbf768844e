package core

import (
	"time"

	"digibouquet/internal/i18n"
)

const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080
	// DefaultFloodLimitPerMinute is the default number of bouquets a client may create per minute.
	DefaultFloodLimitPerMinute = 6
	// DefaultCacheSize is the default number of bouquets kept in the read cache.
	DefaultCacheSize = 1000
	// DefaultKnownIDFalsePositiveRate is the default false positive rate of the known-ID filter.
	DefaultKnownIDFalsePositiveRate = 0.001
	// DefaultKnownIDCapacity is the expected number of stored bouquets the filter is sized for.
	DefaultKnownIDCapacity = 100000
	// DefaultLookupTimeoutSecs bounds song info lookups.
	DefaultLookupTimeoutSecs = 10
)

type Config struct {
	Spotify SpotifyConfig
	Server  ServerConfig
	Store   StoreConfig
	Log     LogConfig
	App     AppConfig
}

// SpotifyConfig holds client-credentials for song info lookups. Empty disables the API.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
}

// Enabled reports whether Spotify API credentials are configured.
func (c SpotifyConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StoreConfig struct {
	Path                     string
	CacheSize                int
	KnownIDCapacity          int
	KnownIDFalsePositiveRate float64
}

type LogConfig struct {
	Level  string
	Format string
}

type AppConfig struct {
	// PublicBaseURL prefixes share links, e.g. https://digibouquet.example.
	PublicBaseURL       string
	Language            string
	FloodLimitPerMinute int
	LookupTimeoutSecs   int
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         DefaultServerPort,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Path:                     "./digibouquet.db",
			CacheSize:                DefaultCacheSize,
			KnownIDCapacity:          DefaultKnownIDCapacity,
			KnownIDFalsePositiveRate: DefaultKnownIDFalsePositiveRate,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		App: AppConfig{
			PublicBaseURL:       "http://localhost:8080",
			Language:            i18n.DefaultLanguage,
			FloodLimitPerMinute: DefaultFloodLimitPerMinute,
			LookupTimeoutSecs:   DefaultLookupTimeoutSecs,
		},
	}
}
