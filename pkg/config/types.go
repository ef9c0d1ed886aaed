package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent minimart configuration stored as
// config.toml in the .minimart/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Storage   StorageConfig   `toml:"storage"`
	API       APIConfig       `toml:"api"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Search    SearchConfig    `toml:"search"`
	Events    EventsConfig    `toml:"events"`
}

// StorageConfig selects and configures the product store backend.
type StorageConfig struct {
	Provider    string `toml:"provider,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen    string `toml:"listen,omitempty"`
	UploadDir string `toml:"upload_dir,omitempty"`
}

// EmbeddingConfig holds embedding provider settings. The API key is never
// written to config.toml; it only arrives via the environment.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
	APIKey     string `toml:"-"`
}

// SearchConfig tunes the semantic search resolver.
type SearchConfig struct {
	Threshold      float64 `toml:"threshold,omitempty"`
	CandidateLimit int     `toml:"candidate_limit,omitempty"`
	MaxResults     int     `toml:"max_results,omitempty"`
}

// EventsConfig holds product event publishing settings.
type EventsConfig struct {
	Provider string `toml:"provider,omitempty"`
	Brokers  string `toml:"brokers,omitempty"`
	Topic    string `toml:"topic,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.provider": {
		get: func(c *Config) string { return c.Storage.Provider },
		set: func(c *Config, v string) error { c.Storage.Provider = v; return nil },
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get: func(c *Config) string { return c.Storage.PostgresDSN },
		set: func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"api.upload_dir": {
		get: func(c *Config) string { return c.API.UploadDir },
		set: func(c *Config, v string) error { c.API.UploadDir = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"search.threshold": {
		get: func(c *Config) string {
			if c.Search.Threshold == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Search.Threshold, 'f', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for search.threshold: %w", err)
			}
			c.Search.Threshold = f
			return nil
		},
	},
	"search.candidate_limit": {
		get: func(c *Config) string {
			if c.Search.CandidateLimit == 0 {
				return ""
			}
			return strconv.Itoa(c.Search.CandidateLimit)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for search.candidate_limit: %w", err)
			}
			c.Search.CandidateLimit = n
			return nil
		},
	},
	"search.max_results": {
		get: func(c *Config) string {
			if c.Search.MaxResults == 0 {
				return ""
			}
			return strconv.Itoa(c.Search.MaxResults)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for search.max_results: %w", err)
			}
			c.Search.MaxResults = n
			return nil
		},
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error { c.Events.Provider = v; return nil },
	},
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}
