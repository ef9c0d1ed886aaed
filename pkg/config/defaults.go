package config

import (
	"github.com/minimartco/minimart/api/search"
)

const (
	defaultStorageProvider = "sqlite"
	defaultSQLitePath      = "minimart.sqlite"

	defaultAPIListen = ":8080"
	defaultUploadDir = "uploads"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "minimart.products"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider:   defaultStorageProvider,
			SQLitePath: defaultSQLitePath,
		},
		API: APIConfig{
			Listen:    defaultAPIListen,
			UploadDir: defaultUploadDir,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Search: SearchConfig{
			Threshold:      search.DefaultThreshold,
			CandidateLimit: search.DefaultCandidateLimit,
			MaxResults:     search.DefaultMaxResults,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
