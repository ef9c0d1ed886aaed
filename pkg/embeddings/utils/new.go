// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"
	"time"

	"github.com/minimartco/minimart/pkg/embeddings"
	"github.com/minimartco/minimart/pkg/embeddings/cohere"
	"github.com/minimartco/minimart/pkg/embeddings/ollama"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	APIKey       string
	Model        string
	Timeout      time.Duration
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case "cohere":
		return cohere.NewEmbedder(cohere.EmbedderConfig{
			BaseURL: o.TargetURL,
			APIKey:  o.APIKey,
			Model:   o.Model,
			Timeout: o.Timeout,
		})
	case "ollama":
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
			Timeout: o.Timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
