// Package cohere implements pkg/embeddings' Embedder client for Cohere's
// embed API.
package cohere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/minimartco/minimart/pkg/embeddings"
)

const (
	// DefaultEmbeddingModel is the default model used for embeddings.
	DefaultEmbeddingModel = "embed-english-v3.0"

	// DefaultBaseURL is the default Cohere API URL.
	DefaultBaseURL = "https://api.cohere.com"

	// DefaultTimeout bounds a single embed call so a stalled provider
	// cannot block a request indefinitely.
	DefaultTimeout = 30 * time.Second
)

// Embedder wraps Cohere's embedding API.
type Embedder struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// EmbedderConfig holds configuration for the Cohere embedder.
type EmbedderConfig struct {
	// BaseURL is the Cohere API URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKey is the Cohere API key. Required.
	APIKey string

	// Model is the embedding model to use (e.g., "embed-english-v3.0").
	// Defaults to DefaultEmbeddingModel if empty.
	Model string

	// Timeout is the per-request timeout. Defaults to DefaultTimeout if zero.
	Timeout time.Duration
}

// embedRequest is the request body for Cohere's v2 embed API.
type embedRequest struct {
	Model          string   `json:"model"`
	Texts          []string `json:"texts"`
	InputType      string   `json:"input_type"`
	EmbeddingTypes []string `json:"embedding_types"`
}

// embedResponse is the response from Cohere's v2 embed API.
type embedResponse struct {
	Embeddings struct {
		Float [][]float32 `json:"float"`
	} `json:"embeddings"`
}

// NewEmbedder creates a new embedder using Cohere's embed API.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cohere API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Embedder{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Embed converts text into a vector embedding. The mode maps onto Cohere's
// input_type field ("search_document" for indexing, "search_query" for
// querying).
func (e *Embedder) Embed(ctx context.Context, text string, mode embeddings.Mode) ([]float32, error) {
	reqBody := embedRequest{
		Model:          e.model,
		Texts:          []string{text},
		InputType:      string(mode),
		EmbeddingTypes: []string{"float"},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", embeddings.ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/v2/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", embeddings.ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", embeddings.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: cohere returned status %d: %s", embeddings.ErrUnavailable, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", embeddings.ErrUnavailable, err)
	}

	if len(embedResp.Embeddings.Float) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", embeddings.ErrUnavailable)
	}

	return embedResp.Embeddings.Float[0], nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// Ensure Embedder implements embeddings.Embedder
var _ embeddings.Embedder = (*Embedder)(nil)
