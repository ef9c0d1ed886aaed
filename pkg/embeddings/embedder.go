// Package embeddings
package embeddings

import "context"

// Mode biases the embedding model toward indexing or querying semantics
// for providers that distinguish the two.
type Mode string

const (
	// ModeDocument is used when embedding catalog entries for storage.
	ModeDocument Mode = "search_document"

	// ModeQuery is used when embedding a user's search query.
	ModeQuery Mode = "search_query"
)

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string, mode Mode) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
