package testutils

import (
	"context"
	"fmt"

	"github.com/minimartco/minimart/pkg/embeddings"
)

// EmbedCall records a single call to MockEmbedder.Embed.
type EmbedCall struct {
	Text string
	Mode embeddings.Mode
}

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	Embeddings map[string][]float32

	// FailOn causes Embed to return an error when the input text matches
	FailOn string

	// Calls records every Embed invocation in order
	Calls []EmbedCall
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
	}
}

func (m *MockEmbedder) Embed(_ context.Context, text string, mode embeddings.Mode) ([]float32, error) {
	m.Calls = append(m.Calls, EmbedCall{Text: text, Mode: mode})

	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("%w: mock embedding failure for: %s", embeddings.ErrUnavailable, text)
	}

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	// Return a default embedding for any text
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) Close() error {
	return nil
}

// Ensure MockEmbedder implements embeddings.Embedder
var _ embeddings.Embedder = (*MockEmbedder)(nil)
