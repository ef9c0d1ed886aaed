package testutils

import (
	"context"
	"fmt"

	"github.com/minimartco/minimart/pkg/catalog"
	"github.com/minimartco/minimart/pkg/storage"
	"github.com/minimartco/minimart/pkg/storage/inmemory"
)

// MockStore is a test product store. It delegates to a real in-memory store
// but allows vector search results and failures to be scripted.
type MockStore struct {
	*inmemory.Store

	// Matches overrides VectorSearch results when non-nil.
	Matches []storage.Match

	// FailVectorSearch causes VectorSearch to return an error.
	FailVectorSearch bool

	// FailKeywordSearch causes KeywordSearch to return an error.
	FailKeywordSearch bool
}

func NewMockStore() *MockStore {
	return &MockStore{
		Store: inmemory.NewStore(),
	}
}

func (m *MockStore) VectorSearch(ctx context.Context, queryVector []float32, limit int) ([]storage.Match, error) {
	if m.FailVectorSearch {
		return nil, fmt.Errorf("mock vector search failure")
	}

	if m.Matches != nil {
		if len(m.Matches) > limit {
			return m.Matches[:limit], nil
		}
		return m.Matches, nil
	}

	return m.Store.VectorSearch(ctx, queryVector, limit)
}

func (m *MockStore) KeywordSearch(ctx context.Context, terms []string) ([]*catalog.Product, error) {
	if m.FailKeywordSearch {
		return nil, fmt.Errorf("mock keyword search failure")
	}

	return m.Store.KeywordSearch(ctx, terms)
}

// Ensure MockStore implements storage.Store
var _ storage.Store = (*MockStore)(nil)
