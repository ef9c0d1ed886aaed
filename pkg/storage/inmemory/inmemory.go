// Package inmemory provides a map-backed product store used by tests and
// as the default backend when no database is configured.
package inmemory

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minimartco/minimart/pkg/catalog"
	"github.com/minimartco/minimart/pkg/storage"
)

// Store implements storage.Store using an in-memory map.
type Store struct {
	// mu is a read write sync mutex for locking the product map
	mu sync.RWMutex

	// products is the in memory map of products keyed by id
	products map[int]*catalog.Product

	// nextID is the next id to assign; ids are never reused
	nextID int
}

// NewStore creates a new in-memory product store.
func NewStore() *Store {
	return &Store{
		products: make(map[int]*catalog.Product),
		nextID:   1,
	}
}

// Insert persists a draft, assigning a new id.
func (s *Store) Insert(_ context.Context, draft *catalog.Draft) (*catalog.Product, error) {
	if draft == nil {
		return nil, errors.New("cannot insert nil draft")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &catalog.Product{
		ID:          s.nextID,
		Name:        draft.Name,
		Price:       draft.Price,
		Description: draft.Description,
		Category:    draft.Category,
		ImageURL:    draft.ImageURL,
		Embedding:   cloneVector(draft.Embedding),
		CreatedAt:   time.Now().UTC(),
	}
	s.nextID++
	s.products[p.ID] = p

	return cloneProduct(p), nil
}

// Update replaces the mutable fields of an existing product.
func (s *Store) Update(_ context.Context, id int, draft *catalog.Draft) (*catalog.Product, error) {
	if draft == nil {
		return nil, errors.New("cannot update with nil draft")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	p.Name = draft.Name
	p.Price = draft.Price
	p.Description = draft.Description
	p.Category = draft.Category
	p.ImageURL = draft.ImageURL
	p.Embedding = cloneVector(draft.Embedding)

	return cloneProduct(p), nil
}

// GetByID retrieves a product by id.
func (s *Store) GetByID(_ context.Context, id int) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}

	return cloneProduct(p), nil
}

// Delete removes a product row entirely.
func (s *Store) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return storage.NotFoundError{ID: id}
	}

	delete(s.products, id)
	return nil
}

// ListAll returns every product, newest first.
func (s *Store) ListAll(_ context.Context) ([]*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked(func(*catalog.Product) bool { return true }, byIDDescending), nil
}

// KeywordSearch returns products matching any term in name or description.
func (s *Store) KeywordSearch(_ context.Context, terms []string) ([]*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(terms) == 0 {
		return s.snapshotLocked(func(*catalog.Product) bool { return true }, byIDDescending), nil
	}

	return s.snapshotLocked(func(p *catalog.Product) bool {
		name := strings.ToLower(p.Name)
		desc := strings.ToLower(p.Description)
		for _, term := range terms {
			t := strings.ToLower(term)
			if strings.Contains(name, t) || strings.Contains(desc, t) {
				return true
			}
		}
		return false
	}, byIDDescending), nil
}

// VectorSearch brute-forces cosine distance over every embedded product.
func (s *Store) VectorSearch(_ context.Context, queryVector []float32, limit int) ([]storage.Match, error) {
	if limit <= 0 {
		limit = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]storage.Match, 0, len(s.products))
	for _, p := range s.products {
		if p.Embedding == nil {
			continue
		}
		matches = append(matches, storage.Match{
			Product:  cloneProduct(p),
			Distance: cosineDistance(queryVector, p.Embedding),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Product.ID < matches[j].Product.ID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// ListMissingEmbeddings returns products without an embedding, oldest first.
func (s *Store) ListMissingEmbeddings(_ context.Context) ([]*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked(func(p *catalog.Product) bool {
		return p.Embedding == nil
	}, byIDAscending), nil
}

// SetEmbedding stores an embedding for an existing product.
func (s *Store) SetEmbedding(_ context.Context, id int, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return storage.NotFoundError{ID: id}
	}

	p.Embedding = cloneVector(embedding)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

type sortOrder int

const (
	byIDDescending sortOrder = iota
	byIDAscending
)

// snapshotLocked copies matching products out of the map in the given id
// order. Callers must hold at least a read lock.
func (s *Store) snapshotLocked(keep func(*catalog.Product) bool, order sortOrder) []*catalog.Product {
	result := make([]*catalog.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			result = append(result, cloneProduct(p))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if order == byIDAscending {
			return result[i].ID < result[j].ID
		}
		return result[i].ID > result[j].ID
	})

	return result
}

// cloneProduct returns a copy so callers can't mutate stored rows.
func cloneProduct(p *catalog.Product) *catalog.Product {
	clone := *p
	clone.Embedding = cloneVector(p.Embedding)
	if p.ImageURL != nil {
		url := *p.ImageURL
		clone.ImageURL = &url
	}
	return &clone
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

// cosineDistance returns 1 - cosine similarity, so 0 is identical and 2 is
// opposite. Mismatched or zero-magnitude vectors are treated as maximally
// distant rather than erroring, matching the SQL drivers.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 2
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)
