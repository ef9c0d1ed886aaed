// Package storage
package storage

import (
	"context"

	"github.com/minimartco/minimart/pkg/catalog"
)

// Match pairs a product with its vector distance to a query embedding.
// Smaller distance means more similar.
type Match struct {
	Product  *catalog.Product
	Distance float64
}

// Store defines the interface for persisting and querying products in a
// storage backend. Each write touches exactly one row, so implementations
// rely on the underlying engine's row-level atomicity rather than
// application-level locking.
type Store interface {
	// Insert persists a draft, assigning a new id. The id is never reused,
	// even after the product is deleted.
	Insert(ctx context.Context, draft *catalog.Draft) (*catalog.Product, error)

	// Update replaces the mutable fields of the product with the given id.
	// Returns NotFoundError if the id is absent.
	Update(ctx context.Context, id int, draft *catalog.Draft) (*catalog.Product, error)

	// GetByID retrieves a product. Returns NotFoundError if absent.
	GetByID(ctx context.Context, id int) (*catalog.Product, error)

	// Delete removes the row entirely. Returns NotFoundError if absent.
	Delete(ctx context.Context, id int) error

	// ListAll returns every product, newest first (id descending).
	ListAll(ctx context.Context) ([]*catalog.Product, error)

	// KeywordSearch returns products where any term is a case-insensitive
	// substring of the name or description, newest first. An empty term set
	// behaves as ListAll.
	KeywordSearch(ctx context.Context, terms []string) ([]*catalog.Product, error)

	// VectorSearch returns up to limit products nearest to the query vector
	// by cosine distance, ascending, restricted to rows with an embedding.
	// Ties are broken by id ascending.
	VectorSearch(ctx context.Context, queryVector []float32, limit int) ([]Match, error)

	// ListMissingEmbeddings returns products whose embedding has not been
	// computed yet, oldest first. Used by the backfill pass.
	ListMissingEmbeddings(ctx context.Context) ([]*catalog.Product, error)

	// SetEmbedding stores an embedding for an existing product without
	// touching any other field. Returns NotFoundError if the id is absent.
	SetEmbedding(ctx context.Context, id int, embedding []float32) error

	// Close closes the store and releases any resources.
	Close() error
}
