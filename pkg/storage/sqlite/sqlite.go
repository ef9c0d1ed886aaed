// Package sqlite provides a SQLite-backed product store using sqlite-vec
// for nearest-neighbor search over product embeddings.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/minimartco/minimart/pkg/catalog"
	"github.com/minimartco/minimart/pkg/storage"
)

// Store implements storage.Store using SQLite with sqlite-vec.
// The products table holds the relational fields; embeddings live in a vec0
// virtual table whose rowid equals the product id.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Config holds configuration for the SQLite store.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewStore creates a new SQLite product store backed by sqlite-vec.
func NewStore(c Config, logger *zap.Logger) (*Store, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			price REAL NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			image_url TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating products table: %w", err)
	}

	// The vec0 virtual table for KNN queries. rowid mirrors products.id,
	// so a product has an embedding iff its rowid exists here.
	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS product_embeddings USING vec0(embedding float[%d] distance_metric=cosine)`,
		c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite product store initialized",
		zap.String("db_path", c.DBPath),
		zap.Uint("dimensions", c.Dimensions),
		zap.String("vec_version", vecVersion),
	)

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// deserializeFloat32 converts a little-endian byte slice back to a float32 slice.
func deserializeFloat32(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d: must be divisible by 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}

const productColumns = `id, name, price, description, category, image_url, created_at`

// scanProduct reads one product row from the given scanner.
func scanProduct(scan func(dest ...any) error) (*catalog.Product, error) {
	var (
		p        catalog.Product
		imageURL sql.NullString
		created  time.Time
	)
	if err := scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Category, &imageURL, &created); err != nil {
		return nil, err
	}
	if imageURL.Valid {
		p.ImageURL = &imageURL.String
	}
	p.CreatedAt = created.UTC()
	return &p, nil
}

// Insert persists a draft, assigning a new id.
func (s *Store) Insert(ctx context.Context, draft *catalog.Draft) (*catalog.Product, error) {
	if draft == nil {
		return nil, errors.New("cannot insert nil draft")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var imageURL any
	if draft.ImageURL != nil {
		imageURL = *draft.ImageURL
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO products(name, price, description, category, image_url) VALUES (?, ?, ?, ?, ?)`,
		draft.Name, draft.Price, draft.Description, draft.Category, imageURL,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting product id: %w", err)
	}

	if draft.Embedding != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_embeddings(rowid, embedding) VALUES (?, ?)`,
			id, serializeFloat32(draft.Embedding),
		); err != nil {
			return nil, fmt.Errorf("inserting embedding for product %d: %w", id, err)
		}
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id,
	)
	p, err := scanProduct(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("reading inserted product: %w", err)
	}
	p.Embedding = draft.Embedding

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	s.logger.Debug("inserted product", zap.Int("id", p.ID))

	return p, nil
}

// Update replaces the mutable fields of an existing product.
func (s *Store) Update(ctx context.Context, id int, draft *catalog.Draft) (*catalog.Product, error) {
	if draft == nil {
		return nil, errors.New("cannot update with nil draft")
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var imageURL any
	if draft.ImageURL != nil {
		imageURL = *draft.ImageURL
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE products SET name = ?, price = ?, description = ?, category = ?, image_url = ? WHERE id = ?`,
		draft.Name, draft.Price, draft.Description, draft.Category, imageURL, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating product %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking update of product %d: %w", id, err)
	}
	if affected == 0 {
		return nil, storage.NotFoundError{ID: id}
	}

	// vec0 does not support UPDATE, so replace via DELETE + INSERT.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM product_embeddings WHERE rowid = ?`, id,
	); err != nil {
		return nil, fmt.Errorf("deleting old embedding for product %d: %w", id, err)
	}
	if draft.Embedding != nil {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_embeddings(rowid, embedding) VALUES (?, ?)`,
			id, serializeFloat32(draft.Embedding),
		); err != nil {
			return nil, fmt.Errorf("re-inserting embedding for product %d: %w", id, err)
		}
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id,
	)
	p, err := scanProduct(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("reading updated product: %w", err)
	}
	p.Embedding = draft.Embedding

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return p, nil
}

// GetByID retrieves a product by id, including its stored embedding.
func (s *Store) GetByID(ctx context.Context, id int) (*catalog.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id,
	)
	p, err := scanProduct(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	var embBlob []byte
	err = s.db.QueryRowContext(ctx,
		`SELECT embedding FROM product_embeddings WHERE rowid = ?`, id,
	).Scan(&embBlob)
	if err == nil && len(embBlob) > 0 {
		p.Embedding, _ = deserializeFloat32(embBlob)
	}

	return p, nil
}

// Delete removes a product row and its embedding entirely.
func (s *Store) Delete(ctx context.Context, id int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM product_embeddings WHERE rowid = ?`, id,
	); err != nil {
		return fmt.Errorf("deleting embedding for product %d: %w", id, err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting product %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete of product %d: %w", id, err)
	}
	if affected == 0 {
		return storage.NotFoundError{ID: id}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// ListAll returns every product, newest first. List results do not carry
// embeddings; use GetByID when the stored vector is needed.
func (s *Store) ListAll(ctx context.Context) ([]*catalog.Product, error) {
	return s.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY id DESC`,
	)
}

// KeywordSearch returns products matching any term in name or description,
// newest first. Matching is done with instr over lowered columns so terms
// are plain substrings, never LIKE patterns.
func (s *Store) KeywordSearch(ctx context.Context, terms []string) ([]*catalog.Product, error) {
	if len(terms) == 0 {
		return s.ListAll(ctx)
	}

	conds := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms)*2)
	for _, term := range terms {
		t := strings.ToLower(term)
		conds = append(conds, `(instr(lower(name), ?) > 0 OR instr(lower(description), ?) > 0)`)
		args = append(args, t, t)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE ` +
		strings.Join(conds, " OR ") + ` ORDER BY id DESC`

	return s.queryProducts(ctx, query, args...)
}

// VectorSearch runs a KNN query via vec0 MATCH, joining back to products.
func (s *Store) VectorSearch(ctx context.Context, queryVector []float32, limit int) ([]storage.Match, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			p.id, p.name, p.price, p.description, p.category, p.image_url, p.created_at,
			e.distance
		FROM product_embeddings e
		INNER JOIN products p ON p.id = e.rowid
		WHERE e.embedding MATCH ?
			AND e.k = ?
		ORDER BY e.distance, p.id
	`, serializeFloat32(queryVector), limit)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var matches []storage.Match
	for rows.Next() {
		var (
			p        catalog.Product
			imageURL sql.NullString
			created  time.Time
			distance float64
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.Category, &imageURL, &created, &distance); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		if imageURL.Valid {
			p.ImageURL = &imageURL.String
		}
		p.CreatedAt = created.UTC()

		matches = append(matches, storage.Match{Product: &p, Distance: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matches: %w", err)
	}

	s.logger.Debug("vector search", zap.Int("results", len(matches)))

	return matches, nil
}

// ListMissingEmbeddings returns products without an embedding, oldest first.
func (s *Store) ListMissingEmbeddings(ctx context.Context) ([]*catalog.Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id NOT IN (SELECT rowid FROM product_embeddings)
		ORDER BY id ASC
	`)
}

// SetEmbedding stores an embedding for an existing product.
func (s *Store) SetEmbedding(ctx context.Context, id int, embedding []float32) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM products WHERE id = ?`, id,
	).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NotFoundError{ID: id}
		}
		return fmt.Errorf("checking product %d: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM product_embeddings WHERE rowid = ?`, id,
	); err != nil {
		return fmt.Errorf("deleting old embedding for product %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO product_embeddings(rowid, embedding) VALUES (?, ?)`,
		id, serializeFloat32(embedding),
	); err != nil {
		return fmt.Errorf("inserting embedding for product %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Close releases resources held by the store.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]*catalog.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []*catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}

	return products, nil
}

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)
