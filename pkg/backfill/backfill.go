// Package backfill computes embeddings for products that don't have one.
// Products created while the embedding provider was down, or imported before
// semantic search existed, stay findable by keyword search only; a backfill
// pass brings them into the vector index.
package backfill

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/minimartco/minimart/pkg/catalog"
	"github.com/minimartco/minimart/pkg/embeddings"
	"github.com/minimartco/minimart/pkg/storage"
)

// Options configures backfill behavior.
type Options struct {
	// DryRun reports what would be embedded without writing anything.
	DryRun bool
}

// Backfiller embeds products with missing embeddings.
type Backfiller struct {
	store    storage.Store
	embedder embeddings.Embedder
	options  Options
	logger   *zap.Logger
}

// NewBackfiller creates a Backfiller over an already-open store and embedder.
// The caller owns both and closes them after the run.
func NewBackfiller(store storage.Store, embedder embeddings.Embedder, opts Options, logger *zap.Logger) *Backfiller {
	return &Backfiller{
		store:    store,
		embedder: embedder,
		options:  opts,
		logger:   logger,
	}
}

// Run embeds every product whose embedding is missing. A provider failure on
// one product is counted and skipped rather than aborting the run, so a
// flaky provider still makes forward progress; rerunning is safe because
// only products still missing an embedding are picked up again.
func (b *Backfiller) Run(ctx context.Context) (*Result, error) {
	products, err := b.store.ListMissingEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing products missing embeddings: %w", err)
	}

	result := &Result{Scanned: len(products)}

	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		text := catalog.EmbeddingText(p.Name, p.Category, p.Description)

		if b.options.DryRun {
			b.logger.Info("would embed product",
				zap.Int("id", p.ID),
				zap.String("name", p.Name),
			)
			result.Embedded++
			continue
		}

		vector, err := b.embedder.Embed(ctx, text, embeddings.ModeDocument)
		if err != nil {
			b.logger.Warn("embedding product failed",
				zap.Int("id", p.ID),
				zap.Error(err),
			)
			result.Failed++
			continue
		}

		if err := b.store.SetEmbedding(ctx, p.ID, vector); err != nil {
			// The product may have been deleted mid-run.
			if storage.IsNotFound(err) {
				b.logger.Warn("product disappeared during backfill", zap.Int("id", p.ID))
				result.Failed++
				continue
			}
			return result, fmt.Errorf("storing embedding for product %d: %w", p.ID, err)
		}

		b.logger.Debug("embedded product", zap.Int("id", p.ID))
		result.Embedded++
	}

	return result, nil
}
