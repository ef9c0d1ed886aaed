// Package seed loads a small demo catalog so a fresh install has something
// to browse and search against.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/minimartco/minimart/pkg/catalog"
	"github.com/minimartco/minimart/pkg/embeddings"
	"github.com/minimartco/minimart/pkg/storage"
)

// DemoProducts returns the demo catalog. Descriptions are written to give
// the embedding model something to chew on.
func DemoProducts() []catalog.Draft {
	return []catalog.Draft{
		{Name: "Stoneware Coffee Mug", Price: 14.00, Category: "Kitchen",
			Description: "Hand-glazed 12oz ceramic mug, dishwasher and microwave safe"},
		{Name: "Cast Iron Skillet", Price: 42.50, Category: "Kitchen",
			Description: "Pre-seasoned 10 inch skillet for stovetop and oven cooking"},
		{Name: "Linen Throw Blanket", Price: 59.00, Category: "Home",
			Description: "Lightweight woven blanket in natural flax, machine washable"},
		{Name: "Walnut Desk Organizer", Price: 35.00, Category: "Home",
			Description: "Solid walnut tray with compartments for pens, phone, and keys"},
		{Name: "Wireless Earbuds", Price: 89.99, Category: "Electronics",
			Description: "Bluetooth earbuds with noise cancellation and 24 hour battery case"},
		{Name: "Mechanical Keyboard", Price: 120.00, Category: "Electronics",
			Description: "Tenkeyless keyboard with hot-swappable tactile switches"},
		{Name: "Merino Wool Beanie", Price: 28.00, Category: "Clothing",
			Description: "Soft ribbed knit beanie, one size, naturally odor resistant"},
		{Name: "Wooden Building Blocks", Price: 32.00, Category: "Toys",
			Description: "50 piece hardwood block set in a canvas storage bag"},
		{Name: "Field Notes Journal", Price: 12.00, Category: "Books",
			Description: "Pocket sized dot-grid notebook, 64 pages, pack of three"},
		{Name: "Yoga Mat", Price: 45.00, Category: "Sports",
			Description: "Non-slip 6mm exercise mat with carrying strap"},
	}
}

// Result reports what a seeding run did.
type Result struct {
	Inserted   int
	Unembedded int
}

// Run inserts the demo catalog. Embedding is best effort: if the provider
// is unreachable the product is still inserted and left for a later
// backfill pass, so seeding works offline.
func Run(ctx context.Context, store storage.Store, embedder embeddings.Embedder, logger *zap.Logger) (*Result, error) {
	result := &Result{}

	for _, draft := range DemoProducts() {
		draft := draft

		vector, err := embedder.Embed(ctx, draft.EmbeddingText(), embeddings.ModeDocument)
		if err != nil {
			logger.Warn("embedding demo product failed, inserting without embedding",
				zap.String("name", draft.Name),
				zap.Error(err),
			)
			result.Unembedded++
		} else {
			draft.Embedding = vector
		}

		if _, err := store.Insert(ctx, &draft); err != nil {
			return result, fmt.Errorf("inserting %q: %w", draft.Name, err)
		}
		result.Inserted++
	}

	return result, nil
}
