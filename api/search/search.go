// Package search resolves free-text catalog queries. It decides between
// semantic (embedding) search, keyword fallback, and a full listing, and
// merges the outcome into a single ranked result list. It is used by the
// REST API endpoint and the backing CLI command.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/minimartco/minimart/pkg/catalog"
	"github.com/minimartco/minimart/pkg/embeddings"
	"github.com/minimartco/minimart/pkg/storage"
)

// ErrUnavailable is returned when the embedding provider cannot service the
// query. The request fails as a whole: there is no silent keyword-only
// degradation when embedding fails, because a degraded answer is
// indistinguishable from a good one to the caller.
var ErrUnavailable = errors.New("search unavailable")

// Mode describes which strategy produced the results.
type Mode string

const (
	// ModeAll is a full listing for empty queries.
	ModeAll Mode = "all"

	// ModeSemantic is an embedding-ranked result list.
	ModeSemantic Mode = "semantic"

	// ModeKeyword is the unranked keyword fallback.
	ModeKeyword Mode = "keyword"
)

// Options tunes the resolver. The threshold and caps are empirical knobs,
// not contracts; they come from configuration.
type Options struct {
	// CandidateLimit is how many nearest neighbors to pull from the store
	// before thresholding. Defaults to DefaultCandidateLimit.
	CandidateLimit int

	// Threshold is the maximum cosine distance accepted as a relevant
	// semantic match. Defaults to DefaultThreshold.
	Threshold float64

	// MaxResults caps the semantic result list. Defaults to DefaultMaxResults.
	MaxResults int
}

const (
	// DefaultCandidateLimit is the default nearest-neighbor candidate pool size.
	DefaultCandidateLimit = 15

	// DefaultThreshold is the default maximum accepted cosine distance.
	DefaultThreshold = 0.32

	// DefaultMaxResults is the default semantic result cap.
	DefaultMaxResults = 7
)

// Result is a single resolved product. Similarity is only set for semantic
// matches (1 - distance); keyword and full-listing results are unranked.
type Result struct {
	Product    *catalog.Product `json:"product"`
	Similarity *float64         `json:"similarity,omitempty"`
}

// Output is the resolved result list for one query.
type Output struct {
	Query   string   `json:"query"`
	Mode    Mode     `json:"mode"`
	Results []Result `json:"results"`
	Count   int      `json:"count"`
}

// Resolver orchestrates embedding generation, vector lookup, distance
// thresholding, and keyword fallback.
type Resolver struct {
	store    storage.Store
	embedder embeddings.Embedder
	opts     Options
	logger   *zap.Logger
}

// NewResolver creates a resolver over the given store and embedder.
// Zero-valued options fall back to the package defaults.
func NewResolver(store storage.Store, embedder embeddings.Embedder, opts Options, logger *zap.Logger) *Resolver {
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = DefaultCandidateLimit
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}

	return &Resolver{
		store:    store,
		embedder: embedder,
		opts:     opts,
		logger:   logger,
	}
}

// Resolve turns a free-text query into an ordered, duplicate-free product
// list.
//
// An empty or whitespace-only query returns the full listing without
// touching the embedding provider. Otherwise the query is embedded and the
// nearest candidates are thresholded; if nothing survives the threshold the
// raw query tokens are retried as a keyword search, so queries unrelated to
// any catalog item don't surface irrelevant "nearest" products.
func (r *Resolver) Resolve(ctx context.Context, query string) (*Output, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		products, err := r.store.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing products: %w", err)
		}
		return output(query, ModeAll, unranked(products)), nil
	}

	queryVector, err := r.embedder.Embed(ctx, trimmed, embeddings.ModeQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", ErrUnavailable, err)
	}

	matches, err := r.store.VectorSearch(ctx, queryVector, r.opts.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}

	// The store returns matches ascending by distance with ties broken by
	// id, so thresholding and capping preserve the ranking.
	kept := make([]Result, 0, r.opts.MaxResults)
	for _, m := range matches {
		if m.Distance >= r.opts.Threshold {
			continue
		}
		if len(kept) == r.opts.MaxResults {
			break
		}
		similarity := 1 - m.Distance
		kept = append(kept, Result{Product: m.Product, Similarity: &similarity})
	}

	if len(kept) == 0 {
		r.logger.Debug("no semantic match within threshold, falling back to keywords",
			zap.String("query", trimmed),
			zap.Int("candidates", len(matches)),
			zap.Float64("threshold", r.opts.Threshold),
		)

		products, err := r.store.KeywordSearch(ctx, catalog.Tokenize(trimmed))
		if err != nil {
			return nil, fmt.Errorf("keyword fallback: %w", err)
		}
		return output(query, ModeKeyword, unranked(products)), nil
	}

	r.logger.Debug("semantic search resolved",
		zap.String("query", trimmed),
		zap.Int("results", len(kept)),
	)

	return output(query, ModeSemantic, kept), nil
}

func unranked(products []*catalog.Product) []Result {
	results := make([]Result, 0, len(products))
	for _, p := range products {
		results = append(results, Result{Product: p})
	}
	return results
}

func output(query string, mode Mode, results []Result) *Output {
	return &Output{
		Query:   query,
		Mode:    mode,
		Results: results,
		Count:   len(results),
	}
}
