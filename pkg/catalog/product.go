// Package catalog defines the product domain model shared by the API,
// storage drivers, and the search resolver.
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Product is a persisted catalog entry. Embedding is a cache derived from
// the name/category/description triple at the time of the last write and is
// never serialized to API clients.
type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	ImageURL    *string   `json:"image_url"`
	Embedding   []float32 `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Draft carries the mutable fields of a product on its way into the store.
// ID and CreatedAt are assigned by the store.
type Draft struct {
	Name        string
	Price       float64
	Description string
	Category    string
	ImageURL    *string
	Embedding   []float32
}

// ValidationError reports a rejected draft. The API layer maps it to a 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Categories is the controlled vocabulary offered by the submission form.
// CategoryOther admits a free-form value.
var Categories = []string{
	"Home",
	"Kitchen",
	"Electronics",
	"Clothing",
	"Toys",
	"Books",
	"Sports",
	"Beauty",
	CategoryOther,
}

// CategoryOther is the vocabulary entry that unlocks free-form categories.
const CategoryOther = "Other"

// Validate checks the draft's required fields.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if d.Price <= 0 {
		return ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	return nil
}

// EmbeddingText builds the canonical embedding input for a product. The
// embedding stored alongside a product must always equal the embedding of
// this exact string, so any change to name, category, or description
// requires recomputation.
func (d *Draft) EmbeddingText() string {
	return EmbeddingText(d.Name, d.Category, d.Description)
}

// EmbeddingText joins the searchable text fields into the embedding input.
func EmbeddingText(name, category, description string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{name, category, description} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
