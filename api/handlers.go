package api

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/minimartco/minimart/pkg/catalog"
	"github.com/minimartco/minimart/pkg/embeddings"
	"github.com/minimartco/minimart/pkg/eventstream"
	"github.com/minimartco/minimart/pkg/storage"
)

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListProducts returns products newest first. A non-empty "search"
// query parameter narrows the listing to keyword matches; KeywordSearch
// treats an empty term set as a full listing, so short-token queries fall
// through to everything.
func (s *Server) handleListProducts(c *fiber.Ctx) error {
	var (
		products []*catalog.Product
		err      error
	)

	if q := strings.TrimSpace(c.Query("search")); q != "" {
		products, err = s.store.KeywordSearch(c.Context(), catalog.Tokenize(q))
	} else {
		products, err = s.store.ListAll(c.Context())
	}
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(map[string]any{
		"count":    len(products),
		"products": products,
	})
}

// handleGetProduct returns a single product by its id.
func (s *Server) handleGetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	product, err := s.store.GetByID(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(product)
}

// handleCreateProduct creates a product from a multipart form. The embedding
// is computed before the insert; if the provider is down the whole create
// fails so the store never holds a product invisible to semantic search.
func (s *Server) handleCreateProduct(c *fiber.Ctx) error {
	draft, err := parseDraft(c)
	if err != nil {
		return s.respondError(c, err)
	}
	if err := draft.Validate(); err != nil {
		return s.respondError(c, err)
	}

	vector, err := s.embedder.Embed(c.Context(), draft.EmbeddingText(), embeddings.ModeDocument)
	if err != nil {
		return s.respondError(c, err)
	}
	draft.Embedding = vector

	if file, ferr := c.FormFile("image"); ferr == nil && file != nil {
		url, err := s.images.Save(file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		draft.ImageURL = &url
	}

	product, err := s.store.Insert(c.Context(), draft)
	if err != nil {
		if draft.ImageURL != nil {
			_ = s.images.Remove(*draft.ImageURL)
		}
		return s.respondError(c, err)
	}

	s.publishEvent(c.Context(), eventstream.EventTypeProductCreated, product.ID, product)

	return c.Status(fiber.StatusCreated).JSON(product)
}

// handleUpdateProduct replaces a product's fields from a multipart form.
// A new image replaces the old one; keep_image=true retains it; otherwise
// the image is cleared. The embedding is recomputed from the new fields and
// a provider failure rejects the update entirely, leaving the product
// unchanged.
func (s *Server) handleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	existing, err := s.store.GetByID(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	draft, err := parseDraft(c)
	if err != nil {
		return s.respondError(c, err)
	}
	if err := draft.Validate(); err != nil {
		return s.respondError(c, err)
	}

	vector, err := s.embedder.Embed(c.Context(), draft.EmbeddingText(), embeddings.ModeDocument)
	if err != nil {
		return s.respondError(c, err)
	}
	draft.Embedding = vector

	var staleImage *string
	switch {
	case hasFormFile(c, "image"):
		file, _ := c.FormFile("image")
		url, err := s.images.Save(file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		}
		draft.ImageURL = &url
		staleImage = existing.ImageURL

	case c.FormValue("keep_image") == "true":
		draft.ImageURL = existing.ImageURL

	default:
		staleImage = existing.ImageURL
	}

	product, err := s.store.Update(c.Context(), id, draft)
	if err != nil {
		if draft.ImageURL != nil && draft.ImageURL != existing.ImageURL {
			_ = s.images.Remove(*draft.ImageURL)
		}
		return s.respondError(c, err)
	}

	if staleImage != nil {
		if err := s.images.Remove(*staleImage); err != nil {
			s.logger.Warn("removing replaced image failed",
				zap.String("url", *staleImage),
				zap.Error(err),
			)
		}
	}

	s.publishEvent(c.Context(), eventstream.EventTypeProductUpdated, product.ID, product)

	return c.JSON(product)
}

// handleDeleteProduct removes a product and its stored image.
func (s *Server) handleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return s.respondError(c, err)
	}

	existing, err := s.store.GetByID(c.Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}

	if err := s.store.Delete(c.Context(), id); err != nil {
		return s.respondError(c, err)
	}

	if existing.ImageURL != nil {
		if err := s.images.Remove(*existing.ImageURL); err != nil {
			s.logger.Warn("removing deleted product's image failed",
				zap.String("url", *existing.ImageURL),
				zap.Error(err),
			)
		}
	}

	s.publishEvent(c.Context(), eventstream.EventTypeProductDeleted, id, nil)

	return c.JSON(map[string]any{"deleted": id})
}

// publishEvent emits a product change event. Publishing is best effort: a
// broker outage must not fail a write that already committed.
func (s *Server) publishEvent(ctx context.Context, eventType string, id int, product *catalog.Product) {
	event := eventstream.NewProductEvent(eventType, id, product)
	if err := s.publisher.PublishProduct(ctx, event); err != nil {
		s.logger.Warn("publishing product event failed",
			zap.String("event_type", eventType),
			zap.Int("product_id", id),
			zap.Error(err),
		)
	}
}

// respondError maps domain errors onto HTTP status codes.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	var validation catalog.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: validation.Error()})
	}

	if storage.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	}

	if errors.Is(err, embeddings.ErrUnavailable) {
		s.logger.Error("embedding provider unavailable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{Error: "embedding provider unavailable"})
	}

	s.logger.Error("request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
}

// parseID extracts the :id path parameter.
func parseID(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, catalog.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

// parseDraft builds a product draft from the multipart form fields.
func parseDraft(c *fiber.Ctx) (*catalog.Draft, error) {
	priceStr := strings.TrimSpace(c.FormValue("price"))
	if priceStr == "" {
		return nil, catalog.ValidationError{Field: "price", Reason: "is required"}
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		return nil, catalog.ValidationError{Field: "price", Reason: "must be a number"}
	}

	category := strings.TrimSpace(c.FormValue("category"))
	if category == "" {
		category = catalog.CategoryOther
	}

	return &catalog.Draft{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Price:       price,
		Description: strings.TrimSpace(c.FormValue("description")),
		Category:    category,
	}, nil
}

// hasFormFile reports whether the request carries a non-empty file field.
func hasFormFile(c *fiber.Ctx, field string) bool {
	file, err := c.FormFile(field)
	return err == nil && file != nil
}
