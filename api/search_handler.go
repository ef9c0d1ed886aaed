package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/minimartco/minimart/api/search"
)

// handleSearch handles GET /api/products/search requests.
// Query parameters:
//   - query (optional): the search query text; empty returns the full listing
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := c.Query("query")

	output, err := s.resolver.Resolve(c.Context(), query)
	if err != nil {
		if errors.Is(err, search.ErrUnavailable) {
			s.logger.Error("search unavailable", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
				Error: "search is temporarily unavailable",
			})
		}
		return s.respondError(c, err)
	}

	return c.JSON(output)
}
