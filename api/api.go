package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/minimartco/minimart/api/search"
	"github.com/minimartco/minimart/pkg/assets"
	"github.com/minimartco/minimart/pkg/embeddings"
	"github.com/minimartco/minimart/pkg/eventstream"
	"github.com/minimartco/minimart/pkg/storage"
)

// maxUploadBytes caps multipart request bodies, which bounds image size.
const maxUploadBytes = 10 << 20

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server is the API server for managing and searching the product catalog.
type Server struct {
	config    Config
	store     storage.Store
	embedder  embeddings.Embedder
	publisher eventstream.Publisher
	resolver  *search.Resolver
	images    *assets.Store
	logger    *zap.Logger
	app       *fiber.App
}

// NewServer creates a new API server.
// The store, embedder, and publisher are injected so they can be shared
// with the CLI commands (e.g. backfill against the same database).
func NewServer(
	config Config,
	store storage.Store,
	embedder embeddings.Embedder,
	publisher eventstream.Publisher,
	logger *zap.Logger,
) (*Server, error) {
	images, err := assets.NewStore(config.UploadDir, logger)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             maxUploadBytes,
	})

	s := &Server{
		config:    config,
		store:     store,
		embedder:  embedder,
		publisher: publisher,
		resolver:  search.NewResolver(store, embedder, config.Search, logger),
		images:    images,
		logger:    logger,
		app:       app,
	}

	app.Get("/ping", s.handlePing)

	app.Get("/api/products", s.handleListProducts)
	// The search route must be registered before /:id so "search" is not
	// captured as a product id.
	app.Get("/api/products/search", s.handleSearch)
	app.Get("/api/products/:id", s.handleGetProduct)
	app.Post("/api/products", s.handleCreateProduct)
	app.Put("/api/products/:id", s.handleUpdateProduct)
	app.Delete("/api/products/:id", s.handleDeleteProduct)

	app.Static(assets.URLPrefix, images.Dir())

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("uploads", s.images.Dir()),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
