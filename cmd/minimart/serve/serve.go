// Package servecmder provides the serve command for running the catalog API
// server.
package servecmder

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/minimartco/minimart/api"
	"github.com/minimartco/minimart/api/search"
	"github.com/minimartco/minimart/pkg/config"
	embeddingutils "github.com/minimartco/minimart/pkg/embeddings/utils"
	eventstreamutils "github.com/minimartco/minimart/pkg/eventstream/utils"
	"github.com/minimartco/minimart/pkg/logger"
	storageutils "github.com/minimartco/minimart/pkg/storage/utils"
)

const serveLongDesc string = `Run the minimart API server.

Serves the product CRUD endpoints, the search endpoint, and uploaded
product images. The store, embedding provider, and event publisher are
selected via config.toml, MINIMART_ environment variables, or flags.

Examples:
  minimart serve
  minimart serve --listen :9090 --sqlite ./minimart.sqlite
  minimart serve --storage-provider postgres --postgres "postgres://localhost/minimart"`

const serveShortDesc string = "Run the minimart API server"

type serveCommander struct {
	listen            string
	uploadDir         string
	storageProvider   string
	sqlitePath        string
	postgresDSN       string
	embeddingProvider string
	embeddingTarget   string
	embeddingModel    string
	embeddingDims     uint
	eventsProvider    string
	eventsBrokers     string
	eventsTopic       string

	debug  bool
	logger *zap.Logger
}

var serveFlags = []string{
	config.FlagListen,
	config.FlagUploadDir,
	config.FlagStorageProvider,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagEventsProvider,
	config.FlagEventsBrokers,
	config.FlagEventsTopic,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)

			return cmder.run(config.FromViper(v))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagUploadDir, &cmder.uploadDir)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embeddingProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsProvider, &cmder.eventsProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsBrokers, &cmder.eventsBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsTopic, &cmder.eventsTopic)

	return cmd
}

func (c *serveCommander) run(cfg *config.Config) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storageutils.NewStore(ctx, &storageutils.NewStoreOpts{
		Provider:    cfg.Storage.Provider,
		SQLitePath:  cfg.Storage.SQLitePath,
		PostgresDSN: cfg.Storage.PostgresDSN,
		Dimensions:  cfg.Embedding.Dimensions,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer store.Close()

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		APIKey:       cfg.Embedding.APIKey,
		Model:        cfg.Embedding.Model,
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		Provider: cfg.Events.Provider,
		Brokers:  cfg.Events.Brokers,
		Topic:    cfg.Events.Topic,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	server, err := api.NewServer(
		api.Config{
			ListenAddr: cfg.API.Listen,
			UploadDir:  cfg.API.UploadDir,
			Search: search.Options{
				CandidateLimit: cfg.Search.CandidateLimit,
				Threshold:      cfg.Search.Threshold,
				MaxResults:     cfg.Search.MaxResults,
			},
		},
		store,
		embedder,
		publisher,
		c.logger,
	)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		c.logger.Info("received signal, shutting down")
		return server.Shutdown()
	}
}
