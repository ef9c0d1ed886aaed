// Package seedcmder provides the `minimart seed` CLI command.
package seedcmder

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/minimartco/minimart/pkg/cliui"
	"github.com/minimartco/minimart/pkg/config"
	embeddingutils "github.com/minimartco/minimart/pkg/embeddings/utils"
	"github.com/minimartco/minimart/pkg/logger"
	"github.com/minimartco/minimart/pkg/seed"
	storageutils "github.com/minimartco/minimart/pkg/storage/utils"
)

const seedLongDesc string = `Seed demo products into the catalog.

Inserts a small set of demo products across categories. Embeddings are
computed if the embedding provider is reachable; otherwise the products are
inserted unembedded and a later "minimart backfill" picks them up.

Examples:
  minimart seed
  minimart seed --sqlite ./minimart.sqlite`

const seedShortDesc string = "Seed demo products"

type seedCommander struct {
	storageProvider   string
	sqlitePath        string
	postgresDSN       string
	embeddingProvider string
	embeddingTarget   string
	embeddingModel    string
	embeddingDims     uint
}

var seedFlags = []string{
	config.FlagStorageProvider,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, seedFlags)

			debug, _ := cmd.Flags().GetBool("debug")
			return cmder.run(cmd.Context(), config.FromViper(v), debug)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embeddingProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &cmder.embeddingDims)

	return cmd
}

func (c *seedCommander) run(ctx context.Context, cfg *config.Config, debug bool) error {
	log := logger.NewLogger(debug)
	defer log.Sync()

	store, err := storageutils.NewStore(ctx, &storageutils.NewStoreOpts{
		Provider:    cfg.Storage.Provider,
		SQLitePath:  cfg.Storage.SQLitePath,
		PostgresDSN: cfg.Storage.PostgresDSN,
		Dimensions:  cfg.Embedding.Dimensions,
	}, log)
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

	var result *seed.Result
	if err := cliui.Step(os.Stdout, "Seeding demo products", func() error {
		var seedErr error
		result, seedErr = seed.Run(ctx, store, embedder, log)
		return seedErr
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s Seeded %s products\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(strconv.Itoa(result.Inserted)),
	)
	if result.Unembedded > 0 {
		fmt.Printf("  %s\n",
			cliui.DimStyle.Render(fmt.Sprintf(
				"%d products have no embedding yet; run `minimart backfill` once the provider is reachable",
				result.Unembedded,
			)),
		)
	}
	fmt.Println()

	return nil
}
