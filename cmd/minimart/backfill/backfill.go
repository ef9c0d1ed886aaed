// Package backfillcmder provides the `minimart backfill` CLI command.
package backfillcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minimartco/minimart/pkg/backfill"
	"github.com/minimartco/minimart/pkg/config"
	embeddingutils "github.com/minimartco/minimart/pkg/embeddings/utils"
	"github.com/minimartco/minimart/pkg/logger"
	storageutils "github.com/minimartco/minimart/pkg/storage/utils"
)

const backfillLongDesc string = `Embed products that are missing an embedding.

Products created while the embedding provider was unreachable, or imported
before semantic search existed, are only findable by keyword search. This
command embeds them so they show up in semantic results. Rerunning is safe:
only products still missing an embedding are picked up.

Examples:
  minimart backfill
  minimart backfill --dry-run
  minimart backfill --sqlite ./minimart.sqlite`

const backfillShortDesc string = "Embed products missing an embedding"

type backfillCommander struct {
	storageProvider   string
	sqlitePath        string
	postgresDSN       string
	embeddingProvider string
	embeddingTarget   string
	embeddingModel    string
	embeddingDims     uint
	dryRun            bool
}

var backfillFlags = []string{
	config.FlagStorageProvider,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

// NewBackfillCmd creates the backfill cobra command.
func NewBackfillCmd() *cobra.Command {
	cmder := &backfillCommander{}

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: backfillShortDesc,
		Long:  backfillLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, backfillFlags)

			debug, _ := cmd.Flags().GetBool("debug")
			return cmder.run(cmd.Context(), cmd, config.FromViper(v), debug)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingProv, &cmder.embeddingProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingTgt, &cmder.embeddingTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, config.Flags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	cmd.Flags().BoolVar(&cmder.dryRun, "dry-run", false, "Preview what would be embedded without writing")

	return cmd
}

func (c *backfillCommander) run(ctx context.Context, cmd *cobra.Command, cfg *config.Config, debug bool) error {
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

	if c.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "Dry run mode — no changes will be written")
	}

	b := backfill.NewBackfiller(store, embedder, backfill.Options{DryRun: c.dryRun}, log)

	result, err := b.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
	return nil
}
