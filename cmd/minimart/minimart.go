// Package minimartcmder
package minimartcmder

import (
	"github.com/spf13/cobra"

	backfillcmder "github.com/minimartco/minimart/cmd/minimart/backfill"
	configcmder "github.com/minimartco/minimart/cmd/minimart/config"
	seedcmder "github.com/minimartco/minimart/cmd/minimart/seed"
	servecmder "github.com/minimartco/minimart/cmd/minimart/serve"
	versioncmder "github.com/minimartco/minimart/cmd/version"
)

const minimartLongDesc string = `Minimart is a product catalog with semantic search.

Run the API server with:
  minimart serve       Run the catalog API server

Maintain the catalog with:
  minimart seed        Seed demo products
  minimart backfill    Embed products missing an embedding
  minimart config      Manage persistent configuration`

const minimartShortDesc string = "Minimart - Product Catalog"

func NewMinimartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minimart",
		Short: minimartShortDesc,
		Long:  minimartLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .minimart/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(backfillcmder.NewBackfillCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
