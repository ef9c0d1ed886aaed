// Package configcmder provides the config command for managing persistent
// minimart configuration stored in the .minimart/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent minimart configuration.

Configuration is stored as config.toml in the .minimart/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.provider, storage.sqlite_path, storage.postgres_dsn,
  api.listen, api.upload_dir,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  search.threshold, search.candidate_limit, search.max_results,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  minimart config set <key> <value>    Set a configuration value
  minimart config get <key>            Get a configuration value
  minimart config list                 List all configuration values

Examples:
  minimart config set embedding.provider cohere
  minimart config set search.threshold 0.25
  minimart config get storage.provider
  minimart config list`

const configShortDesc string = "Manage persistent minimart configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
