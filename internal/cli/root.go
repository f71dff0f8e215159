package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/robalobadob/ycdle/internal/catalog"
	"github.com/robalobadob/ycdle/internal/config"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ycdle",
		Short:        "Daily company-guessing game server",
		SilenceUsage: true,
	}
	cmd.AddCommand(serveCmd(), selectCmd(), catalogCmd(), debugTokenCmd())
	return cmd
}

// loadEnv reads configuration and sets up logging for a subcommand.
func loadEnv() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	config.SetupLogging(cfg)
	return cfg, nil
}

// loadCatalog loads path, or the configured catalog file when path is empty.
func loadCatalog(cfg config.Config, path string) (*catalog.Catalog, error) {
	if path == "" {
		path = cfg.CatalogFile
	}
	return catalog.Load(path)
}
