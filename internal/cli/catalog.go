package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the company dataset",
	}
	c.AddCommand(catalogCheckCmd())
	return c
}

func catalogCheckCmd() *cobra.Command {
	var file string

	c := &cobra.Command{
		Use:   "check",
		Short: "Load and index the dataset, failing on duplicates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadEnv()
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg, file)
			if err != nil {
				return err
			}
			pool := cat.Eligible(cfg.EligibleBadge)
			if pool.Len() == 0 {
				return fmt.Errorf("no companies carry the %q badge", cfg.EligibleBadge)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK version=%s companies=%d eligible=%d badge=%s\n",
				cat.Version(), cat.Len(), pool.Len(), cfg.EligibleBadge)
			return nil
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "Catalog file (defaults to CATALOG_FILE or the embedded dataset)")
	return c
}
