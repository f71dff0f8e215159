package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/robalobadob/ycdle/internal/catalog"
	"github.com/robalobadob/ycdle/internal/daily"
)

func selectCmd() *cobra.Command {
	var (
		date   string
		offset int
		file   string
		asJSON bool
	)

	c := &cobra.Command{
		Use:   "select",
		Short: "Print the daily target for a date (no server needed)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadEnv()
			if err != nil {
				return err
			}
			at := time.Now().UTC()
			if date != "" {
				if at, err = daily.ParseDateKey(date); err != nil {
					return err
				}
			}
			cat, err := loadCatalog(cfg, file)
			if err != nil {
				return err
			}
			pool := cat.Eligible(cfg.EligibleBadge)
			sel, err := daily.NewSelector(cfg.DailySeed,
				func() *catalog.Catalog { return pool },
				daily.WithNow(func() time.Time { return at }),
			).Select(offset)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(sel)
			}
			e, _ := pool.ByID(sel.TargetID)
			fmt.Fprintf(out, "%s day=%d index=%d/%d id=%s slug=%s name=%q\n",
				sel.DateKey, sel.Day, sel.Index, sel.PoolSize, e.ID, e.Slug, e.Name)
			return nil
		},
	}

	c.Flags().StringVarP(&date, "date", "d", "", "UTC date YYYY-MM-DD (defaults to today)")
	c.Flags().IntVarP(&offset, "offset", "o", 0, "Days added before hashing")
	c.Flags().StringVarP(&file, "file", "f", "", "Catalog file (defaults to CATALOG_FILE or the embedded dataset)")
	c.Flags().BoolVar(&asJSON, "json", false, "Print the selection as JSON")
	return c
}
