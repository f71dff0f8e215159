package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/robalobadob/ycdle/internal/httpserver"
)

func debugTokenCmd() *cobra.Command {
	var (
		ttl     time.Duration
		subject string
	)

	c := &cobra.Command{
		Use:   "debug-token",
		Short: "Issue a bearer token that unlocks /api/daily?debug=1",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadEnv()
			if err != nil {
				return err
			}
			if cfg.DebugTokenSecret == "" {
				return errors.New("DEBUG_TOKEN_SECRET is not set")
			}
			tok, err := httpserver.SignDebugToken(cfg.DebugTokenSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	c.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	c.Flags().StringVar(&subject, "subject", "operator", "Token subject")
	return c
}
