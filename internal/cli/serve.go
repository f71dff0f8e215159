package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/ycdle/internal/catalog"
	"github.com/robalobadob/ycdle/internal/config"
	"github.com/robalobadob/ycdle/internal/daily"
	"github.com/robalobadob/ycdle/internal/db"
	"github.com/robalobadob/ycdle/internal/httpserver"
	"github.com/robalobadob/ycdle/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadEnv()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	c, err := loadCatalog(cfg, "")
	if err != nil {
		log.Error().Err(err).Msg("failed to load catalog")
		return err
	}
	src := catalog.NewSource(c)
	if cfg.CatalogWatch && cfg.CatalogFile != "" {
		err := src.Watch(ctx, cfg.CatalogFile, func(c *catalog.Catalog) {
			log.Info().Int("poolSize", c.Eligible(cfg.EligibleBadge).Len()).Msg("candidate pool refreshed")
		})
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.CatalogFile).Msg("catalog watch disabled")
		}
	}

	if cfg.DailySeed == "" {
		log.Error().Msg("DAILY_SEED is not set; daily games will fall back to unlimited")
	} else if cfg.DailySeed == config.DevSeed {
		log.Warn().Msg("using the development DAILY_SEED")
	}
	sel := daily.NewSelector(cfg.DailySeed, func() *catalog.Catalog { return src.Eligible(cfg.EligibleBadge) })

	sqlDB, err := db.OpenMigrated(cfg.DBPath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
		return err
	}
	defer sqlDB.Close()

	kv, err := openStateStore(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to open state store")
		return err
	}
	defer kv.Close()

	srv := httpserver.New(httpserver.Config{
		ClientOrigin:     cfg.ClientOrigin,
		DebugTokenSecret: cfg.DebugTokenSecret,
		OpenDebug:        !cfg.Production(),
		SolvesRatePerMin: cfg.SolvesRatePerMin,
		RequestTimeout:   cfg.RequestTimeout,
	}, httpserver.Deps{
		Catalog:  src,
		Badge:    cfg.EligibleBadge,
		Selector: sel,
		Solves:   daily.NewStore(sqlDB),
		Games:    store.NewGames(kv),
	})

	log.Info().
		Str("port", cfg.Port).
		Str("datasetVersion", c.Version()).
		Int("poolSize", src.Eligible(cfg.EligibleBadge).Len()).
		Msg("starting ycdle server")
	return srv.Start(ctx, ":"+cfg.Port)
}

func openStateStore(cfg config.Config) (store.Store, error) {
	if cfg.StateInMemory {
		return store.NewMemoryStore(), nil
	}
	return store.OpenBadger(store.BadgerConfig{
		Path:       cfg.StateDir,
		TTL:        cfg.StateTTL,
		GCInterval: 10 * time.Minute,
	})
}
