package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"inkwell/api/internal/config"
	"inkwell/api/internal/search"
	"inkwell/api/internal/store"
)

func openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	return store.Open(ctx, cfg.DatabaseURL, store.Pool{MaxOpen: cfg.DBMaxOpen, MaxIdle: cfg.DBMaxIdle})
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := cfg.Logger(os.Stdout)
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := store.ApplyMigrations(cmd.Context(), db, os.DirFS(cfg.MigrationsDir))
			if err != nil {
				return err
			}
			logger.Info().Strs("versions", applied).Int("count", len(applied)).Msg("migrations applied")
			return nil
		},
	}
}

func newReindexCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.MeiliURL) == "" {
				return fmt.Errorf("reindex: MEILI_URL is not set")
			}
			logger := cfg.Logger(os.Stdout)
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			meiliClient := search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey, logger)
			defer meiliClient.Close()
			n, err := search.NewService(meiliClient, search.NewPgFTS(db), logger).ReindexAll(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info().Int("articles", n).Msg("search index rebuilt")
			return nil
		},
	}
}
