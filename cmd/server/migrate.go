package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hongminglow/faithpath-be/internal/config"
	"github.com/hongminglow/faithpath-be/internal/logging"
	"github.com/hongminglow/faithpath-be/internal/storage/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd.Context(), func(ctx context.Context, store *postgres.Store, cfg config.Config) error {
					log, err := logging.New(cfg.IsProduction())
					if err != nil {
						return err
					}
					defer func() { _ = log.Sync() }()
					return store.Migrate(ctx, log)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withStore(cmd.Context(), func(ctx context.Context, store *postgres.Store, cfg config.Config) error {
					log, err := logging.New(cfg.IsProduction())
					if err != nil {
						return err
					}
					defer func() { _ = log.Sync() }()
					return store.Rollback(ctx, log)
				})
			},
		},
	)
	return cmd
}

func withStore(ctx context.Context, fn func(context.Context, *postgres.Store, config.Config) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer store.Close()
	return fn(ctx, store, cfg)
}
