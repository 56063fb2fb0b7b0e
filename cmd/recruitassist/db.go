package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long:  `Runs the schema migration of the SQL backend. Supabase schemas are managed in Supabase itself.`,
	RunE:  runMigrate,
}

var dbcheckCmd = &cobra.Command{
	Use:   "dbcheck",
	Short: "Connect to the database and print row counts",
	RunE:  runDBCheck,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	_, sqlStore, closeFn, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()
	if sqlStore == nil {
		return fmt.Errorf("migrate: backend %q has no managed schema", cfg.StoreBackend)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	if err := sqlStore.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("schema migrated", zap.String("driver", cfg.DatabaseDriver))
	return nil
}

func runDBCheck(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	store, _, closeFn, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	start := time.Now()
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("dbcheck: connect: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "connected to %s backend in %s\n", cfg.StoreBackend, time.Since(start).Round(time.Millisecond))

	counts, err := store.Counts(ctx)
	if err != nil {
		return fmt.Errorf("dbcheck: count rows: %w", err)
	}
	tables := make([]string, 0, len(counts))
	for t := range counts {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	for _, t := range tables {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-20s %d\n", t, counts[t])
	}
	return nil
}
