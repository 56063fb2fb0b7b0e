package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/boddenberg/recruit-assist-go/internal/config"
	"github.com/boddenberg/recruit-assist-go/internal/infra/resilience"
	"github.com/boddenberg/recruit-assist-go/internal/infra/sqlstore"
	"github.com/boddenberg/recruit-assist-go/internal/infra/supabase"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"go.uber.org/zap"
)

// backend is the persistence layer plus the operational probes every
// store offers.
type backend interface {
	port.Store
	Ping(ctx context.Context) error
	Counts(ctx context.Context) (map[string]int64, error)
}

// openBackend connects the configured store. The returned close function
// is never nil.
func openBackend(cfg *config.Config, logger *zap.Logger) (backend, *sqlstore.Store, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendSupabase:
		if cfg.SupabaseURL == "" {
			return nil, nil, nil, fmt.Errorf("STORE_BACKEND=supabase requires SUPABASE_URL")
		}
		logger.Info("using Supabase as data backend", zap.String("supabase_url", cfg.SupabaseURL))
		client := supabase.NewClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.SupabaseURL,
			cfg.SupabaseAnonKey,
			cfg.SupabaseServiceKey,
			resilience.NewCircuitBreaker("supabase", logger),
			resilience.Config{
				MaxRetries:     cfg.MaxRetries,
				InitialBackoff: cfg.InitialBackoff,
				MaxConcurrency: cfg.MaxConcurrency,
			},
			logger,
		)
		return supabase.NewStore(client), nil, func() error { return nil }, nil

	case config.BackendSQL:
		logger.Info("using SQL data backend", zap.String("driver", cfg.DatabaseDriver))
		store, err := sqlstore.Open(cfg.DatabaseDriver, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, store, store.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}
