package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/agent"
	"github.com/boddenberg/recruit-assist-go/internal/ai"
	"github.com/boddenberg/recruit-assist-go/internal/config"
	"github.com/boddenberg/recruit-assist-go/internal/handler"
	"github.com/boddenberg/recruit-assist-go/internal/infra/cache"
	"github.com/boddenberg/recruit-assist-go/internal/infra/llm"
	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"
	"github.com/boddenberg/recruit-assist-go/internal/infra/resilience"
	"github.com/boddenberg/recruit-assist-go/internal/port"
	"github.com/boddenberg/recruit-assist-go/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagAutoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&flagAutoMigrate, "auto-migrate", false, "Migrate the SQL schema before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("store_backend", cfg.StoreBackend),
		zap.Bool("ai_enabled", cfg.AIEnabled()),
		zap.Bool("redis_cache", cfg.RedisURL != ""),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("llm_timeout", cfg.LLMTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Store ---
	store, sqlStore, closeStore, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if flagAutoMigrate && sqlStore != nil {
		if err := sqlStore.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		logger.Info("schema migrated")
	}

	// --- AI ---
	var completer port.Completer
	if cfg.AIEnabled() {
		completer = llm.NewOpenAI(
			llm.Config{
				APIKey:  cfg.OpenAIAPIKey,
				BaseURL: cfg.OpenAIBaseURL,
				Model:   cfg.OpenAIModel,
				Timeout: cfg.LLMTimeout,
			},
			&http.Client{Timeout: cfg.LLMTimeout},
			resilience.NewCircuitBreaker("openai", logger),
			resilience.NewBulkhead(cfg.MaxConcurrency),
			metrics,
			logger,
		)
	} else {
		logger.Warn("OPENAI_API_KEY not set, AI features run in placeholder mode")
	}
	aiSvc := ai.NewService(completer, metrics, logger)

	agentConfigs, err := agent.LoadOverrides(cfg.AgentConfigPath)
	if err != nil {
		return err
	}
	registry := agent.NewRegistry(agentConfigs, aiSvc, logger)

	// --- Cache ---
	insightCache, closeCache := newInsightCache(cmd.Context(), cfg, logger)
	defer closeCache()

	// --- Services ---
	history := service.NewInsightsHistory(store, service.SnapshotPolicyFrom(cfg.Snapshot), cfg.Snapshot.WriteTimeout, metrics, logger)
	insights := service.NewInsightsService(store, service.NewContextBuilder(store, metrics, logger), aiSvc, history, insightCache, metrics, logger)

	router := handler.NewRouter(handler.Services{
		Auth:     service.NewAuthService(store, cfg.JWTSecret, cfg.JWTAccessTTL, logger),
		Profile:  service.NewProfileService(store, logger),
		Actions:  service.NewActionService(store, metrics, logger),
		Agents:   service.NewAgentService(registry, store, insights, metrics, logger),
		Insights: insights,
		Store:    store,
	}, cfg.AllowedOrigins, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced shutdown", zap.Error(err))
	}
	// let pending snapshot writes land before the store closes
	history.Wait()

	logger.Info("server stopped")
	return nil
}

// newInsightCache prefers Redis when REDIS_URL is set and reachable.
func newInsightCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (port.Cache[service.InsightBundle], func()) {
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err == nil {
			logger.Info("insight cache: redis")
			return cache.NewRedis[service.InsightBundle](rdb, "recruit:", cfg.CacheTTL, logger), func() { _ = rdb.Close() }
		}
		logger.Warn("redis unavailable, falling back to in-memory cache", zap.Error(err))
	}
	c := cache.New[service.InsightBundle](cfg.CacheTTL)
	return c, c.Close
}
