package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"
	"github.com/boddenberg/recruit-assist-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles the use cases served over HTTP. A nil Store skips the
// database probe of /healthz.
type Services struct {
	Auth     *service.AuthService
	Profile  *service.ProfileService
	Actions  *service.ActionService
	Agents   *service.AgentService
	Insights *service.InsightsService
	Store    Pinger
}

// NewRouter creates the HTTP router with all routes and middleware.
// allowedOrigins feeds the CORS policy; "*" admits any origin.
func NewRouter(svcs Services, allowedOrigins []string, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger, metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Rejected-Components"},
		MaxAge:         300,
	}))
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svcs.Store, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/metrics/ai", aiMetricsHandler(metrics))
		r.Post("/ui/render", renderHandler(logger))

		// =============================================
		// Agents (token optional)
		// =============================================
		r.Route("/agents/{type}", func(r chi.Router) {
			r.Get("/", initialMessageHandler(svcs.Agents, logger))
			r.Group(func(r chi.Router) {
				r.Use(OptionalJWTMiddleware(svcs.Auth, logger))
				r.Post("/", agentChatHandler(svcs.Agents, logger))
				r.Get("/sessions/{sessionId}", agentSessionHandler(svcs.Agents, logger))
			})
		})

		// =============================================
		// Auth
		// =============================================
		r.Post("/auth/register", registerHandler(svcs.Auth, logger))
		r.Post("/auth/login", loginHandler(svcs.Auth, logger))

		// =============================================
		// Signed-in user
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			r.Post("/actions", actionHandler(svcs.Actions, logger))

			r.Get("/profile/update", getProfileHandler(svcs.Profile, logger))
			r.Post("/profile/update", updateProfileHandler(svcs.Profile, svcs.Insights, logger))
			r.Get("/progress", progressHandler(svcs.Profile, logger))
			r.Get("/activity", activityHandler(svcs.Profile, logger))

			r.Get("/user/insights", insightsHandler(svcs.Insights, logger))
			r.Get("/user/insights/history", insightsHistoryHandler(svcs.Insights, logger))
		})
	})

	return r
}

// ============================================================
// Health
// ============================================================

func healthzHandler(store Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		services := []domain.ServiceHealth{
			{Name: "api", Status: "healthy", LastChecked: now},
		}

		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			start := time.Now()
			err := store.Ping(ctx)
			cancel()
			status := "healthy"
			if err != nil {
				status = "unhealthy"
				logger.Warn("health: store ping failed", zap.Error(err))
			}
			services = append(services, domain.ServiceHealth{
				Name:        "database",
				Status:      status,
				LatencyMs:   time.Since(start).Milliseconds(),
				LastChecked: now,
			})
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overall = s.Status
			}
		}
		code := http.StatusOK
		if overall == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// aiMetricsHandler serves GET /api/metrics/ai.
func aiMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetAISnapshot())
	}
}
