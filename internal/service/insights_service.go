package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/ai"
	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var insightsTracer = otel.Tracer("service/insights")

const (
	insightsCacheName    = "insights"
	recentActivityWindow = 7 * 24 * time.Hour
	recentActivityLimit  = 20
)

// InsightBundle is the cached output of the two model calls behind the
// insights page.
type InsightBundle struct {
	Sentiment *domain.Sentiment `json:"sentiment"`
	Insight   *domain.Insight   `json:"insight"`
}

// InsightsService serves the insights page and the enhanced context that
// agents are prompted with.
type InsightsService struct {
	store   port.ActivityStore
	builder *ContextBuilder
	ai      *ai.Service
	history *InsightsHistory
	cache   port.Cache[InsightBundle]
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewInsightsService(
	store port.ActivityStore,
	builder *ContextBuilder,
	aiSvc *ai.Service,
	history *InsightsHistory,
	cache port.Cache[InsightBundle],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *InsightsService {
	return &InsightsService{
		store:   store,
		builder: builder,
		ai:      aiSvc,
		history: history,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

func cacheKey(userID string) string {
	return "insights:" + userID
}

// ============================================================
// Overview: GET /api/user/insights
// ============================================================

func (s *InsightsService) Overview(ctx context.Context, userID string) (*domain.InsightsOverview, error) {
	ctx, span := insightsTracer.Start(ctx, "InsightsService.Overview")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	uc, sessions, err := s.builder.build(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("build user context: %w", err)
	}
	if uc == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID, Message: "User profile not found"}
	}

	bundle, cached := s.cache.Get(cacheKey(userID))
	if cached {
		s.incr(true)
	} else {
		s.incr(false)
		bundle.Sentiment = s.ai.AnalyzeConversationSentiment(ctx, sessions)
		bundle.Insight = s.ai.GenerateUserInsights(ctx, uc, bundle.Sentiment)
		if bundle.Insight != nil || bundle.Sentiment != nil {
			s.cache.Set(cacheKey(userID), bundle)
		}
		s.history.SaveSnapshotAsync(ctx, userID, bundle.Insight, bundle.Sentiment, uc.TotalExperience(), uc.ConversationInsights)
	}
	span.SetAttributes(attribute.Bool("cache.hit", cached))

	return &domain.InsightsOverview{
		Profile:          uc.Profile,
		Progress:         uc.Progress,
		Activity:         uc.Activity,
		Usage:            uc.Usage,
		Conversations:    uc.Conversations,
		Sentiment:        bundle.Sentiment,
		Insights:         bundle.Insight,
		FormattedContext: FormatForPrompt(uc, domain.AgentRecruitment),
		RecentActivities: s.recentActivities(ctx, userID),
	}, nil
}

func (s *InsightsService) recentActivities(ctx context.Context, userID string) []domain.RecentActivity {
	rows, err := s.store.ListActivitySince(ctx, userID, time.Now().UTC().Add(-recentActivityWindow), recentActivityLimit)
	if err != nil {
		s.logger.Warn("failed to list recent activity", zap.String("user_id", userID), zap.Error(err))
		return []domain.RecentActivity{}
	}
	out := make([]domain.RecentActivity, 0, len(rows))
	for _, a := range rows {
		out = append(out, domain.RecentActivity{
			Type:      a.Type,
			AgentType: a.AgentType,
			Action:    a.Action,
			Page:      a.Page,
			CreatedAt: a.CreatedAt,
		})
	}
	return out
}

// History: GET /api/user/insights/history
func (s *InsightsService) History(ctx context.Context, userID string, filter domain.HistoryFilter) (*domain.InsightsHistoryResponse, error) {
	return s.history.History(ctx, userID, filter)
}

// ============================================================
// EnhancedContext: prompt context for agents
// ============================================================

// EnhancedContext returns nil when the user has no profile or the context
// cannot be read. Insights come from the cache only; a chat turn never
// waits on the insight model calls.
func (s *InsightsService) EnhancedContext(ctx context.Context, userID string, current domain.AgentType) *domain.EnhancedContext {
	ctx, span := insightsTracer.Start(ctx, "InsightsService.EnhancedContext")
	defer span.End()

	uc, err := s.builder.Build(ctx, userID)
	if err != nil {
		s.logger.Warn("enhanced context unavailable", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if uc == nil {
		return nil
	}

	ec := &domain.EnhancedContext{
		Profile:   &uc.Profile,
		Formatted: FormatForPrompt(uc, current),
	}
	if bundle, ok := s.cache.Get(cacheKey(userID)); ok {
		s.incr(true)
		ec.Insights = bundle.Insight
		ec.Sentiment = bundle.Sentiment
	}
	return ec
}

// Invalidate drops the cached insights of a user.
func (s *InsightsService) Invalidate(userID string) {
	s.cache.Delete(cacheKey(userID))
}

func (s *InsightsService) incr(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.IncrCacheHit(insightsCacheName)
	} else {
		s.metrics.IncrCacheMiss(insightsCacheName)
	}
}
