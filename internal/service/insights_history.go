package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/config"
	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var historyTracer = otel.Tracer("service/insights_history")

const historyLimit = 100

// Reasons reported by Decide.
const (
	ReasonFirstSnapshot = "first_snapshot"
	ReasonMinInterval   = "min_interval"
	ReasonEngagement    = "engagement"
	ReasonPreferences   = "preferences"
	ReasonPersonality   = "personality"
	ReasonSummary       = "summary"
	ReasonSentiment     = "sentiment"
	ReasonExperience    = "experience"
	ReasonForceSave     = "force_save"
)

// SnapshotPolicy bounds how often insight snapshots are written. A zero
// MinInterval or ForceSaveAfter disables that rule.
type SnapshotPolicy struct {
	MinInterval          time.Duration
	ForceSaveAfter       time.Duration
	EngagementScoreDelta int
	SentimentScoreDelta  float64
	ExperienceDelta      int
	SummaryLengthRatio   float64
}

func SnapshotPolicyFrom(c config.SnapshotConfig) SnapshotPolicy {
	return SnapshotPolicy{
		MinInterval:          c.MinInterval,
		ForceSaveAfter:       c.ForceSaveAfter,
		EngagementScoreDelta: c.EngagementScoreDelta,
		SentimentScoreDelta:  c.SentimentScoreDelta,
		ExperienceDelta:      c.ExperienceDelta,
		SummaryLengthRatio:   c.SummaryLengthRatio,
	}
}

// Decision is the outcome of comparing a candidate snapshot with the last one.
type Decision struct {
	Save    bool
	Reasons []string
}

// Decide reports whether candidate should be stored given the most recent
// row. It has no side effects.
func (p SnapshotPolicy) Decide(last, candidate *domain.InsightsHistory, now time.Time) Decision {
	if last == nil {
		return Decision{Save: true, Reasons: []string{ReasonFirstSnapshot}}
	}

	age := now.Sub(last.CreatedAt)
	if p.MinInterval > 0 && age < p.MinInterval {
		return Decision{Reasons: []string{ReasonMinInterval}}
	}

	var reasons []string
	if last.EngagementLevel != candidate.EngagementLevel ||
		absInt(candidate.EngagementScore-last.EngagementScore) >= p.EngagementScoreDelta {
		reasons = append(reasons, ReasonEngagement)
	}
	if sortedKey(last.Preferences) != sortedKey(candidate.Preferences) {
		reasons = append(reasons, ReasonPreferences)
	}
	if sortedKey(last.PersonalityTraits) != sortedKey(candidate.PersonalityTraits) {
		reasons = append(reasons, ReasonPersonality)
	}
	if substantialChange(last.Snapshot.Summary, candidate.Snapshot.Summary, p.SummaryLengthRatio) {
		reasons = append(reasons, ReasonSummary)
	}
	if last.SentimentLabel != candidate.SentimentLabel ||
		math.Abs(candidate.SentimentScore-last.SentimentScore) >= p.SentimentScoreDelta {
		reasons = append(reasons, ReasonSentiment)
	}
	if absInt(candidate.ExperienceTotal-last.ExperienceTotal) >= p.ExperienceDelta {
		reasons = append(reasons, ReasonExperience)
	}
	if len(reasons) == 0 && p.ForceSaveAfter > 0 && age >= p.ForceSaveAfter {
		reasons = append(reasons, ReasonForceSave)
	}
	return Decision{Save: len(reasons) > 0, Reasons: reasons}
}

func sortedKey(list []string) string {
	s := slices.Clone(list)
	slices.Sort(s)
	return strings.Join(s, "\x00")
}

// substantialChange compares summary lengths: a relative difference of at
// least ratio counts as a new summary.
func substantialChange(a, b string, ratio float64) bool {
	la, lb := len(a), len(b)
	longest := max(la, lb)
	if longest == 0 {
		return false
	}
	return float64(absInt(la-lb))/float64(longest) >= ratio
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// ============================================================
// InsightsHistory: snapshot writer and reader
// ============================================================

type InsightsHistory struct {
	store        port.InsightsStore
	policy       SnapshotPolicy
	writeTimeout time.Duration
	metrics      *observability.Metrics
	logger       *zap.Logger
	now          func() time.Time
	wg           sync.WaitGroup
}

func NewInsightsHistory(store port.InsightsStore, policy SnapshotPolicy, writeTimeout time.Duration, metrics *observability.Metrics, logger *zap.Logger) *InsightsHistory {
	return &InsightsHistory{
		store:        store,
		policy:       policy,
		writeTimeout: writeTimeout,
		metrics:      metrics,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// NewSnapshot assembles the history row for an insight and a sentiment.
func NewSnapshot(userID string, insight *domain.Insight, sentiment *domain.Sentiment, totalXP int, conv *domain.ConversationInsights) *domain.InsightsHistory {
	prefs := insight.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	traits := insight.Personality.Traits
	if traits == nil {
		traits = []string{}
	}
	return &domain.InsightsHistory{
		UserID:            userID,
		EngagementLevel:   insight.Engagement.Level,
		EngagementScore:   domain.EngagementScore(insight.Engagement.Level),
		ExperienceTotal:   totalXP,
		SentimentLabel:    sentiment.Label,
		SentimentScore:    sentiment.Score,
		Preferences:       prefs,
		PersonalityTraits: traits,
		Snapshot: domain.InsightSnapshot{
			Summary:         insight.Summary,
			Preferences:     prefs,
			Engagement:      insight.Engagement,
			Recommendations: insight.Recommendations,
			Personality:     insight.Personality,
			Sentiment: &domain.SnapshotSentiment{
				Sentiment: sentiment.Label,
				Score:     sentiment.Score,
				Summary:   sentiment.Summary,
			},
			Conversation: conv,
		},
	}
}

// SaveSnapshot writes a row when the policy says the insight changed
// enough. Nothing is stored unless both insight and sentiment are present.
func (h *InsightsHistory) SaveSnapshot(ctx context.Context, userID string, insight *domain.Insight, sentiment *domain.Sentiment, totalXP int, conv *domain.ConversationInsights) (Decision, error) {
	ctx, span := historyTracer.Start(ctx, "InsightsHistory.SaveSnapshot")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if insight == nil || sentiment == nil {
		return Decision{}, nil
	}

	last, err := h.store.LatestInsights(ctx, userID)
	if err != nil {
		h.count("failed")
		return Decision{}, fmt.Errorf("latest insights: %w", err)
	}

	candidate := NewSnapshot(userID, insight, sentiment, totalXP, conv)
	now := h.now()
	d := h.policy.Decide(last, candidate, now)
	span.SetAttributes(
		attribute.Bool("snapshot.save", d.Save),
		attribute.StringSlice("snapshot.reasons", d.Reasons),
	)
	if !d.Save {
		h.count("skipped")
		return d, nil
	}

	candidate.CreatedAt = now
	if err := h.store.CreateInsights(ctx, candidate); err != nil {
		h.count("failed")
		return d, fmt.Errorf("create insights: %w", err)
	}
	h.count("written")

	h.logger.Info("insights snapshot saved",
		zap.String("user_id", userID),
		zap.Strings("reasons", d.Reasons),
		zap.String("engagement", candidate.EngagementLevel),
		zap.Int("experience_total", totalXP),
	)
	return d, nil
}

// SaveSnapshotAsync runs SaveSnapshot in the background with its own
// timeout. Errors are logged and never reach the caller.
func (h *InsightsHistory) SaveSnapshotAsync(ctx context.Context, userID string, insight *domain.Insight, sentiment *domain.Sentiment, totalXP int, conv *domain.ConversationInsights) {
	if insight == nil || sentiment == nil {
		return
	}
	bg := context.WithoutCancel(ctx)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ctx, cancel := context.WithTimeout(bg, h.writeTimeout)
		defer cancel()
		if _, err := h.SaveSnapshot(ctx, userID, insight, sentiment, totalXP, conv); err != nil {
			h.logger.Error("failed to save insights snapshot",
				zap.String("user_id", userID),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every pending background write has finished.
func (h *InsightsHistory) Wait() {
	h.wg.Wait()
}

// History returns up to the latest 100 snapshots inside the filter window,
// oldest first.
func (h *InsightsHistory) History(ctx context.Context, userID string, filter domain.HistoryFilter) (*domain.InsightsHistoryResponse, error) {
	ctx, span := historyTracer.Start(ctx, "InsightsHistory.History")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("filter", string(filter)),
	)

	rows, err := h.store.ListInsights(ctx, userID, filter.Since(h.now()), 0)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	if len(rows) > historyLimit {
		rows = rows[len(rows)-historyLimit:]
	}
	if rows == nil {
		rows = []domain.InsightsHistory{}
	}
	return &domain.InsightsHistoryResponse{History: rows, Filter: filter}, nil
}

func (h *InsightsHistory) count(result string) {
	if h.metrics != nil {
		h.metrics.IncrSnapshot(result)
	}
}
