package service

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/ai"
	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var contextTracer = otel.Tracer("service/context")

const (
	trainingWindow      = 30 * 24 * time.Hour
	trainingLogLimit    = 20
	actionWindow        = 7 * 24 * time.Hour
	sessionLimit        = 50
	topicMessageWindow  = 10
	maxTopicsPerAgent   = 10
	maxEngagementAgents = 4
	maxListedTopics     = 5
)

// conversationKeywords are matched as lowercase substrings, except "it".
var conversationKeywords = []string{
	"training", "workout", "career", "benefits", "education",
	"physical", "mental", "fitness", "special forces", "it", "technology",
	"combat", "leadership", "medical", "aviation", "intelligence", "administration",
}

var wordIt = regexp.MustCompile(`\bit\b`)

// ContextBuilder aggregates everything known about a user into a
// domain.UserContext for prompting and the insights page.
type ContextBuilder struct {
	store   port.Store
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewContextBuilder(store port.Store, metrics *observability.Metrics, logger *zap.Logger) *ContextBuilder {
	return &ContextBuilder{
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Build returns nil, nil when the user has no profile yet.
func (b *ContextBuilder) Build(ctx context.Context, userID string) (*domain.UserContext, error) {
	uc, _, err := b.build(ctx, userID)
	return uc, err
}

// build also returns the sessions it read so callers can analyze them
// without a second query.
func (b *ContextBuilder) build(ctx context.Context, userID string) (*domain.UserContext, []domain.AgentSession, error) {
	ctx, span := contextTracer.Start(ctx, "ContextBuilder.Build")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := time.Now()
	defer func() {
		if b.metrics != nil {
			b.metrics.RecordRequestDuration("context_builder", time.Since(start))
		}
	}()

	profile, err := b.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		return nil, nil, nil
	}

	now := b.now()
	var (
		progress      []domain.UserProgress
		logs          []domain.TrainingLog
		recentActions int64
		sessions      []domain.AgentSession
	)

	// Each read degrades to an empty value; none of them fails the build.
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := b.store.ListProgress(gCtx, userID)
		if err != nil {
			b.readFailed("progress", userID, err)
			return nil
		}
		progress = p
		return nil
	})

	g.Go(func() error {
		l, err := b.store.ListTrainingLogs(gCtx, userID, now.Add(-trainingWindow), trainingLogLimit)
		if err != nil {
			b.readFailed("training_logs", userID, err)
			return nil
		}
		logs = l
		return nil
	})

	g.Go(func() error {
		n, err := b.store.CountActivitySince(gCtx, userID, now.Add(-actionWindow))
		if err != nil {
			b.readFailed("activity_count", userID, err)
			return nil
		}
		recentActions = n
		return nil
	})

	g.Go(func() error {
		s, err := b.store.ListSessions(gCtx, userID, sessionLimit)
		if err != nil {
			b.readFailed("sessions", userID, err)
			return nil
		}
		sessions = s
		return nil
	})

	_ = g.Wait()

	sort.SliceStable(progress, func(i, j int) bool { return progress[i].UpdatedAt.After(progress[j].UpdatedAt) })
	if progress == nil {
		progress = []domain.UserProgress{}
	}

	summaries := make([]domain.TrainingLogSummary, 0, len(logs))
	for _, l := range logs {
		summaries = append(summaries, domain.TrainingLogSummary{
			Type:      l.Type,
			Activity:  l.Activity,
			Duration:  l.Duration,
			Intensity: l.Intensity,
			CreatedAt: l.CreatedAt,
		})
	}

	uc := &domain.UserContext{
		Profile:  *domain.ProfileContextOf(profile),
		Progress: progress,
		Activity: domain.ActivityContext{
			TrainingLogs:      summaries,
			RecentActions:     recentActions,
			TotalInteractions: len(sessions),
		},
		Usage:                usageOf(sessions),
		Conversations:        conversationsOf(sessions),
		ConversationInsights: ai.ExtractConversationInsightsSimple(sessions),
	}

	b.logger.Debug("user context built",
		zap.String("user_id", userID),
		zap.Int("progress", len(progress)),
		zap.Int("training_logs", len(summaries)),
		zap.Int("sessions", len(sessions)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return uc, sessions, nil
}

func (b *ContextBuilder) readFailed(what, userID string, err error) {
	b.logger.Warn("context read failed, using empty value",
		zap.String("read", what),
		zap.String("user_id", userID),
		zap.Error(err),
	)
	if b.metrics != nil {
		b.metrics.IncrExternalError("store")
	}
}

// usageOf counts sessions per agent type. Sessions arrive most recently
// updated first; ties in the count keep that order.
func usageOf(sessions []domain.AgentSession) domain.UsageStats {
	counts := map[domain.AgentType]int{}
	last := map[domain.AgentType]time.Time{}
	var order []domain.AgentType
	for _, s := range sessions {
		if _, ok := counts[s.AgentType]; !ok {
			order = append(order, s.AgentType)
		}
		counts[s.AgentType]++
		if s.UpdatedAt.After(last[s.AgentType]) {
			last[s.AgentType] = s.UpdatedAt
		}
	}

	recent := make([]domain.AgentUsage, 0, len(order))
	for _, t := range order {
		recent = append(recent, domain.AgentUsage{AgentType: t, Count: counts[t], LastInteraction: last[t]})
	}
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Count > recent[j].Count })

	stats := domain.UsageStats{
		AgentCounts:    counts,
		TotalSessions:  len(sessions),
		RecentActivity: recent,
	}
	if len(recent) > 0 {
		stats.MostUsedAgent = recent[0].AgentType
	}
	return stats
}

func conversationsOf(sessions []domain.AgentSession) []domain.ConversationSummary {
	byType := map[domain.AgentType]*domain.ConversationSummary{}
	var order []domain.AgentType
	for _, s := range sessions {
		cs, ok := byType[s.AgentType]
		if !ok {
			cs = &domain.ConversationSummary{AgentType: s.AgentType, LastInteraction: s.UpdatedAt, Topics: []string{}}
			byType[s.AgentType] = cs
			order = append(order, s.AgentType)
		}
		cs.SessionCount++
		cs.TotalMessages += len(s.Messages)
		if s.UpdatedAt.After(cs.LastInteraction) {
			cs.LastInteraction = s.UpdatedAt
		}

		msgs := s.Messages
		if len(msgs) > topicMessageWindow {
			msgs = msgs[len(msgs)-topicMessageWindow:]
		}
		for _, m := range msgs {
			if m.Role == domain.RoleUser && m.Content != "" {
				cs.Topics = keywordTopics(cs.Topics, m.Content)
			}
		}
	}

	out := make([]domain.ConversationSummary, 0, len(order))
	for _, t := range order {
		out = append(out, *byType[t])
	}
	return out
}

func keywordTopics(topics []string, content string) []string {
	lc := strings.ToLower(content)
	for _, kw := range conversationKeywords {
		if len(topics) >= maxTopicsPerAgent {
			break
		}
		hit := strings.Contains(lc, kw)
		if kw == "it" {
			hit = wordIt.MatchString(lc)
		}
		if hit && !slices.Contains(topics, kw) {
			topics = append(topics, kw)
		}
	}
	return topics
}

// ============================================================
// FormatForPrompt
// ============================================================

// FormatForPrompt renders the context as the plain-text block injected into
// the system prompt of the given agent.
func FormatForPrompt(uc *domain.UserContext, current domain.AgentType) string {
	if uc == nil {
		return ""
	}
	var lines []string
	add := func(format string, args ...any) { lines = append(lines, fmt.Sprintf(format, args...)) }

	p := uc.Profile
	add("=== USER PROFILE ===")
	if p.Age > 0 {
		add("- Age: %d", p.Age)
	}
	if p.Location != "" {
		add("- Location: %s", p.Location)
	}
	if len(p.Interests) > 0 {
		add("- Interests: %s", strings.Join(p.Interests, ", "))
	}
	if p.FitnessLevel != "" {
		add("- Fitness Level: %s", p.FitnessLevel)
	}
	if p.CareerGoals != nil && p.CareerGoals.Text != "" {
		add("- Career Goals: %s", p.CareerGoals.Text)
	}

	if len(uc.Progress) > 0 {
		add("\n=== PROGRESS OVERVIEW ===")
		for _, pr := range uc.Progress {
			add("- %s: Level %d, %d XP", pr.Category, pr.Level, pr.Experience)
		}
	}

	if logs := uc.Activity.TrainingLogs; len(logs) > 0 {
		var physical, mental int
		for _, l := range logs {
			switch l.Type {
			case string(domain.CategoryPhysical):
				physical++
			case string(domain.CategoryMental):
				mental++
			}
		}
		add("\n=== RECENT ACTIVITY ===")
		add("- Training Sessions (last 30 days): %d total (%d physical, %d mental)", len(logs), physical, mental)
	}

	if u := uc.Usage; u.TotalSessions > 0 {
		add("\n=== USAGE PATTERNS ===")
		add("- Total Interactions: %d", u.TotalSessions)
		if u.MostUsedAgent != "" {
			add("- Most Used Agent: %s (%d sessions)", u.MostUsedAgent, u.AgentCounts[u.MostUsedAgent])
		}
		if len(u.RecentActivity) > 0 {
			add("- Agent Engagement:")
			for i, a := range u.RecentActivity {
				if i == maxEngagementAgents {
					break
				}
				add("  • %s: %d sessions", a.AgentType, a.Count)
			}
		}
	}

	if len(uc.Conversations) > 0 {
		add("\n=== CONVERSATION HISTORY ===")
		for _, c := range uc.Conversations {
			add("- %s: %d sessions, %d messages", c.AgentType, c.SessionCount, c.TotalMessages)
			if len(c.Topics) > 0 {
				add("  Topics discussed: %s", strings.Join(c.Topics[:min(len(c.Topics), maxListedTopics)], ", "))
			}
		}
	}

	for _, c := range uc.Conversations {
		if c.AgentType != current {
			continue
		}
		add("\n=== CURRENT AGENT (%s) ===", current)
		add("- Previous sessions: %d", c.SessionCount)
		add("- Total messages: %d", c.TotalMessages)
		if len(c.Topics) > 0 {
			add("- Previously discussed: %s", strings.Join(c.Topics, ", "))
		}
		break
	}

	return strings.Join(lines, "\n")
}
