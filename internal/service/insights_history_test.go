package service_test

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"
	"github.com/boddenberg/recruit-assist-go/internal/service"

	"go.uber.org/zap"
)

var testPolicy = service.SnapshotPolicy{
	ForceSaveAfter:       30 * time.Minute,
	EngagementScoreDelta: 10,
	SentimentScoreDelta:  0.2,
	ExperienceDelta:      50,
	SummaryLengthRatio:   0.3,
}

func sampleInsight() *domain.Insight {
	return &domain.Insight{
		Summary:         "Motivated recruit exploring aviation careers.",
		Preferences:     []string{"aviation", "fitness"},
		Engagement:      domain.Engagement{Level: domain.EngagementHigh},
		Recommendations: []string{"Take the ASVAB"},
		Personality:     domain.Personality{Traits: []string{"curious", "driven"}},
	}
}

func sampleSentiment() *domain.Sentiment {
	return &domain.Sentiment{Score: 0.6, Label: domain.SentimentPositive, Summary: "Upbeat"}
}

func TestDecide(t *testing.T) {
	now := time.Now()
	base := service.NewSnapshot("u", sampleInsight(), sampleSentiment(), 100, nil)
	base.CreatedAt = now.Add(-5 * time.Second)

	change := func(f func(*domain.InsightsHistory)) *domain.InsightsHistory {
		c := service.NewSnapshot("u", sampleInsight(), sampleSentiment(), 100, nil)
		f(c)
		return c
	}

	tests := []struct {
		name      string
		last      *domain.InsightsHistory
		candidate *domain.InsightsHistory
		policy    service.SnapshotPolicy
		save      bool
		reason    string
	}{
		{"first snapshot", nil, base, testPolicy, true, service.ReasonFirstSnapshot},
		{"identical", base, change(func(*domain.InsightsHistory) {}), testPolicy, false, ""},
		{"preference order ignored", base, change(func(c *domain.InsightsHistory) { c.Preferences = []string{"fitness", "aviation"} }), testPolicy, false, ""},
		{"engagement level", base, change(func(c *domain.InsightsHistory) { c.EngagementLevel = domain.EngagementLow }), testPolicy, true, service.ReasonEngagement},
		{"preferences", base, change(func(c *domain.InsightsHistory) { c.Preferences = []string{"medical"} }), testPolicy, true, service.ReasonPreferences},
		{"personality", base, change(func(c *domain.InsightsHistory) { c.PersonalityTraits = []string{"calm"} }), testPolicy, true, service.ReasonPersonality},
		{"summary", base, change(func(c *domain.InsightsHistory) { c.Snapshot.Summary = "Short." }), testPolicy, true, service.ReasonSummary},
		{"sentiment score", base, change(func(c *domain.InsightsHistory) { c.SentimentScore = 0.3 }), testPolicy, true, service.ReasonSentiment},
		{"small sentiment drift", base, change(func(c *domain.InsightsHistory) { c.SentimentScore = 0.65 }), testPolicy, false, ""},
		{"experience", base, change(func(c *domain.InsightsHistory) { c.ExperienceTotal = 160 }), testPolicy, true, service.ReasonExperience},
		{"small experience", base, change(func(c *domain.InsightsHistory) { c.ExperienceTotal = 120 }), testPolicy, false, ""},
		{"min interval wins", base, change(func(c *domain.InsightsHistory) { c.ExperienceTotal = 500 }),
			service.SnapshotPolicy{MinInterval: 5 * time.Minute, ExperienceDelta: 50}, false, service.ReasonMinInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.policy.Decide(tt.last, tt.candidate, now)
			if d.Save != tt.save {
				t.Fatalf("expected save=%v, got %+v", tt.save, d)
			}
			if tt.reason != "" && !slices.Contains(d.Reasons, tt.reason) {
				t.Errorf("expected reason %q in %v", tt.reason, d.Reasons)
			}
		})
	}
}

func TestDecide_ForceSaveAfterWindow(t *testing.T) {
	now := time.Now()
	last := service.NewSnapshot("u", sampleInsight(), sampleSentiment(), 100, nil)
	last.CreatedAt = now.Add(-31 * time.Minute)
	candidate := service.NewSnapshot("u", sampleInsight(), sampleSentiment(), 100, nil)

	d := testPolicy.Decide(last, candidate, now)
	if !d.Save || !slices.Equal(d.Reasons, []string{service.ReasonForceSave}) {
		t.Errorf("expected a forced save, got %+v", d)
	}
}

func TestSaveSnapshot_WritesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	u := newUser(t, store, "history@example.com")
	h := service.NewInsightsHistory(store, testPolicy, time.Second, observability.NewMetrics(), zap.NewNop())

	count := func() int {
		t.Helper()
		resp, err := h.History(ctx, u.ID, domain.HistoryAll)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		return len(resp.History)
	}

	if d, err := h.SaveSnapshot(ctx, u.ID, sampleInsight(), nil, 100, nil); err != nil || d.Save {
		t.Fatalf("expected no write without sentiment, got %+v %v", d, err)
	}
	if count() != 0 {
		t.Fatal("expected no rows")
	}

	if _, err := h.SaveSnapshot(ctx, u.ID, sampleInsight(), sampleSentiment(), 100, nil); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := h.SaveSnapshot(ctx, u.ID, sampleInsight(), sampleSentiment(), 100, nil); err != nil {
		t.Fatalf("repeat save: %v", err)
	}
	if got := count(); got != 1 {
		t.Fatalf("identical payload must not be stored twice, got %d rows", got)
	}

	changed := sampleInsight()
	changed.Engagement.Level = domain.EngagementVeryHigh
	if _, err := h.SaveSnapshot(ctx, u.ID, changed, sampleSentiment(), 100, nil); err != nil {
		t.Fatalf("changed save: %v", err)
	}
	if _, err := h.SaveSnapshot(ctx, u.ID, changed, sampleSentiment(), 175, nil); err != nil {
		t.Fatalf("experience save: %v", err)
	}
	if got := count(); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}

	resp, err := h.History(ctx, u.ID, domain.HistoryWeek)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	last := resp.History[len(resp.History)-1]
	if last.EngagementScore != 100 || last.ExperienceTotal != 175 {
		t.Errorf("unexpected latest row: %+v", last)
	}
	if last.Snapshot.Sentiment == nil || last.Snapshot.Sentiment.Sentiment != domain.SentimentPositive {
		t.Errorf("expected sentiment in snapshot, got %+v", last.Snapshot.Sentiment)
	}
	if resp.Filter != domain.HistoryWeek {
		t.Errorf("unexpected filter %q", resp.Filter)
	}
}

func TestSaveSnapshotAsync(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := newStore(t)
	u := newUser(t, store, "async@example.com")
	metrics := observability.NewMetrics()
	h := service.NewInsightsHistory(store, testPolicy, time.Second, metrics, zap.NewNop())

	h.SaveSnapshotAsync(ctx, u.ID, sampleInsight(), sampleSentiment(), 40, nil)
	cancel() // the write must outlive the request
	h.Wait()

	last, err := store.LatestInsights(context.Background(), u.ID)
	if err != nil || last == nil {
		t.Fatalf("expected a stored snapshot, got %v %v", last, err)
	}
	if got := metrics.GetAISnapshot().SnapshotsWritten; got != 1 {
		t.Errorf("expected 1 written snapshot, got %d", got)
	}
}
