package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
)

const (
	scriptedSentiment = `{"score":0.7,"sentiment":"positive","confidence":0.9,"keywords":["forces"],"summary":"Eager"}`
	scriptedInsight   = `{"summary":"Driven recruit.","preferences":["special forces"],"engagement":{"level":"high","description":"Active"},"recommendations":["Train daily"],"personality":{"traits":["driven"],"learningStyle":"visual","motivationType":"achievement"}}`
)

func TestOverview_ComputesOnceThenCaches(t *testing.T) {
	completer := &scriptedCompleter{byMaxTokens: map[int]string{200: scriptedSentiment, 400: scriptedInsight}}
	f := newAgentFixture(t, completer)
	ctx := context.Background()
	u := newUser(t, f.store, "insights@example.com")
	seedSession(t, f.store, u.ID, domain.AgentRecruitment, "What are the requirements for Special Forces?")

	first, err := f.insights.Overview(ctx, u.ID)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if first.Sentiment == nil || first.Sentiment.Label != domain.SentimentPositive {
		t.Errorf("unexpected sentiment: %+v", first.Sentiment)
	}
	if first.Insights == nil || first.Insights.Engagement.Level != domain.EngagementHigh {
		t.Errorf("unexpected insight: %+v", first.Insights)
	}
	if !strings.Contains(first.FormattedContext, "=== USER PROFILE ===") {
		t.Errorf("expected a formatted context, got %q", first.FormattedContext)
	}
	if completer.calls != 2 {
		t.Fatalf("expected 2 model calls, got %d", completer.calls)
	}

	if _, err := f.insights.Overview(ctx, u.ID); err != nil {
		t.Fatalf("second overview: %v", err)
	}
	if completer.calls != 2 {
		t.Errorf("expected the cached bundle to be reused, got %d calls", completer.calls)
	}

	f.history.Wait()
	history, err := f.insights.History(ctx, u.ID, domain.HistoryAll)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history.History) != 1 {
		t.Errorf("expected 1 snapshot, got %d", len(history.History))
	}

	f.insights.Invalidate(u.ID)
	if _, err := f.insights.Overview(ctx, u.ID); err != nil {
		t.Fatalf("overview after invalidate: %v", err)
	}
	if completer.calls != 4 {
		t.Errorf("expected a recompute after invalidation, got %d calls", completer.calls)
	}
	f.history.Wait()
}

func TestOverview_NoProfile(t *testing.T) {
	f := newAgentFixture(t, nil)

	_, err := f.insights.Overview(context.Background(), "ghost")
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if nf.Message != "User profile not found" {
		t.Errorf("unexpected message %q", nf.Message)
	}
}

func TestEnhancedContext(t *testing.T) {
	f := newAgentFixture(t, nil)
	ctx := context.Background()
	u := newUser(t, f.store, "enhanced@example.com")
	seedSession(t, f.store, u.ID, domain.AgentTraining, "Give me a workout")

	if ec := f.insights.EnhancedContext(ctx, "ghost", domain.AgentTraining); ec != nil {
		t.Errorf("expected nil without a profile, got %+v", ec)
	}

	ec := f.insights.EnhancedContext(ctx, u.ID, domain.AgentTraining)
	if ec == nil || ec.Profile == nil {
		t.Fatalf("expected an enhanced context, got %+v", ec)
	}
	if !strings.Contains(ec.Formatted, "=== CURRENT AGENT (training) ===") {
		t.Errorf("expected the current agent section, got:\n%s", ec.Formatted)
	}
	if ec.Insights != nil || ec.Sentiment != nil {
		t.Error("insights must come from the cache only")
	}
}
