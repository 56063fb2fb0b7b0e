package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/agent"
	"github.com/boddenberg/recruit-assist-go/internal/ai"
	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/cache"
	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"
	"github.com/boddenberg/recruit-assist-go/internal/infra/sqlstore"
	"github.com/boddenberg/recruit-assist-go/internal/port"
	"github.com/boddenberg/recruit-assist-go/internal/service"

	"go.uber.org/zap"
)

type agentFixture struct {
	svc      *service.AgentService
	insights *service.InsightsService
	history  *service.InsightsHistory
	store    *sqlstore.Store
	metrics  *observability.Metrics
}

func newAgentFixture(t *testing.T, completer port.Completer) agentFixture {
	t.Helper()
	store := newStore(t)
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	aiSvc := ai.NewService(completer, metrics, logger)
	registry := agent.NewRegistry(agent.DefaultConfigs(), aiSvc, logger)
	history := service.NewInsightsHistory(store, testPolicy, time.Second, metrics, logger)
	c := cache.New[service.InsightBundle](time.Minute)
	t.Cleanup(c.Close)
	insights := service.NewInsightsService(store, service.NewContextBuilder(store, metrics, logger), aiSvc, history, c, metrics, logger)

	return agentFixture{
		svc:      service.NewAgentService(registry, store, insights, metrics, logger),
		insights: insights,
		history:  history,
		store:    store,
		metrics:  metrics,
	}
}

func TestInitialMessage(t *testing.T) {
	f := newAgentFixture(t, nil)

	for _, typ := range domain.AgentTypes() {
		resp, err := f.svc.InitialMessage(string(typ))
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		if resp.InitialMessage == "" || resp.AgentType != typ {
			t.Errorf("unexpected response: %+v", resp)
		}
	}

	_, err := f.svc.InitialMessage("pirate")
	if got := validationMessage(t, err); got != "Invalid agent type" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestChat_NewSessionStoresTwoMessages(t *testing.T) {
	f := newAgentFixture(t, nil)
	ctx := context.Background()

	resp, err := f.svc.Chat(ctx, "recruitment", &domain.AgentChatRequest{Message: "What are the requirements for Special Forces?"}, "")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Text == "" || resp.SessionID == "" {
		t.Fatalf("expected text and a session id, got %+v", resp)
	}
	if resp.Metadata["type"] != "requirements" {
		t.Errorf("expected the canned requirements reply, got %v", resp.Metadata["type"])
	}

	session, err := f.svc.GetSession(ctx, "recruitment", resp.SessionID, "")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(session.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(session.Messages))
	}
	if session.Messages[0].Role != domain.RoleUser || session.Messages[1].Role != domain.RoleAssistant {
		t.Errorf("unexpected roles: %+v", session.Messages)
	}
	if session.LastResponse == nil || session.LastResponse.Text != resp.Text {
		t.Errorf("expected last response to be stored")
	}
}

func TestChat_ContinuesStoredSession(t *testing.T) {
	f := newAgentFixture(t, nil)
	ctx := context.Background()
	u := newUser(t, f.store, "chat@example.com")

	first, err := f.svc.Chat(ctx, "financial", &domain.AgentChatRequest{Message: "Tell me about pay"}, u.ID)
	if err != nil {
		t.Fatalf("first turn: %v", err)
	}
	second, err := f.svc.Chat(ctx, "financial", &domain.AgentChatRequest{
		Message:   "And retirement?",
		SessionID: first.SessionID,
		History:   []domain.Message{{Role: domain.RoleUser, Content: "forged"}},
	}, u.ID)
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("expected the same session, got %s and %s", first.SessionID, second.SessionID)
	}

	session, err := f.svc.GetSession(ctx, "financial", first.SessionID, u.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if len(session.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(session.Messages))
	}
	for _, m := range session.Messages {
		if m.Content == "forged" {
			t.Error("client history must not replace the stored thread")
		}
	}

	n, err := f.store.CountActivitySince(ctx, u.ID, time.Time{})
	if err != nil || n != 2 {
		t.Errorf("expected 2 chat activities, got %d (%v)", n, err)
	}
}

func TestChat_Errors(t *testing.T) {
	f := newAgentFixture(t, nil)
	ctx := context.Background()
	owner := newUser(t, f.store, "owner@example.com")

	_, err := f.svc.Chat(ctx, "recruitment", &domain.AgentChatRequest{Message: "  "}, "")
	if got := validationMessage(t, err); got != "Message is required" {
		t.Errorf("unexpected message %q", got)
	}

	_, err = f.svc.Chat(ctx, "pirate", &domain.AgentChatRequest{Message: "hi"}, "")
	if got := validationMessage(t, err); got != "Invalid agent type" {
		t.Errorf("unexpected message %q", got)
	}

	resp, err := f.svc.Chat(ctx, "training", &domain.AgentChatRequest{Message: "hi"}, owner.ID)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}

	var nf *domain.ErrNotFound
	_, err = f.svc.Chat(ctx, "training", &domain.AgentChatRequest{Message: "hi", SessionID: resp.SessionID}, "intruder")
	if !errors.As(err, &nf) {
		t.Errorf("expected not found for another user's session, got %v", err)
	}
	_, err = f.svc.GetSession(ctx, "financial", resp.SessionID, owner.ID)
	if !errors.As(err, &nf) {
		t.Errorf("expected not found for another agent's session, got %v", err)
	}
	_, err = f.svc.Chat(ctx, "training", &domain.AgentChatRequest{Message: "hi", SessionID: "missing"}, owner.ID)
	if !errors.As(err, &nf) {
		t.Errorf("expected not found for unknown session, got %v", err)
	}
}

func TestChat_UsesProfileContext(t *testing.T) {
	completer := &scriptedCompleter{byMaxTokens: map[int]string{1500: `{"text":"Here is your plan"}`}}
	f := newAgentFixture(t, completer)
	ctx := context.Background()
	u := newUser(t, f.store, "ctxchat@example.com")

	p, err := f.store.GetProfile(ctx, u.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	p.Age, p.Interests = 19, []string{"aviation"}
	if err := f.store.UpdateProfile(ctx, p); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	resp, err := f.svc.Chat(ctx, "recruitment", &domain.AgentChatRequest{Message: "Which role fits me?", UserID: "spoofed"}, u.ID)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Text != "Here is your plan" {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if resp.Fallback() {
		t.Error("did not expect a fallback response")
	}

	session, err := f.svc.GetSession(ctx, "recruitment", resp.SessionID, u.ID)
	if err != nil {
		t.Fatalf("token subject should own the session: %v", err)
	}
	if session.UserID != u.ID {
		t.Errorf("expected session owner %s, got %s", u.ID, session.UserID)
	}
	if !strings.Contains(resp.Metadata["agentType"].(string), "recruitment") {
		t.Errorf("unexpected metadata: %v", resp.Metadata)
	}
}
