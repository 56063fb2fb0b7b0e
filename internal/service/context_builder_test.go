package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/sqlstore"
	"github.com/boddenberg/recruit-assist-go/internal/service"

	"go.uber.org/zap"
)

func seedSession(t *testing.T, store *sqlstore.Store, userID string, agent domain.AgentType, userMsgs ...string) {
	t.Helper()
	s := &domain.AgentSession{UserID: userID, AgentType: agent}
	for _, m := range userMsgs {
		s.Messages = append(s.Messages,
			domain.Message{Role: domain.RoleUser, Content: m},
			domain.Message{Role: domain.RoleAssistant, Content: "Noted."},
		)
	}
	if err := store.CreateSession(context.Background(), s); err != nil {
		t.Fatalf("create session: %v", err)
	}
}

func TestBuild_NoProfile(t *testing.T) {
	b := service.NewContextBuilder(newStore(t), nil, zap.NewNop())

	uc, err := b.Build(context.Background(), "ghost")
	if err != nil || uc != nil {
		t.Fatalf("expected nil, nil; got %v, %v", uc, err)
	}
}

func TestBuild_AggregatesUsage(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	u := newUser(t, store, "ctx@example.com")

	seedSession(t, store, u.ID, domain.AgentRecruitment, "What are the requirements for Special Forces?")
	seedSession(t, store, u.ID, domain.AgentTraining, "I need a workout plan", "How is my fitness?")
	seedSession(t, store, u.ID, domain.AgentRecruitment, "Is IT a good career?")

	if err := store.CreateTrainingLog(ctx, &domain.TrainingLog{UserID: u.ID, Type: "physical", Activity: "Run", Completed: true}); err != nil {
		t.Fatalf("seed log: %v", err)
	}
	if err := store.CreateTrainingLog(ctx, &domain.TrainingLog{UserID: u.ID, Type: "physical", Activity: "Old run", CreatedAt: time.Now().Add(-40 * 24 * time.Hour)}); err != nil {
		t.Fatalf("seed log: %v", err)
	}
	if err := store.CreateActivity(ctx, &domain.UserActivity{UserID: u.ID, Type: "action", Action: "save_interest"}); err != nil {
		t.Fatalf("seed activity: %v", err)
	}
	if err := store.UpsertProgress(ctx, &domain.UserProgress{UserID: u.ID, Category: domain.CategoryCareer, Level: 2, Experience: 120}); err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	uc, err := service.NewContextBuilder(store, nil, zap.NewNop()).Build(ctx, u.ID)
	if err != nil || uc == nil {
		t.Fatalf("build: %v %v", uc, err)
	}

	if uc.Usage.TotalSessions != 3 || uc.Activity.TotalInteractions != 3 {
		t.Errorf("unexpected totals: %+v", uc.Usage)
	}
	if uc.Usage.MostUsedAgent != domain.AgentRecruitment || uc.Usage.AgentCounts[domain.AgentRecruitment] != 2 {
		t.Errorf("unexpected usage: %+v", uc.Usage)
	}
	if uc.Usage.RecentActivity[0].AgentType != domain.AgentRecruitment {
		t.Errorf("recent activity must be sorted by count: %+v", uc.Usage.RecentActivity)
	}
	if len(uc.Activity.TrainingLogs) != 1 {
		t.Errorf("expected only logs of the last 30 days, got %d", len(uc.Activity.TrainingLogs))
	}
	if uc.Activity.RecentActions != 1 {
		t.Errorf("expected 1 recent action, got %d", uc.Activity.RecentActions)
	}
	if uc.TotalExperience() != 120 {
		t.Errorf("unexpected total experience %d", uc.TotalExperience())
	}
	if uc.ConversationInsights == nil || len(uc.ConversationInsights.Topics) == 0 {
		t.Errorf("expected keyword conversation insights, got %+v", uc.ConversationInsights)
	}

	var recruitment *domain.ConversationSummary
	for i := range uc.Conversations {
		if uc.Conversations[i].AgentType == domain.AgentRecruitment {
			recruitment = &uc.Conversations[i]
		}
	}
	if recruitment == nil {
		t.Fatal("missing recruitment conversation summary")
	}
	if recruitment.SessionCount != 2 || recruitment.TotalMessages != 4 {
		t.Errorf("unexpected summary: %+v", recruitment)
	}
	for _, want := range []string{"special forces", "it", "career"} {
		found := false
		for _, topic := range recruitment.Topics {
			found = found || topic == want
		}
		if !found {
			t.Errorf("expected topic %q in %v", want, recruitment.Topics)
		}
	}
}

// failingStore breaks the session read only.
type failingStore struct {
	*sqlstore.Store
}

func (f failingStore) ListSessions(context.Context, string, int) ([]domain.AgentSession, error) {
	return nil, errors.New("connection reset")
}

func TestBuild_SubReadFailureDegrades(t *testing.T) {
	store := newStore(t)
	u := newUser(t, store, "degrade@example.com")

	uc, err := service.NewContextBuilder(failingStore{store}, nil, zap.NewNop()).Build(context.Background(), u.ID)
	if err != nil || uc == nil {
		t.Fatalf("expected a context despite the failure, got %v %v", uc, err)
	}
	if uc.Usage.TotalSessions != 0 || len(uc.Conversations) != 0 {
		t.Errorf("expected empty usage, got %+v", uc.Usage)
	}
}

func TestFormatForPrompt(t *testing.T) {
	uc := &domain.UserContext{
		Profile: domain.ProfileContext{
			Age:          24,
			Location:     "Denver",
			Interests:    []string{"aviation", "medicine"},
			FitnessLevel: "advanced",
			CareerGoals:  &domain.CareerGoals{Text: "Fly helicopters"},
		},
		Progress: []domain.UserProgress{{Category: domain.CategoryPhysical, Level: 3, Experience: 240}},
		Activity: domain.ActivityContext{TrainingLogs: []domain.TrainingLogSummary{{Type: "physical"}, {Type: "mental"}, {Type: "physical"}}},
		Usage: domain.UsageStats{
			AgentCounts:    map[domain.AgentType]int{domain.AgentTraining: 3, domain.AgentFinancial: 1},
			MostUsedAgent:  domain.AgentTraining,
			TotalSessions:  4,
			RecentActivity: []domain.AgentUsage{{AgentType: domain.AgentTraining, Count: 3}, {AgentType: domain.AgentFinancial, Count: 1}},
		},
		Conversations: []domain.ConversationSummary{
			{AgentType: domain.AgentTraining, SessionCount: 3, TotalMessages: 12, Topics: []string{"workout", "fitness", "mental", "training", "physical", "leadership"}},
		},
	}

	got := service.FormatForPrompt(uc, domain.AgentTraining)

	for _, want := range []string{
		"=== USER PROFILE ===\n- Age: 24\n- Location: Denver\n- Interests: aviation, medicine\n- Fitness Level: advanced\n- Career Goals: Fly helicopters",
		"\n\n=== PROGRESS OVERVIEW ===\n- physical: Level 3, 240 XP",
		"- Training Sessions (last 30 days): 3 total (2 physical, 1 mental)",
		"- Most Used Agent: training (3 sessions)",
		"  • financial: 1 sessions",
		"- training: 3 sessions, 12 messages\n  Topics discussed: workout, fitness, mental, training, physical\n",
		"=== CURRENT AGENT (training) ===\n- Previous sessions: 3\n- Total messages: 12\n- Previously discussed: workout, fitness, mental, training, physical, leadership",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}

	if strings.Contains(service.FormatForPrompt(uc, domain.AgentEducational), "CURRENT AGENT") {
		t.Error("no current agent section expected without prior sessions")
	}
}
