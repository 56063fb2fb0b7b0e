package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", ":memory:", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateUserWithProfile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.CreateUserWithProfile(ctx, &domain.User{Email: "a@b.com", Name: "a", PasswordHash: "h"})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)

	got, err := s.GetUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "h", got.PasswordHash)

	p, err := s.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, []string{}, p.Interests)
	assert.False(t, p.OnboardingComplete)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateUserWithProfile(ctx, &domain.User{Email: "dup@b.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = s.CreateUserWithProfile(ctx, &domain.User{Email: "dup@b.com", PasswordHash: "h"})
	var ve *domain.ErrValidation
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "User with this email already exists", ve.Message)
}

func TestMissingRowsReturnNil(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u, err := s.GetUserByEmail(ctx, "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	p, err := s.GetProfile(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = s.GetSession(ctx, "missing")
	var nf *domain.ErrNotFound
	assert.True(t, errors.As(err, &nf))

	err = s.UpdateProfile(ctx, &domain.Profile{UserID: "missing"})
	assert.True(t, errors.As(err, &nf))
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u, err := s.CreateUserWithProfile(ctx, &domain.User{Email: "p@b.com", PasswordHash: "h"})
	require.NoError(t, err)

	p, err := s.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	p.Age = 22
	p.Interests = []string{"aviation", "medical"}
	p.CareerGoals = &domain.CareerGoals{Text: "pilot", UpdatedAt: time.Now().UTC()}
	p.OnboardingComplete = true
	require.NoError(t, s.UpdateProfile(ctx, p))

	got, err := s.GetProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 22, got.Age)
	assert.Equal(t, []string{"aviation", "medical"}, got.Interests)
	require.NotNil(t, got.CareerGoals)
	assert.Equal(t, "pilot", got.CareerGoals.Text)
	assert.True(t, got.OnboardingComplete)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sess := &domain.AgentSession{UserID: "u1", AgentType: domain.AgentRecruitment, Messages: []domain.Message{}}
	require.NoError(t, s.CreateSession(ctx, sess))
	require.NotEmpty(t, sess.ID)

	now := time.Now().UTC()
	sess.Messages = append(sess.Messages,
		domain.Message{Role: domain.RoleUser, Content: "hi", Timestamp: now},
		domain.Message{Role: domain.RoleAssistant, Content: "hello", Timestamp: now},
	)
	sess.LastResponse = &domain.RichResponse{Text: "hello", Metadata: map[string]any{"type": "general"}}
	require.NoError(t, s.UpdateSession(ctx, sess))

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "hi", got.Messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, got.Messages[1].Role)
	require.NotNil(t, got.LastResponse)
	assert.Equal(t, "hello", got.LastResponse.Text)

	list, err := s.ListSessions(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpsertProgress(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := &domain.UserProgress{UserID: "u1", Category: domain.CategoryCareer}
	p.AddExperience(40, time.Now())
	require.NoError(t, s.UpsertProgress(ctx, p))

	got, err := s.GetProgress(ctx, "u1", domain.CategoryCareer)
	require.NoError(t, err)
	require.NotNil(t, got)
	got.AddExperience(70, time.Now())
	require.NoError(t, s.UpsertProgress(ctx, got))

	all, err := s.ListProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 110, all[0].Experience)
	assert.Equal(t, 2, all[0].Level)
	assert.Contains(t, all[0].Progress, "lastActivity")

	none, err := s.GetProgress(ctx, "u1", domain.CategoryMental)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestTrainingLogsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Now().UTC().Add(-time.Hour)

	for i, act := range []string{"run", "swim", "lift"} {
		d := 10 * (i + 1)
		require.NoError(t, s.CreateTrainingLog(ctx, &domain.TrainingLog{
			UserID: "u1", Type: "physical", Activity: act, Duration: &d, Completed: true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	logs, err := s.ListTrainingLogs(ctx, "u1", time.Time{}, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "lift", logs[0].Activity)
	assert.Equal(t, 30, *logs[0].Duration)

	recent, err := s.ListTrainingLogs(ctx, "u1", base.Add(90*time.Second), 0)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestActivityCountAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.CreateActivity(ctx, &domain.UserActivity{UserID: "u1", Type: "agent_chat", AgentType: "training", CreatedAt: now.Add(-10 * 24 * time.Hour)}))
	require.NoError(t, s.CreateActivity(ctx, &domain.UserActivity{UserID: "u1", Type: "action", Action: "save_plan", CreatedAt: now}))

	n, err := s.CountActivitySince(ctx, "u1", now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := s.ListActivitySince(ctx, "u1", time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "save_plan", all[0].Action)
}

func TestInsightsHistoryOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Now().UTC().Add(-time.Hour)

	latest, err := s.LatestInsights(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, latest)

	for i, level := range []string{domain.EngagementLow, domain.EngagementHigh} {
		require.NoError(t, s.CreateInsights(ctx, &domain.InsightsHistory{
			UserID:          "u1",
			EngagementLevel: level,
			EngagementScore: domain.EngagementScore(level),
			Preferences:     []string{"visual"},
			Snapshot:        domain.InsightSnapshot{Summary: level},
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}))
	}

	latest, err = s.LatestInsights(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, domain.EngagementHigh, latest.EngagementLevel)
	assert.Equal(t, 75, latest.EngagementScore)

	hist, err := s.ListInsights(ctx, "u1", time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, domain.EngagementLow, hist[0].Snapshot.Summary)
	assert.Equal(t, []string{}, hist[0].PersonalityTraits)
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.CreateFinancialData(ctx, &domain.FinancialData{UserID: "u1", Type: domain.FinancialGoal, Data: map[string]any{"amount": 500}}))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["financial_data"])
	assert.Equal(t, int64(0), counts["users"])
}
