package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Store implements port.Store on top of Client.
type Store struct {
	c *Client
}

var _ port.Store = (*Store)(nil)

func NewStore(c *Client) *Store {
	return &Store{c: c}
}

// Ping issues a one-row read against the users table.
func (s *Store) Ping(ctx context.Context) error {
	var rows []userRow
	return s.c.call(ctx, "ping", func() error {
		return s.c.getRows(ctx, "users?select=id&limit=1", &rows)
	})
}

// Counts returns the row count of every table.
func (s *Store) Counts(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(tables))
	for _, t := range tables {
		var n int64
		err := s.c.call(ctx, "count", func() error {
			var err error
			n, err = s.c.count(ctx, t+"?select=id")
			return err
		})
		if err != nil {
			return nil, err
		}
		out[t] = n
	}
	return out, nil
}

func sinceFilter(from time.Time) string {
	if from.IsZero() {
		return ""
	}
	return "&created_at=" + gte(from)
}

// ============================================================
// Users & profiles
// ============================================================

// CreateUserWithProfile posts the user, then the profile. PostgREST has
// no multi-statement transaction, so a failed profile insert deletes the user.
func (s *Store) CreateUserWithProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateUserWithProfile")
	defer span.End()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now

	err := s.c.call(ctx, "users", func() error {
		err := s.c.doPost(ctx, "users", userRowOf(user))
		if isConflict(err) {
			return &domain.ErrValidation{Field: "email", Message: "User with this email already exists"}
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	profile := profileRowOf(&domain.Profile{
		ID: uuid.NewString(), UserID: user.ID, Interests: []string{}, CreatedAt: now, UpdatedAt: now,
	})
	err = s.c.call(ctx, "profiles", func() error {
		return s.c.doPost(ctx, "profiles", profile)
	})
	if err != nil {
		if delErr := s.c.doDelete(ctx, "users?id="+eq(user.ID)); delErr != nil {
			s.c.logger.Error("supabase: orphaned user after profile insert failed",
				zap.String("user_id", user.ID),
				zap.Error(delErr),
			)
		}
		return nil, err
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByEmail")
	defer span.End()

	var rows []userRow
	err := s.c.call(ctx, "users", func() error {
		return s.c.getRows(ctx, "users?email="+eq(email)+"&limit=1", &rows)
	})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0].toDomain(), nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetUserByID")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", id))

	var rows []userRow
	err := s.c.call(ctx, "users", func() error {
		return s.c.getRows(ctx, "users?id="+eq(id)+"&limit=1", &rows)
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	return rows[0].toDomain(), nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var rows []profileRow
	err := s.c.call(ctx, "profiles", func() error {
		return s.c.getRows(ctx, "profiles?user_id="+eq(userID)+"&limit=1", &rows)
	})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0].toDomain(), nil
}

func (s *Store) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateProfile")
	defer span.End()

	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}
	patch := map[string]any{
		"age":                 p.Age,
		"location":            p.Location,
		"interests":           interests,
		"fitness_level":       p.FitnessLevel,
		"mental_health":       p.MentalHealth,
		"career_goals":        p.CareerGoals,
		"preferences":         p.Preferences,
		"onboarding_complete": p.OnboardingComplete,
		"updated_at":          time.Now().UTC(),
	}
	return s.c.call(ctx, "profiles", func() error {
		n, err := s.c.doPatch(ctx, "profiles?user_id="+eq(p.UserID), patch)
		if err != nil {
			return err
		}
		if n == 0 {
			return &domain.ErrNotFound{Resource: "profile", ID: p.UserID, Message: "Profile not found"}
		}
		return nil
	})
}

// ============================================================
// Agent sessions
// ============================================================

func (s *Store) CreateSession(ctx context.Context, session *domain.AgentSession) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateSession")
	defer span.End()

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = now
	}
	return s.c.call(ctx, "agent_sessions", func() error {
		return s.c.doPost(ctx, "agent_sessions", sessionRowOf(session))
	})
}

func (s *Store) GetSession(ctx context.Context, id string) (*domain.AgentSession, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetSession")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	var rows []sessionRow
	err := s.c.call(ctx, "agent_sessions", func() error {
		return s.c.getRows(ctx, "agent_sessions?id="+eq(id)+"&limit=1", &rows)
	})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "session", ID: id, Message: "Session not found"}
	}
	return rows[0].toDomain(), nil
}

func (s *Store) UpdateSession(ctx context.Context, session *domain.AgentSession) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateSession")
	defer span.End()

	row := sessionRowOf(session)
	patch := map[string]any{
		"user_id":       row.UserID,
		"messages":      row.Messages,
		"last_response": row.LastResponse,
		"updated_at":    time.Now().UTC(),
	}
	return s.c.call(ctx, "agent_sessions", func() error {
		n, err := s.c.doPatch(ctx, "agent_sessions?id="+eq(session.ID), patch)
		if err != nil {
			return err
		}
		if n == 0 {
			return &domain.ErrNotFound{Resource: "session", ID: session.ID, Message: "Session not found"}
		}
		return nil
	})
}

func (s *Store) ListSessions(ctx context.Context, userID string, limit int) ([]domain.AgentSession, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListSessions")
	defer span.End()

	var rows []sessionRow
	path := "agent_sessions?user_id=" + eq(userID) + "&order=updated_at.desc" + limitClause(limit)
	if err := s.c.call(ctx, "agent_sessions", func() error { return s.c.getRows(ctx, path, &rows) }); err != nil {
		return nil, err
	}
	out := make([]domain.AgentSession, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, nil
}

// ============================================================
// Progress
// ============================================================

func (s *Store) ListProgress(ctx context.Context, userID string) ([]domain.UserProgress, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListProgress")
	defer span.End()

	var rows []progressRow
	path := "user_progress?user_id=" + eq(userID) + "&order=category.asc"
	if err := s.c.call(ctx, "user_progress", func() error { return s.c.getRows(ctx, path, &rows) }); err != nil {
		return nil, err
	}
	out := make([]domain.UserProgress, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) GetProgress(ctx context.Context, userID string, category domain.Category) (*domain.UserProgress, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetProgress")
	defer span.End()

	var rows []progressRow
	path := fmt.Sprintf("user_progress?user_id=%s&category=%s&limit=1", eq(userID), eq(string(category)))
	if err := s.c.call(ctx, "user_progress", func() error { return s.c.getRows(ctx, path, &rows) }); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	p := rows[0].toDomain()
	return &p, nil
}

func (s *Store) UpsertProgress(ctx context.Context, p *domain.UserProgress) error {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertProgress")
	defer span.End()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.UpdatedAt = time.Now().UTC()
	return s.c.call(ctx, "user_progress", func() error {
		return s.c.doUpsert(ctx, "user_progress", "user_id,category", progressRowOf(p))
	})
}

// ============================================================
// Events: training logs, financial data, activity
// ============================================================

func stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}

func (s *Store) CreateTrainingLog(ctx context.Context, l *domain.TrainingLog) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTrainingLog")
	defer span.End()

	stamp(&l.ID, &l.CreatedAt)
	return s.c.call(ctx, "training_logs", func() error {
		return s.c.doPost(ctx, "training_logs", trainingLogRowOf(l))
	})
}

func (s *Store) ListTrainingLogs(ctx context.Context, userID string, from time.Time, limit int) ([]domain.TrainingLog, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTrainingLogs")
	defer span.End()

	var rows []trainingLogRow
	path := "training_logs?user_id=" + eq(userID) + sinceFilter(from) + "&order=created_at.desc" + limitClause(limit)
	if err := s.c.call(ctx, "training_logs", func() error { return s.c.getRows(ctx, path, &rows) }); err != nil {
		return nil, err
	}
	out := make([]domain.TrainingLog, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Store) CreateFinancialData(ctx context.Context, d *domain.FinancialData) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateFinancialData")
	defer span.End()

	stamp(&d.ID, &d.CreatedAt)
	return s.c.call(ctx, "financial_data", func() error {
		return s.c.doPost(ctx, "financial_data", financialRow{
			ID: d.ID, UserID: d.UserID, Type: d.Type, Data: d.Data, CreatedAt: d.CreatedAt.UTC(),
		})
	})
}

func (s *Store) CreateActivity(ctx context.Context, a *domain.UserActivity) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateActivity")
	defer span.End()

	stamp(&a.ID, &a.CreatedAt)
	return s.c.call(ctx, "user_activities", func() error {
		return s.c.doPost(ctx, "user_activities", activityRowOf(a))
	})
}

func (s *Store) CountActivitySince(ctx context.Context, userID string, from time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CountActivitySince")
	defer span.End()

	var n int64
	path := "user_activities?select=id&user_id=" + eq(userID) + sinceFilter(from)
	err := s.c.call(ctx, "user_activities", func() error {
		var err error
		n, err = s.c.count(ctx, path)
		return err
	})
	return n, err
}

func (s *Store) ListActivitySince(ctx context.Context, userID string, from time.Time, limit int) ([]domain.UserActivity, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListActivitySince")
	defer span.End()

	var rows []activityRow
	path := "user_activities?user_id=" + eq(userID) + sinceFilter(from) + "&order=created_at.desc" + limitClause(limit)
	if err := s.c.call(ctx, "user_activities", func() error { return s.c.getRows(ctx, path, &rows) }); err != nil {
		return nil, err
	}
	out := make([]domain.UserActivity, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// ============================================================
// Insights history
// ============================================================

func (s *Store) LatestInsights(ctx context.Context, userID string) (*domain.InsightsHistory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.LatestInsights")
	defer span.End()

	var rows []insightsRow
	path := "insights_history?user_id=" + eq(userID) + "&order=created_at.desc&limit=1"
	if err := s.c.call(ctx, "insights_history", func() error { return s.c.getRows(ctx, path, &rows) }); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	h := rows[0].toDomain()
	return &h, nil
}

func (s *Store) CreateInsights(ctx context.Context, h *domain.InsightsHistory) error {
	ctx, span := tracer.Start(ctx, "Supabase.CreateInsights")
	defer span.End()

	stamp(&h.ID, &h.CreatedAt)
	return s.c.call(ctx, "insights_history", func() error {
		return s.c.doPost(ctx, "insights_history", insightsRowOf(h))
	})
}

func (s *Store) ListInsights(ctx context.Context, userID string, from time.Time, limit int) ([]domain.InsightsHistory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListInsights")
	defer span.End()

	var rows []insightsRow
	path := "insights_history?user_id=" + eq(userID) + sinceFilter(from) + "&order=created_at.asc" + limitClause(limit)
	if err := s.c.call(ctx, "insights_history", func() error { return s.c.getRows(ctx, path, &rows) }); err != nil {
		return nil, err
	}
	out := make([]domain.InsightsHistory, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
