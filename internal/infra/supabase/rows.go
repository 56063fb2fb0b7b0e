package supabase

import (
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
)

// tables lists every table the store reads or writes.
var tables = []string{
	"users", "profiles", "agent_sessions", "user_progress",
	"training_logs", "financial_data", "user_activities", "insights_history",
}

// Column names follow the Postgres schema (snake_case).

type userRow struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func userRowOf(u *domain.User) userRow {
	return userRow{ID: u.ID, Email: u.Email, Name: u.Name, PasswordHash: u.PasswordHash, CreatedAt: u.CreatedAt}
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{ID: r.ID, Email: r.Email, Name: r.Name, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

type profileRow struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"user_id"`
	Age                int                 `json:"age"`
	Location           string              `json:"location"`
	Interests          []string            `json:"interests"`
	FitnessLevel       string              `json:"fitness_level"`
	MentalHealth       string              `json:"mental_health"`
	CareerGoals        *domain.CareerGoals `json:"career_goals"`
	Preferences        map[string]any      `json:"preferences"`
	OnboardingComplete bool                `json:"onboarding_complete"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func profileRowOf(p *domain.Profile) profileRow {
	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}
	return profileRow{
		ID: p.ID, UserID: p.UserID, Age: p.Age, Location: p.Location, Interests: interests,
		FitnessLevel: p.FitnessLevel, MentalHealth: p.MentalHealth, CareerGoals: p.CareerGoals,
		Preferences: p.Preferences, OnboardingComplete: p.OnboardingComplete,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func (r profileRow) toDomain() *domain.Profile {
	interests := r.Interests
	if interests == nil {
		interests = []string{}
	}
	return &domain.Profile{
		ID: r.ID, UserID: r.UserID, Age: r.Age, Location: r.Location, Interests: interests,
		FitnessLevel: r.FitnessLevel, MentalHealth: r.MentalHealth, CareerGoals: r.CareerGoals,
		Preferences: r.Preferences, OnboardingComplete: r.OnboardingComplete,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

type sessionRow struct {
	ID           string               `json:"id"`
	UserID       *string              `json:"user_id"`
	AgentType    string               `json:"agent_type"`
	Messages     []domain.Message     `json:"messages"`
	LastResponse *domain.RichResponse `json:"last_response"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// sessionRowOf stores anonymous sessions with a NULL user_id.
func sessionRowOf(s *domain.AgentSession) sessionRow {
	var userID *string
	if s.UserID != "" {
		id := s.UserID
		userID = &id
	}
	msgs := s.Messages
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return sessionRow{
		ID: s.ID, UserID: userID, AgentType: string(s.AgentType), Messages: msgs,
		LastResponse: s.LastResponse, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

func (r sessionRow) toDomain() *domain.AgentSession {
	msgs := r.Messages
	if msgs == nil {
		msgs = []domain.Message{}
	}
	s := &domain.AgentSession{
		ID: r.ID, AgentType: domain.AgentType(r.AgentType), Messages: msgs,
		LastResponse: r.LastResponse, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
	if r.UserID != nil {
		s.UserID = *r.UserID
	}
	return s
}

type progressRow struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Category   string         `json:"category"`
	Level      int            `json:"level"`
	Experience int            `json:"experience"`
	Progress   map[string]any `json:"progress"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func progressRowOf(p *domain.UserProgress) progressRow {
	return progressRow{
		ID: p.ID, UserID: p.UserID, Category: string(p.Category), Level: p.Level,
		Experience: p.Experience, Progress: p.Progress, UpdatedAt: p.UpdatedAt,
	}
}

func (r progressRow) toDomain() domain.UserProgress {
	progress := r.Progress
	if progress == nil {
		progress = map[string]any{}
	}
	return domain.UserProgress{
		ID: r.ID, UserID: r.UserID, Category: domain.Category(r.Category), Level: r.Level,
		Experience: r.Experience, Progress: progress, UpdatedAt: r.UpdatedAt,
	}
}

type trainingLogRow struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Activity  string    `json:"activity"`
	Duration  *int      `json:"duration"`
	Intensity string    `json:"intensity"`
	Notes     string    `json:"notes"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

func trainingLogRowOf(l *domain.TrainingLog) trainingLogRow {
	return trainingLogRow{
		ID: l.ID, UserID: l.UserID, Type: l.Type, Activity: l.Activity, Duration: l.Duration,
		Intensity: l.Intensity, Notes: l.Notes, Completed: l.Completed, CreatedAt: l.CreatedAt.UTC(),
	}
}

func (r trainingLogRow) toDomain() domain.TrainingLog {
	return domain.TrainingLog{
		ID: r.ID, UserID: r.UserID, Type: r.Type, Activity: r.Activity, Duration: r.Duration,
		Intensity: r.Intensity, Notes: r.Notes, Completed: r.Completed, CreatedAt: r.CreatedAt,
	}
}

type financialRow struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

type activityRow struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Type      string         `json:"activity_type"`
	AgentType string         `json:"agent_type,omitempty"`
	Action    string         `json:"action,omitempty"`
	Page      string         `json:"page,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func activityRowOf(a *domain.UserActivity) activityRow {
	return activityRow{
		ID: a.ID, UserID: a.UserID, Type: a.Type, AgentType: a.AgentType, Action: a.Action,
		Page: a.Page, Metadata: a.Metadata, CreatedAt: a.CreatedAt.UTC(),
	}
}

func (r activityRow) toDomain() domain.UserActivity {
	return domain.UserActivity{
		ID: r.ID, UserID: r.UserID, Type: r.Type, AgentType: r.AgentType, Action: r.Action,
		Page: r.Page, Metadata: r.Metadata, CreatedAt: r.CreatedAt,
	}
}

type insightsRow struct {
	ID                string                 `json:"id"`
	UserID            string                 `json:"user_id"`
	EngagementLevel   string                 `json:"engagement_level"`
	EngagementScore   int                    `json:"engagement_score"`
	ExperienceTotal   int                    `json:"experience_total"`
	SentimentLabel    string                 `json:"sentiment_label"`
	SentimentScore    float64                `json:"sentiment_score"`
	Preferences       []string               `json:"preferences"`
	PersonalityTraits []string               `json:"personality_traits"`
	Snapshot          domain.InsightSnapshot `json:"insights_snapshot"`
	CreatedAt         time.Time              `json:"created_at"`
}

func insightsRowOf(h *domain.InsightsHistory) insightsRow {
	return insightsRow{
		ID: h.ID, UserID: h.UserID, EngagementLevel: h.EngagementLevel, EngagementScore: h.EngagementScore,
		ExperienceTotal: h.ExperienceTotal, SentimentLabel: h.SentimentLabel, SentimentScore: h.SentimentScore,
		Preferences: nonNil(h.Preferences), PersonalityTraits: nonNil(h.PersonalityTraits),
		Snapshot: h.Snapshot, CreatedAt: h.CreatedAt.UTC(),
	}
}

func (r insightsRow) toDomain() domain.InsightsHistory {
	return domain.InsightsHistory{
		ID: r.ID, UserID: r.UserID, EngagementLevel: r.EngagementLevel, EngagementScore: r.EngagementScore,
		ExperienceTotal: r.ExperienceTotal, SentimentLabel: r.SentimentLabel, SentimentScore: r.SentimentScore,
		Preferences: nonNil(r.Preferences), PersonalityTraits: nonNil(r.PersonalityTraits),
		Snapshot: r.Snapshot, CreatedAt: r.CreatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
