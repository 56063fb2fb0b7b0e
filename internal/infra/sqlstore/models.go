package sqlstore

import (
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"

	"gorm.io/datatypes"
)

type userRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;not null"`
	Name         string
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

type profileRow struct {
	ID                 string `gorm:"primaryKey;size:36"`
	UserID             string `gorm:"uniqueIndex;size:36;not null"`
	Age                int
	Location           string
	Interests          datatypes.JSON
	FitnessLevel       string
	MentalHealth       string
	CareerGoals        datatypes.JSON
	Preferences        datatypes.JSON
	OnboardingComplete bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (profileRow) TableName() string { return "profiles" }

type sessionRow struct {
	ID           string `gorm:"primaryKey;size:36"`
	UserID       string `gorm:"index;size:36"`
	AgentType    string `gorm:"index;not null"`
	Messages     datatypes.JSON
	LastResponse datatypes.JSON
	CreatedAt    time.Time
	UpdatedAt    time.Time `gorm:"index"`
}

func (sessionRow) TableName() string { return "agent_sessions" }

type progressRow struct {
	ID         string `gorm:"primaryKey;size:36"`
	UserID     string `gorm:"uniqueIndex:idx_progress_user_category;size:36;not null"`
	Category   string `gorm:"uniqueIndex:idx_progress_user_category;not null"`
	Level      int    `gorm:"not null;default:1"`
	Experience int    `gorm:"not null;default:0"`
	Progress   datatypes.JSON
	UpdatedAt  time.Time
}

func (progressRow) TableName() string { return "user_progress" }

type trainingLogRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"index:idx_training_user_created;size:36;not null"`
	Type      string
	Activity  string
	Duration  *int
	Intensity string
	Notes     string
	Completed bool
	CreatedAt time.Time `gorm:"index:idx_training_user_created"`
}

func (trainingLogRow) TableName() string { return "training_logs" }

type financialRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"index;size:36;not null"`
	Type      string
	Data      datatypes.JSON
	CreatedAt time.Time
}

func (financialRow) TableName() string { return "financial_data" }

type activityRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"index:idx_activity_user_created;size:36;not null"`
	Type      string
	AgentType string
	Action    string
	Page      string
	Metadata  datatypes.JSON
	CreatedAt time.Time `gorm:"index:idx_activity_user_created"`
}

func (activityRow) TableName() string { return "user_activities" }

type insightsRow struct {
	ID                string `gorm:"primaryKey;size:36"`
	UserID            string `gorm:"index:idx_insights_user_created;size:36;not null"`
	EngagementLevel   string
	EngagementScore   int
	ExperienceTotal   int
	SentimentLabel    string
	SentimentScore    float64
	Preferences       datatypes.JSON
	PersonalityTraits datatypes.JSON
	Snapshot          datatypes.JSON
	CreatedAt         time.Time `gorm:"index:idx_insights_user_created"`
}

func (insightsRow) TableName() string { return "insights_history" }

func allModels() []any {
	return []any{
		&userRow{}, &profileRow{}, &sessionRow{}, &progressRow{},
		&trainingLogRow{}, &financialRow{}, &activityRow{}, &insightsRow{},
	}
}

// --- row <-> domain ---

func (r *userRow) toDomain() *domain.User {
	return &domain.User{ID: r.ID, Email: r.Email, Name: r.Name, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt}
}

func (r *profileRow) toDomain() *domain.Profile {
	interests := fromJSON[[]string](r.Interests)
	if interests == nil {
		interests = []string{}
	}
	return &domain.Profile{
		ID:                 r.ID,
		UserID:             r.UserID,
		Age:                r.Age,
		Location:           r.Location,
		Interests:          interests,
		FitnessLevel:       r.FitnessLevel,
		MentalHealth:       r.MentalHealth,
		CareerGoals:        fromJSON[*domain.CareerGoals](r.CareerGoals),
		Preferences:        fromJSON[map[string]any](r.Preferences),
		OnboardingComplete: r.OnboardingComplete,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func profileRowOf(p *domain.Profile) *profileRow {
	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}
	return &profileRow{
		ID:                 p.ID,
		UserID:             p.UserID,
		Age:                p.Age,
		Location:           p.Location,
		Interests:          toJSON(interests),
		FitnessLevel:       p.FitnessLevel,
		MentalHealth:       p.MentalHealth,
		CareerGoals:        toJSON(p.CareerGoals),
		Preferences:        toJSON(p.Preferences),
		OnboardingComplete: p.OnboardingComplete,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func (r *sessionRow) toDomain() *domain.AgentSession {
	msgs := fromJSON[[]domain.Message](r.Messages)
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return &domain.AgentSession{
		ID:           r.ID,
		UserID:       r.UserID,
		AgentType:    domain.AgentType(r.AgentType),
		Messages:     msgs,
		LastResponse: fromJSON[*domain.RichResponse](r.LastResponse),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func sessionRowOf(s *domain.AgentSession) *sessionRow {
	return &sessionRow{
		ID:           s.ID,
		UserID:       s.UserID,
		AgentType:    string(s.AgentType),
		Messages:     toJSON(s.Messages),
		LastResponse: toJSON(s.LastResponse),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func (r *progressRow) toDomain() domain.UserProgress {
	progress := fromJSON[map[string]any](r.Progress)
	if progress == nil {
		progress = map[string]any{}
	}
	return domain.UserProgress{
		ID:         r.ID,
		UserID:     r.UserID,
		Category:   domain.Category(r.Category),
		Level:      r.Level,
		Experience: r.Experience,
		Progress:   progress,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (r *trainingLogRow) toDomain() domain.TrainingLog {
	return domain.TrainingLog{
		ID: r.ID, UserID: r.UserID, Type: r.Type, Activity: r.Activity, Duration: r.Duration,
		Intensity: r.Intensity, Notes: r.Notes, Completed: r.Completed, CreatedAt: r.CreatedAt,
	}
}

func (r *activityRow) toDomain() domain.UserActivity {
	return domain.UserActivity{
		ID: r.ID, UserID: r.UserID, Type: r.Type, AgentType: r.AgentType, Action: r.Action,
		Page: r.Page, Metadata: fromJSON[map[string]any](r.Metadata), CreatedAt: r.CreatedAt,
	}
}

func (r *insightsRow) toDomain() domain.InsightsHistory {
	prefs := fromJSON[[]string](r.Preferences)
	if prefs == nil {
		prefs = []string{}
	}
	traits := fromJSON[[]string](r.PersonalityTraits)
	if traits == nil {
		traits = []string{}
	}
	return domain.InsightsHistory{
		ID:                r.ID,
		UserID:            r.UserID,
		EngagementLevel:   r.EngagementLevel,
		EngagementScore:   r.EngagementScore,
		ExperienceTotal:   r.ExperienceTotal,
		SentimentLabel:    r.SentimentLabel,
		SentimentScore:    r.SentimentScore,
		Preferences:       prefs,
		PersonalityTraits: traits,
		Snapshot:          fromJSON[domain.InsightSnapshot](r.Snapshot),
		CreatedAt:         r.CreatedAt,
	}
}
