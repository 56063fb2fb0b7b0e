package domain

import "time"

// User is an account identity. Exactly one Profile belongs to it.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CareerGoals is the free-form goal text captured during onboarding.
type CareerGoals struct {
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile holds the onboarding answers of a user.
type Profile struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"userId"`
	Age                int            `json:"age,omitempty"`
	Location           string         `json:"location,omitempty"`
	Interests          []string       `json:"interests"`
	FitnessLevel       string         `json:"fitnessLevel,omitempty"`
	MentalHealth       string         `json:"mentalHealth,omitempty"`
	CareerGoals        *CareerGoals   `json:"careerGoals,omitempty"`
	Preferences        map[string]any `json:"preferences,omitempty"`
	OnboardingComplete bool           `json:"onboardingComplete"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// TrainingLog is an immutable record of one logged activity.
type TrainingLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Activity  string    `json:"activity"`
	Duration  *int      `json:"duration,omitempty"`
	Intensity string    `json:"intensity,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	FinancialGoal   = "goal"
	FinancialBudget = "budget"
)

// FinancialData is an immutable saved goal or budget.
type FinancialData struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
}

// UserActivity is a lightweight event used for recent-activity displays.
type UserActivity struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	AgentType string         `json:"agentType,omitempty"`
	Action    string         `json:"action,omitempty"`
	Page      string         `json:"page,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// InsightsHistory is a persisted insight snapshot. Rows are never updated.
type InsightsHistory struct {
	ID                string          `json:"id"`
	UserID            string          `json:"userId"`
	EngagementLevel   string          `json:"engagementLevel"`
	EngagementScore   int             `json:"engagementScore"`
	ExperienceTotal   int             `json:"experienceTotal"`
	SentimentLabel    string          `json:"sentimentLabel"`
	SentimentScore    float64         `json:"sentimentScore"`
	Preferences       []string        `json:"preferences"`
	PersonalityTraits []string        `json:"personalityTraits"`
	Snapshot          InsightSnapshot `json:"snapshot"`
	CreatedAt         time.Time       `json:"createdAt"`
}
