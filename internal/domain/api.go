package domain

import (
	"encoding/json"
	"time"
)

// --- Auth ---

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type RegisterResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string      `json:"accessToken"`
	TokenType   string      `json:"tokenType"`
	ExpiresIn   int         `json:"expiresIn"`
	User        UserSummary `json:"user"`
}

// --- Actions ---

// ActionRequest is a button click forwarded by the client. AgentType names
// the agent whose response carried the button, when known.
type ActionRequest struct {
	Action    string          `json:"action"`
	Data      json.RawMessage `json:"data"`
	AgentType string          `json:"agentType,omitempty"`
}

type ActionResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// --- Profile ---

// ProfileUpdateRequest carries optional fields; nil means unchanged.
type ProfileUpdateRequest struct {
	Age                *int     `json:"age,omitempty"`
	Location           *string  `json:"location,omitempty"`
	Interests          []string `json:"interests,omitempty"`
	FitnessLevel       *string  `json:"fitnessLevel,omitempty"`
	CareerGoals        *string  `json:"careerGoals,omitempty"`
	OnboardingComplete *bool    `json:"onboardingComplete,omitempty"`
}

type ProfileView struct {
	ID                 string       `json:"id"`
	Age                int          `json:"age,omitempty"`
	Location           string       `json:"location,omitempty"`
	Interests          []string     `json:"interests"`
	FitnessLevel       string       `json:"fitnessLevel,omitempty"`
	CareerGoals        *CareerGoals `json:"careerGoals,omitempty"`
	OnboardingComplete bool         `json:"onboardingComplete"`
}

// ProfileViewOf projects a profile for API responses.
func ProfileViewOf(p *Profile) ProfileView {
	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}
	return ProfileView{
		ID:                 p.ID,
		Age:                p.Age,
		Location:           p.Location,
		Interests:          interests,
		FitnessLevel:       p.FitnessLevel,
		CareerGoals:        p.CareerGoals,
		OnboardingComplete: p.OnboardingComplete,
	}
}

type ProfileUpdateResponse struct {
	Success bool        `json:"success"`
	Profile ProfileView `json:"profile"`
}

// --- Progress & activity ---

type ProgressResponse struct {
	Progress []UserProgress `json:"progress"`
}

type ActivityItem struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

type ActivityResponse struct {
	Activity []ActivityItem `json:"activity"`
}

// --- Insights ---

type RecentActivity struct {
	Type      string    `json:"type"`
	AgentType string    `json:"agentType,omitempty"`
	Action    string    `json:"action,omitempty"`
	Page      string    `json:"page,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type InsightsOverview struct {
	Profile          ProfileContext        `json:"profile"`
	Progress         []UserProgress        `json:"progress"`
	Activity         ActivityContext       `json:"activity"`
	Usage            UsageStats            `json:"usage"`
	Conversations    []ConversationSummary `json:"conversations"`
	Sentiment        *Sentiment            `json:"sentiment"`
	Insights         *Insight              `json:"insights"`
	FormattedContext string                `json:"formattedContext"`
	RecentActivities []RecentActivity      `json:"recentActivities"`
}

// HistoryFilter selects the time window of the insights history chart.
type HistoryFilter string

const (
	HistoryAll   HistoryFilter = "all"
	HistoryWeek  HistoryFilter = "week"
	HistoryMonth HistoryFilter = "month"
	HistoryYear  HistoryFilter = "year"
)

// ParseHistoryFilter falls back to "all" for unknown values.
func ParseHistoryFilter(s string) HistoryFilter {
	switch f := HistoryFilter(s); f {
	case HistoryWeek, HistoryMonth, HistoryYear:
		return f
	}
	return HistoryAll
}

// Since returns the lower bound of the window, or the zero time for "all".
func (f HistoryFilter) Since(now time.Time) time.Time {
	switch f {
	case HistoryWeek:
		return now.Add(-7 * 24 * time.Hour)
	case HistoryMonth:
		return now.Add(-30 * 24 * time.Hour)
	case HistoryYear:
		return now.Add(-365 * 24 * time.Hour)
	}
	return time.Time{}
}

type InsightsHistoryResponse struct {
	History []InsightsHistory `json:"history"`
	Filter  HistoryFilter     `json:"filter"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// --- Health ---

// HealthStatus is returned by GET /healthz.
type HealthStatus struct {
	Status   string          `json:"status"` // healthy, unhealthy
	Services []ServiceHealth `json:"services"`
}

type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latencyMs"`
	LastChecked string `json:"lastChecked"`
}
