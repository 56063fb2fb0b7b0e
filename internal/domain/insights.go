package domain

import "time"

// Sentiment labels.
const (
	SentimentVeryNegative = "very_negative"
	SentimentNegative     = "negative"
	SentimentNeutral      = "neutral"
	SentimentPositive     = "positive"
	SentimentVeryPositive = "very_positive"
)

// Sentiment is the analyzed tone of a user's messages. Score is in [-1, 1].
type Sentiment struct {
	Score      float64  `json:"score"`
	Label      string   `json:"sentiment"`
	Confidence float64  `json:"confidence"`
	Keywords   []string `json:"keywords"`
	Summary    string   `json:"summary"`
}

// Engagement levels.
const (
	EngagementLow      = "low"
	EngagementMedium   = "medium"
	EngagementHigh     = "high"
	EngagementVeryHigh = "very_high"
)

// EngagementScore maps an engagement level onto the 0..100 chart scale.
func EngagementScore(level string) int {
	switch level {
	case EngagementLow:
		return 25
	case EngagementMedium:
		return 50
	case EngagementHigh:
		return 75
	case EngagementVeryHigh:
		return 100
	}
	return 50
}

type Engagement struct {
	Level       string `json:"level"`
	Description string `json:"description"`
}

type Personality struct {
	Traits         []string `json:"traits"`
	LearningStyle  string   `json:"learningStyle,omitempty"`
	MotivationType string   `json:"motivationType,omitempty"`
}

// Insight is the AI-derived behavioral summary of a user.
type Insight struct {
	Summary         string      `json:"summary"`
	Preferences     []string    `json:"preferences"`
	Engagement      Engagement  `json:"engagement"`
	Recommendations []string    `json:"recommendations"`
	Personality     Personality `json:"personality"`
}

// ConversationInsights summarizes what a user has talked about.
type ConversationInsights struct {
	Topics      []string `json:"topics"`
	Interests   []string `json:"interests"`
	Questions   []string `json:"questions"`
	Concerns    []string `json:"concerns"`
	Goals       []string `json:"goals"`
	Preferences []string `json:"preferences"`
	Summary     string   `json:"summary"`
}

// InsightSnapshot is the JSON document stored with each history row.
type InsightSnapshot struct {
	Summary         string                `json:"summary"`
	Preferences     []string              `json:"preferences"`
	Engagement      Engagement            `json:"engagement"`
	Recommendations []string              `json:"recommendations"`
	Personality     Personality           `json:"personality"`
	Sentiment       *SnapshotSentiment    `json:"sentiment,omitempty"`
	Conversation    *ConversationInsights `json:"conversationInsights,omitempty"`
}

type SnapshotSentiment struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
	Summary   string  `json:"summary"`
}

// ProfileContext is the subset of a profile used for prompting.
type ProfileContext struct {
	Age          int            `json:"age,omitempty"`
	Location     string         `json:"location,omitempty"`
	Interests    []string       `json:"interests"`
	FitnessLevel string         `json:"fitnessLevel,omitempty"`
	MentalHealth string         `json:"mentalHealth,omitempty"`
	CareerGoals  *CareerGoals   `json:"careerGoals,omitempty"`
	Preferences  map[string]any `json:"preferences,omitempty"`
}

// ProfileContextOf projects a stored profile.
func ProfileContextOf(p *Profile) *ProfileContext {
	if p == nil {
		return nil
	}
	interests := p.Interests
	if interests == nil {
		interests = []string{}
	}
	return &ProfileContext{
		Age:          p.Age,
		Location:     p.Location,
		Interests:    interests,
		FitnessLevel: p.FitnessLevel,
		MentalHealth: p.MentalHealth,
		CareerGoals:  p.CareerGoals,
		Preferences:  p.Preferences,
	}
}

type TrainingLogSummary struct {
	Type      string    `json:"type"`
	Activity  string    `json:"activity"`
	Duration  *int      `json:"duration,omitempty"`
	Intensity string    `json:"intensity,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ActivityContext struct {
	TrainingLogs      []TrainingLogSummary `json:"trainingLogs"`
	RecentActions     int64                `json:"recentActions"`
	TotalInteractions int                  `json:"totalInteractions"`
}

type AgentUsage struct {
	AgentType       AgentType `json:"agentType"`
	Count           int       `json:"count"`
	LastInteraction time.Time `json:"lastInteraction"`
}

type UsageStats struct {
	AgentCounts    map[AgentType]int `json:"agentCounts"`
	MostUsedAgent  AgentType         `json:"mostUsedAgent,omitempty"`
	TotalSessions  int               `json:"totalSessions"`
	RecentActivity []AgentUsage      `json:"recentActivity"`
}

type ConversationSummary struct {
	AgentType       AgentType `json:"agentType"`
	SessionCount    int       `json:"sessionCount"`
	TotalMessages   int       `json:"totalMessages"`
	LastInteraction time.Time `json:"lastInteraction"`
	Topics          []string  `json:"topics"`
}

// UserContext is the aggregated profile, progress, activity and usage data of a user.
type UserContext struct {
	Profile              ProfileContext        `json:"profile"`
	Progress             []UserProgress        `json:"progress"`
	Activity             ActivityContext       `json:"activity"`
	Usage                UsageStats            `json:"usage"`
	Conversations        []ConversationSummary `json:"conversations"`
	ConversationInsights *ConversationInsights `json:"conversationInsights,omitempty"`
}

// TotalExperience sums experience over every category.
func (c *UserContext) TotalExperience() int {
	total := 0
	for _, p := range c.Progress {
		total += p.Experience
	}
	return total
}

// EnhancedContext is what gets injected into an agent's system prompt.
type EnhancedContext struct {
	Profile   *ProfileContext
	Insights  *Insight
	Sentiment *Sentiment
	Formatted string
}
