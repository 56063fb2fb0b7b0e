package domain

import (
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/ui"
)

// AgentType identifies one of the conversational personas.
type AgentType string

const (
	AgentRecruitment AgentType = "recruitment"
	AgentTraining    AgentType = "training"
	AgentFinancial   AgentType = "financial"
	AgentEducational AgentType = "educational"
)

// AgentTypes lists every supported agent type in display order.
func AgentTypes() []AgentType {
	return []AgentType{AgentRecruitment, AgentTraining, AgentFinancial, AgentEducational}
}

// Valid reports whether t is a known agent type.
func (t AgentType) Valid() bool {
	switch t {
	case AgentRecruitment, AgentTraining, AgentFinancial, AgentEducational:
		return true
	}
	return false
}

// ParseAgentType validates a raw path value.
func ParseAgentType(s string) (AgentType, error) {
	t := AgentType(s)
	if !t.Valid() {
		return "", &ErrValidation{Field: "type", Message: "Invalid agent type"}
	}
	return t, nil
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one role-tagged entry of a conversation.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// RichResponse is the structured reply of an agent.
type RichResponse struct {
	Text       string         `json:"text"`
	Components []ui.Component `json:"components"`
	Segues     []ui.Component `json:"segues"`
	Metadata   map[string]any `json:"metadata"`
}

// Fallback reports whether the response is a degraded placeholder.
func (r *RichResponse) Fallback() bool {
	v, _ := r.Metadata["fallback"].(bool)
	return v
}

// AgentSession is one conversation thread with one agent type.
type AgentSession struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId,omitempty"`
	AgentType    AgentType     `json:"agentType"`
	Messages     []Message     `json:"messages"`
	LastResponse *RichResponse `json:"lastResponse,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// AgentChatRequest is the body of POST /api/agents/{type}.
type AgentChatRequest struct {
	Message   string    `json:"message"`
	SessionID string    `json:"sessionId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	History   []Message `json:"history,omitempty"`
}

// AgentChatResponse is the rich response plus the session it was stored in.
type AgentChatResponse struct {
	RichResponse
	SessionID string `json:"sessionId"`
}

// InitialMessageResponse is returned by GET /api/agents/{type}.
type InitialMessageResponse struct {
	InitialMessage string    `json:"initialMessage"`
	AgentType      AgentType `json:"agentType"`
}

// AIMetrics is a point-in-time view of completion usage.
type AIMetrics struct {
	TotalRequests       int64   `json:"totalRequests"`
	FallbackRate        float64 `json:"fallbackRate"`
	PromptTokens        int64   `json:"promptTokens"`
	CompletionTokens    int64   `json:"completionTokens"`
	AvgTokensPerRequest float64 `json:"avgTokensPerRequest"`
	EstimatedCostUsd    float64 `json:"estimatedCostUsd"`
	CacheHitRate        float64 `json:"cacheHitRate"`
	SnapshotsWritten    int64   `json:"snapshotsWritten"`
	SnapshotsSkipped    int64   `json:"snapshotsSkipped"`
	Period              string  `json:"period"`
}
