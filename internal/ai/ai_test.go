package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"
	"github.com/boddenberg/recruit-assist-go/internal/port"
	"github.com/boddenberg/recruit-assist-go/internal/ui"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCompleter struct {
	content string
	err     error
	reqs    []port.CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req port.CompletionRequest) (*port.Completion, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &port.Completion{Content: f.content}, nil
}

func newService(c port.Completer) *Service {
	return NewService(c, observability.NewMetrics(), zap.NewNop())
}

var testConfig = PromptConfig{
	SystemPrompt:  "You are a helpful assistant.",
	Guidelines:    map[string]any{"tone": []string{"friendly"}},
	UIPrompts:     map[string]string{"buttons": "Offer next steps", "cards": "Summarize options"},
	UIPromptOrder: []string{"buttons", "cards"},
}

func userMsg(s string) domain.Message {
	return domain.Message{Role: domain.RoleUser, Content: s}
}

func TestGenerateRichResponse_NoCompleterReturnsPlaceholder(t *testing.T) {
	resp := newService(nil).GenerateRichResponse(context.Background(), []domain.Message{userMsg("hi")}, testConfig, nil)

	assert.Equal(t, PlaceholderText, resp.Text)
	assert.True(t, resp.Fallback())
	assert.NotNil(t, resp.Components)
	assert.NotNil(t, resp.Segues)
	assert.Empty(t, resp.Components)
}

func TestGenerateRichResponse_CompletionErrorReturnsPlaceholder(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("boom")}
	resp := newService(fc).GenerateRichResponse(context.Background(), []domain.Message{userMsg("hi")}, testConfig, nil)

	assert.Equal(t, PlaceholderText, resp.Text)
	assert.True(t, resp.Fallback())
	assert.Len(t, fc.reqs, 1, "rich responses are attempted once")
}

func TestGenerateRichResponse_BuildsPromptAndRequest(t *testing.T) {
	fc := &fakeCompleter{content: `{"text":"ok"}`}
	ec := &domain.EnhancedContext{Formatted: "USER PROFILE:\n- Age: 22"}
	newService(fc).GenerateRichResponse(context.Background(), []domain.Message{userMsg("hi")}, testConfig, ec)

	require.Len(t, fc.reqs, 1)
	req := fc.reqs[0]
	assert.True(t, req.JSON)
	assert.Equal(t, 1500, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)

	require.Len(t, req.Messages, 3)
	system := req.Messages[0].Content
	assert.True(t, strings.HasPrefix(system, "You are a helpful assistant.\n\nGuidelines:\n"))
	assert.Contains(t, system, "User context:\nUSER PROFILE:\n- Age: 22")
	assert.Contains(t, system, "UI Enhancement Guidelines:\nbuttons: Offer next steps\ncards: Summarize options\n")
	assert.Equal(t, domain.RoleUser, req.Messages[1].Role)

	schema := req.Messages[2].Content
	assert.Equal(t, domain.RoleSystem, req.Messages[2].Role)
	for _, typ := range ui.Types() {
		assert.Contains(t, schema, string(typ))
	}
}

func TestGenerateRichResponse_DropsInvalidComponents(t *testing.T) {
	fc := &fakeCompleter{content: `{
		"text": "Here are your options",
		"components": [
			{"type":"button","props":{"label":"Go","action":"explore_career"}},
			{"type":"hologram","props":{}},
			{"type":"card"}
		],
		"segues": [{"label":"Ask about pay","prompt":"What is the pay?"}],
		"metadata": {"type":"career_paths"}
	}`}
	resp := newService(fc).GenerateRichResponse(context.Background(), []domain.Message{userMsg("careers")}, testConfig, nil)

	assert.Equal(t, "Here are your options", resp.Text)
	require.Len(t, resp.Components, 1)
	assert.Equal(t, "explore_career", resp.Components[0].Action())
	require.Len(t, resp.Segues, 1)
	assert.Equal(t, ui.TypeSegue, resp.Segues[0].Type)
	assert.Equal(t, 2, resp.Metadata["rejectedComponents"])
	assert.Equal(t, "career_paths", resp.Metadata["type"])
	assert.False(t, resp.Fallback())
}

func TestGenerateRichResponse_NonJSONBecomesText(t *testing.T) {
	fc := &fakeCompleter{content: "just words"}
	resp := newService(fc).GenerateRichResponse(context.Background(), []domain.Message{userMsg("hi")}, testConfig, nil)

	assert.Equal(t, "just words", resp.Text)
	assert.Empty(t, resp.Components)
	assert.NotNil(t, resp.Segues)
}

func TestGenerateResponse(t *testing.T) {
	assert.Equal(t, PlaceholderText, newService(nil).GenerateResponse(context.Background(), nil, testConfig, nil))

	fc := &fakeCompleter{content: ""}
	assert.Equal(t, emptyCompletionText, newService(fc).GenerateResponse(context.Background(), nil, testConfig, nil))
	assert.Equal(t, 1000, fc.reqs[0].MaxTokens)
	assert.False(t, fc.reqs[0].JSON)
}

func sessionWith(agent domain.AgentType, msgs ...string) domain.AgentSession {
	s := domain.AgentSession{AgentType: agent}
	for _, m := range msgs {
		s.Messages = append(s.Messages, userMsg(m), domain.Message{Role: domain.RoleAssistant, Content: "reply"})
	}
	return s
}

func TestAnalyzeConversationSentiment(t *testing.T) {
	sessions := []domain.AgentSession{sessionWith(domain.AgentTraining, "I really love the new workout plan")}

	assert.Nil(t, newService(nil).AnalyzeConversationSentiment(context.Background(), sessions))

	fc := &fakeCompleter{content: `{"score": 1.7, "sentiment": "Positive", "keywords": ["love"], "summary": "Upbeat"}`}
	svc := newService(fc)
	assert.Nil(t, svc.AnalyzeConversationSentiment(context.Background(), nil))
	assert.Nil(t, svc.AnalyzeConversationSentiment(context.Background(), []domain.AgentSession{sessionWith(domain.AgentTraining, "ok")}))
	assert.Empty(t, fc.reqs, "short input is not sent")

	got := svc.AnalyzeConversationSentiment(context.Background(), sessions)
	require.NotNil(t, got)
	assert.Equal(t, domain.SentimentPositive, got.Label)
	assert.Equal(t, 1.0, got.Score)
	assert.Equal(t, 0.5, got.Confidence)
	assert.Equal(t, []string{"love"}, got.Keywords)

	req := fc.reqs[0]
	assert.Equal(t, 200, req.MaxTokens)
	assert.Equal(t, "I really love the new workout plan", req.Messages[1].Content)
}

func TestAnalyzeConversationSentiment_CapsInput(t *testing.T) {
	fc := &fakeCompleter{content: `{"score":0,"sentiment":"neutral","confidence":0.9}`}
	long := strings.Repeat("a", 3000)
	newService(fc).AnalyzeConversationSentiment(context.Background(), []domain.AgentSession{sessionWith(domain.AgentFinancial, long)})

	require.Len(t, fc.reqs, 1)
	assert.Len(t, fc.reqs[0].Messages[1].Content, maxSentimentInput)
}

func TestGenerateUserInsights_NormalizesEngagement(t *testing.T) {
	uc := &domain.UserContext{
		Profile:  domain.ProfileContext{Age: 21, Interests: []string{"aviation"}},
		Progress: []domain.UserProgress{{Category: domain.CategoryCareer, Level: 2, Experience: 120}},
		Usage:    domain.UsageStats{AgentCounts: map[domain.AgentType]int{domain.AgentRecruitment: 3}, MostUsedAgent: domain.AgentRecruitment},
	}
	fc := &fakeCompleter{content: "```json\n{\"summary\":\"Motivated\",\"engagement\":{\"level\":\"Very High\"}}\n```"}
	got := newService(fc).GenerateUserInsights(context.Background(), uc, &domain.Sentiment{Label: "positive", Summary: "Upbeat"})

	require.NotNil(t, got)
	assert.Equal(t, domain.EngagementVeryHigh, got.Engagement.Level)
	assert.Equal(t, []string{}, got.Recommendations)

	input := fc.reqs[0].Messages[1].Content
	assert.Contains(t, input, "- Age: 21")
	assert.Contains(t, input, "- Interests: aviation")
	assert.Contains(t, input, "- career: Level 2, 120 XP")
	assert.Contains(t, input, "- Agent Distribution: recruitment: 3")
	assert.Contains(t, input, "Sentiment: positive (Upbeat)")
	assert.Equal(t, 400, fc.reqs[0].MaxTokens)

	fc.content = `{"engagement":{"level":"stellar"}}`
	got = newService(fc).GenerateUserInsights(context.Background(), uc, nil)
	require.NotNil(t, got)
	assert.Equal(t, domain.EngagementMedium, got.Engagement.Level)

	assert.Nil(t, newService(nil).GenerateUserInsights(context.Background(), uc, nil))
}

func TestExtractConversationInsights(t *testing.T) {
	fc := &fakeCompleter{content: `{"topics":["fitness"],"summary":"Fitness focused"}`}
	sessions := []domain.AgentSession{sessionWith(domain.AgentTraining, "short", "How do I build endurance for the test?")}

	got := newService(fc).ExtractConversationInsights(context.Background(), sessions)
	require.NotNil(t, got)
	assert.Equal(t, []string{"fitness"}, got.Topics)
	assert.Equal(t, []string{}, got.Concerns)

	content := fc.reqs[0].Messages[1].Content
	assert.True(t, strings.HasPrefix(content, "User conversation messages:\n\n[training agent, "))
	assert.NotContains(t, content, "short")
	assert.Equal(t, 600, fc.reqs[0].MaxTokens)

	assert.Nil(t, newService(fc).ExtractConversationInsights(context.Background(), []domain.AgentSession{sessionWith(domain.AgentTraining, "tiny")}))
}

func TestExtractConversationInsightsSimple(t *testing.T) {
	sessions := []domain.AgentSession{
		sessionWith(domain.AgentRecruitment,
			"What are the requirements for special forces? I want to prepare.",
			"Tell me about aviation careers",
			"What are the requirements for special forces? I want to prepare.",
		),
		sessionWith(domain.AgentTraining, "I need a workout. Why?"),
	}

	got := ExtractConversationInsightsSimple(sessions)
	assert.Equal(t, []string{"Special Forces", "Requirements", "Preparation", "Career Paths", "Aviation", "Physical Training"}, got.Topics)
	assert.Equal(t, []string{"What are the requirements for special forces?"}, got.Questions)
	assert.Equal(t, "User has discussed 6 main topics across 2 sessions.", got.Summary)
	assert.Equal(t, []string{}, got.Goals)
}

func TestTopics_ITIsAWholeWord(t *testing.T) {
	assert.Empty(t, Topics(nil, "I want to sit with my unit"))
	assert.Equal(t, []string{"IT/Technology"}, Topics(nil, "Is IT a good path"))
}
