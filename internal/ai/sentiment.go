package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"go.uber.org/zap"
)

const (
	maxSentimentInput = 2000
	minSentimentInput = 10
)

const sentimentPrompt = `Analyze the sentiment of the following user messages. Return ONLY valid JSON in this format:
{
  "score": number between -1 (very negative) and 1 (very positive),
  "sentiment": "very_negative" | "negative" | "neutral" | "positive" | "very_positive",
  "confidence": number between 0 and 1,
  "keywords": ["key", "words"],
  "summary": "one sentence describing the user's overall tone"
}`

// AnalyzeConversationSentiment scores the user side of the given sessions.
// It returns nil when there is nothing worth analyzing or no backend.
func (s *Service) AnalyzeConversationSentiment(ctx context.Context, sessions []domain.AgentSession) *domain.Sentiment {
	if !s.Enabled() || len(sessions) == 0 {
		return nil
	}

	text := userText(sessions)
	if len(text) < minSentimentInput {
		return nil
	}
	if len(text) > maxSentimentInput {
		text = text[:maxSentimentInput]
	}

	ctx, span := tracer.Start(ctx, "AI.AnalyzeConversationSentiment")
	defer span.End()

	completion, err := s.completer.Complete(ctx, port.CompletionRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: sentimentPrompt},
			{Role: domain.RoleUser, Content: text},
		},
		Temperature: 0.3,
		MaxTokens:   200,
		JSON:        true,
	})
	if err != nil {
		s.logger.Warn("sentiment analysis failed", zap.Error(err))
		return nil
	}

	var raw struct {
		Score      *float64 `json:"score"`
		Label      string   `json:"sentiment"`
		Confidence *float64 `json:"confidence"`
		Keywords   []string `json:"keywords"`
		Summary    string   `json:"summary"`
	}
	if err := decodeJSON(completion.Content, &raw); err != nil {
		s.logger.Warn("sentiment response is not JSON", zap.Error(err))
		return nil
	}

	out := &domain.Sentiment{
		Score:      0,
		Label:      normalizeSentiment(raw.Label),
		Confidence: 0.5,
		Keywords:   raw.Keywords,
		Summary:    raw.Summary,
	}
	if raw.Score != nil {
		out.Score = clamp(*raw.Score, -1, 1)
	}
	if raw.Confidence != nil {
		out.Confidence = clamp(*raw.Confidence, 0, 1)
	}
	if out.Keywords == nil {
		out.Keywords = []string{}
	}
	return out
}

// userText joins every user message across sessions with a space.
func userText(sessions []domain.AgentSession) string {
	var parts []string
	for _, sess := range sessions {
		for _, m := range sess.Messages {
			if m.Role == domain.RoleUser && m.Content != "" {
				parts = append(parts, m.Content)
			}
		}
	}
	return strings.Join(parts, " ")
}

func normalizeSentiment(label string) string {
	switch l := strings.ToLower(strings.TrimSpace(label)); l {
	case domain.SentimentVeryNegative, domain.SentimentNegative, domain.SentimentNeutral,
		domain.SentimentPositive, domain.SentimentVeryPositive:
		return l
	}
	return domain.SentimentNeutral
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// decodeJSON unmarshals model output, tolerating a surrounding markdown fence.
func decodeJSON(content string, v any) error {
	c := strings.TrimSpace(content)
	if strings.HasPrefix(c, "```") {
		c = strings.TrimPrefix(c, "```json")
		c = strings.TrimPrefix(c, "```")
		c = strings.TrimSuffix(strings.TrimSpace(c), "```")
	}
	return json.Unmarshal([]byte(c), v)
}
