package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"go.uber.org/zap"
)

const insightsPrompt = `You are analyzing a user of a military recruitment and career assistant. Based on the context below, return ONLY valid JSON in this format:
{
  "summary": "2-3 sentence overview of the user",
  "preferences": ["preference"],
  "engagement": {
    "level": "low" | "medium" | "high" | "very_high",
    "description": "short explanation"
  },
  "recommendations": ["actionable recommendation"],
  "personality": {
    "traits": ["trait"],
    "learningStyle": "visual" | "auditory" | "kinesthetic" | "reading",
    "motivationType": "achievement" | "social" | "security" | "growth"
  }
}
Be concise but insightful. Base every statement on the provided data.`

// GenerateUserInsights derives a behavioral summary of the user. It
// returns nil without a backend or when the model output is unusable.
func (s *Service) GenerateUserInsights(ctx context.Context, uc *domain.UserContext, sentiment *domain.Sentiment) *domain.Insight {
	if !s.Enabled() || uc == nil {
		return nil
	}

	ctx, span := tracer.Start(ctx, "AI.GenerateUserInsights")
	defer span.End()

	completion, err := s.completer.Complete(ctx, port.CompletionRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: insightsPrompt},
			{Role: domain.RoleUser, Content: insightsInput(uc, sentiment)},
		},
		Temperature: 0.7,
		MaxTokens:   400,
		JSON:        true,
	})
	if err != nil {
		s.logger.Warn("insight generation failed", zap.Error(err))
		return nil
	}

	var insight domain.Insight
	if err := decodeJSON(completion.Content, &insight); err != nil {
		s.logger.Warn("insight response is not JSON", zap.Error(err))
		return nil
	}
	insight.Engagement.Level = normalizeEngagement(insight.Engagement.Level)
	if insight.Preferences == nil {
		insight.Preferences = []string{}
	}
	if insight.Recommendations == nil {
		insight.Recommendations = []string{}
	}
	if insight.Personality.Traits == nil {
		insight.Personality.Traits = []string{}
	}
	return &insight
}

func normalizeEngagement(level string) string {
	l := strings.ToLower(strings.TrimSpace(level))
	l = strings.ReplaceAll(l, " ", "_")
	switch l {
	case domain.EngagementLow, domain.EngagementMedium, domain.EngagementHigh, domain.EngagementVeryHigh:
		return l
	}
	return domain.EngagementMedium
}

// insightsInput renders the user context as the plain-text block the
// insight prompt reads.
func insightsInput(uc *domain.UserContext, sentiment *domain.Sentiment) string {
	var b strings.Builder
	p := uc.Profile

	b.WriteString("Profile:\n")
	fmt.Fprintf(&b, "- Age: %s\n", orUnknown(p.Age))
	fmt.Fprintf(&b, "- Location: %s\n", orNotSpecified(p.Location))
	fmt.Fprintf(&b, "- Interests: %s\n", joinOr(p.Interests, "None specified"))
	fmt.Fprintf(&b, "- Fitness Level: %s\n", orNotSpecified(p.FitnessLevel))
	goals := ""
	if p.CareerGoals != nil {
		goals = p.CareerGoals.Text
	}
	fmt.Fprintf(&b, "- Career Goals: %s\n", orNotSpecified(goals))

	b.WriteString("\nProgress:\n")
	if len(uc.Progress) == 0 {
		b.WriteString("- No progress recorded\n")
	}
	for _, pr := range uc.Progress {
		fmt.Fprintf(&b, "- %s: Level %d, %d XP\n", pr.Category, pr.Level, pr.Experience)
	}

	b.WriteString("\nActivity:\n")
	fmt.Fprintf(&b, "- Training Sessions: %d in last 30 days\n", len(uc.Activity.TrainingLogs))
	fmt.Fprintf(&b, "- Total Interactions: %d\n", uc.Activity.TotalInteractions)

	b.WriteString("\nUsage Patterns:\n")
	fmt.Fprintf(&b, "- Most Used Agent: %s\n", orNotSpecified(string(uc.Usage.MostUsedAgent)))
	fmt.Fprintf(&b, "- Agent Distribution: %s\n", agentDistribution(uc.Usage.AgentCounts))

	if len(uc.Conversations) > 0 {
		b.WriteString("\nConversations:\n")
		for _, c := range uc.Conversations {
			topics := c.Topics
			if len(topics) > 3 {
				topics = topics[:3]
			}
			fmt.Fprintf(&b, "- %s: %d sessions, %d messages, topics: %s\n",
				c.AgentType, c.SessionCount, c.TotalMessages, joinOr(topics, "none"))
		}
	}

	if sentiment != nil {
		fmt.Fprintf(&b, "\nSentiment: %s (%s)\n", sentiment.Label, sentiment.Summary)
	}
	return b.String()
}

func agentDistribution(counts map[domain.AgentType]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %d", k, counts[domain.AgentType(k)])
	}
	return strings.Join(parts, ", ")
}

func orUnknown(age int) string {
	if age <= 0 {
		return "Unknown"
	}
	return fmt.Sprint(age)
}

func orNotSpecified(s string) string {
	if s == "" {
		return "Not specified"
	}
	return s
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, ", ")
}
