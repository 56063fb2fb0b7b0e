package ai

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"go.uber.org/zap"
)

const (
	maxExtractedMessages = 30
	maxTopics            = 10
	maxQuestions         = 5
)

const extractorPrompt = `Analyze the following user conversation messages and extract meaningful insights. Return ONLY valid JSON in this format:
{
  "topics": [main topics discussed, e.g. "physical training", "career paths"],
  "interests": [interests explicitly expressed, e.g. "special forces", "IT roles"],
  "questions": [key questions asked, e.g. "What are the requirements?"],
  "concerns": [concerns or worries mentioned, e.g. "worried about fitness"],
  "goals": [goals or aspirations mentioned, e.g. "become an officer"],
  "preferences": [preferences expressed, e.g. "likes hands-on learning"],
  "summary": "brief 2-3 sentence summary of what the user has been discussing"
}

Focus on extracting:
- Actual topics discussed (not just keywords)
- Interests the user explicitly mentioned
- Questions that reveal what they want to know
- Concerns that might affect their decisions
- Goals they've expressed
- Preferences about how they want to learn or be helped

Be specific and actionable.`

// ExtractConversationInsights asks the model what the user has been
// talking about. Sessions are expected newest first.
func (s *Service) ExtractConversationInsights(ctx context.Context, sessions []domain.AgentSession) *domain.ConversationInsights {
	if !s.Enabled() || len(sessions) == 0 {
		return nil
	}

	var lines []string
	for _, sess := range sessions {
		for _, m := range sess.Messages {
			if m.Role != domain.RoleUser || len(strings.TrimSpace(m.Content)) <= 10 {
				continue
			}
			ts := m.Timestamp
			if ts.IsZero() {
				ts = sess.UpdatedAt
			}
			lines = append(lines, fmt.Sprintf("[%s agent, %s]: %s", sess.AgentType, ts.Format("2006-01-02"), m.Content))
			if len(lines) == maxExtractedMessages {
				break
			}
		}
		if len(lines) == maxExtractedMessages {
			break
		}
	}
	if len(lines) == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "AI.ExtractConversationInsights")
	defer span.End()

	completion, err := s.completer.Complete(ctx, port.CompletionRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: extractorPrompt},
			{Role: domain.RoleUser, Content: "User conversation messages:\n\n" + strings.Join(lines, "\n\n")},
		},
		Temperature: 0.5,
		MaxTokens:   600,
		JSON:        true,
	})
	if err != nil {
		s.logger.Warn("conversation extraction failed", zap.Error(err))
		return nil
	}

	var out domain.ConversationInsights
	if err := decodeJSON(completion.Content, &out); err != nil {
		s.logger.Warn("conversation extraction response is not JSON", zap.Error(err))
		return nil
	}
	fillEmpty(&out)
	return &out
}

type topicKeyword struct {
	keyword string
	topic   string
	word    bool
}

// topicKeywords is scanned in order so topics come out deterministically.
var topicKeywords = []topicKeyword{
	{keyword: "training", topic: "Physical Training"},
	{keyword: "workout", topic: "Physical Training"},
	{keyword: "fitness", topic: "Physical Fitness"},
	{keyword: "career", topic: "Career Paths"},
	{keyword: "benefits", topic: "Benefits"},
	{keyword: "education", topic: "Education"},
	{keyword: "physical", topic: "Physical Training"},
	{keyword: "mental", topic: "Mental Wellness"},
	{keyword: "special forces", topic: "Special Forces"},
	{keyword: "it", topic: "IT/Technology", word: true},
	{keyword: "technology", topic: "IT/Technology"},
	{keyword: "combat", topic: "Combat Roles"},
	{keyword: "leadership", topic: "Leadership"},
	{keyword: "medical", topic: "Medical Roles"},
	{keyword: "aviation", topic: "Aviation"},
	{keyword: "intelligence", topic: "Intelligence"},
	{keyword: "administration", topic: "Administration"},
	{keyword: "requirements", topic: "Requirements"},
	{keyword: "qualifications", topic: "Requirements"},
	{keyword: "prepare", topic: "Preparation"},
}

var (
	questionPattern = regexp.MustCompile(`[^.!?]*\?`)
	wordIT          = regexp.MustCompile(`\bit\b`)
)

// Topics returns the keyword topics found in the lower-cased content, in
// table order, appended to seen without duplicates.
func Topics(seen []string, content string) []string {
	lc := strings.ToLower(content)
	for _, tk := range topicKeywords {
		var hit bool
		if tk.word {
			hit = wordIT.MatchString(lc)
		} else {
			hit = strings.Contains(lc, tk.keyword)
		}
		if hit && !slices.Contains(seen, tk.topic) {
			seen = append(seen, tk.topic)
		}
	}
	return seen
}

// ExtractConversationInsightsSimple is the keyword-only extractor used
// when no model is available. It looks at the last ten messages of each
// session.
func ExtractConversationInsightsSimple(sessions []domain.AgentSession) *domain.ConversationInsights {
	var topics, questions []string

	for _, sess := range sessions {
		msgs := sess.Messages
		if len(msgs) > 10 {
			msgs = msgs[len(msgs)-10:]
		}
		for _, m := range msgs {
			if m.Role != domain.RoleUser || m.Content == "" {
				continue
			}
			topics = Topics(topics, m.Content)

			lc := strings.ToLower(m.Content)
			if !strings.Contains(lc, "?") && !strings.Contains(lc, "what") &&
				!strings.Contains(lc, "how") && !strings.Contains(lc, "why") {
				continue
			}
			match := questionPattern.FindString(m.Content)
			if len(match) <= 10 || len(match) >= 150 {
				continue
			}
			q := strings.TrimSpace(match)
			if !slices.Contains(questions, q) {
				questions = append(questions, q)
			}
		}
	}

	out := &domain.ConversationInsights{
		Topics:    capped(topics, maxTopics),
		Questions: capped(questions, maxQuestions),
		Summary:   fmt.Sprintf("User has discussed %d main topics across %d sessions.", len(topics), len(sessions)),
	}
	fillEmpty(out)
	return out
}

func capped(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func fillEmpty(ci *domain.ConversationInsights) {
	for _, p := range []*[]string{&ci.Topics, &ci.Interests, &ci.Questions, &ci.Concerns, &ci.Goals, &ci.Preferences} {
		if *p == nil {
			*p = []string{}
		}
	}
}
