// Package ai builds prompts around a port.Completer and turns its output
// into typed rich responses, sentiment and behavioral insights. Every
// entry point degrades instead of failing: callers never see an error.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"
	"github.com/boddenberg/recruit-assist-go/internal/port"
	"github.com/boddenberg/recruit-assist-go/internal/ui"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("ai")

const (
	// PlaceholderText is returned whenever no completion is available.
	PlaceholderText = "I'm here to help! Please configure OPENAI_API_KEY to enable AI responses."

	emptyCompletionText = "I apologize, but I could not generate a response."
)

// PromptConfig is the agent material folded into the system prompt.
type PromptConfig struct {
	SystemPrompt string
	Guidelines   any
	UIPrompts    map[string]string
	// UIPromptOrder fixes the order of UIPrompts lines. Missing keys are skipped.
	UIPromptOrder []string
}

// Service wraps a Completer. A nil Completer runs in placeholder mode.
type Service struct {
	completer port.Completer
	metrics   *observability.Metrics
	logger    *zap.Logger
}

func NewService(completer port.Completer, metrics *observability.Metrics, logger *zap.Logger) *Service {
	return &Service{completer: completer, metrics: metrics, logger: logger}
}

// Enabled reports whether a completion backend is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.completer != nil
}

// Placeholder is the degraded rich response.
func Placeholder(reason string) domain.RichResponse {
	return domain.RichResponse{
		Text:       PlaceholderText,
		Components: []ui.Component{},
		Segues:     []ui.Component{},
		Metadata:   map[string]any{"fallback": true, "fallbackReason": reason},
	}
}

// GenerateRichResponse asks for a JSON rich response. It never fails: a
// missing backend or a failed call yields Placeholder.
func (s *Service) GenerateRichResponse(ctx context.Context, messages []domain.Message, cfg PromptConfig, ec *domain.EnhancedContext) domain.RichResponse {
	ctx, span := tracer.Start(ctx, "AI.GenerateRichResponse")
	defer span.End()

	if !s.Enabled() {
		s.countResponse(true)
		return Placeholder("disabled")
	}

	req := port.CompletionRequest{
		Messages:    make([]domain.Message, 0, len(messages)+2),
		Temperature: 0.7,
		MaxTokens:   1500,
		JSON:        true,
	}
	req.Messages = append(req.Messages, domain.Message{Role: domain.RoleSystem, Content: buildRichSystemPrompt(cfg, ec)})
	req.Messages = append(req.Messages, messages...)
	req.Messages = append(req.Messages, domain.Message{Role: domain.RoleSystem, Content: schemaInstruction})

	completion, err := s.completer.Complete(ctx, req)
	if err != nil {
		s.logger.Warn("rich completion failed, using placeholder", zap.Error(err))
		span.RecordError(err)
		s.countResponse(true)
		return Placeholder("completion_error")
	}
	if strings.TrimSpace(completion.Content) == "" {
		s.countResponse(true)
		return Placeholder("empty_completion")
	}

	resp, rejected := parseRichResponse(completion.Content)
	if len(rejected) > 0 {
		s.logger.Debug("dropped invalid components",
			zap.Int("count", len(rejected)),
			zap.Strings("reasons", rejected),
		)
	}
	span.SetAttributes(
		attribute.Int("ai.components", len(resp.Components)),
		attribute.Int("ai.rejected", len(rejected)),
	)
	s.countResponse(false)
	return resp
}

// GenerateResponse is the plain-text variant used by older clients.
func (s *Service) GenerateResponse(ctx context.Context, messages []domain.Message, cfg PromptConfig, ec *domain.EnhancedContext) string {
	ctx, span := tracer.Start(ctx, "AI.GenerateResponse")
	defer span.End()

	if !s.Enabled() {
		s.countResponse(true)
		return PlaceholderText
	}

	req := port.CompletionRequest{
		Messages:    append([]domain.Message{{Role: domain.RoleSystem, Content: buildSystemPrompt(cfg, ec)}}, messages...),
		Temperature: 0.7,
		MaxTokens:   1000,
	}
	completion, err := s.completer.Complete(ctx, req)
	if err != nil {
		s.logger.Warn("completion failed, using placeholder", zap.Error(err))
		s.countResponse(true)
		return PlaceholderText
	}
	s.countResponse(false)
	if completion.Content == "" {
		return emptyCompletionText
	}
	return completion.Content
}

func (s *Service) countResponse(fallback bool) {
	if s != nil && s.metrics != nil {
		s.metrics.IncrAIResponse(fallback)
	}
}

// ============================================================
// Prompt assembly
// ============================================================

func buildSystemPrompt(cfg PromptConfig, ec *domain.EnhancedContext) string {
	var b strings.Builder
	b.WriteString(cfg.SystemPrompt)
	b.WriteString("\n\n")

	if cfg.Guidelines != nil {
		if g, err := json.MarshalIndent(cfg.Guidelines, "", "  "); err == nil {
			b.WriteString("Guidelines:\n")
			b.Write(g)
			b.WriteString("\n\n")
		}
	}

	if ec != nil {
		switch {
		case ec.Formatted != "":
			b.WriteString("User context:\n")
			b.WriteString(ec.Formatted)
			b.WriteString("\n\n")
		case ec.Profile != nil:
			if p, err := json.MarshalIndent(ec.Profile, "", "  "); err == nil {
				b.WriteString("User context:\n")
				b.Write(p)
				b.WriteString("\n\n")
			}
		}
	}
	return b.String()
}

func buildRichSystemPrompt(cfg PromptConfig, ec *domain.EnhancedContext) string {
	var b strings.Builder
	b.WriteString(buildSystemPrompt(cfg, ec))

	if len(cfg.UIPrompts) > 0 {
		b.WriteString("\nUI Enhancement Guidelines:\n")
		for _, key := range cfg.UIPromptOrder {
			if v, ok := cfg.UIPrompts[key]; ok {
				fmt.Fprintf(&b, "%s: %s\n", key, v)
			}
		}
	}

	b.WriteString("\nWhen appropriate, include interactive UI components like buttons, cards, and lists to make responses more engaging and actionable.")
	return b.String()
}

var schemaInstruction = `IMPORTANT: Respond ONLY with valid JSON in this exact format:
{
  "text": "Your main text response here",
  "components": [
    {
      "type": "button",
      "props": {
        "label": "Button text",
        "action": "action_identifier",
        "variant": "default"
      }
    },
    {
      "type": "card",
      "props": {
        "title": "Card title",
        "description": "Card description",
        "content": "Card content"
      }
    },
    {
      "type": "table",
      "props": {
        "headers": ["Column A", "Column B"],
        "rows": [["value", "value"]]
      }
    },
    {
      "type": "timeline",
      "props": {
        "milestones": [{"title": "Step", "date": "Week 1", "status": "upcoming"}]
      }
    },
    {
      "type": "matrix",
      "props": {
        "columns": ["Option A", "Option B"],
        "rows": [{"label": "Criterion", "values": ["yes", "no"]}]
      }
    }
  ],
  "segues": [
    {
      "type": "segue",
      "props": {
        "label": "Follow-up suggestion",
        "prompt": "Message to send if selected",
        "intent": "intent_identifier"
      }
    }
  ],
  "metadata": {
    "type": "response_type",
    "suggestedActions": ["action1", "action2"]
  }
}

Available component types: ` + typeList() + `
Use components to make responses interactive and engaging.`

func typeList() string {
	types := ui.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// ============================================================
// Response parsing
// ============================================================

type wireResponse struct {
	Text       string          `json:"text"`
	Components json.RawMessage `json:"components"`
	Segues     json.RawMessage `json:"segues"`
	Metadata   map[string]any  `json:"metadata"`
}

// parseRichResponse validates model output. Content that is not a JSON
// object becomes the text of the response.
func parseRichResponse(content string) (domain.RichResponse, []string) {
	var w wireResponse
	if err := json.Unmarshal([]byte(content), &w); err != nil {
		return domain.RichResponse{
			Text:       content,
			Components: []ui.Component{},
			Segues:     []ui.Component{},
			Metadata:   map[string]any{"unparsed": true},
		}, nil
	}

	components, rejected := ui.ParseAll(rawArray(w.Components), ui.Parse)
	segues, rejectedSegues := ui.ParseAll(rawArray(w.Segues), ui.ParseSegue)
	rejected = append(rejected, rejectedSegues...)

	meta := w.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	if len(rejected) > 0 {
		meta["rejectedComponents"] = len(rejected)
	}
	return domain.RichResponse{Text: w.Text, Components: components, Segues: segues, Metadata: meta}, rejected
}

// rawArray returns the entries of a JSON array, or nil for anything else.
func rawArray(raw json.RawMessage) []json.RawMessage {
	var out []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &out) != nil {
		return nil
	}
	return out
}
