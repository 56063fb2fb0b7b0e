package agent

import (
	"context"
	"strings"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/ai"
	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/ui"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("agent")

// AgentContext is what the caller knows about the user for one turn.
type AgentContext struct {
	UserID    string
	SessionID string
	Profile   *domain.ProfileContext
	Enhanced  *domain.EnhancedContext
}

// enhanced returns the context handed to personalization and prompting.
func (ac AgentContext) enhanced() *domain.EnhancedContext {
	if ac.Enhanced != nil {
		return ac.Enhanced
	}
	if ac.Profile != nil {
		return &domain.EnhancedContext{Profile: ac.Profile}
	}
	return nil
}

func (ac AgentContext) profile() *domain.ProfileContext {
	if ac.Profile != nil {
		return ac.Profile
	}
	if ac.Enhanced != nil {
		return ac.Enhanced.Profile
	}
	return nil
}

type Agent struct {
	Type   domain.AgentType
	Config Config

	ai     *ai.Service
	logger *zap.Logger
}

func New(t domain.AgentType, cfg Config, svc *ai.Service, logger *zap.Logger) *Agent {
	return &Agent{Type: t, Config: cfg, ai: svc, logger: logger}
}

func (a *Agent) InitialMessage() string {
	return initialMessages[a.Type]
}

// PromptConfig packages the agent's prompt material with the given
// (possibly personalized) guidelines.
func (a *Agent) PromptConfig(g Guidelines) ai.PromptConfig {
	return ai.PromptConfig{
		SystemPrompt:  a.Config.SystemPrompt,
		Guidelines:    g,
		UIPrompts:     a.Config.UIPrompts,
		UIPromptOrder: a.Config.UIPromptKeys(),
	}
}

// RespondLegacy answers with the canned reply for message.
func (a *Agent) RespondLegacy(message string, profile *domain.ProfileContext) LegacyReply {
	return RespondLegacy(a.Type, message, profile)
}

// Respond produces the rich reply to message. It never fails: when the
// model is unavailable the canned reply supplies the text.
func (a *Agent) Respond(ctx context.Context, message string, history []domain.Message, ac AgentContext) domain.RichResponse {
	ctx, span := tracer.Start(ctx, "Agent.Respond")
	defer span.End()
	span.SetAttributes(attribute.String("agent.type", string(a.Type)))

	msgs := make([]domain.Message, 0, len(history)+1)
	for _, m := range history {
		// clients only get to replay their own conversation
		if m.Role == domain.RoleUser || m.Role == domain.RoleAssistant {
			msgs = append(msgs, m)
		}
	}
	msgs = append(msgs, domain.Message{Role: domain.RoleUser, Content: message, Timestamp: time.Now().UTC()})

	ec := ac.enhanced()
	guidelines := Personalize(a.Config.Guidelines, a.Type, ec)
	resp := a.ai.GenerateRichResponse(ctx, msgs, a.PromptConfig(guidelines), ec)

	if resp.Metadata == nil {
		resp.Metadata = map[string]any{}
	}
	if resp.Fallback() || strings.TrimSpace(resp.Text) == "" {
		legacy := a.RespondLegacy(message, ac.profile())
		resp.Text = legacy.Text
		resp.Metadata["type"] = legacy.Type
		a.logger.Debug("serving canned reply",
			zap.String("agent", string(a.Type)),
			zap.String("type", legacy.Type),
		)
	}
	if resp.Components == nil {
		resp.Components = []ui.Component{}
	}
	if resp.Segues == nil {
		resp.Segues = []ui.Component{}
	}
	resp.Metadata["agentType"] = string(a.Type)

	return ApplyCTAs(CTARules(a.Type), a.Config, message, resp)
}

// Registry resolves agents by type.
type Registry struct {
	agents map[domain.AgentType]*Agent
}

func NewRegistry(cfgs Configs, svc *ai.Service, logger *zap.Logger) *Registry {
	r := &Registry{agents: make(map[domain.AgentType]*Agent, len(cfgs))}
	for _, t := range domain.AgentTypes() {
		cfg, ok := cfgs[t]
		if !ok {
			continue
		}
		r.agents[t] = New(t, cfg, svc, logger.With(zap.String("agent", string(t))))
	}
	return r
}

func (r *Registry) Get(t domain.AgentType) (*Agent, error) {
	a, ok := r.agents[t]
	if !ok {
		return nil, &domain.ErrValidation{Field: "type", Message: "Invalid agent type"}
	}
	return a, nil
}
