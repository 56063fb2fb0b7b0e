package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/agent"
	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var agentTracer = otel.Tracer("service/agent")

// contextSource supplies the prompt context of a signed-in user.
type contextSource interface {
	EnhancedContext(ctx context.Context, userID string, current domain.AgentType) *domain.EnhancedContext
}

// AgentService runs chat turns against the agents and persists sessions.
type AgentService struct {
	registry *agent.Registry
	store    port.Store
	contexts contextSource
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewAgentService(registry *agent.Registry, store port.Store, contexts contextSource, metrics *observability.Metrics, logger *zap.Logger) *AgentService {
	return &AgentService{
		registry: registry,
		store:    store,
		contexts: contexts,
		metrics:  metrics,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AgentService) agent(agentType string) (*agent.Agent, error) {
	t, err := domain.ParseAgentType(agentType)
	if err != nil {
		return nil, err
	}
	return s.registry.Get(t)
}

// InitialMessage: GET /api/agents/{type}
func (s *AgentService) InitialMessage(agentType string) (*domain.InitialMessageResponse, error) {
	a, err := s.agent(agentType)
	if err != nil {
		return nil, err
	}
	return &domain.InitialMessageResponse{InitialMessage: a.InitialMessage(), AgentType: a.Type}, nil
}

// ============================================================
// Chat: POST /api/agents/{type}
// ============================================================

// Chat answers one user message. authUserID, when set, comes from a
// verified token and takes precedence over the userId of the body. Model
// failures never surface here; only persistence errors do.
func (s *AgentService) Chat(ctx context.Context, agentType string, req *domain.AgentChatRequest, authUserID string) (*domain.AgentChatResponse, error) {
	ctx, span := agentTracer.Start(ctx, "AgentService.Chat")
	defer span.End()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordRequestDuration("agent_chat", time.Since(start))
		}
	}()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &domain.ErrValidation{Field: "message", Message: "Message is required"}
	}
	a, err := s.agent(agentType)
	if err != nil {
		return nil, err
	}

	userID := req.UserID
	if authUserID != "" {
		userID = authUserID
	}
	span.SetAttributes(
		attribute.String("agent.type", string(a.Type)),
		attribute.String("user.id", userID),
		attribute.String("session.id", req.SessionID),
	)

	var (
		session *domain.AgentSession
		history = req.History
	)
	if req.SessionID != "" {
		session, err = s.loadSession(ctx, a.Type, req.SessionID, userID)
		if err != nil {
			return nil, err
		}
		// the stored thread is authoritative for existing sessions
		if len(session.Messages) > 0 {
			history = session.Messages
		}
	}

	resp := a.Respond(ctx, message, history, s.agentContext(ctx, a.Type, userID, req.SessionID))

	now := s.now()
	turn := []domain.Message{
		{Role: domain.RoleUser, Content: message, Timestamp: now},
		{Role: domain.RoleAssistant, Content: resp.Text, Timestamp: now},
	}

	if session == nil {
		session = &domain.AgentSession{
			UserID:       userID,
			AgentType:    a.Type,
			Messages:     turn,
			LastResponse: &resp,
		}
		if err := s.store.CreateSession(ctx, session); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	} else {
		session.Messages = append(slices.Clone(history), turn...)
		session.LastResponse = &resp
		if session.UserID == "" {
			session.UserID = userID
		}
		if err := s.store.UpdateSession(ctx, session); err != nil {
			return nil, fmt.Errorf("update session: %w", err)
		}
	}

	if userID != "" {
		s.recordChat(ctx, userID, a.Type)
	}

	s.logger.Info("agent turn completed",
		zap.String("agent", string(a.Type)),
		zap.String("session_id", session.ID),
		zap.String("user_id", userID),
		zap.Int("messages", len(session.Messages)),
		zap.Int("components", len(resp.Components)),
		zap.Bool("fallback", resp.Fallback()),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &domain.AgentChatResponse{RichResponse: resp, SessionID: session.ID}, nil
}

func (s *AgentService) agentContext(ctx context.Context, t domain.AgentType, userID, sessionID string) agent.AgentContext {
	ac := agent.AgentContext{UserID: userID, SessionID: sessionID}
	if userID == "" {
		return ac
	}
	if s.contexts != nil {
		if ec := s.contexts.EnhancedContext(ctx, userID, t); ec != nil {
			ac.Enhanced = ec
			ac.Profile = ec.Profile
			return ac
		}
	}
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		s.logger.Warn("profile lookup failed, answering without context",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return ac
	}
	ac.Profile = domain.ProfileContextOf(p)
	return ac
}

// loadSession hides sessions of other users and other agents behind a
// plain not-found.
func (s *AgentService) loadSession(ctx context.Context, t domain.AgentType, sessionID, userID string) (*domain.AgentSession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		var nf *domain.ErrNotFound
		if errors.As(err, &nf) {
			return nil, err
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session.AgentType != t || (session.UserID != "" && session.UserID != userID) {
		return nil, &domain.ErrNotFound{Resource: "session", ID: sessionID, Message: "Session not found"}
	}
	return session, nil
}

func (s *AgentService) recordChat(ctx context.Context, userID string, t domain.AgentType) {
	if err := s.store.CreateActivity(ctx, &domain.UserActivity{
		UserID:    userID,
		Type:      "agent_chat",
		AgentType: string(t),
		Action:    "message",
		CreatedAt: s.now(),
	}); err != nil {
		s.logger.Warn("failed to record chat activity",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}

// GetSession: GET /api/agents/{type}/sessions/{sessionId}
func (s *AgentService) GetSession(ctx context.Context, agentType, sessionID, userID string) (*domain.AgentSession, error) {
	ctx, span := agentTracer.Start(ctx, "AgentService.GetSession")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sessionID))

	t, err := domain.ParseAgentType(agentType)
	if err != nil {
		return nil, err
	}
	return s.loadSession(ctx, t, sessionID, userID)
}
