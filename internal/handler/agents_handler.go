package handler

import (
	"net/http"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Agents: /api/agents/{type}
// ============================================================

func initialMessageHandler(svc *service.AgentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /api/agents/{type}")
		defer span.End()

		agentType := chi.URLParam(r, "type")
		span.SetAttributes(attribute.String("agent.type", agentType))

		resp, err := svc.InitialMessage(agentType)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func agentChatHandler(svc *service.AgentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/agents/{type}")
		defer span.End()

		agentType := chi.URLParam(r, "type")
		span.SetAttributes(attribute.String("agent.type", agentType))

		var req domain.AgentChatRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		resp, err := svc.Chat(ctx, agentType, &req, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func agentSessionHandler(svc *service.AgentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/agents/{type}/sessions/{sessionId}")
		defer span.End()

		session, err := svc.GetSession(ctx, chi.URLParam(r, "type"), chi.URLParam(r, "sessionId"), UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}
