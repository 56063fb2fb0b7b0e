package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/llm"
	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"
	"github.com/boddenberg/recruit-assist-go/internal/infra/resilience"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "finish_reason": "stop",
    "message": {"role": "assistant", "content": "{\"text\":\"hello\"}"}}],
  "usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
}`

func newAdapter(t *testing.T, url string, metrics *observability.Metrics) *llm.OpenAI {
	t.Helper()
	return llm.NewOpenAI(
		llm.Config{APIKey: "sk-test", BaseURL: url + "/", Timeout: 2 * time.Second},
		nil,
		resilience.NewCircuitBreaker("openai-test", zap.NewNop()),
		resilience.NewBulkhead(2),
		metrics,
		zap.NewNop(),
	)
}

func TestComplete_SendsParamsAndReadsUsage(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	}))
	defer srv.Close()

	metrics := observability.NewMetrics()
	o := newAdapter(t, srv.URL, metrics)

	out, err := o.Complete(context.Background(), port.CompletionRequest{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: "be brief"},
			{Role: domain.RoleUser, Content: "hi"},
		},
		Temperature: 0.7,
		MaxTokens:   1500,
		JSON:        true,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"text":"hello"}`, out.Content)
	assert.Equal(t, 12, out.PromptTokens)
	assert.Equal(t, 7, out.CompletionTokens)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.EqualValues(t, 1500, body["max_tokens"])
	assert.EqualValues(t, 0.7, body["temperature"])
	assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])
	assert.Len(t, body["messages"], 2)

	assert.EqualValues(t, 12, metrics.GetAISnapshot().PromptTokens)
}

func TestComplete_UpstreamErrorIsSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	o := newAdapter(t, srv.URL, observability.NewMetrics())

	_, err := o.Complete(context.Background(), port.CompletionRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})

	var ext *domain.ErrExternalService
	require.True(t, errors.As(err, &ext), "expected ErrExternalService, got %v", err)
	assert.Equal(t, "openai", ext.Service)
	assert.EqualValues(t, 1, calls.Load())
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	o := newAdapter(t, srv.URL, observability.NewMetrics())
	_, err := o.Complete(context.Background(), port.CompletionRequest{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})
	assert.Error(t, err)
}
