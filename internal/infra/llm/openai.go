// Package llm adapts the OpenAI chat-completions API to port.Completer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/observability"
	"github.com/boddenberg/recruit-assist-go/internal/infra/resilience"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("llm")

// Config configures the OpenAI client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OpenAI is a single-attempt completer: no retries, guarded by a circuit
// breaker and a concurrency bulkhead.
type OpenAI struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	cb       *gobreaker.CircuitBreaker
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

var _ port.Completer = (*OpenAI)(nil)

// NewOpenAI builds the adapter. httpClient may be nil.
func NewOpenAI(cfg Config, httpClient *http.Client, cb *gobreaker.CircuitBreaker, bulkhead *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	client := openai.NewClient(opts...)

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAI{
		client:   &client,
		model:    model,
		timeout:  cfg.Timeout,
		cb:       cb,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
	}
}

// Complete performs one chat-completion call.
func (o *OpenAI) Complete(ctx context.Context, req port.CompletionRequest) (*port.Completion, error) {
	ctx, span := tracer.Start(ctx, "OpenAI.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", o.model),
		attribute.Int("llm.messages", len(req.Messages)),
		attribute.Bool("llm.json", req.JSON),
	)

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	if err := o.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTimeout{Operation: "llm bulkhead"}
	}
	defer o.bulkhead.Release()

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    toParams(req.Messages),
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	start := time.Now()
	var resp *openai.ChatCompletion
	err := resilience.Execute(o.cb, func() error {
		var callErr error
		resp, callErr = o.client.Chat.Completions.New(ctx, params)
		return callErr
	})
	o.metrics.RecordRequestDuration("llm.complete", time.Since(start))

	if err != nil {
		o.metrics.IncrExternalError("openai")
		o.logger.Warn("llm: completion failed",
			zap.String("model", o.model),
			zap.Duration("latency", time.Since(start)),
			zap.Error(err),
		)
		var open *domain.ErrCircuitOpen
		if errors.As(err, &open) {
			return nil, err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &domain.ErrTimeout{Operation: "llm completion"}
		}
		return nil, &domain.ErrExternalService{Service: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &domain.ErrExternalService{Service: "openai", Err: fmt.Errorf("no choices returned")}
	}

	out := &port.Completion{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
	}
	o.metrics.RecordTokens(out.PromptTokens, out.CompletionTokens)
	span.SetAttributes(
		attribute.Int("llm.prompt_tokens", out.PromptTokens),
		attribute.Int("llm.completion_tokens", out.CompletionTokens),
	)

	o.logger.Debug("llm: completion ok",
		zap.String("model", o.model),
		zap.Int("prompt_tokens", out.PromptTokens),
		zap.Int("completion_tokens", out.CompletionTokens),
		zap.Duration("latency", time.Since(start)),
	)
	return out, nil
}

func toParams(msgs []domain.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case domain.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case domain.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
