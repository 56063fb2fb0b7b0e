package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/infra/sqlstore"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"go.uber.org/zap"
)

func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.Open("sqlite", ":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newUser(t *testing.T, s port.UserStore, email string) *domain.User {
	t.Helper()
	u, err := s.CreateUserWithProfile(context.Background(), &domain.User{Email: email, Name: "Test", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %T: %v", err, err)
	}
	return ve.Message
}

// scriptedCompleter answers by max_tokens so one fake can serve the
// sentiment (200), insights (400) and chat (1500) calls.
type scriptedCompleter struct {
	byMaxTokens map[int]string
	calls       int
}

func (c *scriptedCompleter) Complete(_ context.Context, req port.CompletionRequest) (*port.Completion, error) {
	c.calls++
	content, ok := c.byMaxTokens[req.MaxTokens]
	if !ok {
		return nil, errors.New("unexpected request")
	}
	return &port.Completion{Content: content, PromptTokens: 10, CompletionTokens: 5}, nil
}
