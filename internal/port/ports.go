// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
)

// CompletionRequest is one chat-completion call.
type CompletionRequest struct {
	Messages    []domain.Message
	Temperature float64
	MaxTokens   int
	JSON        bool
}

// Completion is the model output plus token usage.
type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Completer calls a chat-completion model.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}

type UserStore interface {
	// CreateUserWithProfile inserts the user and its empty profile atomically.
	CreateUserWithProfile(ctx context.Context, user *domain.User) (*domain.User, error)
	// GetUserByEmail returns nil, nil when no user exists.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

type ProfileStore interface {
	// GetProfile returns nil, nil when the user has no profile.
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
}

type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.AgentSession) error
	// GetSession returns domain.ErrNotFound when the id is unknown.
	GetSession(ctx context.Context, id string) (*domain.AgentSession, error)
	UpdateSession(ctx context.Context, session *domain.AgentSession) error
	// ListSessions returns the most recently updated sessions first.
	ListSessions(ctx context.Context, userID string, limit int) ([]domain.AgentSession, error)
}

type ProgressStore interface {
	ListProgress(ctx context.Context, userID string) ([]domain.UserProgress, error)
	// GetProgress returns nil, nil when no row exists for the category.
	GetProgress(ctx context.Context, userID string, category domain.Category) (*domain.UserProgress, error)
	UpsertProgress(ctx context.Context, progress *domain.UserProgress) error
}

type TrainingStore interface {
	CreateTrainingLog(ctx context.Context, log *domain.TrainingLog) error
	// ListTrainingLogs returns newest first. A zero since means no lower bound.
	ListTrainingLogs(ctx context.Context, userID string, since time.Time, limit int) ([]domain.TrainingLog, error)
}

type FinancialStore interface {
	CreateFinancialData(ctx context.Context, data *domain.FinancialData) error
}

type ActivityStore interface {
	CreateActivity(ctx context.Context, activity *domain.UserActivity) error
	CountActivitySince(ctx context.Context, userID string, since time.Time) (int64, error)
	ListActivitySince(ctx context.Context, userID string, since time.Time, limit int) ([]domain.UserActivity, error)
}

type InsightsStore interface {
	// LatestInsights returns nil, nil when no snapshot exists.
	LatestInsights(ctx context.Context, userID string) (*domain.InsightsHistory, error)
	CreateInsights(ctx context.Context, row *domain.InsightsHistory) error
	// ListInsights returns oldest first. A zero since means no lower bound.
	ListInsights(ctx context.Context, userID string, since time.Time, limit int) ([]domain.InsightsHistory, error)
}

// Store is the full persistence surface. Implemented by the gorm store and
// the Supabase adapter.
type Store interface {
	UserStore
	ProfileStore
	SessionStore
	ProgressStore
	TrainingStore
	FinancialStore
	ActivityStore
	InsightsStore
}
