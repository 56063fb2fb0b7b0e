package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"
	"github.com/boddenberg/recruit-assist-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var profileTracer = otel.Tracer("service/profile")

const (
	minAge           = 17
	maxAge           = 65
	activityFeedSize = 5
)

var fitnessLevels = []string{"beginner", "intermediate", "advanced"}

type profileStore interface {
	port.ProfileStore
	port.ProgressStore
	port.TrainingStore
}

// ProfileService reads and updates onboarding data, progress and the
// training activity feed.
type ProfileService struct {
	store  profileStore
	logger *zap.Logger
}

func NewProfileService(store port.Store, logger *zap.Logger) *ProfileService {
	return &ProfileService{store: store, logger: logger}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.ProfileView, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID, Message: "Profile not found"}
	}
	v := domain.ProfileViewOf(p)
	return &v, nil
}

// ============================================================
// Update: POST /api/profile/update
// ============================================================

func (s *ProfileService) Update(ctx context.Context, userID string, req *domain.ProfileUpdateRequest) (*domain.ProfileUpdateResponse, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.Update")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	if err := validateProfileUpdate(req); err != nil {
		return nil, err
	}

	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return nil, &domain.ErrNotFound{Resource: "profile", ID: userID, Message: "Profile not found"}
	}

	now := time.Now().UTC()
	if req.Age != nil {
		p.Age = *req.Age
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.Interests != nil {
		p.Interests = req.Interests
	}
	if req.FitnessLevel != nil {
		p.FitnessLevel = *req.FitnessLevel
	}
	if req.CareerGoals != nil && *req.CareerGoals != "" {
		p.CareerGoals = &domain.CareerGoals{Text: *req.CareerGoals, UpdatedAt: now}
	}
	if req.OnboardingComplete != nil {
		p.OnboardingComplete = *req.OnboardingComplete
	}

	if err := s.store.UpdateProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if req.OnboardingComplete != nil && *req.OnboardingComplete {
		if err := s.ensureProgress(ctx, userID); err != nil {
			return nil, err
		}
	}

	s.logger.Info("profile updated",
		zap.String("user_id", userID),
		zap.Bool("onboarding_complete", p.OnboardingComplete),
	)

	return &domain.ProfileUpdateResponse{Success: true, Profile: domain.ProfileViewOf(p)}, nil
}

func validateProfileUpdate(req *domain.ProfileUpdateRequest) error {
	if req.Age != nil && (*req.Age < minAge || *req.Age > maxAge) {
		return &domain.ErrValidation{Field: "age", Message: fmt.Sprintf("Age must be between %d and %d", minAge, maxAge)}
	}
	if req.FitnessLevel != nil && !contains(fitnessLevels, *req.FitnessLevel) {
		return &domain.ErrValidation{
			Field:   "fitnessLevel",
			Message: "Fitness level must be one of: " + strings.Join(fitnessLevels, ", "),
		}
	}
	return nil
}

// ensureProgress creates the missing level-1 rows of every category.
// Existing rows are left untouched.
func (s *ProfileService) ensureProgress(ctx context.Context, userID string) error {
	for _, c := range domain.Categories() {
		existing, err := s.store.GetProgress(ctx, userID, c)
		if err != nil {
			return fmt.Errorf("get progress %s: %w", c, err)
		}
		if existing != nil {
			continue
		}
		if err := s.store.UpsertProgress(ctx, &domain.UserProgress{
			UserID:   userID,
			Category: c,
			Level:    1,
			Progress: map[string]any{},
		}); err != nil {
			return fmt.Errorf("init progress %s: %w", c, err)
		}
	}
	return nil
}

// ============================================================
// Progress & activity feed
// ============================================================

// Progress lists every category of the user, most recently updated first.
func (s *ProfileService) Progress(ctx context.Context, userID string) (*domain.ProgressResponse, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.Progress")
	defer span.End()

	rows, err := s.store.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].UpdatedAt.After(rows[j].UpdatedAt) })

	out := make([]domain.UserProgress, 0, len(rows))
	for _, p := range rows {
		if p.Progress == nil {
			p.Progress = map[string]any{}
		}
		out = append(out, domain.UserProgress{
			Category:   p.Category,
			Level:      p.Level,
			Experience: p.Experience,
			Progress:   p.Progress,
			UpdatedAt:  p.UpdatedAt,
		})
	}
	return &domain.ProgressResponse{Progress: out}, nil
}

// Activity returns the latest training logs formatted for the dashboard.
func (s *ProfileService) Activity(ctx context.Context, userID string) (*domain.ActivityResponse, error) {
	ctx, span := profileTracer.Start(ctx, "ProfileService.Activity")
	defer span.End()

	logs, err := s.store.ListTrainingLogs(ctx, userID, time.Time{}, activityFeedSize)
	if err != nil {
		return nil, fmt.Errorf("list training logs: %w", err)
	}

	items := make([]domain.ActivityItem, 0, len(logs))
	for _, l := range logs {
		kind := "Mental Training"
		if l.Type == string(domain.CategoryPhysical) {
			kind = "Physical Training"
		}
		desc := l.Activity
		if l.Duration != nil && *l.Duration > 0 {
			desc = fmt.Sprintf("%s (%d min)", l.Activity, *l.Duration)
		}
		items = append(items, domain.ActivityItem{
			ID:          l.ID,
			Type:        kind,
			Description: desc,
			Timestamp:   l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return &domain.ActivityResponse{Activity: items}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
