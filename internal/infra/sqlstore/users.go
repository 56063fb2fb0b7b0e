package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// CreateUserWithProfile inserts the user and an empty profile in one transaction.
func (s *Store) CreateUserWithProfile(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "SQL.CreateUserWithProfile")
	defer span.End()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&userRow{
			ID:           user.ID,
			Email:        user.Email,
			Name:         user.Name,
			PasswordHash: user.PasswordHash,
			CreatedAt:    now,
		}).Error; err != nil {
			return err
		}
		return tx.Create(profileRowOf(&domain.Profile{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Interests: []string{},
			CreatedAt: now,
			UpdatedAt: now,
		})).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, &domain.ErrValidation{Field: "email", Message: "User with this email already exists"}
	}
	if err != nil {
		return nil, wrap("create user", err)
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "SQL.GetUserByEmail")
	defer span.End()

	var row userRow
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get user by email", err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "SQL.GetUserByID")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", id))

	var row userRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if notFound(err) {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	if err != nil {
		return nil, wrap("get user", err)
	}
	return row.toDomain(), nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, span := tracer.Start(ctx, "SQL.GetProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var row profileRow
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get profile", err)
	}
	return row.toDomain(), nil
}

// UpdateProfile writes every mutable column of the profile.
func (s *Store) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	ctx, span := tracer.Start(ctx, "SQL.UpdateProfile")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", p.UserID))

	row := profileRowOf(p)
	res := s.db.WithContext(ctx).Model(&profileRow{}).Where("user_id = ?", p.UserID).Updates(map[string]any{
		"age":                 row.Age,
		"location":            row.Location,
		"interests":           row.Interests,
		"fitness_level":       row.FitnessLevel,
		"mental_health":       row.MentalHealth,
		"career_goals":        row.CareerGoals,
		"preferences":         row.Preferences,
		"onboarding_complete": row.OnboardingComplete,
	})
	if res.Error != nil {
		return wrap("update profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return &domain.ErrNotFound{Resource: "profile", ID: p.UserID, Message: "Profile not found"}
	}
	return nil
}
