package sqlstore

import (
	"context"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"

	"github.com/google/uuid"
)

func stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}

func (s *Store) CreateTrainingLog(ctx context.Context, l *domain.TrainingLog) error {
	ctx, span := tracer.Start(ctx, "SQL.CreateTrainingLog")
	defer span.End()

	stamp(&l.ID, &l.CreatedAt)
	return wrap("create training log", s.db.WithContext(ctx).Create(&trainingLogRow{
		ID: l.ID, UserID: l.UserID, Type: l.Type, Activity: l.Activity, Duration: l.Duration,
		Intensity: l.Intensity, Notes: l.Notes, Completed: l.Completed, CreatedAt: l.CreatedAt.UTC(),
	}).Error)
}

func (s *Store) ListTrainingLogs(ctx context.Context, userID string, from time.Time, limit int) ([]domain.TrainingLog, error) {
	ctx, span := tracer.Start(ctx, "SQL.ListTrainingLogs")
	defer span.End()

	var rows []trainingLogRow
	q := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since(from)).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrap("list training logs", err)
	}
	out := make([]domain.TrainingLog, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *Store) CreateFinancialData(ctx context.Context, d *domain.FinancialData) error {
	ctx, span := tracer.Start(ctx, "SQL.CreateFinancialData")
	defer span.End()

	stamp(&d.ID, &d.CreatedAt)
	return wrap("create financial data", s.db.WithContext(ctx).Create(&financialRow{
		ID: d.ID, UserID: d.UserID, Type: d.Type, Data: toJSON(d.Data), CreatedAt: d.CreatedAt.UTC(),
	}).Error)
}

func (s *Store) CreateActivity(ctx context.Context, a *domain.UserActivity) error {
	ctx, span := tracer.Start(ctx, "SQL.CreateActivity")
	defer span.End()

	stamp(&a.ID, &a.CreatedAt)
	return wrap("create activity", s.db.WithContext(ctx).Create(&activityRow{
		ID: a.ID, UserID: a.UserID, Type: a.Type, AgentType: a.AgentType, Action: a.Action,
		Page: a.Page, Metadata: toJSON(a.Metadata), CreatedAt: a.CreatedAt.UTC(),
	}).Error)
}

func (s *Store) CountActivitySince(ctx context.Context, userID string, from time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "SQL.CountActivitySince")
	defer span.End()

	var n int64
	err := s.db.WithContext(ctx).Model(&activityRow{}).
		Where("user_id = ? AND created_at >= ?", userID, since(from)).
		Count(&n).Error
	return n, wrap("count activity", err)
}

func (s *Store) ListActivitySince(ctx context.Context, userID string, from time.Time, limit int) ([]domain.UserActivity, error) {
	ctx, span := tracer.Start(ctx, "SQL.ListActivitySince")
	defer span.End()

	var rows []activityRow
	q := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since(from)).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrap("list activity", err)
	}
	out := make([]domain.UserActivity, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *Store) LatestInsights(ctx context.Context, userID string) (*domain.InsightsHistory, error) {
	ctx, span := tracer.Start(ctx, "SQL.LatestInsights")
	defer span.End()

	var rows []insightsRow
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(1).Find(&rows).Error
	if err != nil {
		return nil, wrap("latest insights", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	h := rows[0].toDomain()
	return &h, nil
}

// CreateInsights appends a snapshot row. Rows are never updated.
func (s *Store) CreateInsights(ctx context.Context, h *domain.InsightsHistory) error {
	ctx, span := tracer.Start(ctx, "SQL.CreateInsights")
	defer span.End()

	stamp(&h.ID, &h.CreatedAt)
	return wrap("create insights", s.db.WithContext(ctx).Create(&insightsRow{
		ID:                h.ID,
		UserID:            h.UserID,
		EngagementLevel:   h.EngagementLevel,
		EngagementScore:   h.EngagementScore,
		ExperienceTotal:   h.ExperienceTotal,
		SentimentLabel:    h.SentimentLabel,
		SentimentScore:    h.SentimentScore,
		Preferences:       toJSON(h.Preferences),
		PersonalityTraits: toJSON(h.PersonalityTraits),
		Snapshot:          toJSON(h.Snapshot),
		CreatedAt:         h.CreatedAt.UTC(),
	}).Error)
}

func (s *Store) ListInsights(ctx context.Context, userID string, from time.Time, limit int) ([]domain.InsightsHistory, error) {
	ctx, span := tracer.Start(ctx, "SQL.ListInsights")
	defer span.End()

	var rows []insightsRow
	q := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since(from)).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrap("list insights", err)
	}
	out := make([]domain.InsightsHistory, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}
