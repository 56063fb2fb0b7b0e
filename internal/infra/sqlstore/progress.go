package sqlstore

import (
	"context"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *Store) ListProgress(ctx context.Context, userID string) ([]domain.UserProgress, error) {
	ctx, span := tracer.Start(ctx, "SQL.ListProgress")
	defer span.End()

	var rows []progressRow
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("category").Find(&rows).Error; err != nil {
		return nil, wrap("list progress", err)
	}
	out := make([]domain.UserProgress, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

func (s *Store) GetProgress(ctx context.Context, userID string, category domain.Category) (*domain.UserProgress, error) {
	ctx, span := tracer.Start(ctx, "SQL.GetProgress")
	defer span.End()

	var row progressRow
	err := s.db.WithContext(ctx).Where("user_id = ? AND category = ?", userID, string(category)).First(&row).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get progress", err)
	}
	p := row.toDomain()
	return &p, nil
}

// UpsertProgress inserts or replaces the (user, category) row.
func (s *Store) UpsertProgress(ctx context.Context, p *domain.UserProgress) error {
	ctx, span := tracer.Start(ctx, "SQL.UpsertProgress")
	defer span.End()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.UpdatedAt = time.Now().UTC()
	row := progressRow{
		ID:         p.ID,
		UserID:     p.UserID,
		Category:   string(p.Category),
		Level:      p.Level,
		Experience: p.Experience,
		Progress:   toJSON(p.Progress),
		UpdatedAt:  p.UpdatedAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"level", "experience", "progress", "updated_at"}),
	}).Create(&row).Error
	return wrap("upsert progress", err)
}
