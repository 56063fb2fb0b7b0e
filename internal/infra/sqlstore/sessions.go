package sqlstore

import (
	"context"
	"time"

	"github.com/boddenberg/recruit-assist-go/internal/domain"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

func (s *Store) CreateSession(ctx context.Context, session *domain.AgentSession) error {
	ctx, span := tracer.Start(ctx, "SQL.CreateSession")
	defer span.End()

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = now
	}
	span.SetAttributes(attribute.String("session.id", session.ID))

	return wrap("create session", s.db.WithContext(ctx).Create(sessionRowOf(session)).Error)
}

func (s *Store) GetSession(ctx context.Context, id string) (*domain.AgentSession, error) {
	ctx, span := tracer.Start(ctx, "SQL.GetSession")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", id))

	var row sessionRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if notFound(err) {
		return nil, &domain.ErrNotFound{Resource: "session", ID: id, Message: "Session not found"}
	}
	if err != nil {
		return nil, wrap("get session", err)
	}
	return row.toDomain(), nil
}

// UpdateSession overwrites messages and last response. Concurrent writers
// to one session are last-write-wins.
func (s *Store) UpdateSession(ctx context.Context, session *domain.AgentSession) error {
	ctx, span := tracer.Start(ctx, "SQL.UpdateSession")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", session.ID),
		attribute.Int("session.messages", len(session.Messages)),
	)

	row := sessionRowOf(session)
	res := s.db.WithContext(ctx).Model(&sessionRow{}).Where("id = ?", session.ID).Updates(map[string]any{
		"user_id":       row.UserID,
		"messages":      row.Messages,
		"last_response": row.LastResponse,
	})
	if res.Error != nil {
		return wrap("update session", res.Error)
	}
	if res.RowsAffected == 0 {
		return &domain.ErrNotFound{Resource: "session", ID: session.ID, Message: "Session not found"}
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context, userID string, limit int) ([]domain.AgentSession, error) {
	ctx, span := tracer.Start(ctx, "SQL.ListSessions")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var rows []sessionRow
	q := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrap("list sessions", err)
	}

	out := make([]domain.AgentSession, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, nil
}
