package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/tiketin/tiketin/internal/notification/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO notifications (id, user_id, order_id, kind, channel, status, subject, payload, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.UserID,
		n.OrderID,
		n.Kind,
		n.Channel,
		n.Status,
		n.Subject,
		n.Payload,
		n.Error,
		n.CreatedAt,
	).Error
}

func (r *repo) MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, sentAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE notifications SET status = ?, sent_at = ? WHERE id = ?`,
		domain.StatusSent,
		sentAt,
		id,
	).Error
}

func (r *repo) MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE notifications SET status = ?, error = ? WHERE id = ?`,
		domain.StatusFailed,
		reason,
		id,
	).Error
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	var notifications []*domain.Notification
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, order_id, kind, channel, status, subject, payload, error, created_at, sent_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID,
		limit,
	).Scan(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *repo) HasReminderSince(ctx context.Context, db *gorm.DB, userID, eventID uuid.UUID, since time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM notifications
		 WHERE user_id = ? AND kind = ? AND created_at >= ? AND payload ->> 'event_id' = ?`,
		userID,
		domain.KindEventReminder,
		since,
		eventID.String(),
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
