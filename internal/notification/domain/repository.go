package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, n *Notification) error
	MarkSent(ctx context.Context, db *gorm.DB, id snowflake.ID, sentAt time.Time) error
	MarkFailed(ctx context.Context, db *gorm.DB, id snowflake.ID, reason string) error
	ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]*Notification, error)

	// HasReminderSince reports whether the user already received an
	// EVENT_REMINDER for the event on or after the given time. Used to
	// keep the daily reminder job from double-sending.
	HasReminderSince(ctx context.Context, db *gorm.DB, userID, eventID uuid.UUID, since time.Time) (bool, error)
}
