package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	KindOrderPaid     = "ORDER_PAID"
	KindOrderExpired  = "ORDER_EXPIRED"
	KindEventReminder = "EVENT_REMINDER"

	ChannelEmail = "EMAIL"

	StatusQueued = "QUEUED"
	StatusSent   = "SENT"
	StatusFailed = "FAILED"
)

type Notification struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID         `gorm:"not null;type:uuid;index" json:"user_id"`
	OrderID   *uuid.UUID        `gorm:"type:uuid" json:"order_id,omitempty"`
	Kind      string            `gorm:"not null" json:"kind"`
	Channel   string            `gorm:"not null;default:EMAIL" json:"channel"`
	Status    string            `gorm:"not null;default:QUEUED" json:"status"`
	Subject   string            `gorm:"not null;default:''" json:"subject"`
	Payload   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"payload,omitempty"`
	Error     string            `gorm:"not null;default:''" json:"error,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	SentAt    *time.Time        `json:"sent_at,omitempty"`
}
