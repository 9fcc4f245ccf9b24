package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const ProviderXendit = "xendit"

// EventRecord is the idempotence ledger for webhook deliveries. Each
// provider event id is stored exactly once.
type EventRecord struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id"`
	Provider        string         `gorm:"not null;uniqueIndex:idx_payment_events_provider_event" json:"provider"`
	ProviderEventID string         `gorm:"column:provider_event_id;not null;uniqueIndex:idx_payment_events_provider_event" json:"provider_event_id"`
	ExternalID      string         `gorm:"column:external_id;not null;default:''" json:"external_id"`
	Status          string         `gorm:"not null;default:''" json:"status"`
	Payload         datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	ReceivedAt      time.Time      `gorm:"not null" json:"received_at"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
}

func (EventRecord) TableName() string {
	return "payment_events"
}
