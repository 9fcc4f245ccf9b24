package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
	StatusCancelled = "CANCELLED"
)

type Event struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"not null;default:''" json:"description"`
	Venue       string    `gorm:"not null;default:''" json:"venue"`
	StartsAt    time.Time `gorm:"not null" json:"starts_at"`
	Price       int64     `gorm:"not null" json:"price"`
	Quota       int       `gorm:"not null;default:0" json:"quota"`
	Status      string    `gorm:"not null;default:DRAFT" json:"status"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Orderable reports whether new orders may be placed for the event.
func (e Event) Orderable() bool {
	return e.Status == StatusPublished
}
