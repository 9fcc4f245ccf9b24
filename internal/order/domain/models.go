package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusExpired = "EXPIRED"
)

type Order struct {
	ID         uuid.UUID  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     uuid.UUID  `gorm:"not null;type:uuid;index" json:"user_id"`
	EventID    uuid.UUID  `gorm:"not null;type:uuid;index" json:"event_id"`
	Quantity   int        `gorm:"not null" json:"quantity"`
	UnitPrice  int64      `gorm:"not null" json:"unit_price"`
	Total      int64      `gorm:"not null" json:"total"`
	Status     string     `gorm:"not null;default:PENDING" json:"status"`
	InvoiceID  string     `gorm:"not null;default:''" json:"invoice_id"`
	InvoiceURL string     `gorm:"not null;default:''" json:"invoice_url"`
	PaymentRef string     `gorm:"not null;default:''" json:"payment_ref"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
