package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive   = "ACTIVE"
	StatusRedeemed = "REDEEMED"
	StatusVoid     = "VOID"
)

type Ticket struct {
	ID          uuid.UUID  `gorm:"primaryKey;type:uuid" json:"id"`
	OrderID     uuid.UUID  `gorm:"not null;type:uuid;index" json:"order_id"`
	EventID     uuid.UUID  `gorm:"not null;type:uuid;index" json:"event_id"`
	OwnerUserID uuid.UUID  `gorm:"not null;type:uuid;index" json:"owner_user_id"`
	Seq         int        `gorm:"not null" json:"seq"`
	Code        string     `gorm:"not null;uniqueIndex" json:"code"`
	Status      string     `gorm:"not null;default:ACTIVE" json:"status"`
	QRPath      string     `gorm:"column:qr_path;not null;default:''" json:"qr_path"`
	PDFPath     string     `gorm:"column:pdf_path;not null;default:''" json:"pdf_path"`
	IssuedAt    time.Time  `gorm:"not null" json:"issued_at"`
	RedeemedAt  *time.Time `json:"redeemed_at,omitempty"`
}
