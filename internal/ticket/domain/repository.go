package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	InsertBatch(ctx context.Context, db *gorm.DB, tickets []*Ticket) error
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID uuid.UUID) ([]*Ticket, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Ticket, error)
	FindByCodeForUpdate(ctx context.Context, db *gorm.DB, code string) (*Ticket, error)
	UpdateArtifacts(ctx context.Context, db *gorm.DB, id uuid.UUID, qrPath, pdfPath string) error
	MarkRedeemed(ctx context.Context, db *gorm.DB, ticket *Ticket) error

	// FindOrderStatus reads the owning order's status. Tickets are only
	// honored while their order is PAID.
	FindOrderStatus(ctx context.Context, db *gorm.DB, orderID uuid.UUID) (string, error)

	// ListActiveOwnerIDsByEvent returns the distinct users holding an
	// ACTIVE ticket for the event.
	ListActiveOwnerIDsByEvent(ctx context.Context, db *gorm.DB, eventID uuid.UUID) ([]uuid.UUID, error)
}
