package domain

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Order, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]*Order, error)
	UpdateInvoice(ctx context.Context, db *gorm.DB, order *Order) error
	UpdateStatus(ctx context.Context, db *gorm.DB, order *Order) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error

	// FindEventQuotaForUpdate locks the event row so concurrent purchases
	// serialize against the capacity check.
	FindEventQuotaForUpdate(ctx context.Context, db *gorm.DB, eventID uuid.UUID) (int, error)

	// SumOpenQuantityByEvent totals the quantities of PENDING and PAID
	// orders; EXPIRED orders release their seats.
	SumOpenQuantityByEvent(ctx context.Context, db *gorm.DB, eventID uuid.UUID) (int, error)
}
