package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tiketin/tiketin/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const orderColumns = `id, user_id, event_id, quantity, unit_price, total, status, invoice_id, invoice_url, payment_ref, paid_at, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (id, user_id, event_id, quantity, unit_price, total, status, invoice_id, invoice_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.UserID,
		order.EventID,
		order.Quantity,
		order.UnitPrice,
		order.Total,
		order.Status,
		order.InvoiceID,
		order.InvoiceURL,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == uuid.Nil {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == uuid.Nil {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID uuid.UUID, limit int) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID,
		limit,
	).Scan(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) UpdateInvoice(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET invoice_id = ?, invoice_url = ?, updated_at = ? WHERE id = ?`,
		order.InvoiceID,
		order.InvoiceURL,
		order.UpdatedAt,
		order.ID,
	).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, paid_at = ?, payment_ref = ?, updated_at = ? WHERE id = ?`,
		order.Status,
		order.PaidAt,
		order.PaymentRef,
		order.UpdatedAt,
		order.ID,
	).Error
}

func (r *repo) FindEventQuotaForUpdate(ctx context.Context, db *gorm.DB, eventID uuid.UUID) (int, error) {
	var quota int
	err := db.WithContext(ctx).Raw(
		`SELECT quota FROM events WHERE id = ? FOR UPDATE`,
		eventID,
	).Scan(&quota).Error
	if err != nil {
		return 0, err
	}
	return quota, nil
}

func (r *repo) SumOpenQuantityByEvent(ctx context.Context, db *gorm.DB, eventID uuid.UUID) (int, error) {
	var total int
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(quantity), 0) FROM orders WHERE event_id = ? AND status IN (?, ?)`,
		eventID,
		domain.StatusPending,
		domain.StatusPaid,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM orders WHERE id = ?`,
		id,
	).Error
}
