package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// OrderPaidNotice carries everything the paid-order email needs; the
// caller snapshots it so this package stays decoupled from the order
// domain.
type OrderPaidNotice struct {
	UserID      uuid.UUID
	OrderID     uuid.UUID
	Name        string
	Email       string
	EventTitle  string
	Venue       string
	StartsAt    time.Time
	Total       int64
	TicketCodes []string
}

type OrderExpiredNotice struct {
	UserID     uuid.UUID
	OrderID    uuid.UUID
	Name       string
	Email      string
	EventTitle string
}

type EventReminderNotice struct {
	UserID     uuid.UUID
	EventID    uuid.UUID
	Name       string
	Email      string
	EventTitle string
	Venue      string
	StartsAt   time.Time
}

type ListNotificationRequest struct {
	UserID string
	Limit  int
}

type Service interface {
	// The Notify methods record the notification and attempt delivery.
	// Delivery failure marks the record FAILED and is not returned as an
	// error; notifications never fail the calling pipeline.
	NotifyOrderPaid(ctx context.Context, notice OrderPaidNotice) Notification
	NotifyOrderExpired(ctx context.Context, notice OrderExpiredNotice) Notification
	NotifyEventReminder(ctx context.Context, notice EventReminderNotice) (Notification, bool)

	List(ctx context.Context, req ListNotificationRequest) ([]Notification, error)
}

var (
	ErrInvalidID = errors.New("invalid_id")
)
