package domain

import (
	"context"
	"errors"
)

type CreateOrderRequest struct {
	UserID   string
	EventID  string
	Quantity int
}

type GetOrderRequest struct {
	ID          string
	ActorUserID string
	ActorAdmin  bool
}

type ListOrderRequest struct {
	UserID string
	Limit  int
}

type ApplyPaymentStatusRequest struct {
	OrderID        string
	ProviderStatus string

	// PaymentRef is the provider's reference for the payment (the
	// webhook event id); stored on the order when a transition applies.
	PaymentRef string
}

// ApplyPaymentResult reports what a webhook delivery actually changed.
type ApplyPaymentResult struct {
	Order         Order
	Transitioned  bool
	TicketsIssued int
}

type Service interface {
	// Create validates the order, persists it PENDING and creates the
	// payment invoice. The order ID doubles as the provider external id.
	Create(context.Context, CreateOrderRequest) (Order, error)

	GetByID(context.Context, GetOrderRequest) (Order, error)
	List(context.Context, ListOrderRequest) ([]Order, error)

	// ApplyPaymentStatus is the reconciler: it maps the provider status
	// onto the order state machine and, on a transition to PAID, drives
	// ticket issuance and notification.
	ApplyPaymentStatus(context.Context, ApplyPaymentStatusRequest) (ApplyPaymentResult, error)
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrUserNotFound    = errors.New("user_not_found")
	ErrEventNotFound   = errors.New("event_not_found")
	ErrNotFound        = errors.New("not_found")
	ErrQuotaExceeded   = errors.New("quota_exceeded")
	ErrInvoiceFailed   = errors.New("invoice_failed")
)
