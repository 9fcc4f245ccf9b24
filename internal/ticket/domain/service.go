package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// IssueRequest carries everything issuance needs about the paid order.
// The caller snapshots event details so artifact generation does not
// depend on the event row staying unchanged.
type IssueRequest struct {
	OrderID     uuid.UUID
	EventID     uuid.UUID
	OwnerUserID uuid.UUID
	Quantity    int

	EventTitle string
	Venue      string
	StartsAt   time.Time
	HolderName string
}

type ValidateRequest struct {
	Code        string
	ActorUserID string
	ActorAdmin  bool
}

type RedeemRequest struct {
	Code string
}

type ValidationStatus string

const (
	ValidationValid        ValidationStatus = "VALID"
	ValidationNotFound     ValidationStatus = "NOT_FOUND"
	ValidationNotOwned     ValidationStatus = "NOT_OWNED"
	ValidationInvalidState ValidationStatus = "INVALID_STATE"
)

// ValidationResult is the explicit outcome of a ticket check. Reason is
// set for INVALID_STATE outcomes.
type ValidationResult struct {
	Status ValidationStatus `json:"status"`
	Reason string           `json:"reason,omitempty"`
	Ticket *Ticket          `json:"ticket,omitempty"`
}

type Service interface {
	// IssueForOrder creates the order's tickets exactly once. Calling it
	// again for the same order returns the existing tickets unchanged.
	IssueForOrder(ctx context.Context, req IssueRequest) ([]Ticket, error)

	FindByOrder(ctx context.Context, orderID string) ([]Ticket, error)
	Validate(ctx context.Context, req ValidateRequest) (ValidationResult, error)
	Redeem(ctx context.Context, req RedeemRequest) (Ticket, error)
}

var (
	ErrInvalidOrder      = errors.New("invalid_order")
	ErrInvalidQuantity   = errors.New("invalid_quantity")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrNotRedeemable     = errors.New("not_redeemable")
	ErrTicketCountSkewed = errors.New("ticket_count_skewed")
)
