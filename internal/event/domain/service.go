package domain

import (
	"context"
	"errors"
	"time"

	"github.com/tiketin/tiketin/pkg/db/pagination"
)

type CreateEventRequest struct {
	Title       string
	Description string
	Venue       string
	StartsAt    time.Time
	Price       int64
	Quota       int
}

// UpdateEventRequest patches only the fields that are set. Nil pointers
// leave the stored value untouched.
type UpdateEventRequest struct {
	ID          string
	Title       *string
	Description *string
	Venue       *string
	StartsAt    *time.Time
	Price       *int64
	Quota       *int
}

type GetEventRequest struct {
	ID string
}

type ListEventRequest struct {
	PageToken string
	PageSize  int
	Status    string
	Upcoming  bool
}

type ListEventResponse struct {
	pagination.PageInfo
	Events []Event `json:"events"`
}

type Service interface {
	Create(context.Context, CreateEventRequest) (Event, error)
	GetByID(context.Context, GetEventRequest) (Event, error)
	List(context.Context, ListEventRequest) (ListEventResponse, error)
	Update(context.Context, UpdateEventRequest) (Event, error)
	Publish(ctx context.Context, id string) (Event, error)
	Cancel(ctx context.Context, id string) (Event, error)

	// ListStartingBetween returns published events whose start time
	// falls inside [from, to). Used by the reminder scheduler.
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]Event, error)
}

var (
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidStartsAt = errors.New("invalid_starts_at")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidQuota    = errors.New("invalid_quota")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrNotFound        = errors.New("not_found")
)
