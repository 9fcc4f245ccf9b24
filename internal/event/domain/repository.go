package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tiketin/tiketin/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListEventFilter struct {
	Status       string
	StartsAfter  *time.Time
	StartsBefore *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *Event) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*Event, error)
	List(ctx context.Context, db *gorm.DB, filter ListEventFilter, page pagination.Pagination) ([]*Event, error)
	Update(ctx context.Context, db *gorm.DB, event *Event) error
}
