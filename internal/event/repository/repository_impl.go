package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tiketin/tiketin/internal/event/domain"
	"github.com/tiketin/tiketin/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO events (id, title, description, venue, starts_at, price, quota, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Title,
		event.Description,
		event.Venue,
		event.StartsAt,
		event.Price,
		event.Quota,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	err := db.WithContext(ctx).Raw(
		`SELECT id, title, description, venue, starts_at, price, quota, status, created_at, updated_at
		 FROM events WHERE id = ?`,
		id,
	).Scan(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == uuid.Nil {
		return nil, nil
	}
	return &event, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListEventFilter, page pagination.Pagination) ([]*domain.Event, error) {
	var events []*domain.Event
	stmt := db.WithContext(ctx).Model(&domain.Event{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.StartsAfter != nil {
		stmt = stmt.Where("starts_at >= ?", *filter.StartsAfter)
	}
	if filter.StartsBefore != nil {
		stmt = stmt.Where("starts_at < ?", *filter.StartsBefore)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		if cursor.CreatedAt != "" {
			createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
			if err != nil {
				return nil, err
			}
			stmt = stmt.Where("created_at < ?", createdAt)
		}
	}
	limit := page.PageSize
	if limit <= 0 {
		limit = 20
	}
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, event *domain.Event) error {
	return db.WithContext(ctx).Exec(
		`UPDATE events
		 SET title = ?, description = ?, venue = ?, starts_at = ?, price = ?, quota = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		event.Title,
		event.Description,
		event.Venue,
		event.StartsAt,
		event.Price,
		event.Quota,
		event.Status,
		event.UpdatedAt,
		event.ID,
	).Error
}
