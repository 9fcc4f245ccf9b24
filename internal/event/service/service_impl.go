package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tiketin/tiketin/internal/clock"
	"github.com/tiketin/tiketin/internal/event/domain"
	"github.com/tiketin/tiketin/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("event.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEventRequest) (domain.Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Event{}, domain.ErrInvalidTitle
	}
	if req.StartsAt.IsZero() {
		return domain.Event{}, domain.ErrInvalidStartsAt
	}
	if req.Price < 0 {
		return domain.Event{}, domain.ErrInvalidPrice
	}
	if req.Quota < 0 {
		return domain.Event{}, domain.ErrInvalidQuota
	}

	now := s.clock.Now()
	event := domain.Event{
		ID:          uuid.New(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Venue:       strings.TrimSpace(req.Venue),
		StartsAt:    req.StartsAt.UTC(),
		Price:       req.Price,
		Quota:       req.Quota,
		Status:      domain.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetEventRequest) (domain.Event, error) {
	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Event{}, domain.ErrInvalidID
	}

	event, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Event{}, err
	}
	if event == nil {
		return domain.Event{}, domain.ErrNotFound
	}
	return *event, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEventRequest) (domain.ListEventResponse, error) {
	filter := domain.ListEventFilter{Status: strings.ToUpper(strings.TrimSpace(req.Status))}
	if req.Upcoming {
		now := s.clock.Now()
		filter.StartsAfter = &now
	}

	pageSize := req.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: pageSize}

	events, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListEventResponse{}, err
	}

	pageInfo, events := pagination.BuildCursorPageInfo(events, pageSize, func(e *domain.Event) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{
			ID:        e.ID.String(),
			CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
		})
		return token
	})

	resp := domain.ListEventResponse{PageInfo: *pageInfo}
	resp.Events = make([]domain.Event, 0, len(events))
	for _, e := range events {
		resp.Events = append(resp.Events, *e)
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateEventRequest) (domain.Event, error) {
	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Event{}, domain.ErrInvalidID
	}

	var updated domain.Event
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := s.lockEvent(ctx, tx, id)
		if err != nil {
			return err
		}

		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return domain.ErrInvalidTitle
			}
			event.Title = title
		}
		if req.Description != nil {
			event.Description = strings.TrimSpace(*req.Description)
		}
		if req.Venue != nil {
			event.Venue = strings.TrimSpace(*req.Venue)
		}
		if req.StartsAt != nil {
			if req.StartsAt.IsZero() {
				return domain.ErrInvalidStartsAt
			}
			event.StartsAt = req.StartsAt.UTC()
		}
		if req.Price != nil {
			if *req.Price < 0 {
				return domain.ErrInvalidPrice
			}
			event.Price = *req.Price
		}
		if req.Quota != nil {
			if *req.Quota < 0 {
				return domain.ErrInvalidQuota
			}
			event.Quota = *req.Quota
		}

		event.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, event); err != nil {
			return err
		}
		updated = *event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	return updated, nil
}

func (s *Service) Publish(ctx context.Context, id string) (domain.Event, error) {
	return s.transition(ctx, id, domain.StatusPublished)
}

func (s *Service) Cancel(ctx context.Context, id string) (domain.Event, error) {
	return s.transition(ctx, id, domain.StatusCancelled)
}

func (s *Service) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Event, error) {
	filter := domain.ListEventFilter{
		Status:       domain.StatusPublished,
		StartsAfter:  &from,
		StartsBefore: &to,
	}
	events, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{PageSize: 500})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		out = append(out, *e)
	}
	return out, nil
}

func (s *Service) transition(ctx context.Context, rawID, target string) (domain.Event, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return domain.Event{}, domain.ErrInvalidID
	}

	var updated domain.Event
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := s.lockEvent(ctx, tx, id)
		if err != nil {
			return err
		}

		switch target {
		case domain.StatusPublished:
			if event.Status != domain.StatusDraft {
				return domain.ErrInvalidStatus
			}
		case domain.StatusCancelled:
			if event.Status == domain.StatusCancelled {
				return domain.ErrInvalidStatus
			}
		}

		event.Status = target
		event.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, tx, event); err != nil {
			return err
		}
		updated = *event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}

	s.log.Info("event status changed",
		zap.String("event_id", updated.ID.String()),
		zap.String("status", updated.Status),
	)
	return updated, nil
}

func (s *Service) lockEvent(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Event, error) {
	var event domain.Event
	err := tx.WithContext(ctx).Raw(
		`SELECT id, title, description, venue, starts_at, price, quota, status, created_at, updated_at
		 FROM events WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == uuid.Nil {
		return nil, domain.ErrNotFound
	}
	return &event, nil
}
