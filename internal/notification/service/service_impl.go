package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/tiketin/tiketin/internal/clock"
	"github.com/tiketin/tiketin/internal/notification/domain"
	"github.com/tiketin/tiketin/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
	Email email.Provider
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
	email email.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("notification.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
		email: p.Email,
	}
}

func (s *Service) NotifyOrderPaid(ctx context.Context, notice domain.OrderPaidNotice) domain.Notification {
	orderID := notice.OrderID
	subject := "Payment confirmed: " + notice.EventTitle

	codes := make([]interface{}, 0, len(notice.TicketCodes))
	for _, c := range notice.TicketCodes {
		codes = append(codes, c)
	}

	n := s.queue(ctx, domain.Notification{
		UserID:  notice.UserID,
		OrderID: &orderID,
		Kind:    domain.KindOrderPaid,
		Subject: subject,
		Payload: datatypes.JSONMap{
			"order_id":     notice.OrderID.String(),
			"event_title":  notice.EventTitle,
			"total":        notice.Total,
			"ticket_codes": codes,
		},
	})
	if n.ID == 0 {
		return n
	}

	err := s.email.SendTemplate(ctx, []string{notice.Email}, subject, "order_paid", map[string]interface{}{
		"Name":        notice.Name,
		"EventTitle":  notice.EventTitle,
		"Venue":       notice.Venue,
		"StartsAt":    notice.StartsAt.Format(time.RFC1123),
		"Total":       fmt.Sprintf("%d", notice.Total),
		"TicketCodes": notice.TicketCodes,
	})
	return s.settle(ctx, n, err)
}

func (s *Service) NotifyOrderExpired(ctx context.Context, notice domain.OrderExpiredNotice) domain.Notification {
	orderID := notice.OrderID
	subject := "Order expired: " + notice.EventTitle

	n := s.queue(ctx, domain.Notification{
		UserID:  notice.UserID,
		OrderID: &orderID,
		Kind:    domain.KindOrderExpired,
		Subject: subject,
		Payload: datatypes.JSONMap{
			"order_id":    notice.OrderID.String(),
			"event_title": notice.EventTitle,
		},
	})
	if n.ID == 0 {
		return n
	}

	err := s.email.SendTemplate(ctx, []string{notice.Email}, subject, "order_expired", map[string]interface{}{
		"Name":       notice.Name,
		"EventTitle": notice.EventTitle,
	})
	return s.settle(ctx, n, err)
}

func (s *Service) NotifyEventReminder(ctx context.Context, notice domain.EventReminderNotice) (domain.Notification, bool) {
	since := s.clock.Now().Truncate(24 * time.Hour)
	already, err := s.repo.HasReminderSince(ctx, s.db, notice.UserID, notice.EventID, since)
	if err != nil {
		s.log.Error("check existing reminder", zap.Error(err))
		return domain.Notification{}, false
	}
	if already {
		return domain.Notification{}, false
	}

	subject := "Reminder: " + notice.EventTitle + " is tomorrow"
	n := s.queue(ctx, domain.Notification{
		UserID:  notice.UserID,
		Kind:    domain.KindEventReminder,
		Subject: subject,
		Payload: datatypes.JSONMap{
			"event_id":    notice.EventID.String(),
			"event_title": notice.EventTitle,
			"starts_at":   notice.StartsAt.Format(time.RFC3339),
		},
	})
	if n.ID == 0 {
		return n, false
	}

	err = s.email.SendTemplate(ctx, []string{notice.Email}, subject, "event_reminder", map[string]interface{}{
		"Name":       notice.Name,
		"EventTitle": notice.EventTitle,
		"Venue":      notice.Venue,
		"StartsAt":   notice.StartsAt.Format(time.RFC1123),
	})
	return s.settle(ctx, n, err), true
}

func (s *Service) List(ctx context.Context, req domain.ListNotificationRequest) ([]domain.Notification, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	notifications, err := s.repo.ListByUser(ctx, s.db, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, *n)
	}
	return out, nil
}

// queue inserts the QUEUED record. A zero ID signals the insert failed
// and delivery should not be attempted.
func (s *Service) queue(ctx context.Context, n domain.Notification) domain.Notification {
	n.ID = s.genID.Generate()
	n.Channel = domain.ChannelEmail
	n.Status = domain.StatusQueued
	n.CreatedAt = s.clock.Now()
	if n.Payload == nil {
		n.Payload = datatypes.JSONMap{}
	}

	if err := s.repo.Insert(ctx, s.db, &n); err != nil {
		s.log.Error("insert notification",
			zap.String("kind", n.Kind),
			zap.String("user_id", n.UserID.String()),
			zap.Error(err),
		)
		return domain.Notification{}
	}
	return n
}

func (s *Service) settle(ctx context.Context, n domain.Notification, sendErr error) domain.Notification {
	if sendErr != nil {
		s.log.Warn("notification delivery failed",
			zap.String("kind", n.Kind),
			zap.String("user_id", n.UserID.String()),
			zap.Error(sendErr),
		)
		n.Status = domain.StatusFailed
		n.Error = sendErr.Error()
		if err := s.repo.MarkFailed(ctx, s.db, n.ID, n.Error); err != nil {
			s.log.Error("mark notification failed", zap.Error(err))
		}
		return n
	}

	sentAt := s.clock.Now()
	n.Status = domain.StatusSent
	n.SentAt = &sentAt
	if err := s.repo.MarkSent(ctx, s.db, n.ID, sentAt); err != nil {
		s.log.Error("mark notification sent", zap.Error(err))
	}
	return n
}
