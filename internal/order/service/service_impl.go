package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tiketin/tiketin/internal/clock"
	eventdomain "github.com/tiketin/tiketin/internal/event/domain"
	notificationdomain "github.com/tiketin/tiketin/internal/notification/domain"
	"github.com/tiketin/tiketin/internal/order/domain"
	"github.com/tiketin/tiketin/internal/providers/payment"
	ticketdomain "github.com/tiketin/tiketin/internal/ticket/domain"
	userdomain "github.com/tiketin/tiketin/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	Repo          domain.Repository
	Users         userdomain.Service
	Events        eventdomain.Service
	Tickets       ticketdomain.Service
	Notifications notificationdomain.Service
	Invoices      payment.Provider
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	repo          domain.Repository
	users         userdomain.Service
	events        eventdomain.Service
	tickets       ticketdomain.Service
	notifications notificationdomain.Service
	invoices      payment.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("order.service"),
		clock:         p.Clock,
		repo:          p.Repo,
		users:         p.Users,
		events:        p.Events,
		tickets:       p.Tickets,
		notifications: p.Notifications,
		invoices:      p.Invoices,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	user, err := s.users.GetByID(ctx, userdomain.GetUserRequest{ID: req.UserID})
	if err != nil {
		if err == userdomain.ErrNotFound || err == userdomain.ErrInvalidID {
			return domain.Order{}, domain.ErrUserNotFound
		}
		return domain.Order{}, err
	}

	event, err := s.events.GetByID(ctx, eventdomain.GetEventRequest{ID: req.EventID})
	if err != nil {
		if err == eventdomain.ErrNotFound || err == eventdomain.ErrInvalidID {
			return domain.Order{}, domain.ErrEventNotFound
		}
		return domain.Order{}, err
	}
	if !event.Orderable() {
		// Unpublished events are invisible to buyers.
		return domain.Order{}, domain.ErrEventNotFound
	}

	if req.Quantity < 1 {
		return domain.Order{}, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	order := domain.Order{
		ID:        uuid.New(),
		UserID:    user.ID,
		EventID:   event.ID,
		Quantity:  req.Quantity,
		UnitPrice: event.Price,
		Total:     int64(req.Quantity) * event.Price,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// The event row lock serializes concurrent purchases, so two buyers
	// cannot both squeeze into the last remaining seats. A quota of zero
	// means unlimited capacity.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quota, err := s.repo.FindEventQuotaForUpdate(ctx, tx, event.ID)
		if err != nil {
			return err
		}
		if quota > 0 {
			sold, err := s.repo.SumOpenQuantityByEvent(ctx, tx, event.ID)
			if err != nil {
				return err
			}
			if sold+req.Quantity > quota {
				return domain.ErrQuotaExceeded
			}
		}
		return s.repo.Insert(ctx, tx, &order)
	})
	if err != nil {
		return domain.Order{}, err
	}

	invoice, err := s.invoices.CreateInvoice(ctx, payment.CreateInvoiceRequest{
		ExternalID:  order.ID.String(),
		Amount:      order.Total,
		PayerEmail:  user.Email,
		Description: fmt.Sprintf("%d ticket(s) for %s", order.Quantity, event.Title),
	})
	if err != nil {
		// Compensating delete keeps a provider outage from stranding
		// unpayable PENDING orders.
		if delErr := s.repo.Delete(ctx, s.db, order.ID); delErr != nil {
			s.log.Error("rollback order after invoice failure",
				zap.String("order_id", order.ID.String()),
				zap.Error(delErr),
			)
		}
		s.log.Error("create invoice",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return domain.Order{}, fmt.Errorf("%w: %v", domain.ErrInvoiceFailed, err)
	}

	order.InvoiceID = invoice.ID
	order.InvoiceURL = invoice.InvoiceURL
	order.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateInvoice(ctx, s.db, &order); err != nil {
		return domain.Order{}, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("event_id", event.ID.String()),
		zap.Int("quantity", order.Quantity),
		zap.Int64("total", order.Total),
	)
	return order, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetOrderRequest) (domain.Order, error) {
	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return domain.Order{}, domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	if !req.ActorAdmin && req.ActorUserID != order.UserID.String() {
		// Hide other users' orders rather than revealing they exist.
		return domain.Order{}, domain.ErrNotFound
	}
	return *order, nil
}

func (s *Service) List(ctx context.Context, req domain.ListOrderRequest) ([]domain.Order, error) {
	userID, err := uuid.Parse(strings.TrimSpace(req.UserID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	orders, err := s.repo.ListByUser(ctx, s.db, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, *o)
	}
	return out, nil
}

// mapProviderStatus translates gateway vocabulary onto the order state
// machine. Unknown statuses map to empty, meaning no transition.
func mapProviderStatus(providerStatus string) string {
	switch strings.ToUpper(strings.TrimSpace(providerStatus)) {
	case "PAID", "SETTLED":
		return domain.StatusPaid
	case "EXPIRED":
		return domain.StatusExpired
	default:
		return ""
	}
}

func (s *Service) ApplyPaymentStatus(ctx context.Context, req domain.ApplyPaymentStatusRequest) (domain.ApplyPaymentResult, error) {
	id, err := uuid.Parse(strings.TrimSpace(req.OrderID))
	if err != nil {
		return domain.ApplyPaymentResult{}, domain.ErrInvalidID
	}

	target := mapProviderStatus(req.ProviderStatus)

	var result domain.ApplyPaymentResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		result.Order = *order

		if target == "" || order.Status == target {
			// Same-status deliveries and PENDING confirmations are no-ops.
			return nil
		}

		allowed := (order.Status == domain.StatusPending && target == domain.StatusPaid) ||
			(order.Status == domain.StatusPending && target == domain.StatusExpired) ||
			(order.Status == domain.StatusPaid && target == domain.StatusExpired)
		if !allowed {
			s.log.Warn("ignoring backward status transition",
				zap.String("order_id", order.ID.String()),
				zap.String("from", order.Status),
				zap.String("to", target),
			)
			return nil
		}

		now := s.clock.Now()
		order.Status = target
		order.UpdatedAt = now
		if target == domain.StatusPaid {
			order.PaidAt = &now
		}
		if ref := strings.TrimSpace(req.PaymentRef); ref != "" {
			order.PaymentRef = ref
		}
		if err := s.repo.UpdateStatus(ctx, tx, order); err != nil {
			return err
		}

		result.Order = *order
		result.Transitioned = true
		return nil
	})
	if err != nil {
		return domain.ApplyPaymentResult{}, err
	}

	if !result.Transitioned {
		// A redelivered confirmation on an already-PAID order re-drives
		// fulfillment when a previous attempt left the order short of
		// tickets. Issuance is idempotent, so a fully fulfilled order is
		// untouched.
		if target == domain.StatusPaid && result.Order.Status == domain.StatusPaid {
			existing, err := s.tickets.FindByOrder(ctx, result.Order.ID.String())
			if err != nil {
				return domain.ApplyPaymentResult{}, err
			}
			if len(existing) != result.Order.Quantity {
				if err := s.fulfill(ctx, &result); err != nil {
					return domain.ApplyPaymentResult{}, err
				}
			}
		}
		return result, nil
	}

	switch result.Order.Status {
	case domain.StatusPaid:
		if err := s.fulfill(ctx, &result); err != nil {
			// The status change has committed; the error keeps the
			// delivery unacknowledged so the provider redelivers and the
			// no-transition branch above retries issuance.
			return domain.ApplyPaymentResult{}, err
		}
	case domain.StatusExpired:
		s.notifyExpired(ctx, result.Order)
	}

	return result, nil
}

// fulfill drives issuance and the paid notification after a PAID
// transition. An issuance failure is returned; notification delivery
// failure is recorded by the notifier and never fails the pipeline.
func (s *Service) fulfill(ctx context.Context, result *domain.ApplyPaymentResult) error {
	order := result.Order

	user, err := s.users.GetByID(ctx, userdomain.GetUserRequest{ID: order.UserID.String()})
	if err != nil {
		s.log.Error("load user for fulfillment", zap.String("order_id", order.ID.String()), zap.Error(err))
		return err
	}
	event, err := s.events.GetByID(ctx, eventdomain.GetEventRequest{ID: order.EventID.String()})
	if err != nil {
		s.log.Error("load event for fulfillment", zap.String("order_id", order.ID.String()), zap.Error(err))
		return err
	}

	tickets, err := s.tickets.IssueForOrder(ctx, ticketdomain.IssueRequest{
		OrderID:     order.ID,
		EventID:     event.ID,
		OwnerUserID: user.ID,
		Quantity:    order.Quantity,
		EventTitle:  event.Title,
		Venue:       event.Venue,
		StartsAt:    event.StartsAt,
		HolderName:  user.Name,
	})
	if err != nil {
		s.log.Error("issue tickets",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
		return err
	}
	result.TicketsIssued = len(tickets)

	codes := make([]string, 0, len(tickets))
	for _, t := range tickets {
		codes = append(codes, t.Code)
	}

	s.notifications.NotifyOrderPaid(ctx, notificationdomain.OrderPaidNotice{
		UserID:      user.ID,
		OrderID:     order.ID,
		Name:        user.Name,
		Email:       user.Email,
		EventTitle:  event.Title,
		Venue:       event.Venue,
		StartsAt:    event.StartsAt,
		Total:       order.Total,
		TicketCodes: codes,
	})
	return nil
}

func (s *Service) notifyExpired(ctx context.Context, order domain.Order) {
	user, err := s.users.GetByID(ctx, userdomain.GetUserRequest{ID: order.UserID.String()})
	if err != nil {
		s.log.Error("load user for expiry notice", zap.String("order_id", order.ID.String()), zap.Error(err))
		return
	}
	event, err := s.events.GetByID(ctx, eventdomain.GetEventRequest{ID: order.EventID.String()})
	if err != nil {
		s.log.Error("load event for expiry notice", zap.String("order_id", order.ID.String()), zap.Error(err))
		return
	}

	s.notifications.NotifyOrderExpired(ctx, notificationdomain.OrderExpiredNotice{
		UserID:     user.ID,
		OrderID:    order.ID,
		Name:       user.Name,
		Email:      user.Email,
		EventTitle: event.Title,
	})
}
