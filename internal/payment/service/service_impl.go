package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/tiketin/tiketin/internal/clock"
	orderdomain "github.com/tiketin/tiketin/internal/order/domain"
	"github.com/tiketin/tiketin/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	GenID  *snowflake.Node
	Repo   domain.Repository
	Orders orderdomain.Service
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	clock  clock.Clock
	genID  *snowflake.Node
	repo   domain.Repository
	orders orderdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("payment.service"),
		clock:  p.Clock,
		genID:  p.GenID,
		repo:   p.Repo,
		orders: p.Orders,
	}
}

func (s *Service) ProcessEvent(ctx context.Context, event domain.WebhookEvent, payload []byte) (domain.ProcessResult, error) {
	event.Provider = strings.ToLower(strings.TrimSpace(event.Provider))
	if event.Provider == "" {
		return domain.ProcessResult{}, domain.ErrInvalidProvider
	}
	event.ProviderEventID = strings.TrimSpace(event.ProviderEventID)
	if event.ProviderEventID == "" {
		return domain.ProcessResult{}, domain.ErrInvalidEvent
	}
	// A delivery that does not even name an order is a malformed request,
	// not a reconcilable event; it is rejected before the ledger sees it.
	event.ExternalID = strings.TrimSpace(event.ExternalID)
	if event.ExternalID == "" {
		return domain.ProcessResult{}, domain.ErrMissingExternalID
	}
	if !json.Valid(payload) {
		return domain.ProcessResult{}, domain.ErrInvalidPayload
	}

	now := s.clock.Now()
	received := domain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		ExternalID:      event.ExternalID,
		Status:          strings.ToUpper(strings.TrimSpace(event.Status)),
		Payload:         datatypes.JSON(payload),
		ReceivedAt:      now,
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, &received)
	if err != nil {
		return domain.ProcessResult{}, err
	}
	stored := &received
	if !inserted {
		stored, err = s.repo.FindEvent(ctx, s.db, event.Provider, event.ProviderEventID)
		if err != nil {
			return domain.ProcessResult{}, err
		}
		if stored == nil {
			return domain.ProcessResult{}, domain.ErrInvalidEvent
		}
		if stored.ProcessedAt != nil {
			return domain.ProcessResult{}, domain.ErrEventAlreadyProcessed
		}
	}

	result, err := s.reconcile(ctx, stored)
	if err != nil {
		// Leave the record unprocessed so the provider's retry can
		// re-drive it.
		return domain.ProcessResult{}, err
	}

	if err := s.repo.MarkProcessed(ctx, s.db, stored.ID, s.clock.Now()); err != nil {
		return domain.ProcessResult{}, err
	}

	return result, nil
}

// reconcile applies the delivery to the order state machine. Events that
// reference no known order are recorded and ignored, never errors: the
// provider must not keep retrying garbage.
func (s *Service) reconcile(ctx context.Context, stored *domain.EventRecord) (domain.ProcessResult, error) {
	externalID := strings.TrimSpace(stored.ExternalID)
	if _, err := uuid.Parse(externalID); err != nil {
		s.log.Warn("webhook with malformed external id ignored",
			zap.String("provider_event_id", stored.ProviderEventID),
			zap.String("external_id", externalID),
		)
		return domain.ProcessResult{Ignored: true}, nil
	}

	applied, err := s.orders.ApplyPaymentStatus(ctx, orderdomain.ApplyPaymentStatusRequest{
		OrderID:        externalID,
		ProviderStatus: stored.Status,
		PaymentRef:     stored.ProviderEventID,
	})
	if err != nil {
		if errors.Is(err, orderdomain.ErrNotFound) || errors.Is(err, orderdomain.ErrInvalidID) {
			s.log.Warn("webhook for unknown order ignored",
				zap.String("provider_event_id", stored.ProviderEventID),
				zap.String("external_id", externalID),
			)
			return domain.ProcessResult{Ignored: true}, nil
		}
		return domain.ProcessResult{}, err
	}

	s.log.Info("webhook processed",
		zap.String("provider_event_id", stored.ProviderEventID),
		zap.String("order_id", externalID),
		zap.String("status", stored.Status),
		zap.Bool("transitioned", applied.Transitioned),
		zap.Int("tickets_issued", applied.TicketsIssued),
	)

	return domain.ProcessResult{
		Transitioned:  applied.Transitioned,
		TicketsIssued: applied.TicketsIssued,
	}, nil
}
