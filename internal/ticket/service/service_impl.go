package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tiketin/tiketin/internal/clock"
	"github.com/tiketin/tiketin/internal/providers/artifact"
	"github.com/tiketin/tiketin/internal/ticket/domain"
	"github.com/tiketin/tiketin/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Repo      domain.Repository
	Artifacts artifact.Generator
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	repo      domain.Repository
	artifacts artifact.Generator
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("ticket.service"),
		clock:     p.Clock,
		repo:      p.Repo,
		artifacts: p.Artifacts,
	}
}

func (s *Service) IssueForOrder(ctx context.Context, req domain.IssueRequest) ([]domain.Ticket, error) {
	if req.OrderID == uuid.Nil {
		return nil, domain.ErrInvalidOrder
	}
	if req.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	existing, err := s.repo.FindByOrderID(ctx, s.db, req.OrderID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return s.verifyExisting(ctx, req, existing)
	}

	// QR and PDF files are written before any row persists, so a ticket
	// row never exists without its artifacts on disk. A generation error
	// aborts the whole attempt; the next delivery of the webhook finds no
	// rows and drives issuance again from scratch.
	now := s.clock.Now()
	tickets := make([]*domain.Ticket, 0, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		t := &domain.Ticket{
			ID:          uuid.New(),
			OrderID:     req.OrderID,
			EventID:     req.EventID,
			OwnerUserID: req.OwnerUserID,
			Seq:         i + 1,
			Code:        domain.NewCode(now),
			Status:      domain.StatusActive,
			IssuedAt:    now,
		}
		if t.QRPath, t.PDFPath, err = s.renderArtifacts(ctx, req, t.Code); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}

	// All tickets for an order persist in one transaction; the unique
	// (order_id, seq) index makes the loser of a concurrent double
	// issuance fail cleanly instead of writing a partial batch.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.InsertBatch(ctx, tx, tickets)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			winners, readErr := s.repo.FindByOrderID(ctx, s.db, req.OrderID)
			if readErr != nil {
				return nil, readErr
			}
			return s.verifyExisting(ctx, req, winners)
		}
		return nil, err
	}

	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, *t)
	}
	return out, nil
}

// verifyExisting guards against a previously interrupted issuance having
// left fewer tickets than the order quantity, and regenerates artifacts
// for any row found without them.
func (s *Service) verifyExisting(ctx context.Context, req domain.IssueRequest, existing []*domain.Ticket) ([]domain.Ticket, error) {
	if len(existing) != req.Quantity {
		s.log.Error("ticket count does not match order quantity",
			zap.String("order_id", req.OrderID.String()),
			zap.Int("tickets", len(existing)),
			zap.Int("quantity", req.Quantity),
		)
		return nil, domain.ErrTicketCountSkewed
	}
	out := make([]domain.Ticket, 0, len(existing))
	for _, t := range existing {
		if t.QRPath == "" || t.PDFPath == "" {
			qrPath, pdfPath, err := s.renderArtifacts(ctx, req, t.Code)
			if err != nil {
				return nil, err
			}
			if err := s.repo.UpdateArtifacts(ctx, s.db, t.ID, qrPath, pdfPath); err != nil {
				return nil, err
			}
			t.QRPath = qrPath
			t.PDFPath = pdfPath
		}
		out = append(out, *t)
	}
	return out, nil
}

func (s *Service) renderArtifacts(ctx context.Context, req domain.IssueRequest, code string) (string, string, error) {
	qrPath, pdfPath, err := s.artifacts.Generate(ctx, artifact.TicketData{
		EventTitle: req.EventTitle,
		Venue:      req.Venue,
		StartsAt:   req.StartsAt.Format(time.RFC1123),
		HolderName: req.HolderName,
		Code:       code,
	})
	if err != nil {
		s.log.Error("generate ticket artifacts",
			zap.String("ticket_code", code),
			zap.Error(err),
		)
		return "", "", err
	}
	return qrPath, pdfPath, nil
}

func (s *Service) FindByOrder(ctx context.Context, orderID string) ([]domain.Ticket, error) {
	id, err := uuid.Parse(strings.TrimSpace(orderID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	tickets, err := s.repo.FindByOrderID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, *t)
	}
	return out, nil
}

func (s *Service) Validate(ctx context.Context, req domain.ValidateRequest) (domain.ValidationResult, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.ValidationResult{Status: domain.ValidationNotFound}, nil
	}

	ticket, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	if ticket == nil {
		return domain.ValidationResult{Status: domain.ValidationNotFound}, nil
	}

	if !req.ActorAdmin && req.ActorUserID != ticket.OwnerUserID.String() {
		return domain.ValidationResult{Status: domain.ValidationNotOwned}, nil
	}

	if ticket.Status != domain.StatusActive {
		return domain.ValidationResult{
			Status: domain.ValidationInvalidState,
			Reason: "ticket is " + strings.ToLower(ticket.Status),
			Ticket: ticket,
		}, nil
	}

	orderStatus, err := s.repo.FindOrderStatus(ctx, s.db, ticket.OrderID)
	if err != nil {
		return domain.ValidationResult{}, err
	}
	if orderStatus != "PAID" {
		return domain.ValidationResult{
			Status: domain.ValidationInvalidState,
			Reason: "order is not paid",
			Ticket: ticket,
		}, nil
	}

	return domain.ValidationResult{Status: domain.ValidationValid, Ticket: ticket}, nil
}

func (s *Service) Redeem(ctx context.Context, req domain.RedeemRequest) (domain.Ticket, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return domain.Ticket{}, domain.ErrNotFound
	}

	var redeemed domain.Ticket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ticket, err := s.repo.FindByCodeForUpdate(ctx, tx, code)
		if err != nil {
			return err
		}
		if ticket == nil {
			return domain.ErrNotFound
		}
		if ticket.Status != domain.StatusActive {
			return domain.ErrNotRedeemable
		}

		orderStatus, err := s.repo.FindOrderStatus(ctx, tx, ticket.OrderID)
		if err != nil {
			return err
		}
		if orderStatus != "PAID" {
			return domain.ErrNotRedeemable
		}

		now := s.clock.Now()
		ticket.Status = domain.StatusRedeemed
		ticket.RedeemedAt = &now
		if err := s.repo.MarkRedeemed(ctx, tx, ticket); err != nil {
			return err
		}
		redeemed = *ticket
		return nil
	})
	if err != nil {
		return domain.Ticket{}, err
	}

	s.log.Info("ticket redeemed", zap.String("ticket_code", redeemed.Code))
	return redeemed, nil
}
