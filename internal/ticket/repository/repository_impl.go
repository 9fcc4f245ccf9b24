package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tiketin/tiketin/internal/ticket/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, tickets []*domain.Ticket) error {
	for _, t := range tickets {
		err := db.WithContext(ctx).Exec(
			`INSERT INTO tickets (id, order_id, event_id, owner_user_id, seq, code, status, qr_path, pdf_path, issued_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID,
			t.OrderID,
			t.EventID,
			t.OwnerUserID,
			t.Seq,
			t.Code,
			t.Status,
			t.QRPath,
			t.PDFPath,
			t.IssuedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

const ticketColumns = `id, order_id, event_id, owner_user_id, seq, code, status, qr_path, pdf_path, issued_at, redeemed_at`

func (r *repo) FindByOrderID(ctx context.Context, db *gorm.DB, orderID uuid.UUID) ([]*domain.Ticket, error) {
	var tickets []*domain.Ticket
	err := db.WithContext(ctx).Raw(
		`SELECT `+ticketColumns+` FROM tickets WHERE order_id = ? ORDER BY seq`,
		orderID,
	).Scan(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := db.WithContext(ctx).Raw(
		`SELECT `+ticketColumns+` FROM tickets WHERE code = ?`,
		code,
	).Scan(&ticket).Error
	if err != nil {
		return nil, err
	}
	if ticket.ID == uuid.Nil {
		return nil, nil
	}
	return &ticket, nil
}

func (r *repo) FindByCodeForUpdate(ctx context.Context, db *gorm.DB, code string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := db.WithContext(ctx).Raw(
		`SELECT `+ticketColumns+` FROM tickets WHERE code = ? FOR UPDATE`,
		code,
	).Scan(&ticket).Error
	if err != nil {
		return nil, err
	}
	if ticket.ID == uuid.Nil {
		return nil, nil
	}
	return &ticket, nil
}

func (r *repo) UpdateArtifacts(ctx context.Context, db *gorm.DB, id uuid.UUID, qrPath, pdfPath string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tickets SET qr_path = ?, pdf_path = ? WHERE id = ?`,
		qrPath,
		pdfPath,
		id,
	).Error
}

func (r *repo) MarkRedeemed(ctx context.Context, db *gorm.DB, ticket *domain.Ticket) error {
	return db.WithContext(ctx).Exec(
		`UPDATE tickets SET status = ?, redeemed_at = ? WHERE id = ?`,
		ticket.Status,
		ticket.RedeemedAt,
		ticket.ID,
	).Error
}

func (r *repo) FindOrderStatus(ctx context.Context, db *gorm.DB, orderID uuid.UUID) (string, error) {
	var status string
	err := db.WithContext(ctx).Raw(
		`SELECT status FROM orders WHERE id = ?`,
		orderID,
	).Scan(&status).Error
	if err != nil {
		return "", err
	}
	return status, nil
}

func (r *repo) ListActiveOwnerIDsByEvent(ctx context.Context, db *gorm.DB, eventID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT owner_user_id FROM tickets WHERE event_id = ? AND status = ?`,
		eventID,
		domain.StatusActive,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
