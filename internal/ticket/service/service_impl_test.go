package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tiketin/tiketin/internal/clock"
	"github.com/tiketin/tiketin/internal/providers/artifact"
	"github.com/tiketin/tiketin/internal/ticket/domain"
	ticketrepo "github.com/tiketin/tiketin/internal/ticket/repository"
	ticketservice "github.com/tiketin/tiketin/internal/ticket/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeArtifacts struct {
	calls int
	fail  bool
}

func (f *fakeArtifacts) Generate(ctx context.Context, data artifact.TicketData) (string, string, error) {
	f.calls++
	if f.fail {
		return "", "", fmt.Errorf("pdf renderer unavailable")
	}
	return "uploads/qr-" + data.Code + ".png", "uploads/ticket-" + data.Code + ".pdf", nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_tickets_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	// SQLite support hack: remove FOR UPDATE clauses
	db.Callback().Query().Before("gorm:query").Register("sqlite_skip_locked", func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE SKIP LOCKED", "")
			newSQL = strings.ReplaceAll(newSQL, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	})
	db.Callback().Row().Before("gorm:row").Register("sqlite_skip_locked_row", func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE SKIP LOCKED", "")
			newSQL = strings.ReplaceAll(newSQL, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	})

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	schema := []string{
		`CREATE TABLE orders (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL
		)`,
		`CREATE TABLE tickets (
			id TEXT PRIMARY KEY,
			order_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			owner_user_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			code TEXT NOT NULL,
			status TEXT NOT NULL,
			qr_path TEXT NOT NULL DEFAULT '',
			pdf_path TEXT NOT NULL DEFAULT '',
			issued_at TIMESTAMP NOT NULL,
			redeemed_at TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX ux_tickets_code ON tickets(code)`,
		`CREATE UNIQUE INDEX ux_tickets_order_seq ON tickets(order_id, seq)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func newTicketService(t *testing.T, db *gorm.DB, artifacts *fakeArtifacts) domain.Service {
	t.Helper()
	return ticketservice.New(ticketservice.Params{
		DB:        db,
		Log:       zap.NewNop(),
		Clock:     clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)),
		Repo:      ticketrepo.Provide(),
		Artifacts: artifacts,
	})
}

func seedOrder(t *testing.T, db *gorm.DB, id uuid.UUID, status string) {
	t.Helper()
	if err := db.Exec(`INSERT INTO orders (id, status) VALUES (?, ?)`, id, status).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func TestIssueForOrderIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	artifacts := &fakeArtifacts{}
	svc := newTicketService(t, db, artifacts)

	orderID := uuid.New()
	seedOrder(t, db, orderID, "PAID")

	req := domain.IssueRequest{
		OrderID:     orderID,
		EventID:     uuid.New(),
		OwnerUserID: uuid.New(),
		Quantity:    3,
		EventTitle:  "Konser Senja",
		Venue:       "Istora",
		StartsAt:    time.Date(2026, 4, 1, 19, 0, 0, 0, time.UTC),
		HolderName:  "Budi",
	}

	first, err := svc.IssueForOrder(ctx, req)
	if err != nil {
		t.Fatalf("first issuance: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 tickets, got %d", len(first))
	}

	second, err := svc.IssueForOrder(ctx, req)
	if err != nil {
		t.Fatalf("second issuance: %v", err)
	}
	if len(second) != 3 {
		t.Fatalf("expected 3 tickets on replay, got %d", len(second))
	}
	for i := range first {
		if first[i].Code != second[i].Code {
			t.Fatalf("replay returned different ticket %d: %s vs %s", i, first[i].Code, second[i].Code)
		}
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM tickets WHERE order_id = ?`, orderID).Scan(&count).Error; err != nil {
		t.Fatalf("count tickets: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows, got %d", count)
	}
	if artifacts.calls != 3 {
		t.Fatalf("expected 3 artifact generations, got %d", artifacts.calls)
	}
}

func TestIssueForOrderDetectsCountSkew(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTicketService(t, db, &fakeArtifacts{})

	orderID := uuid.New()
	seedOrder(t, db, orderID, "PAID")

	if _, err := svc.IssueForOrder(ctx, domain.IssueRequest{
		OrderID:     orderID,
		EventID:     uuid.New(),
		OwnerUserID: uuid.New(),
		Quantity:    2,
	}); err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err := svc.IssueForOrder(ctx, domain.IssueRequest{
		OrderID:     orderID,
		EventID:     uuid.New(),
		OwnerUserID: uuid.New(),
		Quantity:    5,
	})
	if err != domain.ErrTicketCountSkewed {
		t.Fatalf("expected ErrTicketCountSkewed, got %v", err)
	}
}

func TestIssueForOrderArtifactFailureAbortsAttempt(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	artifacts := &fakeArtifacts{fail: true}
	svc := newTicketService(t, db, artifacts)

	orderID := uuid.New()
	seedOrder(t, db, orderID, "PAID")

	req := domain.IssueRequest{
		OrderID:     orderID,
		EventID:     uuid.New(),
		OwnerUserID: uuid.New(),
		Quantity:    2,
	}

	if _, err := svc.IssueForOrder(ctx, req); err == nil {
		t.Fatalf("expected issuance to fail when artifacts cannot be generated")
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM tickets WHERE order_id = ?`, orderID).Scan(&count).Error; err != nil {
		t.Fatalf("count tickets: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no rows after aborted issuance, got %d", count)
	}

	// The next delivery re-drives issuance from scratch, generator included.
	artifacts.fail = false
	callsBefore := artifacts.calls
	tickets, err := svc.IssueForOrder(ctx, req)
	if err != nil {
		t.Fatalf("retry issuance: %v", err)
	}
	if artifacts.calls <= callsBefore {
		t.Fatalf("expected retry to call the generator again")
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets on retry, got %d", len(tickets))
	}
	for _, tk := range tickets {
		if tk.QRPath == "" || tk.PDFPath == "" {
			t.Fatalf("expected artifact paths on issued ticket, got %q %q", tk.QRPath, tk.PDFPath)
		}
	}
}

func TestIssueForOrderBackfillsMissingArtifacts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	artifacts := &fakeArtifacts{}
	svc := newTicketService(t, db, artifacts)

	orderID := uuid.New()
	owner := uuid.New()
	eventID := uuid.New()
	seedOrder(t, db, orderID, "PAID")

	// Row written without artifacts, as an older release could have left it.
	if err := db.Exec(
		`INSERT INTO tickets (id, order_id, event_id, owner_user_id, seq, code, status, qr_path, pdf_path, issued_at)
		 VALUES (?, ?, ?, ?, 1, ?, 'ACTIVE', '', '', ?)`,
		uuid.New(), orderID, eventID, owner, "TKT-LEGACY-AAAAAA", time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC),
	).Error; err != nil {
		t.Fatalf("seed bare ticket: %v", err)
	}

	tickets, err := svc.IssueForOrder(ctx, domain.IssueRequest{
		OrderID:     orderID,
		EventID:     eventID,
		OwnerUserID: owner,
		Quantity:    1,
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if artifacts.calls != 1 {
		t.Fatalf("expected one regeneration call, got %d", artifacts.calls)
	}
	if tickets[0].QRPath == "" || tickets[0].PDFPath == "" {
		t.Fatalf("expected backfilled artifact paths, got %q %q", tickets[0].QRPath, tickets[0].PDFPath)
	}

	var qrPath string
	if err := db.Raw(`SELECT qr_path FROM tickets WHERE order_id = ?`, orderID).Scan(&qrPath).Error; err != nil {
		t.Fatalf("read qr_path: %v", err)
	}
	if qrPath != tickets[0].QRPath {
		t.Fatalf("expected backfilled path persisted, got %q", qrPath)
	}
}

func TestValidateOutcomes(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTicketService(t, db, &fakeArtifacts{})

	owner := uuid.New()
	paidOrder := uuid.New()
	pendingOrder := uuid.New()
	seedOrder(t, db, paidOrder, "PAID")
	seedOrder(t, db, pendingOrder, "PENDING")

	paidTickets, err := svc.IssueForOrder(ctx, domain.IssueRequest{
		OrderID: paidOrder, EventID: uuid.New(), OwnerUserID: owner, Quantity: 1,
	})
	if err != nil {
		t.Fatalf("issue paid: %v", err)
	}
	pendingTickets, err := svc.IssueForOrder(ctx, domain.IssueRequest{
		OrderID: pendingOrder, EventID: uuid.New(), OwnerUserID: owner, Quantity: 1,
	})
	if err != nil {
		t.Fatalf("issue pending: %v", err)
	}

	cases := []struct {
		name string
		req  domain.ValidateRequest
		want domain.ValidationStatus
	}{
		{"owner sees valid ticket", domain.ValidateRequest{Code: paidTickets[0].Code, ActorUserID: owner.String()}, domain.ValidationValid},
		{"admin sees valid ticket", domain.ValidateRequest{Code: paidTickets[0].Code, ActorAdmin: true}, domain.ValidationValid},
		{"stranger is rejected", domain.ValidateRequest{Code: paidTickets[0].Code, ActorUserID: uuid.New().String()}, domain.ValidationNotOwned},
		{"unknown code", domain.ValidateRequest{Code: "TKT-NOPE-ZZZZZZ", ActorAdmin: true}, domain.ValidationNotFound},
		{"unpaid order", domain.ValidateRequest{Code: pendingTickets[0].Code, ActorAdmin: true}, domain.ValidationInvalidState},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := svc.Validate(ctx, tc.req)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if res.Status != tc.want {
				t.Fatalf("expected %s, got %s (reason %q)", tc.want, res.Status, res.Reason)
			}
		})
	}
}

func TestRedeemHappyPathAndReplays(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTicketService(t, db, &fakeArtifacts{})

	paidOrder := uuid.New()
	pendingOrder := uuid.New()
	seedOrder(t, db, paidOrder, "PAID")
	seedOrder(t, db, pendingOrder, "PENDING")

	paidTickets, err := svc.IssueForOrder(ctx, domain.IssueRequest{
		OrderID: paidOrder, EventID: uuid.New(), OwnerUserID: uuid.New(), Quantity: 1,
	})
	if err != nil {
		t.Fatalf("issue paid: %v", err)
	}
	pendingTickets, err := svc.IssueForOrder(ctx, domain.IssueRequest{
		OrderID: pendingOrder, EventID: uuid.New(), OwnerUserID: uuid.New(), Quantity: 1,
	})
	if err != nil {
		t.Fatalf("issue pending: %v", err)
	}

	redeemed, err := svc.Redeem(ctx, domain.RedeemRequest{Code: paidTickets[0].Code})
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if redeemed.Status != domain.StatusRedeemed {
		t.Fatalf("expected REDEEMED, got %s", redeemed.Status)
	}
	if redeemed.RedeemedAt == nil {
		t.Fatalf("expected redeemed_at to be set")
	}

	if _, err := svc.Redeem(ctx, domain.RedeemRequest{Code: paidTickets[0].Code}); err != domain.ErrNotRedeemable {
		t.Fatalf("expected ErrNotRedeemable on double redeem, got %v", err)
	}
	if _, err := svc.Redeem(ctx, domain.RedeemRequest{Code: pendingTickets[0].Code}); err != domain.ErrNotRedeemable {
		t.Fatalf("expected ErrNotRedeemable for unpaid order, got %v", err)
	}
	if _, err := svc.Redeem(ctx, domain.RedeemRequest{Code: "TKT-NOPE-ZZZZZZ"}); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	res, err := svc.Validate(ctx, domain.ValidateRequest{Code: paidTickets[0].Code, ActorAdmin: true})
	if err != nil {
		t.Fatalf("validate redeemed: %v", err)
	}
	if res.Status != domain.ValidationInvalidState {
		t.Fatalf("expected INVALID_STATE after redemption, got %s", res.Status)
	}
}
