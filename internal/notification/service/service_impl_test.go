package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/tiketin/tiketin/internal/clock"
	"github.com/tiketin/tiketin/internal/notification/domain"
	notificationrepo "github.com/tiketin/tiketin/internal/notification/repository"
	notificationservice "github.com/tiketin/tiketin/internal/notification/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeEmail struct {
	fail      bool
	delivered int
}

func (f *fakeEmail) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	return f.record()
}

func (f *fakeEmail) SendTemplate(ctx context.Context, to []string, subject, templateName string, data interface{}) error {
	return f.record()
}

func (f *fakeEmail) record() error {
	if f.fail {
		return fmt.Errorf("smtp connection refused")
	}
	f.delivered++
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_notifications_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec(`CREATE TABLE notifications (
		id BIGINT PRIMARY KEY,
		user_id TEXT NOT NULL,
		order_id TEXT,
		kind TEXT NOT NULL,
		channel TEXT NOT NULL,
		status TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL DEFAULT '{}',
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		sent_at TIMESTAMP
	)`).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func newService(t *testing.T, db *gorm.DB, mail *fakeEmail) domain.Service {
	t.Helper()
	node, err := snowflake.NewNode(40)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return notificationservice.New(notificationservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)),
		GenID: node,
		Repo:  notificationrepo.Provide(),
		Email: mail,
	})
}

func TestNotifyOrderPaidMarksSent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	mail := &fakeEmail{}
	svc := newService(t, db, mail)

	userID := uuid.New()
	n := svc.NotifyOrderPaid(ctx, domain.OrderPaidNotice{
		UserID:      userID,
		OrderID:     uuid.New(),
		Name:        "Budi",
		Email:       "budi@example.com",
		EventTitle:  "Konser Senja",
		Venue:       "Istora",
		StartsAt:    time.Date(2026, 4, 1, 19, 0, 0, 0, time.UTC),
		Total:       100000,
		TicketCodes: []string{"TKT-A-000001", "TKT-A-000002"},
	})

	if n.Status != domain.StatusSent {
		t.Fatalf("expected SENT, got %s", n.Status)
	}
	if n.SentAt == nil {
		t.Fatalf("expected sent_at to be set")
	}
	if mail.delivered != 1 {
		t.Fatalf("expected 1 delivery, got %d", mail.delivered)
	}

	list, err := svc.List(ctx, domain.ListNotificationRequest{UserID: userID.String()})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Kind != domain.KindOrderPaid {
		t.Fatalf("expected one ORDER_PAID record, got %+v", list)
	}
}

func TestNotifyOrderExpiredDeliveryFailureMarksFailed(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newService(t, db, &fakeEmail{fail: true})

	n := svc.NotifyOrderExpired(ctx, domain.OrderExpiredNotice{
		UserID:     uuid.New(),
		OrderID:    uuid.New(),
		Name:       "Budi",
		Email:      "budi@example.com",
		EventTitle: "Konser Senja",
	})

	if n.Status != domain.StatusFailed {
		t.Fatalf("expected FAILED, got %s", n.Status)
	}
	if n.Error == "" {
		t.Fatalf("expected delivery error to be recorded")
	}

	var status string
	if err := db.Raw(`SELECT status FROM notifications WHERE id = ?`, n.ID).Scan(&status).Error; err != nil {
		t.Fatalf("load status: %v", err)
	}
	if status != domain.StatusFailed {
		t.Fatalf("expected FAILED row, got %s", status)
	}
}

func TestNotifyEventReminderDedupesPerDay(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	mail := &fakeEmail{}
	svc := newService(t, db, mail)

	notice := domain.EventReminderNotice{
		UserID:     uuid.New(),
		EventID:    uuid.New(),
		Name:       "Budi",
		Email:      "budi@example.com",
		EventTitle: "Konser Senja",
		Venue:      "Istora",
		StartsAt:   time.Date(2026, 3, 11, 19, 0, 0, 0, time.UTC),
	}

	first, delivered := svc.NotifyEventReminder(ctx, notice)
	if !delivered {
		t.Fatalf("expected first reminder to be delivered")
	}
	if first.Status != domain.StatusSent {
		t.Fatalf("expected SENT, got %s", first.Status)
	}

	if _, delivered := svc.NotifyEventReminder(ctx, notice); delivered {
		t.Fatalf("expected same-day repeat to be deduped")
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM notifications`).Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single reminder row, got %d", count)
	}

	// A different event for the same user still goes out.
	other := notice
	other.EventID = uuid.New()
	if _, delivered := svc.NotifyEventReminder(ctx, other); !delivered {
		t.Fatalf("expected reminder for a different event to be delivered")
	}
}
