package scheduler

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/tiketin/tiketin/internal/clock"
	eventdomain "github.com/tiketin/tiketin/internal/event/domain"
	eventrepo "github.com/tiketin/tiketin/internal/event/repository"
	eventservice "github.com/tiketin/tiketin/internal/event/service"
	notificationrepo "github.com/tiketin/tiketin/internal/notification/repository"
	notificationservice "github.com/tiketin/tiketin/internal/notification/service"
	"github.com/tiketin/tiketin/internal/providers/email"
	ticketdomain "github.com/tiketin/tiketin/internal/ticket/domain"
	ticketrepo "github.com/tiketin/tiketin/internal/ticket/repository"
	userdomain "github.com/tiketin/tiketin/internal/user/domain"
	userrepo "github.com/tiketin/tiketin/internal/user/repository"
	userservice "github.com/tiketin/tiketin/internal/user/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type countingEmail struct {
	email.NoOpProvider
	sent int
}

func (c *countingEmail) SendTemplate(ctx context.Context, to []string, subject, templateName string, data interface{}) error {
	c.sent++
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_reminders_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// SQLite support hack: remove FOR UPDATE clauses
	stripForUpdate := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE SKIP LOCKED", "")
			newSQL = strings.ReplaceAll(newSQL, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	db.Callback().Query().Before("gorm:query").Register("sqlite_skip_locked", stripForUpdate)
	db.Callback().Row().Before("gorm:row").Register("sqlite_skip_locked_row", stripForUpdate)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	schema := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			venue TEXT NOT NULL DEFAULT '',
			starts_at TIMESTAMP NOT NULL,
			price BIGINT NOT NULL,
			quota INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
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
		`CREATE TABLE notifications (
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
		)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}

func TestReminderRunOnceIsRerunSafe(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(50)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	mail := &countingEmail{}

	userSvc := userservice.New(userservice.Params{DB: db, Log: zap.NewNop(), Repo: userrepo.Provide()})
	eventSvc := eventservice.New(eventservice.Params{DB: db, Log: zap.NewNop(), Clock: fc, Repo: eventrepo.Provide()})
	notificationSvc := notificationservice.New(notificationservice.Params{
		DB: db, Log: zap.NewNop(), Clock: fc, GenID: node, Repo: notificationrepo.Provide(), Email: mail,
	})
	tickets := ticketrepo.Provide()

	job := NewReminderJob(ReminderParams{
		DB:            db,
		Log:           zap.NewNop(),
		Clock:         fc,
		Events:        eventSvc,
		Tickets:       tickets,
		Users:         userSvc,
		Notifications: notificationSvc,
	})

	holder, err := userSvc.Create(ctx, userdomain.CreateUserRequest{Name: "Budi", Email: "budi@example.com"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	tomorrowEvent, err := eventSvc.Create(ctx, eventdomain.CreateEventRequest{
		Title:    "Konser Besok",
		Venue:    "Istora",
		StartsAt: time.Date(2026, 3, 11, 19, 0, 0, 0, time.UTC),
		Price:    50000,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	if _, err := eventSvc.Publish(ctx, tomorrowEvent.ID.String()); err != nil {
		t.Fatalf("publish: %v", err)
	}

	laterEvent, err := eventSvc.Create(ctx, eventdomain.CreateEventRequest{
		Title:    "Konser Minggu Depan",
		StartsAt: time.Date(2026, 3, 20, 19, 0, 0, 0, time.UTC),
		Price:    50000,
	})
	if err != nil {
		t.Fatalf("seed later event: %v", err)
	}
	if _, err := eventSvc.Publish(ctx, laterEvent.ID.String()); err != nil {
		t.Fatalf("publish later: %v", err)
	}

	now := fc.Now()
	seed := []struct {
		eventID uuid.UUID
		status  string
	}{
		{tomorrowEvent.ID, ticketdomain.StatusActive},
		{laterEvent.ID, ticketdomain.StatusActive},
	}
	for i, s := range seed {
		err := tickets.InsertBatch(ctx, db, []*ticketdomain.Ticket{{
			ID:          uuid.New(),
			OrderID:     uuid.New(),
			EventID:     s.eventID,
			OwnerUserID: holder.ID,
			Seq:         1,
			Code:        fmt.Sprintf("TKT-SEED-%06d", i),
			Status:      s.status,
			IssuedAt:    now,
		}})
		if err != nil {
			t.Fatalf("seed ticket: %v", err)
		}
	}

	if err := job.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if mail.sent != 1 {
		t.Fatalf("expected 1 reminder email, got %d", mail.sent)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM notifications WHERE kind = 'EVENT_REMINDER'`).Scan(&count).Error; err != nil {
		t.Fatalf("count reminders: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 reminder row, got %d", count)
	}

	// A rerun on the same day must not send duplicates.
	if err := job.RunOnce(ctx); err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if mail.sent != 1 {
		t.Fatalf("expected rerun to send nothing, got %d", mail.sent)
	}
}

func TestReminderSkipsRedeemedOnlyHolders(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	fc := clock.NewFakeClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	node, err := snowflake.NewNode(51)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	mail := &countingEmail{}

	userSvc := userservice.New(userservice.Params{DB: db, Log: zap.NewNop(), Repo: userrepo.Provide()})
	eventSvc := eventservice.New(eventservice.Params{DB: db, Log: zap.NewNop(), Clock: fc, Repo: eventrepo.Provide()})
	notificationSvc := notificationservice.New(notificationservice.Params{
		DB: db, Log: zap.NewNop(), Clock: fc, GenID: node, Repo: notificationrepo.Provide(), Email: mail,
	})
	tickets := ticketrepo.Provide()

	job := NewReminderJob(ReminderParams{
		DB:            db,
		Log:           zap.NewNop(),
		Clock:         fc,
		Events:        eventSvc,
		Tickets:       tickets,
		Users:         userSvc,
		Notifications: notificationSvc,
	})

	holder, err := userSvc.Create(ctx, userdomain.CreateUserRequest{Name: "Siti", Email: "siti@example.com"})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	event, err := eventSvc.Create(ctx, eventdomain.CreateEventRequest{
		Title:    "Konser Besok",
		StartsAt: time.Date(2026, 3, 11, 19, 0, 0, 0, time.UTC),
		Price:    50000,
	})
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	if _, err := eventSvc.Publish(ctx, event.ID.String()); err != nil {
		t.Fatalf("publish: %v", err)
	}

	redeemedAt := fc.Now()
	err = tickets.InsertBatch(ctx, db, []*ticketdomain.Ticket{{
		ID:          uuid.New(),
		OrderID:     uuid.New(),
		EventID:     event.ID,
		OwnerUserID: holder.ID,
		Seq:         1,
		Code:        "TKT-SEED-USED01",
		Status:      ticketdomain.StatusRedeemed,
		IssuedAt:    redeemedAt,
		RedeemedAt:  &redeemedAt,
	}})
	if err != nil {
		t.Fatalf("seed ticket: %v", err)
	}

	if err := job.RunOnce(ctx); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if mail.sent != 0 {
		t.Fatalf("expected no reminders for redeemed-only holders, got %d", mail.sent)
	}
}
