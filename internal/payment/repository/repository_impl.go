package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tiketin/tiketin/internal/payment/domain"
	"github.com/tiketin/tiketin/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertEvent(ctx context.Context, conn *gorm.DB, event *domain.EventRecord) (bool, error) {
	err := conn.WithContext(ctx).Exec(
		`INSERT INTO payment_events (id, provider, provider_event_id, external_id, status, payload, received_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Provider,
		event.ProviderEventID,
		event.ExternalID,
		event.Status,
		event.Payload,
		event.ReceivedAt,
	).Error
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) FindEvent(ctx context.Context, conn *gorm.DB, provider, providerEventID string) (*domain.EventRecord, error) {
	var event domain.EventRecord
	err := conn.WithContext(ctx).Raw(
		`SELECT id, provider, provider_event_id, external_id, status, payload, received_at, processed_at
		 FROM payment_events WHERE provider = ? AND provider_event_id = ?`,
		provider,
		providerEventID,
	).Scan(&event).Error
	if err != nil {
		return nil, err
	}
	if event.ID == 0 {
		return nil, nil
	}
	return &event, nil
}

func (r *repo) MarkProcessed(ctx context.Context, conn *gorm.DB, id snowflake.ID, processedAt time.Time) error {
	return conn.WithContext(ctx).Exec(
		`UPDATE payment_events SET processed_at = ? WHERE id = ?`,
		processedAt,
		id,
	).Error
}
