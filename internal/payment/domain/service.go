package domain

import (
	"context"
	"errors"
)

// WebhookEvent is a parsed provider callback.
type WebhookEvent struct {
	Provider        string
	ProviderEventID string
	ExternalID      string
	Status          string
}

// ProcessResult reports how a delivery was handled.
type ProcessResult struct {
	Ignored       bool
	Transitioned  bool
	TicketsIssued int
}

type Service interface {
	// ProcessEvent records the delivery exactly once and drives the
	// order reconciler. Replays return ErrEventAlreadyProcessed, which
	// the transport layer treats as success.
	ProcessEvent(ctx context.Context, event WebhookEvent, payload []byte) (ProcessResult, error)
}

var (
	ErrInvalidEvent          = errors.New("invalid_event")
	ErrInvalidProvider       = errors.New("invalid_provider")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrMissingExternalID     = errors.New("missing_external_id")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
)
