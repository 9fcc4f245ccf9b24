package payment

import (
	"context"
	"time"
)

type CreateInvoiceRequest struct {
	ExternalID  string
	Amount      int64
	PayerEmail  string
	Description string
}

type Invoice struct {
	ID         string
	ExternalID string
	Status     string
	InvoiceURL string
	ExpiryDate time.Time
}

// Provider creates payment invoices with an external payment gateway.
type Provider interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
}
