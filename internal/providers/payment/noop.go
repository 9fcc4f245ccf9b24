package payment

import (
	"context"
	"time"
)

// NoOpProvider issues placeholder invoices. Used when no API key is
// configured so local development works without a gateway account.
type NoOpProvider struct{}

func (p *NoOpProvider) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (Invoice, error) {
	return Invoice{
		ID:         "inv-" + req.ExternalID,
		ExternalID: req.ExternalID,
		Status:     "PENDING",
		InvoiceURL: "https://invoice.local/" + req.ExternalID,
		ExpiryDate: time.Now().UTC().Add(24 * time.Hour),
	}, nil
}
