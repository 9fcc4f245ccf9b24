package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// XenditProvider talks to the Xendit invoice API.
type XenditProvider struct {
	baseURL         string
	apiKey          string
	invoiceDuration int
	client          *http.Client
}

type XenditConfig struct {
	BaseURL         string
	APIKey          string
	InvoiceDuration int
}

func NewXendit(cfg XenditConfig) *XenditProvider {
	return &XenditProvider{
		baseURL:         cfg.BaseURL,
		apiKey:          cfg.APIKey,
		invoiceDuration: cfg.InvoiceDuration,
		client:          &http.Client{Timeout: 30 * time.Second},
	}
}

type xenditInvoiceRequest struct {
	ExternalID      string `json:"external_id"`
	Amount          int64  `json:"amount"`
	PayerEmail      string `json:"payer_email,omitempty"`
	Description     string `json:"description,omitempty"`
	InvoiceDuration int    `json:"invoice_duration,omitempty"`
}

type xenditInvoiceResponse struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Status     string    `json:"status"`
	InvoiceURL string    `json:"invoice_url"`
	ExpiryDate time.Time `json:"expiry_date"`
}

func (p *XenditProvider) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (Invoice, error) {
	payload, err := json.Marshal(xenditInvoiceRequest{
		ExternalID:      req.ExternalID,
		Amount:          req.Amount,
		PayerEmail:      req.PayerEmail,
		Description:     req.Description,
		InvoiceDuration: p.invoiceDuration,
	})
	if err != nil {
		return Invoice{}, fmt.Errorf("marshal invoice request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v2/invoices", bytes.NewReader(payload))
	if err != nil {
		return Invoice{}, fmt.Errorf("build invoice request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Xendit authenticates with the API key as basic auth user and an
	// empty password.
	httpReq.SetBasicAuth(p.apiKey, "")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Invoice{}, fmt.Errorf("read invoice response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Invoice{}, fmt.Errorf("create invoice: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out xenditInvoiceResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return Invoice{}, fmt.Errorf("decode invoice response: %w", err)
	}

	return Invoice{
		ID:         out.ID,
		ExternalID: out.ExternalID,
		Status:     out.Status,
		InvoiceURL: out.InvoiceURL,
		ExpiryDate: out.ExpiryDate,
	}, nil
}
