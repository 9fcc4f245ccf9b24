package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/tiketin/tiketin/internal/payment/domain"
)

type xenditWebhookBody struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

// handleXenditWebhook is the pipeline ingress. The gateway retries on
// non-2xx, so every delivery we have durably recorded answers 200 even
// when it changes nothing.
func (s *Server) handleXenditWebhook(c *gin.Context) {
	token := c.GetHeader("x-callback-token")
	if s.cfg.Xendit.CallbackToken == "" || token != s.cfg.Xendit.CallbackToken {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid callback token"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable body"})
		return
	}

	var body xenditWebhookBody
	if err := json.Unmarshal(payload, &body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "malformed payload"})
		return
	}

	_, err = s.paymentSvc.ProcessEvent(c.Request.Context(), paymentdomain.WebhookEvent{
		Provider:        paymentdomain.ProviderXendit,
		ProviderEventID: body.ID,
		ExternalID:      body.ExternalID,
		Status:          body.Status,
	}, payload)
	switch {
	case err == nil, errors.Is(err, paymentdomain.ErrEventAlreadyProcessed):
		c.String(http.StatusOK, "Webhook received")
	case errors.Is(err, paymentdomain.ErrMissingExternalID):
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing external_id"})
	case errors.Is(err, paymentdomain.ErrInvalidEvent),
		errors.Is(err, paymentdomain.ErrInvalidProvider),
		errors.Is(err, paymentdomain.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid webhook event"})
	default:
		AbortWithError(c, err)
	}
}
