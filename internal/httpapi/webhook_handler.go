package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-receipt-bot/internal/payment"
	"github.com/tbourn/go-receipt-bot/internal/services"
)

// PaymentWebhook handles the gateway's payment confirmation callback.
//
// Status mapping keeps the gateway from retrying what will never succeed:
// malformed payloads and unknown payers come back 4xx; only genuine
// processing failures return 5xx. Non-successful charge statuses are
// acknowledged with 200 and ignored. Duplicate references are absorbed by the
// confirmer's ledger, so replays are also a 200.
func PaymentWebhook(confirmer *services.PaymentConfirmer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload payment.WebhookPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
			return
		}

		if !strings.EqualFold(payload.Status, "successful") && !strings.EqualFold(payload.Status, "success") {
			log.Info().Str("reference", payload.Reference).Str("status", payload.Status).
				Msg("ignoring non-successful payment event")
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
			return
		}

		err := confirmer.Confirm(c.Request.Context(), payload)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		case errors.Is(err, services.ErrPayloadInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment payload"})
		case errors.Is(err, services.ErrPayerUnknown):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "payer not found"})
		default:
			log.Error().Err(err).Str("reference", payload.Reference).Msg("payment confirmation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "confirmation failed"})
		}
	}
}
