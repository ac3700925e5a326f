package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/spedigo-next/internal/cache"
	"github.com/spedigo-next/internal/constants"
	"github.com/spedigo-next/internal/logger"
	"github.com/spedigo-next/internal/service"
	"github.com/spedigo-next/internal/shipping"

	"github.com/gin-gonic/gin"
)

const topicOrdersUpdate = "orders/updated"

// HandleOrdersUpdate processes one Shopify order-update delivery. Every
// handled outcome answers 200: Shopify retries non-2xx responses and the
// pipeline's failures are terminal by design, redelivery is the only retry.
func (h *Handler) HandleOrdersUpdate(c *gin.Context) {
	if h.WebhookVerifier == nil || !h.WebhookVerifier.VerifyWebhookRequest(c.Request) {
		logger.Warnw("shopify_webhook_signature_invalid", "remote", c.ClientIP())
		c.String(http.StatusUnauthorized, "invalid signature")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "unreadable body")
		return
	}

	var order shipping.Order
	if err := json.Unmarshal(body, &order); err != nil {
		logger.Warnw("shopify_webhook_body_invalid", "error", err)
		c.String(http.StatusBadRequest, "invalid body")
		return
	}

	webhookID := c.GetHeader("X-Shopify-Webhook-Id")
	if !cache.ClaimWebhook(c.Request.Context(), constants.WebhookSourceShopify, webhookID) {
		logger.Infow("shopify_webhook_duplicate_delivery",
			"webhook_id", webhookID,
			"order_id", order.ID,
		)
		c.JSON(http.StatusOK, &service.ProcessResult{
			Outcome: constants.OutcomeDuplicate,
			Reason:  "delivery-already-claimed",
		})
		return
	}

	intent := shipping.ParseIntent(order.Tags, h.Senders.Has)

	var result *service.ProcessResult
	switch intent.Mode {
	case shipping.ModeCreateLabel:
		result = h.ShipmentService.CreateLabel(c.Request.Context(), &order, intent)
	case shipping.ModeCustomsOnly:
		result = h.CustomsService.GenerateDocuments(c.Request.Context(), &order, intent)
	default:
		result = &service.ProcessResult{Outcome: constants.OutcomeSkipped, Reason: intent.Reason}
	}

	h.recordEvent(webhookID, constants.WebhookSourceShopify, topicOrdersUpdate, order.ID, order.Name, result)

	logger.Infow("shopify_webhook_handled",
		"order_id", order.ID,
		"order_name", order.Name,
		"mode", intent.Mode,
		"outcome", result.Outcome,
		"reason", result.Reason,
	)
	c.JSON(http.StatusOK, result)
}
