package webhook

import (
	"github.com/spedigo-next/internal/logger"
	"github.com/spedigo-next/internal/models"
	"github.com/spedigo-next/internal/provider"
	"github.com/spedigo-next/internal/service"
)

// Handler serves the inbound webhook endpoints: Shopify order updates and
// carrier tracking callbacks.
type Handler struct {
	*provider.Container
}

// New creates the webhook handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

// recordEvent appends one row to the webhook audit log. Best-effort: the
// webhook response does not depend on it.
func (h *Handler) recordEvent(webhookID, source, topic string, orderID int64, orderName string, result *service.ProcessResult) {
	if h.WebhookEventRepo == nil || result == nil {
		return
	}
	event := &models.WebhookEvent{
		WebhookID: webhookID,
		Source:    source,
		Topic:     topic,
		OrderID:   orderID,
		OrderName: orderName,
		Outcome:   result.Outcome,
		Reason:    result.Reason,
	}
	if err := h.WebhookEventRepo.Create(event); err != nil {
		logger.Warnw("webhook_event_log_failed",
			"source", source,
			"order_id", orderID,
			"error", err,
		)
	}
}
