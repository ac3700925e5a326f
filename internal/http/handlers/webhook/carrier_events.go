package webhook

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/spedigo-next/internal/carrier/spedirepro"
	"github.com/spedigo-next/internal/constants"
	"github.com/spedigo-next/internal/logger"

	"github.com/gin-gonic/gin"
)

const topicCarrierEvents = "carrier/events"

// HandleCarrierEvents processes the carrier's tracking callback. The carrier
// authenticates with a shared query token instead of a signature.
func (h *Handler) HandleCarrierEvents(c *gin.Context) {
	expected := strings.TrimSpace(h.Config.Carrier.WebhookToken)
	supplied := strings.TrimSpace(c.Query("token"))
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) != 1 {
		logger.Warnw("carrier_webhook_token_invalid", "remote", c.ClientIP())
		c.String(http.StatusUnauthorized, "invalid token")
		return
	}

	var event spedirepro.TrackingEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		logger.Warnw("carrier_webhook_body_invalid", "error", err)
		c.String(http.StatusBadRequest, "invalid body")
		return
	}

	result := h.ShipmentService.HandleCarrierEvent(c.Request.Context(), event)

	h.recordEvent("", constants.WebhookSourceCarrier, topicCarrierEvents, 0, event.MerchantReference, result)

	logger.Infow("carrier_webhook_handled",
		"order_name", event.MerchantReference,
		"event", event.Event,
		"outcome", result.Outcome,
	)
	c.JSON(http.StatusOK, result)
}
