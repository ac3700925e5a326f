package admin

import (
	"strconv"
	"strings"

	"github.com/spedigo-next/internal/constants"
	"github.com/spedigo-next/internal/http/response"
	"github.com/spedigo-next/internal/logger"
	"github.com/spedigo-next/internal/queue"
	"github.com/spedigo-next/internal/repository"
	"github.com/spedigo-next/internal/shipping"

	"github.com/gin-gonic/gin"
)

// ListShipments returns a filtered page of shipment rows.
func (h *Handler) ListShipments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = repository.NormalizePage(page, pageSize)

	shipments, total, err := h.ShipmentRepo.List(repository.ShipmentListFilter{
		Status:   c.Query("status"),
		Country:  c.Query("country"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		logger.Errorw("admin_list_shipments_failed", "error", err)
		response.Error(c, response.CodeInternal, "shipment list failed")
		return
	}

	response.SuccessWithPage(c, shipments, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetShipment returns one shipment row by Shopify order id.
func (h *Handler) GetShipment(c *gin.Context) {
	orderID, err := strconv.ParseInt(strings.TrimSpace(c.Param("order_id")), 10, 64)
	if err != nil || orderID <= 0 {
		response.BadRequest(c, "invalid order id")
		return
	}

	shipment, err := h.ShipmentRepo.GetByOrderID(orderID)
	if err != nil {
		logger.Errorw("admin_get_shipment_failed", "order_id", orderID, "error", err)
		response.Error(c, response.CodeInternal, "shipment lookup failed")
		return
	}
	if shipment == nil {
		response.NotFound(c, "shipment not found")
		return
	}

	response.Success(c, shipment)
}

// ResendAlert re-sends the operator alert for a blocked shipment, for when
// the original email was missed or lost.
func (h *Handler) ResendAlert(c *gin.Context) {
	orderID, err := strconv.ParseInt(strings.TrimSpace(c.Param("order_id")), 10, 64)
	if err != nil || orderID <= 0 {
		response.BadRequest(c, "invalid order id")
		return
	}

	shipment, err := h.ShipmentRepo.GetByOrderID(orderID)
	if err != nil {
		logger.Errorw("admin_resend_alert_lookup_failed", "order_id", orderID, "error", err)
		response.Error(c, response.CodeInternal, "shipment lookup failed")
		return
	}
	if shipment == nil {
		response.NotFound(c, "shipment not found")
		return
	}
	if shipment.Status != constants.ShipmentStatusBlocked {
		response.BadRequest(c, "shipment is not blocked")
		return
	}

	payload := queue.OperatorAlertPayload{
		OrderID:      shipment.OrderID,
		OrderName:    shipment.OrderName,
		CountryCode:  shipment.DestinationCountry,
		CountryName:  shipping.CountryName(shipment.DestinationCountry),
		SuggestedTag: shipment.SuggestedTag,
		Reason:       shipment.FailReason,
	}
	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueOperatorAlert(payload); err != nil {
			logger.Errorw("admin_resend_alert_enqueue_failed", "order_id", orderID, "error", err)
			response.Error(c, response.CodeInternal, "alert enqueue failed")
			return
		}
	} else if err := h.EmailService.SendOperatorAlert(payload); err != nil {
		logger.Errorw("admin_resend_alert_send_failed", "order_id", orderID, "error", err)
		response.Error(c, response.CodeInternal, "alert send failed")
		return
	}

	response.Success(c, gin.H{"order_id": orderID, "resent": true})
}
