package admin

import (
	"strconv"

	"github.com/spedigo-next/internal/http/response"
	"github.com/spedigo-next/internal/logger"
	"github.com/spedigo-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListCustomsDocuments returns a filtered page of customs document rows.
func (h *Handler) ListCustomsDocuments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = repository.NormalizePage(page, pageSize)

	docs, total, err := h.CustomsDocumentRepo.List(repository.CustomsDocumentListFilter{
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		logger.Errorw("admin_list_customs_documents_failed", "error", err)
		response.Error(c, response.CodeInternal, "customs document list failed")
		return
	}

	response.SuccessWithPage(c, docs, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// ListWebhookEvents returns a filtered page of the webhook audit log.
func (h *Handler) ListWebhookEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = repository.NormalizePage(page, pageSize)
	orderID, _ := strconv.ParseInt(c.Query("order_id"), 10, 64)

	events, total, err := h.WebhookEventRepo.List(repository.WebhookEventListFilter{
		Source:   c.Query("source"),
		Outcome:  c.Query("outcome"),
		OrderID:  orderID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		logger.Errorw("admin_list_webhook_events_failed", "error", err)
		response.Error(c, response.CodeInternal, "webhook event list failed")
		return
	}

	response.SuccessWithPage(c, events, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}
