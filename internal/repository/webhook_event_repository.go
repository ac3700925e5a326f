package repository

import (
	"strings"

	"github.com/spedigo-next/internal/models"

	"gorm.io/gorm"
)

// WebhookEventListFilter filters the webhook audit log.
type WebhookEventListFilter struct {
	Source   string
	Outcome  string
	OrderID  int64
	Page     int
	PageSize int
}

// WebhookEventRepository is the webhook audit log data access interface.
type WebhookEventRepository interface {
	Create(event *models.WebhookEvent) error
	List(filter WebhookEventListFilter) ([]models.WebhookEvent, int64, error)
	WithTx(tx *gorm.DB) *GormWebhookEventRepository
}

// GormWebhookEventRepository GORM implementation.
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository creates the webhook event repository.
func NewWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormWebhookEventRepository) WithTx(tx *gorm.DB) *GormWebhookEventRepository {
	if tx == nil {
		return r
	}
	return &GormWebhookEventRepository{db: tx}
}

// Create appends one audit row.
func (r *GormWebhookEventRepository) Create(event *models.WebhookEvent) error {
	return r.db.Create(event).Error
}

// List returns a filtered page of audit rows, newest first.
func (r *GormWebhookEventRepository) List(filter WebhookEventListFilter) ([]models.WebhookEvent, int64, error) {
	query := r.db.Model(&models.WebhookEvent{})
	if source := strings.TrimSpace(filter.Source); source != "" {
		query = query.Where("source = ?", source)
	}
	if outcome := strings.TrimSpace(filter.Outcome); outcome != "" {
		query = query.Where("outcome = ?", outcome)
	}
	if filter.OrderID > 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.WebhookEvent
	err := applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize).Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
