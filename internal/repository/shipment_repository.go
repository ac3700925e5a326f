package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/spedigo-next/internal/constants"
	"github.com/spedigo-next/internal/models"

	"gorm.io/gorm"
)

// ShipmentListFilter filters the admin shipment list.
type ShipmentListFilter struct {
	Status   string
	Country  string
	Search   string // order name or tracking
	Page     int
	PageSize int
}

// ShipmentRepository is the shipment state machine's data access interface.
type ShipmentRepository interface {
	GetByOrderID(orderID int64) (*models.Shipment, error)
	GetByOrderName(orderName string) (*models.Shipment, error)
	EnsurePending(orderID int64, orderName string) (*models.Shipment, error)
	ClaimForSubmission(orderID int64) (bool, error)
	ReleaseToPending(orderID int64, failReason string) error
	Update(orderID int64, updates map[string]interface{}) error
	List(filter ShipmentListFilter) ([]models.Shipment, int64, error)
	WithTx(tx *gorm.DB) *GormShipmentRepository
}

// GormShipmentRepository GORM implementation.
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository creates the shipment repository.
func NewShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormShipmentRepository) WithTx(tx *gorm.DB) *GormShipmentRepository {
	if tx == nil {
		return r
	}
	return &GormShipmentRepository{db: tx}
}

// GetByOrderID returns the shipment row for an order, nil when absent.
func (r *GormShipmentRepository) GetByOrderID(orderID int64) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.Where("order_id = ?", orderID).First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// GetByOrderName returns the shipment row for a merchant reference, nil when
// absent. Carrier callbacks are keyed this way.
func (r *GormShipmentRepository) GetByOrderName(orderName string) (*models.Shipment, error) {
	var shipment models.Shipment
	if err := r.db.Where("order_name = ?", orderName).Order("id DESC").First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// EnsurePending creates the shipment row in pending status if no row exists
// yet, and returns the current row either way.
func (r *GormShipmentRepository) EnsurePending(orderID int64, orderName string) (*models.Shipment, error) {
	shipment := models.Shipment{
		OrderID:   orderID,
		OrderName: orderName,
		Status:    constants.ShipmentStatusPending,
	}
	err := r.db.Where("order_id = ?", orderID).FirstOrCreate(&shipment).Error
	if err != nil {
		// A concurrent invocation may have inserted between the lookup and
		// the insert; re-read before giving up.
		if existing, getErr := r.GetByOrderID(orderID); getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// ClaimForSubmission moves pending to submitting with a conditional update.
// Exactly one of several concurrent invocations gets rows-affected 1; the
// rest see an already-claimed row and stop.
func (r *GormShipmentRepository) ClaimForSubmission(orderID int64) (bool, error) {
	result := r.db.Model(&models.Shipment{}).
		Where("order_id = ? AND status = ?", orderID, constants.ShipmentStatusPending).
		Updates(map[string]interface{}{
			"status":     constants.ShipmentStatusSubmitting,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ReleaseToPending returns a failed submission to pending so a redelivered
// webhook can try again. The service itself never retries.
func (r *GormShipmentRepository) ReleaseToPending(orderID int64, failReason string) error {
	return r.db.Model(&models.Shipment{}).
		Where("order_id = ? AND status = ?", orderID, constants.ShipmentStatusSubmitting).
		Updates(map[string]interface{}{
			"status":      constants.ShipmentStatusPending,
			"fail_reason": failReason,
		}).Error
}

// Update applies field updates to a shipment row by order id.
func (r *GormShipmentRepository) Update(orderID int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Shipment{}).Where("order_id = ?", orderID).Updates(updates).Error
}

// List returns a filtered page of shipments, newest first.
func (r *GormShipmentRepository) List(filter ShipmentListFilter) ([]models.Shipment, int64, error) {
	query := r.db.Model(&models.Shipment{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if country := strings.TrimSpace(filter.Country); country != "" {
		query = query.Where("destination_country = ?", strings.ToUpper(country))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("order_name LIKE ? OR tracking LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shipments []models.Shipment
	err := applyPagination(query.Preload("CustomsDocument").Order("id DESC"), filter.Page, filter.PageSize).
		Find(&shipments).Error
	if err != nil {
		return nil, 0, err
	}
	return shipments, total, nil
}
