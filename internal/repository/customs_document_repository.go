package repository

import (
	"errors"
	"strings"

	"github.com/spedigo-next/internal/models"

	"gorm.io/gorm"
)

// CustomsDocumentListFilter filters the admin document list.
type CustomsDocumentListFilter struct {
	Status   string
	Search   string // order name or tracking
	Page     int
	PageSize int
}

// CustomsDocumentRepository is the customs document data access interface.
type CustomsDocumentRepository interface {
	GetByOrderID(orderID int64) (*models.CustomsDocument, error)
	Upsert(doc *models.CustomsDocument) error
	List(filter CustomsDocumentListFilter) ([]models.CustomsDocument, int64, error)
	WithTx(tx *gorm.DB) *GormCustomsDocumentRepository
}

// GormCustomsDocumentRepository GORM implementation.
type GormCustomsDocumentRepository struct {
	db *gorm.DB
}

// NewCustomsDocumentRepository creates the customs document repository.
func NewCustomsDocumentRepository(db *gorm.DB) *GormCustomsDocumentRepository {
	return &GormCustomsDocumentRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormCustomsDocumentRepository) WithTx(tx *gorm.DB) *GormCustomsDocumentRepository {
	if tx == nil {
		return r
	}
	return &GormCustomsDocumentRepository{db: tx}
}

// GetByOrderID returns the document row for an order, nil when absent.
func (r *GormCustomsDocumentRepository) GetByOrderID(orderID int64) (*models.CustomsDocument, error) {
	var doc models.CustomsDocument
	if err := r.db.Where("order_id = ?", orderID).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// Upsert writes the document row, replacing the previous attempt for the
// same order.
func (r *GormCustomsDocumentRepository) Upsert(doc *models.CustomsDocument) error {
	existing, err := r.GetByOrderID(doc.OrderID)
	if err != nil {
		return err
	}
	if existing != nil {
		doc.ID = existing.ID
		doc.CreatedAt = existing.CreatedAt
		return r.db.Save(doc).Error
	}
	return r.db.Create(doc).Error
}

// List returns a filtered page of customs documents, newest first.
func (r *GormCustomsDocumentRepository) List(filter CustomsDocumentListFilter) ([]models.CustomsDocument, int64, error) {
	query := r.db.Model(&models.CustomsDocument{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("order_name LIKE ? OR tracking LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []models.CustomsDocument
	err := applyPagination(query.Order("id DESC"), filter.Page, filter.PageSize).Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}
