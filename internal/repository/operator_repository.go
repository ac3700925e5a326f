package repository

import (
	"errors"
	"time"

	"github.com/spedigo-next/internal/models"

	"gorm.io/gorm"
)

// OperatorRepository is the ops account data access interface.
type OperatorRepository interface {
	GetByUsername(username string) (*models.Operator, error)
	GetByID(id uint) (*models.Operator, error)
	Count() (int64, error)
	Create(operator *models.Operator) error
	Update(operator *models.Operator) error
	TouchLogin(id uint, at time.Time) error
}

// GormOperatorRepository GORM implementation.
type GormOperatorRepository struct {
	db *gorm.DB
}

// NewOperatorRepository creates the operator repository.
func NewOperatorRepository(db *gorm.DB) *GormOperatorRepository {
	return &GormOperatorRepository{db: db}
}

// GetByUsername returns the operator for a username, nil when absent.
func (r *GormOperatorRepository) GetByUsername(username string) (*models.Operator, error) {
	var operator models.Operator
	if err := r.db.Where("username = ?", username).First(&operator).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &operator, nil
}

// GetByID returns the operator for an id, nil when absent.
func (r *GormOperatorRepository) GetByID(id uint) (*models.Operator, error) {
	var operator models.Operator
	if err := r.db.First(&operator, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &operator, nil
}

// Count counts operators.
func (r *GormOperatorRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Operator{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create creates an operator.
func (r *GormOperatorRepository) Create(operator *models.Operator) error {
	return r.db.Create(operator).Error
}

// Update saves an operator.
func (r *GormOperatorRepository) Update(operator *models.Operator) error {
	return r.db.Save(operator).Error
}

// TouchLogin records a successful login.
func (r *GormOperatorRepository) TouchLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Operator{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}
