package models

import (
	"time"

	"gorm.io/gorm"
)

// Operator is an ops API account.
type Operator struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	Username           string         `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash       string         `gorm:"not null" json:"-"`
	TokenVersion       int            `gorm:"default:0" json:"-"`
	TokenInvalidBefore *time.Time     `json:"-"`
	LastLoginAt        *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Operator) TableName() string {
	return "operators"
}
