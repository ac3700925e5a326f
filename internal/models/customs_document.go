package models

import (
	"time"

	"gorm.io/gorm"
)

// CustomsDocument records the generated invoice/declaration pair for one
// order. URLs point at long-term storage; either may be empty when its
// upload failed (partial success is recorded, not retried).
type CustomsDocument struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	OrderID        int64          `gorm:"uniqueIndex;not null" json:"order_id"` // Shopify order id
	OrderName      string         `gorm:"index;not null" json:"order_name"`     //
	Status         string         `gorm:"index;not null" json:"status"`         // generated/partial_upload/failed
	Tracking       string         `gorm:"index" json:"tracking,omitempty"`      //
	Reference      string         `json:"reference,omitempty"`                  //
	InvoiceURL     string         `json:"invoice_url,omitempty"`                //
	DeclarationURL string         `json:"declaration_url,omitempty"`            //
	FailReason     string         `gorm:"type:text" json:"fail_reason,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (CustomsDocument) TableName() string {
	return "customs_documents"
}
