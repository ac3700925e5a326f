package models

import (
	"time"

	"gorm.io/gorm"
)

// Shipment mirrors the processing state of one Shopify order. The order's
// tags and metafields remain the shared markers; this row is the structured
// state machine behind them.
type Shipment struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	OrderID            int64          `gorm:"uniqueIndex;not null" json:"order_id"`          // Shopify order id
	OrderName          string         `gorm:"index;not null" json:"order_name"`              // merchant reference, e.g. "#35622"
	Status             string         `gorm:"index;not null" json:"status"`                  // pending/submitting/label_created/blocked/delivered
	SenderCode         string         `gorm:"type:varchar(10)" json:"sender_code"`           // sender profile code
	AccountType        string         `gorm:"type:varchar(5)" json:"account_type"`           // DDP/DDU
	DestinationCountry string         `gorm:"type:varchar(5)" json:"destination_country"`    // ISO country code
	SkipAutoCustoms    bool           `json:"skip_auto_customs"`                             // NODOG intent
	Tracking           string         `gorm:"index" json:"tracking,omitempty"`               // carrier tracking number
	TrackingURL        string         `json:"tracking_url,omitempty"`                        //
	LabelURL           string         `json:"label_url,omitempty"`                           //
	Reference          string         `gorm:"index" json:"reference,omitempty"`              // carrier shipment reference
	RecipientEmail     string         `json:"recipient_email,omitempty"`                     // for delivery notification
	NotifyRecipient    bool           `json:"notify_recipient"`                              //
	FailReason         string         `gorm:"type:text" json:"fail_reason,omitempty"`        // last terminal failure detail
	SuggestedTag       string         `gorm:"type:varchar(40)" json:"suggested_tag,omitempty"` // set on account/country block
	SubmittedAt        *time.Time     `gorm:"index" json:"submitted_at,omitempty"`           //
	DeliveredAt        *time.Time     `gorm:"index" json:"delivered_at,omitempty"`           //
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                       //
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                       //
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                //

	CustomsDocument *CustomsDocument `gorm:"foreignKey:OrderID;references:OrderID" json:"customs_document,omitempty"`
}

// TableName sets the table name.
func (Shipment) TableName() string {
	return "shipments"
}
