package models

import (
	"time"
)

// WebhookEvent is the processing log of one inbound delivery. At-least-once
// transports redeliver; the log keeps the audit trail of what each delivery
// decided.
type WebhookEvent struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	WebhookID string    `gorm:"index" json:"webhook_id"`          // transport delivery id, may be empty
	Source    string    `gorm:"index;not null" json:"source"`     // shopify/carrier
	Topic     string    `gorm:"index" json:"topic"`               //
	OrderID   int64     `gorm:"index" json:"order_id"`            //
	OrderName string    `json:"order_name,omitempty"`             //
	Outcome   string    `gorm:"index" json:"outcome"`             // submitted/skipped/duplicate/blocked/failed/customs_generated
	Reason    string    `gorm:"type:text" json:"reason,omitempty"`
	Detail    JSON      `gorm:"type:json" json:"detail,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
