package queue

import (
	"encoding/json"

	"github.com/spedigo-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOperatorAlert delivers a policy-violation or failure alert email.
	TaskOperatorAlert = constants.TaskOperatorAlert
	// TaskRecipientNotify delivers the shipped/delivered notification email.
	TaskRecipientNotify = constants.TaskRecipientNotify
)

// OperatorAlertPayload is the alert email task payload. It mirrors what the
// operator needs to act without opening the order first.
type OperatorAlertPayload struct {
	OrderID      int64  `json:"order_id"`
	OrderName    string `json:"order_name"`
	CountryCode  string `json:"country_code"`
	CountryName  string `json:"country_name"`
	Tag          string `json:"tag,omitempty"`
	SuggestedTag string `json:"suggested_tag,omitempty"`
	Reason       string `json:"reason"`
	Detail       string `json:"detail,omitempty"`
}

// RecipientNotifyPayload is the recipient notification task payload.
type RecipientNotifyPayload struct {
	OrderID     int64  `json:"order_id"`
	OrderName   string `json:"order_name"`
	Email       string `json:"email"`
	Tracking    string `json:"tracking"`
	TrackingURL string `json:"tracking_url,omitempty"`
	Event       string `json:"event"` // carrier event type
}

// NewOperatorAlertTask creates the alert task.
func NewOperatorAlertTask(payload OperatorAlertPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOperatorAlert, body), nil
}

// NewRecipientNotifyTask creates the notification task.
func NewRecipientNotifyTask(payload RecipientNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecipientNotify, body), nil
}
