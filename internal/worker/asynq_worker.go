package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/spedigo-next/internal/logger"
	"github.com/spedigo-next/internal/provider"
	"github.com/spedigo-next/internal/queue"
	"github.com/spedigo-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles the email tasks the webhook pipeline enqueues.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register binds task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOperatorAlert, c.handleOperatorAlert)
	mux.HandleFunc(queue.TaskRecipientNotify, c.handleRecipientNotify)
}

func (c *Consumer) handleOperatorAlert(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_operator_alert_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OperatorAlertPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_operator_alert_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderName == "" {
		logger.Debugw("worker_operator_alert_skip_invalid_payload")
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_operator_alert_skip_email_service_nil", "order_name", payload.OrderName)
		return nil
	}
	if err := c.EmailService.SendOperatorAlert(payload); err != nil {
		// A disabled or misconfigured mailer never recovers by retrying.
		if errors.Is(err, service.ErrEmailServiceDisabled) || errors.Is(err, service.ErrEmailServiceNotConfigured) {
			logger.Warnw("worker_operator_alert_skip_email_unavailable",
				"order_name", payload.OrderName,
				"error", err,
			)
			return nil
		}
		logger.Warnw("worker_operator_alert_send_failed",
			"order_name", payload.OrderName,
			"reason", payload.Reason,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleRecipientNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_recipient_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.RecipientNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_recipient_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.Email == "" {
		logger.Debugw("worker_recipient_notify_skip_empty_receiver", "order_name", payload.OrderName)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_recipient_notify_skip_email_service_nil", "order_name", payload.OrderName)
		return nil
	}
	if err := c.EmailService.SendRecipientNotify(payload); err != nil {
		if errors.Is(err, service.ErrEmailServiceDisabled) ||
			errors.Is(err, service.ErrEmailServiceNotConfigured) ||
			errors.Is(err, service.ErrInvalidEmail) {
			logger.Warnw("worker_recipient_notify_skip_unsendable",
				"order_name", payload.OrderName,
				"error", err,
			)
			return nil
		}
		logger.Warnw("worker_recipient_notify_send_failed",
			"order_name", payload.OrderName,
			"receiver_email", payload.Email,
			"error", err,
		)
		return err
	}
	return nil
}
