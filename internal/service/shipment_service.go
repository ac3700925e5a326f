package service

import (
	"context"
	"fmt"
	"time"

	"github.com/spedigo-next/internal/carrier/spedirepro"
	"github.com/spedigo-next/internal/config"
	"github.com/spedigo-next/internal/constants"
	"github.com/spedigo-next/internal/logger"
	"github.com/spedigo-next/internal/queue"
	"github.com/spedigo-next/internal/repository"
	"github.com/spedigo-next/internal/shipping"
	"github.com/spedigo-next/internal/shopify"
)

// CarrierAPI is the carrier surface the orchestrators use.
type CarrierAPI interface {
	CreateShipment(ctx context.Context, accountType string, req *shipping.LabelRequest) (*spedirepro.CreateResult, error)
	UploadDocument(ctx context.Context, accountType string, doc spedirepro.DocumentUpload) error
}

// ProcessResult is the terminal outcome of one pipeline run. Nothing is
// thrown past the orchestrator boundary: every path maps here.
type ProcessResult struct {
	Outcome   string `json:"outcome"`
	Reason    string `json:"reason,omitempty"`
	Tracking  string `json:"tracking,omitempty"`
	Reference string `json:"reference,omitempty"`
	LabelURL  string `json:"label_url,omitempty"`
}

// ShipmentService sequences label creation: intent validation, idempotency
// guards, policy check, carrier submission, order-state persistence.
type ShipmentService struct {
	cfg         *config.Config
	senders     *shipping.SenderRegistry
	orderState  shopify.API
	carrier     CarrierAPI
	shipments   repository.ShipmentRepository
	queueClient *queue.Client
	email       *EmailService
}

// NewShipmentService creates the shipment orchestrator.
func NewShipmentService(
	cfg *config.Config,
	senders *shipping.SenderRegistry,
	orderState shopify.API,
	carrier CarrierAPI,
	shipments repository.ShipmentRepository,
	queueClient *queue.Client,
	email *EmailService,
) *ShipmentService {
	return &ShipmentService{
		cfg:         cfg,
		senders:     senders,
		orderState:  orderState,
		carrier:     carrier,
		shipments:   shipments,
		queueClient: queueClient,
		email:       email,
	}
}

// CreateLabel runs the label pipeline for a parsed order-update event whose
// intent resolved to label creation. Failures are terminal for this
// invocation: webhook redelivery is the only retry mechanism.
func (s *ShipmentService) CreateLabel(ctx context.Context, order *shipping.Order, intent shipping.Intent) *ProcessResult {
	// Completion marker check stays ahead of every network call.
	if shipping.HasLabelOKTag(order.Tags) {
		return &ProcessResult{Outcome: constants.OutcomeDuplicate, Reason: "label-ok"}
	}

	if !order.HasCompleteAddress() {
		logger.Infow("shipment_skipped_incomplete_address",
			"order_id", order.ID,
			"order_name", order.Name,
		)
		return &ProcessResult{Outcome: constants.OutcomeSkipped, Reason: "missing-address-fields"}
	}

	profile, ok := s.senders.Resolve(intent.SenderCode)
	if !ok {
		return &ProcessResult{Outcome: constants.OutcomeFailed, Reason: "unknown-sender"}
	}

	row, err := s.shipments.EnsurePending(order.ID, order.Name)
	if err != nil {
		logger.Errorw("shipment_row_init_failed", "order_id", order.ID, "error", err)
		return &ProcessResult{Outcome: constants.OutcomeFailed, Reason: "storage-error"}
	}
	switch row.Status {
	case constants.ShipmentStatusLabelCreated, constants.ShipmentStatusDelivered:
		return &ProcessResult{Outcome: constants.OutcomeDuplicate, Reason: "label-already-exists", Tracking: row.Tracking}
	case constants.ShipmentStatusSubmitting:
		return &ProcessResult{Outcome: constants.OutcomeDuplicate, Reason: "submission-in-progress"}
	case constants.ShipmentStatusBlocked:
		// A corrected tag set gets a fresh evaluation.
		if err := s.shipments.Update(order.ID, map[string]interface{}{
			"status": constants.ShipmentStatusPending,
		}); err != nil {
			logger.Errorw("shipment_unblock_failed", "order_id", order.ID, "error", err)
			return &ProcessResult{Outcome: constants.OutcomeFailed, Reason: "storage-error"}
		}
	}

	// Authoritative duplicate check against the order metafields. Fails
	// open: a query error is logged and the pipeline continues, accepting
	// duplicate risk over availability loss.
	if fields, err := s.orderState.OrderMetafields(ctx, order.ID); err != nil {
		logger.Warnw("shipment_metafield_check_failed",
			"order_id", order.ID,
			"error", err,
		)
	} else {
		tracking, hasTracking := shopify.FindMetafield(fields, constants.MetafieldNamespaceCarrier, constants.MetafieldKeyTracking)
		reference, hasReference := shopify.FindMetafield(fields, constants.MetafieldNamespaceCarrier, constants.MetafieldKeyReference)
		if (hasTracking && tracking != "") || (hasReference && reference != "") {
			if err := s.shipments.Update(order.ID, map[string]interface{}{
				"status":    constants.ShipmentStatusLabelCreated,
				"tracking":  tracking,
				"reference": reference,
			}); err != nil {
				logger.Warnw("shipment_row_sync_failed", "order_id", order.ID, "error", err)
			}
			return &ProcessResult{Outcome: constants.OutcomeDuplicate, Reason: "label-already-exists", Tracking: tracking}
		}
	}

	cls := shipping.Classify(order.CountryCode())
	if violatesAccountPolicy(intent.AccountType, cls) {
		return s.blockForPolicy(order, intent)
	}

	claimed, err := s.shipments.ClaimForSubmission(order.ID)
	if err != nil {
		logger.Errorw("shipment_claim_failed", "order_id", order.ID, "error", err)
		return &ProcessResult{Outcome: constants.OutcomeFailed, Reason: "storage-error"}
	}
	if !claimed {
		return &ProcessResult{Outcome: constants.OutcomeDuplicate, Reason: "submission-in-progress"}
	}

	req := shipping.BuildLabelRequest(order, profile, cls, intent, s.cfg.Shipping)

	result, err := s.carrier.CreateShipment(ctx, intent.AccountType, req)
	if err != nil {
		detail := err.Error()
		logger.Errorw("shipment_submit_failed",
			"order_id", order.ID,
			"order_name", order.Name,
			"account_type", intent.AccountType,
			"error", err,
		)
		if relErr := s.shipments.ReleaseToPending(order.ID, detail); relErr != nil {
			logger.Errorw("shipment_release_failed", "order_id", order.ID, "error", relErr)
		}
		return &ProcessResult{Outcome: constants.OutcomeFailed, Reason: "carrier-error: " + detail}
	}

	s.persistLabel(ctx, order, intent, result)

	logger.Infow("shipment_label_created",
		"order_id", order.ID,
		"order_name", order.Name,
		"tracking", result.Tracking,
		"account_type", intent.AccountType,
		"sender", intent.SenderCode,
	)
	return &ProcessResult{
		Outcome:   constants.OutcomeSubmitted,
		Tracking:  result.Tracking,
		Reference: result.Reference,
		LabelURL:  result.LabelURL,
	}
}

// violatesAccountPolicy: duty-prepaid submissions are only allowed to EU and
// USA destinations; duty-unpaid only everywhere else.
func violatesAccountPolicy(accountType string, cls shipping.Classification) bool {
	if accountType == constants.AccountTypeDDP {
		return !cls.AutoEligible
	}
	return cls.AutoEligible
}

// blockForPolicy marks the shipment blocked, suggests the correct tag and
// alerts an operator exactly once. No carrier call is made.
func (s *ShipmentService) blockForPolicy(order *shipping.Order, intent shipping.Intent) *ProcessResult {
	suggested := shipping.SuggestedTag(intent.SenderCode, intent.AccountType, intent.SkipAutoCustoms)
	country := order.CountryCode()

	if err := s.shipments.Update(order.ID, map[string]interface{}{
		"status":              constants.ShipmentStatusBlocked,
		"sender_code":         intent.SenderCode,
		"account_type":        intent.AccountType,
		"destination_country": country,
		"suggested_tag":       suggested,
		"fail_reason":         constants.AlertReasonAccountCountryMismatch,
	}); err != nil {
		logger.Errorw("shipment_block_persist_failed", "order_id", order.ID, "error", err)
	}

	s.alertOperator(queue.OperatorAlertPayload{
		OrderID:      order.ID,
		OrderName:    order.Name,
		CountryCode:  country,
		CountryName:  shipping.CountryName(country),
		Tag:          shipping.CreateTag(intent),
		SuggestedTag: suggested,
		Reason:       constants.AlertReasonAccountCountryMismatch,
	})

	logger.Warnw("shipment_blocked_account_country_mismatch",
		"order_id", order.ID,
		"order_name", order.Name,
		"country", country,
		"account_type", intent.AccountType,
		"suggested_tag", suggested,
	)
	return &ProcessResult{Outcome: constants.OutcomeBlocked, Reason: constants.AlertReasonAccountCountryMismatch}
}

// persistLabel writes the label record back onto the order and the local
// row. The label already exists at the carrier, so persistence failures are
// logged and swallowed: surfacing them as retryable would create a second
// label.
func (s *ShipmentService) persistLabel(ctx context.Context, order *shipping.Order, intent shipping.Intent, result *spedirepro.CreateResult) {
	now := time.Now()
	notify := order.Email != ""
	if err := s.shipments.Update(order.ID, map[string]interface{}{
		"status":              constants.ShipmentStatusLabelCreated,
		"sender_code":         intent.SenderCode,
		"account_type":        intent.AccountType,
		"destination_country": order.CountryCode(),
		"skip_auto_customs":   intent.SkipAutoCustoms,
		"tracking":            result.Tracking,
		"tracking_url":        result.TrackingURL,
		"label_url":           result.LabelURL,
		"reference":           result.Reference,
		"recipient_email":     order.Email,
		"notify_recipient":    notify,
		"fail_reason":         "",
		"submitted_at":        &now,
	}); err != nil {
		logger.Errorw("shipment_row_persist_failed", "order_id", order.ID, "error", err)
	}

	if err := s.orderState.ReplaceOrderTags(ctx, order.ID, shipping.SwapLabelOKTag(order.Tags, intent)); err != nil {
		logger.Warnw("shipment_tag_swap_failed", "order_id", order.ID, "error", err)
	}

	fields := []shopify.Metafield{
		{Namespace: constants.MetafieldNamespaceCarrier, Key: constants.MetafieldKeyTracking, Value: result.Tracking},
		{Namespace: constants.MetafieldNamespaceCarrier, Key: constants.MetafieldKeyReference, Value: result.Reference},
	}
	if result.LabelURL != "" {
		fields = append(fields, shopify.Metafield{Namespace: constants.MetafieldNamespaceCarrier, Key: constants.MetafieldKeyLabelURL, Value: result.LabelURL})
	}
	if intent.SkipAutoCustoms {
		fields = append(fields, shopify.Metafield{Namespace: constants.MetafieldNamespaceCarrier, Key: constants.MetafieldKeySkipCustoms, Value: "true"})
	}
	if notify {
		fields = append(fields, shopify.Metafield{Namespace: constants.MetafieldNamespaceCarrier, Key: constants.MetafieldKeyNotify, Value: "true"})
	}
	for _, field := range fields {
		if err := s.orderState.WriteOrderMetafield(ctx, order.ID, field); err != nil {
			logger.Warnw("shipment_metafield_write_failed",
				"order_id", order.ID,
				"namespace", field.Namespace,
				"key", field.Key,
				"error", err,
			)
		}
	}
}

// HandleCarrierEvent applies a tracking callback to the local shipment row.
// Delivery events additionally trigger the recipient notification when the
// order opted in.
func (s *ShipmentService) HandleCarrierEvent(ctx context.Context, event spedirepro.TrackingEvent) *ProcessResult {
	orderName := event.MerchantReference
	if orderName == "" {
		return &ProcessResult{Outcome: constants.OutcomeSkipped, Reason: "missing-merchant-reference"}
	}

	row, err := s.shipments.GetByOrderName(orderName)
	if err != nil {
		logger.Errorw("carrier_event_lookup_failed", "order_name", orderName, "error", err)
		return &ProcessResult{Outcome: constants.OutcomeFailed, Reason: "storage-error"}
	}
	if row == nil {
		logger.Warnw("carrier_event_unknown_order",
			"order_name", orderName,
			"tracking", event.Tracking,
			"event", event.Event,
		)
		return &ProcessResult{Outcome: constants.OutcomeSkipped, Reason: "unknown-order"}
	}

	if event.Event != constants.CarrierEventDelivered {
		logger.Infow("carrier_event_ignored",
			"order_name", orderName,
			"event", event.Event,
		)
		return &ProcessResult{Outcome: constants.OutcomeSkipped, Reason: "unhandled-event"}
	}

	if row.Status == constants.ShipmentStatusDelivered {
		return &ProcessResult{Outcome: constants.OutcomeDuplicate, Reason: "already-delivered"}
	}

	now := time.Now()
	if err := s.shipments.Update(row.OrderID, map[string]interface{}{
		"status":       constants.ShipmentStatusDelivered,
		"delivered_at": &now,
	}); err != nil {
		logger.Errorw("carrier_event_persist_failed", "order_name", orderName, "error", err)
		return &ProcessResult{Outcome: constants.OutcomeFailed, Reason: "storage-error"}
	}

	if row.NotifyRecipient && row.RecipientEmail != "" {
		s.notifyRecipient(queue.RecipientNotifyPayload{
			OrderID:     row.OrderID,
			OrderName:   row.OrderName,
			Email:       row.RecipientEmail,
			Tracking:    row.Tracking,
			TrackingURL: row.TrackingURL,
			Event:       event.Event,
		})
	}

	logger.Infow("carrier_event_delivered",
		"order_name", orderName,
		"tracking", row.Tracking,
	)
	return &ProcessResult{Outcome: constants.OutcomeSubmitted, Reason: "delivered", Tracking: row.Tracking}
}

// notifyRecipient enqueues the delivery email, falling back to a synchronous
// send when the queue is disabled.
func (s *ShipmentService) notifyRecipient(payload queue.RecipientNotifyPayload) {
	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueRecipientNotify(payload); err != nil {
			logger.Errorw("recipient_notify_enqueue_failed", "order_name", payload.OrderName, "error", err)
		}
		return
	}
	if s.email == nil {
		return
	}
	if err := s.email.SendRecipientNotify(payload); err != nil {
		logger.Warnw("recipient_notify_send_failed", "order_name", payload.OrderName, "error", err)
	}
}

// alertOperator enqueues the alert email, falling back to a synchronous send
// when the queue is disabled.
func (s *ShipmentService) alertOperator(payload queue.OperatorAlertPayload) {
	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueOperatorAlert(payload); err != nil {
			logger.Errorw("operator_alert_enqueue_failed", "order_name", payload.OrderName, "error", err)
		}
		return
	}
	if s.email == nil {
		logger.Warnw("operator_alert_dropped", "order_name", payload.OrderName, "reason", payload.Reason)
		return
	}
	if err := s.email.SendOperatorAlert(payload); err != nil {
		logger.Warnw("operator_alert_send_failed",
			"order_name", payload.OrderName,
			"error", fmt.Sprintf("%v", err),
		)
	}
}
