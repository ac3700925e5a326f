package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/spedigo-next/internal/carrier/spedirepro"
	"github.com/spedigo-next/internal/config"
	"github.com/spedigo-next/internal/constants"
	"github.com/spedigo-next/internal/customs"
	"github.com/spedigo-next/internal/logger"
	"github.com/spedigo-next/internal/models"
	"github.com/spedigo-next/internal/queue"
	"github.com/spedigo-next/internal/repository"
	"github.com/spedigo-next/internal/shipping"
	"github.com/spedigo-next/internal/shopify"
	"github.com/spedigo-next/internal/storage"

	"github.com/shopspring/decimal"
)

// CustomsService generates and distributes the customs document pair for
// non-EU shipments: commercial invoice and customs declaration.
type CustomsService struct {
	cfg        *config.Config
	senders    *shipping.SenderRegistry
	orderState shopify.API
	carrier    CarrierAPI
	renderer   *customs.Renderer
	store      storage.DocumentStore
	docs       repository.CustomsDocumentRepository
	email      *EmailService
	queue      *queue.Client
}

// NewCustomsService creates the customs orchestrator.
func NewCustomsService(
	cfg *config.Config,
	senders *shipping.SenderRegistry,
	orderState shopify.API,
	carrier CarrierAPI,
	renderer *customs.Renderer,
	store storage.DocumentStore,
	docs repository.CustomsDocumentRepository,
	queueClient *queue.Client,
	email *EmailService,
) *CustomsService {
	return &CustomsService{
		cfg:        cfg,
		senders:    senders,
		orderState: orderState,
		carrier:    carrier,
		renderer:   renderer,
		store:      store,
		docs:       docs,
		email:      email,
		queue:      queueClient,
	}
}

// GenerateDocuments runs the customs pipeline for an order whose intent
// resolved to customs-only processing. The declaration metafield is the
// durable completion marker; the local row mirrors it.
func (s *CustomsService) GenerateDocuments(ctx context.Context, order *shipping.Order, intent shipping.Intent) *ProcessResult {
	cls := shipping.Classify(order.CountryCode())
	if !cls.RequiresCustoms {
		return &ProcessResult{Outcome: constants.OutcomeSkipped, Reason: "customs-not-required"}
	}

	profile, ok := s.senders.Resolve(intent.SenderCode)
	if !ok {
		return &ProcessResult{Outcome: constants.OutcomeFailed, Reason: "unknown-sender"}
	}

	// Local row first: cheap, and it covers deployments where storage is
	// disabled and the declaration metafield never gets written. Failed
	// attempts stay retryable.
	if row, err := s.docs.GetByOrderID(order.ID); err != nil {
		logger.Warnw("customs_row_check_failed", "order_id", order.ID, "error", err)
	} else if row != nil && row.Status != constants.CustomsStatusFailed {
		return &ProcessResult{Outcome: constants.OutcomeDuplicate, Reason: "customs-already-generated", Tracking: row.Tracking}
	}

	// One metafield read serves the authoritative duplicate check and the
	// tracking pair printed on the documents. Fails open like the label
	// pipeline.
	var tracking, reference string
	if fields, err := s.orderState.OrderMetafields(ctx, order.ID); err != nil {
		logger.Warnw("customs_metafield_check_failed", "order_id", order.ID, "error", err)
	} else {
		if declaration, ok := shopify.FindMetafield(fields, constants.MetafieldNamespaceCustoms, constants.MetafieldKeyDeclaration); ok && declaration != "" {
			return &ProcessResult{Outcome: constants.OutcomeDuplicate, Reason: "customs-already-generated"}
		}
		tracking, _ = shopify.FindMetafield(fields, constants.MetafieldNamespaceCarrier, constants.MetafieldKeyTracking)
		reference, _ = shopify.FindMetafield(fields, constants.MetafieldNamespaceCarrier, constants.MetafieldKeyReference)
	}

	lines, err := s.fetchLines(ctx, order)
	if err != nil {
		return s.failGeneration(order, tracking, reference, err)
	}

	doc := &customs.Document{
		OrderName: order.Name,
		Tracking:  tracking,
		Reference: reference,
		Date:      time.Now(),
		Sender: customs.Party{
			Name:    profile.Name,
			Street:  profile.Street,
			City:    profile.City + " " + profile.Postcode,
			Country: profile.Country,
		},
		Receiver: receiverParty(order),
		Lines:    lines,
	}

	invoicePDF, err := s.renderer.RenderInvoice(doc)
	if err != nil {
		return s.failGeneration(order, tracking, reference, err)
	}
	declarationPDF, err := s.renderer.RenderDeclaration(doc)
	if err != nil {
		return s.failGeneration(order, tracking, reference, err)
	}

	invoice := s.uploadBoth(ctx, intent.AccountType, spedirepro.DocumentUpload{
		Reference:    reference,
		Tracking:     tracking,
		DocumentType: spedirepro.DocumentTypeInvoice,
		PDF:          invoicePDF,
	})
	declaration := s.uploadBoth(ctx, intent.AccountType, spedirepro.DocumentUpload{
		Reference:    reference,
		Tracking:     tracking,
		DocumentType: spedirepro.DocumentTypeDeclaration,
		PDF:          declarationPDF,
	})
	invoice.wait()
	declaration.wait()

	status := constants.CustomsStatusGenerated
	reason := ""
	if invoice.carrierErr != nil || declaration.carrierErr != nil ||
		invoice.storageErr != nil || declaration.storageErr != nil {
		status = constants.CustomsStatusPartial
		reason = "partial-upload"
	}

	row := &models.CustomsDocument{
		OrderID:        order.ID,
		OrderName:      order.Name,
		Status:         status,
		Tracking:       tracking,
		Reference:      reference,
		InvoiceURL:     invoice.storageURL,
		DeclarationURL: declaration.storageURL,
		FailReason:     uploadFailDetail(invoice, declaration),
	}
	if err := s.docs.Upsert(row); err != nil {
		logger.Errorw("customs_row_persist_failed", "order_id", order.ID, "error", err)
	}

	// Metafields come from the storage URLs that exist; a failed storage
	// upload leaves that one metafield unset.
	if invoice.storageURL != "" {
		s.writeDocumentMetafield(ctx, order.ID, constants.MetafieldKeyInvoice, invoice.storageURL)
	}
	if declaration.storageURL != "" {
		s.writeDocumentMetafield(ctx, order.ID, constants.MetafieldKeyDeclaration, declaration.storageURL)
	}

	logger.Infow("customs_documents_generated",
		"order_id", order.ID,
		"order_name", order.Name,
		"status", status,
		"tracking", tracking,
	)
	return &ProcessResult{Outcome: constants.OutcomeCustomsDone, Reason: reason, Tracking: tracking, Reference: reference}
}

// fetchLines builds the itemized customs lines. Per-product HS code and
// origin come from product metafields; any missing field fails the whole
// order, no partial declarations.
func (s *CustomsService) fetchLines(ctx context.Context, order *shipping.Order) ([]customs.Line, error) {
	lines := make([]customs.Line, 0, len(order.LineItems))
	for _, item := range order.LineItems {
		line := customs.Line{
			Description: strings.TrimSpace(item.Title),
			Quantity:    item.Quantity,
			WeightKG:    float64(item.Grams) / 1000.0 * float64(item.Quantity),
		}
		if price, err := decimal.NewFromString(strings.TrimSpace(item.Price)); err == nil {
			line.UnitValue = price
		}
		if item.ProductID != 0 {
			fields, err := s.orderState.ProductMetafields(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			line.HSCode, _ = shopify.FindMetafield(fields, constants.MetafieldNamespaceCustoms, constants.MetafieldKeyHSCode)
			line.OriginCountry, _ = shopify.FindMetafield(fields, constants.MetafieldNamespaceCustoms, constants.MetafieldKeyOriginCountry)
		}
		if err := line.Validate(); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, customs.ErrMissingCustomsData
	}
	return lines, nil
}

// failGeneration maps a generation failure to its terminal outcome. Orders
// created before the customs-data rollout fail silently; everything else
// alerts an operator with the error detail.
func (s *CustomsService) failGeneration(order *shipping.Order, tracking, reference string, err error) *ProcessResult {
	if errors.Is(err, customs.ErrMissingCustomsData) && s.isLegacyOrder(order) {
		logger.Infow("customs_skipped_legacy_order",
			"order_id", order.ID,
			"order_name", order.Name,
		)
		return &ProcessResult{Outcome: constants.OutcomeSkipped, Reason: "legacy-order"}
	}

	if rowErr := s.docs.Upsert(&models.CustomsDocument{
		OrderID:    order.ID,
		OrderName:  order.Name,
		Status:     constants.CustomsStatusFailed,
		Tracking:   tracking,
		Reference:  reference,
		FailReason: err.Error(),
	}); rowErr != nil {
		logger.Errorw("customs_row_persist_failed", "order_id", order.ID, "error", rowErr)
	}

	s.alertCustomsFailure(order, err)

	logger.Errorw("customs_generation_failed",
		"order_id", order.ID,
		"order_name", order.Name,
		"error", err,
	)
	return &ProcessResult{Outcome: constants.OutcomeFailed, Reason: err.Error()}
}

// isLegacyOrder reports whether the order predates the customs-data rollout
// cutoff. Unparsable timestamps never qualify.
func (s *CustomsService) isLegacyOrder(order *shipping.Order) bool {
	cutoffRaw := strings.TrimSpace(s.cfg.Customs.LegacyBefore)
	if cutoffRaw == "" {
		return false
	}
	cutoff, err := time.Parse(time.RFC3339, cutoffRaw)
	if err != nil {
		logger.Warnw("customs_legacy_cutoff_invalid", "value", cutoffRaw, "error", err)
		return false
	}
	createdAt, err := time.Parse(time.RFC3339, strings.TrimSpace(order.CreatedAt))
	if err != nil {
		return false
	}
	return createdAt.Before(cutoff)
}

func (s *CustomsService) alertCustomsFailure(order *shipping.Order, cause error) {
	payload := queue.OperatorAlertPayload{
		OrderID:     order.ID,
		OrderName:   order.Name,
		CountryCode: order.CountryCode(),
		CountryName: shipping.CountryName(order.CountryCode()),
		Reason:      constants.AlertReasonCustomsFailed,
		Detail:      cause.Error(),
	}
	if s.queue.Enabled() {
		if err := s.queue.EnqueueOperatorAlert(payload); err != nil {
			logger.Errorw("operator_alert_enqueue_failed", "order_name", order.Name, "error", err)
		}
		return
	}
	if s.email == nil {
		logger.Warnw("operator_alert_dropped", "order_name", order.Name, "reason", payload.Reason)
		return
	}
	if err := s.email.SendOperatorAlert(payload); err != nil {
		logger.Warnw("operator_alert_send_failed", "order_name", order.Name, "error", err)
	}
}

// uploadResult tracks one document's pair of independent uploads: the
// carrier two-phase upload and the long-term storage put.
type uploadResult struct {
	wg         sync.WaitGroup
	carrierErr error
	storageURL string
	storageErr error
}

func (u *uploadResult) wait() { u.wg.Wait() }

// uploadBoth issues the carrier and storage uploads for one document
// concurrently. Neither failure cancels the other; partial success is
// recorded, not retried.
func (s *CustomsService) uploadBoth(ctx context.Context, accountType string, doc spedirepro.DocumentUpload) *uploadResult {
	result := &uploadResult{}

	result.wg.Add(1)
	go func() {
		defer result.wg.Done()
		if err := s.carrier.UploadDocument(ctx, accountType, doc); err != nil {
			result.carrierErr = err
			logger.Warnw("customs_carrier_upload_failed",
				"tracking", doc.Tracking,
				"document_type", doc.DocumentType,
				"error", err,
			)
		}
	}()

	result.wg.Add(1)
	go func() {
		defer result.wg.Done()
		// Disabled storage is a valid deployment: the document stays
		// carrier-only and its metafield remains unset.
		if s.store == nil || !s.store.Enabled() {
			return
		}
		url, err := s.store.Put(ctx, doc.FilePath(), doc.PDF)
		if err != nil {
			result.storageErr = err
			logger.Warnw("customs_storage_upload_failed",
				"tracking", doc.Tracking,
				"document_type", doc.DocumentType,
				"error", err,
			)
			return
		}
		result.storageURL = url
	}()

	return result
}

func uploadFailDetail(invoice, declaration *uploadResult) string {
	var parts []string
	if invoice.carrierErr != nil {
		parts = append(parts, "invoice carrier upload: "+invoice.carrierErr.Error())
	}
	if invoice.storageErr != nil {
		parts = append(parts, "invoice storage upload: "+invoice.storageErr.Error())
	}
	if declaration.carrierErr != nil {
		parts = append(parts, "declaration carrier upload: "+declaration.carrierErr.Error())
	}
	if declaration.storageErr != nil {
		parts = append(parts, "declaration storage upload: "+declaration.storageErr.Error())
	}
	return strings.Join(parts, "; ")
}

func (s *CustomsService) writeDocumentMetafield(ctx context.Context, orderID int64, key, url string) {
	field := shopify.Metafield{
		Namespace: constants.MetafieldNamespaceCustoms,
		Key:       key,
		Value:     url,
	}
	if err := s.orderState.WriteOrderMetafield(ctx, orderID, field); err != nil {
		logger.Warnw("customs_metafield_write_failed",
			"order_id", orderID,
			"key", key,
			"error", err,
		)
	}
}

func receiverParty(order *shipping.Order) customs.Party {
	address := order.ShippingAddress
	if address == nil {
		return customs.Party{Country: order.CountryCode()}
	}
	city := strings.TrimSpace(address.City)
	if zip := strings.TrimSpace(address.Zip); zip != "" {
		city = city + " " + zip
	}
	return customs.Party{
		Name:    address.ContactName(),
		Street:  address.Street(),
		City:    strings.TrimSpace(city),
		Country: order.CountryCode(),
	}
}
