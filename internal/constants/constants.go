package constants

// Shipment status constants
const (
	ShipmentStatusPending      = "pending"
	ShipmentStatusSubmitting   = "submitting"
	ShipmentStatusLabelCreated = "label_created"
	ShipmentStatusBlocked      = "blocked"
	ShipmentStatusDelivered    = "delivered"
)

// Customs document status constants
const (
	CustomsStatusGenerated = "generated"
	CustomsStatusPartial   = "partial_upload"
	CustomsStatusFailed    = "failed"
)

// Carrier account type constants
const (
	AccountTypeDDP = "DDP"
	AccountTypeDDU = "DDU"
)

// Order tag patterns. Tags are the operator-facing control channel on the
// Shopify order; the local shipment row is the authoritative state.
const (
	TagSuffixCreate         = "-CREATE"
	TagSuffixCreateNoDog    = "-CREATE-NODOG"
	TagSuffixCreateDDU      = "-CREATE-DDU"
	TagSuffixCreateDDUNoDog = "-CREATE-DDU-NODOG"
	TagSuffixCustomsOnly    = "-DOG"
	TagPrefixLabelOK        = "LABEL-OK-"
)

// Order metafield namespace/key pairs. These live on the Shopify order and
// are the durable idempotency markers shared with operator tooling.
const (
	MetafieldNamespaceCarrier = "spedirepro"
	MetafieldKeyTracking      = "tracking"
	MetafieldKeyReference     = "reference"
	MetafieldKeyLabelURL      = "label_url"
	MetafieldKeySkipCustoms   = "skip_customs"
	MetafieldKeyNotify        = "notify_recipient"

	MetafieldNamespaceCustoms = "custom"
	MetafieldKeyDeclaration   = "doganale"
	MetafieldKeyInvoice       = "fattura"

	// Product metafields carrying per-item customs data.
	MetafieldKeyHSCode        = "hs_code"
	MetafieldKeyOriginCountry = "origin_country"
)

// Carrier document type constants (document upload endpoint)
const (
	CarrierDocumentTypeInvoice     = 1
	CarrierDocumentTypeDeclaration = 2
)

// Webhook processing outcome constants
const (
	OutcomeSubmitted   = "submitted"
	OutcomeSkipped     = "skipped"
	OutcomeDuplicate   = "duplicate"
	OutcomeBlocked     = "blocked"
	OutcomeFailed      = "failed"
	OutcomeCustomsDone = "customs_generated"
)

// Webhook event source constants
const (
	WebhookSourceShopify = "shopify"
	WebhookSourceCarrier = "carrier"
)

// Carrier event type constants
const (
	CarrierEventLabelCreated = "label.created"
	CarrierEventInTransit    = "shipment.in_transit"
	CarrierEventDelivered    = "shipment.delivered"
)

// Queue name constants
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// Async task type constants
const (
	TaskOperatorAlert   = "alert:operator"
	TaskRecipientNotify = "notify:recipient"
)

// Operator alert reason constants
const (
	AlertReasonAccountCountryMismatch = "account_country_mismatch"
	AlertReasonCustomsFailed          = "customs_generation_failed"
)
