package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spedigo-next/internal/carrier/spedirepro"
	"github.com/spedigo-next/internal/config"
	"github.com/spedigo-next/internal/constants"
	"github.com/spedigo-next/internal/models"
	"github.com/spedigo-next/internal/queue"
	"github.com/spedigo-next/internal/repository"
	"github.com/spedigo-next/internal/shipping"
	"github.com/spedigo-next/internal/shopify"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fakeOrderState struct {
	metafields    []shopify.Metafield
	metafieldsErr error
	productFields map[int64][]shopify.Metafield
	productErr    error
	written       []shopify.Metafield
	replacedTags  string
}

func (f *fakeOrderState) OrderMetafields(_ context.Context, _ int64) ([]shopify.Metafield, error) {
	if f.metafieldsErr != nil {
		return nil, f.metafieldsErr
	}
	return f.metafields, nil
}

func (f *fakeOrderState) WriteOrderMetafield(_ context.Context, _ int64, field shopify.Metafield) error {
	f.written = append(f.written, field)
	return nil
}

func (f *fakeOrderState) ReplaceOrderTags(_ context.Context, _ int64, tags string) error {
	f.replacedTags = tags
	return nil
}

func (f *fakeOrderState) ProductMetafields(_ context.Context, productID int64) ([]shopify.Metafield, error) {
	if f.productErr != nil {
		return nil, f.productErr
	}
	return f.productFields[productID], nil
}

type fakeCarrier struct {
	mu          sync.Mutex
	result      *spedirepro.CreateResult
	err         error
	createCalls int
	uploadErr   error
	uploads     []spedirepro.DocumentUpload
}

func (f *fakeCarrier) CreateShipment(_ context.Context, _ string, _ *shipping.LabelRequest) (*spedirepro.CreateResult, error) {
	f.createCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeCarrier) UploadDocument(_ context.Context, _ string, doc spedirepro.DocumentUpload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, doc)
	return nil
}

func shipmentTestConfig() *config.Config {
	return &config.Config{
		Shipping: config.ShippingConfig{
			DefaultWeightKG:     1.0,
			DefaultWidthCM:      30,
			DefaultHeightCM:     20,
			DefaultDepthCM:      10,
			DeclaredAmount:      "25.00",
			FallbackDescription: "Merchandise",
		},
	}
}

func shipmentTestSenders() *shipping.SenderRegistry {
	return shipping.NewSenderRegistry(config.SendersConfig{
		Profiles: map[string]config.SenderProfileConfig{
			"MI": {
				Name:     "Magazzino Milano",
				Country:  "IT",
				Province: "MI",
				City:     "Milano",
				Postcode: "20121",
				Street:   "Via Monte Napoleone 1",
			},
		},
	})
}

func setupShipmentServiceTest(t *testing.T, carrier *fakeCarrier, orderState *fakeOrderState) (*ShipmentService, repository.ShipmentRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:shipment_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Shipment{}, &models.CustomsDocument{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	repo := repository.NewShipmentRepository(db)

	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}

	cfg := shipmentTestConfig()
	svc := NewShipmentService(cfg, shipmentTestSenders(), orderState, carrier, repo, queueClient, nil)
	return svc, repo
}

func orderTo(country, tags string) *shipping.Order {
	return &shipping.Order{
		ID:          1001,
		Name:        "#35622",
		Email:       "buyer@example.com",
		Tags:        tags,
		TotalWeight: 2500,
		ShippingAddress: &shipping.Address{
			FirstName:   "Ada",
			LastName:    "Rossi",
			Address1:    "1 Main St",
			City:        "Springfield",
			Zip:         "12345",
			CountryCode: country,
		},
		LineItems: []shipping.LineItem{{Title: "Wool sweater", Quantity: 1, Price: "60.00"}},
	}
}

func parseTestIntent(t *testing.T, tags string) shipping.Intent {
	t.Helper()
	intent := shipping.ParseIntent(tags, func(code string) bool { return code == "MI" })
	if intent.Mode != shipping.ModeCreateLabel {
		t.Fatalf("test intent did not parse: %+v", intent)
	}
	return intent
}

func TestCreateLabelSubmitsAndPersists(t *testing.T) {
	carrier := &fakeCarrier{result: &spedirepro.CreateResult{
		Reference:   "SP-REF-1",
		Tracking:    "TRK123",
		TrackingURL: "https://track.example/TRK123",
		LabelURL:    "https://labels.example/TRK123.pdf",
	}}
	orderState := &fakeOrderState{}
	svc, repo := setupShipmentServiceTest(t, carrier, orderState)

	order := orderTo("FR", "vip, MI-CREATE")
	result := svc.CreateLabel(context.Background(), order, parseTestIntent(t, order.Tags))

	if result.Outcome != constants.OutcomeSubmitted {
		t.Fatalf("unexpected outcome: %+v", result)
	}
	if result.Tracking != "TRK123" {
		t.Fatalf("unexpected tracking: %s", result.Tracking)
	}

	row, err := repo.GetByOrderID(order.ID)
	if err != nil || row == nil {
		t.Fatalf("row lookup failed: %v", err)
	}
	if row.Status != constants.ShipmentStatusLabelCreated {
		t.Fatalf("unexpected row status: %s", row.Status)
	}
	if row.Tracking != "TRK123" || row.Reference != "SP-REF-1" {
		t.Fatalf("label not persisted: %+v", row)
	}
	if !row.NotifyRecipient || row.RecipientEmail != "buyer@example.com" {
		t.Fatalf("notification opt-in not recorded: %+v", row)
	}

	if orderState.replacedTags != "vip, LABEL-OK-MI" {
		t.Fatalf("unexpected tag swap: %q", orderState.replacedTags)
	}
	var sawTracking, sawReference bool
	for _, field := range orderState.written {
		if field.Namespace != constants.MetafieldNamespaceCarrier {
			continue
		}
		switch field.Key {
		case constants.MetafieldKeyTracking:
			sawTracking = field.Value == "TRK123"
		case constants.MetafieldKeyReference:
			sawReference = field.Value == "SP-REF-1"
		}
	}
	if !sawTracking || !sawReference {
		t.Fatalf("metafields not written: %+v", orderState.written)
	}
}

func TestCreateLabelSkipsLabelOKTag(t *testing.T) {
	carrier := &fakeCarrier{}
	svc, _ := setupShipmentServiceTest(t, carrier, &fakeOrderState{})

	order := orderTo("FR", "MI-CREATE, LABEL-OK-MI")
	intent := shipping.Intent{Mode: shipping.ModeCreateLabel, SenderCode: "MI", AccountType: constants.AccountTypeDDP}
	result := svc.CreateLabel(context.Background(), order, intent)

	if result.Outcome != constants.OutcomeDuplicate || result.Reason != "label-ok" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if carrier.createCalls != 0 {
		t.Fatalf("carrier should not be called")
	}
}

func TestCreateLabelSkipsIncompleteAddress(t *testing.T) {
	carrier := &fakeCarrier{}
	svc, _ := setupShipmentServiceTest(t, carrier, &fakeOrderState{})

	order := orderTo("FR", "MI-CREATE")
	order.ShippingAddress.Zip = ""
	result := svc.CreateLabel(context.Background(), order, parseTestIntent(t, order.Tags))

	if result.Outcome != constants.OutcomeSkipped || result.Reason != "missing-address-fields" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if carrier.createCalls != 0 {
		t.Fatalf("carrier should not be called")
	}
}

func TestCreateLabelBlocksAccountCountryMismatch(t *testing.T) {
	carrier := &fakeCarrier{}
	svc, repo := setupShipmentServiceTest(t, carrier, &fakeOrderState{})

	// DDU requested for an auto-eligible destination.
	order := orderTo("US", "MI-CREATE-DDU")
	result := svc.CreateLabel(context.Background(), order, parseTestIntent(t, order.Tags))

	if result.Outcome != constants.OutcomeBlocked {
		t.Fatalf("unexpected outcome: %+v", result)
	}
	if carrier.createCalls != 0 {
		t.Fatalf("carrier must not be called on policy block")
	}

	row, err := repo.GetByOrderID(order.ID)
	if err != nil || row == nil {
		t.Fatalf("row lookup failed: %v", err)
	}
	if row.Status != constants.ShipmentStatusBlocked {
		t.Fatalf("unexpected row status: %s", row.Status)
	}
	if row.SuggestedTag != "MI-CREATE" {
		t.Fatalf("unexpected suggested tag: %s", row.SuggestedTag)
	}
}

func TestCreateLabelBlocksDDPToIneligibleCountry(t *testing.T) {
	carrier := &fakeCarrier{}
	svc, repo := setupShipmentServiceTest(t, carrier, &fakeOrderState{})

	// DDP requested for a destination outside the EU/USA eligibility set.
	order := orderTo("BR", "MI-CREATE")
	result := svc.CreateLabel(context.Background(), order, parseTestIntent(t, order.Tags))

	if result.Outcome != constants.OutcomeBlocked {
		t.Fatalf("unexpected outcome: %+v", result)
	}
	if carrier.createCalls != 0 {
		t.Fatalf("carrier must not be called on policy block")
	}

	row, _ := repo.GetByOrderID(order.ID)
	if row == nil || row.SuggestedTag != "MI-CREATE-DDU" {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestCreateLabelBlockedRowRetriesAfterTagFix(t *testing.T) {
	carrier := &fakeCarrier{result: &spedirepro.CreateResult{Reference: "SP-REF-2", Tracking: "TRK456"}}
	svc, repo := setupShipmentServiceTest(t, carrier, &fakeOrderState{})

	order := orderTo("US", "MI-CREATE-DDU")
	if r := svc.CreateLabel(context.Background(), order, parseTestIntent(t, order.Tags)); r.Outcome != constants.OutcomeBlocked {
		t.Fatalf("setup block failed: %+v", r)
	}

	// Operator swapped the tag; the blocked row gets re-evaluated.
	order.Tags = "MI-CREATE"
	result := svc.CreateLabel(context.Background(), order, parseTestIntent(t, order.Tags))
	if result.Outcome != constants.OutcomeSubmitted {
		t.Fatalf("expected submission after tag fix, got %+v", result)
	}

	row, _ := repo.GetByOrderID(order.ID)
	if row.Status != constants.ShipmentStatusLabelCreated {
		t.Fatalf("unexpected row status: %s", row.Status)
	}
}

func TestCreateLabelDetectsExistingMetafield(t *testing.T) {
	carrier := &fakeCarrier{}
	orderState := &fakeOrderState{metafields: []shopify.Metafield{
		{Namespace: constants.MetafieldNamespaceCarrier, Key: constants.MetafieldKeyTracking, Value: "TRK-OLD"},
	}}
	svc, repo := setupShipmentServiceTest(t, carrier, orderState)

	order := orderTo("FR", "MI-CREATE")
	result := svc.CreateLabel(context.Background(), order, parseTestIntent(t, order.Tags))

	if result.Outcome != constants.OutcomeDuplicate || result.Reason != "label-already-exists" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Tracking != "TRK-OLD" {
		t.Fatalf("expected tracking from metafield, got %s", result.Tracking)
	}
	if carrier.createCalls != 0 {
		t.Fatalf("carrier should not be called")
	}

	row, _ := repo.GetByOrderID(order.ID)
	if row.Status != constants.ShipmentStatusLabelCreated || row.Tracking != "TRK-OLD" {
		t.Fatalf("row not synced from metafields: %+v", row)
	}
}

func TestCreateLabelMetafieldCheckFailsOpen(t *testing.T) {
	carrier := &fakeCarrier{result: &spedirepro.CreateResult{Reference: "SP-REF-3", Tracking: "TRK789"}}
	orderState := &fakeOrderState{metafieldsErr: errors.New("shopify 500")}
	svc, _ := setupShipmentServiceTest(t, carrier, orderState)

	order := orderTo("FR", "MI-CREATE")
	result := svc.CreateLabel(context.Background(), order, parseTestIntent(t, order.Tags))

	if result.Outcome != constants.OutcomeSubmitted {
		t.Fatalf("metafield check must fail open, got %+v", result)
	}
	if carrier.createCalls != 1 {
		t.Fatalf("expected one carrier call, got %d", carrier.createCalls)
	}
}

func TestCreateLabelCarrierFailureReleasesRow(t *testing.T) {
	carrier := &fakeCarrier{err: &spedirepro.APIError{StatusCode: 422, Body: "invalid postcode"}}
	svc, repo := setupShipmentServiceTest(t, carrier, &fakeOrderState{})

	order := orderTo("FR", "MI-CREATE")
	result := svc.CreateLabel(context.Background(), order, parseTestIntent(t, order.Tags))

	if result.Outcome != constants.OutcomeFailed {
		t.Fatalf("unexpected outcome: %+v", result)
	}
	if !strings.Contains(result.Reason, "invalid postcode") {
		t.Fatalf("carrier detail not carried: %s", result.Reason)
	}

	row, _ := repo.GetByOrderID(order.ID)
	if row.Status != constants.ShipmentStatusPending {
		t.Fatalf("row not released: %s", row.Status)
	}
	if !strings.Contains(row.FailReason, "invalid postcode") {
		t.Fatalf("fail reason not recorded: %q", row.FailReason)
	}

	// Redelivery can retry from here.
	carrier.err = nil
	carrier.result = &spedirepro.CreateResult{Reference: "SP-REF-4", Tracking: "TRK999"}
	result = svc.CreateLabel(context.Background(), order, parseTestIntent(t, order.Tags))
	if result.Outcome != constants.OutcomeSubmitted {
		t.Fatalf("retry after release failed: %+v", result)
	}
}

func TestCreateLabelDuplicateWhenAlreadyCreated(t *testing.T) {
	carrier := &fakeCarrier{result: &spedirepro.CreateResult{Reference: "SP-REF-5", Tracking: "TRK111"}}
	svc, _ := setupShipmentServiceTest(t, carrier, &fakeOrderState{})

	order := orderTo("FR", "MI-CREATE")
	intent := parseTestIntent(t, order.Tags)
	if r := svc.CreateLabel(context.Background(), order, intent); r.Outcome != constants.OutcomeSubmitted {
		t.Fatalf("setup submission failed: %+v", r)
	}

	// Tag swap may lag; a redelivery with the old tag set must still dedupe
	// on the local row.
	result := svc.CreateLabel(context.Background(), order, intent)
	if result.Outcome != constants.OutcomeDuplicate || result.Reason != "label-already-exists" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if carrier.createCalls != 1 {
		t.Fatalf("expected one carrier call, got %d", carrier.createCalls)
	}
}

func TestHandleCarrierEventDelivered(t *testing.T) {
	carrier := &fakeCarrier{result: &spedirepro.CreateResult{Reference: "SP-REF-6", Tracking: "TRK222"}}
	svc, repo := setupShipmentServiceTest(t, carrier, &fakeOrderState{})

	order := orderTo("FR", "MI-CREATE")
	if r := svc.CreateLabel(context.Background(), order, parseTestIntent(t, order.Tags)); r.Outcome != constants.OutcomeSubmitted {
		t.Fatalf("setup submission failed: %+v", r)
	}

	event := spedirepro.TrackingEvent{
		Event:             constants.CarrierEventDelivered,
		Tracking:          "TRK222",
		MerchantReference: "#35622",
	}
	result := svc.HandleCarrierEvent(context.Background(), event)
	if result.Outcome != constants.OutcomeSubmitted || result.Reason != "delivered" {
		t.Fatalf("unexpected result: %+v", result)
	}

	row, _ := repo.GetByOrderID(order.ID)
	if row.Status != constants.ShipmentStatusDelivered || row.DeliveredAt == nil {
		t.Fatalf("delivery not recorded: %+v", row)
	}

	result = svc.HandleCarrierEvent(context.Background(), event)
	if result.Outcome != constants.OutcomeDuplicate {
		t.Fatalf("redelivered event should dedupe: %+v", result)
	}
}

func TestHandleCarrierEventUnknownOrder(t *testing.T) {
	svc, _ := setupShipmentServiceTest(t, &fakeCarrier{}, &fakeOrderState{})

	result := svc.HandleCarrierEvent(context.Background(), spedirepro.TrackingEvent{
		Event:             constants.CarrierEventDelivered,
		MerchantReference: "#99999",
	})
	if result.Outcome != constants.OutcomeSkipped || result.Reason != "unknown-order" {
		t.Fatalf("unexpected result: %+v", result)
	}
}
