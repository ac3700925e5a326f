package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spedigo-next/internal/config"
	"github.com/spedigo-next/internal/constants"
	"github.com/spedigo-next/internal/models"
	"github.com/spedigo-next/internal/provider"
	"github.com/spedigo-next/internal/queue"
	"github.com/spedigo-next/internal/repository"
	"github.com/spedigo-next/internal/service"
	"github.com/spedigo-next/internal/shipping"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fakeVerifier struct {
	ok bool
}

func (f *fakeVerifier) VerifyWebhookRequest(_ *http.Request) bool {
	return f.ok
}

func setupWebhookHandlerTest(t *testing.T, verifier *fakeVerifier) (*gin.Engine, repository.WebhookEventRepository) {
	return setupWebhookHandlerTestWithToken(t, verifier, "callback-token")
}

func setupWebhookHandlerTestWithToken(t *testing.T, verifier *fakeVerifier, carrierToken string) (*gin.Engine, repository.WebhookEventRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:webhook_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Shipment{}, &models.WebhookEvent{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	shipmentRepo := repository.NewShipmentRepository(db)
	eventRepo := repository.NewWebhookEventRepository(db)

	queueClient, err := queue.NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("queue client failed: %v", err)
	}

	cfg := &config.Config{
		Carrier: config.CarrierConfig{WebhookToken: carrierToken},
	}
	senders := shipping.NewSenderRegistry(config.SendersConfig{
		Profiles: map[string]config.SenderProfileConfig{
			"MI": {Name: "Magazzino Milano", Country: "IT", City: "Milano", Postcode: "20121", Street: "Via Monte Napoleone 1"},
		},
	})

	container := &provider.Container{
		Config:           cfg,
		QueueClient:      queueClient,
		Senders:          senders,
		WebhookVerifier:  verifier,
		ShipmentRepo:     shipmentRepo,
		WebhookEventRepo: eventRepo,
		ShipmentService:  service.NewShipmentService(cfg, senders, nil, nil, shipmentRepo, queueClient, nil),
	}

	h := New(container)
	r := gin.New()
	r.POST("/webhooks/shopify/orders-update", h.HandleOrdersUpdate)
	r.POST("/webhooks/carrier/events", h.HandleCarrierEvents)
	return r, eventRepo
}

func postJSON(t *testing.T, r *gin.Engine, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestOrdersUpdateRejectsBadSignature(t *testing.T) {
	r, _ := setupWebhookHandlerTest(t, &fakeVerifier{ok: false})

	w := postJSON(t, r, "/webhooks/shopify/orders-update", []byte(`{}`), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status want 401 got %d", w.Code)
	}
}

func TestOrdersUpdateRejectsInvalidBody(t *testing.T) {
	r, _ := setupWebhookHandlerTest(t, &fakeVerifier{ok: true})

	w := postJSON(t, r, "/webhooks/shopify/orders-update", []byte(`{"id":`), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status want 400 got %d", w.Code)
	}
}

func TestOrdersUpdateSkipsUntaggedOrder(t *testing.T) {
	r, eventRepo := setupWebhookHandlerTest(t, &fakeVerifier{ok: true})

	body, err := json.Marshal(shipping.Order{
		ID:   1001,
		Name: "#35622",
		Tags: "vip, gift-wrap",
	})
	if err != nil {
		t.Fatalf("marshal order failed: %v", err)
	}

	w := postJSON(t, r, "/webhooks/shopify/orders-update", body, map[string]string{
		"X-Shopify-Webhook-Id": "delivery-1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}

	var result service.ProcessResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal result failed: %v", err)
	}
	if result.Outcome != constants.OutcomeSkipped {
		t.Fatalf("outcome want skipped got %s", result.Outcome)
	}

	events, total, err := eventRepo.List(repository.WebhookEventListFilter{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if total != 1 || len(events) != 1 {
		t.Fatalf("expected one audit row, got %d", total)
	}
	if events[0].OrderName != "#35622" || events[0].Outcome != constants.OutcomeSkipped {
		t.Fatalf("unexpected audit row: %+v", events[0])
	}
}

func TestCarrierEventsRejectsBadToken(t *testing.T) {
	r, _ := setupWebhookHandlerTest(t, &fakeVerifier{ok: true})

	w := postJSON(t, r, "/webhooks/carrier/events?token=wrong", []byte(`{}`), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status want 401 got %d", w.Code)
	}
}

func TestCarrierEventsRejectsWhenTokenUnconfigured(t *testing.T) {
	r, _ := setupWebhookHandlerTestWithToken(t, &fakeVerifier{ok: true}, "")

	w := postJSON(t, r, "/webhooks/carrier/events?token=", []byte(`{}`), nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("empty configured token must reject all calls, got %d", w.Code)
	}
}

func TestCarrierEventsUnknownOrderSkipped(t *testing.T) {
	r, _ := setupWebhookHandlerTest(t, &fakeVerifier{ok: true})

	body := []byte(`{"event":"shipment.delivered","merchant_reference":"#99999","tracking":"TRK999"}`)
	w := postJSON(t, r, "/webhooks/carrier/events?token=callback-token", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var result service.ProcessResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal result failed: %v", err)
	}
	if result.Outcome != constants.OutcomeSkipped {
		t.Fatalf("unknown order should be skipped, got %s", result.Outcome)
	}
}
