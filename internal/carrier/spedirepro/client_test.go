package spedirepro

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spedigo-next/internal/config"
	"github.com/spedigo-next/internal/constants"
	"github.com/spedigo-next/internal/shipping"
)

func testRequest() *shipping.LabelRequest {
	return &shipping.LabelRequest{
		MerchantReference: "#35622",
		Sender:            shipping.Party{Name: "Magazzino Milano", Country: "IT", City: "Milano", Postcode: "20121"},
		Receiver:          shipping.Party{Name: "Mario Rossi", Country: "FR", City: "Paris", Postcode: "75001"},
		Packages:          []shipping.Package{{WeightKG: 1.5, WidthCM: 30, HeightCM: 20, DepthCM: 10}},
		Content:           shipping.Content{Description: "Leather Wallet", Amount: "25.00"},
	}
}

func TestCreateShipment(t *testing.T) {
	var gotAuth string
	var gotBody createShipmentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/shipments" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]string{
				"reference":    "SP-REF-1",
				"tracking":     "TRK123",
				"tracking_url": "https://track.example/TRK123",
				"label_url":    "https://labels.example/TRK123.pdf",
			},
		})
	}))
	defer server.Close()

	client := NewClient(config.CarrierConfig{BaseURL: server.URL, DDPAPIKey: "key-ddp", DDUAPIKey: "key-ddu"})
	result, err := client.CreateShipment(context.Background(), constants.AccountTypeDDP, testRequest())
	if err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	if gotAuth != "Bearer key-ddp" {
		t.Fatalf("expected ddp key, got %s", gotAuth)
	}
	if gotBody.MerchantReference != "#35622" {
		t.Fatalf("unexpected reference: %s", gotBody.MerchantReference)
	}
	if result.Tracking != "TRK123" || result.Reference != "SP-REF-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCreateShipmentSelectsDDUKey(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]string{"reference": "R", "tracking": "T"},
		})
	}))
	defer server.Close()

	client := NewClient(config.CarrierConfig{BaseURL: server.URL, DDPAPIKey: "key-ddp", DDUAPIKey: "key-ddu"})
	if _, err := client.CreateShipment(context.Background(), constants.AccountTypeDDU, testRequest()); err != nil {
		t.Fatalf("create shipment: %v", err)
	}
	if gotAuth != "Bearer key-ddu" {
		t.Fatalf("expected ddu key, got %s", gotAuth)
	}
}

func TestCreateShipmentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"message":"invalid postcode"}`))
	}))
	defer server.Close()

	client := NewClient(config.CarrierConfig{BaseURL: server.URL, DDPAPIKey: "k", DDUAPIKey: "k"})
	_, err := client.CreateShipment(context.Background(), constants.AccountTypeDDP, testRequest())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: %d", apiErr.StatusCode)
	}
}

func TestCreateShipmentUnknownAccountType(t *testing.T) {
	client := NewClient(config.CarrierConfig{BaseURL: "http://unused", DDPAPIKey: "k", DDUAPIKey: "k"})
	if _, err := client.CreateShipment(context.Background(), "EXW", testRequest()); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestUploadDocumentTwoPhase(t *testing.T) {
	var paths []string
	var confirm confirmDocumentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/documents/confirm" {
			if err := json.NewDecoder(r.Body).Decode(&confirm); err != nil {
				t.Fatalf("decode confirm: %v", err)
			}
		}
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := NewClient(config.CarrierConfig{BaseURL: server.URL, DDPAPIKey: "k", DDUAPIKey: "k"})
	doc := DocumentUpload{
		Reference:    "SP-REF-1",
		Tracking:     "TRK123",
		DocumentType: DocumentTypeInvoice,
		PDF:          []byte("%PDF-1.4 fake"),
	}
	if err := client.UploadDocument(context.Background(), constants.AccountTypeDDP, doc); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(paths) != 2 || paths[0] != "/documents" || paths[1] != "/documents/confirm" {
		t.Fatalf("unexpected call sequence: %v", paths)
	}
	if confirm.FilePath != "TRK123_1_SP-REF-1.pdf" {
		t.Fatalf("unexpected file path: %s", confirm.FilePath)
	}
}

func TestDocumentFilePath(t *testing.T) {
	doc := DocumentUpload{Reference: "R9", Tracking: "T7", DocumentType: DocumentTypeDeclaration}
	if got := doc.FilePath(); got != "T7_2_R9.pdf" {
		t.Fatalf("unexpected file path: %s", got)
	}
}
