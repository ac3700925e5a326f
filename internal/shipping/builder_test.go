package shipping

import (
	"testing"

	"github.com/spedigo-next/internal/config"
	"github.com/spedigo-next/internal/constants"
)

func testShippingDefaults() config.ShippingConfig {
	return config.ShippingConfig{
		DefaultWeightKG:     1.0,
		DefaultWidthCM:      30,
		DefaultHeightCM:     20,
		DefaultDepthCM:      10,
		DeclaredAmount:      "25.00",
		FallbackDescription: "Merchandise",
	}
}

func testProfile() SenderProfile {
	return SenderProfile{
		Code:     "MI",
		Name:     "Magazzino Milano",
		Email:    "magazzino-mi@example.com",
		Phone:    "+390200000000",
		Country:  "IT",
		Province: "MI",
		City:     "Milano",
		Postcode: "20121",
		Street:   "Via Monte Napoleone 1",
	}
}

func testOrder() *Order {
	return &Order{
		ID:          1001,
		Name:        "#35622",
		Email:       "buyer@example.com",
		TotalWeight: 2500,
		ShippingAddress: &Address{
			FirstName:   "Mario",
			LastName:    "Rossi",
			Address1:    "Via Roma 1",
			City:        "Torino",
			Zip:         "10121",
			CountryCode: "IT",
			Phone:       "+390110000000",
		},
		LineItems: []LineItem{
			{Title: "Leather Wallet", Quantity: 1},
			{Title: "Belt", Quantity: 2},
		},
	}
}

func TestBuildLabelRequestBasics(t *testing.T) {
	order := testOrder()
	cls := Classify(order.CountryCode())
	intent := Intent{Mode: ModeCreateLabel, SenderCode: "MI", AccountType: constants.AccountTypeDDP}

	req := BuildLabelRequest(order, testProfile(), cls, intent, testShippingDefaults())

	if req.MerchantReference != "#35622" {
		t.Fatalf("unexpected reference: %s", req.MerchantReference)
	}
	if req.Sender.City != "Milano" || req.Receiver.City != "Torino" {
		t.Fatalf("unexpected parties: %+v / %+v", req.Sender, req.Receiver)
	}
	if req.Receiver.Name != "Mario Rossi" {
		t.Fatalf("unexpected receiver name: %s", req.Receiver.Name)
	}
	if len(req.Packages) != 1 {
		t.Fatalf("expected one package, got %d", len(req.Packages))
	}
	if req.Packages[0].WeightKG != 2.5 {
		t.Fatalf("expected grams converted to kg, got %v", req.Packages[0].WeightKG)
	}
	if req.Content.Description != "Leather Wallet" {
		t.Fatalf("expected first line item title, got %s", req.Content.Description)
	}
	if req.IncludeCustoms {
		t.Fatalf("EU destination should not include customs")
	}
}

func TestBuildLabelRequestWeightFloor(t *testing.T) {
	order := testOrder()
	order.TotalWeight = 0
	req := BuildLabelRequest(order, testProfile(), Classify("IT"), Intent{}, testShippingDefaults())
	if req.Packages[0].WeightKG != 1.0 {
		t.Fatalf("expected default weight, got %v", req.Packages[0].WeightKG)
	}
}

func TestBuildLabelRequestFallbackDescription(t *testing.T) {
	order := testOrder()
	order.LineItems = nil
	req := BuildLabelRequest(order, testProfile(), Classify("IT"), Intent{}, testShippingDefaults())
	if req.Content.Description != "Merchandise" {
		t.Fatalf("expected fallback description, got %s", req.Content.Description)
	}
}

func TestBuildLabelRequestCustomsInclusion(t *testing.T) {
	order := testOrder()
	order.ShippingAddress.CountryCode = "US"

	req := BuildLabelRequest(order, testProfile(), Classify("US"), Intent{}, testShippingDefaults())
	if !req.IncludeCustoms {
		t.Fatalf("extra-EU destination should include customs")
	}

	req = BuildLabelRequest(order, testProfile(), Classify("US"), Intent{SkipAutoCustoms: true}, testShippingDefaults())
	if req.IncludeCustoms {
		t.Fatalf("NODOG intent should suppress automatic customs")
	}
}

func TestBuildLabelRequestProvinceInference(t *testing.T) {
	order := testOrder()
	order.ShippingAddress.Zip = "00187"
	req := BuildLabelRequest(order, testProfile(), Classify("IT"), Intent{}, testShippingDefaults())
	if req.Receiver.Province != "RM" {
		t.Fatalf("expected province inferred from CAP, got %s", req.Receiver.Province)
	}
}

func TestSenderRegistry(t *testing.T) {
	registry := NewSenderRegistry(config.SendersConfig{
		Profiles: map[string]config.SenderProfileConfig{
			"mi": {Name: "Magazzino Milano", Country: "it", City: "Milano"},
		},
	})
	profile, ok := registry.Resolve("MI")
	if !ok {
		t.Fatalf("expected lowercase config key to resolve")
	}
	if profile.Country != "IT" {
		t.Fatalf("expected normalized country, got %s", profile.Country)
	}
	if registry.Has("RM") {
		t.Fatalf("unexpected sender RM")
	}
}
