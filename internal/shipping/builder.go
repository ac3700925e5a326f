package shipping

import (
	"strings"

	"github.com/spedigo-next/internal/config"
)

// Party is one side of a shipment.
type Party struct {
	Name          string
	Email         string
	Phone         string
	Country       string
	Province      string
	City          string
	Postcode      string
	Street        string
	AttentionName string
}

// Package is one parcel.
type Package struct {
	WeightKG float64
	WidthCM  int
	HeightCM int
	DepthCM  int
}

// Content is the declared package content.
type Content struct {
	Description string
	Amount      string
}

// LabelRequest is the carrier-agnostic shipment request the orchestrator
// submits. The carrier client maps it onto its wire format.
type LabelRequest struct {
	MerchantReference string
	Sender            Party
	Receiver          Party
	Packages          []Package
	Content           Content
	IncludeCustoms    bool
}

// BuildLabelRequest assembles the shipment request from the order, the
// resolved sender profile and the destination classification. Pure: every
// input is passed in, defaults come from configuration.
func BuildLabelRequest(order *Order, profile SenderProfile, cls Classification, intent Intent, defaults config.ShippingConfig) *LabelRequest {
	address := order.ShippingAddress

	weightKG := float64(order.TotalWeight) / 1000.0
	if weightKG <= 0 {
		weightKG = defaults.DefaultWeightKG
	}

	description := defaults.FallbackDescription
	if len(order.LineItems) > 0 {
		if title := strings.TrimSpace(order.LineItems[0].Title); title != "" {
			description = title
		}
	}

	return &LabelRequest{
		MerchantReference: order.Name,
		Sender: Party{
			Name:     profile.Name,
			Email:    profile.Email,
			Phone:    profile.Phone,
			Country:  profile.Country,
			Province: profile.Province,
			City:     profile.City,
			Postcode: profile.Postcode,
			Street:   profile.Street,
		},
		Receiver: Party{
			Name:          address.ContactName(),
			Email:         strings.TrimSpace(order.Email),
			Phone:         strings.TrimSpace(address.Phone),
			Country:       order.CountryCode(),
			Province:      InferProvince(address.CountryCode, address.Zip, address.ProvinceValue()),
			City:          strings.TrimSpace(address.City),
			Postcode:      strings.TrimSpace(address.Zip),
			Street:        address.Street(),
			AttentionName: address.ContactName(),
		},
		Packages: []Package{{
			WeightKG: weightKG,
			WidthCM:  defaults.DefaultWidthCM,
			HeightCM: defaults.DefaultHeightCM,
			DepthCM:  defaults.DefaultDepthCM,
		}},
		Content: Content{
			Description: description,
			Amount:      defaults.DeclaredAmount,
		},
		IncludeCustoms: cls.RequiresCustoms && !intent.SkipAutoCustoms,
	}
}
