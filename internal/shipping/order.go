package shipping

import "strings"

// Order is the inbound order-update event payload, reduced to the fields
// the pipeline reads.
type Order struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"` // merchant reference, e.g. "#35622"
	Email           string     `json:"email"`
	Tags            string     `json:"tags"` // comma-separated
	TotalWeight     int64      `json:"total_weight"` // grams
	CreatedAt       string     `json:"created_at"`
	ShippingAddress *Address   `json:"shipping_address"`
	LineItems       []LineItem `json:"line_items"`
}

// Address is the destination address as delivered on the event.
type Address struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Name         string `json:"name"`
	Address1     string `json:"address1"`
	Address2     string `json:"address2"`
	City         string `json:"city"`
	Zip          string `json:"zip"`
	Province     string `json:"province"`
	ProvinceCode string `json:"province_code"`
	CountryCode  string `json:"country_code"`
	Phone        string `json:"phone"`
}

// LineItem is one ordered product line.
type LineItem struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	VariantID int64  `json:"variant_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Grams     int64  `json:"grams"`
	Price     string `json:"price"`
}

// ContactName returns the receiver contact, preferring the combined name.
func (a *Address) ContactName() string {
	if a == nil {
		return ""
	}
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
}

// ProvinceValue returns whichever province field the event carried.
func (a *Address) ProvinceValue() string {
	if a == nil {
		return ""
	}
	if code := strings.TrimSpace(a.ProvinceCode); code != "" {
		return code
	}
	return strings.TrimSpace(a.Province)
}

// Street joins the address lines.
func (a *Address) Street() string {
	if a == nil {
		return ""
	}
	line1 := strings.TrimSpace(a.Address1)
	line2 := strings.TrimSpace(a.Address2)
	if line2 == "" {
		return line1
	}
	return line1 + " " + line2
}

// HasCompleteAddress reports whether the fields the carrier requires are all
// present. Incomplete addresses are skipped, not failed: the order may never
// be completed and erroring would only feed redelivery storms.
func (o *Order) HasCompleteAddress() bool {
	a := o.ShippingAddress
	if a == nil {
		return false
	}
	return strings.TrimSpace(a.CountryCode) != "" &&
		strings.TrimSpace(a.Address1) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.Zip) != ""
}

// CountryCode returns the destination country code.
func (o *Order) CountryCode() string {
	if o.ShippingAddress == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(o.ShippingAddress.CountryCode))
}
