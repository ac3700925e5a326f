package spedirepro

import "fmt"

// Document types accepted by the carrier's document endpoint.
const (
	DocumentTypeInvoice     = 1
	DocumentTypeDeclaration = 2
)

// wireParty mirrors the carrier's address shape.
type wireParty struct {
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Country       string `json:"country"`
	Province      string `json:"province"`
	City          string `json:"city"`
	Postcode      string `json:"postcode"`
	Street        string `json:"street"`
	AttentionName string `json:"attention_name,omitempty"`
}

type wirePackage struct {
	Weight float64 `json:"weight"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Depth  int     `json:"depth"`
}

type wireContent struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type createShipmentRequest struct {
	MerchantReference string        `json:"merchant_reference"`
	Sender            wireParty     `json:"sender"`
	Receiver          wireParty     `json:"receiver"`
	Packages          []wirePackage `json:"packages"`
	Content           wireContent   `json:"content"`
	Customs           bool          `json:"customs"`
	CourierFallback   bool          `json:"courier_fallback"`
}

type createShipmentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Reference   string `json:"reference"`
		Tracking    string `json:"tracking"`
		TrackingURL string `json:"tracking_url"`
		LabelURL    string `json:"label_url"`
	} `json:"data"`
}

type confirmDocumentRequest struct {
	Reference    string `json:"reference"`
	Tracking     string `json:"tracking"`
	DocumentType int    `json:"document_type"`
	FilePath     string `json:"file_path"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CreateResult is the outcome of a successful label submission.
type CreateResult struct {
	Reference   string
	Tracking    string
	TrackingURL string
	LabelURL    string
}

// DocumentUpload is one customs document destined for the carrier.
type DocumentUpload struct {
	Reference    string
	Tracking     string
	DocumentType int
	PDF          []byte
}

// FilePath builds the server-side path the confirm call references. The
// carrier expects exactly "{tracking}_{documentType}_{reference}.pdf".
func (d DocumentUpload) FilePath() string {
	return fmt.Sprintf("%s_%d_%s.pdf", d.Tracking, d.DocumentType, d.Reference)
}

// TrackingEvent is the carrier's webhook callback payload.
type TrackingEvent struct {
	Event             string `json:"event"`
	Reference         string `json:"reference"`
	Tracking          string `json:"tracking"`
	MerchantReference string `json:"merchant_reference"`
	OccurredAt        string `json:"occurred_at"`
}
