package spedirepro

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/spedigo-next/internal/config"
	"github.com/spedigo-next/internal/constants"
	"github.com/spedigo-next/internal/shipping"
)

var (
	ErrConfigInvalid   = errors.New("spedirepro config invalid")
	ErrRequestFailed   = errors.New("spedirepro request failed")
	ErrResponseInvalid = errors.New("spedirepro response invalid")
)

// APIError is a non-2xx answer from the carrier. The status and body are kept
// verbatim for the failure record; nothing retries on it.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spedirepro api error: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the SpedirePro v2 API. Two accounts exist at the carrier,
// one per incoterm; the account is selected per call by api key.
type Client struct {
	baseURL    string
	ddpAPIKey  string
	dduAPIKey  string
	httpClient *http.Client
}

// NewClient builds the carrier client from configuration.
func NewClient(cfg config.CarrierConfig) *Client {
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		ddpAPIKey:  strings.TrimSpace(cfg.DDPAPIKey),
		dduAPIKey:  strings.TrimSpace(cfg.DDUAPIKey),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) apiKey(accountType string) (string, error) {
	switch accountType {
	case constants.AccountTypeDDP:
		if c.ddpAPIKey == "" {
			return "", fmt.Errorf("%w: ddp api key missing", ErrConfigInvalid)
		}
		return c.ddpAPIKey, nil
	case constants.AccountTypeDDU:
		if c.dduAPIKey == "" {
			return "", fmt.Errorf("%w: ddu api key missing", ErrConfigInvalid)
		}
		return c.dduAPIKey, nil
	default:
		return "", fmt.Errorf("%w: unknown account type %q", ErrConfigInvalid, accountType)
	}
}

// CreateShipment submits a label request on the account matching accountType.
func (c *Client) CreateShipment(ctx context.Context, accountType string, req *shipping.LabelRequest) (*CreateResult, error) {
	key, err := c.apiKey(accountType)
	if err != nil {
		return nil, err
	}

	packages := make([]wirePackage, 0, len(req.Packages))
	for _, p := range req.Packages {
		packages = append(packages, wirePackage{
			Weight: p.WeightKG,
			Width:  p.WidthCM,
			Height: p.HeightCM,
			Depth:  p.DepthCM,
		})
	}

	payload := createShipmentRequest{
		MerchantReference: req.MerchantReference,
		Sender:            toWireParty(req.Sender),
		Receiver:          toWireParty(req.Receiver),
		Packages:          packages,
		Content: wireContent{
			Description: req.Content.Description,
			Amount:      req.Content.Amount,
		},
		Customs:         req.IncludeCustoms,
		CourierFallback: true,
	}

	respBytes, err := c.postJSON(ctx, key, "/shipments", payload)
	if err != nil {
		return nil, err
	}

	var resp createShipmentResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrResponseInvalid, resp.Message)
	}
	if resp.Data.Tracking == "" || resp.Data.Reference == "" {
		return nil, fmt.Errorf("%w: response missing tracking or reference", ErrResponseInvalid)
	}

	return &CreateResult{
		Reference:   resp.Data.Reference,
		Tracking:    resp.Data.Tracking,
		TrackingURL: resp.Data.TrackingURL,
		LabelURL:    resp.Data.LabelURL,
	}, nil
}

// UploadDocument pushes one customs PDF to the carrier. The API is two-phase:
// a multipart binary upload, then a confirm call that binds the uploaded file
// to the shipment by its constructed file path.
func (c *Client) UploadDocument(ctx context.Context, accountType string, doc DocumentUpload) error {
	key, err := c.apiKey(accountType)
	if err != nil {
		return err
	}
	if len(doc.PDF) == 0 {
		return fmt.Errorf("%w: empty document body", ErrConfigInvalid)
	}

	if err := c.uploadBinary(ctx, key, doc); err != nil {
		return err
	}

	confirm := confirmDocumentRequest{
		Reference:    doc.Reference,
		Tracking:     doc.Tracking,
		DocumentType: doc.DocumentType,
		FilePath:     doc.FilePath(),
	}
	respBytes, err := c.postJSON(ctx, key, "/documents/confirm", confirm)
	if err != nil {
		return err
	}

	var resp statusResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrResponseInvalid, resp.Message)
	}
	return nil
}

func (c *Client) uploadBinary(ctx context.Context, key string, doc DocumentUpload) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", doc.FilePath())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if _, err := part.Write(doc.PDF); err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/documents", &buf)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+key)

	body, err := c.do(req)
	if err != nil {
		return err
	}

	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrResponseInvalid, resp.Message)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, key, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

func toWireParty(p shipping.Party) wireParty {
	return wireParty{
		Name:          p.Name,
		Email:         p.Email,
		Phone:         p.Phone,
		Country:       p.Country,
		Province:      p.Province,
		City:          p.City,
		Postcode:      p.Postcode,
		Street:        p.Street,
		AttentionName: p.AttentionName,
	}
}
