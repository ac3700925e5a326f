package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spedigo-next/internal/config"

	goshopify "github.com/bold-commerce/go-shopify/v3"
)

var ErrConfigInvalid = errors.New("shopify config invalid")

// Metafield is the namespace/key/value triple the pipeline reads and writes.
type Metafield struct {
	Namespace string
	Key       string
	Value     string
}

// API is the order-state surface the services depend on. The order record is
// the primary state store: tags are the control plane, metafields the data
// plane.
type API interface {
	OrderMetafields(ctx context.Context, orderID int64) ([]Metafield, error)
	WriteOrderMetafield(ctx context.Context, orderID int64, field Metafield) error
	ReplaceOrderTags(ctx context.Context, orderID int64, tags string) error
	ProductMetafields(ctx context.Context, productID int64) ([]Metafield, error)
}

// WebhookVerifier checks inbound webhook authenticity against the shared
// secret.
type WebhookVerifier interface {
	VerifyWebhookRequest(r *http.Request) bool
}

// Client wraps the Shopify Admin API.
type Client struct {
	sc  *goshopify.Client
	app goshopify.App
}

// NewClient builds the Admin API client from configuration.
func NewClient(cfg config.ShopifyConfig) (*Client, error) {
	if strings.TrimSpace(cfg.ShopName) == "" || strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, fmt.Errorf("%w: shop_name and access_token are required", ErrConfigInvalid)
	}
	app := goshopify.App{
		ApiKey:    cfg.APIKey,
		ApiSecret: cfg.WebhookSecret,
	}
	opts := []goshopify.Option{goshopify.WithRetry(0)}
	if v := strings.TrimSpace(cfg.APIVersion); v != "" {
		opts = append(opts, goshopify.WithVersion(v))
	}
	return &Client{
		sc:  goshopify.NewClient(app, cfg.ShopName, cfg.AccessToken, opts...),
		app: app,
	}, nil
}

// VerifyWebhookRequest checks the HMAC header against the raw body. The body
// is restored on the request after reading.
func (c *Client) VerifyWebhookRequest(r *http.Request) bool {
	return c.app.VerifyWebhookRequest(r)
}

// OrderMetafields lists the metafields persisted on an order.
func (c *Client) OrderMetafields(_ context.Context, orderID int64) ([]Metafield, error) {
	raw, err := c.sc.Order.ListMetafields(orderID, nil)
	if err != nil {
		return nil, fmt.Errorf("list order metafields: %w", err)
	}
	return convertMetafields(raw), nil
}

// WriteOrderMetafield creates the metafield, or updates it when the
// namespace/key pair already exists.
func (c *Client) WriteOrderMetafield(_ context.Context, orderID int64, field Metafield) error {
	existing, err := c.sc.Order.ListMetafields(orderID, nil)
	if err != nil {
		return fmt.Errorf("list order metafields: %w", err)
	}
	for _, m := range existing {
		if m.Namespace == field.Namespace && m.Key == field.Key {
			m.Value = field.Value
			if _, err := c.sc.Order.UpdateMetafield(orderID, m); err != nil {
				return fmt.Errorf("update order metafield %s/%s: %w", field.Namespace, field.Key, err)
			}
			return nil
		}
	}
	_, err = c.sc.Order.CreateMetafield(orderID, goshopify.Metafield{
		Namespace: field.Namespace,
		Key:       field.Key,
		Value:     field.Value,
		Type:      goshopify.MetafieldTypeSingleLineTextField,
	})
	if err != nil {
		return fmt.Errorf("create order metafield %s/%s: %w", field.Namespace, field.Key, err)
	}
	return nil
}

// ReplaceOrderTags overwrites the order's full tag string.
func (c *Client) ReplaceOrderTags(_ context.Context, orderID int64, tags string) error {
	if _, err := c.sc.Order.Update(goshopify.Order{ID: orderID, Tags: tags}); err != nil {
		return fmt.Errorf("update order tags: %w", err)
	}
	return nil
}

// ProductMetafields lists the metafields persisted on a product. Customs data
// (HS code, country of origin) lives here.
func (c *Client) ProductMetafields(_ context.Context, productID int64) ([]Metafield, error) {
	raw, err := c.sc.Product.ListMetafields(productID, nil)
	if err != nil {
		return nil, fmt.Errorf("list product metafields: %w", err)
	}
	return convertMetafields(raw), nil
}

func convertMetafields(raw []goshopify.Metafield) []Metafield {
	fields := make([]Metafield, 0, len(raw))
	for _, m := range raw {
		fields = append(fields, Metafield{
			Namespace: m.Namespace,
			Key:       m.Key,
			Value:     fmt.Sprintf("%v", m.Value),
		})
	}
	return fields
}

// FindMetafield returns the value for a namespace/key pair.
func FindMetafield(fields []Metafield, namespace, key string) (string, bool) {
	for _, f := range fields {
		if f.Namespace == namespace && f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}
