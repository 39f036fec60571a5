package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hidecraft/storefront-webhooks/internal/config"
	ierr "github.com/hidecraft/storefront-webhooks/internal/errors"
	"github.com/hidecraft/storefront-webhooks/internal/httpclient"
	"github.com/hidecraft/storefront-webhooks/internal/logger"
)

// ShopifyClient defines the interface for Shopify admin API operations
type ShopifyClient interface {
	GetOrder(ctx context.Context, orderID int64) (*Order, error)
	FindOrderByName(ctx context.Context, name string) (*Order, error)
	UpdateOrder(ctx context.Context, orderID int64, tags, note string) error
}

// Client handles Shopify admin API calls. Calls are made once per request and
// deliberately not retried in process; webhook redelivery is the retry path.
type Client struct {
	shopDomain  string
	apiVersion  string
	accessToken string
	httpClient  httpclient.Client
	logger      *logger.Logger
}

// NewClient creates a new Shopify admin client
func NewClient(cfg *config.Configuration, httpClient httpclient.Client, log *logger.Logger) ShopifyClient {
	return &Client{
		shopDomain:  cfg.Shopify.ShopDomain,
		apiVersion:  cfg.Shopify.AdminAPIVersion,
		accessToken: cfg.Shopify.AdminAccessToken,
		httpClient:  httpClient,
		logger:      log,
	}
}

func (c *Client) baseURL() string {
	return fmt.Sprintf("https://%s/admin/api/%s", c.shopDomain, c.apiVersion)
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"X-Shopify-Access-Token": c.accessToken,
		"Content-Type":           "application/json",
	}
}

// GetOrder fetches a single order by its numeric ID
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	resp, err := c.httpClient.Send(ctx, &httpclient.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/orders/%d.json", c.baseURL(), orderID),
		Headers: c.headers(),
	})
	if err != nil {
		if httpErr, ok := httpclient.IsHTTPError(err); ok && httpErr.StatusCode == http.StatusNotFound {
			return nil, ierr.NewError("order not found").
				WithHintf("Order %d does not exist", orderID).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}

	var envelope orderEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse Shopify order response").
			Mark(ierr.ErrHTTPClient)
	}
	if envelope.Order == nil {
		return nil, ierr.NewError("order not found").
			WithHintf("Order %d does not exist", orderID).
			Mark(ierr.ErrNotFound)
	}
	return envelope.Order, nil
}

// FindOrderByName resolves an order by its customer-facing name, e.g. "#1042"
func (c *Client) FindOrderByName(ctx context.Context, name string) (*Order, error) {
	query := url.Values{}
	query.Set("name", name)
	query.Set("status", "any")

	resp, err := c.httpClient.Send(ctx, &httpclient.Request{
		Method:  http.MethodGet,
		URL:     fmt.Sprintf("%s/orders.json?%s", c.baseURL(), query.Encode()),
		Headers: c.headers(),
	})
	if err != nil {
		return nil, err
	}

	var envelope ordersEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to parse Shopify orders response").
			Mark(ierr.ErrHTTPClient)
	}
	if len(envelope.Orders) == 0 {
		return nil, ierr.NewError("order not found").
			WithHintf("No order matches name %s", name).
			Mark(ierr.ErrNotFound)
	}
	return &envelope.Orders[0], nil
}

// UpdateOrder sets the order's tags and note. Applying the same tags and note
// twice leaves the order in the same state, so callers may safely repeat it.
func (c *Client) UpdateOrder(ctx context.Context, orderID int64, tags, note string) error {
	body, err := json.Marshal(orderUpdateRequest{
		Order: orderUpdate{
			ID:   orderID,
			Tags: tags,
			Note: note,
		},
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to build order update request").
			Mark(ierr.ErrInternal)
	}

	_, err = c.httpClient.Send(ctx, &httpclient.Request{
		Method:  http.MethodPut,
		URL:     fmt.Sprintf("%s/orders/%d.json", c.baseURL(), orderID),
		Headers: c.headers(),
		Body:    body,
	})
	if err != nil {
		c.logger.Errorw("failed to update Shopify order",
			"order_id", orderID,
			"error", err)
		return err
	}

	return nil
}
