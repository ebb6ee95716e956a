package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const apiBase = "https://api.stripe.com/v1"

// ErrNotConfigured means the gateway secret key is missing; card billing is
// optional and tenants can still renew manually.
var ErrNotConfigured = errors.New("billing gateway not configured")

// Client is a thin Stripe API client covering the three calls this service
// makes: customer creation, subscription checkout and the billing portal.
type Client struct {
	secretKey string
	http      *http.Client
	logger    *zap.Logger
}

// NewClient creates a billing gateway client. An empty secretKey yields a
// client whose calls return ErrNotConfigured.
func NewClient(secretKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		secretKey: secretKey,
		http:      &http.Client{Timeout: 15 * time.Second},
		logger:    logger,
	}
}

// Configured reports whether the gateway secret key is set.
func (c *Client) Configured() bool {
	return c.secretKey != ""
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiBase+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gateway %s: %s", path, apiErr.Error.Message)
		}
		return fmt.Errorf("gateway %s: status %d", path, resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

// CreateCustomer creates a gateway customer and returns its id.
func (c *Client) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/customers", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// CreateCheckoutSession starts a subscription-mode checkout and returns the
// hosted payment page URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	var out struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/checkout/sessions", form, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// CreatePortalSession opens a billing portal session for an existing customer.
func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("return_url", returnURL)
	var out struct {
		URL string `json:"url"`
	}
	if err := c.post(ctx, "/billing_portal/sessions", form, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}
