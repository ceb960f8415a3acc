// Package invoicing provides a client for fetching outstanding invoices
// from the invoicing service's API.
package invoicing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/runwaydev/runway/internal/model"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	dateLayout     = "2006-01-02"

	// The service allows a handful of requests per second. The daemon
	// polls hourly but the TUI can refresh on demand, so throttle
	// client-side rather than trip the server's limiter.
	requestsPerSecond = 2

	cacheKey = "outstanding"
	cacheTTL = 5 * time.Minute
)

var (
	// ErrUnauthorized indicates the API key is expired or invalid.
	ErrUnauthorized = errors.New("invoicing: unauthorized (API key expired or invalid)")
	// ErrRateLimited indicates the service's rate limit was hit.
	ErrRateLimited = errors.New("invoicing: rate limited")
)

// Client fetches invoice data from the invoicing service.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	cache   *cache.Cache
}

// NewClient creates a client for the given base URL and API key.
// Returns nil if either is empty.
func NewClient(baseURL, apiKey string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	apiKey = strings.TrimSpace(apiKey)
	if baseURL == "" || apiKey == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		cache:   cache.New(cacheTTL, 10*time.Minute),
	}
}

// ListOutstanding returns all invoices not yet paid or written off.
// Results are cached briefly so a forecast rebuild right after an
// import does not hit the network twice.
func (c *Client) ListOutstanding(ctx context.Context) ([]model.ReceivableInvoice, error) {
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]model.ReceivableInvoice), nil
	}

	body, err := c.get(ctx, "/v1/invoices?status=outstanding")
	if err != nil {
		return nil, err
	}

	var raw invoiceListResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("invoicing: parsing invoices: %w", err)
	}

	invoices := make([]model.ReceivableInvoice, 0, len(raw.Invoices))
	for _, w := range raw.Invoices {
		inv, err := parseInvoice(w)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	c.cache.Set(cacheKey, invoices, cache.DefaultExpiration)
	return invoices, nil
}

// Ping verifies the base URL and API key are usable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "/v1/ping")
	return err
}

// get performs an authenticated GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("invoicing: waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("invoicing: creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "github.com/runwaydev/runway/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invoicing: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invoicing: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("invoicing: reading response: %w", err)
	}
	return body, nil
}

func parseInvoice(w wireInvoice) (model.ReceivableInvoice, error) {
	amount, err := decimal.NewFromString(w.Amount)
	if err != nil {
		return model.ReceivableInvoice{}, fmt.Errorf("invoicing: invoice %s amount %q: %w", w.ID, w.Amount, err)
	}

	issued, err := time.Parse(dateLayout, w.IssueDate)
	if err != nil {
		return model.ReceivableInvoice{}, fmt.Errorf("invoicing: invoice %s issue date %q: %w", w.ID, w.IssueDate, err)
	}

	inv := model.ReceivableInvoice{
		InvoiceID: w.ID,
		ClientID:  w.ClientID,
		Client:    w.ClientName,
		Amount:    amount,
		IssueDate: issued,
		Terms:     w.Terms,
		Status:    w.Status,
	}

	// Due date is optional; the collection estimator falls back to
	// payment terms when it is absent.
	if w.DueDate != "" {
		due, err := time.Parse(dateLayout, w.DueDate)
		if err != nil {
			return model.ReceivableInvoice{}, fmt.Errorf("invoicing: invoice %s due date %q: %w", w.ID, w.DueDate, err)
		}
		inv.DueDate = due
	}

	return inv, nil
}
