// Package maya is the HTTP client of the Maya hosted checkout and payments APIs.
package maya

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amirhossein-jamali/pos-checkout/internal/domain/entity"
	errs "github.com/amirhossein-jamali/pos-checkout/internal/domain/error"
	coreport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/core"
	gatewayport "github.com/amirhossein-jamali/pos-checkout/internal/domain/port/gateway"
	"github.com/shopspring/decimal"
)

// DefaultTimeout is the per-request timeout used when none is configured
const DefaultTimeout = 15 * time.Second

// Operation names used in logs, errors and metrics
const (
	OpCreateCheckout        = "create_checkout"
	OpGetCheckout           = "get_checkout"
	OpGetPaymentByReference = "get_payment_by_reference"
	OpGetPayment            = "get_payment"
	OpGetPaymentStatus      = "get_payment_status"
)

// maxErrorBody bounds how much of a failed response is kept for logs
const maxErrorBody = 512

// Config holds the provider credentials and endpoint
type Config struct {
	PublicKey string
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

// Client implements gateway.PaymentGateway against the Maya REST API.
// Checkout endpoints authenticate with the public key, payment endpoints
// with the secret key; both as basic auth with an empty password.
type Client struct {
	httpClient   *http.Client
	cfg          Config
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	metrics      coreport.Metrics
}

var _ gatewayport.PaymentGateway = (*Client)(nil)

// NewClient validates the credentials and creates a client
func NewClient(cfg Config, timeProvider coreport.TimeProvider, logger coreport.Logger, metrics coreport.Metrics) (*Client, error) {
	if cfg.PublicKey == "" || cfg.SecretKey == "" || cfg.BaseURL == "" {
		return nil, errs.ErrGatewayNotConfigured
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		cfg:          cfg,
		timeProvider: timeProvider,
		logger:       logger,
		metrics:      metrics,
	}, nil
}

// amount values are sent as JSON numbers with two decimals
type amount struct {
	Value    json.Number `json:"value"`
	Currency string      `json:"currency,omitempty"`
}

type checkoutItem struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Code        string `json:"code"`
	Currency    string `json:"currency"`
	Amount      amount `json:"amount"`
	TotalAmount amount `json:"totalAmount"`
}

type checkoutPayload struct {
	TotalAmount            amount `json:"totalAmount"`
	RequestReferenceNumber string `json:"requestReferenceNumber"`
	RedirectURL            struct {
		Success string `json:"success"`
		Failure string `json:"failure"`
		Cancel  string `json:"cancel"`
	} `json:"redirectUrl"`
	Buyer struct {
		FirstName string `json:"firstName"`
		Contact   struct {
			Email string `json:"email,omitempty"`
		} `json:"contact"`
	} `json:"buyer"`
	Items []checkoutItem `json:"items"`
}

type checkoutResponse struct {
	CheckoutID  string `json:"checkoutId"`
	RedirectURL string `json:"redirectUrl"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(entity.FormatMoney(d))
}

func newCheckoutPayload(req gatewayport.CheckoutRequest) checkoutPayload {
	var p checkoutPayload
	p.TotalAmount = amount{Value: money(req.Total), Currency: req.Currency}
	p.RequestReferenceNumber = req.Reference
	p.RedirectURL.Success = req.SuccessURL
	p.RedirectURL.Failure = req.FailureURL
	p.RedirectURL.Cancel = req.CancelURL
	p.Buyer.FirstName = req.BuyerName
	p.Buyer.Contact.Email = req.BuyerEmail

	p.Items = make([]checkoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		p.Items = append(p.Items, checkoutItem{
			Name:        item.Name,
			Quantity:    item.Quantity,
			Code:        item.Code,
			Currency:    req.Currency,
			Amount:      amount{Value: money(item.Price)},
			TotalAmount: amount{Value: money(item.Total)},
		})
	}
	return p
}

// CreateCheckout opens a hosted checkout session
func (c *Client) CreateCheckout(ctx context.Context, req gatewayport.CheckoutRequest) (*gatewayport.CheckoutSession, error) {
	body, err := json.Marshal(newCheckoutPayload(req))
	if err != nil {
		return nil, errs.NewGatewayError(OpCreateCheckout, 0, err)
	}

	raw, found, err := c.do(ctx, OpCreateCheckout, http.MethodPost, "/checkout/v1/checkouts", c.cfg.PublicKey, body)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errs.NewGatewayError(OpCreateCheckout, http.StatusNotFound, errors.New("checkout endpoint not found"))
	}

	var resp checkoutResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, errs.NewGatewayError(OpCreateCheckout, 0, fmt.Errorf("decode response: %w", err))
	}
	if resp.CheckoutID == "" {
		return nil, errs.NewGatewayError(OpCreateCheckout, 0, errors.New("response has no checkoutId"))
	}

	c.logger.Info("Gateway checkout created", map[string]any{
		"reference":   req.Reference,
		"checkout_id": resp.CheckoutID,
	})
	return &gatewayport.CheckoutSession{CheckoutID: resp.CheckoutID, RedirectURL: resp.RedirectURL}, nil
}

// GetCheckout fetches a checkout session by id
func (c *Client) GetCheckout(ctx context.Context, checkoutID string) (entity.PaymentRecord, error) {
	return c.lookup(ctx, OpGetCheckout, "/checkout/v1/checkouts/"+url.PathEscape(checkoutID), c.cfg.PublicKey)
}

// GetPaymentByReference fetches the payment issued for a request reference number
func (c *Client) GetPaymentByReference(ctx context.Context, reference string) (entity.PaymentRecord, error) {
	return c.lookup(ctx, OpGetPaymentByReference, "/payments/v1/payment-rrns/"+url.PathEscape(reference), c.cfg.SecretKey)
}

// GetPayment fetches a payment by id
func (c *Client) GetPayment(ctx context.Context, paymentID string) (entity.PaymentRecord, error) {
	return c.lookup(ctx, OpGetPayment, "/payments/v1/payments/"+url.PathEscape(paymentID), c.cfg.SecretKey)
}

// GetPaymentStatus fetches the status document of a payment
func (c *Client) GetPaymentStatus(ctx context.Context, paymentID string) (entity.PaymentRecord, error) {
	return c.lookup(ctx, OpGetPaymentStatus, "/payments/v1/payments/"+url.PathEscape(paymentID)+"/status", c.cfg.SecretKey)
}

// lookup runs a GET and decodes the body into a record. A 404 yields nil.
func (c *Client) lookup(ctx context.Context, op, path, key string) (entity.PaymentRecord, error) {
	raw, found, err := c.do(ctx, op, http.MethodGet, path, key, nil)
	if err != nil || !found {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, errs.NewGatewayError(op, 0, fmt.Errorf("decode response: %w", err))
	}
	return entity.NewPaymentRecord(decoded), nil
}

// do sends one request. found is false on 404; any other non-2xx status is an error.
func (c *Client) do(ctx context.Context, op, method, path, key string, body []byte) (raw []byte, found bool, err error) {
	start := c.timeProvider.Now()
	status := "error"
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordGatewayRequest(op, status, c.timeProvider.Since(start).Std())
		}
	}()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return nil, false, errs.NewGatewayError(op, 0, err)
	}
	req.SetBasicAuth(key, "")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Gateway request failed", map[string]any{
			"operation": op,
			"error":     err.Error(),
		})
		return nil, false, errs.NewGatewayError(op, 0, err)
	}
	defer resp.Body.Close()

	status = strconv.Itoa(resp.StatusCode)
	raw, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, errs.NewGatewayError(op, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.logger.Debug("Gateway resource not found", map[string]any{
			"operation": op,
			"path":      path,
		})
		return nil, false, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet := raw
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		c.logger.Warn("Gateway returned an error status", map[string]any{
			"operation":   op,
			"status_code": resp.StatusCode,
			"body":        string(snippet),
		})
		return nil, false, errs.NewGatewayError(op, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	return raw, true, nil
}
