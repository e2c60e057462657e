package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/streetcode-platform/server/internal/config"
)

const (
	// DefaultBaseURL is the Monobank merchant acquiring endpoint.
	DefaultBaseURL = "https://api.monobank.ua"
	// DefaultTimeout for HTTP requests
	DefaultTimeout = 10 * time.Second

	// CurrencyUAH is the ISO 4217 numeric code for hryvnia.
	CurrencyUAH = 980
)

// Client creates donation invoices through the Monobank merchant API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	redirect   string
	webhook    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func NewClient(cfg config.PaymentConfig, opts ...Option) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    baseURL,
		token:      cfg.Token,
		redirect:   cfg.RedirectURL,
		webhook:    cfg.WebhookURL,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// InvoiceParams describes a donation to turn into a payment invoice.
// Amount is in minor currency units (kopecks).
type InvoiceParams struct {
	Amount      int64
	Destination string
}

// Invoice is the created payment invoice the client is redirected to.
type Invoice struct {
	InvoiceID string
	PageURL   string
}

type invoiceRequest struct {
	Amount           int64  `json:"amount"`
	Currency         int    `json:"ccy"`
	RedirectURL      string `json:"redirectUrl,omitempty"`
	WebhookURL       string `json:"webHookUrl,omitempty"`
	MerchantPaymInfo struct {
		Destination string `json:"destination,omitempty"`
	} `json:"merchantPaymInfo"`
}

type invoiceResponse struct {
	InvoiceID string `json:"invoiceId"`
	PageURL   string `json:"pageUrl"`
	ErrorText string `json:"errText"`
}

// CreateInvoice creates a payment invoice and returns its id and payment page.
func (c *Client) CreateInvoice(ctx context.Context, params InvoiceParams) (*Invoice, error) {
	if params.Amount <= 0 {
		return nil, fmt.Errorf("invoice amount must be positive")
	}
	if c.token == "" {
		return nil, fmt.Errorf("payment token not configured")
	}

	payload := invoiceRequest{
		Amount:      params.Amount,
		Currency:    CurrencyUAH,
		RedirectURL: c.redirect,
		WebhookURL:  c.webhook,
	}
	payload.MerchantPaymInfo.Destination = params.Destination

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode invoice request: %w", err)
	}

	requestURL := c.baseURL + "/api/merchant/invoice/create"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var decoded invoiceResponse
	if err := json.Unmarshal(responseBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode invoice response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if decoded.ErrorText != "" {
			return nil, fmt.Errorf("payment API error (%d): %s", resp.StatusCode, decoded.ErrorText)
		}
		return nil, fmt.Errorf("payment API error: status %d", resp.StatusCode)
	}
	if decoded.InvoiceID == "" || decoded.PageURL == "" {
		return nil, fmt.Errorf("payment API returned incomplete invoice")
	}

	return &Invoice{InvoiceID: decoded.InvoiceID, PageURL: decoded.PageURL}, nil
}
