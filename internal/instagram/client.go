package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/streetcode-platform/server/internal/config"
)

const (
	// DefaultBaseURL is the Instagram Basic Display API endpoint.
	DefaultBaseURL = "https://graph.instagram.com"
	// DefaultTimeout for HTTP requests
	DefaultTimeout = 10 * time.Second
	// DefaultFetchLimit caps how many posts one feed request returns.
	DefaultFetchLimit = 10
)

// Client proxies the project's Instagram feed so the access token never
// reaches the browser.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	fetchLimit  int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

func NewClient(cfg config.InstagramConfig, opts ...Option) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limit := cfg.FetchLimit
	if limit <= 0 {
		limit = DefaultFetchLimit
	}

	client := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		baseURL:     baseURL,
		accessToken: cfg.AccessToken,
		fetchLimit:  limit,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Post is one media entry from the account feed.
type Post struct {
	ID        string `json:"id"`
	Caption   string `json:"caption,omitempty"`
	MediaType string `json:"media_type"`
	MediaURL  string `json:"media_url"`
	Permalink string `json:"permalink"`
	Timestamp string `json:"timestamp"`
}

type feedResponse struct {
	Data  []Post `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Feed fetches the latest posts from the configured account.
func (c *Client) Feed(ctx context.Context) ([]Post, error) {
	if c.accessToken == "" {
		return nil, fmt.Errorf("instagram access token not configured")
	}

	params := url.Values{}
	params.Set("fields", "id,caption,media_type,media_url,permalink,timestamp")
	params.Set("access_token", c.accessToken)
	params.Set("limit", strconv.Itoa(c.fetchLimit))

	requestURL := fmt.Sprintf("%s/me/media?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var decoded feedResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode feed response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if decoded.Error != nil {
			return nil, fmt.Errorf("instagram API error (%d): %s", resp.StatusCode, decoded.Error.Message)
		}
		return nil, fmt.Errorf("instagram API error: status %d", resp.StatusCode)
	}

	return decoded.Data, nil
}
