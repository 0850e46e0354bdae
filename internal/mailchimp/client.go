package mailchimp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/VBurburan/mailchimp-mcp-server/internal/config"
)

// ErrNoAPIKey is returned before any network I/O when the client was
// built without a credential.
var ErrNoAPIKey = errors.New("no Mailchimp API key configured: set MAILCHIMP_API_KEY to a key of the form <key>-<region>, e.g. abc123-us14")

// defaultDatacenter is used when the key carries no region suffix.
const defaultDatacenter = "us1"

// HTTPDoer abstracts the HTTP client for testing. Callers that need
// retry or backoff wrap their own transport and inject it here; the
// client itself never retries.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a minimal Mailchimp v3 API client. It exposes a single
// Execute method; callers compose paths and decode bodies themselves.
// One instance is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPDoer
}

// NewClient creates a Mailchimp client from configuration. The API
// base URL is derived from the key's datacenter suffix unless an
// explicit base_url (e.g. the stub API) overrides it.
func NewClient(cfg config.MailchimpConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.api.mailchimp.com/3.0", Datacenter(cfg.APIKey))
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

// Datacenter extracts the datacenter from an API key. Mailchimp keys
// end in "-<dc>" ("abc123-us14" → "us14"); keys without the suffix
// fall back to us1.
func Datacenter(apiKey string) string {
	if i := strings.LastIndex(apiKey, "-"); i >= 0 && i+1 < len(apiKey) {
		return apiKey[i+1:]
	}
	return defaultDatacenter
}

// BaseURL returns the resolved API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Execute performs one API request and returns the raw response body.
// A nil body sends no payload. Responses without a body (204 from
// DELETE and the campaign actions) come back as an empty JSON object
// so callers always receive a document.
func (c *Client) Execute(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, respBody)
	}

	if resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return json.RawMessage(`{}`), nil
	}
	return json.RawMessage(respBody), nil
}

// APIError is a non-2xx response from the Mailchimp API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mailchimp API error (status %d): %s", e.StatusCode, e.Detail)
}

// newAPIError pulls the human-readable message out of a Mailchimp
// problem-detail body: detail first, then title. Non-JSON bodies
// (proxies, HTML error pages) produce a generic message.
func newAPIError(status int, body []byte) *APIError {
	var problem struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(body, &problem); err == nil {
		switch {
		case problem.Detail != "":
			detail = problem.Detail
		case problem.Title != "":
			detail = problem.Title
		}
	}
	if detail == "" {
		detail = fmt.Sprintf("request failed with status %d", status)
	}
	return &APIError{StatusCode: status, Detail: detail}
}
