// Package sankhya provides token-authenticated access to the Sankhya ERP
// gateway, including the CRUDServiceProvider.loadRecords query service.
package sankhya

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/crm-assistant/internal/resilience"
)

const loadRecordsPath = "/gateway/v1/mge/service.sbr?serviceName=CRUDServiceProvider.loadRecords&outputType=json"

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for gateway calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithQueryTimeout sets the per-request timeout for authenticated calls.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRateLimit sets a per-second rate limit for gateway calls.
// A burst equal to the integer portion of rps is allowed.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// Client issues bearer-authenticated requests against the gateway.
type Client struct {
	baseURL string
	tokens  *TokenCache
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
}

// NewClient creates a Client that reads its token from tokens.
func NewClient(baseURL string, tokens *TokenCache, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    http.DefaultClient,
		timeout: 30 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the gateway root this client targets.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// Request POSTs payload as JSON to url with the cached bearer token and
// decodes the response into out (skipped when out is nil).
//
// A 401 or 403 invalidates the token and returns ErrSessionExpired. The call
// is not retried.
func (c *Client) Request(ctx context.Context, url string, payload, out any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "sankhya: rate limit wait")
	}

	tok, err := c.tokens.Get(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "sankhya: marshal request")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "sankhya: create request")
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "sankhya: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "sankhya: read response")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.tokens.Invalidate()
		return withKind(ErrSessionExpired, &resilience.StatusError{
			Service: "sankhya", StatusCode: resp.StatusCode, Body: string(respBody),
		})
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &resilience.StatusError{Service: "sankhya", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "sankhya: decode response")
	}
	return nil
}
