// Package httpclient is a small rate-limited JSON-over-HTTP client shared by the
// chain-id resolver, validator directory and exchange-rate provider.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	serrors "github.com/pushchain/push-stake-provider/stakeClient/errors"
)

const maxErrorBody = 512

// Opts is the set of options for a new Client.
type Opts struct {
	BaseURL    string
	Timeout    time.Duration
	RPS        float64
	Burst      int
	HTTPClient *http.Client
}

// Client performs throttled GET requests against a single base URL.
type Client struct {
	base    string
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a Client. RPS <= 0 disables throttling.
func New(o Opts) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}

	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	}

	limit := rate.Inf
	if o.RPS > 0 {
		limit = rate.Limit(o.RPS)
	}

	return &Client{
		base:    strings.TrimRight(o.BaseURL, "/"),
		client:  client,
		limiter: rate.NewLimiter(limit, o.Burst),
	}
}

// BaseURL returns the endpoint the client is bound to.
func (c *Client) BaseURL() string {
	return c.base
}

// GetJSON fetches base+path with query params and decodes the body into out.
// 404 responses map to NOT_FOUND, other non-2xx statuses and transport failures to NETWORK.
func (c *Client) GetJSON(ctx context.Context, op, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	target := c.base + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return serrors.NewValidationError(op, fmt.Sprintf("invalid request url %q: %v", target, err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return serrors.NewNetworkError(op, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return serrors.NewNotFoundError(op, fmt.Sprintf("%s returned 404", target))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return serrors.NewNetworkError(op, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil).
			WithContext("url", target).
			WithContext("body", string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return serrors.NewRPCError(op, "failed to decode response", err)
	}
	return nil
}
