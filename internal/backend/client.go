// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/shelfmark/internal/config"
	"github.com/tomtom215/shelfmark/internal/logging"
	"github.com/tomtom215/shelfmark/internal/metrics"
	"github.com/tomtom215/shelfmark/internal/models"
)

const (
	// maxResponseBodySize bounds a decoded collection.
	maxResponseBodySize = 32 << 20

	// maxRetryDelay caps both the exponential backoff and Retry-After.
	maxRetryDelay = 30 * time.Second

	// maxListPages bounds how many "next" links List follows.
	maxListPages = 100
)

// API is the set of backend operations the collection service depends on.
// Client and CircuitBreakerClient both implement it.
type API interface {
	List(ctx context.Context, resource string, params url.Values) ([]models.Record, error)
	Get(ctx context.Context, resource string, id int64) (models.Record, error)
	Create(ctx context.Context, resource string, body map[string]any) (models.Record, error)
	Update(ctx context.Context, resource string, id int64, body map[string]any) (models.Record, error)
	Patch(ctx context.Context, resource string, id int64, partial map[string]any) (models.Record, error)
	Delete(ctx context.Context, resource string, id int64) error
	Ping(ctx context.Context) error
}

// Client talks to the catalogue REST backend at /api/<resource>/.
//
// Features:
//   - Per-request timeout from BackendConfig.Timeout
//   - Outgoing token bucket (golang.org/x/time/rate)
//   - Automatic retry on HTTP 429 with exponential backoff honouring Retry-After
//   - No retry for any other status or transport error
//
// Thread Safety: Safe for concurrent use.
type Client struct {
	baseURL        *url.URL
	client         *http.Client
	limiter        *rate.Limiter
	resources      *models.Registry
	userAgent      string
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a backend client from configuration. The URL must already
// be validated by config.Load.
func NewClient(cfg *config.BackendConfig) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}

	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}
	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:        base,
		client:         &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(limit, burst),
		resources:      models.DefaultRegistry(),
		userAgent:      cfg.UserAgent,
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}, nil
}

// List fetches every record of a resource. params are passed through as the
// query string (q, author, category, ...). A paginated envelope is followed
// through its "next" links, up to maxListPages pages, as long as they stay on
// the backend's host.
func (c *Client) List(ctx context.Context, resource string, params url.Values) ([]models.Record, error) {
	if !c.resources.Has(resource) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}

	u := c.resourceURL(resource, 0, params)
	all := make([]models.Record, 0)
	for page := 1; ; page++ {
		var raw json.RawMessage
		if err := c.doURL(ctx, http.MethodGet, resource, u, nil, &raw); err != nil {
			return nil, err
		}
		recs, next, err := decodeList(raw)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
		if next == "" {
			return all, nil
		}
		if page >= maxListPages {
			logging.Ctx(ctx).Warn().
				Str("resource", resource).
				Int("pages", page).
				Int("records", len(all)).
				Msg("Backend list still paginated after page limit, collection truncated")
			return all, nil
		}
		if u, err = c.nextPageURL(u, next); err != nil {
			return nil, fmt.Errorf("list %s page %d: %w", resource, page+1, err)
		}
	}
}

// nextPageURL resolves a "next" link against the current page. Links that
// leave the backend's scheme and host are rejected.
func (c *Client) nextPageURL(current *url.URL, next string) (*url.URL, error) {
	ref, err := url.Parse(next)
	if err != nil {
		return nil, fmt.Errorf("parse next link: %w", err)
	}
	u := current.ResolveReference(ref)
	if u.Scheme != c.baseURL.Scheme || u.Host != c.baseURL.Host {
		return nil, fmt.Errorf("next link %s leaves backend host %s", u.Redacted(), c.baseURL.Host)
	}
	if u.User == nil {
		u.User = c.baseURL.User
	}
	return u, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, resource string, id int64) (models.Record, error) {
	var rec models.Record
	err := c.doRecord(ctx, http.MethodGet, resource, id, nil, &rec)
	return rec, err
}

// Create POSTs a new record and returns the backend's copy.
func (c *Client) Create(ctx context.Context, resource string, body map[string]any) (models.Record, error) {
	var rec models.Record
	err := c.do(ctx, http.MethodPost, resource, 0, nil, body, &rec)
	return rec, err
}

// Update replaces a record with PUT.
func (c *Client) Update(ctx context.Context, resource string, id int64, body map[string]any) (models.Record, error) {
	var rec models.Record
	err := c.doRecord(ctx, http.MethodPut, resource, id, body, &rec)
	return rec, err
}

// Patch changes only the fields in partial.
func (c *Client) Patch(ctx context.Context, resource string, id int64, partial map[string]any) (models.Record, error) {
	var rec models.Record
	err := c.doRecord(ctx, http.MethodPatch, resource, id, partial, &rec)
	return rec, err
}

// Delete removes a record. No request body is sent.
func (c *Client) Delete(ctx context.Context, resource string, id int64) error {
	return c.doRecord(ctx, http.MethodDelete, resource, id, nil, nil)
}

// Ping verifies the backend answers. Any response below 500 counts as alive;
// the lists resource is used because every backend serves it.
func (c *Client) Ping(ctx context.Context) error {
	params := url.Values{}
	params.Set("limit", "1")
	err := c.do(ctx, http.MethodGet, models.ResourceLists, 0, params, nil, nil)
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode < http.StatusInternalServerError {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ping backend: %w", err)
	}
	return nil
}

// resourcePath builds /api/<resource>/ or /api/<resource>/<id>/ under the
// base URL's own path prefix.
func (c *Client) resourcePath(resource string, id int64) string {
	p := c.baseURL.Path + "/api/" + url.PathEscape(resource) + "/"
	if id > 0 {
		p += strconv.FormatInt(id, 10) + "/"
	}
	return p
}

// doRecord runs a request addressed at one record.
func (c *Client) doRecord(ctx context.Context, method, resource string, id int64, body, out any) error {
	if id <= 0 {
		return fmt.Errorf("%s %s: %w (got %d)", method, resource, ErrInvalidID, id)
	}
	return c.do(ctx, method, resource, id, nil, body, out)
}

// do runs one logical request. body is JSON-encoded when non-nil and out is
// decoded from a 2xx response when non-nil.
func (c *Client) do(ctx context.Context, method, resource string, id int64, params url.Values, body, out any) error {
	if !c.resources.Has(resource) {
		return fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	return c.doURL(ctx, method, resource, c.resourceURL(resource, id, params), body, out)
}

// resourceURL builds the absolute URL of a resource or record.
func (c *Client) resourceURL(resource string, id int64, params url.Values) *url.URL {
	u := *c.baseURL
	u.Path = c.resourcePath(resource, id)
	u.RawQuery = params.Encode()
	return &u
}

// doURL sends one request to u and decodes a 2xx body into out.
func (c *Client) doURL(ctx context.Context, method, resource string, u *url.URL, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode %s body: %w", resource, err)
		}
	}

	resp, err := c.doRequestWithRateLimit(ctx, method, resource, u.String(), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{
			Method:     method,
			Path:       u.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(readBodyForError(resp.Body)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize)) //nolint:errcheck // drain for keep-alive
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, u.Path, err)
	}
	return nil
}

// doRequestWithRateLimit performs an HTTP request with automatic rate limit
// handling. HTTP 429 responses are retried up to maxRetries times with
// exponential backoff (base, 2*base, 4*base, ...) unless the response carries
// Retry-After. Waits are cancellable through ctx.
func (c *Client) doRequestWithRateLimit(ctx context.Context, method, resource, reqURL string, payload []byte) (*http.Response, error) {
	logger := logging.Ctx(ctx)

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s %s: wait for rate limiter: %w", method, resource, err)
		}

		var body io.Reader = http.NoBody
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			metrics.RecordBackendRequest(resource, method, 0, time.Since(start))
			return nil, fmt.Errorf("%s %s: HTTP request failed: %w", method, resource, err)
		}
		metrics.RecordBackendRequest(resource, method, resp.StatusCode, time.Since(start))

		logger.Debug().
			Str("method", method).
			Str("resource", resource).
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("Backend request")

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		retryAfter := resp.Header.Get("Retry-After")
		_ = resp.Body.Close() //nolint:errcheck // retrying anyway

		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("%s %s: %w after %d retries (HTTP 429)", method, resource, ErrRateLimited, c.maxRetries)
		}

		delay := backoffDelay(c.retryBaseDelay, attempt, retryAfter, time.Now())
		metrics.BackendRateLimitRetries.WithLabelValues(resource).Inc()
		logger.Warn().
			Str("resource", resource).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Backend rate limited, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

// backoffDelay returns the wait before retry attempt+1. A Retry-After header
// in seconds or HTTP-date form wins over the exponential schedule. The result
// is capped at maxRetryDelay.
func backoffDelay(base time.Duration, attempt int, retryAfter string, now time.Time) time.Duration {
	delay := base * time.Duration(1<<uint(attempt))

	if retryAfter = strings.TrimSpace(retryAfter); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
			delay = time.Duration(seconds) * time.Second
		} else if at, err := http.ParseTime(retryAfter); err == nil {
			delay = at.Sub(now)
			if delay < 0 {
				delay = 0
			}
		}
	}

	if delay > maxRetryDelay || delay < 0 {
		delay = maxRetryDelay
	}
	return delay
}

// decodeList accepts either a bare JSON array or a paginated envelope with a
// "results" array. next is the envelope's "next" link, empty on the last page.
func decodeList(raw json.RawMessage) (recs []models.Record, next string, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []models.Record{}, "", nil
	}

	if trimmed[0] == '{' {
		var page struct {
			Results []models.Record `json:"results"`
			Next    *string         `json:"next"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, "", fmt.Errorf("decode paginated list: %w", err)
		}
		if page.Next != nil {
			next = strings.TrimSpace(*page.Next)
		}
		if page.Results == nil {
			return []models.Record{}, next, nil
		}
		return page.Results, next, nil
	}

	if err := json.Unmarshal(trimmed, &recs); err != nil {
		return nil, "", fmt.Errorf("decode list: %w", err)
	}
	if recs == nil {
		recs = []models.Record{}
	}
	return recs, "", nil
}
