// Package omdb looks up movie ratings from the OMDb API.
package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"

	"github.com/lepinkainen/flicklog/internal/cache"
	"github.com/lepinkainen/flicklog/internal/errors"
	"github.com/lepinkainen/flicklog/internal/ratelimit"
)

const (
	defaultBaseURL = "http://www.omdbapi.com"
	defaultTimeout = 5 * time.Second
	// OMDb free tier allows 1000 requests/day; 1 req/sec keeps us polite.
	defaultRatePerSecond = 1

	requestLimitMessage = "Request limit reached!"
)

// ErrNoAPIKey is returned by lookups when no API key is configured.
var ErrNoAPIKey = eris.New("omdb: API key not configured")

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is an OMDb API client. After the daily quota is hit it refuses
// further requests for its lifetime.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  HTTPDoer
	rateLimiter *ratelimit.Limiter
	cache       *cache.DB
	limited     atomic.Bool
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// NewClient creates a new OMDb client with a 5 second request timeout.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:      apiKey,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		rateLimiter: ratelimit.New("OMDB", defaultRatePerSecond),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(client *Client) {
		if c != nil {
			client.httpClient = c
		}
	}
}

// WithTimeout replaces the default HTTP client with one using timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(client *Client) {
		if timeout > 0 {
			client.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithBaseURL sets a custom base URL for the OMDb API.
func WithBaseURL(base string) Option {
	return func(client *Client) {
		if base != "" {
			client.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithRateLimiter sets a custom rate limiter for the client.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		if limiter != nil {
			client.rateLimiter = limiter
		}
	}
}

// WithCache enables caching of successful lookups in db.
func WithCache(db *cache.DB) Option {
	return func(client *Client) {
		client.cache = db
	}
}

// RequestsAllowed reports whether the client still sends requests.
func (c *Client) RequestsAllowed() bool {
	return !c.limited.Load()
}

func (c *Client) markRateLimited() {
	if c.limited.CompareAndSwap(false, true) {
		slog.Warn("OMDB API rate limit reached; skipping further OMDB requests for this run")
	}
}

// LookupRatings fetches the title response for title and year. year is sent
// only when it is a four-digit year. A nil response with a nil error means
// OMDb had no match.
func (c *Client) LookupRatings(ctx context.Context, title, year string) (*Response, error) {
	return c.lookup(ctx, title, year, false)
}

// Ratings is LookupRatings followed by ExtractRatings. found is false when
// OMDb had no match.
func (c *Client) Ratings(ctx context.Context, title, year string) (Ratings, bool, error) {
	return ratingsOf(c.lookup(ctx, title, year, false))
}

// RefreshRatings is Ratings without reading the cache. A match replaces the
// cached response, so later cached lookups see the new ratings.
func (c *Client) RefreshRatings(ctx context.Context, title, year string) (Ratings, bool, error) {
	return ratingsOf(c.lookup(ctx, title, year, true))
}

func ratingsOf(resp *Response, err error) (Ratings, bool, error) {
	if err != nil || resp == nil {
		return Ratings{}, false, err
	}
	return ExtractRatings(resp), true, nil
}

func (c *Client) lookup(ctx context.Context, title, year string, refresh bool) (*Response, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if !c.RequestsAllowed() {
		return nil, errors.NewRateLimitError("omdb", "request limit reached")
	}

	key := fmt.Sprintf("title_%s_%s", cache.NormalizeKey(title), yearParam(year))
	fetch := func() (*Response, error) {
		return c.fetchByTitleYear(ctx, title, year)
	}
	matched := func(r *Response) bool {
		return r != nil
	}

	var resp *Response
	var err error
	if refresh {
		resp, err = cache.Refresh(c.cache, cache.OMDBTable, key, fetch, matched)
	} else {
		resp, _, err = cache.GetOrFetch(c.cache, cache.OMDBTable, key, fetch, matched)
	}
	if errors.IsRateLimitError(err) {
		c.markRateLimited()
	}
	return resp, err
}

func yearParam(year string) string {
	if len(year) != 4 {
		return ""
	}
	for _, r := range year {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return year
}

func (c *Client) fetchByTitleYear(ctx context.Context, title, year string) (*Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("t", title)
	params.Set("apikey", c.apiKey)
	if y := yearParam(year); y != "" {
		params.Set("y", y)
	}

	slog.Debug("Fetching OMDB data by title and year", "title", title, "year", year)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "omdb: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "omdb: fetch data")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "omdb: read response")
	}

	var omdbResp Response
	decodeErr := json.Unmarshal(body, &omdbResp)
	if omdbResp.Error == requestLimitMessage {
		return nil, errors.NewRateLimitError("omdb", "request limit reached")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb: unexpected status %d for %q", resp.StatusCode, title)
	}
	if decodeErr != nil {
		return nil, eris.Wrap(decodeErr, "omdb: decode response")
	}

	if omdbResp.Response == "False" {
		slog.Debug("No OMDB match", "title", title, "year", year, "reason", omdbResp.Error)
		return nil, nil
	}

	return &omdbResp, nil
}
