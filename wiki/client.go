// Package wiki is a read-only MediaWiki API client. It serializes all
// outbound requests through a shared rate gate and retries transient
// rate-limiting responses with linearly increasing backoff.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultAPIURL is the Tolkien Gateway API endpoint.
const DefaultAPIURL = "https://tolkiengateway.net/w/api.php"

// DefaultUserAgent identifies the harvester to the wiki operators.
const DefaultUserAgent = "TolkienKGBot/1.0 (Semantic Web Project)"

// RetryConfig holds retry behavior for transient API failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts per request.
	MaxAttempts int

	// RateLimitBackoff is multiplied by the attempt number after a 429.
	RateLimitBackoff time.Duration

	// TransientPause is slept after a network error before retrying.
	TransientPause time.Duration
}

// DefaultRetryConfig returns the retry defaults: three attempts, 429
// backoff at 5s/10s/15s, 2s after network errors.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:      3,
		RateLimitBackoff: 5 * time.Second,
		TransientPause:   2 * time.Second,
	}
}

// Client talks to one MediaWiki instance.
type Client struct {
	apiURL    string
	userAgent string
	httpc     *http.Client
	gate      *Gate
	retry     RetryConfig
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests use this
// to point at an httptest server).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithGate shares a rate gate with other clients so the per-source
// minimum delay holds across them.
func WithGate(g *Gate) Option {
	return func(c *Client) { c.gate = g }
}

// WithRetry overrides the retry configuration.
func WithRetry(r RetryConfig) Option {
	return func(c *Client) { c.retry = r }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the given API endpoint. An empty URL
// selects the Tolkien Gateway.
func NewClient(apiURL string, opts ...Option) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	c := &Client{
		apiURL:    apiURL,
		userAgent: DefaultUserAgent,
		httpc:     &http.Client{Timeout: 30 * time.Second},
		gate:      NewGate(time.Second),
		retry:     DefaultRetryConfig(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rateLimitError marks a 429 so the retry loop can back off linearly.
type rateLimitError struct {
	url string
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("rate limited by %s", e.url)
}

// request performs one API call with rate gating and retries, decoding
// the JSON response into out.
func (c *Client) request(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	reqURL := c.apiURL + "?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if err := c.gate.Wait(ctx); err != nil {
			return err
		}

		err := c.do(ctx, reqURL, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == c.retry.MaxAttempts {
			break
		}

		if _, limited := err.(*rateLimitError); limited {
			wait := time.Duration(attempt) * c.retry.RateLimitBackoff
			c.logger.Warn("rate limited, backing off",
				slog.Duration("wait", wait), slog.Int("attempt", attempt))
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
			continue
		}

		c.logger.Debug("transient API error, retrying",
			slog.String("error", err.Error()), slog.Int("attempt", attempt))
		if err := sleepCtx(ctx, c.retry.TransientPause); err != nil {
			return err
		}
	}
	return fmt.Errorf("api request failed after %d attempts: %w", c.retry.MaxAttempts, lastErr)
}

func (c *Client) do(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &rateLimitError{url: c.apiURL}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, c.apiURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Query performs a raw API call with the given parameters, decoding the
// JSON response into out. Rate gating and retries apply as usual. It is
// the escape hatch for actions the typed methods do not cover, such as
// Wikibase entity search.
func (c *Client) Query(ctx context.Context, params url.Values, out any) error {
	return c.request(ctx, params, out)
}

// PageWikitext fetches the raw markup of a page. A missing page returns
// ("", nil): not-found is an expected outcome.
func (c *Client) PageWikitext(ctx context.Context, title string) (string, error) {
	var out struct {
		Parse struct {
			Wikitext struct {
				Star string `json:"*"`
			} `json:"wikitext"`
		} `json:"parse"`
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	params := url.Values{
		"action": {"parse"},
		"page":   {title},
		"prop":   {"wikitext"},
	}
	if err := c.request(ctx, params, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		c.logger.Debug("page not found", slog.String("title", title), slog.String("code", out.Error.Code))
		return "", nil
	}
	return out.Parse.Wikitext.Star, nil
}

// CategoryMembers lists main-namespace page titles in a category,
// following continuation markers until limit titles are collected.
func (c *Client) CategoryMembers(ctx context.Context, category string, limit int) ([]string, error) {
	var members []string
	cont := map[string]string{}
	for len(members) < limit {
		batch := min(500, limit-len(members))
		params := url.Values{
			"action":      {"query"},
			"list":        {"categorymembers"},
			"cmtitle":     {"Category:" + category},
			"cmlimit":     {strconv.Itoa(batch)},
			"cmnamespace": {"0"},
		}
		for k, v := range cont {
			params.Set(k, v)
		}

		var out struct {
			Query struct {
				CategoryMembers []struct {
					Title string `json:"title"`
				} `json:"categorymembers"`
			} `json:"query"`
			Continue map[string]any `json:"continue"`
		}
		if err := c.request(ctx, params, &out); err != nil {
			return members, err
		}
		if len(out.Query.CategoryMembers) == 0 && out.Continue == nil {
			break
		}
		for _, m := range out.Query.CategoryMembers {
			members = append(members, m.Title)
		}
		if out.Continue == nil {
			break
		}
		cont = map[string]string{}
		for k, v := range out.Continue {
			cont[k] = fmt.Sprint(v)
		}
	}
	if len(members) > limit {
		members = members[:limit]
	}
	return members, nil
}

// SearchResult is one full-text search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Search runs a full-text search and returns ranked hits.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	var out struct {
		Query struct {
			Search []SearchResult `json:"search"`
		} `json:"query"`
	}
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {strconv.Itoa(limit)},
	}
	if err := c.request(ctx, params, &out); err != nil {
		return nil, err
	}
	return out.Query.Search, nil
}

// ImageURL resolves the direct binary URL for an uploaded file via the
// imageinfo API. Returns ("", nil) when the file is unknown.
func (c *Client) ImageURL(ctx context.Context, filename string) (string, error) {
	var out struct {
		Query struct {
			Pages map[string]struct {
				ImageInfo []struct {
					URL string `json:"url"`
				} `json:"imageinfo"`
			} `json:"pages"`
		} `json:"query"`
	}
	params := url.Values{
		"action": {"query"},
		"titles": {"File:" + filename},
		"prop":   {"imageinfo"},
		"iiprop": {"url"},
	}
	if err := c.request(ctx, params, &out); err != nil {
		return "", err
	}
	for id, page := range out.Query.Pages {
		if id == "-1" {
			continue
		}
		if len(page.ImageInfo) > 0 {
			return page.ImageInfo[0].URL, nil
		}
	}
	return "", nil
}
