// Package fuseki is a thin client for an Apache Jena Fuseki server:
// health checks, SPARQL queries and updates, and bulk graph loading
// over the Graph Store Protocol.
package fuseki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/arda"
)

const (
	// DefaultBaseURL is the local Fuseki server.
	DefaultBaseURL = "http://localhost:3030"

	// DefaultDataset is the dataset name the loader targets.
	DefaultDataset = "tolkien"
)

// ErrUnavailable reports that the server could not be reached at all,
// as opposed to rejecting a particular request.
var ErrUnavailable = errors.New("fuseki server unavailable")

// Client talks to one dataset on one Fuseki server.
type Client struct {
	baseURL  string
	dataset  string
	httpc    *http.Client
	prefixes map[string]string
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithPrefixes overrides the namespace table prepended to every query
// and update.
func WithPrefixes(p map[string]string) Option {
	return func(c *Client) { c.prefixes = p }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client. Empty arguments select the defaults.
func NewClient(baseURL, dataset string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if dataset == "" {
		dataset = DefaultDataset
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		dataset:  dataset,
		httpc:    &http.Client{Timeout: 60 * time.Second},
		prefixes: arda.Prefixes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) queryEndpoint() string  { return c.baseURL + "/" + c.dataset + "/sparql" }
func (c *Client) updateEndpoint() string { return c.baseURL + "/" + c.dataset + "/update" }
func (c *Client) dataEndpoint() string   { return c.baseURL + "/" + c.dataset + "/data" }

// Ping checks server health via the admin ping endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/$/ping", nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ping returned HTTP %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// prologue renders the PREFIX declarations prepended to queries and
// updates, in stable order.
func (c *Client) prologue() string {
	keys := make([]string, 0, len(c.prefixes))
	for p := range c.prefixes {
		keys = append(keys, p)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, p := range keys {
		fmt.Fprintf(&sb, "PREFIX %s: <%s>\n", p, c.prefixes[p])
	}
	return sb.String()
}

// Value is one RDF term in a SPARQL JSON result.
type Value struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// Binding maps variable names to their bound terms for one result row.
type Binding map[string]Value

type sparqlResults struct {
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
	Boolean *bool `json:"boolean"`
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, endpoint, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// Query runs a SELECT query, with the prefix prologue prepended, and
// returns its rows.
func (c *Client) Query(ctx context.Context, q string) ([]Binding, error) {
	body, err := c.postForm(ctx, c.queryEndpoint(),
		url.Values{"query": {c.prologue() + q}}, "application/sparql-results+json")
	if err != nil {
		return nil, err
	}
	var out sparqlResults
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return out.Results.Bindings, nil
}

// Ask runs an ASK query and returns its boolean.
func (c *Client) Ask(ctx context.Context, q string) (bool, error) {
	body, err := c.postForm(ctx, c.queryEndpoint(),
		url.Values{"query": {c.prologue() + q}}, "application/sparql-results+json")
	if err != nil {
		return false, err
	}
	var out sparqlResults
	if err := json.Unmarshal(body, &out); err != nil {
		return false, fmt.Errorf("decode results: %w", err)
	}
	if out.Boolean == nil {
		return false, fmt.Errorf("ask query returned no boolean")
	}
	return *out.Boolean, nil
}

// Update runs a SPARQL update, with the prefix prologue prepended.
func (c *Client) Update(ctx context.Context, u string) error {
	_, err := c.postForm(ctx, c.updateEndpoint(),
		url.Values{"update": {c.prologue() + u}}, "")
	return err
}

// Load uploads the graph to the default graph of the dataset as Turtle.
// With replace set the existing contents are dropped first (HTTP PUT);
// otherwise statements are appended (HTTP POST).
func (c *Client) Load(ctx context.Context, g *graph.Graph, replace bool) error {
	var body strings.Builder
	if err := g.Serialize(&body, graph.FormatTurtle, c.prefixes); err != nil {
		return fmt.Errorf("serialize graph: %w", err)
	}

	method := http.MethodPost
	if replace {
		method = http.MethodPut
	}
	req, err := http.NewRequestWithContext(ctx, method, c.dataEndpoint()+"?default", strings.NewReader(body.String()))
	if err != nil {
		return fmt.Errorf("build load request: %w", err)
	}
	req.Header.Set("Content-Type", "text/turtle")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("load returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	c.logger.Info("graph loaded",
		slog.Int("triples", g.Len()), slog.String("dataset", c.dataset), slog.Bool("replace", replace))
	return nil
}

// CountTriples reports how many statements the default graph holds.
func (c *Client) CountTriples(ctx context.Context) (int, error) {
	rows, err := c.Query(ctx, "SELECT (COUNT(*) AS ?count) WHERE { ?s ?p ?o }")
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("count query returned no rows")
	}
	n, err := strconv.Atoi(rows[0]["count"].Value)
	if err != nil {
		return 0, fmt.Errorf("parse count %q: %w", rows[0]["count"].Value, err)
	}
	return n, nil
}
