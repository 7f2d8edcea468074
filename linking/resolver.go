package linking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mohamedmoudjahed/semantic-web/wiki"
)

const (
	// DefaultWikipediaAPI is the English Wikipedia MediaWiki endpoint.
	DefaultWikipediaAPI = "https://en.wikipedia.org/w/api.php"

	// DefaultWikidataAPI is the Wikidata MediaWiki endpoint.
	DefaultWikidataAPI = "https://www.wikidata.org/w/api.php"

	// DefaultSPARQLEndpoint is the public DBpedia SPARQL endpoint used
	// for existence checks.
	DefaultSPARQLEndpoint = "https://dbpedia.org/sparql"

	// DefaultInterval is the minimum spacing between outbound calls to
	// the external sources.
	DefaultInterval = 500 * time.Millisecond
)

// searchVariants are the disambiguating suffixes tried in order when
// searching Wikipedia for an entity name.
var searchVariants = []string{
	"%s",
	"%s (Middle-earth)",
	"%s (character)",
	"%s Tolkien",
	"%s Lord of the Rings",
}

// domainIndicators mark a Wikipedia title as belonging to the
// legendarium rather than a real-world namesake.
var domainIndicators = []string{
	"middle-earth", "tolkien", "lord of the rings", "hobbit",
	"silmarillion", "arda", "gondor", "rohan", "mordor",
	"(middle-earth)", "(tolkien)",
}

// Resolver finds external knowledge-base records for entity names. It
// shares one rate gate across Wikipedia, Wikidata and DBpedia calls and
// consults its cache before going to the network.
type Resolver struct {
	wikipediaAPI string
	wikidataAPI  string
	sparql       string
	httpc        *http.Client
	gate         *wiki.Gate
	retry        wiki.RetryConfig
	cache        *Cache
	logger       *slog.Logger

	wikipedia *wiki.Client
	wikidata  *wiki.Client
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithEndpoints overrides the Wikipedia API, Wikidata API and DBpedia
// SPARQL endpoints. Empty strings keep the defaults.
func WithEndpoints(wikipediaAPI, wikidataAPI, sparqlEndpoint string) ResolverOption {
	return func(r *Resolver) {
		if wikipediaAPI != "" {
			r.wikipediaAPI = wikipediaAPI
		}
		if wikidataAPI != "" {
			r.wikidataAPI = wikidataAPI
		}
		if sparqlEndpoint != "" {
			r.sparql = sparqlEndpoint
		}
	}
}

// WithResolverHTTPClient replaces the HTTP client used for all sources.
func WithResolverHTTPClient(h *http.Client) ResolverOption {
	return func(r *Resolver) { r.httpc = h }
}

// WithResolverGate replaces the shared rate gate.
func WithResolverGate(g *wiki.Gate) ResolverOption {
	return func(r *Resolver) { r.gate = g }
}

// WithResolverRetry overrides the retry behavior for both MediaWiki
// sources.
func WithResolverRetry(rc wiki.RetryConfig) ResolverOption {
	return func(r *Resolver) { r.retry = rc }
}

// WithResolverLogger sets the resolver logger.
func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) { r.logger = l }
}

// NewResolver creates a resolver over the public endpoints. A nil
// cache gets an in-memory one.
func NewResolver(cache *Cache, opts ...ResolverOption) *Resolver {
	if cache == nil {
		cache = NewCache("")
	}
	r := &Resolver{
		wikipediaAPI: DefaultWikipediaAPI,
		wikidataAPI:  DefaultWikidataAPI,
		sparql:       DefaultSPARQLEndpoint,
		httpc:        &http.Client{Timeout: 30 * time.Second},
		gate:         wiki.NewGate(DefaultInterval),
		retry:        wiki.DefaultRetryConfig(),
		cache:        cache,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	clientOpts := []wiki.Option{
		wiki.WithGate(r.gate),
		wiki.WithHTTPClient(r.httpc),
		wiki.WithRetry(r.retry),
		wiki.WithLogger(r.logger),
	}
	r.wikipedia = wiki.NewClient(r.wikipediaAPI, clientOpts...)
	r.wikidata = wiki.NewClient(r.wikidataAPI, clientOpts...)
	return r
}

// Cache exposes the resolver's cache for saving at shutdown.
func (r *Resolver) Cache() *Cache { return r.cache }

// Discover resolves every external identifier it can for a name. A
// cached name returns immediately without network traffic. Results are
// cached including misses, but an unreachable source leaves the name
// uncached so a later run can retry it.
func (r *Resolver) Discover(ctx context.Context, name string) Links {
	if links, ok := r.cache.Get(name); ok {
		return links
	}

	links := Links{}
	title := r.findWikipediaTitle(ctx, name)
	switch title.Outcome {
	case Found:
		links[KindWikipedia] = WikipediaURL(title.Value)
		links[KindDBpedia] = DBpediaURI(title.Value)
		links[KindYago] = YagoURI(title.Value)
		if wd := r.wikidataFromTitle(ctx, title.Value); wd.Contributed() {
			links[KindWikidata] = WikidataURI(wd.Value)
		}
	case NotFound:
		if wd := r.searchWikidata(ctx, name); wd.Contributed() {
			links[KindWikidata] = WikidataURI(wd.Value)
		}
	case SourceUnavailable:
		r.logger.Warn("wikipedia unreachable, skipping link discovery",
			slog.String("name", name))
		return links
	}

	r.cache.Put(name, links)
	return links
}

// findWikipediaTitle tries the search variants in order and returns the
// first hit that passes the relevance filter.
func (r *Resolver) findWikipediaTitle(ctx context.Context, name string) Result {
	var failures int
	for _, variant := range searchVariants {
		query := fmt.Sprintf(variant, name)
		hits, err := r.wikipedia.Search(ctx, query, 5)
		if err != nil {
			failures++
			r.logger.Debug("wikipedia search failed",
				slog.String("query", query), slog.String("error", err.Error()))
			continue
		}
		for _, hit := range hits {
			if relatedTitle(hit.Title, name) {
				return found(hit.Title)
			}
		}
	}
	if failures == len(searchVariants) {
		return unavailable()
	}
	return notFound()
}

// relatedTitle reports whether a Wikipedia title plausibly refers to
// the named legendarium entity rather than a real-world namesake.
func relatedTitle(title, name string) bool {
	t := strings.ToLower(title)
	n := strings.ToLower(name)
	words := strings.Fields(n)

	if !strings.Contains(t, n) && (len(words) == 0 || !strings.HasPrefix(t, words[0])) {
		return false
	}
	for _, ind := range domainIndicators {
		if strings.Contains(t, ind) {
			return true
		}
	}
	return t == n || strings.HasPrefix(t, n+" (")
}

// wikidataFromTitle resolves the Wikidata item ID attached to a
// Wikipedia page via its pageprops.
func (r *Resolver) wikidataFromTitle(ctx context.Context, title string) Result {
	var out struct {
		Query struct {
			Pages map[string]struct {
				PageProps struct {
					WikibaseItem string `json:"wikibase_item"`
				} `json:"pageprops"`
			} `json:"pages"`
		} `json:"query"`
	}
	params := url.Values{
		"action": {"query"},
		"titles": {title},
		"prop":   {"pageprops"},
		"ppprop": {"wikibase_item"},
	}
	if err := r.wikipedia.Query(ctx, params, &out); err != nil {
		return unavailable()
	}
	for _, page := range out.Query.Pages {
		if page.PageProps.WikibaseItem != "" {
			return found(page.PageProps.WikibaseItem)
		}
	}
	return notFound()
}

// searchWikidata falls back to Wikibase entity search when no Wikipedia
// page was found, accepting only items whose description sounds like
// the legendarium.
func (r *Resolver) searchWikidata(ctx context.Context, name string) Result {
	var out struct {
		Search []struct {
			ID          string `json:"id"`
			Description string `json:"description"`
		} `json:"search"`
	}
	params := url.Values{
		"action":   {"wbsearchentities"},
		"search":   {name},
		"language": {"en"},
		"type":     {"item"},
		"limit":    {"5"},
	}
	if err := r.wikidata.Query(ctx, params, &out); err != nil {
		return unavailable()
	}
	for _, hit := range out.Search {
		desc := strings.ToLower(hit.Description)
		for _, kw := range []string{"tolkien", "middle-earth", "lord of the rings", "fictional"} {
			if strings.Contains(desc, kw) {
				return found(hit.ID)
			}
		}
	}
	return notFound()
}

// VerifyDBpedia checks with an ASK query that a derived DBpedia
// resource actually has statements. Any failure to reach the endpoint
// reports true: derivation errs on the side of keeping the link.
func (r *Resolver) VerifyDBpedia(ctx context.Context, resourceURI string) bool {
	if err := r.gate.Wait(ctx); err != nil {
		return true
	}
	q := fmt.Sprintf("ASK WHERE { <%s> ?p ?o }", resourceURI)
	reqURL := r.sparql + "?" + url.Values{
		"query":  {q},
		"format": {"application/sparql-results+json"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return true
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return true
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return true
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return true
	}
	var out struct {
		Boolean *bool `json:"boolean"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.Boolean == nil {
		return true
	}
	return *out.Boolean
}

// WikipediaURL derives the article URL for a title.
func WikipediaURL(title string) string {
	return "https://en.wikipedia.org/wiki/" + escapePath(strings.ReplaceAll(title, " ", "_"), "/")
}

// DBpediaURI derives the DBpedia resource URI for a title. DBpedia
// resource names mirror Wikipedia titles with underscores, keeping
// parentheses and commas literal.
func DBpediaURI(title string) string {
	return "http://dbpedia.org/resource/" + escapePath(strings.ReplaceAll(title, " ", "_"), "(),")
}

// YagoURI derives the YAGO resource URI for a title.
func YagoURI(title string) string {
	return "http://yago-knowledge.org/resource/" + escapePath(strings.ReplaceAll(title, " ", "_"), "")
}

// WikidataURI builds the entity URI for a Wikidata item ID.
func WikidataURI(id string) string {
	return "http://www.wikidata.org/entity/" + id
}

// escapePath percent-escapes everything except unreserved characters
// and the extra set the target knowledge base keeps literal.
func escapePath(s, extra string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '_', c == '.', c == '-', c == '~':
			b.WriteByte(c)
		case strings.IndexByte(extra, c) >= 0:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
