package linking

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedmoudjahed/semantic-web/wiki"
)

// newTestResolver points every endpoint at one httptest server and
// disables rate gating and cross-test delays.
func newTestResolver(t *testing.T, srv *httptest.Server, cache *Cache) *Resolver {
	t.Helper()
	return NewResolver(cache,
		WithResolverHTTPClient(srv.Client()),
		WithResolverGate(wiki.NewGate(0)),
		WithResolverRetry(wiki.RetryConfig{MaxAttempts: 1}),
		WithEndpoints(srv.URL+"/wikipedia", srv.URL+"/wikidata", srv.URL+"/sparql"),
	)
}

func searchResponse(titles ...string) string {
	type hit struct {
		Title string `json:"title"`
	}
	hits := make([]hit, len(titles))
	for i, title := range titles {
		hits[i] = hit{Title: title}
	}
	payload := map[string]any{"query": map[string]any{"search": hits}}
	data, _ := json.Marshal(payload)
	return string(data)
}

func TestDiscoverAcceptsDisambiguatedTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/wikipedia" && r.URL.Query().Get("list") == "search":
			// Plain "Gandalf" finds nothing; the variant does.
			if r.URL.Query().Get("srsearch") == "Gandalf (Middle-earth)" {
				fmt.Fprint(w, searchResponse("Gandalf (Middle-earth)"))
				return
			}
			fmt.Fprint(w, searchResponse())
		case r.URL.Path == "/wikipedia" && r.URL.Query().Get("prop") == "pageprops":
			fmt.Fprint(w, `{"query":{"pages":{"12":{"pageprops":{"wikibase_item":"Q177499"}}}}}`)
		default:
			fmt.Fprint(w, `{}`)
		}
	}))
	defer srv.Close()

	r := newTestResolver(t, srv, nil)
	links := r.Discover(context.Background(), "Gandalf")

	assert.Equal(t, "https://en.wikipedia.org/wiki/Gandalf_%28Middle-earth%29", links[KindWikipedia])
	assert.Equal(t, "http://dbpedia.org/resource/Gandalf_(Middle-earth)", links[KindDBpedia])
	assert.Equal(t, "http://www.wikidata.org/entity/Q177499", links[KindWikidata])
	assert.Contains(t, links[KindYago], "yago-knowledge.org/resource/Gandalf_")
}

func TestDiscoverRejectsUnrelatedTitles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/wikipedia":
			// A real-world namesake must not pass the filter.
			fmt.Fprint(w, searchResponse("Barliman's Bakery, Ohio"))
		case r.URL.Path == "/wikidata":
			fmt.Fprint(w, `{"search":[]}`)
		default:
			fmt.Fprint(w, `{}`)
		}
	}))
	defer srv.Close()

	r := newTestResolver(t, srv, nil)
	links := r.Discover(context.Background(), "Butterbur")
	assert.Empty(t, links)

	// The miss is remembered.
	cached, ok := r.Cache().Get("Butterbur")
	assert.True(t, ok)
	assert.Empty(t, cached)
}

func TestDiscoverWikidataFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/wikipedia":
			fmt.Fprint(w, searchResponse())
		case r.URL.Path == "/wikidata" && r.URL.Query().Get("action") == "wbsearchentities":
			fmt.Fprint(w, `{"search":[
				{"id":"Q1","description":"genus of plants"},
				{"id":"Q2","description":"fictional character in Tolkien's legendarium"}]}`)
		default:
			fmt.Fprint(w, `{}`)
		}
	}))
	defer srv.Close()

	r := newTestResolver(t, srv, nil)
	links := r.Discover(context.Background(), "Forlong")

	assert.Equal(t, "http://www.wikidata.org/entity/Q2", links[KindWikidata])
	assert.NotContains(t, links, KindWikipedia)
	assert.NotContains(t, links, KindDBpedia)
}

func TestDiscoverCacheHitMakesNoRequests(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, searchResponse("Gandalf (Middle-earth)"))
	}))
	defer srv.Close()

	cache := NewCache("")
	cache.Put("Gandalf", Links{KindWikipedia: "https://en.wikipedia.org/wiki/Gandalf"})

	r := newTestResolver(t, srv, cache)
	links := r.Discover(context.Background(), "Gandalf")

	assert.Equal(t, "https://en.wikipedia.org/wiki/Gandalf", links[KindWikipedia])
	assert.Zero(t, calls.Load(), "cached names must not touch the network")
}

func TestDiscoverDoesNotCacheUnavailableSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := newTestResolver(t, srv, nil)
	links := r.Discover(context.Background(), "Elrond")

	assert.Empty(t, links)
	_, ok := r.Cache().Get("Elrond")
	assert.False(t, ok, "an unreachable source must not poison the cache")
}

func TestVerifyDBpedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sparql" {
			http.NotFound(w, r)
			return
		}
		assert.Contains(t, r.URL.Query().Get("query"), "ASK WHERE")
		fmt.Fprint(w, `{"boolean":false}`)
	}))
	defer srv.Close()

	r := newTestResolver(t, srv, nil)
	assert.False(t, r.VerifyDBpedia(context.Background(), "http://dbpedia.org/resource/Nope"))
}

func TestVerifyDBpediaAssumesTrueOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := newTestResolver(t, srv, nil)
	assert.True(t, r.VerifyDBpedia(context.Background(), "http://dbpedia.org/resource/Gandalf"))
}

func TestURIDerivations(t *testing.T) {
	assert.Equal(t, "http://dbpedia.org/resource/Minas_Tirith", DBpediaURI("Minas Tirith"))
	assert.Equal(t, "http://dbpedia.org/resource/Gandalf_(wizard)", DBpediaURI("Gandalf (wizard)"))
	assert.Equal(t, "http://yago-knowledge.org/resource/Gandalf_%28wizard%29", YagoURI("Gandalf (wizard)"))
	assert.Equal(t, "https://en.wikipedia.org/wiki/Bilbo_Baggins", WikipediaURL("Bilbo Baggins"))
}

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links", "cache.json")

	c := NewCache(path)
	c.Put("Gandalf", Links{KindDBpedia: "http://dbpedia.org/resource/Gandalf"})
	c.Put("Nobody", Links{})
	require.NoError(t, c.Save())

	reloaded := NewCache(path)
	assert.Equal(t, 2, reloaded.Len())

	links, ok := reloaded.Get("Gandalf")
	require.True(t, ok)
	assert.Equal(t, "http://dbpedia.org/resource/Gandalf", links[KindDBpedia])

	miss, ok := reloaded.Get("Nobody")
	assert.True(t, ok, "empty results survive the round trip")
	assert.Empty(t, miss)
}

func TestCacheIgnoresCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := NewCache(path)
	assert.Zero(t, c.Len())
}
