package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/arda"
	rdfns "github.com/mohamedmoudjahed/semantic-web/vocabulary/rdf"
	"github.com/mohamedmoudjahed/semantic-web/wiki"
)

// DefaultFandomAPIFormat is the per-language Fandom wiki API endpoint;
// the %s is the language code.
const DefaultFandomAPIFormat = "https://lotr.fandom.com/%s/api.php"

// DefaultFandomWikiFormat builds article URLs from the language code
// and the underscored title.
const DefaultFandomWikiFormat = "https://lotr.fandom.com/%s/wiki/%s"

// DefaultLanguages are the Fandom language editions consulted for
// translated labels.
var DefaultLanguages = []string{"fr", "de", "es"}

// DefaultMaxEntities caps how many entities one pass will query, since
// each costs one request per language.
const DefaultMaxEntities = 50

// Multilingual adds translated labels from the language editions of
// the Fandom wiki to characters, locations and artifacts.
type Multilingual struct {
	apiFormat  string
	wikiFormat string
	langs      []string
	max        int
	httpc      *http.Client
	gate       *wiki.Gate
	logger     *slog.Logger

	clients map[string]*wiki.Client
}

// MultilingualOption configures a Multilingual pass.
type MultilingualOption func(*Multilingual)

// WithLanguages overrides the language editions consulted.
func WithLanguages(langs []string) MultilingualOption {
	return func(m *Multilingual) { m.langs = langs }
}

// WithAPIFormat overrides the API endpoint format (tests point it at a
// local server).
func WithAPIFormat(format string) MultilingualOption {
	return func(m *Multilingual) { m.apiFormat = format }
}

// WithMaxEntities overrides the per-pass entity cap. Zero or negative
// means no cap.
func WithMaxEntities(n int) MultilingualOption {
	return func(m *Multilingual) { m.max = n }
}

// WithMultilingualHTTPClient replaces the HTTP client.
func WithMultilingualHTTPClient(h *http.Client) MultilingualOption {
	return func(m *Multilingual) { m.httpc = h }
}

// WithMultilingualGate replaces the shared rate gate.
func WithMultilingualGate(g *wiki.Gate) MultilingualOption {
	return func(m *Multilingual) { m.gate = g }
}

// WithMultilingualLogger sets the logger.
func WithMultilingualLogger(l *slog.Logger) MultilingualOption {
	return func(m *Multilingual) { m.logger = l }
}

// NewMultilingual creates a pass over the default Fandom editions.
func NewMultilingual(opts ...MultilingualOption) *Multilingual {
	m := &Multilingual{
		apiFormat:  DefaultFandomAPIFormat,
		wikiFormat: DefaultFandomWikiFormat,
		langs:      DefaultLanguages,
		max:        DefaultMaxEntities,
		httpc:      &http.Client{Timeout: 30 * time.Second},
		gate:       wiki.NewGate(500 * time.Millisecond),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.clients = make(map[string]*wiki.Client, len(m.langs))
	for _, lang := range m.langs {
		m.clients[lang] = wiki.NewClient(fmt.Sprintf(m.apiFormat, lang),
			wiki.WithGate(m.gate),
			wiki.WithHTTPClient(m.httpc),
			wiki.WithRetry(wiki.RetryConfig{MaxAttempts: 1}),
			wiki.WithLogger(m.logger),
		)
	}
	return m
}

// Apply queries each language edition for each labeled entity and adds
// a translated label plus a cross-reference when the edition knows the
// entity under a different name. A failure for one entity-language
// pair never stops the pass.
func (m *Multilingual) Apply(ctx context.Context, g *graph.Graph) Stats {
	entities, labels := labeledEntities(g, arda.Character, arda.Location, arda.Artifact)
	if m.max > 0 && len(entities) > m.max {
		entities = entities[:m.max]
		labels = labels[:m.max]
	}

	var stats Stats
	for i, entity := range entities {
		label := labels[i]
		for _, lang := range m.langs {
			if ctx.Err() != nil {
				return stats
			}
			if hasLabelIn(g, entity, lang) {
				continue
			}
			stats.Checked++

			hits, err := m.clients[lang].Search(ctx, label, 1)
			if err != nil {
				m.logger.Debug("fandom search failed",
					slog.String("lang", lang), slog.String("label", label), slog.String("error", err.Error()))
				continue
			}
			// A hit under the same name adds nothing new.
			if len(hits) == 0 || hits[0].Title == label {
				continue
			}
			stats.Matched++

			title := hits[0].Title
			if g.Add(graph.Triple{Subject: entity, Predicate: rdfns.Label, Object: graph.LangLiteral(title, lang)}) {
				stats.Triples++
			}
			// The translated name is duplicated on a domain property so
			// it shows up among the entity's own attributes.
			if g.Add(graph.Triple{Subject: entity, Predicate: arda.TranslatedName, Object: graph.LangLiteral(title, lang)}) {
				stats.Triples++
			}
			articleURL := fmt.Sprintf(m.wikiFormat, lang, strings.ReplaceAll(title, " ", "_"))
			if g.Add(graph.Triple{Subject: entity, Predicate: rdfns.SeeAlso, Object: graph.IRI(articleURL)}) {
				stats.Triples++
			}
		}
	}
	return stats
}

// hasLabelIn reports whether the entity already carries a label in the
// given language, in which case the edition is not consulted.
func hasLabelIn(g *graph.Graph, entity, lang string) bool {
	for _, term := range g.Objects(entity, rdfns.Label) {
		if term.Lang == lang {
			return true
		}
	}
	return false
}
