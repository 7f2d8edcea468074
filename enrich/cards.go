package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/names"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/arda"
	rdfns "github.com/mohamedmoudjahed/semantic-web/vocabulary/rdf"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/schemaorg"
)

// DefaultCardsURL is the community JSON dump of Middle-earth: The
// Wizards card data.
const DefaultCardsURL = "https://raw.githubusercontent.com/rezwits/meccg/master/resources/public/data/metw.json"

// DefaultFuzzyThreshold is the minimum name similarity for a fuzzy
// card match.
const DefaultFuzzyThreshold = 0.9

// Record is a loose JSON object. Card dumps vary in key casing and
// sometimes nest language maps, so fields are read through First
// rather than a fixed struct.
type Record map[string]any

// First returns the first present, non-empty value among the given
// keys. Language maps yield their English entry; numbers render in
// their shortest decimal form.
func (r Record) First(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case map[string]any:
			if s, ok := t["en"].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// Card is one playable card with the fields the graph cares about.
type Card struct {
	Name    string
	Text    string
	Type    string
	Set     string
	Prowess string
	Body    string
}

func cardFromRecord(r Record) Card {
	return Card{
		Name:    r.First("name", "Name", "NameEN", "nameEN", "title"),
		Text:    r.First("text", "Text", "TextEN", "textEN"),
		Type:    r.First("type", "Type", "Primary", "primary"),
		Set:     r.First("set", "Set", "setName", "released"),
		Prowess: r.First("prowess", "Prowess"),
		Body:    r.First("body", "Body"),
	}
}

// ParseCards flattens a card dump of any nesting shape into cards.
// An object counts as a card when it has a name; container objects
// around the card arrays are walked through.
func ParseCards(data []byte) ([]Card, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse card dump: %w", err)
	}
	var cards []Card
	flattenCards(root, &cards)
	return cards, nil
}

func flattenCards(v any, out *[]Card) {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			flattenCards(e, out)
		}
	case map[string]any:
		card := cardFromRecord(Record(t))
		if card.Name != "" && (card.Text != "" || card.Type != "") {
			*out = append(*out, card)
			return
		}
		for _, e := range t {
			flattenCards(e, out)
		}
	}
}

// LoadCards fetches the card dump, preferring a previously downloaded
// copy at cachePath. A fresh download is written back to cachePath on
// a best-effort basis.
func LoadCards(ctx context.Context, httpc *http.Client, srcURL, cachePath string) ([]Card, error) {
	if cachePath != "" {
		if data, err := os.ReadFile(cachePath); err == nil {
			return ParseCards(data)
		}
	}
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if srcURL == "" {
		srcURL = DefaultCardsURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build card request: %w", err)
	}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download cards: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download cards: HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read cards: %w", err)
	}
	if cachePath != "" {
		if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err == nil {
			if err := os.WriteFile(cachePath, data, 0o644); err != nil {
				slog.Debug("card cache write failed", slog.String("error", err.Error()))
			}
		}
	}
	return ParseCards(data)
}

// CardIRI mints the resource IRI for a card.
func CardIRI(name string) string {
	return arda.CardNamespace + names.Slug(name)
}

// ApplyCards links character entities to their card and asserts the
// card's own statements. Matching is by normalized name, exact first,
// then the best fuzzy match at or above threshold.
func ApplyCards(g *graph.Graph, cards []Card, threshold float64, logger *slog.Logger) Stats {
	if logger == nil {
		logger = slog.Default()
	}
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}

	index := make(map[string]Card, len(cards))
	var keys []string
	for _, c := range cards {
		n := names.Normalize(c.Name)
		if n == "" {
			continue
		}
		if _, dup := index[n]; !dup {
			index[n] = c
			keys = append(keys, n)
		}
	}

	var stats Stats
	entities, labels := characterEntities(g)
	for i, entity := range entities {
		stats.Checked++
		norm := names.Normalize(labels[i])

		card, ok := index[norm]
		if !ok {
			best := 0.0
			for _, k := range keys {
				if sim := names.Similarity(norm, k); sim >= threshold && sim > best {
					best = sim
					card = index[k]
					ok = true
				}
			}
		}
		if !ok {
			continue
		}
		stats.Matched++
		stats.Triples += addCardStatements(g, entity, card)
		logger.Debug("card matched", slog.String("entity", entity), slog.String("card", card.Name))
	}
	return stats
}

func addCardStatements(g *graph.Graph, entity string, card Card) int {
	cardIRI := CardIRI(card.Name)
	added := 0
	add := func(subject, predicate string, object graph.Term) {
		if g.Add(graph.Triple{Subject: subject, Predicate: predicate, Object: object}) {
			added++
		}
	}

	add(entity, arda.MetwCard, graph.IRI(cardIRI))
	add(cardIRI, rdfns.Type, graph.IRI(arda.METWCard))
	add(cardIRI, rdfns.Label, graph.LangLiteral(card.Name, "en"))

	if card.Type != "" {
		add(cardIRI, arda.CardType, graph.Literal(card.Type))
	}
	if card.Set != "" {
		add(cardIRI, arda.CardSet, graph.Literal(card.Set))
	}
	if text := stripHTML(card.Text); text != "" {
		add(cardIRI, schemaorg.Description, graph.Literal(text))
	}
	if n, err := strconv.Atoi(strings.TrimSpace(card.Prowess)); err == nil {
		add(cardIRI, arda.Prowess, graph.TypedLiteral(strconv.Itoa(n), rdfns.XSDInteger))
	}
	if n, err := strconv.Atoi(strings.TrimSpace(card.Body)); err == nil {
		add(cardIRI, arda.Body, graph.TypedLiteral(strconv.Itoa(n), rdfns.XSDInteger))
	}
	return added
}

// stripHTML reduces card text, which mixes HTML markup into rules
// prose, to plain text with collapsed whitespace.
func stripHTML(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsRune(s, '<') {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(b.String()), " ")
}
