package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/rdf"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/arda"
	rdfns "github.com/mohamedmoudjahed/semantic-web/vocabulary/rdf"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/schemaorg"
	"github.com/mohamedmoudjahed/semantic-web/wiki"
)

// character seeds a graph with one typed, labeled character.
func character(g *graph.Graph, name string) string {
	entity := rdf.EntityIRI(name)
	g.Add(graph.Triple{Subject: entity, Predicate: rdfns.Type, Object: graph.IRI(arda.Character)})
	g.Add(graph.Triple{Subject: entity, Predicate: rdfns.Label, Object: graph.LangLiteral(name, "en")})
	return entity
}

func TestRecordFirst(t *testing.T) {
	r := Record{
		"Name":    "Gandalf",
		"text":    map[string]any{"en": "Unique.", "fr": "Unique."},
		"prowess": float64(6),
		"empty":   "  ",
	}

	assert.Equal(t, "Gandalf", r.First("name", "Name"))
	assert.Equal(t, "Unique.", r.First("text"))
	assert.Equal(t, "6", r.First("prowess"))
	assert.Equal(t, "", r.First("empty", "missing"))
}

func TestParseCardsFlattensNestedSets(t *testing.T) {
	data := []byte(`{
		"sets": [
			{"name": "The Wizards", "cards": [
				{"name": "Gandalf", "type": "Character", "prowess": "6", "body": "9"},
				{"Name": "Orcrist", "Type": "Item"}
			]}
		]
	}`)
	cards, err := ParseCards(data)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Gandalf", cards[0].Name)
	assert.Equal(t, "6", cards[0].Prowess)
	assert.Equal(t, "Orcrist", cards[1].Name)
}

func TestApplyCardsExactAndFuzzy(t *testing.T) {
	g := graph.New()
	gandalf := character(g, "Gandalf")
	character(g, "Tom Bombadil")
	// A label that differs from the card name by one character.
	easterlings := character(g, "Easterlings")

	cards := []Card{
		{Name: "Gandalf", Type: "Character", Text: "Unique. <b>Wizard.</b>", Prowess: "6", Body: "9", Set: "METW"},
		{Name: "Easterling", Type: "Character"},
	}

	stats := ApplyCards(g, cards, DefaultFuzzyThreshold, nil)
	assert.Equal(t, 3, stats.Checked)
	assert.Equal(t, 2, stats.Matched)

	card := CardIRI("Gandalf")
	assert.Contains(t, termValues(g, gandalf, arda.MetwCard), card)
	assert.Contains(t, termValues(g, card, rdfns.Type), arda.METWCard)
	assert.Contains(t, termValues(g, card, arda.CardType), "Character")
	assert.Contains(t, termValues(g, card, arda.CardSet), "METW")
	assert.Contains(t, termValues(g, card, schemaorg.Description), "Unique. Wizard.")

	prowess := g.Objects(card, arda.Prowess)
	require.Len(t, prowess, 1)
	assert.Equal(t, "6", prowess[0].Value)
	assert.Equal(t, rdfns.XSDInteger, prowess[0].Datatype)

	// Easterlings vs Easterling clears the fuzzy threshold.
	assert.True(t, g.Has(easterlings, arda.MetwCard))
}

func TestApplyCardsSkipsUnparseableStats(t *testing.T) {
	g := graph.New()
	character(g, "Gandalf")

	ApplyCards(g, []Card{{Name: "Gandalf", Type: "Character", Prowess: "6/9"}}, 0, nil)
	assert.False(t, g.Has(CardIRI("Gandalf"), arda.Prowess))
}

func TestLoadCardsPrefersCache(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `[{"name":"Gandalf","type":"Character"}]`)
	}))
	defer srv.Close()

	cachePath := filepath.Join(t.TempDir(), "cards", "metw.json")

	cards, err := LoadCards(context.Background(), srv.Client(), srv.URL, cachePath)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 1, calls)

	// Second load must come from the cache file.
	cards, err = LoadCards(context.Background(), srv.Client(), srv.URL, cachePath)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, 1, calls)

	_, err = os.Stat(cachePath)
	assert.NoError(t, err)
}

func TestApplyCSVNeverOverwrites(t *testing.T) {
	g := graph.New()
	frodo := character(g, "Frodo Baggins")
	g.Add(graph.Triple{Subject: frodo, Predicate: schemaorg.Gender, Object: graph.Literal("male")})

	table := strings.NewReader(strings.Join([]string{
		"name,gender,race,hair,realm",
		"Frodo Baggins,Female,Hobbit,Brown,The Shire",
		"Nobody,Male,,,",
	}, "\n"))

	stats, err := ApplyCSV(g, table, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Checked)
	assert.Equal(t, 1, stats.Matched)

	// The existing gender survives; the gaps are filled.
	genders := termValues(g, frodo, schemaorg.Gender)
	assert.Equal(t, []string{"male"}, genders)
	assert.Contains(t, termValues(g, frodo, arda.RaceLabel), "Hobbit")
	assert.Contains(t, termValues(g, frodo, arda.HairColor), "Brown")
	assert.Contains(t, termValues(g, frodo, arda.Realm), rdf.EntityIRI("The Shire"))
}

func TestApplyCSVRequiresNameColumn(t *testing.T) {
	g := graph.New()
	_, err := ApplyCSV(g, strings.NewReader("gender,race\nmale,Hobbit"), nil)
	assert.Error(t, err)
}

func TestMultilingualApply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/fr/"):
			fmt.Fprint(w, `{"query":{"search":[{"title":"Frodon Sacquet"}]}}`)
		case strings.HasPrefix(r.URL.Path, "/de/"):
			// Same title as the English label: no translated label.
			fmt.Fprint(w, `{"query":{"search":[{"title":"Frodo Baggins"}]}}`)
		default:
			fmt.Fprint(w, `{"query":{"search":[]}}`)
		}
	}))
	defer srv.Close()

	g := graph.New()
	frodo := character(g, "Frodo Baggins")

	m := NewMultilingual(
		WithAPIFormat(srv.URL+"/%s/api.php"),
		WithMultilingualHTTPClient(srv.Client()),
		WithMultilingualGate(wiki.NewGate(0)),
		WithLanguages([]string{"fr", "de", "es"}),
	)
	stats := m.Apply(context.Background(), g)

	assert.Equal(t, 3, stats.Checked)
	assert.Equal(t, 1, stats.Matched)
	assert.Equal(t, 3, stats.Triples)

	var frLabel string
	for _, term := range g.Objects(frodo, rdfns.Label) {
		if term.Lang == "fr" {
			frLabel = term.Value
		}
	}
	assert.Equal(t, "Frodon Sacquet", frLabel)
	assert.Contains(t, termValues(g, frodo, arda.TranslatedName), "Frodon Sacquet")

	seeAlso := termValues(g, frodo, rdfns.SeeAlso)
	assert.Contains(t, seeAlso, "https://lotr.fandom.com/fr/wiki/Frodon_Sacquet")
	// A German hit under the same title contributes nothing.
	assert.NotContains(t, seeAlso, "https://lotr.fandom.com/de/wiki/Frodo_Baggins")

	for _, term := range g.Objects(frodo, rdfns.Label) {
		assert.NotEqual(t, "de", term.Lang)
	}
}

func termValues(g *graph.Graph, subject, predicate string) []string {
	var vals []string
	for _, term := range g.Objects(subject, predicate) {
		vals = append(vals, term.Value)
	}
	return vals
}
