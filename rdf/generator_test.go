package rdf_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/linking"
	"github.com/mohamedmoudjahed/semantic-web/rdf"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/arda"
	rdfns "github.com/mohamedmoudjahed/semantic-web/vocabulary/rdf"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/schemaorg"
	"github.com/mohamedmoudjahed/semantic-web/wikitext"
)

func infobox(t *testing.T, markup string) *wikitext.Template {
	t.Helper()
	tpl, ok := wikitext.ExtractInfobox(markup)
	require.True(t, ok, "markup must contain an infobox")
	return tpl
}

func process(t *testing.T, g *rdf.Generator, title, markup string) *graph.Graph {
	t.Helper()
	out := graph.New()
	out.AddAll(g.Process(context.Background(), title, infobox(t, markup)))
	return out
}

func literals(g *graph.Graph, subject, predicate string) []string {
	var vals []string
	for _, term := range g.Objects(subject, predicate) {
		vals = append(vals, term.Value)
	}
	return vals
}

const frodoMarkup = `{{Infobox character
| name = Frodo Baggins
| race = [[Hobbit]]
| gender = Male
| birth = [[TA]] 2968
}}`

func TestProcessCharacter(t *testing.T) {
	g := process(t, rdf.NewGenerator(), "Frodo Baggins", frodoMarkup)
	entity := rdf.EntityIRI("Frodo Baggins")

	assert.Contains(t, literals(g, entity, rdfns.Label), "Frodo Baggins")
	assert.Contains(t, literals(g, entity, schemaorg.Gender), "male")

	names := g.Objects(entity, schemaorg.Name)
	require.Len(t, names, 1)
	assert.Equal(t, "Frodo Baggins", names[0].Value)
	assert.Equal(t, "en", names[0].Lang)
	assert.Contains(t, literals(g, entity, schemaorg.BirthDate), "TA 2968")

	types := literals(g, entity, rdfns.Type)
	assert.Contains(t, types, schemaorg.Person)
	assert.Contains(t, types, arda.Character)

	races := g.Objects(entity, arda.RaceOf)
	require.Len(t, races, 1)
	assert.Equal(t, rdf.EntityIRI("Hobbit"), races[0].Value)

	// The page document cross-references the entity and carries the
	// article URL.
	page := rdf.PageIRI("Frodo Baggins")
	assert.True(t, g.Has(page, rdfns.PrimaryTopic))
	assert.True(t, g.Has(entity, rdfns.IsPrimaryTopicOf))
	assert.Contains(t, literals(g, page, schemaorg.URL),
		"https://tolkiengateway.net/wiki/Frodo_Baggins")
	assert.False(t, g.Has(entity, schemaorg.URL))
}

func TestProcessSkipsInvalidDates(t *testing.T) {
	markup := `{{Infobox character
| name = Tom Bombadil
| birth = unknown
| death = Late Third Age
}}`
	g := process(t, rdf.NewGenerator(), "Tom Bombadil", markup)
	entity := rdf.EntityIRI("Tom Bombadil")

	assert.False(t, g.Has(entity, schemaorg.BirthDate))
	assert.False(t, g.Has(entity, schemaorg.DeathDate))
}

func TestProcessCharacterFamily(t *testing.T) {
	markup := `{{Infobox character
| name = Samwise Gamgee
| othernames = Sam<br>Banazîr<br>''see below''
| spouse = [[Rosie Cotton]]
| children = [[Elanor Gardner]] and twelve others
| parentage = [[Hamfast Gamgee]]
}}`
	g := process(t, rdf.NewGenerator(), "Samwise Gamgee", markup)
	entity := rdf.EntityIRI("Samwise Gamgee")

	others := literals(g, entity, schemaorg.AlternateName)
	assert.Contains(t, others, "Sam")
	assert.Contains(t, others, "Banazîr")
	assert.Len(t, others, 2, "a see-below pointer is not a name")

	assert.Contains(t, literals(g, entity, schemaorg.Spouse), rdf.EntityIRI("Rosie Cotton"))
	assert.Contains(t, literals(g, entity, schemaorg.Children), rdf.EntityIRI("Elanor Gardner"))
	assert.Contains(t, literals(g, entity, schemaorg.Parent), rdf.EntityIRI("Hamfast Gamgee"))
}

func TestProcessChildrenDenylist(t *testing.T) {
	markup := `{{Infobox character
| name = Denethor II
| children = Several
}}`
	g := process(t, rdf.NewGenerator(), "Denethor II", markup)
	assert.False(t, g.Has(rdf.EntityIRI("Denethor II"), schemaorg.Children))
}

func TestProcessChildrenFiltersEachLink(t *testing.T) {
	markup := `{{Infobox character
| name = Samwise Gamgee
| children = [[None]]<br>[[Elanor Gardner]]
}}`
	g := process(t, rdf.NewGenerator(), "Samwise Gamgee", markup)
	entity := rdf.EntityIRI("Samwise Gamgee")

	children := literals(g, entity, schemaorg.Children)
	assert.Equal(t, []string{rdf.EntityIRI("Elanor Gardner")}, children)
}

func TestProcessPlace(t *testing.T) {
	markup := `{{Infobox place
| name = Minas Tirith
| location = [[Gondor]]
| realm = [[Gondor]]
| founded = {{SA|3320}}
| description = The White City of Gondor.
}}`
	g := process(t, rdf.NewGenerator(), "Minas Tirith", markup)
	entity := rdf.EntityIRI("Minas Tirith")

	assert.Contains(t, literals(g, entity, rdfns.Type), arda.Location)
	assert.Contains(t, literals(g, entity, schemaorg.ContainedInPlace), rdf.EntityIRI("Gondor"))
	assert.Contains(t, literals(g, entity, arda.Realm), rdf.EntityIRI("Gondor"))
	assert.Contains(t, literals(g, entity, schemaorg.FoundingDate), "SA 3320")
	assert.Contains(t, literals(g, entity, schemaorg.Description), "The White City of Gondor.")
}

func TestProcessObjectOwnership(t *testing.T) {
	markup := `{{Infobox object
| name = Sting
| type = Short sword
| owner = [[Bilbo Baggins]], [[Frodo Baggins]]
}}`
	g := process(t, rdf.NewGenerator(), "Sting", markup)
	entity := rdf.EntityIRI("Sting")
	bilbo := rdf.EntityIRI("Bilbo Baggins")

	assert.Contains(t, literals(g, entity, arda.ObjectType), "Short sword")
	assert.Contains(t, literals(g, entity, arda.OwnedBy), bilbo)
	assert.Contains(t, literals(g, bilbo, schemaorg.Owns), entity)
	assert.Len(t, g.Objects(entity, arda.OwnedBy), 2)
}

func TestProcessBattleResultFallback(t *testing.T) {
	markup := `{{Battle
| name = Battle of the Pelennor Fields
| date = {{TA|3019}}
| location = [[Minas Tirith]]
| outcome = Decisive Gondorian victory
}}`
	g := process(t, rdf.NewGenerator(), "Battle of the Pelennor Fields", markup)
	entity := rdf.EntityIRI("Battle of the Pelennor Fields")

	types := literals(g, entity, rdfns.Type)
	assert.Contains(t, types, schemaorg.Event)
	assert.Contains(t, types, arda.Battle)
	assert.Contains(t, literals(g, entity, schemaorg.StartDate), "TA 3019")
	assert.Contains(t, literals(g, entity, arda.Result), "Decisive Gondorian victory")
}

type fakeImages struct {
	url string
	err error
}

func (f fakeImages) ImageURL(ctx context.Context, filename string) (string, error) {
	return f.url, f.err
}

func TestAttachImage(t *testing.T) {
	markup := `{{Infobox character
| name = Gandalf
| image = File:Gandalf the Grey.png
}}`
	entity := rdf.EntityIRI("Gandalf")

	t.Run("direct URL from lookup", func(t *testing.T) {
		gen := rdf.NewGenerator(rdf.WithImageLookup(fakeImages{url: "https://tolkiengateway.net/w/images/a/ab/Gandalf_the_Grey.png"}))
		g := process(t, gen, "Gandalf", markup)
		assert.Contains(t, literals(g, entity, schemaorg.Image),
			"https://tolkiengateway.net/w/images/a/ab/Gandalf_the_Grey.png")
	})

	t.Run("hash path when file unknown", func(t *testing.T) {
		gen := rdf.NewGenerator(rdf.WithImageLookup(fakeImages{}))
		g := process(t, gen, "Gandalf", markup)
		imgs := literals(g, entity, schemaorg.Image)
		require.Len(t, imgs, 1)
		assert.Contains(t, imgs[0], "https://tolkiengateway.net/w/images/")
		assert.Contains(t, imgs[0], "Gandalf_the_Grey.png")
	})

	t.Run("file page when lookup fails", func(t *testing.T) {
		gen := rdf.NewGenerator(rdf.WithImageLookup(fakeImages{err: errors.New("boom")}))
		g := process(t, gen, "Gandalf", markup)
		assert.Contains(t, literals(g, entity, schemaorg.Image),
			"https://tolkiengateway.net/wiki/File:Gandalf_the_Grey.png")
	})
}

type fakeResolver struct {
	links linking.Links
}

func (f fakeResolver) Discover(ctx context.Context, name string) linking.Links {
	return f.links
}

func TestAttachExternalLinks(t *testing.T) {
	gen := rdf.NewGenerator(rdf.WithLinkResolver(fakeResolver{links: linking.Links{
		linking.KindWikipedia: "https://en.wikipedia.org/wiki/Frodo_Baggins",
		linking.KindDBpedia:   "http://dbpedia.org/resource/Frodo_Baggins",
		linking.KindWikidata:  "http://www.wikidata.org/entity/Q174295",
	}}))
	g := process(t, gen, "Frodo Baggins", frodoMarkup)
	entity := rdf.EntityIRI("Frodo Baggins")

	same := literals(g, entity, rdfns.SameAs)
	assert.Contains(t, same, "http://dbpedia.org/resource/Frodo_Baggins")
	assert.Contains(t, same, "http://www.wikidata.org/entity/Q174295")
	assert.NotContains(t, same, "https://en.wikipedia.org/wiki/Frodo_Baggins")
	assert.Contains(t, literals(g, entity, rdfns.SeeAlso), "https://en.wikipedia.org/wiki/Frodo_Baggins")
}

func TestProcessReturnsFreshSlices(t *testing.T) {
	gen := rdf.NewGenerator()
	tpl := infobox(t, frodoMarkup)

	a := gen.Process(context.Background(), "Frodo Baggins", tpl)
	b := gen.Process(context.Background(), "Frodo Baggins", tpl)

	require.NotEmpty(t, a)
	a[0].Subject = "mutated"
	assert.NotEqual(t, a[0].Subject, b[0].Subject)
}
