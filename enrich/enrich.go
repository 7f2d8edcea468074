// Package enrich layers facts from secondary sources onto a built
// graph: the Middle-earth: The Wizards card game, curated CSV tables,
// and translated labels from the Fandom wikis. Enrichment is strictly
// additive; it never overwrites a statement extracted from the wiki.
package enrich

import (
	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/arda"
	rdfns "github.com/mohamedmoudjahed/semantic-web/vocabulary/rdf"
)

// Stats summarizes one enrichment pass.
type Stats struct {
	// Checked counts entities (or entity-language pairs) examined.
	Checked int
	// Matched counts entities the source had data for.
	Matched int
	// Triples counts statements actually added to the graph.
	Triples int
}

// Merge accumulates another pass into s.
func (s *Stats) Merge(o Stats) {
	s.Checked += o.Checked
	s.Matched += o.Matched
	s.Triples += o.Triples
}

// englishLabel returns the entity's English (or untagged) label, empty
// when it has none.
func englishLabel(g *graph.Graph, entity string) string {
	for _, term := range g.Objects(entity, rdfns.Label) {
		if term.Kind == graph.KindIRI {
			continue
		}
		if term.Lang == "en" || term.Lang == "" {
			return term.Value
		}
	}
	return ""
}

// labeledEntities returns the entities of the given classes that carry
// an English label, in graph order, with their labels.
func labeledEntities(g *graph.Graph, classes ...string) (entities, labels []string) {
	for _, class := range classes {
		for _, entity := range g.SubjectsOfType(rdfns.Type, class) {
			if label := englishLabel(g, entity); label != "" {
				entities = append(entities, entity)
				labels = append(labels, label)
			}
		}
	}
	return entities, labels
}

// characterEntities is the common case: everything typed as a
// legendarium character.
func characterEntities(g *graph.Graph) (entities, labels []string) {
	return labeledEntities(g, arda.Character)
}
