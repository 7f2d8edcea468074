package arda

import (
	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/rdf"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/schemaorg"
)

// Ontology returns the OWL class and property declarations added to
// every built graph. SHACL shapes are deliberately not part of this;
// validation rules live with the serving layer.
func Ontology() []graph.Triple {
	var ts []graph.Triple

	class := func(iri, superClass, label, comment string) {
		ts = append(ts, graph.Triple{Subject: iri, Predicate: rdf.Type, Object: graph.IRI(rdf.Class)})
		if superClass != "" {
			ts = append(ts, graph.Triple{Subject: iri, Predicate: rdf.SubClassOf, Object: graph.IRI(superClass)})
		}
		ts = append(ts, graph.Triple{Subject: iri, Predicate: rdf.Label, Object: graph.LangLiteral(label, "en")})
		if comment != "" {
			ts = append(ts, graph.Triple{Subject: iri, Predicate: rdf.Comment, Object: graph.LangLiteral(comment, "en")})
		}
	}

	class(Character, schemaorg.Person, "Tolkien Character", "A fictional character from Tolkien's legendarium")
	class(Location, schemaorg.Place, "Tolkien Location", "")
	class(Artifact, schemaorg.Thing, "Tolkien Artifact", "")
	class(Battle, schemaorg.Event, "Battle", "")
	class(War, schemaorg.Event, "War", "")
	class(Race, "", "Race/People", "")
	class(METWCard, "", "METW Card", "A card from Middle-earth: The Wizards")

	objectProp := func(iri, label, domain, rng string) {
		ts = append(ts, graph.Triple{Subject: iri, Predicate: rdf.Type, Object: graph.IRI(rdf.ObjectProperty)})
		ts = append(ts, graph.Triple{Subject: iri, Predicate: rdf.Label, Object: graph.LangLiteral(label, "en")})
		if domain != "" {
			ts = append(ts, graph.Triple{Subject: iri, Predicate: rdf.Domain, Object: graph.IRI(domain)})
		}
		if rng != "" {
			ts = append(ts, graph.Triple{Subject: iri, Predicate: rdf.Range, Object: graph.IRI(rng)})
		}
	}

	objectProp(RaceOf, "race", Character, Race)
	objectProp(Realm, "realm", "", "")
	objectProp(OwnedBy, "owned by", Artifact, Character)
	objectProp(MetwCard, "METW card", Character, METWCard)

	dataProp := func(iri, label string) {
		ts = append(ts, graph.Triple{Subject: iri, Predicate: rdf.Type, Object: graph.IRI(rdf.DatatypeProperty)})
		ts = append(ts, graph.Triple{Subject: iri, Predicate: rdf.Label, Object: graph.LangLiteral(label, "en")})
	}

	dataProp(RaceLabel, "race label")
	dataProp(ObjectType, "object type")
	dataProp(DestroyedDate, "destroyed")
	dataProp(Result, "result")
	dataProp(Prowess, "prowess")
	dataProp(Body, "body")
	dataProp(TranslatedName, "translated name")

	return ts
}
