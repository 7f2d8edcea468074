// Package arda defines the project's own namespaces: entity resources,
// their wiki pages, the ontology classes, and the property extensions
// that schema.org does not cover.
package arda

import (
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/rdf"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/schemaorg"
)

// Base is the root IRI for everything this project mints.
const Base = "http://tolkien-kg.org/"

// Namespaces under Base.
const (
	ResourceNamespace = Base + "resource/"
	PageNamespace     = Base + "page/"
	OntologyNamespace = Base + "ontology/"
	PropertyNamespace = Base + "property/"
	CardNamespace     = Base + "metw/card/"
)

// Ontology classes.
const (
	Character = OntologyNamespace + "Character"
	Location  = OntologyNamespace + "Location"
	Artifact  = OntologyNamespace + "Artifact"
	Battle    = OntologyNamespace + "Battle"
	War       = OntologyNamespace + "War"
	Race      = OntologyNamespace + "Race"
	METWCard  = OntologyNamespace + "METWCard"
)

// Object properties.
const (
	RaceOf   = OntologyNamespace + "race"
	Realm    = PropertyNamespace + "realm"
	OwnedBy  = PropertyNamespace + "ownedBy"
	MetwCard = PropertyNamespace + "metwCard"
)

// Datatype properties.
const (
	RaceLabel      = PropertyNamespace + "raceLabel"
	ObjectType     = PropertyNamespace + "objectType"
	DestroyedDate  = PropertyNamespace + "destroyedDate"
	Result         = PropertyNamespace + "result"
	HairColor      = PropertyNamespace + "hairColor"
	Height         = PropertyNamespace + "height"
	CardType       = PropertyNamespace + "cardType"
	CardSet        = PropertyNamespace + "cardSet"
	Prowess        = PropertyNamespace + "prowess"
	Body           = PropertyNamespace + "body"
	TranslatedName = PropertyNamespace + "translatedName"
)

// Prefixes is the namespace table used for Turtle headers and SPARQL
// prologues.
var Prefixes = map[string]string{
	"tolkien": ResourceNamespace,
	"tpage":   PageNamespace,
	"tont":    OntologyNamespace,
	"tprop":   PropertyNamespace,
	"metw":    CardNamespace,
	"schema":  schemaorg.Namespace,
	"rdf":     rdf.RDFNamespace,
	"rdfs":    rdf.RDFSNamespace,
	"owl":     rdf.OWLNamespace,
	"xsd":     rdf.XSDNamespace,
	"foaf":    rdf.FOAFNamespace,
	"skos":    rdf.SKOSNamespace,
	"dc":      rdf.DCNamespace,
	"dct":     rdf.DCTNamespace,
}
