// Package schemaorg holds the schema.org terms the triple generator
// emits.
package schemaorg

// Namespace is the schema.org base IRI.
const Namespace = "http://schema.org/"

// Classes.
const (
	Person = Namespace + "Person"
	Place  = Namespace + "Place"
	Thing  = Namespace + "Thing"
	Book   = Namespace + "Book"
	Event  = Namespace + "Event"
)

// Properties.
const (
	Name             = Namespace + "name"
	AlternateName    = Namespace + "alternateName"
	URL              = Namespace + "url"
	Image            = Namespace + "image"
	Description      = Namespace + "description"
	Gender           = Namespace + "gender"
	BirthDate        = Namespace + "birthDate"
	BirthPlace       = Namespace + "birthPlace"
	DeathDate        = Namespace + "deathDate"
	DeathPlace       = Namespace + "deathPlace"
	Spouse           = Namespace + "spouse"
	Children         = Namespace + "children"
	Parent           = Namespace + "parent"
	Sibling          = Namespace + "sibling"
	ContainedInPlace = Namespace + "containedInPlace"
	FoundingDate     = Namespace + "foundingDate"
	StartDate        = Namespace + "startDate"
	Location         = Namespace + "location"
	Owns             = Namespace + "owns"
	Creator          = Namespace + "creator"
)
