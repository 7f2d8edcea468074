// Package rdf holds the core W3C vocabulary IRIs used across the
// knowledge graph.
package rdf

// Core namespaces.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
	FOAFNamespace = "http://xmlns.com/foaf/0.1/"
	SKOSNamespace = "http://www.w3.org/2004/02/skos/core#"
	DCNamespace   = "http://purl.org/dc/elements/1.1/"
	DCTNamespace  = "http://purl.org/dc/terms/"
)

// RDF/RDFS terms.
const (
	Type       = RDFNamespace + "type"
	Label      = RDFSNamespace + "label"
	Comment    = RDFSNamespace + "comment"
	SeeAlso    = RDFSNamespace + "seeAlso"
	SubClassOf = RDFSNamespace + "subClassOf"
	SubPropOf  = RDFSNamespace + "subPropertyOf"
	Domain     = RDFSNamespace + "domain"
	Range      = RDFSNamespace + "range"
)

// OWL terms.
const (
	Class            = OWLNamespace + "Class"
	ObjectProperty   = OWLNamespace + "ObjectProperty"
	DatatypeProperty = OWLNamespace + "DatatypeProperty"
	SameAs           = OWLNamespace + "sameAs"
)

// FOAF terms for linking entities to their pages of origin.
const (
	Document         = FOAFNamespace + "Document"
	PrimaryTopic     = FOAFNamespace + "primaryTopic"
	IsPrimaryTopicOf = FOAFNamespace + "isPrimaryTopicOf"
)

// XSD datatypes.
const (
	XSDInteger = XSDNamespace + "integer"
	XSDString  = XSDNamespace + "string"
)
