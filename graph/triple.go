// Package graph holds the in-memory triple store the build accumulates
// into, plus its Turtle/N-Triples serialization and the optional
// streaming publisher used for incremental persistence.
package graph

import "fmt"

// TermKind discriminates the object position of a triple.
type TermKind int

const (
	// KindIRI is a reference to a resource.
	KindIRI TermKind = iota
	// KindLiteral is a plain string literal, optionally language-tagged.
	KindLiteral
	// KindTypedLiteral is a literal with an explicit datatype IRI.
	KindTypedLiteral
)

// Term is the object of a triple: an IRI or a literal.
type Term struct {
	Kind     TermKind `json:"kind"`
	Value    string   `json:"value"`
	Lang     string   `json:"lang,omitempty"`
	Datatype string   `json:"datatype,omitempty"`
}

// IRI returns an IRI term.
func IRI(value string) Term {
	return Term{Kind: KindIRI, Value: value}
}

// Literal returns a plain literal term.
func Literal(value string) Term {
	return Term{Kind: KindLiteral, Value: value}
}

// LangLiteral returns a language-tagged literal term.
func LangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: lang}
}

// TypedLiteral returns a literal with a datatype IRI.
func TypedLiteral(value, datatype string) Term {
	return Term{Kind: KindTypedLiteral, Value: value, Datatype: datatype}
}

// Triple is one (subject, predicate, object) statement. Subject and
// Predicate are absolute IRIs.
type Triple struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    Term   `json:"object"`
}

// key is the identity of a triple for set semantics.
func (t Triple) key() string {
	return fmt.Sprintf("%s\x00%s\x00%d\x00%s\x00%s\x00%s",
		t.Subject, t.Predicate, t.Object.Kind, t.Object.Value, t.Object.Lang, t.Object.Datatype)
}
