// Package linking discovers, by best-effort name search, the records
// in external knowledge bases (Wikipedia, DBpedia, Wikidata, YAGO)
// that correspond to a graph entity. Nothing here is authoritative: an
// empty result means "not found this time", never "does not exist".
package linking

// Kind names one external knowledge base.
type Kind string

const (
	KindWikipedia Kind = "wikipedia"
	KindDBpedia   Kind = "dbpedia"
	KindWikidata  Kind = "wikidata"
	KindYago      Kind = "yago"
)

// Links maps each resolved kind to its identifier/URI for one entity
// name. A missing kind means not found, not known-absent.
type Links map[Kind]string

// Outcome classifies the result of a single external lookup so callers
// can distinguish a clean miss from an unreachable source.
type Outcome int

const (
	// Found means the source returned a usable value.
	Found Outcome = iota
	// NotFound means the source answered and had no match.
	NotFound
	// SourceUnavailable means the source could not be consulted;
	// a later retry may still succeed.
	SourceUnavailable
)

// Result carries an outcome and, when Found, its value.
type Result struct {
	Outcome Outcome
	Value   string
}

func found(v string) Result { return Result{Outcome: Found, Value: v} }
func notFound() Result      { return Result{Outcome: NotFound} }
func unavailable() Result   { return Result{Outcome: SourceUnavailable} }

// Contributed reports whether the lookup produced a value.
func (r Result) Contributed() bool { return r.Outcome == Found }
