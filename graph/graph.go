package graph

// Graph is an insertion-ordered triple set. Adding a statement that is
// already present is a no-op, which makes repeated enrichment passes
// harmless. Graph is not safe for concurrent use; a build owns its
// graph exclusively (see the builder).
type Graph struct {
	triples []Triple
	seen    map[string]struct{}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{seen: make(map[string]struct{})}
}

// Add inserts a triple, reporting whether it was new.
func (g *Graph) Add(t Triple) bool {
	k := t.key()
	if _, ok := g.seen[k]; ok {
		return false
	}
	g.seen[k] = struct{}{}
	g.triples = append(g.triples, t)
	return true
}

// AddAll inserts a batch of triples and returns how many were new.
func (g *Graph) AddAll(ts []Triple) int {
	added := 0
	for _, t := range ts {
		if g.Add(t) {
			added++
		}
	}
	return added
}

// Merge folds another graph into this one and returns how many triples
// were new.
func (g *Graph) Merge(other *Graph) int {
	return g.AddAll(other.triples)
}

// Len returns the number of distinct triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns the statements in insertion order. The slice is
// shared; callers must not mutate it.
func (g *Graph) Triples() []Triple {
	return g.triples
}

// Has reports whether the subject carries any statement for the
// predicate. Used by additive-only enrichment to skip present facts.
func (g *Graph) Has(subject, predicate string) bool {
	for _, t := range g.triples {
		if t.Subject == subject && t.Predicate == predicate {
			return true
		}
	}
	return false
}

// Objects returns all object terms for a subject/predicate pair.
func (g *Graph) Objects(subject, predicate string) []Term {
	var out []Term
	for _, t := range g.triples {
		if t.Subject == subject && t.Predicate == predicate {
			out = append(out, t.Object)
		}
	}
	return out
}

// SubjectsOfType returns, in first-seen order, every subject declared
// with rdf:type class.
func (g *Graph) SubjectsOfType(typePredicate, class string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, t := range g.triples {
		if t.Predicate != typePredicate || t.Object.Kind != KindIRI || t.Object.Value != class {
			continue
		}
		if _, ok := seen[t.Subject]; ok {
			continue
		}
		seen[t.Subject] = struct{}{}
		out = append(out, t.Subject)
	}
	return out
}
