package graph

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Format selects the output serialization.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output with a prefix header.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces line-oriented N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"
)

// Serialize writes the graph in the requested format. The prefix map
// (prefix → namespace IRI) is used to abbreviate IRIs in Turtle; it is
// ignored for N-Triples.
func (g *Graph) Serialize(w io.Writer, format Format, prefixes map[string]string) error {
	switch format {
	case FormatTurtle:
		return g.writeTurtle(w, prefixes)
	case FormatNTriples:
		return g.writeNTriples(w)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (g *Graph) writeTurtle(w io.Writer, prefixes map[string]string) error {
	var sb strings.Builder

	keys := make([]string, 0, len(prefixes))
	for p := range prefixes {
		keys = append(keys, p)
	}
	sort.Strings(keys)
	for _, p := range keys {
		fmt.Fprintf(&sb, "@prefix %s: <%s> .\n", p, prefixes[p])
	}
	sb.WriteString("\n")

	// Group statements by subject, preserving first-seen subject order.
	var order []string
	bySubject := make(map[string][]Triple)
	for _, t := range g.triples {
		if _, ok := bySubject[t.Subject]; !ok {
			order = append(order, t.Subject)
		}
		bySubject[t.Subject] = append(bySubject[t.Subject], t)
	}

	for _, subj := range order {
		ts := bySubject[subj]
		fmt.Fprintf(&sb, "%s\n", abbreviate(subj, prefixes))
		for i, t := range ts {
			terminator := " ;"
			if i == len(ts)-1 {
				terminator = " ."
			}
			fmt.Fprintf(&sb, "    %s %s%s\n",
				abbreviate(t.Predicate, prefixes), formatTerm(t.Object, prefixes), terminator)
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (g *Graph) writeNTriples(w io.Writer) error {
	var sb strings.Builder
	for _, t := range g.triples {
		fmt.Fprintf(&sb, "<%s> <%s> %s .\n", t.Subject, t.Predicate, formatTerm(t.Object, nil))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// abbreviate rewrites an IRI as prefix:local when a prefix covers it
// and the local part is a safe Turtle name; otherwise it stays bracketed.
func abbreviate(iri string, prefixes map[string]string) string {
	for prefix, ns := range prefixes {
		if !strings.HasPrefix(iri, ns) {
			continue
		}
		local := iri[len(ns):]
		if local != "" && isLocalName(local) {
			return prefix + ":" + local
		}
	}
	return "<" + iri + ">"
}

func isLocalName(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func formatTerm(t Term, prefixes map[string]string) string {
	switch t.Kind {
	case KindIRI:
		if prefixes != nil {
			return abbreviate(t.Value, prefixes)
		}
		return "<" + t.Value + ">"
	case KindTypedLiteral:
		dt := "<" + t.Datatype + ">"
		if prefixes != nil {
			dt = abbreviate(t.Datatype, prefixes)
		}
		return escapeLiteral(t.Value) + "^^" + dt
	default:
		lit := escapeLiteral(t.Value)
		if t.Lang != "" {
			lit += "@" + t.Lang
		}
		return lit
	}
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeLiteral(s string) string {
	return `"` + literalEscaper.Replace(s) + `"`
}
