package enrich

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/names"
	"github.com/mohamedmoudjahed/semantic-web/rdf"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/arda"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/schemaorg"
)

// csvColumns maps recognized header names to the predicate each column
// fills. A column only ever fills a gap: entities that already carry a
// value for the predicate are left alone.
var csvColumns = map[string]csvColumn{
	"gender":     {predicate: schemaorg.Gender, lowercase: true},
	"race":       {predicate: arda.RaceLabel},
	"hair":       {predicate: arda.HairColor},
	"hair_color": {predicate: arda.HairColor},
	"height":     {predicate: arda.Height},
	"realm":      {predicate: arda.Realm, resource: true},
}

type csvColumn struct {
	predicate string
	lowercase bool
	// resource columns mint an entity IRI from the cell instead of a
	// literal.
	resource bool
}

// ApplyCSV merges a curated character table into the graph. The first
// row is a header; a "name" column is required and matches entity
// labels exactly after normalization.
func ApplyCSV(g *graph.Graph, r io.Reader, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return Stats{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return Stats{}, nil
	}

	header := rows[0]
	nameCol := -1
	for i, h := range header {
		if strings.ToLower(strings.TrimSpace(h)) == "name" {
			nameCol = i
			break
		}
	}
	if nameCol == -1 {
		return Stats{}, fmt.Errorf("csv has no name column")
	}

	entities, labels := characterEntities(g)
	byName := make(map[string]string, len(entities))
	for i, entity := range entities {
		byName[names.Normalize(labels[i])] = entity
	}

	var stats Stats
	for _, row := range rows[1:] {
		if nameCol >= len(row) {
			continue
		}
		stats.Checked++
		entity, ok := byName[names.Normalize(row[nameCol])]
		if !ok {
			continue
		}
		stats.Matched++

		for i, cell := range row {
			if i == nameCol || i >= len(header) {
				continue
			}
			col, known := csvColumns[strings.ToLower(strings.TrimSpace(header[i]))]
			if !known {
				continue
			}
			value := strings.TrimSpace(cell)
			if value == "" || g.Has(entity, col.predicate) {
				continue
			}
			var object graph.Term
			switch {
			case col.resource:
				object = graph.IRI(rdf.EntityIRI(value))
			case col.lowercase:
				object = graph.Literal(strings.ToLower(value))
			default:
				object = graph.Literal(value)
			}
			if g.Add(graph.Triple{Subject: entity, Predicate: col.predicate, Object: object}) {
				stats.Triples++
			}
		}
	}
	logger.Info("csv enrichment done",
		slog.Int("rows", stats.Checked), slog.Int("matched", stats.Matched), slog.Int("triples", stats.Triples))
	return stats, nil
}
