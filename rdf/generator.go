// Package rdf maps parsed infobox templates to typed statements about
// the entity a page describes. Generation is total: a malformed or
// sparse infobox yields fewer statements, never an error.
package rdf

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/linking"
	"github.com/mohamedmoudjahed/semantic-web/names"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/arda"
	rdfns "github.com/mohamedmoudjahed/semantic-web/vocabulary/rdf"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/schemaorg"
	"github.com/mohamedmoudjahed/semantic-web/wikitext"
)

// wikiBase is the public article URL prefix for source pages.
const wikiBase = "https://tolkiengateway.net/wiki/"

// ImageLookup resolves an uploaded file name to its direct URL.
// *wiki.Client satisfies this.
type ImageLookup interface {
	ImageURL(ctx context.Context, filename string) (string, error)
}

// LinkResolver discovers external knowledge-base links for a name.
// *linking.Resolver satisfies this.
type LinkResolver interface {
	Discover(ctx context.Context, name string) linking.Links
}

// Generator produces statements for one page at a time. Both
// collaborators are optional; without them the corresponding statements
// are simply not generated.
type Generator struct {
	images   ImageLookup
	resolver LinkResolver
	logger   *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithImageLookup enables resolution of infobox image parameters to
// direct URLs.
func WithImageLookup(l ImageLookup) Option {
	return func(g *Generator) { g.images = l }
}

// WithLinkResolver enables owl:sameAs and rdfs:seeAlso statements to
// external knowledge bases.
func WithLinkResolver(r LinkResolver) Option {
	return func(g *Generator) { g.resolver = r }
}

// WithLogger sets the generator logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// EntityIRI mints the resource IRI for a page title.
func EntityIRI(title string) string {
	return arda.ResourceNamespace + names.Slug(title)
}

// PageIRI mints the page-document IRI for a page title.
func PageIRI(title string) string {
	return arda.PageNamespace + names.Slug(title)
}

// statements accumulates output; every Process call starts a fresh one.
type statements struct {
	out []graph.Triple
}

func (s *statements) add(subject, predicate string, object graph.Term) {
	s.out = append(s.out, graph.Triple{Subject: subject, Predicate: predicate, Object: object})
}

// Process generates all statements for one page given its infobox. The
// returned slice is freshly allocated on every call.
func (g *Generator) Process(ctx context.Context, title string, tpl *wikitext.Template) []graph.Triple {
	s := &statements{}
	entity := EntityIRI(title)
	page := PageIRI(title)
	pageURL := wikiBase + strings.ReplaceAll(title, " ", "_")

	s.add(page, rdfns.Type, graph.IRI(rdfns.Document))
	s.add(page, rdfns.PrimaryTopic, graph.IRI(entity))
	s.add(entity, rdfns.IsPrimaryTopicOf, graph.IRI(page))
	s.add(entity, rdfns.Label, graph.LangLiteral(title, "en"))
	s.add(page, schemaorg.URL, graph.IRI(pageURL))
	s.add(entity, rdfns.SeeAlso, graph.IRI(pageURL))

	kind := wikitext.DetectType(tpl)
	for _, class := range typeClasses(kind) {
		s.add(entity, rdfns.Type, graph.IRI(class))
	}

	params := tpl.Params()
	switch kind {
	case wikitext.TypeCharacter:
		characterFacts(s, entity, params)
	case wikitext.TypePlace:
		placeFacts(s, entity, params)
	case wikitext.TypeObject:
		objectFacts(s, entity, params)
	case wikitext.TypeEvent, wikitext.TypeBattle, wikitext.TypeWar:
		eventFacts(s, entity, params)
	default:
		// Books and untyped infoboxes share enough fields with the
		// character layout to reuse its routine.
		characterFacts(s, entity, params)
	}

	g.attachImage(ctx, s, entity, params)
	g.attachExternalLinks(ctx, s, entity, title)

	return s.out
}

func typeClasses(kind wikitext.EntityType) []string {
	switch kind {
	case wikitext.TypeCharacter:
		return []string{schemaorg.Person, arda.Character}
	case wikitext.TypePlace:
		return []string{schemaorg.Place, arda.Location}
	case wikitext.TypeObject:
		return []string{schemaorg.Thing, arda.Artifact}
	case wikitext.TypeBook:
		return []string{schemaorg.Book}
	case wikitext.TypeBattle:
		return []string{schemaorg.Event, arda.Battle}
	case wikitext.TypeWar:
		return []string{schemaorg.Event, arda.War}
	case wikitext.TypeEvent:
		return []string{schemaorg.Event}
	default:
		return []string{schemaorg.Thing}
	}
}

// childrenDenylist are children values that name a count or an unknown,
// not people.
var childrenDenylist = map[string]bool{
	"twins": true, "twin": true, "several": true,
	"many": true, "unknown": true, "none": true,
}

func characterFacts(s *statements, entity string, params map[string]string) {
	addEnLiteral(s, entity, schemaorg.Name, params["name"])

	for _, part := range wikitext.SplitBr(params["othernames"]) {
		clean := wikitext.Clean(part)
		if clean == "" || strings.Contains(strings.ToLower(clean), "see below") {
			continue
		}
		s.add(entity, schemaorg.AlternateName, graph.Literal(clean))
	}

	if gender := strings.ToLower(wikitext.Clean(params["gender"])); gender == "male" || gender == "female" {
		s.add(entity, schemaorg.Gender, graph.Literal(gender))
	}

	for _, key := range []string{"race", "people"} {
		raw, ok := params[key]
		if !ok {
			continue
		}
		for _, target := range wikitext.InternalLinks(raw) {
			s.add(entity, arda.RaceOf, graph.IRI(EntityIRI(target)))
		}
		if clean := wikitext.Clean(raw); clean != "" {
			s.add(entity, arda.RaceLabel, graph.Literal(clean))
		}
	}

	addDate(s, entity, schemaorg.BirthDate, params["birth"])
	addDate(s, entity, schemaorg.DeathDate, params["death"])
	addFirstLink(s, entity, schemaorg.BirthPlace, params["birthlocation"])
	addFirstLink(s, entity, schemaorg.DeathPlace, params["deathlocation"])
	addLinks(s, entity, schemaorg.Spouse, params["spouse"])
	addLinks(s, entity, schemaorg.Parent, params["parentage"])
	addLinks(s, entity, schemaorg.Sibling, params["siblings"])

	// Each child link is filtered on its own; a field can mix real
	// names with placeholders.
	for _, target := range wikitext.InternalLinks(params["children"]) {
		if childrenDenylist[strings.ToLower(target)] {
			continue
		}
		s.add(entity, schemaorg.Children, graph.IRI(EntityIRI(target)))
	}
}

func placeFacts(s *statements, entity string, params map[string]string) {
	addEnLiteral(s, entity, schemaorg.Name, params["name"])
	addLinks(s, entity, schemaorg.ContainedInPlace, params["location"])
	addLinks(s, entity, arda.Realm, params["realm"])
	addDate(s, entity, schemaorg.FoundingDate, params["founded"])
	addDate(s, entity, arda.DestroyedDate, params["destroyed"])
	addEnLiteral(s, entity, schemaorg.Description, params["description"])
}

func objectFacts(s *statements, entity string, params map[string]string) {
	addEnLiteral(s, entity, schemaorg.Name, params["name"])
	addLiteral(s, entity, arda.ObjectType, params["type"])

	// Ownership is stated both ways so either direction is queryable.
	for _, owner := range wikitext.InternalLinks(params["owner"]) {
		ownerIRI := EntityIRI(owner)
		s.add(ownerIRI, schemaorg.Owns, graph.IRI(entity))
		s.add(entity, arda.OwnedBy, graph.IRI(ownerIRI))
	}

	addLinks(s, entity, schemaorg.Creator, params["creator"])
	addLinks(s, entity, schemaorg.Creator, params["maker"])
}

func eventFacts(s *statements, entity string, params map[string]string) {
	addEnLiteral(s, entity, schemaorg.Name, params["name"])
	addDate(s, entity, schemaorg.StartDate, params["date"])
	addLinks(s, entity, schemaorg.Location, params["location"])

	result, ok := params["result"]
	if !ok {
		result = params["outcome"]
	}
	addLiteral(s, entity, arda.Result, result)
}

// addLiteral cleans a field value and adds it as a plain literal,
// skipping empty results.
func addLiteral(s *statements, entity, predicate, raw string) {
	if clean := wikitext.Clean(raw); clean != "" {
		s.add(entity, predicate, graph.Literal(clean))
	}
}

// addEnLiteral is addLiteral for the prose fields (name, description)
// that carry an English language tag.
func addEnLiteral(s *statements, entity, predicate, raw string) {
	if clean := wikitext.Clean(raw); clean != "" {
		s.add(entity, predicate, graph.LangLiteral(clean, "en"))
	}
}

// addDate normalizes an in-universe date and adds it only when it
// survives validation. Vague values like "unknown" or "Late Third Age"
// produce nothing.
func addDate(s *statements, entity, predicate, raw string) {
	if raw == "" {
		return
	}
	date := wikitext.CleanDate(raw)
	if wikitext.ValidDate(date) {
		s.add(entity, predicate, graph.Literal(date))
	}
}

// addLinks adds one statement per internal link in the field value.
func addLinks(s *statements, entity, predicate, raw string) {
	for _, target := range wikitext.InternalLinks(raw) {
		s.add(entity, predicate, graph.IRI(EntityIRI(target)))
	}
}

// addFirstLink adds a statement for the first internal link only; used
// for fields where extra links are qualifiers, not values.
func addFirstLink(s *statements, entity, predicate, raw string) {
	if links := wikitext.InternalLinks(raw); len(links) > 0 {
		s.add(entity, predicate, graph.IRI(EntityIRI(links[0])))
	}
}

// attachImage resolves the infobox image parameter to a URL. The direct
// URL from the imageinfo API is preferred; an unknown file falls back
// to the hash-addressed upload path, and a lookup failure falls back to
// the file description page. Image handling never fails a page.
func (g *Generator) attachImage(ctx context.Context, s *statements, entity string, params map[string]string) {
	name := strings.TrimSpace(params["image"])
	for _, prefix := range []string{"file:", "image:"} {
		if len(name) >= len(prefix) && strings.EqualFold(name[:len(prefix)], prefix) {
			name = strings.TrimSpace(name[len(prefix):])
		}
	}
	if name == "" {
		return
	}

	if g.images != nil {
		direct, err := g.images.ImageURL(ctx, name)
		if err != nil {
			g.logger.Debug("image lookup failed, linking file page",
				slog.String("file", name), slog.String("error", err.Error()))
			filePage := wikiBase + "File:" + strings.ReplaceAll(name, " ", "_")
			s.add(entity, schemaorg.Image, graph.IRI(filePage))
			return
		}
		if direct != "" {
			s.add(entity, schemaorg.Image, graph.IRI(direct))
			return
		}
	}

	// MediaWiki stores uploads under /<h0>/<h0h1>/ of the MD5 of the
	// underscored file name.
	under := strings.ReplaceAll(name, " ", "_")
	sum := md5.Sum([]byte(under))
	h := hex.EncodeToString(sum[:])
	guessed := fmt.Sprintf("https://tolkiengateway.net/w/images/%s/%s/%s",
		h[:1], h[:2], url.PathEscape(under))
	s.add(entity, schemaorg.Image, graph.IRI(guessed))
}

// attachExternalLinks adds cross-references to external knowledge
// bases. Wikipedia pages are documents, so they get rdfs:seeAlso; the
// structured bases get owl:sameAs.
func (g *Generator) attachExternalLinks(ctx context.Context, s *statements, entity, title string) {
	if g.resolver == nil {
		return
	}
	for kind, uri := range g.resolver.Discover(ctx, title) {
		if uri == "" {
			continue
		}
		if kind == linking.KindWikipedia {
			s.add(entity, rdfns.SeeAlso, graph.IRI(uri))
			continue
		}
		s.add(entity, rdfns.SameAs, graph.IRI(uri))
	}
}
