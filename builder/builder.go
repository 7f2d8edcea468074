// Package builder orchestrates a knowledge-graph build: category
// fetching, page processing, ontology and enrichment phases, and the
// final save and persist steps. Pages are processed strictly
// sequentially; cancellation is cooperative and leaves a valid partial
// graph behind.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedmoudjahed/semantic-web/enrich"
	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/rdf"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/arda"
	rdfns "github.com/mohamedmoudjahed/semantic-web/vocabulary/rdf"
	"github.com/mohamedmoudjahed/semantic-web/wiki"
	"github.com/mohamedmoudjahed/semantic-web/wikitext"
)

// State is the terminal state of a build.
type State string

const (
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Category names a wiki category and how many of its pages to take.
type Category struct {
	Name  string `yaml:"name"`
	Limit int    `yaml:"limit"`
}

// Progress is one progress report. Fraction is monotonic across a run.
type Progress struct {
	Step     string
	Message  string
	Fraction float64
	Details  map[string]any
}

// ProgressFunc receives progress reports during a run.
type ProgressFunc func(Progress)

// Stats counts page outcomes and graph growth for one build. Errored
// pages are not marked processed, so the next build retries them.
type Stats struct {
	Processed  int
	Succeeded  int
	NoInfobox  int
	Errored    int
	Duplicates int
	Triples    int
	LinksFound int
	Enrichment enrich.Stats
}

// Result is the outcome of one run. Graph and Stats are valid in every
// terminal state, including cancelled.
type Result struct {
	RunID      string
	State      State
	Stats      Stats
	Graph      *graph.Graph
	OutputPath string
	Err        error
}

// PageSource lists category members and fetches page markup.
// *wiki.Client satisfies this.
type PageSource interface {
	CategoryMembers(ctx context.Context, category string, limit int) ([]string, error)
	PageWikitext(ctx context.Context, title string) (string, error)
}

// TripleGenerator turns one page's infobox into statements.
// *rdf.Generator satisfies this.
type TripleGenerator interface {
	Process(ctx context.Context, title string, tpl *wikitext.Template) []graph.Triple
}

// Store receives the finished graph. *fuseki.Client satisfies this.
type Store interface {
	Ping(ctx context.Context) error
	Load(ctx context.Context, g *graph.Graph, replace bool) error
}

// EntityPublisher streams per-page statements as they are produced.
// *graph.Publisher satisfies this.
type EntityPublisher interface {
	PublishEntity(ctx context.Context, entityID string, triples []graph.Triple) error
}

// CardSource loads the card dataset for the enrichment phase.
type CardSource func(ctx context.Context) ([]enrich.Card, error)

const (
	// extractionShare is the progress fraction consumed by category
	// extraction, split evenly across categories by position.
	extractionShare = 0.60

	defaultPagePause = 800 * time.Millisecond
	defaultLongPause = 1500 * time.Millisecond
)

// Builder runs builds. All collaborators except the page source are
// optional; missing ones skip their phase.
type Builder struct {
	source       PageSource
	gen          TripleGenerator
	store        Store
	replaceStore bool
	publisher    EntityPublisher
	cards        CardSource
	csvPath      string
	multilingual *enrich.Multilingual
	outputDir    string
	pagePause    time.Duration
	longPause    time.Duration
	progress     ProgressFunc
	logger       *slog.Logger
	metrics      *Metrics

	mu           sync.Mutex
	stats        Stats
	processed    map[string]bool
	lastFraction float64
}

// Option configures a Builder.
type Option func(*Builder)

// WithSource replaces the page source.
func WithSource(s PageSource) Option { return func(b *Builder) { b.source = s } }

// WithGenerator replaces the triple generator.
func WithGenerator(g TripleGenerator) Option { return func(b *Builder) { b.gen = g } }

// WithStore enables the persist phase. replace drops the store's
// current contents before loading.
func WithStore(s Store, replace bool) Option {
	return func(b *Builder) {
		b.store = s
		b.replaceStore = replace
	}
}

// WithPublisher enables per-page streaming of statements.
func WithPublisher(p EntityPublisher) Option { return func(b *Builder) { b.publisher = p } }

// WithCardSource enables the card enrichment pass.
func WithCardSource(c CardSource) Option { return func(b *Builder) { b.cards = c } }

// WithCSVPath enables the tabular enrichment pass.
func WithCSVPath(path string) Option { return func(b *Builder) { b.csvPath = path } }

// WithMultilingual enables the translated-label pass.
func WithMultilingual(m *enrich.Multilingual) Option { return func(b *Builder) { b.multilingual = m } }

// WithOutputDir sets where the Turtle files are written.
func WithOutputDir(dir string) Option { return func(b *Builder) { b.outputDir = dir } }

// WithPacing overrides the inter-page pauses (tests set them to zero).
func WithPacing(page, long time.Duration) Option {
	return func(b *Builder) {
		b.pagePause = page
		b.longPause = long
	}
}

// WithProgress sets the progress callback.
func WithProgress(p ProgressFunc) Option { return func(b *Builder) { b.progress = p } }

// WithLogger sets the builder logger.
func WithLogger(l *slog.Logger) Option { return func(b *Builder) { b.logger = l } }

// WithMetrics mirrors the statistics to Prometheus.
func WithMetrics(m *Metrics) Option { return func(b *Builder) { b.metrics = m } }

// New creates a builder. Without options it talks to the public wiki
// and writes to ./output.
func New(opts ...Option) *Builder {
	b := &Builder{
		outputDir: "output",
		pagePause: defaultPagePause,
		longPause: defaultLongPause,
		logger:    slog.Default(),
		processed: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.source == nil {
		b.source = wiki.NewClient("")
	}
	if b.gen == nil {
		b.gen = rdf.NewGenerator()
	}
	return b
}

// Stats returns a snapshot of the current counters; safe to call while
// a run is in flight.
func (b *Builder) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

func (b *Builder) report(step, message string, fraction float64, details map[string]any) {
	b.mu.Lock()
	if fraction < b.lastFraction {
		fraction = b.lastFraction
	}
	b.lastFraction = fraction
	b.mu.Unlock()

	if b.progress != nil {
		b.progress(Progress{Step: step, Message: message, Fraction: fraction, Details: details})
	}
}

// Run executes one build over the given categories.
func (b *Builder) Run(ctx context.Context, categories []Category) *Result {
	res := &Result{
		RunID: uuid.NewString(),
		Graph: graph.New(),
		State: StateCompleted,
	}
	log := b.logger.With(slog.String("run_id", res.RunID))
	log.Info("build started", slog.Int("categories", len(categories)))

	finish := func(state State, err error) *Result {
		res.State = state
		res.Err = err
		res.Stats = b.Stats()
		b.metrics.buildDone(state)
		log.Info("build finished",
			slog.String("state", string(state)),
			slog.Int("processed", res.Stats.Processed),
			slog.Int("succeeded", res.Stats.Succeeded),
			slog.Int("no_infobox", res.Stats.NoInfobox),
			slog.Int("errored", res.Stats.Errored),
			slog.Int("duplicates", res.Stats.Duplicates),
			slog.Int("triples", res.Stats.Triples),
			slog.Int("links", res.Stats.LinksFound))
		return res
	}

	// Extraction: each category owns an equal slice of the first 60%.
	span := extractionShare
	if len(categories) > 0 {
		span = extractionShare / float64(len(categories))
	}
	for i, cat := range categories {
		if ctx.Err() != nil {
			return finish(StateCancelled, ctx.Err())
		}
		base := float64(i) * span
		b.report("fetch", "Fetching category "+cat.Name, base, map[string]any{"category": cat.Name})

		titles, err := b.source.CategoryMembers(ctx, cat.Name, cat.Limit)
		if err != nil {
			if ctx.Err() != nil {
				return finish(StateCancelled, ctx.Err())
			}
			log.Warn("category fetch failed", slog.String("category", cat.Name), slog.String("error", err.Error()))
			continue
		}
		log.Info("category fetched", slog.String("category", cat.Name), slog.Int("pages", len(titles)))

		for j, title := range titles {
			if ctx.Err() != nil {
				return finish(StateCancelled, ctx.Err())
			}
			b.processPage(ctx, res.Graph, title, log)

			if j < len(titles)-1 {
				pause := b.pagePause
				if (j+1)%10 == 0 {
					pause = b.longPause
				}
				if err := sleepCtx(ctx, pause); err != nil {
					return finish(StateCancelled, err)
				}
			}
			b.report("process", title, base+span*float64(j+1)/float64(len(titles)), nil)
		}
	}

	if ctx.Err() != nil {
		return finish(StateCancelled, ctx.Err())
	}

	// Ontology.
	added := res.Graph.AddAll(arda.Ontology())
	b.addTriples(added)
	b.report("ontology", "Ontology declarations added", 0.65, map[string]any{"triples": added})

	// Enrichment.
	if err := b.enrichPhase(ctx, res.Graph); err != nil {
		return finish(StateCancelled, err)
	}

	if ctx.Err() != nil {
		return finish(StateCancelled, ctx.Err())
	}

	// Save.
	path, err := b.save(res.Graph)
	if err != nil {
		return finish(StateFailed, err)
	}
	res.OutputPath = path
	b.report("save", "Graph saved", 0.90, map[string]any{"path": path})

	// Persist. A store that is down degrades the build to file-only.
	if b.store != nil {
		if err := b.store.Ping(ctx); err != nil {
			log.Warn("triplestore unavailable, keeping file output only", slog.String("error", err.Error()))
		} else if err := b.store.Load(ctx, res.Graph, b.replaceStore); err != nil {
			if ctx.Err() != nil {
				return finish(StateCancelled, ctx.Err())
			}
			log.Warn("triplestore load failed", slog.String("error", err.Error()))
		}
	}
	b.report("persist", "Store load finished", 0.95, nil)

	b.report("done", "Build complete", 1.0, nil)
	return finish(StateCompleted, nil)
}

// processPage handles one page end to end. Failures are counted but
// never abort the run, and only successful or infobox-less pages are
// marked processed.
func (b *Builder) processPage(ctx context.Context, g *graph.Graph, title string, log *slog.Logger) {
	b.mu.Lock()
	seen := b.processed[title]
	if seen {
		b.stats.Duplicates++
	}
	b.mu.Unlock()
	if seen {
		b.metrics.page(outcomeDuplicate)
		log.Debug("page already processed", slog.String("title", title))
		return
	}

	markup, err := b.source.PageWikitext(ctx, title)
	if err != nil {
		b.mu.Lock()
		b.stats.Processed++
		b.stats.Errored++
		b.mu.Unlock()
		b.metrics.page(outcomeErrored)
		log.Warn("page fetch failed", slog.String("title", title), slog.String("error", err.Error()))
		return
	}

	// A missing or empty page is an error outcome, not an infobox-less
	// page; it stays unmarked so the next occurrence retries it.
	if strings.TrimSpace(markup) == "" {
		b.mu.Lock()
		b.stats.Processed++
		b.stats.Errored++
		b.mu.Unlock()
		b.metrics.page(outcomeErrored)
		log.Warn("page missing or empty", slog.String("title", title))
		return
	}

	tpl, ok := wikitext.ExtractInfobox(markup)
	if !ok {
		b.mu.Lock()
		b.stats.Processed++
		b.stats.NoInfobox++
		b.processed[title] = true
		b.mu.Unlock()
		b.metrics.page(outcomeNoInfobox)
		log.Debug("no infobox", slog.String("title", title))
		return
	}

	triples := b.gen.Process(ctx, title, tpl)
	added := g.AddAll(triples)
	links := countExternalLinks(triples)

	b.mu.Lock()
	b.stats.Processed++
	b.stats.Succeeded++
	b.stats.Triples += added
	b.stats.LinksFound += links
	b.processed[title] = true
	b.mu.Unlock()
	b.metrics.page(outcomeSucceeded)
	b.metrics.addTriples(added)
	b.metrics.addLinks(links)

	if b.publisher != nil {
		if err := b.publisher.PublishEntity(ctx, rdf.EntityIRI(title), triples); err != nil {
			log.Warn("entity publish failed", slog.String("title", title), slog.String("error", err.Error()))
		}
	}
	log.Debug("page processed", slog.String("title", title), slog.Int("triples", added))
}

func (b *Builder) enrichPhase(ctx context.Context, g *graph.Graph) error {
	if b.cards != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		cards, err := b.cards(ctx)
		if err != nil {
			b.logger.Warn("card dataset unavailable", slog.String("error", err.Error()))
		} else {
			stats := enrich.ApplyCards(g, cards, enrich.DefaultFuzzyThreshold, b.logger)
			b.mergeEnrichment(stats)
		}
	}
	b.report("enrich", "Card enrichment finished", 0.70, nil)

	if b.csvPath != "" {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f, err := os.Open(b.csvPath)
		if err != nil {
			b.logger.Warn("csv dataset unavailable", slog.String("path", b.csvPath), slog.String("error", err.Error()))
		} else {
			stats, err := enrich.ApplyCSV(g, f, b.logger)
			f.Close()
			if err != nil {
				b.logger.Warn("csv enrichment failed", slog.String("error", err.Error()))
			} else {
				b.mergeEnrichment(stats)
			}
		}
	}

	if b.multilingual != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.mergeEnrichment(b.multilingual.Apply(ctx, g))
	}
	b.report("enrich", "Enrichment finished", 0.75, nil)
	return ctx.Err()
}

func (b *Builder) mergeEnrichment(s enrich.Stats) {
	b.mu.Lock()
	b.stats.Enrichment.Merge(s)
	b.stats.Triples += s.Triples
	b.mu.Unlock()
	b.metrics.addTriples(s.Triples)
}

func (b *Builder) addTriples(n int) {
	b.mu.Lock()
	b.stats.Triples += n
	b.mu.Unlock()
	b.metrics.addTriples(n)
}

// save writes the full graph and the ontology declarations as separate
// Turtle files.
func (b *Builder) save(g *graph.Graph) (string, error) {
	if err := os.MkdirAll(b.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(b.outputDir, "tolkien-kg.ttl")
	if err := writeTurtle(path, g); err != nil {
		return "", err
	}

	onto := graph.New()
	onto.AddAll(arda.Ontology())
	if err := writeTurtle(filepath.Join(b.outputDir, "ontology.ttl"), onto); err != nil {
		return "", err
	}
	return path, nil
}

func writeTurtle(path string, g *graph.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := g.Serialize(f, graph.FormatTurtle, arda.Prefixes); err != nil {
		f.Close()
		return fmt.Errorf("serialize %s: %w", path, err)
	}
	return f.Close()
}

// countExternalLinks counts the cross-references to external knowledge
// bases among one page's statements.
func countExternalLinks(triples []graph.Triple) int {
	n := 0
	for _, t := range triples {
		if t.Predicate == rdfns.SameAs {
			n++
		}
	}
	return n
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
