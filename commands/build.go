package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mohamedmoudjahed/semantic-web/builder"
	"github.com/mohamedmoudjahed/semantic-web/config"
	"github.com/mohamedmoudjahed/semantic-web/enrich"
	"github.com/mohamedmoudjahed/semantic-web/fuseki"
	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/linking"
	"github.com/mohamedmoudjahed/semantic-web/rdf"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/arda"
	"github.com/mohamedmoudjahed/semantic-web/wiki"
)

func (r *root) buildCmd() *cobra.Command {
	var (
		groups    []string
		outputDir string
		csvPath   string
		replace   bool
		noStore   bool
		noLinks   bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Harvest the wiki and build the knowledge graph",
		Long: `Build fetches the configured wiki categories page by page, extracts
each infobox into RDF statements, links entities to external knowledge
bases, runs the enrichment passes and writes the result as Turtle.
When a Fuseki endpoint is configured the graph is also bulk-loaded
there; a down endpoint degrades the run to file-only output.

Interrupting a build (Ctrl-C) keeps the partial graph and writes it
out before exiting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.runBuild(cmd.Context(), buildFlags{
				groups:    groups,
				outputDir: outputDir,
				csvPath:   csvPath,
				replace:   replace,
				noStore:   noStore,
				noLinks:   noLinks,
			})
		},
	}

	cmd.Flags().StringSliceVar(&groups, "groups", nil, "Category groups to harvest (default: all)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides config)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Curated character CSV for enrichment (overrides config)")
	cmd.Flags().BoolVar(&replace, "replace", false, "Clear the Fuseki dataset before loading")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Skip the Fuseki load")
	cmd.Flags().BoolVar(&noLinks, "no-links", false, "Skip external link resolution")

	return cmd
}

type buildFlags struct {
	groups    []string
	outputDir string
	csvPath   string
	replace   bool
	noStore   bool
	noLinks   bool
}

func (r *root) runBuild(ctx context.Context, flags buildFlags) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := r.cfg
	categories, err := selectCategories(cfg.Build, flags.groups)
	if err != nil {
		return err
	}

	wikiClient := wiki.NewClient(cfg.Wiki.APIURL,
		wiki.WithUserAgent(cfg.Wiki.UserAgent),
		wiki.WithGate(wiki.NewGate(cfg.Wiki.RequestInterval)),
		wiki.WithLogger(r.logger),
	)

	genOpts := []rdf.Option{
		rdf.WithImageLookup(wikiClient),
		rdf.WithLogger(r.logger),
	}
	var cache *linking.Cache
	if !flags.noLinks {
		cache = linking.NewCache(cfg.Linking.CachePath)
		resolver := linking.NewResolver(cache,
			linking.WithResolverGate(wiki.NewGate(cfg.Linking.RequestInterval)),
			linking.WithResolverLogger(r.logger),
		)
		genOpts = append(genOpts, rdf.WithLinkResolver(resolver))
	}

	outputDir := cfg.Build.OutputDir
	if flags.outputDir != "" {
		outputDir = flags.outputDir
	}

	opts := []builder.Option{
		builder.WithSource(wikiClient),
		builder.WithGenerator(rdf.NewGenerator(genOpts...)),
		builder.WithOutputDir(outputDir),
		builder.WithPacing(cfg.Build.PagePause, cfg.Build.LongPause),
		builder.WithProgress(progressPrinter()),
		builder.WithLogger(r.logger),
		builder.WithMetrics(builder.NewMetrics(prometheus.DefaultRegisterer)),
	}

	if cfg.Enrich.CardsURL != "" {
		httpc := &http.Client{Timeout: 30 * time.Second}
		cardsURL, cardsCache := cfg.Enrich.CardsURL, cfg.Enrich.CardsCache
		opts = append(opts, builder.WithCardSource(func(ctx context.Context) ([]enrich.Card, error) {
			return enrich.LoadCards(ctx, httpc, cardsURL, cardsCache)
		}))
	}

	csvPath := cfg.Enrich.CSVPath
	if flags.csvPath != "" {
		csvPath = flags.csvPath
	}
	if csvPath != "" {
		opts = append(opts, builder.WithCSVPath(csvPath))
	}

	if len(cfg.Enrich.Languages) > 0 {
		opts = append(opts, builder.WithMultilingual(enrich.NewMultilingual(
			enrich.WithLanguages(cfg.Enrich.Languages),
			enrich.WithMaxEntities(cfg.Enrich.MaxEntities),
			enrich.WithMultilingualLogger(r.logger),
		)))
	}

	if !flags.noStore && cfg.Fuseki.URL != "" {
		store := fuseki.NewClient(cfg.Fuseki.URL, cfg.Fuseki.Dataset,
			fuseki.WithLogger(r.logger))
		opts = append(opts, builder.WithStore(store, flags.replace || cfg.Fuseki.Replace))
	}

	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name(appName))
		if err != nil {
			r.logger.Warn("NATS unavailable, entity streaming disabled", "url", cfg.NATS.URL, "error", err)
		} else {
			defer nc.Drain()
			pub, err := graph.NewPublisher(nc, cfg.NATS.Subject)
			if err != nil {
				r.logger.Warn("JetStream unavailable, entity streaming disabled", "error", err)
			} else {
				opts = append(opts, builder.WithPublisher(pub))
			}
		}
	}

	res := builder.New(opts...).Run(ctx, categories)

	if cache != nil {
		if err := cache.Save(); err != nil {
			r.logger.Warn("Failed to save link cache", "path", cfg.Linking.CachePath, "error", err)
		}
	}

	printSummary(res)

	switch res.State {
	case builder.StateFailed:
		return fmt.Errorf("build %s failed: %w", res.RunID, res.Err)
	case builder.StateCancelled:
		// The builder stops before its save phase, so write out what
		// was harvested before the interrupt.
		path, err := writePartial(outputDir, res.Graph)
		if err != nil {
			r.logger.Warn("Failed to save partial graph", "error", err)
			color.Yellow("Build cancelled")
		} else {
			color.Yellow("Build cancelled; partial graph kept at %s", path)
		}
	}
	return nil
}

// writePartial saves a cancelled run's graph as Turtle so nothing
// already harvested is lost.
func writePartial(outputDir string, g *graph.Graph) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, "tolkien-kg.ttl")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := g.Serialize(f, graph.FormatTurtle, arda.Prefixes); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// selectCategories flattens the configured groups, optionally filtered
// to the named ones.
func selectCategories(build config.BuildConfig, groups []string) ([]builder.Category, error) {
	if len(groups) == 0 {
		return build.AllCategories(), nil
	}

	sort.Strings(groups)
	var out []builder.Category
	for _, g := range groups {
		cats, ok := build.Categories[g]
		if !ok {
			return nil, fmt.Errorf("unknown category group %q", g)
		}
		out = append(out, cats...)
	}
	return out, nil
}

func progressPrinter() builder.ProgressFunc {
	step := color.New(color.FgCyan, color.Bold)
	return func(p builder.Progress) {
		step.Printf("[%3.0f%%] %-10s", p.Fraction*100, p.Step)
		fmt.Printf(" %s\n", p.Message)
	}
}

func printSummary(res *builder.Result) {
	bold := color.New(color.Bold)
	bold.Printf("\nBuild %s %s\n", res.RunID, stateColor(res.State))
	fmt.Printf("  pages processed:  %d\n", res.Stats.Processed)
	fmt.Printf("  succeeded:        %d\n", res.Stats.Succeeded)
	fmt.Printf("  no infobox:       %d\n", res.Stats.NoInfobox)
	fmt.Printf("  errored:          %d\n", res.Stats.Errored)
	fmt.Printf("  duplicates:       %d\n", res.Stats.Duplicates)
	fmt.Printf("  triples:          %d\n", res.Stats.Triples)
	fmt.Printf("  external links:   %d\n", res.Stats.LinksFound)
	if res.Stats.Enrichment.Checked > 0 {
		fmt.Printf("  enrichment:       %d matched of %d checked, %d triples\n",
			res.Stats.Enrichment.Matched, res.Stats.Enrichment.Checked, res.Stats.Enrichment.Triples)
	}
	if res.OutputPath != "" {
		fmt.Printf("  output:           %s\n", res.OutputPath)
	}
}

func stateColor(s builder.State) string {
	switch s {
	case builder.StateCompleted:
		return color.GreenString(string(s))
	case builder.StateCancelled:
		return color.YellowString(string(s))
	default:
		return color.RedString(string(s))
	}
}
