package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mohamedmoudjahed/semantic-web/linking"
	"github.com/mohamedmoudjahed/semantic-web/wiki"
)

// kindOrder fixes the display order of external knowledge bases.
var kindOrder = []linking.Kind{
	linking.KindWikipedia,
	linking.KindDBpedia,
	linking.KindWikidata,
	linking.KindYago,
}

func (r *root) linkCmd() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "link NAME...",
		Short: "Resolve external knowledge-base links for entity names",
		Long: `Link resolves each given name against Wikipedia and Wikidata and
prints the discovered external identifiers. Results are remembered in
the link cache, so a later build reuses them without network calls.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cachePath := r.cfg.Linking.CachePath
			if noCache {
				cachePath = ""
			}
			cache := linking.NewCache(cachePath)
			resolver := linking.NewResolver(cache,
				linking.WithResolverGate(wiki.NewGate(r.cfg.Linking.RequestInterval)),
				linking.WithResolverLogger(r.logger),
			)

			name := color.New(color.Bold)
			for _, arg := range args {
				if ctx.Err() != nil {
					break
				}
				links := resolver.Discover(ctx, arg)
				name.Printf("%s\n", arg)
				if len(links) == 0 {
					color.Yellow("  no match\n")
					continue
				}
				for _, kind := range kindOrder {
					if v, ok := links[kind]; ok {
						fmt.Printf("  %-10s %s\n", kind, v)
					}
				}
			}

			if !noCache {
				if err := cache.Save(); err != nil {
					return fmt.Errorf("save link cache: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Do not read or write the link cache")
	return cmd
}
