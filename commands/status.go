package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mohamedmoudjahed/semantic-web/fuseki"
	"github.com/mohamedmoudjahed/semantic-web/linking"
)

func (r *root) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show triplestore and cache status",
		Long: `Status reports whether the configured Fuseki endpoint is reachable,
how many triples its dataset holds, and what the local caches and
output files contain.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := r.cfg
			bold := color.New(color.Bold)

			bold.Println("Triplestore")
			if cfg.Fuseki.URL == "" {
				fmt.Println("  not configured")
			} else {
				store := fuseki.NewClient(cfg.Fuseki.URL, cfg.Fuseki.Dataset,
					fuseki.WithLogger(r.logger))
				if err := store.Ping(ctx); err != nil {
					color.Red("  %s unreachable: %v", cfg.Fuseki.URL, err)
				} else {
					color.Green("  %s up", cfg.Fuseki.URL)
					if n, err := store.CountTriples(ctx); err != nil {
						color.Yellow("  dataset %s: count failed: %v", cfg.Fuseki.Dataset, err)
					} else {
						fmt.Printf("  dataset %s: %d triples\n", cfg.Fuseki.Dataset, n)
					}
				}
			}

			bold.Println("Link cache")
			cache := linking.NewCache(cfg.Linking.CachePath)
			fmt.Printf("  %s: %d entries\n", cfg.Linking.CachePath, cache.Len())

			bold.Println("Output")
			ttl := filepath.Join(cfg.Build.OutputDir, "tolkien-kg.ttl")
			if info, err := os.Stat(ttl); err == nil {
				fmt.Printf("  %s: %d bytes, modified %s\n",
					ttl, info.Size(), info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Printf("  %s: not built yet\n", ttl)
			}

			return nil
		},
	}
}
