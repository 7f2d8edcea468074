package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/vocabulary/arda"
)

func (r *root) ontologyCmd() *cobra.Command {
	var (
		output   string
		ntriples bool
	)

	cmd := &cobra.Command{
		Use:   "ontology",
		Short: "Write the Middle-earth ontology",
		Long: `Ontology writes the OWL class and property definitions the builder
adds to every graph, without harvesting anything. Use "-" to write to
stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := graph.New()
			g.AddAll(arda.Ontology())

			format := graph.FormatTurtle
			if ntriples {
				format = graph.FormatNTriples
			}

			if output == "-" {
				return g.Serialize(cmd.OutOrStdout(), format, arda.Prefixes)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := g.Serialize(f, format, arda.Prefixes); err != nil {
				f.Close()
				return fmt.Errorf("serialize ontology: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}

			color.Green("Wrote %d ontology statements to %s", g.Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "ontology.ttl", `Output file ("-" for stdout)`)
	cmd.Flags().BoolVar(&ntriples, "ntriples", false, "Write N-Triples instead of Turtle")
	return cmd
}
