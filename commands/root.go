// Package commands implements the tolkien-kg command line interface.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mohamedmoudjahed/semantic-web/config"
)

const (
	Version = "1.0.0"
	appName = "tolkien-kg"
)

// root carries the state shared by every subcommand: the resolved
// configuration and the logger built from the persistent flags.
type root struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

// New builds the tolkien-kg root command with all subcommands attached.
func New() *cobra.Command {
	r := &root{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Tolkien Gateway knowledge-graph builder",
		Long: `tolkien-kg harvests Tolkien Gateway infoboxes and builds an RDF
knowledge graph of Middle-earth: characters, locations, artifacts and
events, linked to Wikipedia, DBpedia, Wikidata and YAGO, enriched from
the Middle-earth CCG card set and multilingual Fandom wikis.

The graph is written as Turtle files and, when configured, bulk-loaded
into an Apache Jena Fuseki dataset.`,
		SilenceUsage:      true,
		PersistentPreRunE: r.setup,
	}

	cmd.PersistentFlags().StringVarP(&r.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&r.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		r.buildCmd(),
		r.linkCmd(),
		r.ontologyCmd(),
		r.statusCmd(),
		versionCmd(),
	)

	return cmd
}

// setup runs before every subcommand: env bootstrap, logging, config.
func (r *root) setup(cmd *cobra.Command, _ []string) error {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	r.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(r.logLevel),
	}))
	slog.SetDefault(r.logger)

	loader := config.NewLoader(r.logger)
	var err error
	if r.configPath != "" {
		r.cfg, err = loader.LoadFile(r.configPath)
	} else {
		r.cfg, err = loader.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	}
}
