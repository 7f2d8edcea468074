// Package config provides configuration loading and management for the
// knowledge-graph builder.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mohamedmoudjahed/semantic-web/builder"
	"github.com/mohamedmoudjahed/semantic-web/enrich"
	"github.com/mohamedmoudjahed/semantic-web/fuseki"
	"github.com/mohamedmoudjahed/semantic-web/graph"
	"github.com/mohamedmoudjahed/semantic-web/wiki"
)

// Config is the complete builder configuration.
type Config struct {
	Wiki    WikiConfig    `yaml:"wiki"`
	Build   BuildConfig   `yaml:"build"`
	Linking LinkingConfig `yaml:"linking"`
	Enrich  EnrichConfig  `yaml:"enrich"`
	Fuseki  FusekiConfig  `yaml:"fuseki"`
	NATS    NATSConfig    `yaml:"nats"`
}

// WikiConfig configures the source wiki client.
type WikiConfig struct {
	// APIURL is the MediaWiki api.php endpoint.
	APIURL string `yaml:"api_url"`
	// UserAgent identifies the harvester.
	UserAgent string `yaml:"user_agent"`
	// RequestInterval is the minimum spacing between API requests.
	RequestInterval time.Duration `yaml:"request_interval"`
}

// BuildConfig configures the build run itself.
type BuildConfig struct {
	// Categories maps a group name to the categories harvested for it.
	Categories map[string][]builder.Category `yaml:"categories"`
	// OutputDir is where the Turtle files are written.
	OutputDir string `yaml:"output_dir"`
	// PagePause is slept between pages; LongPause every tenth page.
	PagePause time.Duration `yaml:"page_pause"`
	LongPause time.Duration `yaml:"long_pause"`
}

// AllCategories flattens the category groups in stable (sorted group)
// order.
func (b BuildConfig) AllCategories() []builder.Category {
	groups := make([]string, 0, len(b.Categories))
	for g := range b.Categories {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	var out []builder.Category
	for _, g := range groups {
		out = append(out, b.Categories[g]...)
	}
	return out
}

// LinkingConfig configures external link resolution.
type LinkingConfig struct {
	// CachePath is the JSON link-cache file.
	CachePath string `yaml:"cache_path"`
	// RequestInterval is the minimum spacing between external lookups.
	RequestInterval time.Duration `yaml:"request_interval"`
}

// EnrichConfig configures the enrichment passes.
type EnrichConfig struct {
	CardsURL   string `yaml:"cards_url"`
	CardsCache string `yaml:"cards_cache"`
	// CSVPath is the curated character table; empty skips the pass.
	CSVPath string `yaml:"csv_path"`
	// Languages are the Fandom editions consulted for labels.
	Languages []string `yaml:"languages"`
	// MaxEntities caps the multilingual pass.
	MaxEntities int `yaml:"max_entities"`
	// FuzzyThreshold is the minimum card-name similarity.
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`
}

// FusekiConfig configures the triplestore target.
type FusekiConfig struct {
	URL     string `yaml:"url"`
	Dataset string `yaml:"dataset"`
	// Replace drops the dataset contents before loading.
	Replace bool `yaml:"replace"`
}

// NATSConfig configures optional incremental entity streaming.
type NATSConfig struct {
	// URL is the NATS server; empty disables streaming.
	URL string `yaml:"url"`
	// Subject is the JetStream subject entity messages go to.
	Subject string `yaml:"subject"`
}

// DefaultConfig returns a Config with the defaults the original
// deployment used.
func DefaultConfig() *Config {
	return &Config{
		Wiki: WikiConfig{
			APIURL:          wiki.DefaultAPIURL,
			UserAgent:       wiki.DefaultUserAgent,
			RequestInterval: time.Second,
		},
		Build: BuildConfig{
			Categories: map[string][]builder.Category{
				"characters": {
					{Name: "Third Age characters", Limit: 300},
					{Name: "Second Age characters", Limit: 200},
					{Name: "First Age characters", Limit: 200},
					{Name: "Characters in The Lord of the Rings", Limit: 250},
					{Name: "Characters in The Hobbit", Limit: 150},
					{Name: "Elves", Limit: 200},
					{Name: "Hobbits", Limit: 150},
					{Name: "Dwarves", Limit: 150},
					{Name: "Wizards", Limit: 50},
				},
				"locations": {
					{Name: "Cities, towns and villages", Limit: 200},
					{Name: "Fortresses", Limit: 150},
					{Name: "Mountains", Limit: 150},
					{Name: "Rivers", Limit: 100},
				},
				"artifacts": {
					{Name: "Weapons", Limit: 150},
					{Name: "Rings and jewels", Limit: 100},
				},
				"events": {
					{Name: "Conflicts of the First Age", Limit: 150},
					{Name: "Conflicts of the Second Age", Limit: 100},
					{Name: "Conflicts of the Third Age", Limit: 150},
				},
			},
			OutputDir: "output",
			PagePause: 800 * time.Millisecond,
			LongPause: 1500 * time.Millisecond,
		},
		Linking: LinkingConfig{
			CachePath:       "cache/links.json",
			RequestInterval: 500 * time.Millisecond,
		},
		Enrich: EnrichConfig{
			CardsURL:       enrich.DefaultCardsURL,
			CardsCache:     "cache/metw.json",
			CSVPath:        "",
			Languages:      enrich.DefaultLanguages,
			MaxEntities:    enrich.DefaultMaxEntities,
			FuzzyThreshold: enrich.DefaultFuzzyThreshold,
		},
		Fuseki: FusekiConfig{
			URL:     fuseki.DefaultBaseURL,
			Dataset: fuseki.DefaultDataset,
		},
		NATS: NATSConfig{
			URL:     "",
			Subject: graph.DefaultIngestSubject,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Wiki.APIURL == "" {
		return fmt.Errorf("wiki.api_url is required")
	}
	if c.Wiki.RequestInterval < 0 {
		return fmt.Errorf("wiki.request_interval must not be negative")
	}
	if c.Build.OutputDir == "" {
		return fmt.Errorf("build.output_dir is required")
	}
	if c.Enrich.FuzzyThreshold < 0 || c.Enrich.FuzzyThreshold > 1 {
		return fmt.Errorf("enrich.fuzzy_threshold must be between 0 and 1")
	}
	if c.Fuseki.URL != "" && c.Fuseki.Dataset == "" {
		return fmt.Errorf("fuseki.dataset is required when fuseki.url is set")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file, layered over the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one; other takes precedence
// for non-zero values.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Wiki.APIURL != "" {
		c.Wiki.APIURL = other.Wiki.APIURL
	}
	if other.Wiki.UserAgent != "" {
		c.Wiki.UserAgent = other.Wiki.UserAgent
	}
	if other.Wiki.RequestInterval != 0 {
		c.Wiki.RequestInterval = other.Wiki.RequestInterval
	}

	if len(other.Build.Categories) > 0 {
		c.Build.Categories = other.Build.Categories
	}
	if other.Build.OutputDir != "" {
		c.Build.OutputDir = other.Build.OutputDir
	}
	if other.Build.PagePause != 0 {
		c.Build.PagePause = other.Build.PagePause
	}
	if other.Build.LongPause != 0 {
		c.Build.LongPause = other.Build.LongPause
	}

	if other.Linking.CachePath != "" {
		c.Linking.CachePath = other.Linking.CachePath
	}
	if other.Linking.RequestInterval != 0 {
		c.Linking.RequestInterval = other.Linking.RequestInterval
	}

	if other.Enrich.CardsURL != "" {
		c.Enrich.CardsURL = other.Enrich.CardsURL
	}
	if other.Enrich.CardsCache != "" {
		c.Enrich.CardsCache = other.Enrich.CardsCache
	}
	if other.Enrich.CSVPath != "" {
		c.Enrich.CSVPath = other.Enrich.CSVPath
	}
	if len(other.Enrich.Languages) > 0 {
		c.Enrich.Languages = other.Enrich.Languages
	}
	if other.Enrich.MaxEntities != 0 {
		c.Enrich.MaxEntities = other.Enrich.MaxEntities
	}
	if other.Enrich.FuzzyThreshold != 0 {
		c.Enrich.FuzzyThreshold = other.Enrich.FuzzyThreshold
	}

	if other.Fuseki.URL != "" {
		c.Fuseki.URL = other.Fuseki.URL
	}
	if other.Fuseki.Dataset != "" {
		c.Fuseki.Dataset = other.Fuseki.Dataset
	}
	if other.Fuseki.Replace {
		c.Fuseki.Replace = true
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}
}
