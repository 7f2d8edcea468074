package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file.
	ProjectConfigFile = "tolkien-kg.yaml"
	// UserConfigDir is the directory for user-level config.
	UserConfigDir = ".config/tolkien-kg"
	// UserConfigFile is the name of the user-level config file.
	UserConfigFile = "config.yaml"
)

// Environment variables recognized as overrides; they win over every
// file layer.
const (
	EnvFusekiURL     = "FUSEKI_URL"
	EnvFusekiDataset = "FUSEKI_DATASET"
	EnvNATSURL       = "NATS_URL"
)

// Loader handles configuration loading with layered precedence.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/tolkien-kg/config.yaml)
// 3. Project config (tolkien-kg.yaml in current or parent directories)
// 4. Environment variables (FUSEKI_URL, FUSEKI_DATASET, NATS_URL)
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfig, err := LoadFromFile(userConfigPath); err == nil {
		l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
		config.Merge(userConfig)
	} else if !errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
	}

	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	l.applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overrides file-provided values from the environment.
func (l *Loader) applyEnv(config *Config) {
	if v := os.Getenv(EnvFusekiURL); v != "" {
		config.Fuseki.URL = v
		l.logger.Debug("Fuseki URL from environment", slog.String("url", v))
	}
	if v := os.Getenv(EnvFusekiDataset); v != "" {
		config.Fuseki.Dataset = v
	}
	if v := os.Getenv(EnvNATSURL); v != "" {
		config.NATS.URL = v
	}
}

// LoadFile loads an explicit config file layered over the defaults,
// then applies environment overrides. Used when the user names a file
// instead of relying on the search path.
func (l *Loader) LoadFile(path string) (*Config, error) {
	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	l.applyEnv(config)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// EnsureUserConfig creates the user config file with defaults if it
// doesn't exist.
func (l *Loader) EnsureUserConfig() error {
	userConfigPath := l.userConfigPath()

	if _, err := os.Stat(userConfigPath); err == nil {
		return nil
	}

	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return nil
}

// userConfigPath returns the path to the user config file.
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for tolkien-kg.yaml in current and parent
// directories.
func (l *Loader) findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
