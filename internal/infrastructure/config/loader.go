package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/miragem-dev/miragem/assets"
	"github.com/miragem-dev/miragem/internal/domain"
	"github.com/miragem-dev/miragem/internal/pkg/filesystem"
	"github.com/miragem-dev/miragem/internal/ports"
)

// FileLoader loads YAML configuration from ~/.miragem/config.yaml
// (overridable via MIRAGEM_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := writeDefault(path); err != nil {
				return domain.Config{}, err
			}
			return DefaultConfig(), nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}

	return hydrateDefaults(cfg), nil
}

// Path resolves the active configuration file path.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("MIRAGEM_CONFIG"); custom != "" {
		return custom
	}
	return filesystem.MiragemDir("config.yaml")
}

// Reset rewrites the configuration file with the embedded default and
// returns the resulting configuration.
func (l *FileLoader) Reset() (domain.Config, error) {
	path := l.Path()
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return domain.Config{}, err
	}
	if err := writeDefault(path); err != nil {
		return domain.Config{}, err
	}
	return DefaultConfig(), nil
}

func writeDefault(path string) error {
	return os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

// DefaultConfig parses the embedded default configuration, fully hydrated.
// The embedded document is part of the build, so a parse failure here is a
// programming error.
func DefaultConfig() domain.Config {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		panic("embedded default config is invalid: " + err.Error())
	}
	return hydrateDefaults(cfg)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Preferences.DefaultModel == "" && len(cfg.Models) > 0 {
		cfg.Preferences.DefaultModel = cfg.Models[0].Name
	}
	if cfg.Preferences.TimeoutSeconds == 0 {
		cfg.Preferences.TimeoutSeconds = 120
	}
	if cfg.Retry.MaxRetries == 0 {
		cfg.Retry.MaxRetries = domain.DefaultMaxRetries
	}
	if cfg.Retry.InitialDelayMS == 0 {
		cfg.Retry.InitialDelayMS = int(domain.DefaultInitialDelay.Milliseconds())
	}
	if cfg.Session.ContextWindow == 0 {
		cfg.Session.ContextWindow = domain.DefaultContextWindow
	}
	if cfg.Session.FlushIntervalMS == 0 {
		cfg.Session.FlushIntervalMS = int(domain.DefaultFlushInterval.Milliseconds())
	}
	if cfg.Session.Dir == "" {
		cfg.Session.Dir = filesystem.MiragemDir("sessions")
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
