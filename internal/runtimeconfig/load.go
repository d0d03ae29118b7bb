package runtimeconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-folio/internal/content"
)

// Environment overrides applied after the config file.
const (
	EnvContentDir = "FOLIO_CONTENT_DIR"
	EnvOutputDir  = "FOLIO_OUTPUT_DIR"
	EnvBaseURL    = "FOLIO_BASE_URL"
	EnvLogLevel   = "FOLIO_LOG_LEVEL"
	EnvWorkers    = "FOLIO_WORKERS"
)

// EnvFiles are loaded, when present, before the config file is read.
// Variables already set in the process win.
var EnvFiles = []string{".env", ".env.local"}

var ErrConfigNotFound = errors.New("folio config: configuration file not found")

// Load reads the YAML file at path over DefaultConfig, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	loadEnvFiles()

	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return Config{}, fmt.Errorf("folio config: read %s: %w", path, err)
		}
		if err := Decode([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
			return Config{}, fmt.Errorf("folio config: %s: %w", path, err)
		}
	}

	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode unmarshals YAML onto cfg, keeping fields the document omits.
func Decode(data []byte, cfg *Config) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// ApplyEnv overlays FOLIO_* variables read through lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if value, ok := lookupNonEmpty(lookup, EnvContentDir); ok {
		cfg.ContentDir = value
	}
	if value, ok := lookupNonEmpty(lookup, EnvOutputDir); ok {
		cfg.OutputDir = value
	}
	if value, ok := lookupNonEmpty(lookup, EnvBaseURL); ok {
		cfg.Site.BaseURL = value
	}
	if value, ok := lookupNonEmpty(lookup, EnvLogLevel); ok {
		cfg.Logging.Level = value
	}
	if value, ok := lookupNonEmpty(lookup, EnvWorkers); ok {
		workers, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrWorkersInvalid, EnvWorkers, value)
		}
		cfg.Workers = workers
	}
	return nil
}

// Normalize canonicalises collection names so config keys, output files and
// routes agree.
func (cfg *Config) Normalize() error {
	for i := range cfg.Collections {
		name, err := content.NormalizeName(cfg.Collections[i].Name)
		if err != nil {
			return fmt.Errorf("%w: collections[%d]: %v", ErrCollectionInvalid, i, err)
		}
		cfg.Collections[i].Name = name
		if strings.TrimSpace(cfg.Collections[i].Source) == "" {
			cfg.Collections[i].Source = name
		}
		if strings.TrimSpace(cfg.Collections[i].Output) == "" {
			cfg.Collections[i].Output = name + ".json"
		}
	}
	cfg.Logging.Provider = normalizeProvider(cfg.Logging.Provider)
	return nil
}

func lookupNonEmpty(lookup func(string) (string, bool), key string) (string, bool) {
	if lookup == nil {
		return "", false
	}
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func loadEnvFiles() {
	for _, path := range EnvFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}
