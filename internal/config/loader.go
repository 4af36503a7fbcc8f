package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix = "QUINIELA_"
	EnvFile   = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if QUINIELA_CONFIG is set
//  3. env (prefix QUINIELA_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like QUINIELA_SAMPLE_CAP -> sample_cap (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// the file path itself is not a config key
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CorpusSource != SourceCSV && c.CorpusSource != SourceSQLite:
		return fmt.Errorf("%w: corpus_source must be %q or %q", ErrInvalidConfig, SourceCSV, SourceSQLite)
	case c.CorpusSource == SourceCSV && c.DataDir == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case (c.CorpusSource == SourceSQLite || c.PersistCorpus) && c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.SampleCap <= 0:
		return fmt.Errorf("%w: sample_cap must be positive", ErrInvalidConfig)
	case c.MinSamples <= 0:
		return fmt.Errorf("%w: min_samples must be positive", ErrInvalidConfig)
	case c.Lookback <= 0 || c.RecentFormWindow <= 0:
		return fmt.Errorf("%w: lookback and recent_form_window must be positive", ErrInvalidConfig)
	case c.ValidationFraction <= 0 || c.ValidationFraction >= 1:
		return fmt.Errorf("%w: validation_fraction must be in (0,1)", ErrInvalidConfig)
	case c.Estimators <= 0 || c.MaxDepth <= 0:
		return fmt.Errorf("%w: estimators and max_depth must be positive", ErrInvalidConfig)
	case c.MinSamplesSplit < 2 || c.MinSamplesLeaf <= 0:
		return fmt.Errorf("%w: min_samples_split must be >= 2 and min_samples_leaf positive", ErrInvalidConfig)
	case c.TrainQueueSize <= 0:
		return fmt.Errorf("%w: train_queue_size must be positive", ErrInvalidConfig)
	case c.MaxQualityLimit <= 0:
		return fmt.Errorf("%w: max_quality_limit must be positive", ErrInvalidConfig)
	}
	return nil
}
