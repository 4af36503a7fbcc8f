// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Every field carries a koanf tag matching its YAML key and env suffix.
// - New() returns defaults; Load layers file and env on top and validates.
package config

import (
	"runtime"
)

// Corpus sources.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// CORSOrigins lists origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`

	// ShutdownTimeoutSec bounds graceful HTTP shutdown.
	ShutdownTimeoutSec int `koanf:"shutdown_timeout_sec"`

	// DataDir holds the season-*.csv files.
	DataDir string `koanf:"data_dir"`

	// DBPath is the sqlite file the corpus is persisted to.
	DBPath string `koanf:"db_path"`

	// CorpusSource selects where the corpus is read from: csv or sqlite.
	CorpusSource string `koanf:"corpus_source"`

	// PersistCorpus writes the CSV corpus to sqlite after loading.
	PersistCorpus bool `koanf:"persist_corpus"`

	// TrainOnStart trains the classifier before serving.
	TrainOnStart bool `koanf:"train_on_start"`

	// TeamAliases adds to the built-in team name aliases.
	TeamAliases map[string]string `koanf:"team_aliases"`

	// DedupeSize bounds the fixture deduper; 0 means unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// SampleCap is the most matches drawn for training.
	SampleCap int `koanf:"sample_cap"`

	// MinSamples is the fewest usable samples training accepts.
	MinSamples int `koanf:"min_samples"`

	// Seed drives sampling, the split and the forest.
	Seed int64 `koanf:"seed"`

	// Lookback is the default number of prior matches in a snapshot.
	Lookback int `koanf:"lookback"`

	// RecentFormWindow is how many of the selected matches feed recent form.
	RecentFormWindow int `koanf:"recent_form_window"`

	// ValidationFraction is the held-out share per class.
	ValidationFraction float64 `koanf:"validation_fraction"`

	// Estimators, MaxDepth, MinSamplesSplit and MinSamplesLeaf shape the forest.
	Estimators      int `koanf:"estimators"`
	MaxDepth        int `koanf:"max_depth"`
	MinSamplesSplit int `koanf:"min_samples_split"`
	MinSamplesLeaf  int `koanf:"min_samples_leaf"`

	// FitWorkers bounds concurrent tree fits.
	FitWorkers int `koanf:"fit_workers"`

	// TrainQueueSize bounds pending retrain jobs.
	TrainQueueSize int `koanf:"train_queue_size"`

	// MaxQualityLimit caps GET /quality?limit.
	MaxQualityLimit int `koanf:"max_quality_limit"`

	// TopN is the size of the startup quality report.
	TopN int `koanf:"top_n"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		MetricsEnabled:     true,
		CORSOrigins:        []string{"*"},
		ShutdownTimeoutSec: 10,
		DataDir:            "historic",
		DBPath:             "laliga_data.db",
		CorpusSource:       SourceCSV,
		PersistCorpus:      true,
		TrainOnStart:       true,
		TeamAliases:        map[string]string{},
		DedupeSize:         0,
		SampleCap:          800,
		MinSamples:         50,
		Seed:               42,
		Lookback:           10,
		RecentFormWindow:   5,
		ValidationFraction: 0.2,
		Estimators:         100,
		MaxDepth:           6,
		MinSamplesSplit:    10,
		MinSamplesLeaf:     5,
		FitWorkers:         runtime.NumCPU(),
		TrainQueueSize:     8,
		MaxQualityLimit:    100,
		TopN:               10,
	}
}
