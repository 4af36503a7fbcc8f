package service

import (
	"github.com/okian/quiniela/internal/domain/forest"
	"github.com/okian/quiniela/internal/domain/model"
	"github.com/okian/quiniela/internal/domain/quality"
	"github.com/okian/quiniela/pkg/logger"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger logger.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithCorpus installs the corpus served by the HTTP surface and retrain jobs.
func WithCorpus(c *model.Corpus) Option {
	return func(p *Pipeline) {
		p.corpus = c
	}
}

// WithScorer replaces the quality engine.
func WithScorer(s quality.Scorer) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.scorer = s
		}
	}
}

// WithSampleCap sets the most matches drawn for training.
func WithSampleCap(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.sampleCap = n
		}
	}
}

// WithMinSamples sets the fewest usable samples a training run accepts.
func WithMinSamples(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.minSamples = n
		}
	}
}

// WithSeed sets the seed for sampling, the split and the forest.
func WithSeed(seed int64) Option {
	return func(p *Pipeline) {
		p.seed = seed
	}
}

// WithLookback sets the default snapshot lookback.
func WithLookback(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.lookback = n
		}
	}
}

// WithRecentFormWindow sets how many selected matches feed recent form.
func WithRecentFormWindow(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.recentWindow = n
		}
	}
}

// WithValidationFraction sets the held-out share per class.
func WithValidationFraction(f float64) Option {
	return func(p *Pipeline) {
		if f > 0 && f < 1 {
			p.validationFraction = f
		}
	}
}

// WithForestOptions passes options through to every forest the pipeline fits.
func WithForestOptions(opts ...forest.Option) Option {
	return func(p *Pipeline) {
		p.forestOpts = append(p.forestOpts, opts...)
	}
}

// WithQueueSize sets how many retrain jobs may wait.
func WithQueueSize(size int) Option {
	return func(p *Pipeline) {
		if size > 0 {
			p.queueSize = size
		}
	}
}
