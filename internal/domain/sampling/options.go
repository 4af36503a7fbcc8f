package sampling

import form "github.com/okian/quiniela/internal/domain/form"

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithSampleCap sets the maximum number of matches drawn from the corpus.
func WithSampleCap(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.sampleCap = n
		}
	}
}

// WithMinSamples sets how many usable samples training requires.
func WithMinSamples(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.minSamples = n
		}
	}
}

// WithSeed sets the sampling seed.
func WithSeed(seed int64) Option {
	return func(b *Builder) {
		b.seed = seed
	}
}

// WithCalculator sets the snapshot calculator used for every sample.
func WithCalculator(c *form.Calculator) Option {
	return func(b *Builder) {
		if c != nil {
			b.calc = c
		}
	}
}
