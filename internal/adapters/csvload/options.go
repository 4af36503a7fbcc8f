package csvload

import (
	"github.com/okian/quiniela/internal/domain/dedupe"
	"github.com/okian/quiniela/pkg/logger"
)

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithAliases adds team aliases on top of the built-in ones.
func WithAliases(aliases map[string]string) Option {
	return func(l *Loader) {
		l.normalizer = NewNormalizer(aliases)
	}
}

// WithDeduper sets the deduper used to drop fixtures repeated across files.
func WithDeduper(d dedupe.Deduper) Option {
	return func(l *Loader) {
		if d != nil {
			l.deduper = d
		}
	}
}

// WithPattern sets the glob used to discover season files.
func WithPattern(pattern string) Option {
	return func(l *Loader) {
		if pattern != "" {
			l.pattern = pattern
		}
	}
}

// WithLogger sets a custom logger for the loader.
func WithLogger(logger logger.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
