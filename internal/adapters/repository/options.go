package repository

import (
	"github.com/okian/quiniela/pkg/logger"
)

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithLogger sets a custom logger for the store.
func WithLogger(logger logger.Logger) Option {
	return func(s *SQLiteStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBusyTimeout sets how long a write waits on a locked database, in milliseconds.
func WithBusyTimeout(ms int) Option {
	return func(s *SQLiteStore) {
		if ms > 0 {
			s.busyTimeoutMS = ms
		}
	}
}
