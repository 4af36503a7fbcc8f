package api

import "github.com/okian/quiniela/pkg/logger"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTopN sets the default number of teams returned by GET /quality.
func WithTopN(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithMaxLimit caps the limit query parameter.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}
