// Package repository persists the match corpus.
package repository

import (
	"context"
	"time"

	"github.com/okian/quiniela/internal/domain/model"
)

// Store provides read/write access to stored matches.
type Store interface {
	// Save replaces the stored matches with records, in order.
	Save(ctx context.Context, records []model.MatchRecord) error

	// Load returns every stored match in the order it was saved.
	Load(ctx context.Context) ([]model.MatchRecord, error)

	// TeamMatches returns team's matches strictly before asOf, most recent
	// first, at most limit of them. A non-positive limit means all.
	TeamMatches(ctx context.Context, team string, asOf time.Time, limit int) ([]model.MatchRecord, error)

	// Count returns the number of stored matches.
	Count(ctx context.Context) (int, error)

	Close() error
}
