// Package sampling draws the training sample and assembles labeled feature vectors.
package sampling

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	features "github.com/okian/quiniela/internal/domain/features"
	form "github.com/okian/quiniela/internal/domain/form"
	model "github.com/okian/quiniela/internal/domain/model"
)

// Default sampling configuration constants.
const (
	DefaultSampleCap  = 800
	DefaultMinSamples = 50
	DefaultSeed       = 42
	ctxCheckInterval  = 64
)

// Dataset is a labeled training set.
type Dataset struct {
	X       []model.FeatureVector
	Y       []int
	Drawn   int // matches drawn from the corpus
	Dropped int // drawn matches whose features could not be computed
	Encoder Encoder
}

// Len returns the number of usable samples.
func (d Dataset) Len() int { return len(d.Y) }

// Builder draws samples and assembles their features.
type Builder struct {
	calc       *form.Calculator
	sampleCap  int
	minSamples int
	seed       int64
	encoder    Encoder
}

// NewBuilder creates a Builder with cap 800, minimum 50 and seed 42.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		calc:       form.NewCalculator(),
		sampleCap:  DefaultSampleCap,
		minSamples: DefaultMinSamples,
		seed:       DefaultSeed,
		encoder:    NewEncoder(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Encoder returns the label encoder used by every Dataset this Builder produces.
func (b *Builder) Encoder() Encoder { return b.encoder }

// Vector assembles the features of a fixture as of asOf. Training and prediction
// both go through here.
func (b *Builder) Vector(home, away string, corpus *model.Corpus, asOf time.Time,
	profiles map[string]model.TeamQualityProfile,
) (model.FeatureVector, error) {
	hs := b.calc.Snapshot(home, corpus, asOf, profiles)
	as := b.calc.Snapshot(away, corpus, asOf, profiles)
	return features.Assemble(hs, as)
}

// Build draws min(cap, n) matches without replacement and labels each with features
// computed as of its own date. Samples that fail are dropped. It returns
// model.ErrInsufficientData when fewer than the minimum remain.
func (b *Builder) Build(ctx context.Context, corpus *model.Corpus,
	profiles map[string]model.TeamQualityProfile,
) (Dataset, error) {
	ds := Dataset{Encoder: b.encoder}
	n := corpus.Len()
	if n == 0 {
		return ds, fmt.Errorf("%w: empty corpus", model.ErrInsufficientData)
	}

	rng := rand.New(rand.NewSource(b.seed)) //nolint:gosec // deterministic sampling
	picks := rng.Perm(n)
	if len(picks) > b.sampleCap {
		picks = picks[:b.sampleCap]
	}
	ds.Drawn = len(picks)
	ds.X = make([]model.FeatureVector, 0, len(picks))
	ds.Y = make([]int, 0, len(picks))

	for i, idx := range picks {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Dataset{}, fmt.Errorf("sampling cancelled: %w", err)
			}
		}

		m := corpus.At(idx)
		x, y, err := b.sample(m, corpus, profiles)
		if err != nil {
			ds.Dropped++
			continue
		}
		ds.X = append(ds.X, x)
		ds.Y = append(ds.Y, y)
	}

	if ds.Len() < b.minSamples {
		return ds, fmt.Errorf("%w: %d usable samples, need %d", model.ErrInsufficientData, ds.Len(), b.minSamples)
	}
	return ds, nil
}

func (b *Builder) sample(m model.MatchRecord, corpus *model.Corpus,
	profiles map[string]model.TeamQualityProfile,
) (model.FeatureVector, int, error) {
	if err := m.Validate(); err != nil {
		return model.FeatureVector{}, 0, err
	}
	y, err := b.encoder.Encode(m.Result)
	if err != nil {
		return model.FeatureVector{}, 0, err
	}
	x, err := b.Vector(m.HomeTeam, m.AwayTeam, corpus, m.Date, profiles)
	if err != nil {
		return model.FeatureVector{}, 0, err
	}
	return x, y, nil
}
