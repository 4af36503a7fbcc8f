// Package service provides the prediction pipeline that backs the CLI and
// the HTTP API.
//
// A Pipeline owns the current quality profiles and the trained model. Both are
// replaced as a pair after a successful training run; readers always see a
// consistent pair.
package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/quiniela/internal/adapters/mq/queue"
	"github.com/okian/quiniela/internal/adapters/mq/worker"
	"github.com/okian/quiniela/internal/domain/forest"
	"github.com/okian/quiniela/internal/domain/form"
	"github.com/okian/quiniela/internal/domain/model"
	"github.com/okian/quiniela/internal/domain/quality"
	"github.com/okian/quiniela/internal/domain/sampling"
	"github.com/okian/quiniela/internal/domain/types"
	"github.com/okian/quiniela/pkg/logger"
	"github.com/okian/quiniela/pkg/metrics"
)

const (
	defaultQueueSize  = 8
	horizonDateLayout = "2006-01-02"
)

// TrainResult describes a successful training run.
type TrainResult struct {
	RunID          string
	Accuracy       float64
	Samples        int
	Dropped        int
	TrainSize      int
	ValidationSize int
	Report         *forest.Report // nil when validation held a single class
	Duration       time.Duration
	TrainedAt      time.Time
}

// Summary converts the result to its API shape.
func (r TrainResult) Summary() types.RunSummary {
	return types.RunSummary{
		RunID:          r.RunID,
		Accuracy:       r.Accuracy,
		Samples:        r.Samples,
		Dropped:        r.Dropped,
		TrainSize:      r.TrainSize,
		ValidationSize: r.ValidationSize,
		DurationMS:     r.Duration.Milliseconds(),
		TrainedAt:      r.TrainedAt,
	}
}

type trainedModel struct {
	forest  *forest.Forest
	encoder sampling.Encoder
}

// Pipeline implements the quality, snapshot, training and prediction operations.
type Pipeline struct {
	mu sync.RWMutex

	// State
	corpus   *model.Corpus
	profiles map[string]model.TeamQualityProfile
	model    *trainedModel
	last     *TrainResult

	// trainMu serializes fits.
	trainMu sync.Mutex

	// Core components
	scorer  quality.Scorer
	calc    *form.Calculator
	builder *sampling.Builder

	// Configuration
	sampleCap          int
	minSamples         int
	seed               int64
	lookback           int
	recentWindow       int
	validationFraction float64
	forestOpts         []forest.Option
	queueSize          int

	// Retrain jobs
	jobsMu   sync.RWMutex
	jobs     map[string]*types.JobStatus
	jobOrder []string
	queue    *queue.InMemoryQueue
	worker   *worker.InMemoryWorker
	cancel   context.CancelFunc
	started  bool

	logger logger.Logger
}

// New constructs a Pipeline with default configuration.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		scorer:             quality.NewEngine(),
		sampleCap:          sampling.DefaultSampleCap,
		minSamples:         sampling.DefaultMinSamples,
		seed:               sampling.DefaultSeed,
		lookback:           form.DefaultLookback,
		recentWindow:       form.DefaultRecentWindow,
		validationFraction: forest.DefaultValidationFraction,
		queueSize:          defaultQueueSize,
		jobs:               make(map[string]*types.JobStatus),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = logger.Get().Named("pipeline")
	}
	p.calc = form.NewCalculator(
		form.WithLookback(p.lookback),
		form.WithRecentWindow(p.recentWindow),
	)
	p.builder = sampling.NewBuilder(
		sampling.WithCalculator(p.calc),
		sampling.WithSampleCap(p.sampleCap),
		sampling.WithMinSamples(p.minSamples),
		sampling.WithSeed(p.seed),
	)
	if p.corpus != nil {
		metrics.UpdateCorpusMatches(p.corpus.Len())
	}

	return p
}

// Corpus returns the installed corpus, or nil.
func (p *Pipeline) Corpus() *model.Corpus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.corpus
}

// SetCorpus replaces the installed corpus. The model is left as is until the
// next training run.
func (p *Pipeline) SetCorpus(c *model.Corpus) {
	p.mu.Lock()
	p.corpus = c
	p.mu.Unlock()
	metrics.UpdateCorpusMatches(c.Len())
}

// ComputeQualityScores scores every home team in corpus and installs the result
// as the pipeline's current profiles.
func (p *Pipeline) ComputeQualityScores(ctx context.Context, corpus *model.Corpus) map[string]model.TeamQualityProfile {
	profiles := p.scorer.Compute(corpus)

	p.mu.Lock()
	p.profiles = maps.Clone(profiles)
	p.mu.Unlock()

	metrics.UpdateQualityTeams(len(profiles))
	p.logger.Debug(ctx, "quality scores computed",
		logger.Int("teams", len(profiles)),
		logger.Int("matches", corpus.Len()),
	)
	return profiles
}

// ComputeTeamSnapshot summarizes team's form before asOf using the current
// profiles. A non-positive lookback uses the configured default. Unknown and
// empty team names get the cold-start snapshot.
func (p *Pipeline) ComputeTeamSnapshot(ctx context.Context, team string, corpus *model.Corpus,
	asOf time.Time, lookback int,
) (model.TeamFormSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.TeamFormSnapshot{}, err
	}
	p.mu.RLock()
	profiles := p.profiles
	p.mu.RUnlock()

	return p.calc.SnapshotWithLookback(team, corpus, asOf, lookback, profiles), nil
}

// TrainClassifier recomputes quality, draws the training sample and fits a new
// forest. On any error the previous model and profiles stay in place.
func (p *Pipeline) TrainClassifier(ctx context.Context, corpus *model.Corpus) (TrainResult, error) {
	p.trainMu.Lock()
	defer p.trainMu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	p.logger.Info(ctx, "training started",
		logger.String("run_id", runID),
		logger.Int("matches", corpus.Len()),
	)

	profiles := p.scorer.Compute(corpus)
	ds, err := p.builder.Build(ctx, corpus, profiles)
	metrics.RecordSamplesDropped(ds.Dropped)
	if err != nil {
		return TrainResult{}, p.trainFailed(ctx, runID, err)
	}

	trainer := forest.NewTrainer(p.validationFraction, p.seed, p.forestOpts...)
	out, err := trainer.Train(ctx, ds.X, ds.Y, ds.Encoder.Names())
	if err != nil {
		return TrainResult{}, p.trainFailed(ctx, runID, err)
	}

	res := TrainResult{
		RunID:          runID,
		Accuracy:       out.Accuracy,
		Samples:        ds.Len(),
		Dropped:        ds.Dropped,
		TrainSize:      out.TrainSize,
		ValidationSize: out.ValidationSize,
		Report:         out.Report,
		Duration:       time.Since(start),
		TrainedAt:      time.Now().UTC(),
	}

	p.mu.Lock()
	p.profiles = profiles
	p.model = &trainedModel{forest: out.Forest, encoder: ds.Encoder}
	p.last = &res
	p.mu.Unlock()

	metrics.RecordTrainingRun("succeeded")
	metrics.RecordTrainingDuration(res.Duration)
	metrics.UpdateModelAccuracy(res.Accuracy)
	metrics.UpdateTrainingSamples(res.Samples)
	metrics.UpdateForestEstimators(out.Forest.Estimators())
	metrics.UpdateQualityTeams(len(profiles))

	p.logger.Info(ctx, "training finished",
		logger.String("run_id", runID),
		logger.Float64("accuracy", res.Accuracy),
		logger.Int("samples", res.Samples),
		logger.Int("dropped", res.Dropped),
		logger.Int("train", res.TrainSize),
		logger.Int("validation", res.ValidationSize),
		logger.Duration("took", res.Duration),
	)
	return res, nil
}

func (p *Pipeline) trainFailed(ctx context.Context, runID string, err error) error {
	status := "failed"
	if errors.Is(err, model.ErrInsufficientData) {
		status = "insufficient_data"
	}
	metrics.RecordTrainingRun(status)
	metrics.RecordErrorByComponent("pipeline", status)
	p.logger.Warn(ctx, "training failed, keeping previous model",
		logger.String("run_id", runID),
		logger.Error(err),
	)
	return fmt.Errorf("training run %s: %w", runID, err)
}

// PredictMatch returns the probability of each outcome for home vs away. Form is
// taken as of the corpus's latest date; unknown teams get cold-start defaults.
func (p *Pipeline) PredictMatch(ctx context.Context, home, away string, corpus *model.Corpus) (map[string]float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordPredictionLatency(float64(time.Since(start).Microseconds()) / 1e3)
	}()

	p.mu.RLock()
	m, profiles := p.model, p.profiles
	p.mu.RUnlock()

	if m == nil {
		metrics.RecordPredictionError()
		return nil, model.ErrModelNotTrained
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	x, err := p.builder.Vector(home, away, corpus, corpus.LatestDate(), profiles)
	if err != nil {
		metrics.RecordPredictionError()
		return nil, fmt.Errorf("features for %s vs %s: %w", home, away, err)
	}
	proba, err := m.forest.PredictProba(x)
	if err != nil {
		metrics.RecordPredictionError()
		return nil, err
	}

	out := make(map[string]float64, len(proba))
	for i, pr := range proba {
		r, err := m.encoder.Decode(i)
		if err != nil {
			metrics.RecordPredictionError()
			return nil, err
		}
		out[r.String()] = pr
	}

	ranked := rankOutcomes(out)
	metrics.RecordPrediction(ranked[0].Outcome)
	p.logger.Debug(ctx, "prediction",
		logger.String("home", home),
		logger.String("away", away),
		logger.String("most_likely", ranked[0].Outcome),
	)
	return out, nil
}

// Predict runs PredictMatch against the installed corpus.
func (p *Pipeline) Predict(ctx context.Context, home, away string) (types.Prediction, error) {
	c := p.Corpus()
	if c == nil {
		return types.Prediction{}, ErrNoCorpus
	}
	probs, err := p.PredictMatch(ctx, home, away, c)
	if err != nil {
		return types.Prediction{}, err
	}
	ranked := rankOutcomes(probs)
	return types.Prediction{
		HomeTeam:      home,
		AwayTeam:      away,
		Probabilities: probs,
		MostLikely:    ranked[0].Outcome,
		Ranked:        ranked,
	}, nil
}

// Snapshot runs ComputeTeamSnapshot against the installed corpus. A zero asOf
// means the corpus horizon.
func (p *Pipeline) Snapshot(ctx context.Context, team string, asOf time.Time, lookback int) (model.TeamFormSnapshot, error) {
	c := p.Corpus()
	if c == nil {
		return model.TeamFormSnapshot{}, ErrNoCorpus
	}
	if asOf.IsZero() {
		asOf = c.LatestDate()
	}
	return p.ComputeTeamSnapshot(ctx, team, c, asOf, lookback)
}

// rankOutcomes orders outcomes by probability, then by name.
func rankOutcomes(probs map[string]float64) []types.Probability {
	out := make([]types.Probability, 0, len(probs))
	for name, pr := range probs {
		out = append(out, types.Probability{Outcome: name, Probability: pr})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Probability != out[j].Probability {
			return out[i].Probability > out[j].Probability
		}
		return out[i].Outcome < out[j].Outcome
	})
	return out
}

// Trained reports whether a model is installed.
func (p *Pipeline) Trained() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model != nil
}

// LastRun returns the most recent successful training run.
func (p *Pipeline) LastRun() (TrainResult, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return TrainResult{}, false
	}
	return *p.last, true
}

// TopTeams returns the n best profiled teams; n <= 0 returns all.
func (p *Pipeline) TopTeams(n int) []types.RankedTeam {
	p.mu.RLock()
	profiles := p.profiles
	p.mu.RUnlock()
	return quality.Rank(profiles, n)
}

// Profile returns the current quality profile of team.
func (p *Pipeline) Profile(team string) (model.TeamQualityProfile, error) {
	p.mu.RLock()
	prof, ok := p.profiles[team]
	p.mu.RUnlock()
	if !ok {
		return model.TeamQualityProfile{}, fmt.Errorf("%w: %s", ErrUnknownTeam, team)
	}
	return prof, nil
}

// Status summarizes the pipeline for monitoring.
func (p *Pipeline) Status() types.Status {
	p.mu.RLock()
	st := types.Status{
		Trained:       p.model != nil,
		CorpusMatches: p.corpus.Len(),
		Teams:         len(p.corpus.Teams()),
		ProfiledTeams: len(p.profiles),
	}
	if p.last != nil {
		s := p.last.Summary()
		st.LastRun = &s
	}
	if h := p.corpus.LatestDate(); !h.IsZero() {
		st.Horizon = h.Format(horizonDateLayout)
	}
	p.mu.RUnlock()

	p.jobsMu.RLock()
	if p.queue != nil {
		st.PendingJobs = p.queue.Len(context.Background())
	}
	p.jobsMu.RUnlock()
	return st
}
