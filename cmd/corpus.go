package main

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/quiniela/internal/adapters/csvload"
	"github.com/okian/quiniela/internal/adapters/repository"
	"github.com/okian/quiniela/internal/config"
	"github.com/okian/quiniela/internal/domain/dedupe"
	"github.com/okian/quiniela/internal/domain/model"
	"github.com/okian/quiniela/pkg/logger"
)

// loadCorpus reads matches from season CSVs or the SQLite store, depending on
// corpus_source. CSV loads are written through to SQLite when persist_corpus is set.
func loadCorpus(ctx context.Context, cfg *config.Config, log logger.Logger) (*model.Corpus, error) {
	if cfg.CorpusSource == config.SourceSQLite {
		store, err := repository.Open(ctx, cfg.DBPath, repository.WithLogger(log.Named("repository")))
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()

		records, err := store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load corpus from %s: %w", cfg.DBPath, err)
		}
		log.Info(ctx, "corpus loaded", logger.String("source", cfg.DBPath), logger.Int("matches", len(records)))
		return model.NewCorpus(records), nil
	}

	loader := csvload.New(
		csvload.WithAliases(cfg.TeamAliases),
		csvload.WithDeduper(dedupe.New(dedupe.WithMaxSize(cfg.DedupeSize))),
		csvload.WithLogger(log.Named("csvload")),
	)
	res, err := loader.LoadDir(ctx, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("load corpus from %s: %w", cfg.DataDir, err)
	}
	log.Info(ctx, "corpus loaded",
		logger.String("source", cfg.DataDir),
		logger.Int("files", len(res.Files)),
		logger.Int("matches", len(res.Records)),
		logger.Int("rejected", res.Rejected()),
		logger.Int("duplicates", res.Duplicates),
	)

	if cfg.PersistCorpus {
		if err := persist(ctx, cfg.DBPath, res.Records, log); err != nil {
			log.Warn(ctx, "corpus not persisted", logger.String("db_path", cfg.DBPath), logger.Error(err))
		}
	}
	return model.NewCorpus(res.Records), nil
}

func persist(ctx context.Context, path string, records []model.MatchRecord, log logger.Logger) error {
	store, err := repository.Open(ctx, path, repository.WithLogger(log.Named("repository")))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.Save(ctx, records)
}

// teamHistory reads team's latest matches from the SQLite store, at most
// lookback of them.
func teamHistory(ctx context.Context, cfg *config.Config, team string, log logger.Logger) ([]model.MatchRecord, error) {
	store, err := repository.Open(ctx, cfg.DBPath, repository.WithLogger(log.Named("repository")))
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	rows, err := store.TeamMatches(ctx, team, time.Time{}, cfg.Lookback)
	if err != nil {
		return nil, fmt.Errorf("history of %s: %w", team, err)
	}
	return rows, nil
}
