package synth

import (
	"context"
	"fmt"
	"time"

	model "github.com/okian/quiniela/internal/domain/model"
	"github.com/okian/quiniela/pkg/logger"
)

// Run generates the corpus, writes it and, when a service URL is configured,
// retrains the service on it and checks the results.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("synth")

	log.Info(ctx, "starting synthetic corpus run",
		logger.String("dir", config.Dir),
		logger.Int("teams", config.Teams),
		logger.Int("seasons", config.Seasons),
		logger.Int("firstSeason", config.FirstSeason),
		logger.Any("seed", config.Seed),
		logger.String("baseURL", config.BaseURL))

	// Step 1: Generate matches
	records := League(config.Teams, config.Seasons, config.FirstSeason, config.Seed)
	if len(records) == 0 {
		return fmt.Errorf("nothing generated for %d teams and %d seasons", config.Teams, config.Seasons)
	}
	stats.MatchesGenerated = len(records)

	// Step 2: Write season files
	paths, err := WriteSeasons(config.Dir, records)
	if err != nil {
		return fmt.Errorf("writing seasons failed: %w", err)
	}
	stats.FilesWritten = len(paths)
	for _, p := range paths {
		log.Debug(ctx, "season written", logger.String("path", p))
	}

	if config.BaseURL != "" {
		if err := exercise(ctx, config, records, stats); err != nil {
			return err
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	log.Info(ctx, "run completed successfully")
	return nil
}

// exercise drives a running service against the generated corpus.
func exercise(ctx context.Context, config *Config, records []model.MatchRecord, stats *Stats) error {
	log := logger.Named("synth")
	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 3: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 4: Retrain and wait
	jobID, err := triggerTraining(ctx, client)
	if err != nil {
		return fmt.Errorf("training request failed: %w", err)
	}
	stats.JobID = jobID
	log.Info(ctx, "training job accepted", logger.String("jobID", jobID))

	job, err := waitForJob(ctx, client, jobID, config.PollEvery)
	if err != nil {
		return err
	}
	stats.Accuracy = job.Accuracy

	// Step 5: Compare the ranking
	ranking, err := fetchQuality(ctx, client, config.TopN)
	if err != nil {
		return fmt.Errorf("quality retrieval failed: %w", err)
	}
	stats.RankedTeams = len(ranking)
	if err := verifyRanking(records, ranking); err != nil {
		log.Warn(ctx, "ranking differs from local computation", logger.Error(err))
	} else {
		log.Info(ctx, "ranking verified")
	}

	// Step 6: Predict the top two against each other
	if len(ranking) >= 2 {
		p, err := predict(ctx, client, ranking[0].Team, ranking[1].Team)
		if err != nil {
			return fmt.Errorf("prediction failed: %w", err)
		}
		if err := verifyPrediction(p); err != nil {
			return fmt.Errorf("prediction verification failed: %w", err)
		}
		log.Info(ctx, "sample prediction",
			logger.String("home", p.HomeTeam),
			logger.String("away", p.AwayTeam),
			logger.String("mostLikely", p.MostLikely),
			logger.Any("probabilities", p.Probabilities))
	}
	return nil
}

// displayFinalStats prints the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.Int("matchesGenerated", stats.MatchesGenerated),
		logger.Int("filesWritten", stats.FilesWritten),
		logger.String("jobID", stats.JobID),
		logger.Float64("accuracy", stats.Accuracy),
		logger.Int("rankedTeams", stats.RankedTeams),
		logger.Duration("duration", stats.Duration))
}
