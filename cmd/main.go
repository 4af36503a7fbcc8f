package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/okian/quiniela/internal/adapters/http/api"
	"github.com/okian/quiniela/internal/adapters/http/swagger"
	app "github.com/okian/quiniela/internal/app"
	"github.com/okian/quiniela/internal/config"
	"github.com/okian/quiniela/internal/domain/forest"
	"github.com/okian/quiniela/internal/domain/model"
	"github.com/okian/quiniela/internal/domain/types"
	"github.com/okian/quiniela/pkg/logger"
	"github.com/okian/quiniela/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// cliFlags are the command line switches; everything else comes from config.
type cliFlags struct {
	home    string
	away    string
	history string
	once    bool
	quiet   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func parseFlags(args []string) (cliFlags, error) {
	var f cliFlags
	fs := flag.NewFlagSet("quiniela", flag.ContinueOnError)
	fs.StringVar(&f.home, "home", "", "Home team for a one-off prediction")
	fs.StringVar(&f.away, "away", "", "Away team for a one-off prediction")
	fs.StringVar(&f.history, "history", "", "Print a team's latest stored matches and exit")
	fs.BoolVar(&f.once, "once", false, "Train, print the report and exit without serving")
	fs.BoolVar(&f.quiet, "quiet", false, "Skip the ranking and training report")
	if err := fs.Parse(args); err != nil {
		return f, err
	}
	if (f.home == "") != (f.away == "") {
		return f, errors.New("-home and -away must be given together")
	}
	if f.history != "" && f.home != "" {
		return f, errors.New("-history cannot be combined with -home and -away")
	}
	return f, nil
}

// run loads the corpus, trains and then either predicts one fixture or serves HTTP.
func run(ctx context.Context, args []string, out io.Writer) error {
	flags, err := parseFlags(args)
	if err != nil {
		return err
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.SetEnabled(cfg.MetricsEnabled)

	corpus, err := loadCorpus(ctx, cfg, log)
	if err != nil {
		return err
	}
	if flags.history != "" {
		rows, err := teamHistory(ctx, cfg, flags.history, log)
		if err != nil {
			return err
		}
		printHistory(out, flags.history, rows)
		return nil
	}

	pipeline := newPipeline(cfg, corpus, log)
	pipeline.ComputeQualityScores(ctx, corpus)

	if cfg.TrainOnStart || flags.home != "" || flags.once {
		res, err := pipeline.TrainClassifier(ctx, corpus)
		switch {
		case errors.Is(err, model.ErrInsufficientData):
			log.Warn(ctx, "model not trained; predictions disabled until a retrain succeeds", logger.Error(err))
		case err != nil:
			return err
		case !flags.quiet:
			printTraining(out, res)
		}
	}
	if !flags.quiet {
		printRanking(out, pipeline.TopTeams(cfg.TopN))
	}

	if flags.home != "" {
		pred, err := pipeline.Predict(ctx, flags.home, flags.away)
		if err != nil {
			return err
		}
		printPrediction(out, pred)
		return nil
	}
	if flags.once {
		return nil
	}

	return serve(ctx, cfg, pipeline, log)
}

func newPipeline(cfg *config.Config, corpus *model.Corpus, log logger.Logger) *app.Pipeline {
	return app.New(
		app.WithLogger(log.Named("pipeline")),
		app.WithCorpus(corpus),
		app.WithSampleCap(cfg.SampleCap),
		app.WithMinSamples(cfg.MinSamples),
		app.WithSeed(cfg.Seed),
		app.WithLookback(cfg.Lookback),
		app.WithRecentFormWindow(cfg.RecentFormWindow),
		app.WithValidationFraction(cfg.ValidationFraction),
		app.WithQueueSize(cfg.TrainQueueSize),
		app.WithForestOptions(
			forest.WithEstimators(cfg.Estimators),
			forest.WithMaxDepth(cfg.MaxDepth),
			forest.WithMinSamplesSplit(cfg.MinSamplesSplit),
			forest.WithMinSamplesLeaf(cfg.MinSamplesLeaf),
			forest.WithWorkers(cfg.FitWorkers),
		),
	)
}

// serve runs the HTTP API until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, pipeline *app.Pipeline, log logger.Logger) error {
	if err := pipeline.Start(ctx); err != nil {
		return fmt.Errorf("failed to start pipeline: %w", err)
	}
	defer pipeline.Stop()

	apiServer := api.NewServer(pipeline,
		api.WithLogger(log.Named("api")),
		api.WithTopN(cfg.TopN),
		api.WithMaxLimit(cfg.MaxQualityLimit),
		api.WithCORSOrigins(cfg.CORSOrigins),
	)
	router := apiServer.Router()
	swagger.Register(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%w: %w", api.ErrServe, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

func printTraining(out io.Writer, res app.TrainResult) {
	fmt.Fprintf(out, "run %s: %d samples (%d train / %d validation, %d dropped) in %s\n",
		res.RunID, res.Samples, res.TrainSize, res.ValidationSize, res.Dropped, res.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "validation accuracy: %.4f\n", res.Accuracy)
	if res.Report != nil {
		fmt.Fprintln(out, res.Report.String())
	}
}

func printRanking(out io.Writer, rows []types.RankedTeam) {
	if len(rows) == 0 {
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTEAM\tSCORE\tWIN%\tDRAW%\tGD/M\tMATCHES")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%.1f\t%+.2f\t%d\n",
			r.Rank, r.Team, r.Score, r.WinRate*100, r.DrawRate*100, r.GoalDiffPerMatch, r.Matches)
	}
	_ = w.Flush()
}

func printHistory(out io.Writer, team string, rows []model.MatchRecord) {
	if len(rows) == 0 {
		fmt.Fprintf(out, "no stored matches for %s\n", team)
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tHOME\tSCORE\tAWAY\tFTR")
	for _, m := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d-%d\t%s\t%s\n",
			m.Date.Format("2006-01-02"), m.HomeTeam, m.HomeGoals, m.AwayGoals, m.AwayTeam, m.Result.Code())
	}
	_ = w.Flush()
}

func printPrediction(out io.Writer, p types.Prediction) {
	fmt.Fprintf(out, "%s vs %s\n", p.HomeTeam, p.AwayTeam)
	for _, r := range p.Ranked {
		fmt.Fprintf(out, "  %s  %5.1f%%  %s\n", r.Outcome, r.Probability*100, strings.Repeat("#", int(r.Probability*40)))
	}
	fmt.Fprintf(out, "most likely: %s\n", p.MostLikely)
}
