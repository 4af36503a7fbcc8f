package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/quiniela/internal/synth"
)

// Default configuration constants.
const (
	defaultTimeout    = 30 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		dir     = flag.String("dir", "historic", "Output directory for season files")
		teams   = flag.Int("teams", synth.DefaultTeams, "Teams per season")
		seasons = flag.Int("seasons", synth.DefaultSeasons, "Number of seasons")
		first   = flag.Int("first", synth.DefaultFirstSeason, "Starting year of the first season")
		seed    = flag.Int64("seed", synth.DefaultSeed, "Generator seed")
		baseURL = flag.String("url", "", "Base URL of a running service; empty skips retraining")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		topN    = flag.Int("top", synth.DefaultTopN, "Ranked teams to fetch and verify")
		logFile = flag.String("log", "", "Log file for run output")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		synth.ShowHelp()
		return
	}

	if err := synth.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	config := &synth.Config{
		Dir:         *dir,
		Teams:       *teams,
		Seasons:     *seasons,
		FirstSeason: *first,
		Seed:        *seed,
		BaseURL:     *baseURL,
		Timeout:     *timeout,
		PollEvery:   synth.DefaultPollInterval,
		TopN:        *topN,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	if err := synth.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Run failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
