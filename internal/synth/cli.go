package synth

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/quiniela/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, logs go to the console only.
func SetupLogging(logFile string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}

	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the synthetic corpus tool.
func ShowHelp() {
	os.Stdout.WriteString(`Quiniela Synthetic Corpus Tool
==============================

Generates a deterministic league history as season-*.csv files and, optionally,
retrains a running quiniela service on it and checks the results.

Usage:
  go run ./cmd/synth-corpus [options]

Options:
  -dir string
        Output directory for season files (default "historic")
  -teams int
        Teams per season (default 20)
  -seasons int
        Number of seasons (default 5)
  -first int
        Starting year of the first season (default 2015)
  -seed int
        Generator seed (default 42)
  -url string
        Base URL of a running service; empty skips retraining
  -timeout duration
        HTTP request timeout (default 30s)
  -top int
        Ranked teams to fetch and verify (default 10)
  -log string
        Log file for run output
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Write five seasons into ./historic
  go run ./cmd/synth-corpus

  # Write ten seasons and retrain a local service
  go run ./cmd/synth-corpus -seasons 10 -url http://localhost:9080
`)
}
