package synth

import "time"

// Config holds configuration for a synthetic corpus run.
type Config struct {
	Dir         string        // Output directory for season CSVs
	Teams       int           // Teams per season
	Seasons     int           // Number of seasons
	FirstSeason int           // Starting year of the first season
	Seed        int64         // Generator seed
	BaseURL     string        // Service to retrain and query; empty skips the remote steps
	Timeout     time.Duration // HTTP request timeout
	PollEvery   time.Duration // Interval between job status polls
	TopN        int           // Number of ranked teams to fetch
	LogFile     string        // Log file for run output
	Verbose     bool          // Enable verbose logging
}

// TrainAccepted is the response to POST /train.
type TrainAccepted struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobStatus is the response to GET /train/{id}.
type JobStatus struct {
	ID       string  `json:"id"`
	State    string  `json:"state"`
	Accuracy float64 `json:"accuracy"`
	Samples  int     `json:"samples"`
	Error    string  `json:"error,omitempty"`
}

// Entry is one row of GET /quality.
type Entry struct {
	Rank  int     `json:"rank"`
	Team  string  `json:"team"`
	Score float64 `json:"score"`
}

// Prediction is the response to POST /predict.
type Prediction struct {
	HomeTeam      string             `json:"home_team"`
	AwayTeam      string             `json:"away_team"`
	Probabilities map[string]float64 `json:"probabilities"`
	MostLikely    string             `json:"most_likely"`
}

// Stats holds run statistics.
type Stats struct {
	MatchesGenerated int
	FilesWritten     int
	JobID            string
	Accuracy         float64
	RankedTeams      int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
