// Package types contains common types used across the application
package types

import "time"

// RankedTeam is one row of the quality ranking.
type RankedTeam struct {
	Rank             int     `json:"rank"`
	Team             string  `json:"team"`
	Score            float64 `json:"score"`
	RawScore         float64 `json:"raw_score"`
	WinRate          float64 `json:"win_rate"`
	DrawRate         float64 `json:"draw_rate"`
	GoalDiffPerMatch float64 `json:"goal_diff_per_match"`
	Matches          int     `json:"matches"`
}

// Probability is one outcome of a prediction.
type Probability struct {
	Outcome     string  `json:"outcome"`
	Probability float64 `json:"probability"`
}

// Prediction is the response for a single fixture.
type Prediction struct {
	HomeTeam      string             `json:"home_team"`
	AwayTeam      string             `json:"away_team"`
	Probabilities map[string]float64 `json:"probabilities"`
	MostLikely    string             `json:"most_likely"`
	Ranked        []Probability      `json:"ranked"`
}

// Job states.
const (
	JobQueued    = "queued"
	JobRunning   = "running"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
)

// TrainAccepted acknowledges a retrain request.
type TrainAccepted struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobStatus reports the state of a retrain job.
type JobStatus struct {
	ID          string     `json:"id"`
	State       string     `json:"state"`
	Accuracy    float64    `json:"accuracy"`
	Samples     int        `json:"samples"`
	RunID       string     `json:"run_id,omitempty"`
	Error       string     `json:"error,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// Done reports whether the job reached a terminal state.
func (j JobStatus) Done() bool {
	return j.State == JobSucceeded || j.State == JobFailed
}

// RunSummary describes the last successful training run.
type RunSummary struct {
	RunID          string    `json:"run_id"`
	Accuracy       float64   `json:"accuracy"`
	Samples        int       `json:"samples"`
	Dropped        int       `json:"dropped"`
	TrainSize      int       `json:"train_size"`
	ValidationSize int       `json:"validation_size"`
	DurationMS     int64     `json:"duration_ms"`
	TrainedAt      time.Time `json:"trained_at"`
}

// Status is the pipeline overview served by GET /status.
type Status struct {
	Trained       bool        `json:"trained"`
	LastRun       *RunSummary `json:"last_run,omitempty"`
	CorpusMatches int         `json:"corpus_matches"`
	Teams         int         `json:"teams"`
	ProfiledTeams int         `json:"profiled_teams"`
	Horizon       string      `json:"horizon,omitempty"`
	PendingJobs   int         `json:"pending_jobs"`
}
