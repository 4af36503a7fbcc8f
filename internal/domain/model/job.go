package model

import "time"

// TrainJob is a request to retrain the classifier on the current corpus.
type TrainJob struct {
	ID          string
	RequestedAt time.Time
}
