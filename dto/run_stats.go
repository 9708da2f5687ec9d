package dto

import "time"

type RunStats struct {
	RunID      string     `json:"runId"`
	Trigger    string     `json:"trigger"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Fetched    int        `json:"fetched"`
	Persisted  int        `json:"persisted"`
	Duplicates int        `json:"duplicates"`
	Degraded   int        `json:"degraded"`
	Failed     int        `json:"failed"`
	Error      string     `json:"error,omitempty"`
}
