package dto

import "time"

type ServiceStatus struct {
	Status          string     `json:"status"`
	Running         bool       `json:"running"`
	Scheduled       bool       `json:"scheduled"`
	IntervalSeconds int64      `json:"intervalSeconds,omitempty"`
	NextRun         *time.Time `json:"nextRun,omitempty"`
	LastRun         *RunStats  `json:"lastRun,omitempty"`
}

type RunResponse struct {
	Processed int    `json:"processed"`
	RunID     string `json:"runId,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	RunID string `json:"runId,omitempty"`
}
