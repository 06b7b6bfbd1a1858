// Package model defines the records passed between ingestion, aggregation,
// storage, and export.
package model

import "time"

// RunStatus is the state of a load run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one load of a cost report and its income files.
type Run struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Status      RunStatus  `json:"status"`
	Regions     int64      `json:"regions"`
	Incomes     int64      `json:"incomes"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunCounts holds the row counts written by a successful run.
type RunCounts struct {
	Regions int64 `json:"regions"`
	Incomes int64 `json:"incomes"`
}
