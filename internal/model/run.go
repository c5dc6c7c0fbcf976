package model

import "time"

// RunStatus represents the current state of a pipeline run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one invocation of a pipeline command, as kept in the run ledger.
type Run struct {
	ID         string     `json:"id"`
	Command    string     `json:"command"`
	Status     RunStatus  `json:"status"`
	RowsIn     int        `json:"rows_in"`
	RowsOut    int        `json:"rows_out"`
	Warnings   int        `json:"warnings"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// RunSummary holds the counters recorded when a run completes.
type RunSummary struct {
	RowsIn   int `json:"rows_in"`
	RowsOut  int `json:"rows_out"`
	Warnings int `json:"warnings"`
}
