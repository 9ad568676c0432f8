package model

import "time"

// RunState is a state of the artifact orchestrator
type RunState string

const (
	StateInit        RunState = "init"
	StateValidating  RunState = "validating"
	StateFetching    RunState = "fetching"
	StatePerRowLoop  RunState = "per_row_loop"
	StateSummarizing RunState = "summarizing"
	StateDone        RunState = "done"
	StateFailed      RunState = "failed"
)

// RunSummary aggregates the outcome of one run. It is observational only.
type RunSummary struct {
	RunID          string           `json:"run_id"`
	Table          string           `json:"table"`
	OutputDir      string           `json:"output_dir"`
	Mode           RenderMode       `json:"mode"`
	State          RunState         `json:"state"`
	RowsSeen       int              `json:"rows_seen"`
	Artifacts      []ArtifactResult `json:"artifacts"`
	Failures       []RowFailure     `json:"failures"`
	HasTargets     bool             `json:"has_targets"`
	MinTargetKB    int              `json:"min_target_kb,omitempty"`
	MaxTargetKB    int              `json:"max_target_kb,omitempty"`
	OutOfTolerance int              `json:"out_of_tolerance"`
	TotalBytes     int64            `json:"total_bytes"`
	StartTime      time.Time        `json:"start_time"`
	Duration       time.Duration    `json:"duration"`
}

// Paths returns the artifact paths in row order
func (s RunSummary) Paths() []string {
	paths := make([]string, len(s.Artifacts))
	for i, a := range s.Artifacts {
		paths[i] = a.Path
	}
	return paths
}

// Skipped returns the number of rows that failed and produced no artifact
func (s RunSummary) Skipped() int {
	return len(s.Failures)
}
