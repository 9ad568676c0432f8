package model

import "time"

// ArtifactResult represents one artifact written for a row
type ArtifactResult struct {
	RowIndex     int           `json:"row_index"`
	Path         string        `json:"path"`
	Filename     string        `json:"filename"`
	TargetKB     int           `json:"target_kb,omitempty"`
	NaturalBytes int64         `json:"natural_bytes"`
	FinalBytes   int64         `json:"final_bytes"`
	Inflated     bool          `json:"inflated"`
	Verification *Verification `json:"verification,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// Verification is the observational size check of a finished artifact
type Verification struct {
	TargetKB  int     `json:"target_kb"`
	ActualKB  float64 `json:"actual_kb"`
	Tolerance float64 `json:"tolerance"`
	Within    bool    `json:"within"`
}

// RowFailure records a row that was skipped because its pipeline failed
type RowFailure struct {
	RowIndex  int       `json:"row_index"`
	Stage     string    `json:"stage"` // "render", "encode", "inflate", "panic"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
