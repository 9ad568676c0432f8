package pipeline

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"go-pdf-fixtures/internal/model"
)

// RunTracker collects per-row outcomes of one run. Rows may finish in any
// order; results are keyed by row index and reported in row order.
type RunTracker struct {
	mu sync.RWMutex

	summary   model.RunSummary
	artifacts map[int]model.ArtifactResult
	failures  map[int]model.RowFailure
	targets   []int
	out       io.Writer
}

// NewRunTracker creates a tracker for job; progress lines go to out (may be nil)
func NewRunTracker(runID string, job model.GenerationJob, out io.Writer) *RunTracker {
	if out == nil {
		out = io.Discard
	}
	return &RunTracker{
		summary: model.RunSummary{
			RunID:     runID,
			Table:     job.Table,
			OutputDir: job.OutputDir,
			Mode:      job.Mode,
			State:     model.StateInit,
			StartTime: time.Now(),
		},
		artifacts: make(map[int]model.ArtifactResult),
		failures:  make(map[int]model.RowFailure),
		out:       out,
	}
}

// State returns the current orchestrator state
func (t *RunTracker) State() model.RunState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.summary.State
}

// RowsFetched records how many rows the source returned
func (t *RunTracker) RowsFetched(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.summary.RowsSeen = n
}

// ObserveTarget records a parsed size target for the min/max report
func (t *RunTracker) ObserveTarget(targetKB int) {
	if targetKB <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.targets = append(t.targets, targetKB)
}

// RecordArtifact stores a successful row result and prints its progress line.
// The line is written under the lock; out is shared by all workers.
func (t *RunTracker) RecordArtifact(res model.ArtifactResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.artifacts[res.RowIndex] = res

	if res.TargetKB > 0 {
		fmt.Fprintf(t.out, "✅ Generated: %s (target %d KB, actual %s)\n",
			res.Path, res.TargetKB, humanize.IBytes(uint64(res.FinalBytes)))
		return
	}
	fmt.Fprintf(t.out, "✅ Generated: %s (%s)\n", res.Path, humanize.IBytes(uint64(res.FinalBytes)))
}

// RecordFailure stores a skipped row and prints its progress line
func (t *RunTracker) RecordFailure(rowIndex int, stage string, err error) {
	f := model.RowFailure{
		RowIndex:  rowIndex,
		Stage:     stage,
		Message:   err.Error(),
		Timestamp: time.Now(),
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[rowIndex] = f

	fmt.Fprintf(t.out, "❌ Row %d skipped (%s): %v\n", rowIndex, stage, err)
}

// Summary assembles the run summary with results in row order
func (t *RunTracker) Summary() model.RunSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := t.summary
	s.Duration = time.Since(s.StartTime)
	s.Artifacts = make([]model.ArtifactResult, 0, len(t.artifacts))
	s.Failures = make([]model.RowFailure, 0, len(t.failures))

	for _, i := range sortedKeys(t.artifacts) {
		a := t.artifacts[i]
		s.Artifacts = append(s.Artifacts, a)
		s.TotalBytes += a.FinalBytes
		if a.Verification != nil && !a.Verification.Within {
			s.OutOfTolerance++
		}
	}
	for _, i := range sortedKeys(t.failures) {
		s.Failures = append(s.Failures, t.failures[i])
	}

	if len(t.targets) > 0 {
		s.HasTargets = true
		s.MinTargetKB, s.MaxTargetKB = t.targets[0], t.targets[0]
		for _, kb := range t.targets[1:] {
			s.MinTargetKB = min(s.MinTargetKB, kb)
			s.MaxTargetKB = max(s.MaxTargetKB, kb)
		}
	}
	return s
}

// PrintSummary writes the end-of-run report
func PrintSummary(w io.Writer, s model.RunSummary) {
	fmt.Fprintf(w, "\n📊 Generated %d of %d PDF artifacts in %s\n", len(s.Artifacts), s.RowsSeen, s.OutputDir)
	if s.Mode == model.Raster {
		fmt.Fprintln(w, "🖼️  Raster mode: simulating scanned documents")
	}
	if s.HasTargets {
		fmt.Fprintf(w, "📏 Target sizes ranged from %d KB to %d KB\n", s.MinTargetKB, s.MaxTargetKB)
	}
	fmt.Fprintf(w, "💾 Total size on disk: %s\n", humanize.IBytes(uint64(s.TotalBytes)))
	if s.OutOfTolerance > 0 {
		fmt.Fprintf(w, "⚠️  %d artifacts outside size tolerance\n", s.OutOfTolerance)
	}
	if n := s.Skipped(); n > 0 {
		fmt.Fprintf(w, "⚠️  %d rows skipped\n", n)
	}
	fmt.Fprintf(w, "⏱️  Run %s completed in %s\n", s.RunID, s.Duration.Round(time.Millisecond))
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
