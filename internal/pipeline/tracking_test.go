package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-pdf-fixtures/internal/model"
)

func TestRunTracker_SummaryIsInRowOrder(t *testing.T) {
	var out bytes.Buffer
	tr := NewRunTracker("run-1", model.GenerationJob{Table: "t", OutputDir: "/out", Mode: model.Vector}, &out)
	tr.RowsFetched(4)

	tr.RecordArtifact(model.ArtifactResult{RowIndex: 3, Path: "/out/3.pdf", FinalBytes: 300})
	tr.RecordFailure(2, StageEncode, errors.New("boom"))
	tr.RecordArtifact(model.ArtifactResult{
		RowIndex: 0, Path: "/out/0.pdf", FinalBytes: 100, TargetKB: 1,
		Verification: &model.Verification{Within: false},
	})
	tr.RecordArtifact(model.ArtifactResult{RowIndex: 1, Path: "/out/1.pdf", FinalBytes: 200})

	s := tr.Summary()
	assert.Equal(t, []string{"/out/0.pdf", "/out/1.pdf", "/out/3.pdf"}, s.Paths())
	assert.Equal(t, int64(600), s.TotalBytes)
	assert.Equal(t, 1, s.OutOfTolerance)
	assert.Equal(t, 1, s.Skipped())
	assert.Equal(t, 4, s.RowsSeen)
	assert.Equal(t, "run-1", s.RunID)

	assert.Contains(t, out.String(), "✅ Generated: /out/0.pdf (target 1 KB")
	assert.Contains(t, out.String(), "❌ Row 2 skipped (encode): boom")
}

func TestRunTracker_ConcurrentRecording(t *testing.T) {
	var out bytes.Buffer
	tr := NewRunTracker("run-2", model.GenerationJob{OutputDir: "/out"}, &out)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				tr.RecordFailure(i, StageRender, errors.New("bad"))
				return
			}
			tr.RecordArtifact(model.ArtifactResult{RowIndex: i, Path: fmt.Sprintf("/out/%d.pdf", i), FinalBytes: 10})
		}(i)
	}
	wg.Wait()

	s := tr.Summary()
	assert.Len(t, s.Artifacts, 24)
	assert.Len(t, s.Failures, 8)
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 32)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "✅ Generated: /out/") || strings.HasPrefix(line, "❌ Row "), line)
	}
}

func TestRunTracker_TargetRange(t *testing.T) {
	tr := NewRunTracker("r", model.GenerationJob{}, nil)
	assert.False(t, tr.Summary().HasTargets)

	for _, kb := range []int{120, 0, 10, 600, -3} {
		tr.ObserveTarget(kb)
	}
	s := tr.Summary()
	assert.True(t, s.HasTargets)
	assert.Equal(t, 10, s.MinTargetKB)
	assert.Equal(t, 600, s.MaxTargetKB)
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	PrintSummary(&out, model.RunSummary{
		RunID:       "abc",
		OutputDir:   "/out",
		Mode:        model.Raster,
		RowsSeen:    3,
		Artifacts:   make([]model.ArtifactResult, 2),
		Failures:    make([]model.RowFailure, 1),
		HasTargets:  true,
		MinTargetKB: 10,
		MaxTargetKB: 600,
		TotalBytes:  2048,
	})

	got := out.String()
	assert.Contains(t, got, "Generated 2 of 3 PDF artifacts in /out")
	assert.Contains(t, got, "simulating scanned documents")
	assert.Contains(t, got, "from 10 KB to 600 KB")
	assert.Contains(t, got, "2.0 KiB")
	assert.Contains(t, got, "1 rows skipped")
	assert.Contains(t, got, "Run abc")
}

func TestRunTracker_Transitions(t *testing.T) {
	tr := NewRunTracker("r", model.GenerationJob{}, nil)

	require.NoError(t, tr.transition(model.StateInit, model.StateValidating))
	assert.Error(t, tr.transition(model.StateInit, model.StateValidating), "wrong prior state")
	assert.Error(t, tr.transition(model.StateValidating, model.StateDone), "skipping states")
	require.NoError(t, tr.transition(model.StateValidating, model.StateFetching))
	require.NoError(t, tr.transition(model.StateFetching, model.StatePerRowLoop))
	assert.Error(t, tr.transition(model.StatePerRowLoop, model.StateFailed), "row loop cannot fail the run")
	require.NoError(t, tr.transition(model.StatePerRowLoop, model.StateSummarizing))
	require.NoError(t, tr.transition(model.StateSummarizing, model.StateDone))
	assert.True(t, IsTerminal(tr.State()))
}

func TestIsAllowedTransition(t *testing.T) {
	tests := []struct {
		from, to model.RunState
		want     bool
	}{
		{model.StateInit, model.StateValidating, true},
		{model.StateInit, model.StateFailed, false},
		{model.StateValidating, model.StateFailed, true},
		{model.StateFetching, model.StateFailed, true},
		{model.StatePerRowLoop, model.StateFailed, false},
		{model.StateSummarizing, model.StateFailed, false},
		{model.StateDone, model.StateInit, false},
		{model.StateFailed, model.StateValidating, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, isAllowedTransition(tt.from, tt.to))
		})
	}
}
