package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go-pdf-fixtures/internal/logger"
	"go-pdf-fixtures/internal/model"
	"go-pdf-fixtures/internal/store"
	"go-pdf-fixtures/pkg/utils"
)

// ErrTableNotFound is returned by Run when the source table does not exist
var ErrTableNotFound = store.ErrTableNotFound

// Row failure stages
const (
	StageRender    = "render"
	StageEncode    = "encode"
	StageInflate   = "inflate"
	StagePanic     = "panic"
	StageCancelled = "cancelled"
)

// RowSource is the table the orchestrator reads rows from
type RowSource interface {
	ValidateTableExists(ctx context.Context) (bool, error)
	GetAllRows(ctx context.Context) ([]model.Row, error)
}

// Orchestrator turns every row of a table into one PDF artifact
type Orchestrator struct {
	job      model.GenerationJob
	source   RowSource
	encoder  Encoder
	parser   SizeSpecParser
	layout   LayoutBuilder
	raster   *RasterRenderer
	inflator *Inflator
	output   *utils.OutputManager
	out      io.Writer
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithEncoder replaces the PDF encoder
func WithEncoder(e Encoder) Option {
	return func(o *Orchestrator) { o.encoder = e }
}

// WithProgress sets where progress lines are written (stdout by default)
func WithProgress(w io.Writer) Option {
	return func(o *Orchestrator) { o.out = w }
}

// NewOrchestrator creates an orchestrator for job reading from source
func NewOrchestrator(job model.GenerationJob, source RowSource, opts ...Option) *Orchestrator {
	if job.Title == "" {
		job.Title = HumanizeName(job.Table)
	}
	if job.Mode == "" {
		job.Mode = model.Vector
	}
	if job.Workers < 1 {
		job.Workers = 1
	}

	o := &Orchestrator{
		job:      job,
		source:   source,
		encoder:  NewPDFEncoder(job.ValidateArtifacts),
		parser:   SizeSpecParser{SizeColumn: job.SizeColumn, FilenameColumn: job.FilenameColumn},
		layout:   LayoutBuilder{Title: job.Title},
		raster:   NewRasterRenderer(job.Title, job.FontPath),
		inflator: NewInflator(job.Tolerance),
		output:   utils.NewOutputManager(job.OutputDir),
		out:      os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.out == nil {
		o.out = io.Discard
	}
	return o
}

// Job returns the effective job, with defaults applied
func (o *Orchestrator) Job() model.GenerationJob {
	return o.job
}

// rowPlan is the per-row work decided before any artifact is written
type rowPlan struct {
	index    int
	fields   model.Row
	spec     model.SizeSpec
	filename string
	path     string
}

// Run executes the whole batch. Only a missing table, an unusable output
// directory, or a storage failure end the run with an error; a failing row
// is recorded in the summary and the remaining rows still run.
func (o *Orchestrator) Run(ctx context.Context) (model.RunSummary, error) {
	tracker := NewRunTracker(uuid.NewString(), o.job, o.out)
	fmt.Fprintf(o.out, "🚀 Starting %s artifact generation for table %q\n", o.job.Mode, o.job.Table)

	// --- VALIDATING ---
	if err := tracker.transition(model.StateInit, model.StateValidating); err != nil {
		return tracker.Summary(), err
	}
	if err := o.validate(ctx); err != nil {
		return o.fail(tracker, model.StateValidating, err)
	}

	// --- FETCHING ---
	if err := tracker.transition(model.StateValidating, model.StateFetching); err != nil {
		return tracker.Summary(), err
	}
	rows, err := o.source.GetAllRows(ctx)
	if err != nil {
		return o.fail(tracker, model.StateFetching, fmt.Errorf("fetch rows: %w", err))
	}
	tracker.RowsFetched(len(rows))
	fmt.Fprintf(o.out, "📥 Fetched %d rows from %s\n", len(rows), o.job.Table)

	// --- PER-ROW LOOP ---
	if err := tracker.transition(model.StateFetching, model.StatePerRowLoop); err != nil {
		return tracker.Summary(), err
	}
	if len(rows) == 0 {
		fmt.Fprintln(o.out, "⚠️  No data found")
	}
	plans := o.plan(rows, tracker)
	o.runRows(ctx, plans, tracker)

	// --- SUMMARIZING ---
	if err := tracker.transition(model.StatePerRowLoop, model.StateSummarizing); err != nil {
		return tracker.Summary(), err
	}
	if err := tracker.transition(model.StateSummarizing, model.StateDone); err != nil {
		return tracker.Summary(), err
	}
	summary := tracker.Summary()
	PrintSummary(o.out, summary)
	return summary, ctx.Err()
}

// validate checks the table and prepares the output directory
func (o *Orchestrator) validate(ctx context.Context) error {
	fmt.Fprintf(o.out, "🔍 Validating table %q\n", o.job.Table)
	ok, err := o.source.ValidateTableExists(ctx)
	if err != nil {
		return fmt.Errorf("validate table: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrTableNotFound, o.job.Table)
	}
	return o.output.EnsureOutputDirExists()
}

func (o *Orchestrator) fail(tracker *RunTracker, from model.RunState, err error) (model.RunSummary, error) {
	if terr := tracker.transition(from, model.StateFailed); terr != nil {
		logger.Error("could not record run failure", "err", terr)
	}
	logger.Error("run failed", "table", o.job.Table, "state", from, "err", err)
	fmt.Fprintf(o.out, "❌ Run failed: %v\n", err)
	return tracker.Summary(), err
}

// plan parses the directives of every row up front. Rows whose filenames
// collide write to the same path; the later row wins.
func (o *Orchestrator) plan(rows []model.Row, tracker *RunTracker) []rowPlan {
	plans := make([]rowPlan, len(rows))
	for i, row := range rows {
		spec := o.parser.Parse(row, i)
		tracker.ObserveTarget(spec.TargetKB)

		name := ResolveFilename(spec.Filename, i)
		plans[i] = rowPlan{
			index:    i,
			fields:   row.Without(o.job.SizeColumn, o.job.FilenameColumn),
			spec:     spec,
			filename: name,
			path:     o.output.ArtifactPath(name),
		}
	}
	return plans
}

// runRows processes the planned rows with at most job.Workers in flight.
// Rows sharing a path are processed in row order on one worker.
func (o *Orchestrator) runRows(ctx context.Context, plans []rowPlan, tracker *RunTracker) {
	lanes := make(map[string][]rowPlan)
	var order []string
	for _, p := range plans {
		if _, seen := lanes[p.path]; !seen {
			order = append(order, p.path)
		}
		lanes[p.path] = append(lanes[p.path], p)
	}

	var g errgroup.Group
	g.SetLimit(o.job.Workers)
	for _, path := range order {
		lane := lanes[path]
		g.Go(func() error {
			for _, p := range lane {
				if err := ctx.Err(); err != nil {
					tracker.RecordFailure(p.index, StageCancelled, err)
					continue
				}
				res, stage, err := o.processRow(p)
				if err != nil {
					logger.Error("row failed", "row", p.index, "stage", stage, "err", err)
					tracker.RecordFailure(p.index, stage, err)
					continue
				}
				tracker.RecordArtifact(res)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// processRow runs one row through render, encode, inflate and verify. A
// panic anywhere in the row is returned as an error of stage "panic".
func (o *Orchestrator) processRow(p rowPlan) (res model.ArtifactResult, stage string, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			stage, err = StagePanic, fmt.Errorf("recovered: %v", r)
		}
	}()

	res = model.ArtifactResult{
		RowIndex: p.index,
		Path:     p.path,
		Filename: p.filename,
		TargetKB: p.spec.TargetKB,
	}

	content, err := o.render(p)
	if err != nil {
		return res, StageRender, err
	}

	if err := o.encoder.Encode(content, p.path, p.spec.TargetKB); err != nil {
		return res, StageEncode, err
	}
	if res.NaturalBytes, err = utils.GetFileSize(p.path); err != nil {
		return res, StageEncode, fmt.Errorf("stat artifact: %w", err)
	}
	res.FinalBytes = res.NaturalBytes

	if p.spec.HasTarget() {
		if res.Inflated, err = o.inflator.Inflate(p.path, p.spec.TargetKB); err != nil {
			discard(p.path)
			return res, StageInflate, err
		}
		v := o.inflator.Verify(p.path, p.spec.TargetKB, p.filename)
		res.Verification = &v
		if res.FinalBytes, err = utils.GetFileSize(p.path); err != nil {
			return res, StageInflate, fmt.Errorf("stat artifact: %w", err)
		}
	}

	res.Duration = time.Since(start)
	return res, "", nil
}

// discard removes a partly padded artifact so a skipped row leaves no file
func discard(path string) {
	if err := os.RemoveAll(path); err != nil {
		logger.Warn("could not remove incomplete artifact", "path", path, "err", err)
	}
}

// render builds the content for one row in the run's mode
func (o *Orchestrator) render(p rowPlan) (model.RenderedContent, error) {
	switch o.job.Mode {
	case model.Vector:
		blocks := o.layout.Build(p.fields)
		if p.spec.HasTarget() {
			blocks = o.layout.AddPadding(blocks, p.spec.TargetBytes())
		}
		return model.RenderedContent{Mode: model.Vector, Blocks: blocks}, nil
	case model.Raster:
		img, layout := o.raster.Render(p.fields, p.spec.TargetKB)
		logger.Debug("rendered raster form",
			"row", p.index,
			"width", layout.Width,
			"height", layout.Height,
			"scale", layout.Scale,
			"repetitions", layout.Repetitions,
			"fields", layout.FieldsDrawn,
			"truncated", layout.Truncated,
		)
		return model.RenderedContent{Mode: model.Raster, Image: img}, nil
	default:
		return model.RenderedContent{}, fmt.Errorf("unknown render mode %q", o.job.Mode)
	}
}
