// Package pipeline runs the ingest, transform, validate and persist cycle
// that turns a pipeline definition into a tracked run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go-quality-pipeline/internal/metrics"
	"go-quality-pipeline/internal/model"
	"go-quality-pipeline/internal/record"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultSampleSize is the number of transformed records kept per run
const DefaultSampleSize = 50

// RuleStore lists the rules that take part in a validation pass
type RuleStore interface {
	ActiveQualityRules(ctx context.Context) ([]model.QualityRule, error)
}

// Persistence receives the artifacts of a run
type Persistence interface {
	SaveQualityResult(ctx context.Context, res model.QualityResult) error
	SaveProcessedData(ctx context.Context, pd model.ProcessedData) error
	SaveRun(ctx context.Context, run model.PipelineRun) error
}

// Options tune an Orchestrator. Zero values select defaults.
type Options struct {
	Scorer     Scorer
	SampleSize int
	// Timeout bounds a single run; zero means no limit beyond the caller's context.
	Timeout time.Duration
	Logger  *zap.Logger
	Metrics *metrics.Recorder
	Now     func() time.Time
}

// Orchestrator executes pipeline runs. It holds no per-run state and may be
// shared by concurrent callers as long as its collaborators are safe to share.
type Orchestrator struct {
	ingest  Ingestor
	rules   RuleStore
	sink    Persistence
	scorer  Scorer
	sample  int
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewOrchestrator wires an orchestrator from its collaborators
func NewOrchestrator(ingest Ingestor, rules RuleStore, sink Persistence, opts Options) *Orchestrator {
	o := &Orchestrator{
		ingest:  ingest,
		rules:   rules,
		sink:    sink,
		scorer:  opts.Scorer,
		sample:  opts.SampleSize,
		timeout: opts.Timeout,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
	if o.scorer == nil {
		o.scorer = UnweightedMean{}
	}
	if o.sample <= 0 {
		o.sample = DefaultSampleSize
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewRecorder(nil)
	}
	if o.now == nil {
		o.now = time.Now
	}
	o.logger = o.logger.Named("orchestrator")
	return o
}

// Run executes p against src and persists the run record exactly once,
// whether the run succeeds or fails. Failures inside the run are captured on
// the returned record; the error is non-nil only when the run itself could
// not be saved.
func (o *Orchestrator) Run(ctx context.Context, p model.Pipeline, src model.DataSource) (*model.PipelineRun, error) {
	run := &model.PipelineRun{
		ID:           uuid.New().String(),
		PipelineID:   p.ID,
		PipelineName: p.Name,
		Status:       model.RunRunning,
		StartTime:    o.now().UTC(),
		Logs:         []model.LogEntry{},
	}
	t := newRunTracker(run, o.logger, o.metrics, o.now)

	if err := o.execute(ctx, t, p, src); err != nil {
		t.Fail(err)
	}

	// The run record outlives a cancelled caller.
	if err := o.sink.SaveRun(context.WithoutCancel(ctx), *run); err != nil {
		o.logger.Error("failed to save pipeline run",
			zap.String("run_id", run.ID),
			zap.Error(err),
		)
		return run, fmt.Errorf("save run %s: %w", run.ID, err)
	}
	t.Finish()
	return run, nil
}

func (o *Orchestrator) execute(ctx context.Context, t *RunTracker, p model.Pipeline, src model.DataSource) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	raw, err := o.ingestPhase(ctx, t, src)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	transformed := o.transformPhase(t, p, raw)
	if err := ctx.Err(); err != nil {
		return err
	}

	report, err := o.validatePhase(ctx, t, transformed)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := o.persistPhase(ctx, t, transformed, report); err != nil {
		return err
	}

	t.Complete(len(transformed), report.FailedRecords, report.Metrics)
	return nil
}

func (o *Orchestrator) ingestPhase(ctx context.Context, t *RunTracker, src model.DataSource) (record.Set, error) {
	t.StartPhase(PhaseIngest)
	t.Log(model.LevelInfo, "Starting data ingestion...")
	raw, err := o.ingest.Ingest(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("ingest source %q: %w", src.ID, err)
	}
	t.Log(model.LevelInfo, "Ingested %d records", len(raw))
	o.metrics.RecordRecords(t.Run.PipelineName, "ingested", len(raw))
	t.EndPhase(nil)
	return raw, nil
}

func (o *Orchestrator) transformPhase(t *RunTracker, p model.Pipeline, raw record.Set) record.Set {
	t.StartPhase(PhaseTransform)
	t.Log(model.LevelInfo, "Applying transformations...")
	out := raw.Clone()
	for i, step := range ParseSteps(p.Transformations) {
		if _, ok := step.(UnrecognizedStep); ok {
			o.logger.Warn("ignoring unrecognized transformation",
				zap.String("run_id", t.Run.ID),
				zap.Int("step", i),
				zap.String("type", step.Kind()),
			)
		}
		before := len(out)
		out = step.Apply(out)
		o.logger.Debug("applied transformation",
			zap.String("run_id", t.Run.ID),
			zap.String("type", step.Kind()),
			zap.Int("in", before),
			zap.Int("out", len(out)),
		)
	}
	t.Log(model.LevelInfo, "Transformed to %d records", len(out))
	o.metrics.RecordRecords(t.Run.PipelineName, "transformed", len(out))
	t.EndPhase(nil)
	return out
}

func (o *Orchestrator) validatePhase(ctx context.Context, t *RunTracker, set record.Set) (Report, error) {
	t.StartPhase(PhaseValidate)
	t.Log(model.LevelInfo, "Running data quality checks...")
	rules, err := o.rules.ActiveQualityRules(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load quality rules: %w", err)
	}

	report := Validate(set, rules, o.scorer)
	for i := range report.Results {
		res := &report.Results[i]
		res.ID = uuid.New().String()
		res.PipelineRunID = t.Run.ID
		res.Timestamp = o.now().UTC()
		if err := o.sink.SaveQualityResult(ctx, *res); err != nil {
			return Report{}, fmt.Errorf("save quality result for rule %q: %w", res.RuleName, err)
		}
	}
	t.Log(model.LevelInfo, "Quality score: %v%%", report.Metrics.OverallQualityScore)
	o.metrics.RecordRecords(t.Run.PipelineName, "failed", report.FailedRecords)
	t.EndPhase(nil)
	return report, nil
}

func (o *Orchestrator) persistPhase(ctx context.Context, t *RunTracker, set record.Set, report Report) error {
	t.StartPhase(PhasePersist)
	pd := model.ProcessedData{
		ID:            uuid.New().String(),
		PipelineRunID: t.Run.ID,
		Data:          set.ProjectSample(o.sample),
		Metadata: model.ProcessedDataMetadata{
			TotalRecords:   len(set),
			QualityMetrics: report.Metrics,
		},
		Timestamp: o.now().UTC(),
	}
	if err := o.sink.SaveProcessedData(ctx, pd); err != nil {
		return fmt.Errorf("save processed data: %w", err)
	}
	t.EndPhase(nil)
	return nil
}

// Job pairs a pipeline with the source it reads
type Job struct {
	Pipeline model.Pipeline
	Source   model.DataSource
}

// RunAll executes jobs concurrently, at most limit at a time (no limit when
// limit <= 0). Runs are independent: one failing run does not cancel the
// others. The returned slice is index-aligned with jobs; the error is the
// first failure to save a run.
func (o *Orchestrator) RunAll(ctx context.Context, jobs []Job, limit int) ([]*model.PipelineRun, error) {
	runs := make([]*model.PipelineRun, len(jobs))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			run, err := o.Run(ctx, job.Pipeline, job.Source)
			runs[i] = run
			return err
		})
	}
	err := g.Wait()
	return runs, err
}
