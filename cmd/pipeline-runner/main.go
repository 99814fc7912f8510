package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"text/tabwriter"

	"go-quality-pipeline/internal/config"
	"go-quality-pipeline/internal/logging"
	"go-quality-pipeline/internal/model"
	"go-quality-pipeline/internal/pipeline"
	"go-quality-pipeline/internal/seed"
	"go-quality-pipeline/internal/store"
	"go-quality-pipeline/pkg/utils"

	"go.uber.org/zap"
)

var (
	version = "0.1.0-dev"
)

type options struct {
	defsPath string
	input    string
	outDir   string
	format   string
	only     string
	parallel int
	records  int
	seed     int64
	scoring  string
	dbDSN    string
}

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn or error")
	var opts options
	flag.StringVar(&opts.defsPath, "defs", "", "Definitions file (yaml, toml or json). Built-in samples when empty.")
	flag.StringVar(&opts.input, "input", "", "Read every source from this CSV, JSON or JSONL file")
	flag.StringVar(&opts.outDir, "out", "outputs", "Directory for per-run outputs")
	flag.StringVar(&opts.format, "format", "json", "Sample export format: json, jsonl or csv")
	flag.StringVar(&opts.only, "pipeline", "", "Run only the pipeline with this name or id")
	flag.IntVar(&opts.parallel, "parallel", 4, "Maximum concurrent runs (0 = unlimited)")
	flag.IntVar(&opts.records, "records", 100, "Records generated per simulated source")
	flag.Int64Var(&opts.seed, "seed", 0, "Seed for simulated sources (0 = random)")
	flag.StringVar(&opts.scoring, "scoring", pipeline.ScoringUnweighted, "Overall score strategy: unweighted or severity")
	flag.StringVar(&opts.dbDSN, "db", ":memory:", "SQLite database for run history")
	flag.Parse()

	if *showVersion {
		fmt.Println("pipeline-runner", version)
		return
	}

	logger, err := logging.New(*logLevel, "console")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed, err := run(ctx, opts, logger, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(3)
	}
}

// run executes the selected pipelines and returns the number of failed runs
func run(ctx context.Context, opts options, logger *zap.Logger, out io.Writer) (int, error) {
	if utils.FileType("sample."+opts.format) == "unknown" {
		return 0, fmt.Errorf("unsupported export format %q", opts.format)
	}
	scorer, err := pipeline.ScorerByName(opts.scoring)
	if err != nil {
		return 0, err
	}

	defs := seed.Defaults()
	if opts.defsPath != "" {
		if defs, err = config.LoadDefinitions(opts.defsPath); err != nil {
			return 0, err
		}
	}

	s, err := store.Open(ctx, store.DriverSQLite, opts.dbDSN, logger)
	if err != nil {
		return 0, err
	}
	defer s.Close()
	if _, err := seed.Apply(ctx, s, defs); err != nil {
		return 0, err
	}

	jobs := buildJobs(defs, opts)
	if len(jobs) == 0 {
		return 0, fmt.Errorf("no pipelines to run")
	}

	sink := &capturingSink{Store: s, samples: make(map[string]model.ProcessedData)}
	ingest := pipeline.SourceIngestor{
		Simulated: pipeline.SimulatedIngestor{Records: opts.records, Seed: opts.seed},
		Files:     pipeline.FileIngestor{},
	}
	orch := pipeline.NewOrchestrator(ingest, s, sink, pipeline.Options{Scorer: scorer, Logger: logger})

	runs, err := orch.RunAll(ctx, jobs, opts.parallel)
	if err != nil {
		logger.Error("some runs could not be saved", zap.Error(err))
	}

	om := utils.NewOutputManager(opts.outDir)
	if err := om.EnsureOutputDirExists(); err != nil {
		return 0, err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tPIPELINE\tSTATUS\tRECORDS\tFAILED\tSCORE\tOUTPUT")
	failed := 0
	for _, r := range runs {
		if r == nil {
			failed++
			continue
		}
		if r.Status != model.RunSuccess {
			failed++
		}
		output := "-"
		if pd, ok := sink.sample(r.ID); ok {
			output = exportSample(om, r, pd, opts.format, logger)
		}
		score := "-"
		if r.Metrics != nil {
			score = fmt.Sprintf("%.2f", r.Metrics.OverallQualityScore)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.PipelineName, r.Status, r.RecordsProcessed, r.RecordsFailed, score, output)
		if r.ErrorMessage != nil {
			fmt.Fprintf(tw, "\t\terror: %s\t\t\t\t\n", *r.ErrorMessage)
		}
	}
	if err := tw.Flush(); err != nil {
		return failed, err
	}
	return failed, nil
}

func buildJobs(defs *store.Definitions, opts options) []pipeline.Job {
	sources := make(map[string]model.DataSource, len(defs.Sources))
	for _, src := range defs.Sources {
		sources[src.ID] = src
	}

	var jobs []pipeline.Job
	for _, p := range defs.Pipelines {
		if opts.only != "" && opts.only != p.ID && !strings.EqualFold(opts.only, p.Name) {
			continue
		}
		src, ok := sources[p.SourceID]
		if !ok {
			src = model.DataSource{ID: p.SourceID}
		}
		if opts.input != "" {
			src.Type = "file"
			src.Config = map[string]interface{}{"path": opts.input}
		}
		jobs = append(jobs, pipeline.Job{Pipeline: p, Source: src})
	}
	return jobs
}

func exportSample(om *utils.OutputManager, r *model.PipelineRun, pd model.ProcessedData, format string, logger *zap.Logger) string {
	path, err := om.FilePath(r.ID, "sample."+format)
	if err != nil {
		logger.Error("output path", zap.String("run_id", r.ID), zap.Error(err))
		return "-"
	}
	res := pipeline.ExportRun(path, r, pd)
	if !res.Success {
		logger.Error("export failed", zap.String("run_id", r.ID), zap.String("error", res.Error))
		return "-"
	}
	return res.Path
}

// capturingSink stores run artifacts and keeps each run's sample for export
type capturingSink struct {
	*store.Store

	mu      sync.Mutex
	samples map[string]model.ProcessedData
}

func (c *capturingSink) SaveProcessedData(ctx context.Context, pd model.ProcessedData) error {
	if err := c.Store.SaveProcessedData(ctx, pd); err != nil {
		return err
	}
	c.mu.Lock()
	c.samples[pd.PipelineRunID] = pd
	c.mu.Unlock()
	return nil
}

func (c *capturingSink) sample(runID string) (model.ProcessedData, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pd, ok := c.samples[runID]
	return pd, ok
}
