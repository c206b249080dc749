package micsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/GpSinghJadon/micsync-go/pkg/micsync/config"
	"github.com/GpSinghJadon/micsync-go/pkg/micsync/models"
	"github.com/GpSinghJadon/micsync-go/pkg/micsync/output"
	"github.com/GpSinghJadon/micsync-go/pkg/micsync/parser"
	"github.com/GpSinghJadon/micsync-go/pkg/micsync/publish"
	"github.com/GpSinghJadon/micsync-go/pkg/micsync/source"
)

// Fetcher obtains the source spreadsheet and stages it in a working file.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (*source.Document, error)
}

// Converter turns one sheet of a workbook file into records.
type Converter interface {
	Convert(path, sheetName string) (*models.RecordSet, error)
}

// Publisher uploads a payload and returns its public URL.
type Publisher interface {
	Publish(ctx context.Context, payload []byte, target models.PublishTarget) (string, error)
}

// SheetConverter is the excelize-backed Converter.
type SheetConverter struct {
	Options parser.Options
}

// Convert implements Converter.
func (c SheetConverter) Convert(path, sheetName string) (*models.RecordSet, error) {
	return parser.ConvertSheet(path, sheetName, c.Options)
}

// s3Publisher defers S3 client construction to the publishing stage so that
// a credential failure is reported as a publish failure.
type s3Publisher struct {
	creds  publish.Credentials
	logger *slog.Logger
}

func (p s3Publisher) Publish(ctx context.Context, payload []byte, target models.PublishTarget) (string, error) {
	pub, err := publish.NewS3Publisher(p.creds, target, p.logger)
	if err != nil {
		return "", err
	}
	return pub.Publish(ctx, payload, target)
}

// Pipeline runs fetch, convert and publish once, in order.
type Pipeline struct {
	opts      Options
	fetcher   Fetcher
	converter Converter
	publisher Publisher
	logger    *slog.Logger
}

// New creates a Pipeline from its stages. publisher may be nil for dry runs.
func New(opts Options, fetcher Fetcher, converter Converter, publisher Publisher, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		opts:      opts,
		fetcher:   fetcher,
		converter: converter,
		publisher: publisher,
		logger:    logger,
	}
}

// NewFromConfig wires the default stages from a validated configuration.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fetcher, err := source.NewFetcher(source.Options{
		WorkFile: cfg.WorkFile,
		Timeout:  cfg.FetchTimeout,
	}, logger)
	if err != nil {
		return nil, &config.ConfigurationError{Fields: []string{"MIC_WORK_FILE"}, Err: err}
	}

	var publisher Publisher
	if !cfg.DryRun {
		publisher = s3Publisher{
			creds: publish.Credentials{
				AccessKeyID:     cfg.AccessKeyID,
				SecretAccessKey: cfg.SecretAccessKey,
				SessionToken:    cfg.SessionToken,
			},
			logger: logger,
		}
	}

	converter := SheetConverter{Options: parser.Options{Range: cfg.SheetRange}}
	return New(OptionsFromConfig(cfg), fetcher, converter, publisher, logger), nil
}

// Execute validates cfg, builds the pipeline and runs it. It always returns
// a well-formed result; configuration problems are reported before any
// stage runs.
func Execute(ctx context.Context, cfg *config.Config, logger *slog.Logger) models.PipelineResult {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return ConfigFailure(err, logger)
	}
	p, err := NewFromConfig(cfg, logger)
	if err != nil {
		return ConfigFailure(err, logger)
	}
	return p.Run(ctx)
}

// ConfigFailure converts a configuration error into a failed result.
func ConfigFailure(err error, logger *slog.Logger) models.PipelineResult {
	if logger == nil {
		logger = slog.Default()
	}
	serr := NewStageError(models.StageConfiguring, "", err)
	logger.Error("configuration invalid", "stage", serr.Stage, "error", err)
	return models.Failure(serr.Stage, serr.Error())
}

// Run executes the pipeline and reports the outcome. It never returns an
// error or panics on data and network faults; failures are folded into the
// result.
func (p *Pipeline) Run(ctx context.Context) (result models.PipelineResult) {
	logger := p.runLogger()
	stage := models.StageFetching
	defer func() {
		if r := recover(); r != nil {
			logger.Error("pipeline panicked", "stage", stage, "panic", r)
			serr := NewStageError(stage, "", fmt.Errorf("internal error: %v", r))
			result = models.Failure(serr.Stage, serr.Error())
		}
	}()

	location, records, err := p.run(ctx, logger, &stage)
	if err != nil {
		var serr *StageError
		if !errors.As(err, &serr) {
			serr = NewStageError(models.StageDone, "", err)
		}
		logger.Error("pipeline failed",
			"stage", serr.Stage,
			"target", serr.Target,
			"error", serr.Err,
		)
		return models.Failure(serr.Stage, serr.Error())
	}

	logger.Info("pipeline succeeded", "location", location, "records", records)
	return models.Success(location, records)
}

// RunE executes the pipeline and returns the published location and record
// count, or a *StageError for the first stage that failed. Later stages are
// not invoked after a failure.
func (p *Pipeline) RunE(ctx context.Context) (string, int, error) {
	var stage models.Stage
	return p.run(ctx, p.runLogger(), &stage)
}

// runLogger tags every log line of one run with a fresh run_id.
func (p *Pipeline) runLogger() *slog.Logger {
	return p.logger.With("run_id", uuid.NewString())
}

// run executes the stages in order, recording the current one in stage.
func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, stage *models.Stage) (string, int, error) {
	*stage = models.StageFetching
	logger.Debug("stage started", "stage", models.StageFetching, "source", p.opts.SourceLocation)
	doc, err := p.fetcher.Fetch(ctx, p.opts.SourceLocation)
	if err != nil {
		return "", 0, NewStageError(models.StageFetching, p.opts.SourceLocation, err)
	}

	*stage = models.StageConverting
	logger.Debug("stage started", "stage", models.StageConverting, "sheet", p.opts.SheetName)
	rs, err := p.converter.Convert(doc.Path, p.opts.SheetName)
	if err != nil {
		return "", 0, NewStageError(models.StageConverting, p.opts.SheetName, err)
	}
	payload, err := output.ToJSON(rs, p.opts.Pretty)
	if err != nil {
		return "", 0, NewStageError(models.StageConverting, p.opts.SheetName, fmt.Errorf("serialization failed: %w", err))
	}
	if p.opts.OutputPath != "" {
		if err := writeOutput(p.opts.OutputPath, payload); err != nil {
			return "", 0, NewStageError(models.StageConverting, p.opts.OutputPath, fmt.Errorf("failed to write output: %w", err))
		}
	}

	if p.opts.DryRun {
		location, err := fileURL(p.opts.OutputPath)
		if err != nil {
			return "", 0, NewStageError(models.StageConverting, p.opts.OutputPath, err)
		}
		logger.Info("dry run, skipping publish", "output", p.opts.OutputPath)
		return location, rs.Len(), nil
	}

	*stage = models.StagePublishing
	target := p.opts.Target
	logger.Debug("stage started", "stage", models.StagePublishing, "target", target.S3URI())
	if p.publisher == nil {
		return "", 0, NewStageError(models.StagePublishing, target.S3URI(), errors.New("no publisher configured"))
	}
	pctx := ctx
	if p.opts.PublishTimeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, p.opts.PublishTimeout)
		defer cancel()
	}
	location, err := p.publisher.Publish(pctx, payload, target)
	if err != nil {
		return "", 0, NewStageError(models.StagePublishing, target.S3URI(), err)
	}

	return location, rs.Len(), nil
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func fileURL(path string) (string, error) {
	if path == "" {
		return "", errors.New("dry run requires an output path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(abs), nil
}
