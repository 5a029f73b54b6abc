package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"bidsmeta/internal/acquisition"
	"bidsmeta/internal/catalog"
	"bidsmeta/internal/config"
	"bidsmeta/internal/dataset"
	"bidsmeta/internal/logging"
	"bidsmeta/internal/media/nifti"
	"bidsmeta/internal/metadata"
	"bidsmeta/internal/openminds"
	"bidsmeta/internal/reconcile"
	"bidsmeta/internal/runctx"
	"bidsmeta/internal/terms"
	"bidsmeta/internal/units"
	"bidsmeta/internal/vocab"
)

const datatypeFunctional = "func"

// Accessor exposes the files of one dataset.
type Accessor interface {
	Enumerate(exts []string) ([]dataset.File, error)
	DisplayName() string
	FileRef(path string) (openminds.Ref, bool)
}

// Options configures a Converter.
type Options struct {
	Extensions             []string
	Strict                 bool
	LegacyDepartmentNaming bool
	Overrides              vocab.Overrides
	Terms                  *terms.Registry
	Units                  *units.Registry
	Logger                 *slog.Logger
}

// OptionsFromConfig derives converter options from cfg, loading vocabulary
// overrides from disk when configured.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) (Options, error) {
	if cfg == nil {
		return Options{}, errors.New("convert: config is required")
	}
	overrides, err := vocab.LoadOverrides(cfg.Vocabulary.OverridesPath)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Extensions:             append([]string(nil), cfg.Conversion.Extensions...),
		Strict:                 cfg.Conversion.Strict,
		LegacyDepartmentNaming: cfg.Conversion.LegacyDepartmentNaming,
		Overrides:              overrides,
		Logger:                 logger,
	}, nil
}

// Converter turns dataset files into openMINDS entities.
type Converter struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Converter. Empty extensions default to plain and
// compressed NIfTI.
func New(opts Options) *Converter {
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{nifti.ExtPlain, nifti.ExtCompressed}
	}
	if opts.Terms == nil {
		opts.Terms = terms.Default()
	}
	if opts.Units == nil {
		opts.Units = units.Default()
	}
	return &Converter{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "convert"),
	}
}

// run holds the state of one Run call.
type run struct {
	ctx      context.Context
	logger   *slog.Logger
	warner   *runWarner
	registry *reconcile.Registry
	builder  *acquisition.Builder
	dataset  string
	report   *Report
}

// Run converts every matching file of accessor into sink. The run identifier
// comes from ctx when present. The returned report is filled in even when
// Run fails.
func (c *Converter) Run(ctx context.Context, accessor Accessor, sink catalog.Sink) (Report, error) {
	started := time.Now()
	runID, ok := runctx.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = runctx.WithRunID(ctx, runID)
	}
	report := Report{RunID: runID, StartedAt: started}
	if accessor == nil || sink == nil {
		return report, errors.New("convert: accessor and sink are required")
	}
	report.Dataset = accessor.DisplayName()
	ctx = runctx.WithDataset(ctx, report.Dataset)
	logger := logging.WithContext(ctx, c.logger)

	r, err := c.newRun(ctx, logger, accessor, &report, sink)
	if err != nil {
		return report, err
	}
	err = c.convertAll(r, accessor)
	report.Scanners = r.registry.Len()
	report.Warnings = r.warner.Count()
	report.Duration = time.Since(started)
	if err != nil {
		return report, err
	}

	logger.Info("conversion finished",
		logging.Int("files", report.FilesSeen),
		logging.Int("scanners", report.Scanners),
		logging.Int("usages", report.Usages),
		logging.Int("acquisitions", report.Acquisitions),
		logging.Int("warnings", report.Warnings),
		logging.Int("skipped", len(report.Skipped)),
		logging.Duration("elapsed", report.Duration),
	)
	return report, nil
}

func (c *Converter) convertAll(r *run, accessor Accessor) error {
	files, err := accessor.Enumerate(c.opts.Extensions)
	if err != nil {
		return fmt.Errorf("enumerate %s: %w", r.dataset, err)
	}
	r.logger.Info("conversion started",
		logging.Int("files", len(files)),
		logging.Bool("strict", c.opts.Strict),
	)

	for _, file := range files {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		r.report.FilesSeen++
		if err := r.convertFile(file); err != nil {
			dropped := r.warner.discard()
			if c.opts.Strict || !skippable(err) {
				logging.ErrorWithContext(r.fileLogger(file), "conversion aborted", "run_aborted",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "fix the file or rerun without strict mode"),
				)
				return err
			}
			r.skip(file, err, dropped)
		}
	}
	return nil
}

func (c *Converter) newRun(ctx context.Context, logger *slog.Logger, accessor Accessor, report *Report, sink catalog.Sink) (*run, error) {
	warner := newRunWarner(logger)
	normalizer := metadata.NewNormalizer(c.opts.Units, warner)
	mapper, err := vocab.NewMapper(c.opts.Terms, warner, c.opts.Overrides)
	if err != nil {
		return nil, fmt.Errorf("build vocabulary mapper: %w", err)
	}
	out := &outputSink{sink: sink}
	base := logging.WithContext(ctx, c.opts.Logger)
	builder, err := acquisition.NewBuilder(acquisition.Config{
		Sink:        out,
		Normalizer:  normalizer,
		Mapper:      mapper,
		Refs:        accessor,
		DatasetName: accessor.DisplayName(),
		Logger:      base,
	})
	if err != nil {
		return nil, err
	}
	registry := reconcile.NewRegistry(out, normalizer, base, reconcile.Options{
		LegacyDepartmentNaming: c.opts.LegacyDepartmentNaming,
	})
	return &run{
		ctx:      ctx,
		logger:   logger,
		warner:   warner,
		registry: registry,
		builder:  builder,
		dataset:  accessor.DisplayName(),
		report:   report,
	}, nil
}

// convertFile reconciles the scanner of file and, for functional runs,
// emits its usage and acquisition summary. Both are built before either is
// emitted, so a file that fails contributes neither.
func (r *run) convertFile(file dataset.File) error {
	rel := file.Path()
	r.warner.begin(r.fileLogger(file))

	rec, err := file.Metadata()
	if err != nil {
		return wrap(ErrMetadata, StageMetadata, rel, err)
	}

	scanner, err := r.registry.Reconcile(rec, r.dataset)
	if err != nil {
		return wrap(classify(err), StageReconcile, rel, err)
	}

	datatype := file.Entities().Datatype
	if datatype != datatypeFunctional {
		r.warner.commit()
		r.fileLogger(file).Debug("scanner reconciled",
			logging.String("datatype", datatype),
			logging.String("scanner", scanner.Name),
		)
		return nil
	}

	usage, err := r.builder.Usage(file, scanner)
	if err != nil {
		return wrap(classify(err), StageUsage, rel, err)
	}
	acq, err := r.builder.Functional(file, usage)
	if err != nil {
		return wrap(classify(err), StageAcquisition, rel, err)
	}
	if err := r.builder.Emit(usage, acq); err != nil {
		return wrap(classify(err), StageEmit, rel, err)
	}
	r.report.Usages++
	r.report.Acquisitions++
	r.warner.commit()
	return nil
}

func (r *run) fileLogger(file dataset.File) *slog.Logger {
	return logging.WithContext(runctx.WithFile(r.ctx, file.Path()), r.logger)
}

func (r *run) skip(file dataset.File, err error, dropped int) {
	entry := SkippedFile{Path: file.Path(), Reason: err.Error()}
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		entry.Stage = fileErr.Stage
	}
	r.report.Skipped = append(r.report.Skipped, entry)
	logging.WarnWithContext(r.fileLogger(file), "file skipped", "file_skipped",
		logging.String(logging.FieldStage, entry.Stage),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "fix the sidecar value named in the error"),
		logging.Int("discarded_warnings", dropped),
		logging.String(logging.FieldImpact, "file contributes no usage to the output"),
	)
}

// outputSink marks every sink failure with ErrOutput.
type outputSink struct {
	sink catalog.Sink
}

func (s *outputSink) Add(entity openminds.Entity) error {
	if err := s.sink.Add(entity); err != nil {
		return fmt.Errorf("%w: %w", ErrOutput, err)
	}
	return nil
}
