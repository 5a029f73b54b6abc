package acquisition

import (
	"fmt"
	"log/slog"
	"path"

	"bidsmeta/internal/catalog"
	"bidsmeta/internal/dataset"
	"bidsmeta/internal/logging"
	"bidsmeta/internal/metadata"
	"bidsmeta/internal/openminds"
	"bidsmeta/internal/vocab"
)

const (
	unitSecond = "second"
	unitDegree = "degree"
)

// RefResolver maps dataset-relative paths to registered file entities.
type RefResolver interface {
	FileRef(path string) (openminds.Ref, bool)
}

// Builder creates usage and acquisition entities for one dataset.
type Builder struct {
	sink        catalog.Sink
	normalizer  *metadata.Normalizer
	mapper      *vocab.Mapper
	refs        RefResolver
	datasetName string
	logger      *slog.Logger
}

// Config wires a Builder.
type Config struct {
	Sink        catalog.Sink
	Normalizer  *metadata.Normalizer
	Mapper      *vocab.Mapper
	Refs        RefResolver
	DatasetName string
	Logger      *slog.Logger
}

// NewBuilder validates cfg and returns a Builder.
func NewBuilder(cfg Config) (*Builder, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("acquisition builder: sink is required")
	}
	if cfg.Mapper == nil {
		return nil, fmt.Errorf("acquisition builder: vocabulary mapper is required")
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = metadata.NewNormalizer(nil, nil)
	}
	return &Builder{
		sink:        cfg.Sink,
		normalizer:  cfg.Normalizer,
		mapper:      cfg.Mapper,
		refs:        cfg.Refs,
		datasetName: cfg.DatasetName,
		logger:      logging.NewComponentLogger(cfg.Logger, "acquisition"),
	}, nil
}

// UsageLabel is the lookup label of the usage built for rel.
func UsageLabel(rel, datasetName string) string {
	return fmt.Sprintf("%s in %s", path.Base(rel), datasetName)
}

// Usage builds the scanner usage of file on scanner. A malformed mandatory
// value fails the whole usage. Nothing is emitted; see Emit.
func (b *Builder) Usage(file dataset.File, scanner *openminds.MRIScanner) (*openminds.ScannerUsage, error) {
	if scanner == nil {
		return nil, fmt.Errorf("usage for %s: no scanner", file.Path())
	}
	rec, err := file.Metadata()
	if err != nil {
		return nil, err
	}

	usage := &openminds.ScannerUsage{
		ID:          openminds.NewID(),
		LookupLabel: UsageLabel(file.Path(), b.datasetName),
		Device:      openminds.RefTo(scanner),
	}
	x := extractor{rec: rec, n: b.normalizer}

	usage.AcquisitionType = x.term(b.mapper, metadata.PropAcquisitionType, vocab.AcquisitionType)
	usage.PulseSequenceType = x.term(b.mapper, metadata.PropPulseSequenceType, vocab.PulseSequenceType)
	usage.MTState = x.boolean(metadata.PropMTState)
	usage.NonlinearGradientCorrection = x.boolean(metadata.PropNonlinearGradientCorrection)
	usage.DwellTime = x.quantity(metadata.PropDwellTime, unitSecond)
	usage.FlipAngle = x.quantity(metadata.PropFlipAngle, unitDegree)
	usage.InversionTime = x.quantity(metadata.PropInversionTime, unitSecond)
	usage.ParallelAcquisitionTechnique = x.text(metadata.PropParallelAcquisitionTechnique)
	if discarded, ok := x.integer(metadata.PropNumberOfVolumesDiscardedByUser); ok {
		usage.NumberOfVolumesDiscardedByUser = discarded
	}
	if x.err == nil {
		usage.EchoTime, x.err = b.normalizer.EchoTimes(rec)
	}
	if x.err != nil {
		return nil, fmt.Errorf("usage for %s: %w", file.Path(), x.err)
	}

	for _, assoc := range file.Associations() {
		if ref, ok := b.fileRef(assoc.Path); ok {
			usage.MetadataLocations = append(usage.MetadataLocations, ref)
		}
	}
	return usage, nil
}

// Functional builds the functional acquisition summary of file, pointing at
// usage. Nothing is emitted; see Emit.
func (b *Builder) Functional(file dataset.File, usage *openminds.ScannerUsage) (*openminds.FunctionalAcquisition, error) {
	if usage == nil {
		return nil, fmt.Errorf("functional acquisition for %s: no usage", file.Path())
	}
	rec, err := file.Metadata()
	if err != nil {
		return nil, err
	}
	entities := file.Entities()
	x := extractor{rec: rec, n: b.normalizer}

	acq := &openminds.FunctionalAcquisition{
		ID:                  openminds.NewID(),
		LookupLabel:         fmt.Sprintf("%s in %s", dataset.Stem(file.Path()), b.datasetName),
		Usage:               openminds.RefTo(usage),
		Subject:             entities.Subject,
		Session:             entities.Session,
		Task:                entities.Task,
		Run:                 entities.Run,
		AcquisitionDuration: x.quantity(metadata.PropAcquisitionDuration, unitSecond),
		DelayAfterTrigger:   x.quantity(metadata.PropDelayAfterTrigger, unitSecond),
		DelayTime:           x.quantity(metadata.PropDelayTime, unitSecond),
		RepetitionTime:      x.quantity(metadata.PropRepetitionTime, unitSecond),
		VolumeTiming:        x.series(metadata.PropVolumeTiming, unitSecond),
	}
	if acq.Task == "" {
		acq.Task = x.text(metadata.PropTaskName)
	}
	if x.err != nil {
		return nil, fmt.Errorf("functional acquisition for %s: %w", file.Path(), x.err)
	}

	if ref, ok := b.fileRef(file.Path()); ok {
		acq.Files = append(acq.Files, ref)
	}
	for _, assoc := range file.Associations() {
		if assoc.Kind == dataset.AssociationSidecar {
			continue
		}
		if ref, ok := b.fileRef(assoc.Path); ok {
			acq.Files = append(acq.Files, ref)
		}
	}
	return acq, nil
}

// Emit adds the entities built for one file to the sink, in order, and
// stops at the first failure.
func (b *Builder) Emit(entities ...openminds.Entity) error {
	for _, entity := range entities {
		if err := b.sink.Add(entity); err != nil {
			return fmt.Errorf("emit %s %s: %w", openminds.ShortType(entity.EntityType()), entity.EntityID(), err)
		}
	}
	return nil
}

func (b *Builder) fileRef(rel string) (openminds.Ref, bool) {
	if b.refs == nil {
		return openminds.Ref{}, false
	}
	ref, ok := b.refs.FileRef(rel)
	if !ok {
		b.logger.Debug("no file entity for associated path", logging.String("file", rel))
	}
	return ref, ok
}
