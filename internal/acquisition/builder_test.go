package acquisition

import (
	"errors"
	"testing"

	"bidsmeta/internal/catalog"
	"bidsmeta/internal/dataset"
	"bidsmeta/internal/metadata"
	"bidsmeta/internal/openminds"
	"bidsmeta/internal/vocab"
)

type fakeFile struct {
	path         string
	rec          metadata.Record
	entities     dataset.Entities
	associations []dataset.Association
}

func (f fakeFile) Path() string                        { return f.path }
func (f fakeFile) Metadata() (metadata.Record, error)  { return f.rec, nil }
func (f fakeFile) Entities() dataset.Entities          { return f.entities }
func (f fakeFile) Associations() []dataset.Association { return f.associations }

type refTable map[string]openminds.Ref

func (r refTable) FileRef(path string) (openminds.Ref, bool) {
	ref, ok := r[path]
	return ref, ok
}

type countingWarner struct{ count int }

func (w *countingWarner) Warn(string, string, string) { w.count++ }

func newTestBuilder(t *testing.T, refs RefResolver) (*Builder, *catalog.Collection, *countingWarner) {
	t.Helper()
	warner := &countingWarner{}
	mapper, err := vocab.NewMapper(nil, warner, nil)
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}
	sink := catalog.NewCollection()
	b, err := NewBuilder(Config{
		Sink:        sink,
		Normalizer:  metadata.NewNormalizer(nil, warner),
		Mapper:      mapper,
		Refs:        refs,
		DatasetName: "ds001",
	})
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	return b, sink, warner
}

func testScanner() *openminds.MRIScanner {
	return &openminds.MRIScanner{ID: "_:scanner", Name: "Prisma"}
}

func TestUsageFields(t *testing.T) {
	refs := refTable{
		"task-rest_bold.json":                     {ID: "_:sidecar"},
		"sub-01/func/sub-01_task-rest_events.tsv": {ID: "_:events"},
	}
	b, sink, warner := newTestBuilder(t, refs)
	file := fakeFile{
		path: "sub-01/func/sub-01_task-rest_bold.nii.gz",
		rec: metadata.Record{
			"MRAcquisitionType":              "2D",
			"PulseSequenceType":              "EPI",
			"MTState":                        "TRUE",
			"NonlinearGradientCorrection":    false,
			"DwellTime":                      0.0000026,
			"EchoTime":                       []any{0.015, 0.035},
			"FlipAngle":                      "90",
			"InversionTime":                  1.1,
			"NumberOfVolumesDiscardedByUser": 4,
			"ParallelAcquisitionTechnique":   " GRAPPA ",
		},
		associations: []dataset.Association{
			{Path: "task-rest_bold.json", Kind: dataset.AssociationSidecar},
			{Path: "sub-01/func/sub-01_task-rest_events.tsv", Kind: dataset.AssociationEvents},
			{Path: "unregistered.tsv", Kind: dataset.AssociationPhysio},
		},
	}
	usage, err := b.Usage(file, testScanner())
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if usage.LookupLabel != "sub-01_task-rest_bold.nii.gz in ds001" {
		t.Fatalf("unexpected label %q", usage.LookupLabel)
	}
	if usage.Device.ID != "_:scanner" {
		t.Fatalf("unexpected device %+v", usage.Device)
	}
	if usage.AcquisitionType == nil || usage.AcquisitionType.Name != "2D acquisition" {
		t.Fatalf("unexpected acquisition type %+v", usage.AcquisitionType)
	}
	if usage.PulseSequenceType == nil || usage.PulseSequenceType.Name != "echo planar pulse sequence" {
		t.Fatalf("unexpected pulse sequence %+v", usage.PulseSequenceType)
	}
	if usage.MTState == nil || !*usage.MTState {
		t.Fatalf("unexpected MT state %v", usage.MTState)
	}
	if usage.NonlinearGradientCorrection == nil || *usage.NonlinearGradientCorrection {
		t.Fatalf("unexpected gradient correction %v", usage.NonlinearGradientCorrection)
	}
	if usage.DwellTime == nil || usage.DwellTime.Unit.Name != "second" {
		t.Fatalf("unexpected dwell time %+v", usage.DwellTime)
	}
	if usage.FlipAngle == nil || usage.FlipAngle.Value != 90 || usage.FlipAngle.Unit.Name != "degree" {
		t.Fatalf("unexpected flip angle %+v", usage.FlipAngle)
	}
	if usage.InversionTime == nil || usage.InversionTime.Value != 1.1 {
		t.Fatalf("unexpected inversion time %+v", usage.InversionTime)
	}
	if usage.EchoTime == nil || !usage.EchoTime.IsSeries() || len(usage.EchoTime.Series) != 2 {
		t.Fatalf("unexpected echo time %+v", usage.EchoTime)
	}
	if usage.NumberOfVolumesDiscardedByUser != 4 {
		t.Fatalf("unexpected discarded volumes %d", usage.NumberOfVolumesDiscardedByUser)
	}
	if usage.ParallelAcquisitionTechnique != "GRAPPA" {
		t.Fatalf("unexpected parallel technique %q", usage.ParallelAcquisitionTechnique)
	}
	if len(usage.MetadataLocations) != 2 || usage.MetadataLocations[0].ID != "_:sidecar" || usage.MetadataLocations[1].ID != "_:events" {
		t.Fatalf("unexpected metadata locations %+v", usage.MetadataLocations)
	}
	if warner.count != 0 {
		t.Fatalf("expected no warnings, got %d", warner.count)
	}
	if sink.Len() != 0 {
		t.Fatalf("Usage must not emit, sink holds %d", sink.Len())
	}
}

func TestUsageEmptyRecord(t *testing.T) {
	b, _, warner := newTestBuilder(t, nil)
	usage, err := b.Usage(fakeFile{path: "sub-01/anat/sub-01_T1w.nii", rec: metadata.Record{}}, testScanner())
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if usage.NumberOfVolumesDiscardedByUser != 0 {
		t.Fatalf("absent discarded volumes should be 0, got %d", usage.NumberOfVolumesDiscardedByUser)
	}
	if usage.AcquisitionType != nil || usage.PulseSequenceType != nil || usage.EchoTime != nil ||
		usage.MTState != nil || usage.DwellTime != nil || usage.MetadataLocations != nil {
		t.Fatalf("expected empty optional fields, got %+v", usage)
	}
	if warner.count != 0 {
		t.Fatalf("expected no warnings, got %d", warner.count)
	}
}

func TestUsageNeverDeduplicated(t *testing.T) {
	b, sink, _ := newTestBuilder(t, nil)
	file := fakeFile{path: "a.nii", rec: metadata.Record{"FlipAngle": 90}}
	first, err := b.Usage(file, testScanner())
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	second, err := b.Usage(file, testScanner())
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if err := b.Emit(first, second); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if first.ID == second.ID || sink.Len() != 2 {
		t.Fatalf("expected two distinct usages, got %d", sink.Len())
	}
}

func TestUsageWarnings(t *testing.T) {
	b, _, warner := newTestBuilder(t, nil)
	usage, err := b.Usage(fakeFile{path: "a.nii", rec: metadata.Record{
		"MTState":           "yes",
		"PulseSequenceType": "Quantum",
	}}, testScanner())
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if usage.MTState != nil || usage.PulseSequenceType != nil {
		t.Fatalf("expected unrecognized values dropped, got %+v", usage)
	}
	if warner.count != 2 {
		t.Fatalf("expected 2 warnings, got %d", warner.count)
	}
}

func TestUsageMalformedFails(t *testing.T) {
	tests := []metadata.Record{
		{"NumberOfVolumesDiscardedByUser": "four"},
		{"NumberOfVolumesDiscardedByUser": 2.5},
		{"FlipAngle": "steep"},
		{"EchoTime": []any{0.01, "x"}},
	}
	for _, rec := range tests {
		b, sink, _ := newTestBuilder(t, nil)
		_, err := b.Usage(fakeFile{path: "a.nii", rec: rec}, testScanner())
		if !errors.Is(err, metadata.ErrMalformedValue) {
			t.Fatalf("%v: expected malformed value, got %v", rec, err)
		}
		if sink.Len() != 0 {
			t.Fatalf("%v: nothing should be emitted", rec)
		}
	}
}

func TestFunctional(t *testing.T) {
	refs := refTable{
		"sub-01/func/sub-01_task-rest_run-1_bold.nii.gz": {ID: "_:image"},
		"sub-01/func/sub-01_task-rest_run-1_events.tsv":  {ID: "_:events"},
		"sub-01/func/sub-01_task-rest_run-1_bold.json":   {ID: "_:sidecar"},
	}
	b, sink, _ := newTestBuilder(t, refs)
	file := fakeFile{
		path: "sub-01/func/sub-01_task-rest_run-1_bold.nii.gz",
		rec: metadata.Record{
			"AcquisitionDuration": 1.8,
			"DelayAfterTrigger":   "0.2",
			"DelayTime":           0.2,
			"VolumeTiming":        []any{0.0, 2.0, 4.0},
		},
		entities: dataset.Entities{Subject: "01", Task: "rest", Run: "1", Datatype: "func", Suffix: "bold"},
		associations: []dataset.Association{
			{Path: "sub-01/func/sub-01_task-rest_run-1_bold.json", Kind: dataset.AssociationSidecar},
			{Path: "sub-01/func/sub-01_task-rest_run-1_events.tsv", Kind: dataset.AssociationEvents},
		},
	}
	usage := &openminds.ScannerUsage{ID: "_:usage"}
	acq, err := b.Functional(file, usage)
	if err != nil {
		t.Fatalf("Functional: %v", err)
	}
	if acq.Usage.ID != "_:usage" || acq.Subject != "01" || acq.Task != "rest" || acq.Run != "1" {
		t.Fatalf("unexpected acquisition %+v", acq)
	}
	if acq.LookupLabel != "sub-01_task-rest_run-1_bold in ds001" {
		t.Fatalf("unexpected label %q", acq.LookupLabel)
	}
	if acq.AcquisitionDuration == nil || acq.AcquisitionDuration.Value != 1.8 {
		t.Fatalf("unexpected duration %+v", acq.AcquisitionDuration)
	}
	if acq.DelayAfterTrigger == nil || acq.DelayAfterTrigger.Value != 0.2 {
		t.Fatalf("unexpected delay after trigger %+v", acq.DelayAfterTrigger)
	}
	if len(acq.VolumeTiming) != 3 || acq.VolumeTiming[2].Value != 4 {
		t.Fatalf("unexpected volume timing %+v", acq.VolumeTiming)
	}
	if acq.RepetitionTime != nil {
		t.Fatalf("expected no repetition time, got %+v", acq.RepetitionTime)
	}
	if len(acq.Files) != 2 || acq.Files[0].ID != "_:image" || acq.Files[1].ID != "_:events" {
		t.Fatalf("unexpected files %+v", acq.Files)
	}
	if sink.Len() != 0 {
		t.Fatalf("Functional must not emit, sink holds %d", sink.Len())
	}
}

func TestEmitKeepsOrderAndStopsAtFailure(t *testing.T) {
	b, sink, _ := newTestBuilder(t, nil)
	usage := &openminds.ScannerUsage{ID: "_:usage"}
	acq := &openminds.FunctionalAcquisition{ID: "_:acq"}
	if err := b.Emit(usage, acq); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	got := sink.Entities()
	if len(got) != 2 || got[0].EntityID() != "_:usage" || got[1].EntityID() != "_:acq" {
		t.Fatalf("unexpected emitted entities %v", got)
	}

	later := &openminds.FunctionalAcquisition{ID: "_:later"}
	err := b.Emit(usage, later)
	if !errors.Is(err, catalog.ErrDuplicateEntity) {
		t.Fatalf("expected duplicate entity error, got %v", err)
	}
	if _, ok := sink.Get("_:later"); ok {
		t.Fatal("entities after a failure must not be emitted")
	}
}

func TestFunctionalTaskNameFallback(t *testing.T) {
	b, _, _ := newTestBuilder(t, nil)
	acq, err := b.Functional(fakeFile{path: "x_bold.nii", rec: metadata.Record{"TaskName": "motor"}}, &openminds.ScannerUsage{ID: "_:u"})
	if err != nil {
		t.Fatalf("Functional: %v", err)
	}
	if acq.Task != "motor" {
		t.Fatalf("expected task from TaskName, got %q", acq.Task)
	}
}

func TestNewBuilderRequiresSinkAndMapper(t *testing.T) {
	if _, err := NewBuilder(Config{}); err == nil {
		t.Fatal("expected error without sink")
	}
	if _, err := NewBuilder(Config{Sink: catalog.NewCollection()}); err == nil {
		t.Fatal("expected error without mapper")
	}
}
