package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"bidsmeta/internal/catalog"
	"bidsmeta/internal/openminds"
	"bidsmeta/internal/testsupport"
)

func TestParseEntities(t *testing.T) {
	tests := []struct {
		rel  string
		want Entities
	}{
		{
			rel: "sub-01/ses-pre/func/sub-01_ses-pre_task-rest_acq-fast_run-2_echo-1_bold.nii.gz",
			want: Entities{
				Subject: "01", Session: "pre", Task: "rest", Acquisition: "fast",
				Run: "2", Echo: "1", Datatype: "func", Suffix: "bold", Extension: ".nii.gz",
			},
		},
		{
			rel:  "sub-02/anat/sub-02_T1w.nii",
			want: Entities{Subject: "02", Datatype: "anat", Suffix: "T1w", Extension: ".nii"},
		},
		{
			rel:  "task-rest_bold.json",
			want: Entities{Task: "rest", Suffix: "bold", Extension: ".json"},
		},
		{
			rel: "sub-03/fmap/sub-03_dir-AP_epi.nii.gz",
			want: Entities{
				Subject: "03", Datatype: "fmap", Suffix: "epi", Extension: ".nii.gz",
				Other: map[string]string{"dir": "AP"},
			},
		},
	}
	for _, tc := range tests {
		got := ParseEntities(tc.rel)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseEntities(%q) = %+v, want %+v", tc.rel, got, tc.want)
		}
	}
}

func TestOpenReadsNameAndSkipsDirectories(t *testing.T) {
	root := testsupport.NewDataset(t, "Balloon Analog Risk Task")
	testsupport.WriteNIfTI(t, filepath.Join(root, "sub-01", "func", "sub-01_task-rest_bold.nii.gz"), 348)
	testsupport.WriteNIfTI(t, filepath.Join(root, "derivatives", "fmriprep", "sub-01", "func", "sub-01_task-rest_bold.nii.gz"), 348)
	testsupport.WriteNIfTI(t, filepath.Join(root, "sourcedata", "sub-01_T1w.nii"), 348)
	testsupport.WriteNIfTI(t, filepath.Join(root, ".git", "annex", "x.nii"), 348)
	testsupport.WriteNIfTI(t, filepath.Join(root, "sub-01", "anat", "sub-01_T1w.nii"), 348)

	ds, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ds.DisplayName() != "Balloon Analog Risk Task" {
		t.Fatalf("unexpected name %q", ds.DisplayName())
	}
	files, err := ds.Enumerate([]string{".nii", ".nii.gz"})
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path())
	}
	want := []string{
		"sub-01/anat/sub-01_T1w.nii",
		"sub-01/func/sub-01_task-rest_bold.nii.gz",
	}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("Enumerate = %v, want %v", paths, want)
	}
}

func TestOpenNameFallsBackToDirectory(t *testing.T) {
	root := testsupport.NewDataset(t, "")
	ds, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if ds.DisplayName() != "ds000001" {
		t.Fatalf("unexpected fallback name %q", ds.DisplayName())
	}

	bare := filepath.Join(t.TempDir(), "bare")
	if err := os.MkdirAll(bare, 0o755); err != nil {
		t.Fatal(err)
	}
	ds, err = Open(bare)
	if err != nil {
		t.Fatalf("Open without description: %v", err)
	}
	if ds.DisplayName() != "bare" {
		t.Fatalf("unexpected fallback name %q", ds.DisplayName())
	}
}

func TestOpenRejectsMissingRoot(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrNotDataset) {
		t.Fatalf("expected ErrNotDataset, got %v", err)
	}
}

func TestMetadataInheritanceDeeperWins(t *testing.T) {
	root := testsupport.NewDataset(t, "ds")
	testsupport.WriteJSON(t, filepath.Join(root, "task-rest_bold.json"), map[string]any{
		"RepetitionTime": 2.0,
		"Manufacturer":   "Siemens",
		"TaskName":       "rest",
	})
	testsupport.WriteJSON(t, filepath.Join(root, "sub-01", "sub-01_task-rest_bold.json"), map[string]any{
		"RepetitionTime": 1.5,
	})
	testsupport.WriteJSON(t, filepath.Join(root, "sub-01", "func", "sub-01_task-rest_bold.json"), map[string]any{
		"EchoTime": 0.03,
	})
	// A sidecar for a different task must not apply.
	testsupport.WriteJSON(t, filepath.Join(root, "task-motor_bold.json"), map[string]any{
		"Manufacturer": "GE",
	})
	testsupport.WriteNIfTI(t, filepath.Join(root, "sub-01", "func", "sub-01_task-rest_bold.nii.gz"), 348)

	ds, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	files, err := ds.Enumerate([]string{".nii.gz"})
	if err != nil || len(files) != 1 {
		t.Fatalf("Enumerate: %v (%d files)", err, len(files))
	}
	rec, err := files[0].Metadata()
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if rec["RepetitionTime"] != 1.5 || rec["Manufacturer"] != "Siemens" || rec["EchoTime"] != 0.03 {
		t.Fatalf("unexpected merged metadata %v", rec)
	}

	var sidecars []string
	for _, a := range files[0].Associations() {
		if a.Kind == AssociationSidecar {
			sidecars = append(sidecars, a.Path)
		}
	}
	want := []string{
		"task-rest_bold.json",
		"sub-01/sub-01_task-rest_bold.json",
		"sub-01/func/sub-01_task-rest_bold.json",
	}
	if !reflect.DeepEqual(sidecars, want) {
		t.Fatalf("sidecars = %v, want %v", sidecars, want)
	}
}

func TestMalformedSidecarIsAnError(t *testing.T) {
	root := testsupport.NewDataset(t, "ds")
	testsupport.WriteBytes(t, filepath.Join(root, "sub-01", "anat", "sub-01_T1w.json"), []byte("{not json"))
	testsupport.WriteNIfTI(t, filepath.Join(root, "sub-01", "anat", "sub-01_T1w.nii"), 348)

	ds, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	files, _ := ds.Enumerate([]string{".nii"})
	if _, err := files[0].Metadata(); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAssociationsIncludeCompanions(t *testing.T) {
	root := testsupport.NewDataset(t, "ds")
	funcDir := filepath.Join(root, "sub-01", "func")
	testsupport.WriteNIfTI(t, filepath.Join(funcDir, "sub-01_task-rest_bold.nii.gz"), 348)
	testsupport.WriteJSON(t, filepath.Join(funcDir, "sub-01_task-rest_bold.json"), map[string]any{})
	testsupport.WriteBytes(t, filepath.Join(funcDir, "sub-01_task-rest_events.tsv"), []byte("onset\tduration\n"))
	testsupport.WriteBytes(t, filepath.Join(funcDir, "sub-01_task-rest_physio.tsv.gz"), []byte{0x1f, 0x8b})
	testsupport.WriteBytes(t, filepath.Join(funcDir, "sub-01_task-motor_events.tsv"), []byte("onset\n"))

	ds, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	files, _ := ds.Enumerate([]string{".nii.gz"})
	got := files[0].Associations()
	want := []Association{
		{Path: "sub-01/func/sub-01_task-rest_bold.json", Kind: AssociationSidecar},
		{Path: "sub-01/func/sub-01_task-rest_events.tsv", Kind: AssociationEvents},
		{Path: "sub-01/func/sub-01_task-rest_physio.tsv.gz", Kind: AssociationPhysio},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Associations = %+v, want %+v", got, want)
	}
}

func TestAncestorDirs(t *testing.T) {
	cases := []struct {
		dir  string
		want []string
	}{
		{".", []string{"."}},
		{"sub-01", []string{".", "sub-01"}},
		{"sub-01/ses-1/func", []string{".", "sub-01", "sub-01/ses-1", "sub-01/ses-1/func"}},
	}
	for _, tc := range cases {
		if got := ancestorDirs(tc.dir); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ancestorDirs(%q) = %v, want %v", tc.dir, got, tc.want)
		}
	}
}

func TestSidecarsComeOnlyFromAncestorDirectories(t *testing.T) {
	root := testsupport.NewDataset(t, "ds")
	testsupport.WriteJSON(t, filepath.Join(root, "sub-1", "task-rest_bold.json"), map[string]any{"Manufacturer": "Siemens"})
	testsupport.WriteJSON(t, filepath.Join(root, "sub-10", "func", "task-rest_bold.json"), map[string]any{"Manufacturer": "GE"})
	testsupport.WriteJSON(t, filepath.Join(root, "sub-10", "anat", "task-rest_bold.json"), map[string]any{"Manufacturer": "Philips"})
	testsupport.WriteNIfTI(t, filepath.Join(root, "sub-10", "func", "sub-10_task-rest_bold.nii.gz"), 348)
	testsupport.WriteBytes(t, filepath.Join(root, "sub-10", "anat", "sub-10_task-rest_events.tsv"), []byte("onset\n"))

	ds, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	files, _ := ds.Enumerate([]string{".nii.gz"})
	if len(files) != 1 {
		t.Fatalf("expected one file, got %d", len(files))
	}
	rec, err := files[0].Metadata()
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if rec["Manufacturer"] != "GE" {
		t.Fatalf("Manufacturer = %v, want the sidecar beside the file", rec["Manufacturer"])
	}

	first := files[0].Associations()
	want := []Association{{Path: "sub-10/func/task-rest_bold.json", Kind: AssociationSidecar}}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("Associations = %+v, want %+v", first, want)
	}
	if second := files[0].Associations(); &second[0] != &first[0] {
		t.Fatal("expected associations to be computed once per file")
	}
}

func TestRegisterFiles(t *testing.T) {
	root := testsupport.NewDataset(t, "ds")
	testsupport.WriteNIfTI(t, filepath.Join(root, "sub-01", "anat", "sub-01_T1w.nii.gz"), 540)
	testsupport.WriteNIfTI(t, filepath.Join(root, "sub-01", "anat", "sub-01_T2w.nii"), 17)
	testsupport.WriteBytes(t, filepath.Join(root, "README"), []byte("hello world"))

	ds, err := Open(root, WithHashing(true))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sink := catalog.NewCollection()
	if err := ds.RegisterFiles(sink); err != nil {
		t.Fatalf("RegisterFiles: %v", err)
	}
	// README, dataset_description.json and the two images.
	if sink.Len() != 4 {
		t.Fatalf("expected 4 file entities, got %d", sink.Len())
	}

	byName := map[string]*openminds.File{}
	for _, e := range sink.Entities() {
		f := e.(*openminds.File)
		byName[f.Name] = f
	}
	readme := byName["README"]
	if readme.Hash == nil || readme.Hash.Algorithm != "MD5" || readme.Hash.Digest != "5eb63bbbe01eeed093cb22bb8f5acdc3" {
		t.Fatalf("unexpected README hash %+v", readme.Hash)
	}
	if readme.StorageSize == nil || readme.StorageSize.Value != 11 || readme.StorageSize.Unit.Name != "byte" {
		t.Fatalf("unexpected README size %+v", readme.StorageSize)
	}
	if readme.ContentType != nil {
		t.Fatalf("README should have no content type, got %+v", readme.ContentType)
	}
	if ct := byName["sub-01_T1w.nii.gz"].ContentType; ct == nil || ct.Name != "application/vnd.nifti.2" {
		t.Fatalf("unexpected T1w content type %+v", ct)
	}
	if ct := byName["sub-01_T2w.nii"].ContentType; ct != nil {
		t.Fatalf("undetermined image should have no content type, got %+v", ct)
	}
	if ct := byName["dataset_description.json"].ContentType; ct == nil || ct.Name != "application/json" {
		t.Fatalf("unexpected description content type %+v", ct)
	}

	ref, ok := ds.FileRef("sub-01/anat/sub-01_T1w.nii.gz")
	if !ok || ref.ID != byName["sub-01_T1w.nii.gz"].ID {
		t.Fatalf("FileRef mismatch: %+v %v", ref, ok)
	}
	if _, ok := ds.FileRef("missing.nii"); ok {
		t.Fatal("unexpected ref for unknown path")
	}
}

func TestRegisterFilesWithoutHashing(t *testing.T) {
	root := testsupport.NewDataset(t, "ds")
	ds, err := Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sink := catalog.NewCollection()
	if err := ds.RegisterFiles(sink); err != nil {
		t.Fatalf("RegisterFiles: %v", err)
	}
	f := sink.Entities()[0].(*openminds.File)
	if f.Hash != nil {
		t.Fatalf("expected no hash, got %+v", f.Hash)
	}
}
