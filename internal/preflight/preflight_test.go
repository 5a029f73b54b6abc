package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bidsmeta/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		access Access
		pass   bool
	}{
		{"readable dir", dir, Read, true},
		{"writable dir", dir, ReadWrite, true},
		{"missing dir", filepath.Join(dir, "nope"), Read, false},
		{"file path", file, Read, false},
	}
	for _, tc := range tests {
		result := CheckDirectoryAccess("test", tc.path, tc.access)
		if result.Passed != tc.pass {
			t.Fatalf("%s: Passed = %v (%s), want %v", tc.name, result.Passed, result.Detail, tc.pass)
		}
		if result.Detail == "" {
			t.Fatalf("%s: expected non-empty detail", tc.name)
		}
	}
}

func TestCheckWritableTargetMissingDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out", "nested")
	result := CheckWritableTarget("Output directory", target)
	if !result.Passed {
		t.Fatalf("expected creatable target to pass, got %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
	if result := CheckWritableTarget("Output directory", ""); result.Passed {
		t.Fatal("expected empty target to fail")
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	root := testsupport.NewDataset(t, "Example")

	results := RunAll(cfg, root, "")
	if err := Failed(results); err != nil {
		t.Fatalf("expected all checks to pass, got %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected dataset, description, output and catalog checks, got %d", len(results))
	}

	empty := t.TempDir()
	err := Failed(RunAll(cfg, empty, ""))
	if err == nil || !strings.Contains(err.Error(), "Dataset description") {
		t.Fatalf("expected missing description failure, got %v", err)
	}
	if RunAll(nil, root, "") != nil {
		t.Fatal("expected nil config to yield no results")
	}
}
