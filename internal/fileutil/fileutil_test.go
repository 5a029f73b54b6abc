package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDigest(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	if err := os.WriteFile(src, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		algorithm string
		want      string
	}{
		{"", "5eb63bbbe01eeed093cb22bb8f5acdc3"},
		{"MD5", "5eb63bbbe01eeed093cb22bb8f5acdc3"},
		{"md5", "5eb63bbbe01eeed093cb22bb8f5acdc3"},
		{"SHA256", "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
	}
	for _, tc := range tests {
		got, n, err := Digest(src, tc.algorithm)
		if err != nil {
			t.Fatalf("Digest(%q): %v", tc.algorithm, err)
		}
		if got != tc.want {
			t.Fatalf("Digest(%q) = %s, want %s", tc.algorithm, got, tc.want)
		}
		if n != 11 {
			t.Fatalf("Digest(%q) read %d bytes, want 11", tc.algorithm, n)
		}
	}
}

func TestDigest_UnsupportedAlgorithm(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	if err := os.WriteFile(src, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Digest(src, "CRC32"); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
}

func TestDigest_MissingSource(t *testing.T) {
	if _, _, err := Digest(filepath.Join(t.TempDir(), "missing"), ""); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestSize(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	if err := os.WriteFile(src, make([]byte, 1234), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Size(src)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1234 {
		t.Fatalf("size = %d, want 1234", got)
	}
	if _, err := Size(dir); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "out.jsonld")

	if err := WriteFileAtomic(target, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(target, []byte("second"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content = %q, want %q", got, "second")
	}
	info, err := os.Stat(target)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode = %o, want 600", info.Mode().Perm())
	}
	entries, err := os.ReadDir(filepath.Dir(target))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, found %d entries", len(entries))
	}
}
