package nifti_test

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"

	"bidsmeta/internal/media/nifti"
)

func header(order binary.ByteOrder, value uint32) []byte {
	buf := make([]byte, 352)
	order.PutUint32(buf, value)
	return buf
}

func writePlain(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func writeGzip(t *testing.T, name string, data []byte) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return writePlain(t, name, buf.Bytes())
}

func detect(path string) nifti.Format {
	info, err := os.Stat(path)
	size := int64(-1)
	if err == nil {
		size = info.Size()
	}
	return nifti.Detect(path, nifti.ExtensionOf(path), size)
}

func TestDetectPlainAndCompressed(t *testing.T) {
	cases := []struct {
		name  string
		order binary.ByteOrder
		value uint32
		want  nifti.Format
	}{
		{"nifti1 little endian", binary.LittleEndian, 348, nifti.NIfTI1},
		{"nifti2 little endian", binary.LittleEndian, 540, nifti.NIfTI2},
		{"nifti1 big endian", binary.BigEndian, 348, nifti.NIfTI1},
		{"nifti2 big endian", binary.BigEndian, 540, nifti.NIfTI2},
		{"zero header", binary.LittleEndian, 0, nifti.Undetermined},
		{"unknown header", binary.LittleEndian, 123, nifti.Undetermined},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := header(tc.order, tc.value)
			if got := detect(writePlain(t, "img.nii", data)); got != tc.want {
				t.Fatalf("plain: got %s want %s", got, tc.want)
			}
			if got := detect(writeGzip(t, "img.nii.gz", data)); got != tc.want {
				t.Fatalf("gzip: got %s want %s", got, tc.want)
			}
		})
	}
}

func TestDetectIgnoresLegacyExtension(t *testing.T) {
	// NIfTI-2 payload stored under the plain extension.
	path := writePlain(t, "legacy.nii", header(binary.LittleEndian, 540))
	if got := detect(path); got != nifti.NIfTI2 {
		t.Fatalf("got %s want NIfTI-2", got)
	}
}

func TestDetectCorruptCompressedStream(t *testing.T) {
	path := writePlain(t, "broken.nii.gz", []byte("this is not gzip data at all"))
	if got := detect(path); got != nifti.Undetermined {
		t.Fatalf("got %s want undetermined", got)
	}
}

func TestDetectTruncatedCompressedStream(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write(header(binary.LittleEndian, 348))
	_ = zw.Close()
	truncated := buf.Bytes()[:12]
	path := writePlain(t, "truncated.nii.gz", truncated)
	if got := detect(path); got != nifti.Undetermined {
		t.Fatalf("got %s want undetermined", got)
	}
}

func TestDetectShortAndMissingFiles(t *testing.T) {
	if got := detect(writePlain(t, "short.nii", []byte{0x5c, 0x01})); got != nifti.Undetermined {
		t.Fatalf("short file: got %s", got)
	}
	missing := filepath.Join(t.TempDir(), "missing.nii")
	if got := nifti.Detect(missing, nifti.ExtPlain, 400); got != nifti.Undetermined {
		t.Fatalf("missing file: got %s", got)
	}
	if got := nifti.Detect(missing, ".img", 400); got != nifti.Undetermined {
		t.Fatalf("unsupported extension: got %s", got)
	}
}

func TestFormatContentType(t *testing.T) {
	if nifti.NIfTI1.ContentType() != "application/vnd.nifti.1" || nifti.NIfTI2.ContentType() != "application/vnd.nifti.2" {
		t.Fatal("unexpected content types")
	}
	if nifti.Undetermined.ContentType() != "" {
		t.Fatal("undetermined should have no content type")
	}
}
