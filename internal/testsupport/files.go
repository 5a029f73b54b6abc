package testsupport

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	WriteBytes(t, path, buf)
}

// WriteBytes writes data to path, creating parent directories.
func WriteBytes(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteJSON encodes v to path.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	WriteBytes(t, path, data)
}

// NIfTIHeader returns a header-sized buffer whose first field holds
// sizeofHdr in the requested byte order.
func NIfTIHeader(sizeofHdr uint32, order binary.ByteOrder) []byte {
	buf := make([]byte, 352)
	order.PutUint32(buf, sizeofHdr)
	return buf
}

// WriteNIfTI writes a little-endian header with sizeofHdr to path,
// gzip-compressed when the path ends in .gz.
func WriteNIfTI(t testing.TB, path string, sizeofHdr uint32) {
	t.Helper()

	data := NIfTIHeader(sizeofHdr, binary.LittleEndian)
	if filepath.Ext(path) != ".gz" {
		WriteBytes(t, path, data)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	zw := gzip.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip %s: %v", path, err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close %s: %v", path, err)
	}
}

// NewDataset creates a dataset root holding a dataset_description.json with
// the given name. An empty name omits the field.
func NewDataset(t testing.TB, name string) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "ds000001")
	desc := map[string]any{"BIDSVersion": "1.8.0"}
	if name != "" {
		desc["Name"] = name
	}
	WriteJSON(t, filepath.Join(root, "dataset_description.json"), desc)
	return root
}
