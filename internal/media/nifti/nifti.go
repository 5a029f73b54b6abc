package nifti

import (
	"encoding/binary"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Format is the detected image format.
type Format int

const (
	// Undetermined means the header did not identify a NIfTI version.
	Undetermined Format = iota
	// NIfTI1 is a NIfTI-1 image (sizeof_hdr 348).
	NIfTI1
	// NIfTI2 is a NIfTI-2 image (sizeof_hdr 540).
	NIfTI2
)

const (
	nifti1HeaderSize = 348
	nifti2HeaderSize = 540
	headerFieldBytes = 4
)

// Extensions recognized as NIfTI images.
const (
	ExtPlain      = ".nii"
	ExtCompressed = ".nii.gz"
)

// String returns a short label.
func (f Format) String() string {
	switch f {
	case NIfTI1:
		return "NIfTI-1"
	case NIfTI2:
		return "NIfTI-2"
	default:
		return "undetermined"
	}
}

// ContentType returns the media type name of f, or "" when undetermined.
func (f Format) ContentType() string {
	switch f {
	case NIfTI1:
		return "application/vnd.nifti.1"
	case NIfTI2:
		return "application/vnd.nifti.2"
	default:
		return ""
	}
}

// ExtensionOf returns ".nii.gz", ".nii" or "" for path.
func ExtensionOf(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ExtCompressed):
		return ExtCompressed
	case strings.HasSuffix(lower, ExtPlain):
		return ExtPlain
	default:
		return ""
	}
}

// Detect reads the header field of the file at path. ext selects plain or
// gzip-compressed reading; size is the on-disk size and lets plain files too
// short to hold a header skip the read. Detect never fails: anything it
// cannot read is Undetermined.
func Detect(path, ext string, size int64) Format {
	var (
		header []byte
		ok     bool
	)
	switch strings.ToLower(ext) {
	case ExtPlain:
		if size >= 0 && size < headerFieldBytes {
			return Undetermined
		}
		header, ok = readPlain(path)
	case ExtCompressed:
		header, ok = readCompressed(path)
	default:
		return Undetermined
	}
	if !ok {
		return Undetermined
	}
	return FromHeader(header)
}

// FromHeader classifies the first four header bytes, little-endian first and
// big-endian as fallback.
func FromHeader(header []byte) Format {
	if len(header) < headerFieldBytes {
		return Undetermined
	}
	little := binary.LittleEndian.Uint32(header)
	if little == 0 {
		return Undetermined
	}
	if f := classify(little); f != Undetermined {
		return f
	}
	return classify(binary.BigEndian.Uint32(header))
}

func classify(sizeofHdr uint32) Format {
	switch sizeofHdr {
	case nifti1HeaderSize:
		return NIfTI1
	case nifti2HeaderSize:
		return NIfTI2
	default:
		return Undetermined
	}
}

func readPlain(path string) ([]byte, bool) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer file.Close()
	return readHeaderField(file)
}

func readCompressed(path string) ([]byte, bool) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, false
	}
	defer zr.Close()
	zr.Multistream(false)
	return readHeaderField(zr)
}

func readHeaderField(r io.Reader) ([]byte, bool) {
	buf := make([]byte, headerFieldBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, false
	}
	return buf, true
}
