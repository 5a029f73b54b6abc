package convert

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMetadata marks a file whose sidecars could not be read or merged.
	ErrMetadata = errors.New("metadata error")
	// ErrStructural marks a file whose metadata could not build an entity.
	ErrStructural = errors.New("structural error")
	// ErrOutput marks a failure to emit an entity to the sink.
	ErrOutput = errors.New("output error")
)

// Stage names used in logs, errors and skipped-file records.
const (
	StageMetadata    = "metadata"
	StageReconcile   = "reconcile"
	StageUsage       = "usage"
	StageAcquisition = "acquisition"
	StageEmit        = "emit"
)

// FileError is a per-file conversion failure. It matches both its marker
// and the underlying error under errors.Is.
type FileError struct {
	Marker error
	Stage  string
	Path   string
	Err    error
}

func (e *FileError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s: %s", e.Marker, e.Stage, e.Path)
	}
	return fmt.Sprintf("%v: %s: %s: %v", e.Marker, e.Stage, e.Path, e.Err)
}

func (e *FileError) Unwrap() []error {
	return []error{e.Marker, e.Err}
}

// wrap tags err with marker and the stage and file it came from.
func wrap(marker error, stage, file string, err error) error {
	return &FileError{Marker: marker, Stage: stage, Path: file, Err: err}
}

// classify picks the marker for an error raised while building entities.
// Sink failures already carry ErrOutput.
func classify(err error) error {
	if errors.Is(err, ErrOutput) {
		return ErrOutput
	}
	return ErrStructural
}

// skippable reports whether a per-file error may be recorded and passed over
// in non-strict runs. Output and cancellation errors always abort.
func skippable(err error) bool {
	switch {
	case errors.Is(err, ErrOutput):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}
