package runctx

import (
	"context"
	"testing"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	ctx = WithRunID(ctx, "run-1")
	ctx = WithDataset(ctx, "ds000001")
	ctx = WithFile(ctx, "sub-01/func/sub-01_task-rest_bold.nii.gz")
	ctx = WithStage(ctx, "acquisition")

	tests := []struct {
		name string
		get  func(context.Context) (string, bool)
		want string
	}{
		{"run", RunIDFromContext, "run-1"},
		{"dataset", DatasetFromContext, "ds000001"},
		{"file", FileFromContext, "sub-01/func/sub-01_task-rest_bold.nii.gz"},
		{"stage", StageFromContext, "acquisition"},
	}
	for _, tt := range tests {
		got, ok := tt.get(ctx)
		if !ok || got != tt.want {
			t.Fatalf("%s = %q (%v), want %q", tt.name, got, ok, tt.want)
		}
	}
}

func TestEmptyValuesAreIgnored(t *testing.T) {
	base := context.Background()
	ctx := WithFile(WithDataset(WithRunID(base, ""), ""), "")
	if ctx != base {
		t.Fatal("expected empty values to leave context untouched")
	}
	if _, ok := RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id")
	}
	if _, ok := FileFromContext(nil); ok { //nolint:staticcheck
		t.Fatal("expected nil context to report absence")
	}
}
