package metadata_test

import (
	"errors"
	"testing"

	"bidsmeta/internal/metadata"
)

func TestEchoTimesList(t *testing.T) {
	n, _ := newNormalizer()
	got, err := n.EchoTimes(metadata.Record{"EchoTime": []any{"0.01", "0.02"}})
	if err != nil {
		t.Fatalf("EchoTimes: %v", err)
	}
	if got == nil || !got.IsSeries() {
		t.Fatalf("expected series, got %+v", got)
	}
	values := got.Values()
	if len(values) != 2 || values[0].Value != 0.01 || values[1].Value != 0.02 {
		t.Fatalf("unexpected values %+v", values)
	}
	if values[0].Unit.Symbol != "s" {
		t.Fatalf("unexpected unit %+v", values[0].Unit)
	}
}

func TestEchoTimesScalarIsBareQuantity(t *testing.T) {
	n, _ := newNormalizer()
	got, err := n.EchoTimes(metadata.Record{"EchoTime": "0.03"})
	if err != nil {
		t.Fatalf("EchoTimes: %v", err)
	}
	if got == nil || got.IsSeries() || got.Single == nil {
		t.Fatalf("expected single echo time, got %+v", got)
	}
	if got.Single.Value != 0.03 {
		t.Fatalf("unexpected value %v", got.Single.Value)
	}
}

func TestEchoTimesFallbackPair(t *testing.T) {
	n, _ := newNormalizer()
	got, err := n.EchoTimes(metadata.Record{"EchoTime1": "0.01", "EchoTime2": "0.02"})
	if err != nil {
		t.Fatalf("EchoTimes: %v", err)
	}
	values := got.Values()
	if !got.IsSeries() || len(values) != 2 || values[0].Value != 0.01 || values[1].Value != 0.02 {
		t.Fatalf("unexpected echo times %+v", got)
	}
}

func TestEchoTimesFallbackSecondOnly(t *testing.T) {
	n, _ := newNormalizer()
	got, err := n.EchoTimes(metadata.Record{"EchoTime2": 0.0049})
	if err != nil {
		t.Fatalf("EchoTimes: %v", err)
	}
	if !got.IsSeries() || len(got.Values()) != 1 {
		t.Fatalf("expected one-element series, got %+v", got)
	}
}

func TestEchoTimesAbsent(t *testing.T) {
	n, _ := newNormalizer()
	got, err := n.EchoTimes(metadata.Record{"RepetitionTime": 2.0})
	if err != nil {
		t.Fatalf("EchoTimes: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestEchoTimesMalformed(t *testing.T) {
	n, _ := newNormalizer()
	if _, err := n.EchoTimes(metadata.Record{"EchoTime": "short"}); !errors.Is(err, metadata.ErrMalformedValue) {
		t.Fatalf("expected ErrMalformedValue, got %v", err)
	}
}
