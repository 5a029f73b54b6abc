package terms_test

import (
	"errors"
	"testing"

	"bidsmeta/internal/terms"
)

func TestByNameIsCaseInsensitiveWithinSet(t *testing.T) {
	reg := terms.Default()
	term, err := reg.ByName(terms.SetMRAcquisitionType, "2d ACQUISITION")
	if err != nil {
		t.Fatalf("ByName returned error: %v", err)
	}
	if term.Name != "2D acquisition" {
		t.Fatalf("unexpected canonical name %q", term.Name)
	}
	if term.Set != terms.SetMRAcquisitionType {
		t.Fatalf("unexpected set %q", term.Set)
	}
}

func TestByNameDoesNotCrossSets(t *testing.T) {
	_, err := terms.Default().ByName(terms.SetMRIPulseSequence, "2D acquisition")
	if !errors.Is(err, terms.ErrUnknownTerm) {
		t.Fatalf("expected ErrUnknownTerm, got %v", err)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	reg := terms.New()
	first := reg.Register(terms.SetContentType, "text/csv")
	second := reg.Register(terms.SetContentType, "TEXT/CSV")
	if first != second {
		t.Fatalf("expected same term, got %+v and %+v", first, second)
	}
	if got := reg.Names(terms.SetContentType); len(got) != 1 {
		t.Fatalf("expected one name, got %v", got)
	}
	if !reg.Has(terms.SetContentType, "text/csv") {
		t.Fatal("expected registered term to be found")
	}
}
