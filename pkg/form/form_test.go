package form

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tripform/pkg/trip"
)

func TestReduce_FieldChangedClearsError(t *testing.T) {
	s := New(trip.RawFields{trip.FieldDays: "0"})
	s = Reduce(s, ErrorsReported{Errors: trip.FieldErrors{trip.FieldDays: "bad", trip.FieldDestinationCity: "required"}})

	next := Reduce(s, FieldChanged{Name: trip.FieldDays, Value: "7"})

	if next.Value(trip.FieldDays) != "7" {
		t.Fatalf("expected days=7, got %q", next.Value(trip.FieldDays))
	}
	if diff := cmp.Diff(trip.FieldErrors{trip.FieldDestinationCity: "required"}, next.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if s.Value(trip.FieldDays) != "0" || !s.Errors.Has(trip.FieldDays) {
		t.Fatalf("input state was mutated: %+v", s)
	}
}

func TestReduce_AirportPickedPatchesDestination(t *testing.T) {
	s := New(trip.RawFields{trip.FieldDestinationCity: "San", trip.FieldDestinationCountry: "Chile"})
	s = Reduce(s, ErrorsReported{Errors: trip.FieldErrors{trip.FieldDestinationCity: "too short"}})

	next := Reduce(s, AirportPicked{Candidate: trip.AirportCandidate{IATA: "scl", City: "Santiago"}})

	want := trip.RawFields{
		trip.FieldDestinationCity:    "Santiago",
		trip.FieldDestinationCountry: "Chile",
		trip.FieldAirportIATA:        "SCL",
	}
	if diff := cmp.Diff(want, next.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if next.Errors != nil {
		t.Fatalf("expected errors cleared, got %v", next.Errors)
	}
	if next.Airport == nil || next.Airport.IATA != "scl" {
		t.Fatalf("expected picked airport recorded, got %+v", next.Airport)
	}

	edited := Reduce(next, FieldChanged{Name: trip.FieldAirportIATA, Value: "GRU"})
	if edited.Airport != nil {
		t.Fatalf("expected airport selection to be dropped after editing the code")
	}
}

func TestReduce_FieldsLoadedAndReset(t *testing.T) {
	initial := trip.RawFields{trip.FieldOriginCountry: "Brasil"}
	s := New(initial)
	s = Reduce(s, FieldsLoaded{Values: trip.RawFields{trip.FieldOriginAddress: "Rua A, 10", trip.FieldDays: "4"}})

	if diff := cmp.Diff(trip.RawFields{
		trip.FieldOriginCountry: "Brasil",
		trip.FieldOriginAddress: "Rua A, 10",
		trip.FieldDays:          "4",
	}, s.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	s = Reduce(s, ErrorsReported{Errors: trip.FieldErrors{trip.FieldDays: "x"}})
	s = Reduce(s, Reset{Initial: initial})
	if diff := cmp.Diff(State{Values: initial}, s); diff != "" {
		t.Fatalf("cleared state mismatch (-want +got):\n%s", diff)
	}
}
