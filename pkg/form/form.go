package form

import (
	"strings"

	"github.com/goliatone/go-tripform/pkg/trip"
)

// State is the editable form: current raw values and the errors to display.
type State struct {
	Values trip.RawFields
	Errors trip.FieldErrors
	// Airport is the last candidate picked from the lookup, if any.
	Airport *trip.AirportCandidate
}

// New returns a form seeded with initial values.
func New(initial trip.RawFields) State {
	return State{Values: initial.Clone()}
}

// Value returns the current raw value of a field.
func (s State) Value(name string) string {
	return s.Values[name]
}

// Event is an input to Reduce.
type Event interface {
	formEvent()
}

// FieldChanged sets one field and clears its error.
type FieldChanged struct {
	Name  string
	Value string
}

// FieldsLoaded merges several values, for example from a saved profile.
// Existing errors for the loaded fields are cleared.
type FieldsLoaded struct {
	Values trip.RawFields
}

// AirportPicked applies a lookup selection: the IATA code, the destination
// city and, when known, the destination country.
type AirportPicked struct {
	Candidate trip.AirportCandidate
}

// ErrorsReported replaces the displayed errors.
type ErrorsReported struct {
	Errors trip.FieldErrors
}

// Reset restores the given initial values and drops all errors.
type Reset struct {
	Initial trip.RawFields
}

func (FieldChanged) formEvent() {}
func (FieldsLoaded) formEvent() {}
func (AirportPicked) formEvent() {}
func (ErrorsReported) formEvent() {}
func (Reset) formEvent() {}

// Reduce returns the state that results from applying e to s.
func Reduce(s State, e Event) State {
	next := State{
		Values: s.Values.Clone(),
		Errors: s.Errors.Clone(),
	}
	if s.Airport != nil {
		a := *s.Airport
		next.Airport = &a
	}

	switch ev := e.(type) {
	case FieldChanged:
		next.Values[ev.Name] = ev.Value
		delete(next.Errors, ev.Name)
		if ev.Name == trip.FieldAirportIATA && next.Airport != nil &&
			!strings.EqualFold(strings.TrimSpace(ev.Value), next.Airport.IATA) {
			next.Airport = nil
		}
	case FieldsLoaded:
		for k, v := range ev.Values {
			next.Values[k] = v
			delete(next.Errors, k)
		}
	case AirportPicked:
		c := ev.Candidate
		next.Airport = &c
		next.Values[trip.FieldAirportIATA] = strings.ToUpper(c.IATA)
		delete(next.Errors, trip.FieldAirportIATA)
		if c.City != "" {
			next.Values[trip.FieldDestinationCity] = c.City
			delete(next.Errors, trip.FieldDestinationCity)
		}
		if c.Country != "" {
			next.Values[trip.FieldDestinationCountry] = c.Country
			delete(next.Errors, trip.FieldDestinationCountry)
		}
	case ErrorsReported:
		next.Errors = ev.Errors.Clone()
	case Reset:
		return State{Values: ev.Initial.Clone()}
	}

	if len(next.Errors) == 0 {
		next.Errors = nil
	}
	return next
}
