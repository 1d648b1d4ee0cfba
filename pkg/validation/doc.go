// Package validation turns raw trip form input into a normalized
// trip.TripRequest. Validate coerces text into typed values, applies the
// configured defaults for absent fields, checks every constraint with
// go-playground/validator and reports all failing fields at once through
// trip.FieldErrors. It performs no I/O and keeps no state between calls, so
// one Validator can be shared by any number of forms.
package validation
