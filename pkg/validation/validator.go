package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-tripform/components/timezones"
	"github.com/goliatone/go-tripform/pkg/trip"
)

var iataPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Validator validates and normalizes trip form input.
type Validator struct {
	defaults Defaults
	limits   Limits
	zones    []string
	validate *validator.Validate
}

// New constructs a Validator with stock defaults and limits.
func New(options ...Option) *Validator {
	v := &Validator{
		defaults: DefaultDefaults(),
		limits:   DefaultLimits(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(v)
	}

	_ = v.validate.RegisterValidation("tzname", func(fl validator.FieldLevel) bool {
		return timezones.ValidName(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("iata", func(fl validator.FieldLevel) bool {
		return iataPattern.MatchString(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("knowntz", func(fl validator.FieldLevel) bool {
		return len(v.zones) == 0 || timezones.Known(v.zones, fl.Field().String())
	})
	return v
}

// Defaults returns the values applied to omitted fields.
func (v *Validator) Defaults() Defaults {
	return v.defaults
}

// Validate coerces, defaults and checks raw. On success it returns the
// normalized request and a nil error. On failure the error is a
// trip.FieldErrors holding one message per invalid field.
func (v *Validator) Validate(raw trip.RawFields) (trip.TripRequest, error) {
	errs := trip.FieldErrors{}
	req := trip.TripRequest{
		OriginAddress:      text(raw, trip.FieldOriginAddress, ""),
		OriginCountry:      text(raw, trip.FieldOriginCountry, v.defaults.OriginCountry),
		OriginTimezone:     text(raw, trip.FieldOriginTimezone, v.defaults.OriginTimezone),
		DestinationCity:    text(raw, trip.FieldDestinationCity, ""),
		DestinationCountry: text(raw, trip.FieldDestinationCountry, ""),
		AirportIATA:        strings.ToUpper(text(raw, trip.FieldAirportIATA, "")),
		DepartureLocal:     text(raw, trip.FieldDepartureLocal, ""),
		Activities:         SplitActivities(text(raw, trip.FieldActivities, "")),
	}

	req.International = v.flag(raw, trip.FieldInternational, v.defaults.International, errs)
	req.CheckedBaggage = v.flag(raw, trip.FieldCheckedBaggage, v.defaults.CheckedBaggage, errs)
	req.AssignedSeat = v.flag(raw, trip.FieldAssignedSeat, v.defaults.AssignedSeat, errs)
	req.Days = v.days(raw, errs)

	for _, rule := range v.rules(req) {
		if errs.Has(rule.field) {
			continue
		}
		if err := v.validate.Var(rule.value, rule.tag); err != nil {
			errs[rule.field] = rule.message(failedTag(err))
		}
	}

	if len(errs) > 0 {
		return trip.TripRequest{}, errs
	}

	req.DepartureLocal = NormalizeDeparture(req.DepartureLocal)
	return req, nil
}

type rule struct {
	field   string
	value   string
	tag     string
	message func(tag string) string
}

func (v *Validator) rules(req trip.TripRequest) []rule {
	l := v.limits
	nameMsg := func(tag string) string {
		if tag == "required" {
			return "is required"
		}
		return fmt.Sprintf("must be at least %d characters", l.MinNameLen)
	}
	return []rule{
		{
			field: trip.FieldOriginAddress,
			value: req.OriginAddress,
			tag:   fmt.Sprintf("required,min=%d", l.MinAddressLen),
			message: func(string) string {
				return fmt.Sprintf("enter a valid address (at least %d characters)", l.MinAddressLen)
			},
		},
		{field: trip.FieldOriginCountry, value: req.OriginCountry, tag: fmt.Sprintf("required,min=%d", l.MinNameLen), message: nameMsg},
		{field: trip.FieldDestinationCity, value: req.DestinationCity, tag: fmt.Sprintf("required,min=%d", l.MinNameLen), message: nameMsg},
		{field: trip.FieldDestinationCountry, value: req.DestinationCountry, tag: fmt.Sprintf("required,min=%d", l.MinNameLen), message: nameMsg},
		{
			field: trip.FieldOriginTimezone,
			value: req.OriginTimezone,
			tag:   "required,tzname,knowntz",
			message: func(tag string) string {
				if tag == "knowntz" {
					return fmt.Sprintf("unknown timezone %q", req.OriginTimezone)
				}
				return "must be a region/city timezone such as America/Sao_Paulo"
			},
		},
		{
			field: trip.FieldAirportIATA,
			value: req.AirportIATA,
			tag:   "omitempty,iata",
			message: func(string) string {
				return "must be a 3-letter IATA code"
			},
		},
		{
			field: trip.FieldDepartureLocal,
			value: req.DepartureLocal,
			tag:   fmt.Sprintf("required,min=%d", l.MinDepartureLen),
			message: func(string) string {
				return "enter the departure date and time"
			},
		},
	}
}

func (v *Validator) flag(raw trip.RawFields, name string, def bool, errs trip.FieldErrors) bool {
	value, ok := raw.Get(name)
	if !ok || strings.TrimSpace(value) == "" {
		return def
	}
	b, ok := ParseBool(value)
	if !ok {
		errs[name] = "must be yes or no"
		return def
	}
	return b
}

func (v *Validator) days(raw trip.RawFields, errs trip.FieldErrors) int {
	value, ok := raw.Get(trip.FieldDays)
	if !ok {
		return v.defaults.Days
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		errs[trip.FieldDays] = "must be a whole number of days"
		return 0
	}
	if verr := v.validate.Var(n, fmt.Sprintf("min=%d,max=%d", v.limits.MinDays, v.limits.MaxDays)); verr != nil {
		errs[trip.FieldDays] = fmt.Sprintf("must be between %d and %d days", v.limits.MinDays, v.limits.MaxDays)
		return 0
	}
	return n
}

func text(raw trip.RawFields, name, def string) string {
	value, ok := raw.Get(name)
	if !ok {
		return def
	}
	return strings.TrimSpace(value)
}

func failedTag(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return ""
}

// SplitActivities splits a comma separated list, trimming each entry and
// dropping blanks. Order and duplicates are preserved. The result is never
// nil.
func SplitActivities(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ParseBool accepts the spellings checkbox and select inputs produce.
func ParseBool(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "y", "on", "sim", "s":
		return true, true
	case "false", "0", "no", "n", "off", "nao", "não":
		return false, true
	default:
		return false, false
	}
}

var departureLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// NormalizeDeparture rewrites recognised local timestamps as
// YYYY-MM-DDTHH:MM:SS. Unrecognised values are returned trimmed.
func NormalizeDeparture(raw string) string {
	value := strings.TrimSpace(raw)
	for _, layout := range departureLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02T15:04:05")
		}
	}
	return value
}
