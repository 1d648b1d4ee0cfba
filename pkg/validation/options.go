package validation

// Defaults are applied to fields absent from the raw input.
type Defaults struct {
	OriginCountry  string
	OriginTimezone string
	International  bool
	CheckedBaggage bool
	AssignedSeat   bool
	Days           int
}

// DefaultDefaults mirrors the planning service defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		OriginCountry:  "Brasil",
		OriginTimezone: "America/Sao_Paulo",
		International:  true,
		CheckedBaggage: false,
		AssignedSeat:   true,
		Days:           6,
	}
}

// Limits holds the length and range constraints.
type Limits struct {
	MinAddressLen   int
	MinNameLen      int
	MinDepartureLen int
	MinDays         int
	MaxDays         int
}

// DefaultLimits returns the stock constraints: address >= 5 characters,
// city/country >= 2, departure >= 10 (date plus time), duration 1..60 days.
func DefaultLimits() Limits {
	return Limits{
		MinAddressLen:   5,
		MinNameLen:      2,
		MinDepartureLen: 10,
		MinDays:         1,
		MaxDays:         60,
	}
}

// Option configures a Validator.
type Option func(*Validator)

// WithDefaults overrides the values used for absent fields.
func WithDefaults(d Defaults) Option {
	return func(v *Validator) {
		v.defaults = d
	}
}

// WithLimits overrides the length and range constraints. Zero values keep
// the stock limit.
func WithLimits(l Limits) Option {
	return func(v *Validator) {
		base := DefaultLimits()
		if l.MinAddressLen > 0 {
			base.MinAddressLen = l.MinAddressLen
		}
		if l.MinNameLen > 0 {
			base.MinNameLen = l.MinNameLen
		}
		if l.MinDepartureLen > 0 {
			base.MinDepartureLen = l.MinDepartureLen
		}
		if l.MinDays > 0 {
			base.MinDays = l.MinDays
		}
		if l.MaxDays > 0 {
			base.MaxDays = l.MaxDays
		}
		v.limits = base
	}
}

// WithKnownTimezones makes the validator reject origin timezones missing from
// zones (sorted, as returned by timezones.DefaultZones). Without it only the
// region/city syntax is checked.
func WithKnownTimezones(zones []string) Option {
	return func(v *Validator) {
		v.zones = append([]string(nil), zones...)
	}
}
