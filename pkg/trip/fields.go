package trip

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Canonical field names. Field errors, form state and RawFields all use these
// keys regardless of the front end that collected the values.
const (
	FieldOriginAddress      = "origin_address"
	FieldOriginCountry      = "origin_country"
	FieldOriginTimezone     = "origin_timezone"
	FieldDestinationCity    = "destination_city"
	FieldDestinationCountry = "destination_country"
	FieldAirportIATA        = "airport_iata"
	FieldDepartureLocal     = "departure_local"
	FieldInternational      = "international"
	FieldCheckedBaggage     = "checked_baggage"
	FieldAssignedSeat       = "assigned_seat"
	FieldDays               = "days"
	FieldActivities         = "activities"
)

// FieldOrder lists the canonical fields in the order a form presents them.
var FieldOrder = []string{
	FieldOriginAddress,
	FieldOriginCountry,
	FieldOriginTimezone,
	FieldDestinationCity,
	FieldDestinationCountry,
	FieldAirportIATA,
	FieldDepartureLocal,
	FieldInternational,
	FieldCheckedBaggage,
	FieldAssignedSeat,
	FieldDays,
	FieldActivities,
}

// RawFields holds free-form user input keyed by canonical field name. A
// missing key means the field is absent and its default applies.
type RawFields map[string]string

// Get returns the raw value and whether the field is present.
func (f RawFields) Get(name string) (string, bool) {
	if f == nil {
		return "", false
	}
	v, ok := f[name]
	return v, ok
}

// Clone returns an independent copy.
func (f RawFields) Clone() RawFields {
	out := make(RawFields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Names returns the present field names sorted alphabetically.
func (f RawFields) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// consultorNames maps the consultor front end field names onto canonical ones.
var consultorNames = map[string]string{
	"endereco_origem":        FieldOriginAddress,
	"origem_pais":            FieldOriginCountry,
	"tz_origem":              FieldOriginTimezone,
	"destino_cidade":         FieldDestinationCity,
	"destino_pais":           FieldDestinationCountry,
	"aeroporto_iata":         FieldAirportIATA,
	"datahora_partida_local": FieldDepartureLocal,
	"internacional":          FieldInternational,
	"bagagem_despachada":     FieldCheckedBaggage,
	"assento_marcado":        FieldAssignedSeat,
	"dias":                   FieldDays,
	"atividades":             FieldActivities,
}

// legacyNames maps the flat legacy front end field names onto canonical ones.
// data_ida, data_volta and destino_tz have no direct counterpart and are
// handled by FromLegacyFields.
var legacyNames = map[string]string{
	"origem_cidade":      FieldOriginAddress,
	"origem_pais":        FieldOriginCountry,
	"origem_tz":          FieldOriginTimezone,
	"destino_cidade":     FieldDestinationCity,
	"destino_pais":       FieldDestinationCountry,
	"voo_partida_local":  FieldDepartureLocal,
	"internacional":      FieldInternational,
	"bagagem_despachada": FieldCheckedBaggage,
	"assento_marcado":    FieldAssignedSeat,
	"atividades":         FieldActivities,
	"dias":               FieldDays,
}

// FromConsultorFields converts input collected with the consultor form naming
// (endereco_origem, tz_origem, dias, ...) into canonical RawFields. Canonical
// keys are passed through; unknown keys are dropped.
func FromConsultorFields(in map[string]string) RawFields {
	return remap(in, consultorNames)
}

// FromLegacyFields converts input collected with the legacy flat naming
// (origem_cidade, voo_partida_local, data_ida, data_volta, ...). When dias is
// absent the duration is derived from data_ida/data_volta inclusively, and
// data_ida stands in for the departure when voo_partida_local is missing.
func FromLegacyFields(in map[string]string) RawFields {
	out := remap(in, legacyNames)

	if _, ok := out[FieldDays]; !ok {
		if days, ok := inclusiveDays(in["data_ida"], in["data_volta"]); ok {
			out[FieldDays] = strconv.Itoa(days)
		}
	}
	if _, ok := out[FieldDepartureLocal]; !ok {
		if ida := strings.TrimSpace(in["data_ida"]); ida != "" {
			out[FieldDepartureLocal] = ida
		}
	}
	return out
}

func remap(in map[string]string, names map[string]string) RawFields {
	out := make(RawFields, len(in))
	canonical := make(map[string]struct{}, len(FieldOrder))
	for _, name := range FieldOrder {
		canonical[name] = struct{}{}
	}
	for key, value := range in {
		if mapped, ok := names[key]; ok {
			out[mapped] = value
			continue
		}
		if _, ok := canonical[key]; ok {
			out[key] = value
		}
	}
	return out
}

func inclusiveDays(from, to string) (int, bool) {
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(from))
	if err != nil {
		return 0, false
	}
	end, err := time.Parse(time.DateOnly, strings.TrimSpace(to))
	if err != nil {
		return 0, false
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		return 0, false
	}
	return days, true
}

// CanonicalName resolves a wire or front end field name (dias, origem_cidade,
// days, ...) to its canonical name.
func CanonicalName(name string) (string, bool) {
	if mapped, ok := consultorNames[name]; ok {
		return mapped, true
	}
	if mapped, ok := legacyNames[name]; ok {
		return mapped, true
	}
	switch name {
	case "data_ida", "data_volta":
		return FieldDays, true
	}
	for _, canonical := range FieldOrder {
		if canonical == name {
			return canonical, true
		}
	}
	return "", false
}
