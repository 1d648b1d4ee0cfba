package trip

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrValidation is matched (errors.Is) by every FieldErrors value so callers
// can classify a failure without inspecting individual fields.
var ErrValidation = errors.New("validation error")

// TripRequest is the normalized request sent to the planning service. Build
// it through the validation package; the zero value is not a valid request.
// JSON names follow the planning service contract.
type TripRequest struct {
	OriginAddress      string   `json:"endereco_origem"`
	OriginCountry      string   `json:"origem_pais"`
	OriginTimezone     string   `json:"tz_origem"`
	DestinationCity    string   `json:"destino_cidade"`
	DestinationCountry string   `json:"destino_pais"`
	AirportIATA        string   `json:"aeroporto_iata,omitempty"`
	DepartureLocal     string   `json:"datahora_partida_local"`
	International      bool     `json:"internacional"`
	CheckedBaggage     bool     `json:"bagagem_despachada"`
	AssignedSeat       bool     `json:"assento_marcado"`
	Days               int      `json:"dias"`
	Activities         []string `json:"atividades"`
}

// Clone returns a copy that shares no backing storage with r.
func (r TripRequest) Clone() TripRequest {
	out := r
	out.Activities = append(make([]string, 0, len(r.Activities)), r.Activities...)
	return out
}

// FieldErrors maps a canonical field name to a human-readable message.
type FieldErrors map[string]string

// Error implements error so a validation failure can travel through error
// returns. Fields are listed alphabetically for deterministic output.
func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation: no field errors"
	}
	parts := make([]string, 0, len(e))
	for _, name := range e.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e[name]))
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrValidation.
func (e FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the invalid field names sorted alphabetically.
func (e FieldErrors) Fields() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name carries an error.
func (e FieldErrors) Has(name string) bool {
	_, ok := e[name]
	return ok
}

// Clone returns an independent copy, or nil when empty.
func (e FieldErrors) Clone() FieldErrors {
	if len(e) == 0 {
		return nil
	}
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// AirportCandidate is one airport returned by the search collaborator.
type AirportCandidate struct {
	IATA       string   `json:"iata"`
	Name       string   `json:"name,omitempty"`
	City       string   `json:"city,omitempty"`
	Country    string   `json:"country,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
	DistanceKM *float64 `json:"dist_km,omitempty"`
}

// Label renders the candidate the way the search list displays it, for
// example "SCL - Arturo Merino Benitez • Santiago • Chile (12 km)".
func (a AirportCandidate) Label() string {
	name := a.Name
	if name == "" {
		name = "Airport"
	}
	var b strings.Builder
	b.WriteString(a.IATA)
	b.WriteString(" - ")
	b.WriteString(name)
	if a.City != "" {
		b.WriteString(" • ")
		b.WriteString(a.City)
	}
	if a.Country != "" {
		b.WriteString(" • ")
		b.WriteString(a.Country)
	}
	if a.DistanceKM != nil && *a.DistanceKM > 0 {
		fmt.Fprintf(&b, " (%.0f km)", *a.DistanceKM)
	}
	return b.String()
}

// PlanResult is the decoded planning service response.
type PlanResult struct {
	Airport           *Airport        `json:"airport,omitempty"`
	DepartureAdvice   DepartureAdvice `json:"departure_advice"`
	Climate           *ClimateSummary `json:"climate_summary,omitempty"`
	ChecklistMarkdown string          `json:"checklist_md"`
}

// Airport identifies the departure airport the service planned against.
type Airport struct {
	IATA    string `json:"iata"`
	Name    string `json:"name,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

// DepartureAdvice carries the advised time to leave home and the minutes
// that make it up (drive, pre-flight buffers, contingency, peak hours).
type DepartureAdvice struct {
	LeaveAtLocal string             `json:"leave_at_local"`
	BreakdownMin map[string]float64 `json:"breakdown_min,omitempty"`
}

// Minutes returns a breakdown entry, or zero when the service omitted it.
func (d DepartureAdvice) Minutes(key string) float64 {
	if d.BreakdownMin == nil {
		return 0
	}
	return d.BreakdownMin[key]
}

// ClimateSummary holds the historical averages for the trip window.
type ClimateSummary struct {
	MonthNames []string `json:"month_names"`
	TMinC      float64  `json:"tmin_c"`
	TAvgC      float64  `json:"tavg_c"`
	TMaxC      float64  `json:"tmax_c"`
	PrcpMM     float64  `json:"prcp_mm"`
	RainyClass string   `json:"rainy_class"`
	TempClass  string   `json:"temp_class"`
}
