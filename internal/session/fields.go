package session

import (
	"github.com/goliatone/go-tripform/pkg/trip"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindBool
	kindTimezone
	kindAirport
)

type fieldPrompt struct {
	label string
	help  string
	kind  fieldKind
}

var fieldPrompts = map[string]fieldPrompt{
	trip.FieldOriginAddress:      {label: "Origin address", help: "Street address or city you leave from, at least 5 characters."},
	trip.FieldOriginCountry:      {label: "Origin country"},
	trip.FieldOriginTimezone:     {label: "Origin timezone", help: "Region/City, for example America/Sao_Paulo. Press Tab for suggestions.", kind: kindTimezone},
	trip.FieldDestinationCity:    {label: "Destination city"},
	trip.FieldDestinationCountry: {label: "Destination country"},
	trip.FieldAirportIATA:        {label: "Search destination airport", help: "Name, city or IATA code. Leave empty to let the planner choose.", kind: kindAirport},
	trip.FieldDepartureLocal:     {label: "Flight departure (local time)", help: "YYYY-MM-DD HH:MM"},
	trip.FieldInternational:      {label: "International flight?", kind: kindBool},
	trip.FieldCheckedBaggage:     {label: "Checking baggage?", kind: kindBool},
	trip.FieldAssignedSeat:       {label: "Seat already assigned?", kind: kindBool},
	trip.FieldDays:               {label: "Trip length (days)", help: "1 to 60"},
	trip.FieldActivities:         {label: "Activities", help: "Comma separated, for example: trilha, praia, museu"},
}
