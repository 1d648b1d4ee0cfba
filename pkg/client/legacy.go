package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-tripform/pkg/contract"
	"github.com/goliatone/go-tripform/pkg/trip"
)

// legacyTrip is the /trip/plan request body.
type legacyTrip struct {
	OriginCity          string   `json:"origem_cidade"`
	OriginCountry       string   `json:"origem_pais"`
	OriginTimezone      string   `json:"origem_tz"`
	DestinationCity     string   `json:"destino_cidade"`
	DestinationCountry  string   `json:"destino_pais"`
	DestinationTimezone string   `json:"destino_tz"`
	DepartureDate       string   `json:"data_ida"`
	ReturnDate          string   `json:"data_volta"`
	FlightDeparture     string   `json:"voo_partida_local"`
	International       bool     `json:"internacional"`
	CheckedBaggage      bool     `json:"bagagem_despachada"`
	AssignedSeat        bool     `json:"assento_marcado"`
	TravelMinutes       int      `json:"tempo_deslocamento_min"`
	Activities          []string `json:"atividades"`
}

// legacyPlan is the /trip/plan response body.
type legacyPlan struct {
	LeaveAt           string               `json:"leave_at"`
	Buffers           map[string]float64   `json:"buffers"`
	Climate           *trip.ClimateSummary `json:"climate"`
	ChecklistMarkdown string               `json:"checklist_markdown"`
}

func (c *Client) planLegacy(ctx context.Context, req trip.TripRequest) (trip.PlanResult, error) {
	body := toLegacyTrip(req, c.legacyDestTZ, c.legacyTravelMin)

	var out legacyPlan
	if err := c.do(ctx, "plan", http.MethodPost, contract.PathLegacyPlan, nil, body, &out); err != nil {
		return trip.PlanResult{}, err
	}
	return trip.PlanResult{
		DepartureAdvice: trip.DepartureAdvice{
			LeaveAtLocal: out.LeaveAt,
			BreakdownMin: out.Buffers,
		},
		Climate:           out.Climate,
		ChecklistMarkdown: out.ChecklistMarkdown,
	}, nil
}

// toLegacyTrip derives the trip window from the departure date and the
// duration: data_volta = data_ida + days - 1.
func toLegacyTrip(req trip.TripRequest, destTZ string, travelMin int) legacyTrip {
	out := legacyTrip{
		OriginCity:          req.OriginAddress,
		OriginCountry:       req.OriginCountry,
		OriginTimezone:      req.OriginTimezone,
		DestinationCity:     req.DestinationCity,
		DestinationCountry:  req.DestinationCountry,
		DestinationTimezone: destTZ,
		FlightDeparture:     req.DepartureLocal,
		International:       req.International,
		CheckedBaggage:      req.CheckedBaggage,
		AssignedSeat:        req.AssignedSeat,
		TravelMinutes:       travelMin,
		Activities:          req.Activities,
	}
	if out.Activities == nil {
		out.Activities = []string{}
	}

	date := req.DepartureLocal
	if i := strings.IndexAny(date, "T "); i > 0 {
		date = date[:i]
	}
	out.DepartureDate = date
	out.ReturnDate = date
	if start, err := time.Parse(time.DateOnly, date); err == nil && req.Days > 0 {
		out.ReturnDate = start.AddDate(0, 0, req.Days-1).Format(time.DateOnly)
	}
	return out
}
