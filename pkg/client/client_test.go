package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tripform/pkg/contract"
	"github.com/goliatone/go-tripform/pkg/trip"
)

const planReply = `{
	"airport": {"iata": "SCL", "name": "Arturo Merino Benitez", "city": "Santiago", "country": "Chile"},
	"departure_advice": {"leave_at_local": "2025-11-19T13:10:00-03:00", "breakdown_min": {"prevoo": 180, "drive": 95}},
	"climate_summary": {"month_names": ["Nov"], "tmin_c": 9.1, "tavg_c": 16.4, "tmax_c": 24.0, "prcp_mm": 12.3, "rainy_class": "seco", "temp_class": "ameno"},
	"checklist_md": "- passaporte"
}`

func sampleRequest() trip.TripRequest {
	return trip.TripRequest{
		OriginAddress:      "Av. Paulista, 1000",
		OriginCountry:      "Brasil",
		OriginTimezone:     "America/Sao_Paulo",
		DestinationCity:    "Santiago",
		DestinationCountry: "Chile",
		AirportIATA:        "SCL",
		DepartureLocal:     "2025-11-19T17:45:00",
		International:      true,
		AssignedSeat:       true,
		Days:               6,
		Activities:         []string{"trilha", "praia"},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "http://", "::"} {
		_, err := New(raw)
		require.ErrorIs(t, err, ErrInvalidBaseURL, raw)
	}
}

func TestPlan_PostsCanonicalBody(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/plan", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = io.WriteString(w, planReply)
	}, WithRequestIDs(func() string { return "req-1" }))
	c.base.Path = "/api"

	result, err := c.Plan(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "Av. Paulista, 1000", got["endereco_origem"])
	assert.Equal(t, float64(6), got["dias"])
	assert.Equal(t, "SCL", got["aeroporto_iata"])
	assert.Equal(t, "2025-11-19T13:10:00-03:00", result.DepartureAdvice.LeaveAtLocal)
	assert.Equal(t, float64(95), result.DepartureAdvice.Minutes("drive"))
	require.NotNil(t, result.Airport)
	assert.Equal(t, "SCL", result.Airport.IATA)
	require.NotNil(t, result.Climate)
	assert.Equal(t, "seco", result.Climate.RainyClass)
	assert.Equal(t, "- passaporte", result.ChecklistMarkdown)
}

func TestPlan_StatusErrorIncludesCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Plan(context.Background(), sampleRequest())
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusInternalServerError, status.StatusCode())
	assert.Contains(t, err.Error(), "500")
	assert.True(t, IsRetryable(err))
}

func TestPlan_MapsValidationDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":[
			{"loc":["body","dias"],"msg":"ensure this value is less than or equal to 60","type":"value_error"},
			{"loc":["query","x"],"msg":"extra","type":"value_error"}
		]}`)
	})

	_, err := c.Plan(context.Background(), sampleRequest())
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusUnprocessableEntity, status.Code)
	assert.Equal(t, trip.FieldErrors{trip.FieldDays: "ensure this value is less than or equal to 60"}, status.Fields)
	assert.Equal(t, "query.x: extra", status.Detail)
	assert.False(t, IsRetryable(err))
}

func TestPlan_StringDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"detail":"unknown timezone"}`)
	})

	_, err := c.Plan(context.Background(), sampleRequest())
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, "unknown timezone", status.Detail)
	assert.Nil(t, status.Fields)
}

func TestPlan_DecodeErrors(t *testing.T) {
	cases := map[string]string{
		"malformed":         `{"departure_advice":`,
		"contract mismatch": `{"departure_advice": {"leave_at_local": 12}, "checklist_md": ""}`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, reply)
			})
			_, err := c.Plan(context.Background(), sampleRequest())
			var decode *DecodeError
			require.ErrorAs(t, err, &decode)
			assert.Equal(t, http.StatusOK, decode.StatusCode())
		})
	}
}

func TestPlan_RefusesBodyViolatingContract(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	req := sampleRequest()
	req.Days = 0

	_, err := c.Plan(context.Background(), req)
	require.ErrorIs(t, err, contract.ErrViolation)
	assert.Equal(t, int32(0), calls.Load())
}

func TestPlan_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.Plan(context.Background(), sampleRequest())
	var transport *TransportError
	require.ErrorAs(t, err, &transport)
	assert.True(t, IsRetryable(err))
}

func TestPlan_LegacyContract(t *testing.T) {
	var got legacyTrip
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, contract.PathLegacyPlan, r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{
			"leave_at": "2025-11-19T12:45:00",
			"buffers": {"check_in": 120, "deslocamento": 60},
			"climate": {"month_names": ["Nov"], "tmin_c": 9, "tavg_c": 16, "tmax_c": 24, "prcp_mm": 12, "rainy_class": "seco", "temp_class": "ameno"},
			"checklist_markdown": "- casaco"
		}`)
	}, WithContract(ContractLegacy), WithLegacyTrip("America/Santiago", 45))

	result, err := c.Plan(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "2025-11-19", got.DepartureDate)
	assert.Equal(t, "2025-11-24", got.ReturnDate)
	assert.Equal(t, "Av. Paulista, 1000", got.OriginCity)
	assert.Equal(t, 45, got.TravelMinutes)
	assert.Equal(t, "America/Santiago", got.DestinationTimezone)

	assert.Equal(t, "2025-11-19T12:45:00", result.DepartureAdvice.LeaveAtLocal)
	assert.Equal(t, float64(120), result.DepartureAdvice.Minutes("check_in"))
	assert.Equal(t, "- casaco", result.ChecklistMarkdown)
	assert.Nil(t, result.Airport)
}

func TestSearch_SendsParamsAndKeepsOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, contract.PathSearch, r.URL.Path)
		assert.Equal(t, "san", q.Get("q"))
		assert.Equal(t, "50", q.Get("limit"))
		assert.Equal(t, "-23.5", q.Get("lat"))
		assert.Equal(t, "-46.6", q.Get("lon"))
		_, _ = io.WriteString(w, `[
			{"iata": "SCL", "name": "Arturo Merino Benitez", "city": "Santiago", "country": "Chile", "lat": -33.39, "lon": -70.79, "dist_km": 2600.4},
			{"iata": "SJO", "name": null, "city": "San Jose", "country": "Costa Rica"}
		]`)
	})
	lat, lon := -23.5, -46.6

	got, err := c.Search(context.Background(), " san ", SearchParams{Limit: 99, Lat: &lat, Lon: &lon})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "SCL", got[0].IATA)
	assert.Equal(t, "SJO", got[1].IATA)
	assert.Equal(t, "SJO - Airport • San Jose • Costa Rica", got[1].Label())
}

func TestSearchAirports_BlankQueryMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	got, err := c.SearchAirports(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Equal(t, int32(0), calls.Load())
}

func TestSearchAirports_RateLimitHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}, WithSearchRate(0.001, 1))

	_, err := c.SearchAirports(context.Background(), "sa")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.SearchAirports(ctx, "san")
	var transport *TransportError
	require.ErrorAs(t, err, &transport)
}

func TestAirportByIATA(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("code") {
		case "GRU":
			_, _ = io.WriteString(w, `{"iata": "GRU", "name": "Guarulhos", "city": "Sao Paulo", "country": "Brazil", "lat": -23.43, "lon": -46.47}`)
		default:
			_, _ = io.WriteString(w, `{}`)
		}
	})

	airport, ok, err := c.AirportByIATA(context.Background(), "gru")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Guarulhos", airport.Name)

	_, ok, err = c.AirportByIATA(context.Background(), "XXX")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHealth(t *testing.T) {
	status := "ok"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, contract.PathHealth, r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	})

	require.NoError(t, c.Health(context.Background()))

	status = "degraded"
	err := c.Health(context.Background())
	require.True(t, errors.Is(err, ErrUnhealthy))
}

func TestParseContract(t *testing.T) {
	got, ok := ParseContract("")
	assert.True(t, ok)
	assert.Equal(t, ContractPlan, got)

	got, ok = ParseContract("legacy")
	assert.True(t, ok)
	assert.Equal(t, ContractLegacy, got)

	_, ok = ParseContract("grpc")
	assert.False(t, ok)
}
