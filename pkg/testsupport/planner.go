package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-tripform/pkg/trip"
)

// Planner is an in-memory planning service speaking both the /plan and the
// legacy /trip/plan contracts. It records every plan body it receives.
type Planner struct {
	mu         sync.Mutex
	airports   []trip.AirportCandidate
	result     trip.PlanResult
	failures   int
	failStatus int
	failBody   string
	plans      []map[string]any
	searches   []string
}

// PlannerOption customises a Planner.
type PlannerOption func(*Planner)

// WithAirports replaces the airport index.
func WithAirports(airports ...trip.AirportCandidate) PlannerOption {
	return func(p *Planner) {
		p.airports = append([]trip.AirportCandidate(nil), airports...)
	}
}

// WithPlanResult sets the advice returned by a successful plan.
func WithPlanResult(result trip.PlanResult) PlannerOption {
	return func(p *Planner) {
		p.result = result
	}
}

// DefaultAirports is the small index NewPlanner serves.
func DefaultAirports() []trip.AirportCandidate {
	return []trip.AirportCandidate{
		{IATA: "SCL", Name: "Arturo Merino Benitez", City: "Santiago", Country: "Chile"},
		{IATA: "SCQ", Name: "Santiago de Compostela", City: "Santiago de Compostela", Country: "Spain"},
		{IATA: "GRU", Name: "Guarulhos", City: "Sao Paulo", Country: "Brasil"},
		{IATA: "LIS", Name: "Humberto Delgado", City: "Lisboa", Country: "Portugal"},
	}
}

// DefaultPlanResult is the advice NewPlanner returns.
func DefaultPlanResult() trip.PlanResult {
	return trip.PlanResult{
		Airport: &trip.Airport{IATA: "SCL", Name: "Arturo Merino Benitez", City: "Santiago", Country: "Chile"},
		DepartureAdvice: trip.DepartureAdvice{
			LeaveAtLocal: "2025-11-19T13:10:00",
			BreakdownMin: map[string]float64{"drive": 40, "security": 45, "checkin": 30},
		},
		Climate: &trip.ClimateSummary{
			MonthNames: []string{"Nov"},
			TMinC:      9.8,
			TAvgC:      17.1,
			TMaxC:      25.3,
			PrcpMM:     12.4,
			RainyClass: "dry",
			TempClass:  "mild",
		},
		ChecklistMarkdown: "- passaporte\n- protetor solar",
	}
}

// NewPlanner builds a Planner with the default index and advice.
func NewPlanner(opts ...PlannerOption) *Planner {
	p := &Planner{
		airports: DefaultAirports(),
		result:   DefaultPlanResult(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// StartPlanner serves p on a test server closed when the test ends.
func StartPlanner(t *testing.T, p *Planner) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(p)
	t.Cleanup(srv.Close)
	return srv
}

// FailNext makes the next n plan requests answer status with body.
func (p *Planner) FailNext(n, status int, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = n
	p.failStatus = status
	p.failBody = body
}

// Plans returns the plan bodies received so far.
func (p *Planner) Plans() []map[string]any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]map[string]any(nil), p.plans...)
}

// LastPlan returns the most recent plan body, failing the test when none
// arrived.
func (p *Planner) LastPlan(t *testing.T) map[string]any {
	t.Helper()
	plans := p.Plans()
	if len(plans) == 0 {
		t.Fatalf("no plan request received")
	}
	return plans[len(plans)-1]
}

// Searches returns the search queries received so far.
func (p *Planner) Searches() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.searches...)
}

func (p *Planner) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/health":
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case r.Method == http.MethodGet && r.URL.Path == "/airports/search":
		p.search(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/airports/by_iata":
		p.byIATA(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/plan":
		p.plan(w, r, false)
	case r.Method == http.MethodPost && r.URL.Path == "/trip/plan":
		p.plan(w, r, true)
	default:
		http.NotFound(w, r)
	}
}

func (p *Planner) search(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 10
	}

	p.mu.Lock()
	p.searches = append(p.searches, q)
	airports := p.airports
	p.mu.Unlock()

	out := []trip.AirportCandidate{}
	for _, a := range airports {
		if len(out) == limit {
			break
		}
		hay := strings.ToLower(strings.Join([]string{a.IATA, a.Name, a.City, a.Country}, " "))
		if q != "" && strings.Contains(hay, q) {
			out = append(out, a)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (p *Planner) byIATA(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("code")))

	p.mu.Lock()
	airports := p.airports
	p.mu.Unlock()

	for _, a := range airports {
		if a.IATA == code {
			writeJSON(w, http.StatusOK, a)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (p *Planner) plan(w http.ResponseWriter, r *http.Request, legacy bool) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid JSON body"})
		return
	}

	p.mu.Lock()
	p.plans = append(p.plans, body)
	fail := p.failures > 0
	status, failBody := p.failStatus, p.failBody
	if fail {
		p.failures--
	}
	result := p.result
	p.mu.Unlock()

	if fail {
		if strings.HasPrefix(strings.TrimSpace(failBody), "{") {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(failBody))
		return
	}
	if !legacy {
		writeJSON(w, http.StatusOK, result)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"leave_at":           result.DepartureAdvice.LeaveAtLocal,
		"buffers":            result.DepartureAdvice.BreakdownMin,
		"climate":            result.Climate,
		"checklist_markdown": result.ChecklistMarkdown,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
