package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-tripform/internal/prompt"
	"github.com/goliatone/go-tripform/pkg/client"
	"github.com/goliatone/go-tripform/pkg/lookup"
	"github.com/goliatone/go-tripform/pkg/report"
	"github.com/goliatone/go-tripform/pkg/submission"
	"github.com/goliatone/go-tripform/pkg/testsupport"
	"github.com/goliatone/go-tripform/pkg/trip"
	"github.com/goliatone/go-tripform/pkg/validation"
)

type stubDriver struct {
	inputs       []string
	confirm      []bool
	selectIdx    []int
	selectOpts   [][]string
	infoMessages []string
	inputPos     int
	confirmPos   int
	selectPos    int
}

func (s *stubDriver) Input(_ context.Context, _ prompt.InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", prompt.ErrAborted
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ prompt.ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg prompt.SelectConfig) (int, error) {
	s.selectOpts = append(s.selectOpts, cfg.Options)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func newSession(t *testing.T, driver prompt.Driver, p *testsupport.Planner) *Session {
	t.Helper()
	srv := testsupport.StartPlanner(t, p)

	c, err := client.New(srv.URL)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	renderer, err := report.New()
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	s, err := New(driver, Deps{
		Orchestrator: submission.New(validation.New(), c),
		Searcher:     c,
		Resolver:     c,
		Renderer:     renderer,
	}, WithLookupOptions(lookup.WithDelay(time.Millisecond)), WithSearchTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return s
}

func scriptedInputs(days string) []string {
	return []string{
		"Av. Paulista, 1000",
		"Brasil",
		"America/Sao_Paulo",
		"Santiago do Chile",
		"Chile",
		"scl",
		"2025-11-19 17:45",
		days,
		"trilha, praia",
	}
}

func TestRun_HappyPath(t *testing.T) {
	driver := &stubDriver{
		inputs:    scriptedInputs("6"),
		confirm:   []bool{true, false, true},
		selectIdx: []int{0},
	}
	p := testsupport.NewPlanner()
	s := newSession(t, driver, p)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.ChecklistMarkdown != testsupport.DefaultPlanResult().ChecklistMarkdown {
		t.Fatalf("unexpected result %+v", result)
	}

	if len(driver.selectOpts) != 1 {
		t.Fatalf("expected one airport selection, got %d", len(driver.selectOpts))
	}
	opts := driver.selectOpts[0]
	if len(opts) != 3 || !strings.HasPrefix(opts[0], "SCL - ") || opts[2] != optionSkip {
		t.Fatalf("unexpected airport options %v", opts)
	}

	body := p.LastPlan(t)
	if body["aeroporto_iata"] != "SCL" || body["destino_cidade"] != "Santiago" {
		t.Fatalf("airport pick not applied: %v", body)
	}
	if body["dias"] != float64(6) || body["datahora_partida_local"] != "2025-11-19T17:45:00" {
		t.Fatalf("unexpected body %v", body)
	}
	if body["bagagem_despachada"] != false || body["internacional"] != true {
		t.Fatalf("unexpected flags %v", body)
	}

	last := driver.infoMessages[len(driver.infoMessages)-1]
	if !strings.Contains(last, "Leave home at") || !strings.Contains(last, "- passaporte") {
		t.Fatalf("expected rendered report, got %q", last)
	}
}

func TestRun_ReasksInvalidFields(t *testing.T) {
	driver := &stubDriver{
		inputs:    append(scriptedInputs("0"), "5"),
		confirm:   []bool{true, false, true},
		selectIdx: []int{0},
	}
	p := testsupport.NewPlanner()
	s := newSession(t, driver, p)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if driver.inputPos != len(driver.inputs) {
		t.Fatalf("expected every scripted input to be used, used %d of %d", driver.inputPos, len(driver.inputs))
	}
	if !strings.Contains(strings.Join(driver.infoMessages, "\n"), "Trip length (days)") {
		t.Fatalf("expected days error to be reported, got %v", driver.infoMessages)
	}
	if got := p.LastPlan(t)["dias"]; got != float64(5) {
		t.Fatalf("expected corrected days, got %v", got)
	}
}

func TestRun_RetriesAfterServiceFailure(t *testing.T) {
	driver := &stubDriver{
		inputs:    scriptedInputs("6"),
		confirm:   []bool{true, false, true, true},
		selectIdx: []int{0},
	}
	p := testsupport.NewPlanner()
	p.FailNext(1, http.StatusInternalServerError, "down")
	s := newSession(t, driver, p)

	if _, err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	joined := strings.Join(driver.infoMessages, "\n")
	if !strings.Contains(joined, "planning service returned 500") {
		t.Fatalf("expected failure message, got %v", driver.infoMessages)
	}
	if requests := len(p.Plans()); requests != 2 {
		t.Fatalf("expected two plan requests, got %d", requests)
	}
}

func TestRun_GiveUpAfterFailure(t *testing.T) {
	driver := &stubDriver{
		inputs:    scriptedInputs("6"),
		confirm:   []bool{true, false, true, false},
		selectIdx: []int{0},
	}
	p := testsupport.NewPlanner()
	p.FailNext(10, http.StatusInternalServerError, "down")
	s := newSession(t, driver, p)

	if _, err := s.Run(context.Background()); !errors.Is(err, ErrGaveUp) {
		t.Fatalf("expected ErrGaveUp, got %v", err)
	}
}

func TestRun_SkipAirportAndAbort(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Av. Paulista, 1000", "Brasil", "America/Sao_Paulo", "Santiago", "Chile", "Santiago"},
		selectIdx: []int{3},
	}
	s := newSession(t, driver, testsupport.NewPlanner())

	_, err := s.Run(context.Background())
	if !errors.Is(err, prompt.ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if got := s.form.Value(trip.FieldAirportIATA); got != "" {
		t.Fatalf("expected skipped airport, got %q", got)
	}
	if opts := driver.selectOpts[0]; opts[len(opts)-1] != optionSkip {
		t.Fatalf("expected skip option last, got %v", opts)
	}
}

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(nil, Deps{}); err == nil {
		t.Fatalf("expected error without driver")
	}
	if _, err := New(&stubDriver{}, Deps{}); err == nil {
		t.Fatalf("expected error without deps")
	}
}
