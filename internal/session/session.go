// Package session runs the interactive trip form in a terminal: it prompts
// each field, offers debounced airport suggestions, submits through the
// submission orchestrator and prints the resulting plan.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-tripform/components/timezones"
	"github.com/goliatone/go-tripform/internal/prompt"
	"github.com/goliatone/go-tripform/pkg/form"
	"github.com/goliatone/go-tripform/pkg/lookup"
	"github.com/goliatone/go-tripform/pkg/report"
	"github.com/goliatone/go-tripform/pkg/submission"
	"github.com/goliatone/go-tripform/pkg/trip"
	"github.com/goliatone/go-tripform/pkg/validation"
)

// ErrGaveUp is returned when the user declines to retry a failed submit.
var ErrGaveUp = errors.New("session: submission abandoned")

// AirportResolver confirms a typed IATA code.
type AirportResolver interface {
	AirportByIATA(ctx context.Context, code string) (trip.AirportCandidate, bool, error)
}

// Deps are the collaborators a Session drives.
type Deps struct {
	Orchestrator *submission.Orchestrator
	Searcher     lookup.Searcher
	// Resolver is optional.
	Resolver AirportResolver
	Renderer *report.Renderer
}

// Option customises a Session.
type Option func(*Session)

// WithInitialFields prefills the form.
func WithInitialFields(fields trip.RawFields) Option {
	return func(s *Session) {
		s.initial = fields.Clone()
	}
}

// WithDefaults sets the values offered for fields left blank.
func WithDefaults(d validation.Defaults) Option {
	return func(s *Session) {
		s.defaults = d
	}
}

// WithLookupOptions configures the airport lookup.
func WithLookupOptions(opts ...lookup.Option) Option {
	return func(s *Session) {
		s.lookupOpts = append(s.lookupOpts, opts...)
	}
}

// WithZones sets the timezone names offered as suggestions.
func WithZones(zones []string) Option {
	return func(s *Session) {
		s.zones = zones
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSearchTimeout bounds how long the airport step waits for results.
func WithSearchTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.searchTimeout = d
		}
	}
}

// Session is one interactive form run.
type Session struct {
	driver        prompt.Driver
	deps          Deps
	initial       trip.RawFields
	defaults      validation.Defaults
	lookupOpts    []lookup.Option
	zones         []string
	searchTimeout time.Duration
	logger        *slog.Logger

	form form.State
}

// New constructs a Session.
func New(driver prompt.Driver, deps Deps, opts ...Option) (*Session, error) {
	if driver == nil {
		return nil, errors.New("session: prompt driver is required")
	}
	if deps.Orchestrator == nil || deps.Searcher == nil || deps.Renderer == nil {
		return nil, errors.New("session: orchestrator, searcher and renderer are required")
	}
	s := &Session{
		driver:        driver,
		deps:          deps,
		initial:       trip.RawFields{},
		defaults:      validation.DefaultDefaults(),
		searchTimeout: 30 * time.Second,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.zones == nil {
		zones, err := timezones.DefaultZones()
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		s.zones = zones
	}
	return s, nil
}

// Run prompts every field, submits and prints the plan. It loops on
// validation errors and, when the user agrees, on service failures.
func (s *Session) Run(ctx context.Context) (trip.PlanResult, error) {
	if s.deps.Orchestrator.State().Status == submission.Succeeded {
		if err := s.deps.Orchestrator.Reset(); err != nil {
			return trip.PlanResult{}, err
		}
	}
	s.form = form.New(s.initial)

	if err := s.ask(ctx, trip.FieldOrder); err != nil {
		return trip.PlanResult{}, err
	}

	for {
		state, err := s.deps.Orchestrator.Submit(ctx, s.form.Values)
		switch {
		case err == nil && state.Status == submission.Succeeded:
			return s.finish(ctx, state)

		case errors.Is(err, trip.ErrValidation):
			if err := s.reportErrors(ctx, "Please fix the highlighted fields:", state.Fields); err != nil {
				return trip.PlanResult{}, err
			}
			if err := s.ask(ctx, state.Fields.Fields()); err != nil {
				return trip.PlanResult{}, err
			}

		case state.Status == submission.Failed:
			if err := s.driver.Info(ctx, "Could not plan the trip: "+state.Message); err != nil {
				return trip.PlanResult{}, err
			}
			if len(state.Fields) > 0 {
				if err := s.reportErrors(ctx, "The planner rejected:", state.Fields); err != nil {
					return trip.PlanResult{}, err
				}
				if err := s.ask(ctx, state.Fields.Fields()); err != nil {
					return trip.PlanResult{}, err
				}
				continue
			}
			retry, err := s.driver.Confirm(ctx, prompt.ConfirmConfig{Message: "Try again?", Default: true})
			if err != nil {
				return trip.PlanResult{}, err
			}
			if !retry {
				return trip.PlanResult{}, ErrGaveUp
			}

		default:
			return trip.PlanResult{}, err
		}
	}
}

func (s *Session) finish(ctx context.Context, state submission.State) (trip.PlanResult, error) {
	text, err := s.deps.Renderer.Render(state.Request, *state.Result)
	if err != nil {
		return *state.Result, err
	}
	if err := s.driver.Info(ctx, text); err != nil {
		return *state.Result, err
	}
	return *state.Result, nil
}

func (s *Session) reportErrors(ctx context.Context, heading string, fields trip.FieldErrors) error {
	s.form = form.Reduce(s.form, form.ErrorsReported{Errors: fields})
	lines := []string{heading}
	for _, name := range fields.Fields() {
		label := name
		if p, ok := fieldPrompts[name]; ok {
			label = strings.TrimSuffix(p.label, "?")
		}
		lines = append(lines, fmt.Sprintf("  - %s: %s", label, fields[name]))
	}
	return s.driver.Info(ctx, strings.Join(lines, "\n"))
}

// ask prompts names in form order.
func (s *Session) ask(ctx context.Context, names []string) error {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	for _, name := range trip.FieldOrder {
		if !wanted[name] {
			continue
		}
		if err := s.askField(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) askField(ctx context.Context, name string) error {
	p := fieldPrompts[name]
	switch p.kind {
	case kindBool:
		current, ok := validation.ParseBool(s.form.Value(name))
		if !ok {
			current = s.boolDefault(name)
		}
		v, err := s.driver.Confirm(ctx, prompt.ConfirmConfig{Message: p.label, Default: current, Help: p.help})
		if err != nil {
			return err
		}
		s.set(name, strconv.FormatBool(v))
		return nil

	case kindAirport:
		return s.askAirport(ctx)

	default:
		cfg := prompt.InputConfig{
			Message: p.label,
			Help:    p.help,
			Default: s.textDefault(name),
		}
		if p.kind == kindTimezone {
			zones := s.zones
			cfg.Suggest = func(typed string) []string {
				return timezones.Search(zones, typed, 10, timezones.NewOptions())
			}
		}
		v, err := s.driver.Input(ctx, cfg)
		if err != nil {
			return err
		}
		s.set(name, v)
		return nil
	}
}

func (s *Session) set(name, value string) {
	s.form = form.Reduce(s.form, form.FieldChanged{Name: name, Value: value})
}

func (s *Session) textDefault(name string) string {
	if v := s.form.Value(name); v != "" {
		return v
	}
	switch name {
	case trip.FieldOriginCountry:
		return s.defaults.OriginCountry
	case trip.FieldOriginTimezone:
		return s.defaults.OriginTimezone
	case trip.FieldDays:
		if s.defaults.Days > 0 {
			return strconv.Itoa(s.defaults.Days)
		}
	}
	return ""
}

func (s *Session) boolDefault(name string) bool {
	switch name {
	case trip.FieldInternational:
		return s.defaults.International
	case trip.FieldCheckedBaggage:
		return s.defaults.CheckedBaggage
	case trip.FieldAssignedSeat:
		return s.defaults.AssignedSeat
	}
	return false
}

var iataLike = regexp.MustCompile(`^[A-Za-z]{3}$`)

const (
	optionSearchAgain = "Search again"
	optionSkip        = "Skip, let the planner choose"
)

// askAirport runs the debounced lookup for each typed query and lets the
// user pick a candidate, search again or skip.
func (s *Session) askAirport(ctx context.Context) error {
	changes := make(chan struct{}, 1)
	opts := append([]lookup.Option{
		lookup.WithLogger(s.logger),
		lookup.WithOnSelect(func(c trip.AirportCandidate) {
			s.form = form.Reduce(s.form, form.AirportPicked{Candidate: c})
		}),
		lookup.WithOnChange(func(lookup.State) {
			select {
			case changes <- struct{}{}:
			default:
			}
		}),
	}, s.lookupOpts...)
	l := lookup.New(s.deps.Searcher, opts...)
	defer l.Close()

	p := fieldPrompts[trip.FieldAirportIATA]
	def := s.form.Value(trip.FieldAirportIATA)
	if def == "" {
		def = s.form.Value(trip.FieldDestinationCity)
	}

	for {
		query, err := s.driver.Input(ctx, prompt.InputConfig{Message: p.label, Help: p.help, Default: def})
		if err != nil {
			return err
		}
		query = strings.TrimSpace(query)
		if query == "" {
			s.set(trip.FieldAirportIATA, "")
			return nil
		}

		before := l.State().Seq
		l.SetQuery(query)
		state, err := s.awaitResults(ctx, l, changes, query, before)
		if err != nil {
			return err
		}
		candidates := s.withExactMatch(ctx, query, state.Results)

		if len(candidates) == 0 {
			if err := s.driver.Info(ctx, fmt.Sprintf("No airports found for %q.", query)); err != nil {
				return err
			}
		}
		options := make([]string, 0, len(candidates)+2)
		for _, c := range candidates {
			options = append(options, c.Label())
		}
		options = append(options, optionSearchAgain, optionSkip)

		idx, err := s.driver.Select(ctx, prompt.SelectConfig{
			Message:  "Destination airport",
			Options:  options,
			PageSize: 12,
		})
		if err != nil {
			return err
		}
		switch {
		case idx >= 0 && idx < len(candidates):
			l.Select(candidates[idx])
			return nil
		case idx == len(candidates):
			def = query
			continue
		default:
			s.set(trip.FieldAirportIATA, "")
			return nil
		}
	}
}

// awaitResults blocks until the lookup has settled on query: the debounce
// fired (Seq moved past before) and no search is loading.
func (s *Session) awaitResults(ctx context.Context, l *lookup.Lookup, changes <-chan struct{}, query string, before uint64) (lookup.State, error) {
	timeout := time.NewTimer(s.searchTimeout)
	defer timeout.Stop()
	for {
		state := l.State()
		if state.Query == query && state.Seq > before && !state.Loading {
			return state, nil
		}
		select {
		case <-changes:
		case <-timeout.C:
			s.logger.Debug("airport lookup timed out", slog.String("query", query))
			return lookup.State{Query: query, Results: []trip.AirportCandidate{}}, nil
		case <-ctx.Done():
			return lookup.State{}, ctx.Err()
		}
	}
}

// withExactMatch puts the airport for a typed IATA code first.
func (s *Session) withExactMatch(ctx context.Context, query string, results []trip.AirportCandidate) []trip.AirportCandidate {
	if s.deps.Resolver == nil || !iataLike.MatchString(query) {
		return results
	}
	exact, ok, err := s.deps.Resolver.AirportByIATA(ctx, query)
	if err != nil || !ok {
		return results
	}
	out := []trip.AirportCandidate{exact}
	for _, c := range results {
		if !strings.EqualFold(c.IATA, exact.IATA) {
			out = append(out, c)
		}
	}
	return out
}
