// Package tripform wires the trip planning form together: configuration,
// the planning service client, the validator, the submission orchestrator,
// the airport lookup and the plan report.
//
// Callers that only need one piece can use the pkg/ packages directly; App is
// the quick path used by cmd/tripform.
package tripform

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/goliatone/go-tripform/components/timezones"
	"github.com/goliatone/go-tripform/internal/config"
	"github.com/goliatone/go-tripform/internal/prompt"
	"github.com/goliatone/go-tripform/internal/session"
	"github.com/goliatone/go-tripform/pkg/client"
	"github.com/goliatone/go-tripform/pkg/contract"
	"github.com/goliatone/go-tripform/pkg/lookup"
	"github.com/goliatone/go-tripform/pkg/report"
	"github.com/goliatone/go-tripform/pkg/submission"
	"github.com/goliatone/go-tripform/pkg/trip"
	"github.com/goliatone/go-tripform/pkg/validation"
)

// TripRequest aliases trip.TripRequest for callers of the root package.
type TripRequest = trip.TripRequest

// RawFields aliases trip.RawFields.
type RawFields = trip.RawFields

// FieldErrors aliases trip.FieldErrors.
type FieldErrors = trip.FieldErrors

// PlanResult aliases trip.PlanResult.
type PlanResult = trip.PlanResult

// AirportCandidate aliases trip.AirportCandidate.
type AirportCandidate = trip.AirportCandidate

// Option customises App construction.
type Option func(*appOptions)

type appOptions struct {
	logger        *slog.Logger
	knownZones    bool
	clientOptions []client.Option
	observers     []func(submission.State)
	reportOptions []report.Option
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *appOptions) {
		o.logger = logger
	}
}

// WithKnownTimezones rejects origin timezones missing from the embedded
// IANA list instead of only checking their syntax.
func WithKnownTimezones() Option {
	return func(o *appOptions) {
		o.knownZones = true
	}
}

// WithClientOptions appends client options after the configured ones.
func WithClientOptions(opts ...client.Option) Option {
	return func(o *appOptions) {
		o.clientOptions = append(o.clientOptions, opts...)
	}
}

// WithSubmissionObserver receives every submission state change.
func WithSubmissionObserver(fn func(submission.State)) Option {
	return func(o *appOptions) {
		o.observers = append(o.observers, fn)
	}
}

// WithReportOptions configures the plan report.
func WithReportOptions(opts ...report.Option) Option {
	return func(o *appOptions) {
		o.reportOptions = append(o.reportOptions, opts...)
	}
}

// App holds the wired components.
type App struct {
	Config       config.Config
	Logger       *slog.Logger
	Client       *client.Client
	Validator    *validation.Validator
	Orchestrator *submission.Orchestrator
	Renderer     *report.Renderer
	Zones        []string

	lookupDefaults []lookup.Option
}

// New wires an App from cfg.
func New(cfg config.Config, opts ...Option) (*App, error) {
	o := &appOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	zones, err := timezones.DefaultZones()
	if err != nil {
		return nil, fmt.Errorf("tripform: %w", err)
	}

	clientOpts := []client.Option{
		client.WithContract(cfg.Contract),
		client.WithTimeout(cfg.Timeout),
		client.WithSearchRate(cfg.SearchRPS, 1),
		client.WithSearchDefaults(cfg.Profile.SearchParams()),
		client.WithLegacyTrip(cfg.Profile.Legacy.DestinationTimezone, cfg.Profile.Legacy.TravelMinutes),
		client.WithLogger(logger.With(slog.String("component", "client"))),
	}
	if cfg.OpenAPI != "" {
		doc, err := contract.LoadLocation(context.Background(), cfg.OpenAPI, contract.WithSourceTimeout(cfg.Timeout))
		if err != nil {
			return nil, fmt.Errorf("tripform: %w", err)
		}
		logger.Debug("using external service description", slog.String("location", cfg.OpenAPI), slog.String("version", doc.Version()))
		clientOpts = append(clientOpts, client.WithDocument(doc))
	}
	c, err := client.New(cfg.APIURL, append(clientOpts, o.clientOptions...)...)
	if err != nil {
		return nil, fmt.Errorf("tripform: %w", err)
	}

	validatorOpts := []validation.Option{
		validation.WithDefaults(cfg.Profile.ValidationDefaults(validation.DefaultDefaults())),
	}
	if o.knownZones {
		validatorOpts = append(validatorOpts, validation.WithKnownTimezones(zones))
	}
	v := validation.New(validatorOpts...)

	subOpts := []submission.Option{submission.WithLogger(logger.With(slog.String("component", "submission")))}
	for _, fn := range o.observers {
		subOpts = append(subOpts, submission.WithObserver(fn))
	}

	renderer, err := report.New(o.reportOptions...)
	if err != nil {
		return nil, fmt.Errorf("tripform: %w", err)
	}

	app := &App{
		Config:       cfg,
		Logger:       logger,
		Client:       c,
		Validator:    v,
		Orchestrator: submission.New(v, c, subOpts...),
		Renderer:     renderer,
		Zones:        zones,
	}
	app.lookupDefaults = []lookup.Option{
		lookup.WithDelay(cfg.Debounce),
		lookup.WithLogger(logger.With(slog.String("component", "lookup"))),
	}
	return app, nil
}

// LookupOptions returns the configured lookup options followed by extra.
func (a *App) LookupOptions(extra ...lookup.Option) []lookup.Option {
	return append(append([]lookup.Option(nil), a.lookupDefaults...), extra...)
}

// NewLookup starts an airport lookup backed by the App's client.
func (a *App) NewLookup(extra ...lookup.Option) *lookup.Lookup {
	return lookup.New(a.Client, a.LookupOptions(extra...)...)
}

// NewSession builds an interactive form session driven by driver. The
// profile prefill and defaults come first so opts can override them.
func (a *App) NewSession(driver prompt.Driver, opts ...session.Option) (*session.Session, error) {
	base := []session.Option{
		session.WithInitialFields(a.Config.Profile.InitialFields()),
		session.WithDefaults(a.Validator.Defaults()),
		session.WithLookupOptions(a.lookupDefaults...),
		session.WithZones(a.Zones),
		session.WithLogger(a.Logger.With(slog.String("component", "session"))),
		session.WithSearchTimeout(a.Config.Timeout),
	}
	return session.New(driver, session.Deps{
		Orchestrator: a.Orchestrator,
		Searcher:     a.Client,
		Resolver:     a.Client,
		Renderer:     a.Renderer,
	}, append(base, opts...)...)
}

// Check verifies the planning service is reachable and healthy.
func (a *App) Check(ctx context.Context) error {
	if err := a.Client.Health(ctx); err != nil {
		return err
	}
	a.Logger.Info("planning service healthy",
		slog.String("url", a.Client.BaseURL()),
		slog.String("contract", string(a.Client.Contract())),
	)
	return nil
}

// Validate runs the App's validator on raw.
func (a *App) Validate(raw RawFields) (TripRequest, error) {
	return a.Validator.Validate(raw)
}
