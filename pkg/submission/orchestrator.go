package submission

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/goliatone/go-tripform/pkg/trip"
)

// Validator converts raw input into a request or trip.FieldErrors.
type Validator interface {
	Validate(raw trip.RawFields) (trip.TripRequest, error)
}

// Planner is the planning side of the HTTP collaborator.
type Planner interface {
	Plan(ctx context.Context, req trip.TripRequest) (trip.PlanResult, error)
}

// Option customises an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver registers fn to receive every state change, in order.
func WithObserver(fn func(State)) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

// Orchestrator owns the submission state for one form. It is safe for
// concurrent use.
type Orchestrator struct {
	validator Validator
	planner   Planner
	logger    *slog.Logger
	observers []func(State)

	mu    sync.Mutex
	state State
}

// New constructs an Orchestrator in the Idle state.
func New(validator Validator, planner Planner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		validator: validator,
		planner:   planner,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// State returns a snapshot of the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Submit validates raw and, when valid, sends exactly one planning request.
//
// A submit while Submitting returns ErrInFlight without side effects; a
// submit after Succeeded requires Reset first. Validation failures leave the
// submission Idle and return trip.FieldErrors. Planner failures move it to
// Failed and return the planner error. The returned State is the state after
// the call.
func (o *Orchestrator) Submit(ctx context.Context, raw trip.RawFields) (State, error) {
	o.mu.Lock()
	if !o.state.CanSubmit() {
		current := o.state.clone()
		o.mu.Unlock()
		if current.Status == Submitting {
			return current, ErrInFlight
		}
		return current, illegal(current, Started{})
	}

	req, err := o.validator.Validate(raw)
	if err != nil {
		var fields trip.FieldErrors
		if !errors.As(err, &fields) {
			fields = trip.FieldErrors{}
		}
		next, terr := o.applyLocked(Rejected{Fields: fields})
		o.mu.Unlock()
		if terr != nil {
			return next, terr
		}
		o.logger.Debug("submission rejected", slog.Any("fields", fields.Fields()))
		o.notify(next)
		return next, err
	}

	started, err := o.applyLocked(Started{Request: req})
	o.mu.Unlock()
	if err != nil {
		return started, err
	}
	o.notify(started)

	result, planErr := o.planner.Plan(ctx, req)

	var event Event = Resolved{Result: result}
	if planErr != nil {
		event = Errored{Message: FailureMessage(planErr), Fields: failureFields(planErr)}
		o.logger.Warn("submission failed", slog.String("error", planErr.Error()))
	} else {
		o.logger.Info("submission succeeded", slog.String("leave_at", result.DepartureAdvice.LeaveAtLocal))
	}

	o.mu.Lock()
	final, err := o.applyLocked(event)
	o.mu.Unlock()
	if err != nil {
		return final, err
	}
	o.notify(final)
	return final, planErr
}

// Reset returns a settled submission to Idle.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	next, err := o.applyLocked(Reset{})
	o.mu.Unlock()
	if err != nil {
		return err
	}
	o.notify(next)
	return nil
}

func (o *Orchestrator) applyLocked(e Event) (State, error) {
	next, err := Transition(o.state, e)
	if err != nil {
		return o.state.clone(), err
	}
	o.state = next
	return next.clone(), nil
}

func (o *Orchestrator) notify(s State) {
	for _, fn := range o.observers {
		fn(s.clone())
	}
}
