package submission

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-tripform/pkg/trip"
)

// Status enumerates the submission lifecycle.
type Status int

const (
	Idle Status = iota
	Submitting
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is a snapshot of the submission. Result is set only when Succeeded,
// Message only when Failed. Fields carries field errors from the last
// rejected or failed attempt.
type State struct {
	Status  Status
	Request *trip.TripRequest
	Result  *trip.PlanResult
	Message string
	Fields  trip.FieldErrors
}

// CanSubmit reports whether Submit is legal in this state.
func (s State) CanSubmit() bool {
	return s.Status == Idle || s.Status == Failed
}

func (s State) clone() State {
	out := s
	if s.Request != nil {
		req := s.Request.Clone()
		out.Request = &req
	}
	if s.Result != nil {
		res := *s.Result
		out.Result = &res
	}
	out.Fields = s.Fields.Clone()
	return out
}

// Event is an input to Transition.
type Event interface {
	event()
}

// Rejected records client side validation failure. No request was sent.
type Rejected struct {
	Fields trip.FieldErrors
}

// Started records that a validated request is being sent.
type Started struct {
	Request trip.TripRequest
}

// Resolved records a decoded planning result.
type Resolved struct {
	Result trip.PlanResult
}

// Errored records a transport, status or decode failure.
type Errored struct {
	Message string
	Fields  trip.FieldErrors
}

// Reset returns the submission to Idle, discarding result and errors.
type Reset struct{}

func (Rejected) event() {}
func (Started) event() {}
func (Resolved) event() {}
func (Errored) event() {}
func (Reset) event() {}

var (
	// ErrInFlight is returned when a submit arrives while Submitting.
	ErrInFlight = errors.New("submission: request already in flight")
	// ErrIllegalTransition is returned for events the current status does
	// not accept.
	ErrIllegalTransition = errors.New("submission: illegal transition")
)

// Transition applies e to s. On an illegal event it returns s unchanged
// together with an error wrapping ErrIllegalTransition (or ErrInFlight for a
// submit while Submitting).
func Transition(s State, e Event) (State, error) {
	switch ev := e.(type) {
	case Rejected:
		if !s.CanSubmit() {
			return s, illegal(s, e)
		}
		return State{Status: Idle, Fields: ev.Fields.Clone()}, nil
	case Started:
		if s.Status == Submitting {
			return s, ErrInFlight
		}
		if !s.CanSubmit() {
			return s, illegal(s, e)
		}
		req := ev.Request.Clone()
		return State{Status: Submitting, Request: &req}, nil
	case Resolved:
		if s.Status != Submitting {
			return s, illegal(s, e)
		}
		res := ev.Result
		return State{Status: Succeeded, Request: s.Request, Result: &res}, nil
	case Errored:
		if s.Status != Submitting {
			return s, illegal(s, e)
		}
		msg := ev.Message
		if msg == "" {
			msg = UnexpectedMessage
		}
		return State{Status: Failed, Request: s.Request, Message: msg, Fields: ev.Fields.Clone()}, nil
	case Reset:
		if s.Status == Submitting {
			return s, illegal(s, e)
		}
		return State{Status: Idle}, nil
	default:
		return s, fmt.Errorf("%w: unknown event %T", ErrIllegalTransition, e)
	}
}

func illegal(s State, e Event) error {
	return fmt.Errorf("%w: %T while %s", ErrIllegalTransition, e, s.Status)
}
