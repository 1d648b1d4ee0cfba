package lookup

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-tripform/pkg/trip"
)

// State is the lookup state visible to callers.
type State struct {
	// Query echoes the latest text exactly as typed.
	Query string
	// Results belong to the query that produced the latest accepted
	// response. Never nil.
	Results []trip.AirportCandidate
	Loading bool
	// Seq is the query sequence counter. Only the response tagged with the
	// current Seq is applied.
	Seq uint64

	gen uint64
}

func (s State) clone() State {
	out := s
	out.Results = append(make([]trip.AirportCandidate, 0, len(s.Results)), s.Results...)
	return out
}

// Config holds the debounce parameters.
type Config struct {
	Delay     time.Duration
	MinLength int
}

// DefaultConfig waits 300ms and needs at least two characters.
func DefaultConfig() Config {
	return Config{Delay: 300 * time.Millisecond, MinLength: 2}
}

// Event is an input to Reduce.
type Event interface {
	lookupEvent()
}

// QueryChanged is one keystroke's worth of new query text.
type QueryChanged struct {
	Text string
}

// TimerFired reports that the debounce timer armed for Gen elapsed.
type TimerFired struct {
	Gen uint64
}

// ResponseReceived carries the outcome of the search tagged Seq.
type ResponseReceived struct {
	Seq     uint64
	Results []trip.AirportCandidate
	Err     error
}

func (QueryChanged) lookupEvent() {}
func (TimerFired) lookupEvent() {}
func (ResponseReceived) lookupEvent() {}

// Effect is work Reduce asks the runtime to perform.
type Effect interface {
	lookupEffect()
}

// ArmTimer replaces any pending debounce timer with one for Gen.
type ArmTimer struct {
	Gen   uint64
	Delay time.Duration
}

// CancelTimer stops the pending debounce timer.
type CancelTimer struct{}

// StartSearch issues one search for Query, tagged Seq.
type StartSearch struct {
	Seq   uint64
	Query string
}

func (ArmTimer) lookupEffect() {}
func (CancelTimer) lookupEffect() {}
func (StartSearch) lookupEffect() {}

// Reduce applies e to s. It never mutates s.
func Reduce(s State, e Event, cfg Config) (State, []Effect) {
	next := s.clone()

	switch ev := e.(type) {
	case QueryChanged:
		next.Query = ev.Text
		next.gen++
		if strings.TrimSpace(ev.Text) == "" {
			// Clearing also invalidates any search still in flight.
			next.Seq++
			next.Results = []trip.AirportCandidate{}
			next.Loading = false
			return next, []Effect{CancelTimer{}}
		}
		return next, []Effect{ArmTimer{Gen: next.gen, Delay: cfg.Delay}}

	case TimerFired:
		if ev.Gen != s.gen {
			return s, nil
		}
		query := strings.TrimSpace(s.Query)
		next.Seq++
		if utf8.RuneCountInString(query) < cfg.MinLength {
			next.Results = []trip.AirportCandidate{}
			next.Loading = false
			return next, nil
		}
		next.Loading = true
		return next, []Effect{StartSearch{Seq: next.Seq, Query: query}}

	case ResponseReceived:
		if ev.Seq != s.Seq {
			return s, nil
		}
		next.Loading = false
		if ev.Err != nil || ev.Results == nil {
			next.Results = []trip.AirportCandidate{}
		} else {
			next.Results = append(make([]trip.AirportCandidate, 0, len(ev.Results)), ev.Results...)
		}
		return next, nil
	}
	return s, nil
}
