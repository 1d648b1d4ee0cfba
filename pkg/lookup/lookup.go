package lookup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/goliatone/go-tripform/pkg/trip"
)

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("lookup: closed")

// Searcher is the search side of the HTTP collaborator.
type Searcher interface {
	SearchAirports(ctx context.Context, query string) ([]trip.AirportCandidate, error)
}

// SearchFunc adapts a function to Searcher.
type SearchFunc func(ctx context.Context, query string) ([]trip.AirportCandidate, error)

// SearchAirports calls f.
func (f SearchFunc) SearchAirports(ctx context.Context, query string) ([]trip.AirportCandidate, error) {
	return f(ctx, query)
}

// Option customises a Lookup.
type Option func(*Lookup)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(l *Lookup) {
		if d > 0 {
			l.cfg.Delay = d
		}
	}
}

// WithMinLength sets the minimum trimmed query length that triggers a search.
func WithMinLength(n int) Option {
	return func(l *Lookup) {
		if n > 0 {
			l.cfg.MinLength = n
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(l *Lookup) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithOnSelect registers the callback invoked by Select.
func WithOnSelect(fn func(trip.AirportCandidate)) Option {
	return func(l *Lookup) {
		l.onSelect = fn
	}
}

// WithOnChange registers a callback invoked from the event loop after every
// state change.
func WithOnChange(fn func(State)) Option {
	return func(l *Lookup) {
		l.onChange = fn
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lookup) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Lookup runs the debounced search event loop.
type Lookup struct {
	searcher Searcher
	cfg      Config
	clock    Clock
	onSelect func(trip.AirportCandidate)
	onChange func(State)
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	inboxMu sync.Mutex
	inbox   []any
	wake    chan struct{}
	closed  bool

	stateMu sync.RWMutex
	state   State

	// owned by the loop goroutine
	timer Timer
}

type flushRequest struct {
	done chan struct{}
}

// New starts a Lookup backed by searcher. Call Close to stop it.
func New(searcher Searcher, opts ...Option) *Lookup {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Lookup{
		searcher: searcher,
		cfg:      DefaultConfig(),
		clock:    realClock{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		wake:     make(chan struct{}, 1),
		state:    State{Results: []trip.AirportCandidate{}},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	go l.loop()
	return l
}

// SetQuery records a keystroke. It never blocks.
func (l *Lookup) SetQuery(text string) {
	l.post(QueryChanged{Text: text})
}

// Select hands candidate to the OnSelect callback. Query and results are
// left untouched.
func (l *Lookup) Select(candidate trip.AirportCandidate) {
	if l.onSelect != nil {
		l.onSelect(candidate)
	}
}

// State returns a snapshot of the current state.
func (l *Lookup) State() State {
	l.stateMu.RLock()
	defer l.stateMu.RUnlock()
	return l.state.clone()
}

// Flush waits until every event posted before the call has been handled.
func (l *Lookup) Flush(ctx context.Context) error {
	req := flushRequest{done: make(chan struct{})}
	if !l.post(req) {
		return ErrClosed
	}
	select {
	case <-req.done:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the event loop and any pending timer. In-flight searches see
// a cancelled context.
func (l *Lookup) Close() {
	l.inboxMu.Lock()
	if l.closed {
		l.inboxMu.Unlock()
		return
	}
	l.closed = true
	l.inboxMu.Unlock()

	l.cancel()
	<-l.done
}

func (l *Lookup) post(msg any) bool {
	l.inboxMu.Lock()
	if l.closed {
		l.inboxMu.Unlock()
		return false
	}
	l.inbox = append(l.inbox, msg)
	l.inboxMu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

func (l *Lookup) drain() []any {
	l.inboxMu.Lock()
	defer l.inboxMu.Unlock()
	msgs := l.inbox
	l.inbox = nil
	return msgs
}

func (l *Lookup) loop() {
	defer close(l.done)
	defer l.stopTimer()

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-l.wake:
		}
		for _, msg := range l.drain() {
			switch m := msg.(type) {
			case flushRequest:
				close(m.done)
			case Event:
				l.handle(m)
			}
		}
	}
}

func (l *Lookup) handle(e Event) {
	l.stateMu.RLock()
	current := l.state
	l.stateMu.RUnlock()

	if !accepts(current, e) {
		return
	}
	next, effects := Reduce(current, e, l.cfg)

	l.stateMu.Lock()
	l.state = next
	l.stateMu.Unlock()

	for _, effect := range effects {
		l.run(effect)
	}
	if l.onChange != nil {
		l.onChange(next.clone())
	}
}

func (l *Lookup) run(effect Effect) {
	switch ef := effect.(type) {
	case ArmTimer:
		l.stopTimer()
		gen := ef.Gen
		l.timer = l.clock.AfterFunc(ef.Delay, func() {
			l.post(TimerFired{Gen: gen})
		})
	case CancelTimer:
		l.stopTimer()
	case StartSearch:
		l.logger.Debug("airport search", slog.String("query", ef.Query), slog.Uint64("seq", ef.Seq))
		go func(seq uint64, query string) {
			results, err := l.searcher.SearchAirports(l.ctx, query)
			if err != nil {
				l.logger.Debug("airport search failed",
					slog.String("query", query),
					slog.String("error", err.Error()),
				)
			}
			l.post(ResponseReceived{Seq: seq, Results: results, Err: err})
		}(ef.Seq, ef.Query)
	}
}

func (l *Lookup) stopTimer() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

// accepts reports whether e is current for s; stale timers and superseded
// responses are dropped before reaching the reducer.
func accepts(s State, e Event) bool {
	switch ev := e.(type) {
	case TimerFired:
		return ev.Gen == s.gen
	case ResponseReceived:
		return ev.Seq == s.Seq
	default:
		return true
	}
}
