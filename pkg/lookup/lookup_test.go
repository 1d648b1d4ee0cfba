package lookup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tripform/pkg/trip"
)

type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []func()
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t.fn)
		}
	}
	c.mu.Unlock()
	for _, fn := range due {
		fn()
	}
}

type searchCall struct {
	query string
	reply chan searchReply
}

type searchReply struct {
	results []trip.AirportCandidate
	err     error
}

type gatedSearcher struct {
	calls chan searchCall
}

func newGatedSearcher() *gatedSearcher {
	return &gatedSearcher{calls: make(chan searchCall, 16)}
}

func (s *gatedSearcher) SearchAirports(ctx context.Context, query string) ([]trip.AirportCandidate, error) {
	call := searchCall{query: query, reply: make(chan searchReply, 1)}
	s.calls <- call
	select {
	case r := <-call.reply:
		return r.results, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *gatedSearcher) next(t *testing.T) searchCall {
	t.Helper()
	select {
	case call := <-s.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for a search call")
		return searchCall{}
	}
}

func (s *gatedSearcher) none(t *testing.T) {
	t.Helper()
	select {
	case call := <-s.calls:
		t.Fatalf("unexpected search for %q", call.query)
	default:
	}
}

func airports(codes ...string) []trip.AirportCandidate {
	out := make([]trip.AirportCandidate, 0, len(codes))
	for _, code := range codes {
		out = append(out, trip.AirportCandidate{IATA: code})
	}
	return out
}

func flush(t *testing.T, l *Lookup) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func waitFor(t *testing.T, l *Lookup, cond func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		flush(t, l)
		s := l.State()
		if cond(s) {
			return s
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met, state %+v", s)
		}
		time.Sleep(time.Millisecond)
	}
}

func newTestLookup(t *testing.T, opts ...Option) (*Lookup, *manualClock, *gatedSearcher) {
	t.Helper()
	clock := &manualClock{}
	searcher := newGatedSearcher()
	l := New(searcher, append([]Option{WithClock(clock)}, opts...)...)
	t.Cleanup(l.Close)
	return l, clock, searcher
}

func TestLookup_KeystrokesWithinWindowCoalesce(t *testing.T) {
	l, clock, searcher := newTestLookup(t)

	for _, q := range []string{"S", "Sa", "San"} {
		l.SetQuery(q)
		flush(t, l)
		clock.Advance(100 * time.Millisecond)
	}
	if got := l.State().Query; got != "San" {
		t.Fatalf("expected query echo San, got %q", got)
	}
	searcher.none(t)

	clock.Advance(200 * time.Millisecond)
	flush(t, l)

	call := searcher.next(t)
	if call.query != "San" {
		t.Fatalf("expected search for San, got %q", call.query)
	}
	if !l.State().Loading {
		t.Fatalf("expected loading while search is in flight")
	}
	call.reply <- searchReply{results: airports("SCL", "SJO")}

	s := waitFor(t, l, func(s State) bool { return !s.Loading })
	if diff := cmp.Diff(airports("SCL", "SJO"), s.Results); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
	searcher.none(t)
}

func TestLookup_StaleResponseIsDiscarded(t *testing.T) {
	l, clock, searcher := newTestLookup(t)

	l.SetQuery("Sa")
	flush(t, l)
	clock.Advance(300 * time.Millisecond)
	flush(t, l)
	sa := searcher.next(t)

	l.SetQuery("San")
	flush(t, l)
	clock.Advance(300 * time.Millisecond)
	flush(t, l)
	san := searcher.next(t)

	san.reply <- searchReply{results: airports("SCL")}
	waitFor(t, l, func(s State) bool { return !s.Loading })

	sa.reply <- searchReply{results: airports("GRU", "SSA")}
	// The Sa response is posted right after the searcher returns.
	time.Sleep(20 * time.Millisecond)
	flush(t, l)

	if diff := cmp.Diff(airports("SCL"), l.State().Results); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestLookup_SingleCharacterNeverSearches(t *testing.T) {
	l, clock, searcher := newTestLookup(t)

	l.SetQuery("S")
	flush(t, l)
	clock.Advance(time.Second)
	flush(t, l)

	searcher.none(t)
	s := l.State()
	if s.Loading || len(s.Results) != 0 {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestLookup_EmptyQueryClearsImmediately(t *testing.T) {
	l, clock, searcher := newTestLookup(t)

	l.SetQuery("San")
	flush(t, l)
	clock.Advance(300 * time.Millisecond)
	flush(t, l)
	searcher.next(t).reply <- searchReply{results: airports("SCL")}
	waitFor(t, l, func(s State) bool { return len(s.Results) == 1 })

	l.SetQuery("Sant")
	flush(t, l)
	l.SetQuery("   ")
	flush(t, l)

	s := l.State()
	if len(s.Results) != 0 || s.Loading {
		t.Fatalf("expected immediate clear, got %+v", s)
	}

	clock.Advance(time.Second)
	flush(t, l)
	searcher.none(t)
}

func TestLookup_SearchErrorDegradesToEmpty(t *testing.T) {
	l, clock, searcher := newTestLookup(t)

	l.SetQuery("San")
	flush(t, l)
	clock.Advance(300 * time.Millisecond)
	flush(t, l)
	searcher.next(t).reply <- searchReply{err: errors.New("service down")}

	s := waitFor(t, l, func(s State) bool { return !s.Loading })
	if s.Results == nil || len(s.Results) != 0 {
		t.Fatalf("expected empty non-nil results, got %#v", s.Results)
	}
}

func TestLookup_SelectInvokesCallbackOnly(t *testing.T) {
	var picked []trip.AirportCandidate
	l, _, _ := newTestLookup(t, WithOnSelect(func(c trip.AirportCandidate) {
		picked = append(picked, c)
	}))
	l.SetQuery("Santiago")
	flush(t, l)
	before := l.State()

	l.Select(trip.AirportCandidate{IATA: "SCL"})

	if diff := cmp.Diff(airports("SCL"), picked); diff != "" {
		t.Fatalf("picked mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before.Query, l.State().Query); diff != "" {
		t.Fatalf("query changed by select (-want +got):\n%s", diff)
	}
}

func TestLookup_FlushAfterClose(t *testing.T) {
	l, _, _ := newTestLookup(t)
	l.Close()
	if err := l.Flush(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	l.SetQuery("ignored")
}
