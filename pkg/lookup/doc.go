// Package lookup implements debounced search-as-you-type for airports.
//
// The behaviour lives in Reduce, a pure function from (State, Event) to the
// next State plus the Effects the runtime must perform: arm or cancel the
// debounce timer, or start a search. Two counters keep it race free. The
// timer generation identifies the only debounce timer allowed to fire, and
// the query sequence identifies the only search whose response may be
// displayed. Superseded responses are not aborted; they are ignored when
// they arrive.
//
// Lookup is the runtime. It feeds keystrokes, timer expiries and search
// responses through a single event loop goroutine, so state is only ever
// touched by one goroutine at a time.
package lookup
