// Package submission owns the lifecycle of one trip form submission.
//
// State changes go through Transition, a pure function over State and Event.
// Orchestrator wraps it with the side effects: it validates raw input, calls
// the planner once per accepted submit and refuses a second submit while one
// is in flight. There are no automatic retries; the user retries by calling
// Submit again once the state is Failed.
package submission
