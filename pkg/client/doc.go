// Package client talks to the trip planning service over HTTP.
//
// A Client is stateless apart from its configuration and is safe for
// concurrent use, so the submission orchestrator and the airport lookup can
// share one instance. Failures are classified into TransportError (the
// service could not be reached), StatusError (non-2xx reply, optionally
// carrying field errors from a 422 body) and DecodeError (the reply could not
// be decoded or broke the service contract).
//
// Two contracts are supported. ContractPlan posts the canonical flat request
// to /plan. ContractLegacy adapts the same request to the grouped /trip/plan
// body and maps the legacy reply back into a trip.PlanResult.
package client
