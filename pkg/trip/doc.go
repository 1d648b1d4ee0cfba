// Package trip defines the canonical trip-planning types shared by the
// validator, the submission orchestrator, the airport lookup and the HTTP
// client. Raw form input arrives as RawFields keyed by the canonical field
// names declared in fields.go; front ends that use their own naming convert at
// their boundary with FromConsultorFields or FromLegacyFields. TripRequest is
// the normalized, immutable request body and PlanResult the decoded response
// of the planning service.
package trip
