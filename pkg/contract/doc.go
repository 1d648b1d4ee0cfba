// Package contract embeds the OpenAPI description of the planning service and
// checks request and response bodies against it with kin-openapi. The client
// uses it to refuse sending payloads the service would reject and to classify
// malformed responses as decode failures.
package contract
